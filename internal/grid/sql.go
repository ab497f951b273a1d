package grid

import (
	"fmt"
	"strings"
)

// EscapeIdentifier renders an identifier for interpolation into a
// simple-query statement: bare only when it is strictly [a-z0-9_]+,
// otherwise double-quoted with internal quotes doubled. The whitelist
// is deliberately narrow and must not be loosened; on the
// unparameterized query path this escaping is the only defense.
func EscapeIdentifier(ident string) string {
	if isBareSafe(ident) {
		return ident
	}
	escaped := strings.ReplaceAll(ident, `"`, `""`)
	return `"` + escaped + `"`
}

func isBareSafe(ident string) bool {
	if ident == "" {
		return false
	}
	for _, c := range ident {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

func EscapeStringLiteral(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

func BuildUpdate(m *Model, row int, col int, newValue string, pkValues map[string]string) (string, error) {
	if !m.HasValidPK() {
		return "", fmt.Errorf("grid is not editable: no source table or primary key")
	}
	where, err := whereClause(m.PrimaryKeys, pkValues)
	if err != nil {
		return "", err
	}
	colName := EscapeIdentifier(m.Headers[col])
	table := EscapeQualifiedTable(m.SourceTable)
	return fmt.Sprintf("UPDATE %s SET %s = '%s' WHERE %s", table, colName, EscapeStringLiteral(newValue), where), nil
}

// BuildDelete synthesizes a DELETE statement for the given PK value sets,
// one statement per row, used by the grid's delete action and
// `:gen delete`.
func BuildDelete(table string, pkCols []string, rows []map[string]string) ([]string, error) {
	stmts := make([]string, 0, len(rows))
	for _, pkValues := range rows {
		where, err := whereClause(pkCols, pkValues)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, fmt.Sprintf("DELETE FROM %s WHERE %s", EscapeQualifiedTable(table), where))
	}
	return stmts, nil
}

// BuildInsert synthesizes an INSERT statement from an ordered column
// list and row values, used by `:gen insert`.
func BuildInsert(table string, columns []string, values []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = EscapeIdentifier(c)
	}
	vals := make([]string, len(values))
	for i, v := range values {
		vals[i] = "'" + EscapeStringLiteral(v) + "'"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", EscapeQualifiedTable(table), strings.Join(cols, ", "), strings.Join(vals, ", "))
}

func whereClause(pkCols []string, pkValues map[string]string) (string, error) {
	if len(pkCols) == 0 {
		return "", fmt.Errorf("no primary key columns available")
	}
	parts := make([]string, 0, len(pkCols))
	for _, pk := range pkCols {
		v, ok := pkValues[pk]
		if !ok {
			return "", fmt.Errorf("missing primary key value for column %q", pk)
		}
		parts = append(parts, fmt.Sprintf("%s = '%s'", EscapeIdentifier(pk), EscapeStringLiteral(v)))
	}
	return strings.Join(parts, " AND "), nil
}

func EscapeQualifiedTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = EscapeIdentifier(p)
	}
	return strings.Join(parts, ".")
}
