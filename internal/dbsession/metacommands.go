package dbsession

import (
	"fmt"
	"strings"
)

// metaTemplates maps a psql-style backslash command to the
// information_schema/pg_catalog query that implements it.
var metaTemplates = map[string]string{
	`\dt`: `SELECT table_schema, table_name FROM information_schema.tables
WHERE table_type = 'BASE TABLE' AND table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name`,
	`\dv`: `SELECT table_schema, table_name FROM information_schema.views
WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name`,
	`\di`: `SELECT schemaname, indexname, tablename FROM pg_indexes
WHERE schemaname NOT IN ('pg_catalog', 'information_schema')
ORDER BY schemaname, tablename, indexname`,
	`\df`: `SELECT routine_schema, routine_name, data_type FROM information_schema.routines
WHERE routine_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY routine_schema, routine_name`,
	`\dn`: `SELECT schema_name FROM information_schema.schemata
WHERE schema_name NOT IN ('pg_catalog', 'information_schema') ORDER BY schema_name`,
	`\du`: `SELECT rolname, rolsuper, rolcreaterole, rolcreatedb, rolcanlogin FROM pg_roles ORDER BY rolname`,
	`\l`:  `SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY datname`,
}

// ExpandMetaCommand resolves a raw command line into the query to run,
// and whether it matched a known meta-command. "\d tablename" expands
// to a column listing for that one table rather than a fixed template.
func ExpandMetaCommand(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == `\d` {
		return metaTemplates[`\dt`], true
	}
	if strings.HasPrefix(trimmed, `\d `) {
		table := strings.TrimSpace(strings.TrimPrefix(trimmed, `\d `))
		return describeTableQuery(table), true
	}
	if q, ok := metaTemplates[trimmed]; ok {
		return q, true
	}
	return "", false
}

func describeTableQuery(table string) string {
	schema := "public"
	name := table
	if idx := strings.IndexByte(table, '.'); idx >= 0 {
		schema = table[:idx]
		name = table[idx+1:]
	}
	return `SELECT column_name, data_type, is_nullable, column_default
FROM information_schema.columns
WHERE table_schema = '` + escapeLiteral(schema) + `' AND table_name = '` + escapeLiteral(name) + `'
ORDER BY ordinal_position`
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// LoadSchema runs the full-tree introspection query and posts
// EvSchemaLoaded with the raw rows for internal/schema.Build to
// consume.
func (s *Session) LoadSchema() {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		s.events <- Event{Kind: EvQueryError, Err: errNotConnected}
		return
	}

	go func() {
		rows, err := db.Query(schemaIntrospectionQuery)
		if err != nil {
			s.events <- Event{Kind: EvQueryError, Err: err}
			return
		}
		defer rows.Close()

		var out [][4]string
		for rows.Next() {
			var schema, table, column, typ string
			if err := rows.Scan(&schema, &table, &column, &typ); err != nil {
				s.events <- Event{Kind: EvQueryError, Err: err}
				return
			}
			out = append(out, [4]string{schema, table, column, typ})
		}
		if err := rows.Err(); err != nil {
			s.events <- Event{Kind: EvQueryError, Err: err}
			return
		}
		s.events <- Event{Kind: EvSchemaLoaded, SchemaRows: out}
	}()
}

const schemaIntrospectionQuery = `
SELECT c.table_schema, c.table_name, c.column_name, c.data_type
FROM information_schema.columns c
JOIN information_schema.tables t
  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
WHERE c.table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY c.table_schema, c.table_name, c.ordinal_position
`

var errNotConnected = &notConnectedError{}

type notConnectedError struct{}

func (*notConnectedError) Error() string { return "not connected" }

// SubmitUpdate runs an UPDATE/DELETE/INSERT produced by internal/grid's
// statement builders and posts EvCellUpdated on success. It runs
// without a cancellation context, so Cancel does not abort it; a lost
// connection and other errors are reported as in Submit. row/col/value
// pass through to the posted event so the UI can apply the commit
// without re-parsing SQL.
func (s *Session) SubmitUpdate(sqlText string, row, col int, value string) uint64 {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	db := s.db
	s.mu.Unlock()

	go func() {
		if db == nil {
			s.events <- Event{Kind: EvQueryError, RequestID: id, Err: errNotConnected}
			return
		}
		if _, err := db.Exec(sqlText); err != nil {
			if isConnectionLost(err) {
				s.mu.Lock()
				s.status = Error
				s.db = nil
				s.mu.Unlock()
				s.events <- Event{Kind: EvConnectionLost, RequestID: id, Err: err}
				return
			}
			s.events <- Event{Kind: EvQueryError, RequestID: id, Err: err}
			return
		}
		s.events <- Event{Kind: EvCellUpdated, RequestID: id, Row: row, Col: col, Value: value}
	}()
	return id
}

const primaryKeysQueryTpl = `
SELECT a.attname
FROM pg_index i
JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
WHERE i.indrelid = %s::regclass AND i.indisprimary
ORDER BY array_position(i.indkey, a.attnum)
`

const columnTypesQueryTpl = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_name = %s AND table_schema = COALESCE(NULLIF(%s, ''), 'public')
ORDER BY ordinal_position
`

func (s *Session) LoadTableMeta(requestID uint64, table string) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return
	}

	schema := "public"
	name := table
	if idx := strings.IndexByte(table, '.'); idx >= 0 {
		schema = table[:idx]
		name = table[idx+1:]
	}

	go func() {
		var pks []string
		regclass := "'" + escapeLiteral(qualify(schema, name)) + "'"
		if rows, err := db.Query(fmt.Sprintf(primaryKeysQueryTpl, regclass)); err == nil {
			defer rows.Close()
			for rows.Next() {
				var col string
				if rows.Scan(&col) == nil {
					pks = append(pks, col)
				}
			}
		}

		var headers, colTypes []string
		if rows, err := db.Query(fmt.Sprintf(columnTypesQueryTpl, "'"+escapeLiteral(name)+"'", "'"+escapeLiteral(schema)+"'")); err == nil {
			defer rows.Close()
			for rows.Next() {
				var col, typ string
				if rows.Scan(&col, &typ) == nil {
					headers = append(headers, col)
					colTypes = append(colTypes, typ)
				}
			}
		}

		s.events <- Event{
			Kind:        EvTableMetaLoaded,
			RequestID:   requestID,
			Table:       table,
			PrimaryKeys: pks,
			Headers:     headers,
			ColTypes:    colTypes,
		}
	}()
}

func qualify(schema, name string) string {
	if schema == "" || schema == "public" {
		return name
	}
	return schema + "." + name
}
