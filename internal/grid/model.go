// Package grid implements the in-memory result grid: column metadata, row
// storage, and the invariants that gate inline editing.
package grid

import "strings"

// MaxColWidth and MinColWidth bound a column's display width.
const (
	MinColWidth = 3
	MaxColWidth = 40
)

// Model is the in-memory table of query results plus column metadata and
// SQL generators.
type Model struct {
	Headers  []string
	ColTypes []string
	ColWidth []int
	Rows     [][]string

	// SourceTable is the single table name extracted from a simple
	// SELECT; empty for complex queries.
	SourceTable string
	// PrimaryKeys holds the ordered PK column names. Non-empty implies
	// the grid is potentially editable (see HasValidPK).
	PrimaryKeys []string

	Truncated bool
}

// New builds a Model from query results, computing initial column widths
// as max(header width, longest cell width) clamped to [MinColWidth,
// MaxColWidth].
func New(headers, colTypes []string, rows [][]string) *Model {
	m := &Model{
		Headers:  append([]string(nil), headers...),
		ColTypes: append([]string(nil), colTypes...),
		Rows:     rows,
	}
	m.ColWidth = make([]int, len(headers))
	for i, h := range headers {
		w := len(h)
		for _, row := range rows {
			if i < len(row) && len(row[i]) > w {
				w = len(row[i])
			}
		}
		m.ColWidth[i] = clampWidth(w)
	}
	return m
}

func clampWidth(w int) int {
	if w < MinColWidth {
		return MinColWidth
	}
	if w > MaxColWidth {
		return MaxColWidth
	}
	return w
}

// Valid reports whether the structural invariant holds:
// |headers| = |col_types| = |col_widths|, every row has |headers| cells.
func (m *Model) Valid() bool {
	n := len(m.Headers)
	if len(m.ColTypes) != n || len(m.ColWidth) != n {
		return false
	}
	for _, row := range m.Rows {
		if len(row) != n {
			return false
		}
	}
	return true
}

func (m *Model) HasValidPK() bool {
	if m.SourceTable == "" || len(m.PrimaryKeys) == 0 {
		return false
	}
	for _, pk := range m.PrimaryKeys {
		if m.ColumnIndex(pk) < 0 {
			return false
		}
	}
	return true
}

// ColumnIndex returns the index of name in Headers, or -1.
func (m *Model) ColumnIndex(name string) int {
	for i, h := range m.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// WidenColumn adjusts a column's display width by delta, clamped.
func (m *Model) WidenColumn(col, delta int) {
	if col < 0 || col >= len(m.ColWidth) {
		return
	}
	m.ColWidth[col] = clampWidth(m.ColWidth[col] + delta)
}

// AutoFitColumn widens/narrows a column to its longest visible value.
func (m *Model) AutoFitColumn(col int) {
	if col < 0 || col >= len(m.Headers) {
		return
	}
	w := len(m.Headers[col])
	for _, row := range m.Rows {
		if col < len(row) && len(row[col]) > w {
			w = len(row[col])
		}
	}
	m.ColWidth[col] = clampWidth(w)
}

// IsJSONType reports whether a PostgreSQL type name is json/jsonb.
func IsJSONType(pgType string) bool {
	t := strings.ToLower(strings.TrimSpace(pgType))
	return t == "json" || t == "jsonb"
}

func NeedsJSONEditor(colType, value string) bool {
	const longValueThreshold = 200
	if IsJSONType(colType) {
		return true
	}
	if len(value) > longValueThreshold {
		return true
	}
	return strings.Contains(value, "\n")
}
