// Package schema builds and holds the schema→table→column tree used by the
// sidebar and by completion/template generation.
package schema

// Column is one column of a cached table.
type Column struct {
	Name string
	Type string
}

// Table is one schema-qualified table or view.
type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// Cache is the schema introspection tree.
type Cache struct {
	Tables []Table
	Loaded bool
}

// IntrospectionQuery is the single query used to populate the cache
// after connect. It orders rows by (schema, table, ordinal) so Build
// can assemble the tree in one linear pass, matching the Column struct
// invariant "ordered by (schema, name, ordinal)".
const IntrospectionQuery = `
SELECT c.table_schema, c.table_name, c.column_name, c.data_type
FROM information_schema.columns c
JOIN information_schema.tables t
  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
WHERE c.table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY c.table_schema, c.table_name, c.ordinal_position
`

// introspectionRow mirrors one row of IntrospectionQuery's result.
type introspectionRow struct {
	Schema, Table, Column, Type string
}

// Build assembles a Cache from introspection rows, grouping consecutive
// rows that share (schema, table) into one Table entry. Rows must
// already be ordered by (schema, table, ordinal), as IntrospectionQuery
// guarantees.
func Build(rows [][4]string) *Cache {
	c := &Cache{Loaded: true}
	var current *Table
	for _, r := range rows {
		row := introspectionRow{Schema: r[0], Table: r[1], Column: r[2], Type: r[3]}
		if current == nil || current.Schema != row.Schema || current.Name != row.Table {
			c.Tables = append(c.Tables, Table{Schema: row.Schema, Name: row.Table})
			current = &c.Tables[len(c.Tables)-1]
		}
		current.Columns = append(current.Columns, Column{Name: row.Column, Type: row.Type})
	}
	return c
}

// Find returns the table matching schema.name (schema may be empty to
// match the first table with that name, i.e. unqualified lookup).
func (c *Cache) Find(schema, name string) (Table, bool) {
	for _, t := range c.Tables {
		if t.Name == name && (schema == "" || t.Schema == schema) {
			return t, true
		}
	}
	return Table{}, false
}

// ColumnNames returns just the column names of a table, in order, for
// template generation.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
