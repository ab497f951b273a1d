package grid

import (
	"strings"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	_ "github.com/pingcap/tidb/parser/test_driver"
)

// DetectSourceTable resolves the editable-source table for a query:
// parse the statement and require a FROM clause that is one bare table
// reference, no JOIN and no subquery. Parser errors (dialect quirks
// the tidb grammar doesn't accept, e.g. ::casts) fall back to the
// regexp heuristic in ExtractSourceTable.
func DetectSourceTable(query string) string {
	p := parser.New()
	stmtNodes, _, err := p.Parse(query, "", "")
	if err != nil || len(stmtNodes) != 1 {
		return ExtractSourceTable(query)
	}
	sel, ok := stmtNodes[0].(*ast.SelectStmt)
	if !ok || sel.From == nil {
		return ExtractSourceTable(query)
	}
	table, ok := singleTableName(sel.From.TableRefs)
	if !ok {
		return ExtractSourceTable(query)
	}
	return table
}

// singleTableName reports the bare table name when the join tree is a
// single TableSource wrapping a TableName (no JOIN, no subquery).
func singleTableName(join *ast.Join) (string, bool) {
	if join == nil || join.Right != nil {
		return "", false
	}
	src, ok := join.Left.(*ast.TableSource)
	if !ok {
		return "", false
	}
	name, ok := src.Source.(*ast.TableName)
	if !ok {
		return "", false
	}
	return strings.ToLower(name.Name.String()), true
}
