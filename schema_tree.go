package main

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"tsql/internal/grid"
	"tsql/internal/schema"
	"tsql/internal/textedit"
)

// refreshSchemaTree rebuilds the sidebar tree from the freshly loaded
// schema cache: schema nodes hold table nodes, table nodes hold their
// columns. Selecting a node expands or collapses it; the "g" template
// sequences insert statements for the highlighted table. Expansion state restored
// from a session snapshot is applied here, then tracked live.
func (a *App) refreshSchemaTree() {
	root := tview.NewTreeNode("schema").SetSelectable(false)
	a.schemaTV.SetRoot(root)

	expanded := make(map[string]bool, len(a.pendingExpandedNodes))
	for _, p := range a.pendingExpandedNodes {
		expanded[p] = true
	}
	a.pendingExpandedNodes = nil

	bySchema := map[string]*tview.TreeNode{}
	for _, t := range a.schema.Tables {
		schemaNode, ok := bySchema[t.Schema]
		if !ok {
			schemaNode = tview.NewTreeNode(t.Schema).SetSelectable(true)
			schemaNode.SetExpanded(len(expanded) == 0 || expanded[t.Schema])
			bySchema[t.Schema] = schemaNode
			root.AddChild(schemaNode)
		}
		t := t
		tableNode := tview.NewTreeNode(t.Name).SetSelectable(true)
		tableNode.SetReference(t)
		tableNode.SetExpanded(expanded[t.Schema+"."+t.Name])
		for _, c := range t.Columns {
			col := tview.NewTreeNode(c.Name + "  [gray]" + c.Type + "[white]").SetSelectable(false)
			tableNode.AddChild(col)
		}
		schemaNode.AddChild(tableNode)
	}

	a.schemaTV.SetSelectedFunc(func(node *tview.TreeNode) {
		if _, ok := node.GetReference().(schema.Table); ok && !node.IsExpanded() {
			node.SetExpanded(true)
			return
		}
		node.SetExpanded(!node.IsExpanded())
	})
}

// selectedSchemaTable returns the table under the sidebar cursor, if
// the highlighted node is a table node.
func (a *App) selectedSchemaTable() (schema.Table, bool) {
	node := a.schemaTV.GetCurrentNode()
	if node == nil {
		return schema.Table{}, false
	}
	t, ok := node.GetReference().(schema.Table)
	return t, ok
}

// expandedSchemaNodes walks the tree collecting the paths of expanded
// nodes for the session snapshot.
func (a *App) expandedSchemaNodes() []string {
	if a.schemaTV == nil {
		return nil
	}
	root := a.schemaTV.GetRoot()
	if root == nil {
		return nil
	}
	var out []string
	for _, schemaNode := range root.GetChildren() {
		if schemaNode.IsExpanded() {
			out = append(out, schemaNode.GetText())
		}
		for _, tableNode := range schemaNode.GetChildren() {
			if t, ok := tableNode.GetReference().(schema.Table); ok && tableNode.IsExpanded() {
				out = append(out, t.Schema+"."+t.Name)
			}
		}
	}
	return out
}

// qualifiedName renders schema.table, omitting the schema for public.
func qualifiedName(t schema.Table) string {
	if t.Schema != "" && t.Schema != "public" {
		return t.Schema + "." + t.Name
	}
	return t.Name
}

// insertSelectTemplate generates a SELECT over the table's known
// columns (falling back to "*" when the cache has none) and loads it
// into the query editor.
func (a *App) insertSelectTemplate(t schema.Table) {
	cols := "*"
	if names := t.ColumnNames(); len(names) > 0 {
		cols = strings.Join(names, ", ")
	}
	a.setEditorTemplate(fmt.Sprintf("SELECT %s FROM %s LIMIT 100", cols, qualifiedName(t)))
}

// insertInsertTemplate generates an INSERT skeleton with one value
// placeholder per column.
func (a *App) insertInsertTemplate(t schema.Table) {
	names := t.ColumnNames()
	if len(names) == 0 {
		a.status.Message("no columns known for %s", qualifiedName(t))
		return
	}
	placeholders := make([]string, len(names))
	for i, c := range t.Columns {
		placeholders[i] = "'' -- " + c.Type
	}
	a.setEditorTemplate(fmt.Sprintf(
		"INSERT INTO %s (%s)\nVALUES (%s)",
		qualifiedName(t), strings.Join(names, ", "), strings.Join(placeholders, ", ")))
}

// insertUpdateTemplate generates an UPDATE skeleton with one SET line
// per column and an empty WHERE.
func (a *App) insertUpdateTemplate(t schema.Table) {
	names := t.ColumnNames()
	if len(names) == 0 {
		a.status.Message("no columns known for %s", qualifiedName(t))
		return
	}
	sets := make([]string, len(names))
	for i, n := range names {
		sets[i] = fmt.Sprintf("  %s = ''", grid.EscapeIdentifier(n))
	}
	a.setEditorTemplate(fmt.Sprintf(
		"UPDATE %s SET\n%s\nWHERE ", qualifiedName(t), strings.Join(sets, ",\n")))
}

// insertDeleteTemplate generates a DELETE skeleton with an empty WHERE.
func (a *App) insertDeleteTemplate(t schema.Table) {
	a.setEditorTemplate(fmt.Sprintf("DELETE FROM %s WHERE ", qualifiedName(t)))
}

// setEditorTemplate loads generated SQL into the query editor and
// focuses it in Normal mode.
func (a *App) setEditorTemplate(sql string) {
	a.buf.SetText(sql)
	if a.buf.Mode() != textedit.Normal {
		a.buf.Handle(textedit.KeyEvent{Special: textedit.KeyEscape})
	}
	a.setFocus(PaneEditor)
}
