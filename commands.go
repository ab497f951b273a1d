package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"tsql/internal/celledit"
	"tsql/internal/connstore"
	"tsql/internal/dbsession"
	"tsql/internal/grid"
)

func (a *App) runQuery() {
	text := strings.TrimSpace(a.buf.Text())
	if text == "" {
		return
	}
	a.lastQuery = text
	a.dispatchQuery(text)
	a.buf.MarkSaved()
}

// dispatchQuery starts the elapsed-time counter and hands sqlText to
// the session, recording the request id so a stale EvQueryFinished from
// a superseded submission is dropped.
func (a *App) dispatchQuery(sqlText string) {
	debugLog("dispatch query: %s\n", sqlText)
	a.running = true
	a.status.QueryStarted()
	a.lastRequestID = a.session.Submit(sqlText)
}

// connectEntry dials a connection, shared by startup resolution, the
// connection manager's Enter action, and ":connect <url>".
func (a *App) connectEntry(entry connstore.Entry, password *string) {
	a.connectionName = entry.Name
	a.status.SetConnectionStatus(dbsession.Connecting)
	a.session.Connect(connstore.ToURL(entry, password))
}

// handleTestConnectionResult reports the outcome of the connection
// form's "Test" action.
func (a *App) handleTestConnectionResult(err error) {
	if err != nil {
		a.status.Error(fmt.Errorf("test failed: %w", err))
		return
	}
	a.status.Message("connection OK")
}

// promptExCommand opens the ":"-prefixed command line.
func (a *App) promptExCommand() {
	a.showInputPrompt(":", "", a.execExCommand)
}

func (a *App) promptGridSearch() {
	a.showInputPrompt("/", "", func(pattern string) {
		a.view.RunSearch(a.model, pattern)
		if len(a.view.Search.Matches) > 0 {
			a.status.Message("%d matches", len(a.view.Search.Matches))
		} else {
			a.status.Message("no matches")
		}
		a.setFocus(PaneGrid)
	})
}

// promptEditorSearch opens the "/" prompt over the query buffer: a
// case-insensitive regex whose matches n/N cycle through.
func (a *App) promptEditorSearch() {
	a.showInputPrompt("/", "", func(pattern string) {
		n, err := a.buf.Search(pattern)
		if err != nil {
			a.status.Error(err)
			return
		}
		if n == 0 {
			a.status.Message("no matches")
			return
		}
		a.status.Message("%d matches", n)
	})
}

// execExCommand dispatches one command-line entry: meta-commands, a bare
// row number, or a known verb.
func (a *App) execExCommand(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	switch line {
	case `\conninfo`:
		a.showConnInfo()
		return
	case `\?`:
		a.showHelp()
		return
	}
	if q, ok := dbsession.ExpandMetaCommand(line); ok {
		a.lastQuery = q
		a.dispatchQuery(q)
		return
	}
	if n, err := strconv.Atoi(line); err == nil {
		a.jumpToRow(n)
		return
	}

	fields := strings.Fields(line)
	verb, args := fields[0], fields[1:]
	switch verb {
	case "export":
		a.execExport(args)
		return
	case "gen":
		a.execGen(args)
		return
	case "connect":
		a.execConnect(args)
		return
	case "disconnect":
		a.session.Close()
		a.connectionName = ""
		a.status.SetInTransaction(false)
		a.status.SetConnectionStatus(dbsession.Disconnected)
		return
	}

	action, ok := ResolveCommand(verb)
	if !ok {
		a.status.Error(fmt.Errorf("unknown command %q", verb))
		return
	}
	a.runAction(action)
}

// runAction dispatches a resolved Action to its handler.
func (a *App) runAction(action Action) {
	switch action {
	case ActionQuit:
		a.confirmQuit()
	case ActionOpenTablePicker:
		a.showTablePicker()
	case ActionOpenHistoryPicker:
		a.showHistoryPicker()
	case ActionOpenConnectionManager:
		a.showConnectionManager()
	case ActionOpenHelp:
		a.showHelp()
	}
}

// jumpToRow moves the grid cursor to the 1-indexed row n and focuses
// the grid.
func (a *App) jumpToRow(n int) {
	a.view.CursorRow = n - 1
	a.view.ClampCursor(a.model)
	a.setFocus(PaneGrid)
}

// execExport implements ":export {csv|json|tsv} <path>".
func (a *App) execExport(args []string) {
	if len(args) < 2 {
		a.status.Error(fmt.Errorf("usage: export {csv|json|tsv} <path>"))
		return
	}
	format, ok := grid.ParseFormat(args[0])
	if !ok {
		a.status.Error(fmt.Errorf("unknown export format %q", args[0]))
		return
	}
	path := grid.ExpandHome(strings.Join(args[1:], " "))
	if err := grid.Export(a.model, format, path); err != nil {
		a.status.Error(err)
		return
	}
	a.status.Message("exported to %s", path)
}

// execConnect implements ":connect <url>"; with no argument it opens
// the connection manager instead.
func (a *App) execConnect(args []string) {
	if len(args) == 0 {
		a.showConnectionManager()
		return
	}
	entry, password, err := connstore.FromURL("adhoc", strings.Join(args, " "))
	if err != nil {
		a.status.Error(err)
		return
	}
	a.connectEntry(entry, password)
}

// execGen implements ":gen {update|delete|insert} [table] [key_cols]",
// loading the generated statement(s) into the query editor rather than
// running them directly.
func (a *App) execGen(args []string) {
	if len(args) == 0 {
		a.status.Error(fmt.Errorf("usage: gen {update|delete|insert} [table] [key_cols]"))
		return
	}
	kind := args[0]
	table := a.model.SourceTable
	if len(args) > 1 {
		table = args[1]
	}
	if table == "" {
		a.status.Error(fmt.Errorf("no source table to generate from"))
		return
	}
	pkCols := a.model.PrimaryKeys
	if len(args) > 2 {
		pkCols = strings.Split(args[2], ",")
	}
	rows := a.view.SelectedOrCursorRows()

	switch kind {
	case "delete":
		pkSets := make([]map[string]string, 0, len(rows))
		for _, r := range rows {
			pkSets = append(pkSets, a.rowPKValues(r, pkCols))
		}
		stmts, err := grid.BuildDelete(table, pkCols, pkSets)
		if err != nil {
			a.status.Error(err)
			return
		}
		a.buf.SetText(strings.Join(stmts, ";\n"))
	case "insert":
		stmts := make([]string, 0, len(rows))
		for _, r := range rows {
			if r < 0 || r >= len(a.model.Rows) {
				continue
			}
			stmts = append(stmts, grid.BuildInsert(table, a.model.Headers, a.model.Rows[r]))
		}
		a.buf.SetText(strings.Join(stmts, ";\n"))
	case "update":
		var stmts []string
		for _, r := range rows {
			if r < 0 || r >= len(a.model.Rows) {
				continue
			}
			pkValues := a.rowPKValues(r, pkCols)
			for c := range a.model.Headers {
				if s, err := grid.BuildUpdate(a.model, r, c, a.model.Rows[r][c], pkValues); err == nil {
					stmts = append(stmts, s)
				}
			}
		}
		a.buf.SetText(strings.Join(stmts, ";\n"))
	default:
		a.status.Error(fmt.Errorf("unknown gen kind %q", kind))
		return
	}
	a.setFocus(PaneEditor)
}

// rowPKValues builds the pkValues map BuildUpdate/BuildDelete require,
// reading each key column's value out of the grid row.
func (a *App) rowPKValues(row int, pkCols []string) map[string]string {
	out := make(map[string]string, len(pkCols))
	for _, pk := range pkCols {
		idx := a.model.ColumnIndex(pk)
		if idx >= 0 && row >= 0 && row < len(a.model.Rows) && idx < len(a.model.Rows[row]) {
			out[pk] = a.model.Rows[row][idx]
		}
	}
	return out
}

// enterCellEdit starts editing the cell under the grid cursor, routing
// to the full JSON/modal editor when grid.NeedsJSONEditor says so,
// otherwise the inline celledit.Editor.
func (a *App) enterCellEdit() {
	if a.model == nil || a.view.CursorRow < 0 || a.view.CursorRow >= len(a.model.Rows) {
		return
	}
	row, col := a.view.CursorRow, a.view.CursorCol
	if col < 0 || col >= len(a.model.Rows[row]) {
		return
	}
	value := a.model.Rows[row][col]
	colType := ""
	if col < len(a.model.ColTypes) {
		colType = a.model.ColTypes[col]
	}
	if grid.NeedsJSONEditor(colType, value) {
		a.openJSONEditorModal(row, col, value)
		return
	}
	a.cell = celledit.Start(row, col, value)
}

func (a *App) routeCellEdit(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEnter:
		a.applyCellCommit(a.cell)
	case tcell.KeyEsc:
		if a.cell.Modified() {
			a.showConfirm("Discard cell changes?", func() { a.cell = nil })
			return nil
		}
		a.cell = nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.cell.DeleteBefore()
	case tcell.KeyDelete:
		a.cell.DeleteAt()
	case tcell.KeyLeft:
		a.cell.MoveLeft()
	case tcell.KeyRight:
		a.cell.MoveRight()
	case tcell.KeyHome, tcell.KeyCtrlA:
		a.cell.Home()
	case tcell.KeyEnd, tcell.KeyCtrlE:
		a.cell.End()
	case tcell.KeyCtrlU:
		a.cell.DeleteToStart()
	case tcell.KeyCtrlK:
		a.cell.DeleteToEnd()
	case tcell.KeyCtrlW:
		a.cell.Clear()
	default:
		if r := event.Rune(); r != 0 {
			a.cell.InsertRune(r)
		}
	}
	return nil
}

// copyRows implements "y"/"Y": copy the selected (or cursor) rows to
// the clipboard as TSV, optionally with a header row.
func (a *App) copyRows(withHeader bool) {
	rows := a.view.SelectedOrCursorRows()
	tsv := grid.CopyTSV(a.model, rows, withHeader)
	if err := copyToClipboard(tsv); err != nil {
		a.status.Error(err)
		return
	}
	a.status.Message("copied %d row(s)", len(rows))
}

// confirmDeleteSelectedRows implements the grid's "d" action: confirm,
// then issue one DELETE per selected (or cursor) row and remove them
// from the local grid optimistically.
func (a *App) confirmDeleteSelectedRows() {
	if !a.model.HasValidPK() {
		a.status.Error(errNotEditable)
		return
	}
	rows := a.view.SelectedOrCursorRows()
	a.showConfirm(fmt.Sprintf("Delete %d row(s)?", len(rows)), func() {
		pkSets := make([]map[string]string, 0, len(rows))
		for _, r := range rows {
			pkSets = append(pkSets, a.rowPKValues(r, a.model.PrimaryKeys))
		}
		stmts, err := grid.BuildDelete(a.model.SourceTable, a.model.PrimaryKeys, pkSets)
		if err != nil {
			a.status.Error(err)
			return
		}
		a.lastQuery = strings.Join(stmts, "; ")
		a.dispatchQuery(a.lastQuery)
		breadcrumbs.RecordDatabase("delete rows")

		sorted := append([]int(nil), rows...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		for _, r := range sorted {
			if r >= 0 && r < len(a.model.Rows) {
				a.model.Rows = append(a.model.Rows[:r], a.model.Rows[r+1:]...)
			}
		}
		a.view.SelectedRows = make(map[int]struct{})
		a.view.ClampCursor(a.model)
	})
}

// copyCurrentCell copies the cell under the grid cursor verbatim.
func (a *App) copyCurrentCell() {
	row, col := a.view.CursorRow, a.view.CursorCol
	if row < 0 || row >= len(a.model.Rows) || col < 0 || col >= len(a.model.Rows[row]) {
		return
	}
	if err := copyToClipboard(a.model.Rows[row][col]); err != nil {
		a.status.Error(err)
		return
	}
	a.status.Message("copied cell")
}

// showConnInfo reports the active connection in the status line.
func (a *App) showConnInfo() {
	if a.connectionName == "" || a.session.Status() != dbsession.Connected {
		a.status.Message("not connected")
		return
	}
	entry, ok := a.conns.FindByName(a.connectionName)
	if !ok {
		a.status.Message("connected via %s", a.connectionName)
		return
	}
	a.status.Message("connected to %s@%s:%d/%s", entry.User, entry.Host, entry.Port, entry.Database)
}
