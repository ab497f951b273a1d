package main

import (
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"tsql/internal/schema"
	"tsql/internal/textedit"
	"tsql/internal/vimseq"
)

// keyLabel and modifierLabel render a tcell key event into the short
// strings the breadcrumb ring buffer records.
func keyLabel(event *tcell.EventKey) string {
	if event.Key() == tcell.KeyRune {
		return string(event.Rune())
	}
	if name, ok := tcell.KeyNames[event.Key()]; ok {
		return name
	}
	return "?"
}

func modifierLabel(mods tcell.ModMask) string {
	var parts []string
	if mods&tcell.ModCtrl != 0 {
		parts = append(parts, "ctrl")
	}
	if mods&tcell.ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if mods&tcell.ModShift != 0 {
		parts = append(parts, "shift")
	}
	if mods&tcell.ModMeta != 0 {
		parts = append(parts, "meta")
	}
	return strings.Join(parts, "+")
}

// routeKey is the application's single global key handler, installed
// via Application.SetInputCapture. Keys resolve by a strict precedence
// ladder, first match wins:
//
//  1. A modal overlay page is on top: its own primitive handles the key.
//  2. Ctrl-C while a query is running: cancel it; otherwise it copies
//     the grid selection (grid focus) or does nothing.
//  3. A cell edit is in progress: route to the inline cell editor.
//  4. Ctrl-E: run the query from any pane or mode.
//  5. Completion popup open: Tab/Shift-Tab cycle, Enter accepts, Esc
//     closes, identifier characters extend the prefix.
//  6. A two-key sequence is waiting for its second key.
//  7. Esc: cancel the running query, else clear pending state, else
//     ask to quit.
//  8. Panel navigation (Ctrl-H/J/K/L) and global chords (pickers,
//     search, sidebar toggle, focus cycle).
//  9. "g" in Normal mode starts a key sequence.
//  10. Delegate to the focused pane.
func (a *App) routeKey(event *tcell.EventKey) *tcell.EventKey {
	debugLog("key: %s mods=%s focus=%d\n", keyLabel(event), modifierLabel(event.Modifiers()), a.focus)
	breadcrumbs.RecordKeyboard(keyLabel(event), modifierLabel(event.Modifiers()))

	if name, _ := a.pages.GetFrontPage(); name != pageMain {
		return event
	}

	if event.Key() == tcell.KeyCtrlC {
		// Always swallowed: tview's default Ctrl-C handler would stop
		// the application outright, bypassing the quit confirmation and
		// shutdown persistence. With no query running it copies the
		// grid selection; in any other context it is a no-op.
		if a.running {
			a.session.Cancel()
		} else if a.cell == nil && a.focus == PaneGrid {
			a.copyRows(false)
		}
		return nil
	}

	if a.cell != nil {
		return a.routeCellEdit(event)
	}

	if event.Key() == tcell.KeyCtrlE {
		a.runQuery()
		return nil
	}

	if a.completion != nil {
		return a.routeCompletion(event)
	}

	if a.sequences.IsWaiting() {
		if event.Key() != tcell.KeyRune || event.Modifiers() != tcell.ModNone {
			a.sequences.Cancel()
			a.status.Message("invalid key sequence")
			return nil
		}
		result, name, ctx := a.sequences.ProcessSecondKey(event.Rune())
		a.runSequenceResult(result, name, ctx)
		return nil
	}

	if event.Key() == tcell.KeyEsc {
		return a.routeEscape(event)
	}

	if handled := a.routePanelNav(event); handled {
		return nil
	}
	if handled := a.routeGlobalChord(event); handled {
		return nil
	}

	if event.Key() == tcell.KeyRune && event.Rune() == 'g' && event.Modifiers() == tcell.ModNone {
		if a.focus == PaneSchema || a.focus == PaneGrid || (a.focus == PaneEditor && a.buf.Mode() == textedit.Normal) {
			if a.startSequence() {
				return nil
			}
		}
	}

	switch a.focus {
	case PaneEditor:
		return a.routeEditorKey(event)
	case PaneGrid:
		return a.routeGridKey(event)
	case PaneSchema:
		return a.routeSchemaKey(event)
	}
	return event
}

// routeEscape implements the Esc rung: cancel a running query first,
// then progressively clear pending UI state, and only when nothing is
// left to dismiss offer to quit.
func (a *App) routeEscape(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case a.running:
		a.session.Cancel()
	case a.focus == PaneEditor && a.buf.Mode() != textedit.Normal:
		a.buf.Handle(toKeyEvent(event))
	case a.focus == PaneEditor && a.buf.PendingOperator() != 0:
		a.buf.Handle(toKeyEvent(event))
	case a.focus == PaneEditor && len(a.buf.SearchMatches().Matches) > 0:
		a.buf.ClearSearch()
		a.status.Message("search cleared")
	case a.focus == PaneGrid && a.view.Search.Pattern != "":
		a.view.RunSearch(a.model, "")
		a.status.Message("search cleared")
	case a.focus == PaneSchema:
		a.setFocus(PaneEditor)
	default:
		a.confirmQuit()
	}
	return nil
}

// startSequence begins a "g" sequence, carrying the schema-tree table
// under the cursor as context when the sidebar has focus, and arms the
// delayed hint popup.
func (a *App) startSequence() bool {
	if a.focus == PaneSchema {
		if t, ok := a.selectedSchemaTable(); ok {
			a.sequences.StartWithContext('g', t)
			a.armSequenceHint()
			return true
		}
	}
	if a.sequences.ProcessFirstKey('g') {
		a.armSequenceHint()
		return true
	}
	return false
}

// armSequenceHint schedules the hint popup: if the sequence is still
// waiting when the engine's hint delay elapses, the available
// completions are shown in the status line.
func (a *App) armSequenceHint() {
	time.AfterFunc(a.sequences.HintDelay(), func() {
		a.app.QueueUpdateDraw(func() {
			if !a.sequences.ShouldShowHint() {
				return
			}
			a.sequences.MarkHintShown()
			a.status.Message("%s", sequenceHintText(a.sequences.FirstKey()))
		})
	})
}

// sequenceHintText lists the second keys available after firstKey.
func sequenceHintText(firstKey rune) string {
	var parts []string
	for keys, action := range vimSequenceTable {
		if keys[0] == firstKey {
			parts = append(parts, string(keys[1])+":"+action)
		}
	}
	sort.Strings(parts)
	return string(firstKey) + "-  " + strings.Join(parts, "  ")
}

// routePanelNav implements spatial pane movement over the 2x2 layout:
// sidebar (schema) on the left, editor above grid on the right. Moves
// that would leave the layout are no-ops; left/right moves are ignored
// while the sidebar is hidden. Ctrl-H shares a code point with
// Backspace, so panel navigation is skipped while typing in Insert
// mode.
func (a *App) routePanelNav(event *tcell.EventKey) bool {
	if a.focus == PaneEditor && a.buf.Mode() == textedit.Insert {
		return false
	}
	switch event.Key() {
	case tcell.KeyCtrlH:
		if a.sidebarOn && a.focus != PaneSchema {
			a.setFocus(PaneSchema)
		}
		return true
	case tcell.KeyCtrlL:
		if a.focus == PaneSchema {
			a.setFocus(PaneEditor)
		}
		return true
	case tcell.KeyCtrlJ:
		if a.focus == PaneEditor {
			a.setFocus(PaneGrid)
		}
		return true
	case tcell.KeyCtrlK:
		if a.focus == PaneGrid {
			a.setFocus(PaneEditor)
		}
		return true
	}
	return false
}

func (a *App) routeGlobalChord(event *tcell.EventKey) bool {
	switch {
	case event.Key() == tcell.KeyCtrlO:
		a.showConnectionPicker()
		return true
	case event.Key() == tcell.KeyCtrlR:
		a.showHistoryPicker()
		return true
	case event.Key() == tcell.KeyCtrlT:
		a.showTablePicker()
		return true
	case event.Key() == tcell.KeyCtrlF:
		a.promptGridSearch()
		return true
	case event.Key() == tcell.KeyCtrlB:
		a.toggleSidebar()
		return true
	case event.Key() == tcell.KeyTab && (a.focus != PaneEditor || a.buf.Mode() == textedit.Normal):
		if a.focus == PaneEditor {
			a.setFocus(PaneGrid)
		} else {
			a.setFocus(PaneEditor)
		}
		return true
	case event.Key() == tcell.KeyRune && event.Rune() == '?' && a.focus == PaneGrid:
		a.showHelp()
		return true
	case event.Key() == tcell.KeyRune && event.Rune() == '`' && event.Modifiers()&tcell.ModCtrl != 0:
		a.showConnectionManager()
		return true
	}
	return false
}

// toKeyEvent translates a *tcell.EventKey into the terminal-independent
// textedit.KeyEvent the modal buffer consumes.
func toKeyEvent(event *tcell.EventKey) textedit.KeyEvent {
	switch event.Key() {
	case tcell.KeyEsc:
		return textedit.KeyEvent{Special: textedit.KeyEscape}
	case tcell.KeyEnter:
		return textedit.KeyEvent{Special: textedit.KeyEnter}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return textedit.KeyEvent{Special: textedit.KeyBackspace}
	case tcell.KeyDelete:
		return textedit.KeyEvent{Special: textedit.KeyDelete}
	case tcell.KeyLeft:
		return textedit.KeyEvent{Special: textedit.KeyLeft}
	case tcell.KeyRight:
		return textedit.KeyEvent{Special: textedit.KeyRight}
	case tcell.KeyUp:
		return textedit.KeyEvent{Special: textedit.KeyUp}
	case tcell.KeyDown:
		return textedit.KeyEvent{Special: textedit.KeyDown}
	case tcell.KeyHome:
		return textedit.KeyEvent{Special: textedit.KeyHome}
	case tcell.KeyEnd:
		return textedit.KeyEvent{Special: textedit.KeyEnd}
	case tcell.KeyTab:
		return textedit.KeyEvent{Special: textedit.KeyTab}
	case tcell.KeyCtrlD:
		return textedit.KeyEvent{Special: textedit.KeyCtrlD, HalfPage: 10}
	case tcell.KeyCtrlU:
		return textedit.KeyEvent{Special: textedit.KeyCtrlU, HalfPage: 10}
	default:
		return textedit.KeyEvent{Rune: event.Rune()}
	}
}

// routeEditorKey forwards a keystroke to the query buffer's modal
// engine. Enter in Normal mode submits the buffer; ":" opens the
// command line; Tab in Insert mode opens identifier completion. Yanks
// are mirrored to the system clipboard.
func (a *App) routeEditorKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyEnter && a.buf.Mode() == textedit.Normal {
		a.runQuery()
		return nil
	}
	if event.Key() == tcell.KeyRune && event.Rune() == ':' && a.buf.Mode() == textedit.Normal {
		a.promptExCommand()
		return nil
	}
	if event.Key() == tcell.KeyRune && event.Rune() == '/' && a.buf.Mode() == textedit.Normal {
		a.promptEditorSearch()
		return nil
	}
	if event.Key() == tcell.KeyRune && event.Rune() == 'n' && a.buf.Mode() == textedit.Normal {
		a.buf.NextMatch()
		return nil
	}
	if event.Key() == tcell.KeyRune && event.Rune() == 'N' && a.buf.Mode() == textedit.Normal {
		a.buf.PrevMatch()
		return nil
	}
	if event.Key() == tcell.KeyTab && a.buf.Mode() == textedit.Insert {
		a.openCompletion()
		return nil
	}
	ev := a.buf.Handle(toKeyEvent(event))
	if ev.Yanked {
		if err := copyToClipboard(a.buf.YankText()); err != nil {
			a.status.Error(err)
		}
	}
	return nil
}

// openCompletion starts the completion popup over the identifier prefix
// left of the cursor.
func (a *App) openCompletion() {
	prefix := wordBeforeCursor(a.buf)
	c := startCompletion(a.schema, prefix)
	if c == nil {
		a.status.Message("no completions")
		return
	}
	a.completion = c
	a.status.Message("%s", c.statusLine())
}

// routeCompletion handles keys while the completion popup is open:
// Tab/Shift-Tab cycle, Enter accepts, Esc closes, identifier
// characters extend the prefix, anything else closes the popup and is
// then processed normally.
func (a *App) routeCompletion(event *tcell.EventKey) *tcell.EventKey {
	c := a.completion
	switch {
	case event.Key() == tcell.KeyTab:
		c.Cycle(1)
	case event.Key() == tcell.KeyBacktab:
		c.Cycle(-1)
	case event.Key() == tcell.KeyEnter:
		a.acceptCompletion()
		return nil
	case event.Key() == tcell.KeyEsc:
		a.completion = nil
		a.status.Message("")
		return nil
	case event.Key() == tcell.KeyRune && isIdentRune(event.Rune()):
		a.buf.Handle(textedit.KeyEvent{Rune: event.Rune()})
		if !c.Extend(event.Rune()) {
			a.completion = nil
			a.status.Message("")
			return nil
		}
	default:
		a.completion = nil
		a.status.Message("")
		return a.routeKey(event)
	}
	a.status.Message("%s", c.statusLine())
	return nil
}

// acceptCompletion types the highlighted candidate's remaining
// characters into the buffer.
func (a *App) acceptCompletion() {
	c := a.completion
	a.completion = nil
	rest := c.Current()[len(c.Prefix):]
	for _, r := range rest {
		a.buf.Handle(textedit.KeyEvent{Rune: r})
	}
	a.status.Message("")
}

// routeGridKey implements the result grid's navigation and command
// keys, driven entirely off internal/grid's ViewState.
func (a *App) routeGridKey(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case event.Key() == tcell.KeyLeft, event.Rune() == 'h':
		a.view.CursorCol--
	case event.Key() == tcell.KeyRight, event.Rune() == 'l':
		a.view.CursorCol++
	case event.Key() == tcell.KeyUp, event.Rune() == 'k':
		a.view.CursorRow--
	case event.Key() == tcell.KeyDown, event.Rune() == 'j':
		a.view.CursorRow++
	case event.Key() == tcell.KeyCtrlD, event.Key() == tcell.KeyPgDn:
		a.view.CursorRow += 10
	case event.Key() == tcell.KeyCtrlU, event.Key() == tcell.KeyPgUp:
		a.view.CursorRow -= 10
	case event.Rune() == 'G':
		a.view.CursorRow = len(a.model.Rows) - 1
	case event.Rune() == '0':
		a.view.CursorCol = 0
	case event.Rune() == '$':
		a.view.CursorCol = len(a.model.Headers) - 1
	case event.Rune() == ' ':
		a.view.ToggleRowSelection(a.view.CursorRow)
	case event.Rune() == '/':
		a.promptGridSearch()
		return nil
	case event.Rune() == 'n':
		a.view.NextMatch()
	case event.Rune() == 'N':
		a.view.PrevMatch()
	case event.Key() == tcell.KeyEnter, event.Rune() == 'e':
		a.enterCellEdit()
	case event.Rune() == 'v':
		a.showRowDetail()
		return nil
	case event.Rune() == 'y':
		a.copyRows(false)
	case event.Rune() == 'Y':
		a.copyRows(true)
	case event.Rune() == 'c':
		a.copyCurrentCell()
	case event.Rune() == 'd':
		a.confirmDeleteSelectedRows()
	case event.Rune() == '>':
		a.model.WidenColumn(a.view.CursorCol, 2)
	case event.Rune() == '<':
		a.model.WidenColumn(a.view.CursorCol, -2)
	case event.Rune() == '=':
		a.model.AutoFitColumn(a.view.CursorCol)
	case event.Rune() == ':':
		a.promptExCommand()
		return nil
	default:
		return event
	}
	a.view.ClampCursor(a.model)
	a.status.CellPreview(a.model, a.view.CursorRow, a.view.CursorCol)
	return nil
}

// routeSchemaKey drives the sidebar tree: j/k translate to arrow moves
// for the TreeView; everything else falls through to the tree's own
// handler (Enter expands or collapses via the selected callback).
func (a *App) routeSchemaKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'j':
		return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
	case 'k':
		return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	}
	return event
}

// runSequenceResult dispatches a completed two-key "g" sequence.
// Template sequences consume the {schema, table} context captured from
// the sidebar; without one they fall back to the grid's source table.
func (a *App) runSequenceResult(result vimseq.Result, name string, ctx any) {
	if result != vimseq.Completed {
		a.status.Message("invalid key sequence")
		return
	}
	table, hasTable := ctx.(schema.Table)
	if !hasTable {
		table, hasTable = a.sourceTableFromGrid()
	}
	switch name {
	case "goto-top":
		if a.focus == PaneGrid {
			a.view.CursorRow = 0
			a.view.ClampCursor(a.model)
		} else {
			a.buf.GotoTop()
		}
	case "focus-schema":
		if a.sidebarOn {
			a.setFocus(PaneSchema)
		}
	case "open-connections":
		a.showConnectionManager()
	case "run-query":
		a.runQuery()
	case "open-tables":
		a.showTablePicker()
	case "tmpl-select":
		if hasTable {
			a.insertSelectTemplate(table)
		}
	case "tmpl-insert":
		if hasTable {
			a.insertInsertTemplate(table)
		}
	case "tmpl-update":
		if hasTable {
			a.insertUpdateTemplate(table)
		}
	case "tmpl-delete":
		if hasTable {
			a.insertDeleteTemplate(table)
		}
	}
}

// sourceTableFromGrid resolves the grid's source table against the
// schema cache so template sequences work from the grid too.
func (a *App) sourceTableFromGrid() (schema.Table, bool) {
	if a.schema == nil || a.model.SourceTable == "" {
		return schema.Table{}, false
	}
	name := a.model.SourceTable
	sch := "public"
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		sch, name = name[:idx], name[idx+1:]
	}
	return a.schema.Find(sch, name)
}
