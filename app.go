package main

import (
	"fmt"
	"log"
	"time"

	"github.com/rivo/tview"

	"tsql/internal/celledit"
	"tsql/internal/connstore"
	"tsql/internal/dbsession"
	"tsql/internal/grid"
	"tsql/internal/history"
	"tsql/internal/schema"
	"tsql/internal/textedit"
	"tsql/internal/vimseq"
)

// Pane identifies which pane owns keyboard focus outside of a modal
// overlay: the query editor, the result grid, or the schema sidebar.
type Pane int

const (
	PaneEditor Pane = iota
	PaneGrid
	PaneSchema
)

const (
	pageMain        = "main"
	pageConfirm     = "confirm"
	pageConnForm    = "connform"
	pageConnManager = "connmanager"
	pagePicker      = "picker"
	pagePrompt      = "prompt"
	pageJSONEditor  = "jsoneditor"
	pageHelp        = "help"
	pageRowDetail   = "rowdetail"
)

type App struct {
	app   *tview.Application
	pages *tview.Pages
	root  *tview.Flex

	editor    *EditorView
	grid      *GridView
	statusTV  *tview.TextView
	status    *StatusBar
	schemaTV  *tview.TreeView
	sidebarOn bool

	buf                      *textedit.Buffer
	model                    *grid.Model
	view                     *grid.ViewState
	cell                     *celledit.Editor
	completion               *Completion
	jsonEdit                 *textedit.JSONEditor
	jsonView                 *EditorView
	jsonEditRow, jsonEditCol int

	sequences *vimseq.Engine

	session *dbsession.Session
	schema  *schema.Cache
	history *history.Log
	conns   *connstore.Store

	focus Pane

	lastQuery      string
	lastRequestID  uint64
	connectionName string
	running        bool

	// pendingExpandedNodes holds schema-tree paths restored from the
	// session snapshot, applied once the schema cache loads.
	pendingExpandedNodes []string
}

// NewApp constructs the wired App, loading persisted state (history,
// saved connections) but not yet connecting to any database — the
// caller decides whether to auto-connect or show the connection
// manager first.
func NewApp() (*App, error) {
	historyPath, err := getHistoryPath()
	if err != nil {
		return nil, err
	}
	log, err := history.Load(historyPath)
	if err != nil {
		return nil, err
	}

	connPath, err := getConnectionsPath()
	if err != nil {
		return nil, err
	}
	store, err := connstore.Load(connPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		buf:       textedit.New(),
		model:     grid.New(nil, nil, nil),
		view:      grid.NewViewState(),
		session:   dbsession.New(),
		history:   log,
		conns:     store,
		sidebarOn: true,
		sequences: vimseq.New(vimSequenceTable, 600*time.Millisecond),
	}
	a.buf.MarkSaved()
	return a, nil
}

// vimSequenceTable is the two-key "g"-prefixed sequence set, distinct
// from the editor buffer's own motion/operator engine. The tmpl-*
// entries consume a {schema, table} context when one was captured at
// sequence start (sidebar focus) and fall back to the grid's source
// table otherwise.
var vimSequenceTable = map[[2]rune]string{
	{'g', 'g'}: "goto-top",
	{'g', 'e'}: "focus-schema",
	{'g', 'c'}: "open-connections",
	{'g', 'r'}: "run-query",
	{'g', 't'}: "open-tables",
	{'g', 's'}: "tmpl-select",
	{'g', 'i'}: "tmpl-insert",
	{'g', 'u'}: "tmpl-update",
	{'g', 'd'}: "tmpl-delete",
}

func (a *App) buildLayout() {
	a.editor = NewEditorView(a.buf)
	a.editor.SetBorder(true).SetTitle(" query ")

	a.grid = NewGridView().SetModel(a.model, a.view)
	a.grid.SetCellEditorFunc(func() *celledit.Editor { return a.cell })
	a.grid.SetBorder(true).SetTitle(" results ")

	a.statusTV = tview.NewTextView().SetDynamicColors(true)
	a.status = NewStatusBar(func(text string) { a.statusTV.SetText(text) })
	a.status.SetConnectionStatus(a.session.Status())

	a.schemaTV = tview.NewTreeView().SetRoot(tview.NewTreeNode("schema"))
	a.schemaTV.SetBorder(true).SetTitle(" schema ")

	a.rebuildMainLayout()

	a.app.SetRoot(a.pages, true).SetFocus(a.editor)
	a.app.SetInputCapture(a.routeKey)
	a.app.EnableMouse(true)
	a.app.SetMouseCapture(a.routeMouse)
}

// rebuildMainLayout recomposes the main page's flex tree, called at
// startup and whenever the sidebar is toggled.
func (a *App) rebuildMainLayout() {
	center := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.editor, 0, 1, true).
		AddItem(a.grid, 0, 2, false)

	main := tview.NewFlex().SetDirection(tview.FlexColumn)
	if a.sidebarOn {
		main.AddItem(a.schemaTV, 28, 0, false)
	}
	main.AddItem(center, 0, 1, true)

	a.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(main, 0, 1, true).
		AddItem(a.statusTV, 1, 0, false)

	a.pages.RemovePage(pageMain)
	a.pages.AddPage(pageMain, a.root, true, true)
}

// toggleSidebar shows or hides the schema sidebar, moving focus off it
// first when hiding.
func (a *App) toggleSidebar() {
	a.sidebarOn = !a.sidebarOn
	if !a.sidebarOn && a.focus == PaneSchema {
		a.focus = PaneEditor
	}
	a.rebuildMainLayout()
	a.setFocus(a.focus)
}

// Run builds the layout, starts the session event drain loop and the
// redraw ticker, and blocks until the application quits.
func (a *App) Run() error {
	a.buildLayout()
	go a.drainEvents()

	// tview redraws on input and queued updates only, so the elapsed
	// timer needs a periodic nudge while a query is running. The
	// closure runs on the UI goroutine, so reading a.running here is
	// safe.
	ticker := time.NewTicker(100 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				a.app.QueueUpdateDraw(func() {
					if a.running {
						a.status.QueryTick()
					}
				})
			}
		}
	}()
	defer func() {
		ticker.Stop()
		close(done)
	}()

	return a.app.Run()
}

// Stop persists the session snapshot and history, tears down the DB
// connection, and exits the event loop. Persistence failures are
// logged, never fatal.
func (a *App) Stop() {
	if err := SaveSessionSnapshot(a.captureSessionState()); err != nil {
		log.Printf("Warning: could not save session: %v\n", err)
	}
	if err := a.history.Save(); err != nil {
		log.Printf("Warning: could not save history: %v\n", err)
	}
	a.session.Close()
	a.app.Stop()
}

// confirmQuit asks before exiting, with a sharper warning when the
// editor holds unsaved text.
func (a *App) confirmQuit() {
	msg := "Quit tsql?"
	if a.buf.Modified() {
		msg = "You have unsaved changes. Quit anyway?"
	}
	a.showConfirm(msg, func() { a.Stop() })
}

// setFocus switches keyboard focus between panes, recording the move
// for crash breadcrumbs.
func (a *App) setFocus(p Pane) {
	a.focus = p
	switch p {
	case PaneEditor:
		a.app.SetFocus(a.editor)
		breadcrumbs.RecordNavigation("focus", "editor")
	case PaneGrid:
		a.app.SetFocus(a.grid)
		breadcrumbs.RecordNavigation("focus", "grid")
	case PaneSchema:
		a.app.SetFocus(a.schemaTV)
		breadcrumbs.RecordNavigation("focus", "schema")
	}
}

// connectionStatusLine composes the session status with the active
// connection's name for the status bar glyph.
func (a *App) connectionStatusLine() string {
	if a.connectionName == "" {
		return ""
	}
	return fmt.Sprintf(" %s", a.connectionName)
}
