package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tsql/internal/connstore"
	"tsql/internal/grid"
	"tsql/internal/textedit"
)

func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

func (a *App) showInputPrompt(label, initial string, onSubmit func(string)) {
	field := tview.NewInputField().
		SetLabel(label).
		SetText(initial).
		SetFieldWidth(0)
	field.SetDoneFunc(func(key tcell.Key) {
		a.pages.RemovePage(pagePrompt)
		a.setFocus(a.focus)
		if key == tcell.KeyEnter {
			onSubmit(field.GetText())
		}
	})
	field.SetBorder(true)
	a.pages.AddPage(pagePrompt, centered(field, 60, 3), true, true)
	a.app.SetFocus(field)
}

// showConfirm opens a yes/no tview.Modal, running onYes only when the
// user picks "Yes".
func (a *App) showConfirm(message string, onYes func()) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(idx int, label string) {
			a.pages.RemovePage(pageConfirm)
			a.setFocus(a.focus)
			if label == "Yes" {
				onYes()
			}
		})
	a.pages.AddPage(pageConfirm, modal, true, true)
}

const helpText = `Editor (Normal mode)
  Enter       run query
  :           command line
  /  n  N     search query text, next/previous match
  i, a, o, O  enter Insert mode
  v, V        enter Visual / Visual-Line mode
  Tab         (Insert) identifier completion
  gg          jump to first line
  gr          run query
  gt          open table picker
  gs/gi/gu/gd insert SELECT/INSERT/UPDATE/DELETE template
  gc          open connection manager
  ge          focus schema sidebar

Grid
  h j k l     move cursor
  Ctrl-d/u    half page down/up
  G           jump to last row
  0, $        jump to first/last column
  space       toggle row selection
  /  n  N     search, next/previous match
  Enter, e    edit cell
  v           row detail
  y / Y       copy row(s) as TSV (Y: with header)
  c           copy cell
  d           delete selected (or cursor) row(s)
  < > =       narrow/widen/auto-fit column

Global
  Ctrl-E      run query
  Ctrl-C      cancel query / copy grid row(s)
  Ctrl-O      connection picker
  Ctrl-R      history picker
  Ctrl-T      table picker
  Ctrl-F      grid search
  Ctrl-B      toggle schema sidebar
  Ctrl-H/J/K/L  move between panes
  Tab         switch editor/grid focus
  Esc         cancel / close / quit`

// showHelp opens the key-binding help modal.
func (a *App) showHelp() {
	modal := tview.NewModal().
		SetText(helpText).
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(idx int, label string) {
			a.pages.RemovePage(pageHelp)
			a.setFocus(a.focus)
		})
	a.pages.AddPage(pageHelp, modal, true, true)
}

func (a *App) showConnectionManager() {
	list := tview.NewList().ShowSecondaryText(true)
	a.populateConnectionList(list)

	list.SetSelectedFunc(func(i int, name, secondary string, shortcut rune) {
		entries := a.conns.Sorted()
		if i < 0 || i >= len(entries) {
			return
		}
		entry := entries[i]
		a.closeConnectionManager()
		a.switchConnection(entry)
	})

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Rune() == 'j':
			return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
		case event.Rune() == 'k':
			return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
		case event.Rune() == 'g':
			list.SetCurrentItem(0)
			return nil
		case event.Rune() == 'G':
			list.SetCurrentItem(list.GetItemCount() - 1)
			return nil
		case event.Rune() == 'a':
			a.showConnectionForm(nil)
			return nil
		case event.Rune() == 'e':
			a.editSelectedConnection(list)
			return nil
		case event.Rune() == 'd':
			a.deleteSelectedConnection(list)
			return nil
		case event.Rune() == 'f':
			a.cycleSelectedFavorite(list)
			return nil
		case event.Key() == tcell.KeyEsc:
			a.closeConnectionManager()
			return nil
		}
		return event
	})

	list.SetBorder(true).SetTitle(" connections (a:add e:edit d:delete f:favorite) ")
	breadcrumbs.RecordModal(pageConnManager, "open")
	a.pages.AddPage(pageConnManager, centered(list, 70, 20), true, true)
	a.app.SetFocus(list)
}

func (a *App) closeConnectionManager() {
	a.pages.RemovePage(pageConnManager)
	a.setFocus(a.focus)
}

func (a *App) populateConnectionList(list *tview.List) {
	list.Clear()
	for _, e := range a.conns.Sorted() {
		secondary := fmt.Sprintf("%s@%s:%d/%s", e.User, e.Host, e.Port, e.Database)
		if e.Favorite > 0 {
			secondary = fmt.Sprintf("★%d  %s", e.Favorite, secondary)
		}
		list.AddItem(e.Name, secondary, 0, nil)
	}
}

func (a *App) editSelectedConnection(list *tview.List) {
	entries := a.conns.Sorted()
	i := list.GetCurrentItem()
	if i < 0 || i >= len(entries) {
		return
	}
	entry := entries[i]
	a.showConnectionForm(&entry)
}

func (a *App) deleteSelectedConnection(list *tview.List) {
	entries := a.conns.Sorted()
	i := list.GetCurrentItem()
	if i < 0 || i >= len(entries) {
		return
	}
	entry := entries[i]
	a.showConfirm(fmt.Sprintf("Delete connection %q?", entry.Name), func() {
		if err := a.conns.Delete(entry.Name); err != nil {
			a.status.Error(err)
			return
		}
		if err := a.conns.Save(); err != nil {
			a.status.Error(err)
		}
		a.showConnectionManager()
	})
}

func (a *App) cycleSelectedFavorite(list *tview.List) {
	entries := a.conns.Sorted()
	i := list.GetCurrentItem()
	if i < 0 || i >= len(entries) {
		return
	}
	entry := entries[i]
	if err := a.conns.CycleFavorite(entry.Name); err != nil {
		a.status.Error(err)
		return
	}
	if err := a.conns.Save(); err != nil {
		a.status.Error(err)
	}
	a.populateConnectionList(list)
}

// showConnectionForm opens the add/edit connection tview.Form, a
// pastable postgres:// URL field alongside the discrete host/port/
// database/user/password/sslmode fields.
func (a *App) showConnectionForm(editing *connstore.Entry) {
	form := tview.NewForm()
	entry := connstore.Entry{SSLMode: connstore.SSLPrefer, Port: 5432}
	originalName := ""
	if editing != nil {
		entry = *editing
		originalName = editing.Name
	}

	form.AddInputField("Name", entry.Name, 30, nil, nil)
	form.AddInputField("Paste URL", "", 60, nil, nil)
	form.AddInputField("Host", entry.Host, 30, nil, nil)
	form.AddInputField("Port", fmt.Sprintf("%d", entry.Port), 10, nil, nil)
	form.AddInputField("Database", entry.Database, 30, nil, nil)
	form.AddInputField("Username", entry.User, 30, nil, nil)
	form.AddPasswordField("Password", "", 30, '*', nil)
	form.AddCheckbox("Save password to keychain", true, nil)
	form.AddDropDown("SSL Mode", []string{"disable", "prefer", "require", "verify-ca", "verify-full"}, sslModeIndex(entry.SSLMode), nil)

	form.AddButton("Test", func() { a.testConnectionForm(form) })
	form.AddButton("Save", func() { a.saveConnectionForm(form, originalName) })
	form.AddButton("Cancel", func() { a.closeConnectionForm() })

	form.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyCtrlS:
			a.saveConnectionForm(form, originalName)
			return nil
		case event.Key() == tcell.KeyCtrlT:
			a.testConnectionForm(form)
			return nil
		case event.Key() == tcell.KeyEsc:
			a.closeConnectionForm()
			return nil
		}
		return event
	})

	title := " new connection "
	if editing != nil {
		title = " edit connection "
	}
	form.SetBorder(true).SetTitle(title)
	breadcrumbs.RecordModal(pageConnForm, "open")
	a.pages.AddPage(pageConnForm, centered(form, 70, 20), true, true)
	a.app.SetFocus(form)
}

func sslModeIndex(mode connstore.SSLMode) int {
	switch mode {
	case connstore.SSLDisable:
		return 0
	case connstore.SSLRequire:
		return 2
	case connstore.SSLVerifyCA:
		return 3
	case connstore.SSLVerifyFull:
		return 4
	default:
		return 1
	}
}

func (a *App) closeConnectionForm() {
	a.pages.RemovePage(pageConnForm)
	a.setFocus(a.focus)
}

// formEntry reads the form's fields into a connstore.Entry and its
// password, applying the pasted URL (if any) as a base the discrete
// fields override.
func formEntry(form *tview.Form) (connstore.Entry, *string, error) {
	name := form.GetFormItemByLabel("Name").(*tview.InputField).GetText()
	pasted := form.GetFormItemByLabel("Paste URL").(*tview.InputField).GetText()

	entry := connstore.Entry{Name: name, SSLMode: connstore.SSLPrefer, Port: 5432}
	var password *string

	if strings.TrimSpace(pasted) != "" {
		parsed, pw, err := connstore.FromURL(name, pasted)
		if err != nil {
			return entry, nil, err
		}
		entry = parsed
		password = pw
	}

	if host := form.GetFormItemByLabel("Host").(*tview.InputField).GetText(); host != "" {
		entry.Host = host
	}
	if port := form.GetFormItemByLabel("Port").(*tview.InputField).GetText(); port != "" {
		fmt.Sscanf(port, "%d", &entry.Port)
	}
	if db := form.GetFormItemByLabel("Database").(*tview.InputField).GetText(); db != "" {
		entry.Database = db
	}
	if user := form.GetFormItemByLabel("Username").(*tview.InputField).GetText(); user != "" {
		entry.User = user
	}
	if pw := form.GetFormItemByLabel("Password").(*tview.InputField).GetText(); pw != "" {
		password = &pw
	}
	_, sslText := form.GetFormItemByLabel("SSL Mode").(*tview.DropDown).GetCurrentOption()
	if mode, ok := connstore.ParseSSLMode(sslText); ok {
		entry.SSLMode = mode
	}
	entry.Name = name
	return entry, password, nil
}

func (a *App) testConnectionForm(form *tview.Form) {
	entry, password, err := formEntry(form)
	if err != nil {
		a.status.Error(err)
		return
	}
	a.session.TestConnection(connstore.ToURL(entry, password))
}

func (a *App) saveConnectionForm(form *tview.Form, originalName string) {
	entry, password, err := formEntry(form)
	if err != nil {
		a.status.Error(err)
		return
	}
	if entry.Name == "" {
		a.status.Error(fmt.Errorf("connection name is required"))
		return
	}

	saveToKeychain := form.GetFormItemByLabel("Save password to keychain").(*tview.Checkbox).IsChecked()
	entry.PasswordInKeychain = saveToKeychain && password != nil

	var saveErr error
	if originalName == "" {
		saveErr = a.conns.Add(entry)
	} else {
		saveErr = a.conns.Update(originalName, entry)
	}
	if saveErr != nil {
		a.status.Error(saveErr)
		return
	}
	if saveToKeychain && password != nil {
		if err := connstore.SetPassword(entry.Name, *password); err != nil {
			a.status.Error(err)
		}
	}
	if err := a.conns.Save(); err != nil {
		a.status.Error(err)
		return
	}
	a.closeConnectionForm()
	a.status.Message("saved connection %q", entry.Name)
}

// openJSONEditorModal opens the full-screen modal editor for a cell
// whose content grid.NeedsJSONEditor flagged as too large or
// structured for the inline celledit.Editor.
func (a *App) openJSONEditorModal(row, col int, value string) {
	a.jsonEdit = textedit.NewJSONEditor(value)
	a.jsonEditRow, a.jsonEditCol = row, col

	view := NewEditorView(a.jsonEdit.Buffer)
	a.jsonView = view
	view.SetBorder(true).SetTitle(fmt.Sprintf(" %s [%s] (:w :q :wq :format) ", a.model.Headers[col], a.jsonEdit.ContentType()))
	view.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune && event.Rune() == ':' && a.jsonEdit.Mode() == textedit.Normal {
			a.promptJSONExCommand()
			return nil
		}
		if event.Key() == tcell.KeyEsc && a.jsonEdit.Mode() == textedit.Normal {
			if a.jsonEdit.Modified() {
				a.showConfirm("Discard changes?", func() { a.closeJSONEditorModal(false) })
				return nil
			}
			a.closeJSONEditorModal(false)
			return nil
		}
		a.jsonEdit.Handle(toKeyEvent(event))
		return nil
	})

	breadcrumbs.RecordModal(pageJSONEditor, "open")
	a.pages.AddPage(pageJSONEditor, view, true, true)
	a.app.SetFocus(view)
}

func (a *App) promptJSONExCommand() {
	a.showInputPrompt(":", "", func(line string) {
		result := a.jsonEdit.RunEx(line)
		if !result.Handled {
			a.status.Error(fmt.Errorf("unknown command %q", line))
			a.app.SetFocus(a.pages)
			return
		}
		if result.Err != nil {
			a.status.Error(result.Err)
		} else if result.Message != "" {
			a.status.Message("%s", result.Message)
		}
		if result.Quit {
			a.closeJSONEditorModal(result.Write)
		} else if result.Write {
			a.commitJSONEditor()
		}
		if a.jsonEdit != nil {
			a.app.SetFocus(a.jsonView)
		}
	})
}

// closeJSONEditorModal dismisses the overlay, committing the edited
// value as a cell UPDATE first when commit is true.
func (a *App) closeJSONEditorModal(commit bool) {
	if commit {
		a.commitJSONEditor()
	}
	a.pages.RemovePage(pageJSONEditor)
	a.jsonEdit = nil
	a.jsonView = nil
	a.setFocus(PaneGrid)
}

func (a *App) commitJSONEditor() {
	if a.jsonEditCol < len(a.model.ColTypes) {
		if colType := strings.ToLower(a.model.ColTypes[a.jsonEditCol]); strings.Contains(colType, "json") {
			if !json.Valid([]byte(a.jsonEdit.Text())) {
				a.status.Error(fmt.Errorf("not valid JSON, refusing to save %s column", colType))
				return
			}
		}
	}
	pkValues := a.rowPKValues(a.jsonEditRow, a.model.PrimaryKeys)
	stmt, err := grid.BuildUpdate(a.model, a.jsonEditRow, a.jsonEditCol, a.jsonEdit.Text(), pkValues)
	if err != nil {
		a.status.Error(err)
		return
	}
	a.lastRequestID = a.session.SubmitUpdate(stmt, a.jsonEditRow, a.jsonEditCol, a.jsonEdit.Text())
	breadcrumbs.RecordDatabase("update cell")
}

// showRowDetail opens the row-detail modal: every column of the cursor
// row as a "name: value" list. Enter on a line closes the modal and
// starts editing that column; Esc returns to the grid.
func (a *App) showRowDetail() {
	row := a.view.CursorRow
	if row < 0 || row >= len(a.model.Rows) {
		return
	}
	list := tview.NewList().ShowSecondaryText(false)
	for i, h := range a.model.Headers {
		value := ""
		if i < len(a.model.Rows[row]) {
			value = a.model.Rows[row][i]
		}
		list.AddItem(fmt.Sprintf("%-20s %s", h, value), "", 0, nil)
	}
	list.SetCurrentItem(a.view.CursorCol)

	list.SetSelectedFunc(func(i int, main, secondary string, shortcut rune) {
		a.closeRowDetail()
		a.view.CursorCol = i
		a.view.ClampCursor(a.model)
		a.enterCellEdit()
	})
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Rune() == 'j':
			return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
		case event.Rune() == 'k':
			return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
		case event.Key() == tcell.KeyEsc, event.Rune() == 'v', event.Rune() == 'q':
			a.closeRowDetail()
			return nil
		}
		return event
	})

	list.SetBorder(true).SetTitle(fmt.Sprintf(" row %d (Enter: edit column) ", row+1))
	breadcrumbs.RecordModal(pageRowDetail, "open")
	a.pages.AddPage(pageRowDetail, centered(list, 76, 22), true, true)
	a.app.SetFocus(list)
}

func (a *App) closeRowDetail() {
	a.pages.RemovePage(pageRowDetail)
	a.setFocus(PaneGrid)
}
