package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sahilm/fuzzy"

	"tsql/internal/connstore"
	"tsql/internal/schema"
)

// showFuzzyPicker is the generic filter-as-you-type chooser backing the
// table and connection pickers: an input field over a result list,
// refiltered on every keystroke.
func (a *App) showFuzzyPicker(title string, items []string, onSelect func(string), extraKeys func(*tcell.EventKey) bool) {
	list := tview.NewList().ShowSecondaryText(false)
	for _, it := range items {
		list.AddItem(it, "", 0, nil)
	}

	field := tview.NewInputField().SetLabel("/ ")
	field.SetChangedFunc(func(text string) {
		list.Clear()
		if text == "" {
			for _, it := range items {
				list.AddItem(it, "", 0, nil)
			}
			return
		}
		for _, m := range fuzzy.Find(text, items) {
			list.AddItem(items[m.Index], "", 0, nil)
		}
	})
	field.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && list.GetItemCount() > 0 {
			text, _ := list.GetItemText(list.GetCurrentItem())
			a.closeFuzzyPicker()
			onSelect(text)
			return
		}
		if key == tcell.KeyEsc {
			a.closeFuzzyPicker()
		}
	})
	field.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyDown:
			list.SetCurrentItem(list.GetCurrentItem() + 1)
			return nil
		case tcell.KeyUp:
			list.SetCurrentItem(list.GetCurrentItem() - 1)
			return nil
		}
		if extraKeys != nil && extraKeys(event) {
			return nil
		}
		return event
	})

	body := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(field, 1, 0, true).
		AddItem(list, 0, 1, false)
	body.SetBorder(true).SetTitle(" " + title + " ")

	a.pages.AddPage(pagePicker, centered(body, 70, 20), true, true)
	a.app.SetFocus(field)
}

func (a *App) closeFuzzyPicker() {
	a.pages.RemovePage(pagePicker)
	a.setFocus(a.focus)
}

// showTablePicker opens Ctrl-T / "gt"'s fuzzy table chooser over every
// table the schema cache knows about, inserting a SELECT template on
// selection.
func (a *App) showTablePicker() {
	if a.schema == nil || len(a.schema.Tables) == 0 {
		a.status.Message("no tables loaded")
		return
	}
	labels := make([]string, len(a.schema.Tables))
	byLabel := make(map[string]schema.Table, len(a.schema.Tables))
	for i, t := range a.schema.Tables {
		label := t.Name
		if t.Schema != "" && t.Schema != "public" {
			label = t.Schema + "." + t.Name
		}
		labels[i] = label
		byLabel[label] = t
	}
	a.showFuzzyPicker("tables", labels, func(label string) {
		if t, ok := byLabel[label]; ok {
			a.insertSelectTemplate(t)
		}
	}, nil)
}

// showConnectionPicker opens Ctrl-O's fuzzy connection chooser.
// Selecting an entry connects to it, confirming first when the editor
// holds unsaved text; Ctrl-O again opens the full manager.
func (a *App) showConnectionPicker() {
	entries := a.conns.Sorted()
	if len(entries) == 0 {
		a.showConnectionManager()
		return
	}
	labels := make([]string, len(entries))
	byLabel := make(map[string]connstore.Entry, len(entries))
	for i, e := range entries {
		label := e.Name
		if e.Favorite > 0 {
			label = fmt.Sprintf("%d  %s", e.Favorite, e.Name)
		}
		labels[i] = label
		byLabel[label] = e
	}
	a.showFuzzyPicker("connections (Ctrl-O: manager)", labels, func(label string) {
		entry, ok := byLabel[label]
		if !ok {
			return
		}
		a.switchConnection(entry)
	}, func(event *tcell.EventKey) bool {
		if event.Key() == tcell.KeyCtrlO {
			a.closeFuzzyPicker()
			a.showConnectionManager()
			return true
		}
		return false
	})
}

// switchConnection dials entry, asking first when the editor has
// unsaved changes. The editor text is retained either way.
func (a *App) switchConnection(entry connstore.Entry) {
	connect := func() {
		password, err := connstore.ResolvePassword(entry, os.Getenv)
		if err != nil {
			a.status.Error(err)
			return
		}
		a.connectEntry(entry, password)
	}
	if a.buf.Modified() {
		a.showConfirm("You have unsaved changes. Switch connection?", connect)
		return
	}
	connect()
}

// showHistoryPicker opens Ctrl-R's history chooser. Filtering goes
// through the history log's scored fuzzy search, so results rank by
// match quality rather than recency alone; Enter loads the chosen
// query into the editor and marks it saved.
func (a *App) showHistoryPicker() {
	if len(a.history.Entries()) == 0 {
		a.status.Message("no history yet")
		return
	}

	list := tview.NewList().ShowSecondaryText(true)
	var queries []string
	populate := func(pattern string) {
		list.Clear()
		queries = queries[:0]
		for _, m := range a.history.Search(pattern) {
			secondary := m.Entry.RanAt.Format("2006-01-02 15:04:05")
			if m.Entry.Connection != "" {
				secondary += "  " + m.Entry.Connection
			}
			list.AddItem(firstLine(m.Entry.Query), secondary, 0, nil)
			queries = append(queries, m.Entry.Query)
		}
	}
	populate("")

	field := tview.NewInputField().SetLabel("/ ")
	field.SetChangedFunc(populate)
	field.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && list.GetItemCount() > 0 {
			q := queries[list.GetCurrentItem()]
			a.closeFuzzyPicker()
			a.buf.SetText(q)
			a.buf.MarkSaved()
			a.setFocus(PaneEditor)
			return
		}
		if key == tcell.KeyEsc {
			a.closeFuzzyPicker()
		}
	})
	field.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyDown:
			list.SetCurrentItem(list.GetCurrentItem() + 1)
			return nil
		case tcell.KeyUp:
			list.SetCurrentItem(list.GetCurrentItem() - 1)
			return nil
		}
		return event
	})

	body := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(field, 1, 0, true).
		AddItem(list, 0, 1, false)
	body.SetBorder(true).SetTitle(" history ")

	a.pages.AddPage(pagePicker, centered(body, 70, 20), true, true)
	a.app.SetFocus(field)
}

// firstLine truncates a multi-line query to its first line for list
// display.
func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " …"
		}
	}
	return s
}
