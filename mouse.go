package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// scrollLines is how many rows one wheel notch moves.
const scrollLines = 3

// routeMouse mirrors the key ladder for mouse events: while a modal
// page is on top, tview routes the event to it; otherwise clicks move
// focus by spatial hit test against the pane rectangles and wheel
// events scroll the pane under the pointer.
func (a *App) routeMouse(event *tcell.EventMouse, action tview.MouseAction) (*tcell.EventMouse, tview.MouseAction) {
	if name, _ := a.pages.GetFrontPage(); name != pageMain {
		return event, action
	}
	x, y := event.Position()

	switch action {
	case tview.MouseLeftClick:
		switch {
		case a.sidebarOn && a.schemaTV.InRect(x, y):
			a.setFocus(PaneSchema)
		case a.editor.InRect(x, y):
			a.setFocus(PaneEditor)
		case a.grid.InRect(x, y):
			a.setFocus(PaneGrid)
		}
		breadcrumbs.RecordMouse("click")
		return event, action

	case tview.MouseScrollUp, tview.MouseScrollDown:
		delta := scrollLines
		if action == tview.MouseScrollUp {
			delta = -scrollLines
		}
		switch {
		case a.grid.InRect(x, y):
			a.view.CursorRow += delta
			a.view.ClampCursor(a.model)
		case a.editor.InRect(x, y):
			for i := 0; i < scrollLines; i++ {
				if delta > 0 {
					a.buf.Handle(toKeyEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)))
				} else {
					a.buf.Handle(toKeyEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)))
				}
			}
		default:
			return event, action
		}
		return nil, action
	}
	return event, action
}
