package main

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tsql/internal/celledit"
	"tsql/internal/grid"
)

// GridView is a tview.Box-based primitive that renders a grid.Model through
// a grid.ViewState viewport: a 3-cell marker column, bordered header row, a
// separator, then as many data rows as fit. Search matches render with a
// yellow background (the current match orange), and an in-progress inline
// cell edit renders in place of its cell.
type GridView struct {
	*tview.Box

	model *grid.Model
	view  *grid.ViewState

	// cellEditor reports the active inline edit, if any; wired to the
	// app so the view never holds stale editor state.
	cellEditor func() *celledit.Editor

	cellPadding int
	headerColor tcell.Color
	headerBg    tcell.Color
	selectedBg  tcell.Color
	matchBg     tcell.Color
	currMatchBg tcell.Color
}

// NewGridView creates an empty grid view; SetModel attaches data.
func NewGridView() *GridView {
	return &GridView{
		Box:         tview.NewBox(),
		cellPadding: 1,
		headerColor: tcell.ColorWhite,
		headerBg:    tcell.ColorDarkSlateGray,
		selectedBg:  tcell.ColorDarkBlue,
		matchBg:     tcell.ColorYellow,
		currMatchBg: tcell.ColorOrange,
	}
}

// SetModel attaches the result set and its viewport state to render.
func (g *GridView) SetModel(m *grid.Model, v *grid.ViewState) *GridView {
	g.model, g.view = m, v
	return g
}

// SetCellEditorFunc wires the provider for the active inline cell edit.
func (g *GridView) SetCellEditorFunc(f func() *celledit.Editor) *GridView {
	g.cellEditor = f
	return g
}

func (g *GridView) Draw(screen tcell.Screen) {
	g.Box.DrawForSubclass(screen, g)
	x, y, width, height := g.GetInnerRect()
	if g.model == nil || len(g.model.Headers) == 0 || width <= 0 || height <= 0 {
		return
	}

	marker := g.view.MarkerWidth
	dataWidth := width - marker
	if dataWidth <= 0 {
		return
	}

	g.view.EnsureRowVisible(height - 2)
	g.view.EnsureColVisible(g.model.ColWidth, dataWidth)

	currentY := y
	g.drawHeaderRow(screen, x+marker, currentY, dataWidth)
	currentY++
	g.drawSeparator(screen, x, currentY, width)
	currentY++

	maxRows := height - 2
	for i := 0; i < maxRows && currentY < y+height; i++ {
		rowIdx := g.view.RowOffset + i
		if rowIdx >= len(g.model.Rows) {
			break
		}
		g.drawMarker(screen, x, currentY, rowIdx)
		g.drawDataRow(screen, x+marker, currentY, dataWidth, rowIdx)
		currentY++
	}
}

// drawMarker renders the left marker column: "▶" on the cursor row and
// "*" on selected rows.
func (g *GridView) drawMarker(screen tcell.Screen, x, y, rowIdx int) {
	style := tcell.StyleDefault
	r := ' '
	if rowIdx == g.view.CursorRow {
		r = '▶'
		style = style.Foreground(tcell.ColorAqua)
	}
	screen.SetContent(x, y, r, nil, style)
	sel := ' '
	if _, ok := g.view.SelectedRows[rowIdx]; ok {
		sel = '*'
	}
	screen.SetContent(x+1, y, sel, nil, tcell.StyleDefault.Foreground(tcell.ColorGreen))
	screen.SetContent(x+2, y, ' ', nil, tcell.StyleDefault)
}

func (g *GridView) visibleColumns(width int) (first, last int) {
	first = g.view.ColOffset
	used := 0
	for i := first; i < len(g.model.Headers); i++ {
		w := g.model.ColWidth[i] + 2*g.cellPadding + 1
		if used+w > width && i > first {
			break
		}
		used += w
		last = i
	}
	return first, last
}

func (g *GridView) drawHeaderRow(screen tcell.Screen, x, y, width int) {
	first, last := g.visibleColumns(width)
	style := tcell.StyleDefault.Foreground(g.headerColor).Background(g.headerBg).Bold(true)
	col := x
	for i := first; i <= last && i < len(g.model.Headers); i++ {
		text := padCell(g.model.Headers[i], g.model.ColWidth[i])
		col = drawText(screen, col, y, style, " "+text+" ")
	}
	fillRest(screen, col, y, x+width, style)
}

func (g *GridView) drawSeparator(screen tcell.Screen, x, y, width int) {
	style := tcell.StyleDefault
	for i := 0; i < width; i++ {
		screen.SetContent(x+i, y, tcell.RuneHLine, nil, style)
	}
}

// matchKind reports whether (row, col) is a search match, and whether
// it is the current one.
func (g *GridView) matchKind(row, col int) (isMatch, isCurrent bool) {
	for i, m := range g.view.Search.Matches {
		if m.Row == row && m.Col == col {
			return true, i == g.view.Search.CurrentMatch
		}
	}
	return false, false
}

func (g *GridView) drawDataRow(screen tcell.Screen, x, y, width, rowIdx int) {
	first, last := g.visibleColumns(width)
	onCursorRow := rowIdx == g.view.CursorRow
	_, inSel := g.view.SelectedRows[rowIdx]

	var editor *celledit.Editor
	if g.cellEditor != nil {
		editor = g.cellEditor()
	}

	col := x
	for i := first; i <= last && i < len(g.model.Headers); i++ {
		cellWidth := g.model.ColWidth[i]
		if editor != nil && editor.Row == rowIdx && editor.Col == i {
			col = g.drawEditingCell(screen, col, y, cellWidth, editor)
			continue
		}

		value := ""
		if i < len(g.model.Rows[rowIdx]) {
			value = g.model.Rows[rowIdx][i]
		}
		style := tcell.StyleDefault
		if inSel {
			style = style.Background(tcell.ColorDarkGreen)
		}
		if isMatch, isCurrent := g.matchKind(rowIdx, i); isMatch {
			bg := g.matchBg
			if isCurrent {
				bg = g.currMatchBg
			}
			style = style.Background(bg).Foreground(tcell.ColorBlack)
		}
		if onCursorRow && i == g.view.CursorCol {
			style = style.Background(g.selectedBg).Foreground(tcell.ColorWhite).Bold(true)
		}
		text := padCell(value, cellWidth)
		col = drawText(screen, col, y, style, " "+text+" ")
	}
	fillRest(screen, col, y, x+width, tcell.StyleDefault)
}

// drawEditingCell renders the inline cell editor inside the cell's
// bounds: the scrolled character window, an inverse-video cursor, and
// "<"/">" clip indicators when content extends beyond the window.
func (g *GridView) drawEditingCell(screen tcell.Screen, x, y, cellWidth int, e *celledit.Editor) int {
	e.UpdateScroll(cellWidth)
	window, clippedLeft, clippedRight := e.Window(cellWidth)
	runes := []rune(window)

	style := tcell.StyleDefault.Background(tcell.ColorDarkSlateGray)
	cursorChars := len([]rune(e.Value[:e.Cursor])) - e.ScrollOffset

	left := ' '
	if clippedLeft {
		left = '<'
	}
	screen.SetContent(x, y, left, nil, style.Foreground(tcell.ColorYellow))
	for i := 0; i < cellWidth; i++ {
		r := ' '
		if i < len(runes) {
			r = runes[i]
		}
		s := style
		if i == cursorChars {
			s = s.Reverse(true)
		}
		screen.SetContent(x+1+i, y, r, nil, s)
	}
	right := ' '
	if clippedRight {
		right = '>'
	}
	screen.SetContent(x+1+cellWidth, y, right, nil, style.Foreground(tcell.ColorYellow))
	return x + cellWidth + 2
}

func padCell(text string, width int) string {
	r := []rune(text)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return text + strings.Repeat(" ", width-len(r))
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func fillRest(screen tcell.Screen, from, y, to int, style tcell.Style) {
	for x := from; x < to; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}
}
