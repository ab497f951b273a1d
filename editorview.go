package main

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tsql/internal/textedit"
)

// EditorView renders a textedit.Buffer: plain text with the cursor
// highlighted and, in Visual/Visual-Line mode, the selection span shaded.
type EditorView struct {
	*tview.Box

	buf        *textedit.Buffer
	rowOffset  int
	selecting  func(line, col int) bool
}

// NewEditorView wraps buf for rendering; buf may be swapped later via
// SetBuffer (e.g. when a saved query is loaded).
func NewEditorView(buf *textedit.Buffer) *EditorView {
	return &EditorView{Box: tview.NewBox(), buf: buf}
}

// SetBuffer replaces the buffer being rendered.
func (v *EditorView) SetBuffer(buf *textedit.Buffer) *EditorView {
	v.buf = buf
	v.rowOffset = 0
	return v
}

func (v *EditorView) Buffer() *textedit.Buffer { return v.buf }

func (v *EditorView) Draw(screen tcell.Screen) {
	v.Box.DrawForSubclass(screen, v)
	x, y, width, height := v.GetInnerRect()
	if v.buf == nil || width <= 0 || height <= 0 {
		return
	}

	cursor := v.buf.Cursor()
	if cursor.Line < v.rowOffset {
		v.rowOffset = cursor.Line
	} else if cursor.Line >= v.rowOffset+height {
		v.rowOffset = cursor.Line - height + 1
	}

	var selFrom, selTo textedit.Pos
	inVisual := v.buf.Mode() == textedit.Visual || v.buf.Mode() == textedit.VisualLine
	if inVisual {
		selFrom, selTo = v.buf.VisualRange()
	}

	for i := 0; i < height; i++ {
		line := v.rowOffset + i
		if line >= v.buf.LineCount() {
			break
		}
		runes := v.buf.Line(line)
		for col := 0; col < width; col++ {
			style := tcell.StyleDefault
			r := ' '
			if col < len(runes) {
				r = runes[col]
			}
			if inVisual && posInRange(line, col, selFrom, selTo, v.buf.Mode()) {
				style = style.Background(tcell.ColorDarkSlateBlue)
			}
			if line == cursor.Line && col == cursor.Col {
				style = style.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
			}
			screen.SetContent(x+col, y+i, r, nil, style)
		}
	}
}

func posInRange(line, col int, from, to textedit.Pos, mode textedit.Mode) bool {
	if mode == textedit.VisualLine {
		return line >= from.Line && line <= to.Line
	}
	if line < from.Line || line > to.Line {
		return false
	}
	if from.Line == to.Line {
		return col >= from.Col && col <= to.Col
	}
	if line == from.Line {
		return col >= from.Col
	}
	if line == to.Line {
		return col <= to.Col
	}
	return true
}

// ModeLabel returns the NORMAL/INSERT/VISUAL/V-LINE badge text shown in
// the status line next to the editor pane.
func (v *EditorView) ModeLabel() string {
	if v.buf == nil {
		return ""
	}
	return v.buf.Mode().String()
}

// joinedLines is a small helper some overlays use to render a buffer's
// content as a single string (e.g. a read-only preview).
func joinedLines(b *textedit.Buffer) string {
	lines := make([]string, b.LineCount())
	for i := range lines {
		lines[i] = string(b.Line(i))
	}
	return strings.Join(lines, "\n")
}
