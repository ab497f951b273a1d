// Package celledit implements the single-line inline editor over one
// grid cell. Cursor positions are byte offsets kept on rune
// boundaries; horizontal scroll is tracked in characters.
package celledit

import "unicode/utf8"

// Editor is the inline cell editor state.
type Editor struct {
	Active        bool
	Row, Col      int
	Value         string
	OriginalValue string
	Cursor        int // byte offset, always on a rune boundary
	ScrollOffset  int // character offset for horizontal scroll
}

func Start(row, col int, value string) *Editor {
	return &Editor{
		Active:        true,
		Row:           row,
		Col:           col,
		Value:         value,
		OriginalValue: value,
		Cursor:        len(value),
	}
}

// Modified reports whether the edited value differs from the original.
func (e *Editor) Modified() bool {
	return e.Active && e.Value != e.OriginalValue
}

// InsertRune inserts r at the cursor and advances the cursor past it.
func (e *Editor) InsertRune(r rune) {
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, r)
	e.Value = e.Value[:e.Cursor] + string(buf[:n]) + e.Value[e.Cursor:]
	e.Cursor += n
}

// DeleteBefore removes the rune immediately before the cursor
// (backspace).
func (e *Editor) DeleteBefore() {
	if e.Cursor == 0 {
		return
	}
	prev := prevRuneStart(e.Value, e.Cursor)
	e.Value = e.Value[:prev] + e.Value[e.Cursor:]
	e.Cursor = prev
}

// DeleteAt removes the rune at the cursor (forward delete).
func (e *Editor) DeleteAt() {
	if e.Cursor >= len(e.Value) {
		return
	}
	next := nextRuneEnd(e.Value, e.Cursor)
	e.Value = e.Value[:e.Cursor] + e.Value[next:]
}

// MoveLeft moves the cursor one character boundary to the left.
func (e *Editor) MoveLeft() {
	if e.Cursor > 0 {
		e.Cursor = prevRuneStart(e.Value, e.Cursor)
	}
}

// MoveRight moves the cursor one character boundary to the right.
func (e *Editor) MoveRight() {
	if e.Cursor < len(e.Value) {
		e.Cursor = nextRuneEnd(e.Value, e.Cursor)
	}
}

// Home moves the cursor to byte offset 0 (Ctrl-A alias).
func (e *Editor) Home() { e.Cursor = 0 }

// End moves the cursor to the end of the value (Ctrl-E alias).
func (e *Editor) End() { e.Cursor = len(e.Value) }

// DeleteToStart removes everything before the cursor (Ctrl-U).
func (e *Editor) DeleteToStart() {
	e.Value = e.Value[e.Cursor:]
	e.Cursor = 0
}

// DeleteToEnd removes everything from the cursor onward (Ctrl-K).
func (e *Editor) DeleteToEnd() {
	e.Value = e.Value[:e.Cursor]
}

// Clear empties the value entirely (Ctrl-W).
func (e *Editor) Clear() {
	e.Value = ""
	e.Cursor = 0
}

func (e *Editor) UpdateScroll(width int) {
	if width <= 0 {
		return
	}
	cursorChars := utf8.RuneCountInString(e.Value[:e.Cursor])
	if cursorChars < e.ScrollOffset+1 {
		e.ScrollOffset = cursorChars - 1
		if e.ScrollOffset < 0 {
			e.ScrollOffset = 0
		}
	} else if cursorChars > e.ScrollOffset+width-2 {
		e.ScrollOffset = cursorChars - width + 2
	}
	if e.ScrollOffset < 0 {
		e.ScrollOffset = 0
	}
}

func (e *Editor) Window(width int) (text string, clippedLeft, clippedRight bool) {
	runes := []rune(e.Value)
	start := e.ScrollOffset
	if start > len(runes) {
		start = len(runes)
	}
	end := start + width
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end]), start > 0, end < len(runes)
}

func prevRuneStart(s string, pos int) int {
	if pos == 0 {
		return 0
	}
	i := pos - 1
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func nextRuneEnd(s string, pos int) int {
	if pos >= len(s) {
		return len(s)
	}
	_, size := utf8.DecodeRuneInString(s[pos:])
	return pos + size
}
