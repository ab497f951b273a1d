// Package textedit implements the multi-line modal text buffer behind
// the query editor and the JSON cell editor: Normal/Insert/Visual modes,
// vim motions and operators, undo/redo, and a yank register.
package textedit

import "strings"

// Mode is the editor's current modal state.
type Mode int

const (
	Normal Mode = iota
	Insert
	Visual
	VisualLine
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "NORMAL"
	case Insert:
		return "INSERT"
	case Visual:
		return "VISUAL"
	case VisualLine:
		return "V-LINE"
	default:
		return "?"
	}
}

// Pos is a (line, column) cursor position. Column is a rune index, not
// a byte offset.
type Pos struct {
	Line, Col int
}

// snapshot captures buffer content for undo/redo.
type snapshot struct {
	lines  []string
	cursor Pos
}

// Buffer is the full modal text editor state.
type Buffer struct {
	lines  []string
	cursor Pos
	mode   Mode

	visualAnchor Pos
	pendingOp    rune // 'd', 'c', or 'y'; 0 when no operator pending
	yank         string
	yankLinewise bool

	undoStack []snapshot
	redoStack []snapshot

	savedText string // snapshot compared against to derive Modified

	search SearchState
}

// New returns an empty single-line buffer in Normal mode.
func New() *Buffer {
	return &Buffer{lines: []string{""}, mode: Normal}
}

// NewWithText seeds the buffer with initial content, split on '\n'.
func NewWithText(text string) *Buffer {
	b := &Buffer{lines: strings.Split(text, "\n"), mode: Normal}
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
	return b
}

// Text returns the full buffer content joined with '\n'.
func (b *Buffer) Text() string { return strings.Join(b.lines, "\n") }

// SetText replaces the buffer content wholesale (used by session
// restore, templates, the history picker and the JSON editor's
// :format), resetting cursor and undo history.
func (b *Buffer) SetText(text string) {
	b.lines = strings.Split(text, "\n")
	if len(b.lines) == 0 {
		b.lines = []string{""}
	}
	b.cursor = Pos{}
	b.undoStack = nil
	b.redoStack = nil
}

func (b *Buffer) MarkSaved() {
	b.savedText = b.Text()
}

// Modified reports whether the buffer differs from the last saved
// snapshot.
func (b *Buffer) Modified() bool {
	return b.Text() != b.savedText
}

// Mode returns the current mode.
func (b *Buffer) Mode() Mode { return b.mode }

// YankText returns the last yanked or deleted text, so callers can
// mirror the register to the system clipboard.
func (b *Buffer) YankText() string { return b.yank }

// GotoTop moves the cursor to the start of the buffer ("gg").
func (b *Buffer) GotoTop() { b.cursor = Pos{} }

// Cursor returns the current cursor position.
func (b *Buffer) Cursor() Pos { return b.cursor }

// PendingOperator returns the operator awaiting a motion, or 0.
func (b *Buffer) PendingOperator() rune { return b.pendingOp }

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns line i's runes, or nil if out of range.
func (b *Buffer) Line(i int) []rune {
	if i < 0 || i >= len(b.lines) {
		return nil
	}
	return []rune(b.lines[i])
}

func (b *Buffer) clampCursor() {
	if b.cursor.Line < 0 {
		b.cursor.Line = 0
	}
	if b.cursor.Line >= len(b.lines) {
		b.cursor.Line = len(b.lines) - 1
	}
	maxCol := len([]rune(b.lines[b.cursor.Line]))
	if b.mode == Normal && maxCol > 0 {
		maxCol--
	}
	if b.cursor.Col > maxCol {
		b.cursor.Col = maxCol
	}
	if b.cursor.Col < 0 {
		b.cursor.Col = 0
	}
}

func (b *Buffer) snapshot() snapshot {
	lines := make([]string, len(b.lines))
	copy(lines, b.lines)
	return snapshot{lines: lines, cursor: b.cursor}
}

// pushUndo records the buffer's current state before a mutation and
// clears the redo stack, matching vim's "any new edit discards redo
// history" behavior.
func (b *Buffer) pushUndo() {
	b.undoStack = append(b.undoStack, b.snapshot())
	b.redoStack = nil
}

// Undo reverts the most recent mutation, if any.
func (b *Buffer) Undo() bool {
	if len(b.undoStack) == 0 {
		return false
	}
	b.redoStack = append(b.redoStack, b.snapshot())
	top := b.undoStack[len(b.undoStack)-1]
	b.undoStack = b.undoStack[:len(b.undoStack)-1]
	b.lines, b.cursor = top.lines, top.cursor
	return true
}

// Redo reapplies the most recently undone mutation, if any.
func (b *Buffer) Redo() bool {
	if len(b.redoStack) == 0 {
		return false
	}
	b.undoStack = append(b.undoStack, b.snapshot())
	top := b.redoStack[len(b.redoStack)-1]
	b.redoStack = b.redoStack[:len(b.redoStack)-1]
	b.lines, b.cursor = top.lines, top.cursor
	return true
}
