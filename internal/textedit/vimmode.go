package textedit

import "strings"

// Handle is the single entry point the input router calls with every
// keystroke while the buffer has modal focus.
func (b *Buffer) Handle(ev KeyEvent) Event {
	switch b.mode {
	case Insert:
		return b.handleInsert(ev)
	case Visual, VisualLine:
		return b.handleVisual(ev)
	default:
		return b.handleNormal(ev)
	}
}

func (b *Buffer) enterInsert() {
	b.mode = Insert
}

func (b *Buffer) enterNormal() {
	b.mode = Normal
	b.pendingOp = 0
	b.clampCursor()
}

func (b *Buffer) handleInsert(ev KeyEvent) Event {
	switch ev.Special {
	case KeyEscape:
		b.enterNormal()
		return Event{ModeChanged: true}
	case KeyBackspace:
		b.pushUndo()
		b.deleteBefore()
		return Event{}
	case KeyDelete:
		b.pushUndo()
		b.deleteAt()
		return Event{}
	case KeyEnter:
		b.pushUndo()
		b.splitLine()
		return Event{}
	case KeyLeft:
		if b.cursor.Col > 0 {
			b.cursor.Col--
		}
		return Event{}
	case KeyRight:
		if b.cursor.Col < len(b.Line(b.cursor.Line)) {
			b.cursor.Col++
		}
		return Event{}
	case KeyUp:
		b.moveVertical(-1)
		return Event{}
	case KeyDown:
		b.moveVertical(1)
		return Event{}
	case KeyHome:
		b.cursor.Col = 0
		return Event{}
	case KeyEnd:
		b.cursor.Col = len(b.Line(b.cursor.Line))
		return Event{}
	case KeyTab:
		b.pushUndo()
		b.insertRune('\t')
		return Event{}
	}
	if ev.Rune != 0 {
		b.pushUndo()
		b.insertRune(ev.Rune)
	}
	return Event{}
}

func (b *Buffer) moveVertical(delta int) {
	b.cursor.Line += delta
	if b.cursor.Line < 0 {
		b.cursor.Line = 0
	}
	if b.cursor.Line >= b.LineCount() {
		b.cursor.Line = b.LineCount() - 1
	}
	maxCol := len(b.Line(b.cursor.Line))
	if b.mode == Normal && maxCol > 0 {
		maxCol--
	}
	if b.cursor.Col > maxCol {
		b.cursor.Col = maxCol
	}
}

// handleNormal implements Normal-mode motions, the operator-pending
// protocol (d/c/y combined with a motion, or doubled for linewise),
// and the mode-entry keys (i/a/I/A/o/O, v/V).
func (b *Buffer) handleNormal(ev KeyEvent) Event {
	if ev.Special == KeyEscape {
		b.pendingOp = 0
		return Event{}
	}
	r := ev.Rune

	if b.pendingOp != 0 {
		return b.handleOperatorMotion(r)
	}

	switch ev.Special {
	case KeyCtrlD:
		b.moveVertical(halfPageOrDefault(ev.HalfPage, b.LineCount()))
		return Event{}
	case KeyCtrlU:
		b.moveVertical(-halfPageOrDefault(ev.HalfPage, b.LineCount()))
		return Event{}
	}

	switch r {
	case 'i':
		b.enterInsert()
		return Event{ModeChanged: true}
	case 'a':
		if len(b.Line(b.cursor.Line)) > 0 {
			b.cursor.Col++
		}
		b.enterInsert()
		return Event{ModeChanged: true}
	case 'I':
		b.cursor.Col = firstNonBlank(b.Line(b.cursor.Line))
		b.enterInsert()
		return Event{ModeChanged: true}
	case 'A':
		b.cursor.Col = len(b.Line(b.cursor.Line))
		b.enterInsert()
		return Event{ModeChanged: true}
	case 'o':
		b.pushUndo()
		b.openLineBelow()
		b.enterInsert()
		return Event{ModeChanged: true}
	case 'O':
		b.pushUndo()
		b.openLineAbove()
		b.enterInsert()
		return Event{ModeChanged: true}
	case 'v':
		b.mode = Visual
		b.visualAnchor = b.cursor
		return Event{ModeChanged: true}
	case 'V':
		b.mode = VisualLine
		b.visualAnchor = b.cursor
		return Event{ModeChanged: true}
	case 'h':
		b.moveLeft()
	case 'l':
		b.moveRight()
	case 'j':
		b.moveVertical(1)
	case 'k':
		b.moveVertical(-1)
	case '0':
		b.cursor.Col = 0
	case '$':
		b.cursor = b.lineEnd(b.cursor.Line)
	case 'w':
		b.cursor = b.wordForward(b.cursor)
	case 'e':
		b.cursor = b.wordEnd(b.cursor)
	case 'b':
		b.cursor = b.wordBack(b.cursor)
	case 'G':
		b.cursor = Pos{Line: b.LineCount() - 1, Col: 0}
		b.clampCursor()
	case 'x':
		b.pushUndo()
		b.deleteAt()
	case 'u':
		b.Undo()
	case 'd', 'c', 'y':
		b.pendingOp = r
	case 'p':
		b.pushUndo()
		b.pasteAfter()
	case 'P':
		b.pushUndo()
		b.pasteBefore()
	}
	return Event{}
}

func (b *Buffer) handleOperatorMotion(r rune) Event {
	op := b.pendingOp
	b.pendingOp = 0

	start := b.cursor
	var end Pos
	linewise := false

	switch r {
	case 'd', 'c', 'y':
		if r != op {
			return Event{}
		}
		linewise = true
		end = start
	case 'w':
		end = b.wordForward(start)
	case 'e':
		end = b.wordEnd(start)
		end.Col++ // inclusive motion: e's target char is included
	case 'b':
		end = b.wordBack(start)
	case '$':
		end = b.lineEnd(start.Line)
		end.Col++
	case '0':
		end = Pos{Line: start.Line, Col: 0}
	case 'G':
		end = Pos{Line: b.LineCount() - 1, Col: 0}
		linewise = true
	default:
		return Event{}
	}

	b.pushUndo()
	var yanked string
	if linewise {
		yanked = b.applyLinewise(op, start.Line, end.Line)
	} else {
		yanked = b.applyCharwise(op, start, end)
	}
	b.yank = yanked
	b.yankLinewise = linewise

	if op == 'c' {
		b.enterInsert()
		return Event{ModeChanged: true, Yanked: true}
	}
	b.enterNormal()
	return Event{Yanked: true}
}

// applyCharwise deletes/yanks the exclusive range [from, to) on a
// single line (a w, e or b target on another line is clamped to the
// start line — matching the editor's single-statement-per-line
// emphasis rather than full multi-line vim fidelity).
func (b *Buffer) applyCharwise(op rune, from, to Pos) string {
	if to.Line > from.Line {
		// Forward cross-line motion: operate through end of from's line.
		to = Pos{Line: from.Line, Col: len(b.Line(from.Line))}
	} else if to.Line < from.Line {
		// Backward cross-line motion: operate back to start of from's line.
		to = Pos{Line: from.Line, Col: 0}
	}
	line := []rune(b.lines[from.Line])
	lo, hi := from.Col, to.Col
	if lo > hi {
		lo, hi = hi, lo
	}
	hi = minInt(hi, len(line))
	lo = minInt(lo, hi)
	cut := string(line[lo:hi])

	if op != 'y' {
		b.lines[from.Line] = string(line[:lo]) + string(line[hi:])
		b.cursor = Pos{Line: from.Line, Col: lo}
	} else {
		b.cursor = from
	}
	return cut
}

func (b *Buffer) applyLinewise(op rune, from, to int) string {
	if from > to {
		from, to = to, from
	}
	to = minInt(to, b.LineCount()-1)
	cut := strings.Join(b.lines[from:to+1], "\n")

	if op != 'y' {
		rest := append([]string{}, b.lines[:from]...)
		rest = append(rest, b.lines[to+1:]...)
		if len(rest) == 0 {
			rest = []string{""}
		}
		b.lines = rest
		if from >= len(b.lines) {
			from = len(b.lines) - 1
		}
		b.cursor = Pos{Line: from, Col: 0}
	} else {
		b.cursor = Pos{Line: from, Col: 0}
	}
	return cut
}

func (b *Buffer) pasteAfter() {
	if b.yank == "" {
		return
	}
	if b.yankLinewise {
		newLines := strings.Split(b.yank, "\n")
		idx := b.cursor.Line + 1
		b.lines = append(b.lines[:idx], append(newLines, b.lines[idx:]...)...)
		b.cursor = Pos{Line: idx, Col: 0}
		return
	}
	line := []rune(b.lines[b.cursor.Line])
	col := minInt(b.cursor.Col+1, len(line))
	b.lines[b.cursor.Line] = string(line[:col]) + b.yank + string(line[col:])
	b.cursor.Col = col + len([]rune(b.yank)) - 1
}

func (b *Buffer) pasteBefore() {
	if b.yank == "" {
		return
	}
	if b.yankLinewise {
		newLines := strings.Split(b.yank, "\n")
		idx := b.cursor.Line
		b.lines = append(b.lines[:idx], append(newLines, b.lines[idx:]...)...)
		b.cursor = Pos{Line: idx, Col: 0}
		return
	}
	line := []rune(b.lines[b.cursor.Line])
	col := b.cursor.Col
	b.lines[b.cursor.Line] = string(line[:col]) + b.yank + string(line[col:])
}

func (b *Buffer) moveLeft() {
	if b.cursor.Col > 0 {
		b.cursor.Col--
	}
}

func (b *Buffer) moveRight() {
	maxCol := len(b.Line(b.cursor.Line)) - 1
	if b.cursor.Col < maxCol {
		b.cursor.Col++
	}
}

func firstNonBlank(line []rune) int {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return i
		}
	}
	return 0
}

func (b *Buffer) insertRune(r rune) {
	line := []rune(b.lines[b.cursor.Line])
	col := minInt(b.cursor.Col, len(line))
	line = append(line[:col], append([]rune{r}, line[col:]...)...)
	b.lines[b.cursor.Line] = string(line)
	b.cursor.Col = col + 1
}

func (b *Buffer) deleteBefore() {
	if b.cursor.Col > 0 {
		line := []rune(b.lines[b.cursor.Line])
		b.lines[b.cursor.Line] = string(append(line[:b.cursor.Col-1], line[b.cursor.Col:]...))
		b.cursor.Col--
		return
	}
	if b.cursor.Line > 0 {
		prevLen := len([]rune(b.lines[b.cursor.Line-1]))
		b.lines[b.cursor.Line-1] += b.lines[b.cursor.Line]
		b.lines = append(b.lines[:b.cursor.Line], b.lines[b.cursor.Line+1:]...)
		b.cursor = Pos{Line: b.cursor.Line - 1, Col: prevLen}
	}
}

func (b *Buffer) deleteAt() {
	line := []rune(b.lines[b.cursor.Line])
	if b.cursor.Col < len(line) {
		b.lines[b.cursor.Line] = string(append(line[:b.cursor.Col], line[b.cursor.Col+1:]...))
		b.clampCursor()
	}
}

func (b *Buffer) splitLine() {
	line := []rune(b.lines[b.cursor.Line])
	col := minInt(b.cursor.Col, len(line))
	before, after := string(line[:col]), string(line[col:])
	b.lines[b.cursor.Line] = before
	rest := append([]string{after}, b.lines[b.cursor.Line+1:]...)
	b.lines = append(b.lines[:b.cursor.Line+1], rest...)
	b.cursor = Pos{Line: b.cursor.Line + 1, Col: 0}
}

func (b *Buffer) openLineBelow() {
	rest := append([]string{""}, b.lines[b.cursor.Line+1:]...)
	b.lines = append(b.lines[:b.cursor.Line+1], rest...)
	b.cursor = Pos{Line: b.cursor.Line + 1, Col: 0}
}

func (b *Buffer) openLineAbove() {
	rest := append([]string{""}, b.lines[b.cursor.Line:]...)
	b.lines = append(b.lines[:b.cursor.Line], rest...)
	b.cursor = Pos{Line: b.cursor.Line, Col: 0}
}

func (b *Buffer) handleVisual(ev KeyEvent) Event {
	if ev.Special == KeyEscape {
		b.enterNormal()
		return Event{ModeChanged: true}
	}
	switch ev.Rune {
	case 'h':
		b.moveLeft()
		return Event{}
	case 'l':
		b.moveRight()
		return Event{}
	case 'j':
		b.moveVertical(1)
		return Event{}
	case 'k':
		b.moveVertical(-1)
		return Event{}
	case 'y', 'd', 'x', 'c':
		op := ev.Rune
		if op == 'x' {
			op = 'd'
		}
		b.pushUndo()
		from, to := b.visualAnchor, b.cursor
		var yanked string
		if b.mode == VisualLine {
			yanked = b.applyLinewise(op, from.Line, to.Line)
		} else {
			if posLess(to, from) {
				from, to = to, from
			}
			to.Col++
			yanked = b.applyCharwise(op, from, to)
		}
		b.yank = yanked
		b.yankLinewise = b.mode == VisualLine
		if op == 'c' {
			b.enterInsert()
			return Event{ModeChanged: true, Yanked: true}
		}
		b.enterNormal()
		return Event{ModeChanged: true, Yanked: true}
	}
	return Event{}
}

func halfPageOrDefault(requested, lineCount int) int {
	if requested > 0 {
		return requested
	}
	if n := lineCount / 2; n > 0 {
		return n
	}
	return 1
}

func posLess(a, b Pos) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Col < b.Col
}

// VisualRange returns the current Visual/Visual-Line selection's
// anchor and cursor, normalized so From never sorts after To. Callers
// outside the package (the editor view's selection-shading renderer)
// use this rather than reaching into unexported fields.
func (b *Buffer) VisualRange() (from, to Pos) {
	from, to = b.visualAnchor, b.cursor
	if posLess(to, from) {
		from, to = to, from
	}
	return from, to
}

// SelectedText returns the text currently spanned by Visual/Visual-Line
// selection, for callers (e.g. a status preview) that want it without
// mutating the buffer.
func (b *Buffer) SelectedText() string {
	if b.mode != Visual && b.mode != VisualLine {
		return ""
	}
	from, to := b.visualAnchor, b.cursor
	if posLess(to, from) {
		from, to = to, from
	}
	if b.mode == VisualLine {
		return strings.Join(b.lines[from.Line:to.Line+1], "\n")
	}
	if from.Line == to.Line {
		line := []rune(b.lines[from.Line])
		hi := minInt(to.Col+1, len(line))
		return string(line[from.Col:hi])
	}
	var sb strings.Builder
	sb.WriteString(string([]rune(b.lines[from.Line])[from.Col:]))
	for i := from.Line + 1; i < to.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[i])
	}
	sb.WriteByte('\n')
	line := []rune(b.lines[to.Line])
	hi := minInt(to.Col+1, len(line))
	sb.WriteString(string(line[:hi]))
	return sb.String()
}
