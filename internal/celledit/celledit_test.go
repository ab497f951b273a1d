package celledit

import (
	"testing"
	"unicode/utf8"
)

func TestCharBoundaryInvariant(t *testing.T) {
	e := Start(0, 0, "héllo wörld")
	ops := []func(){
		e.MoveLeft, e.MoveLeft, e.MoveLeft,
		func() { e.InsertRune('🎉') },
		e.MoveRight,
		e.DeleteBefore,
		e.Home,
		e.DeleteAt,
		e.End,
		e.DeleteToStart,
		func() { e.InsertRune('x') },
	}
	for i, op := range ops {
		op()
		if !utf8.RuneStart(byteAt(e.Value, e.Cursor)) {
			t.Fatalf("step %d: cursor %d not on a rune boundary in %q", i, e.Cursor, e.Value)
		}
	}
}

func byteAt(s string, i int) byte {
	if i >= len(s) {
		return 0 // end-of-string is trivially a boundary
	}
	return s[i]
}

func TestModified(t *testing.T) {
	e := Start(0, 0, "Alice")
	if e.Modified() {
		t.Fatal("fresh editor should not be modified")
	}
	e.InsertRune('!')
	if !e.Modified() {
		t.Fatal("expected modified after insert")
	}
}

func TestDeleteToStartAndEnd(t *testing.T) {
	e := Start(0, 0, "hello world")
	e.Cursor = 5
	e.DeleteToEnd()
	if e.Value != "hello" {
		t.Fatalf("got %q", e.Value)
	}
	e2 := Start(0, 0, "hello world")
	e2.Cursor = 6
	e2.DeleteToStart()
	if e2.Value != "world" || e2.Cursor != 0 {
		t.Fatalf("got %q cursor=%d", e2.Value, e2.Cursor)
	}
}

func TestUpdateScrollKeepsCursorVisible(t *testing.T) {
	e := Start(0, 0, "0123456789abcdefghij")
	e.End()
	e.UpdateScroll(10)
	// The cursor sits past the last character with one cell of headroom,
	// so the window starts at character 12 and shows the last 8.
	text, _, _ := e.Window(10)
	if text != "cdefghij" {
		t.Fatalf("expected window %q, got %q", "cdefghij", text)
	}
	cursorChars := utf8.RuneCountInString(e.Value[:e.Cursor])
	if cursorChars < e.ScrollOffset || cursorChars > e.ScrollOffset+10 {
		t.Fatalf("cursor %d not within scrolled window starting at %d", cursorChars, e.ScrollOffset)
	}
}
