package textedit

import "testing"

func key(r rune) KeyEvent { return KeyEvent{Rune: r} }
func special(s SpecialKey) KeyEvent { return KeyEvent{Special: s} }

func TestInsertAndEscapeRoundTrip(t *testing.T) {
	b := New()
	b.Handle(key('i'))
	if b.Mode() != Insert {
		t.Fatalf("expected Insert mode after 'i', got %v", b.Mode())
	}
	for _, r := range "select 1" {
		b.Handle(key(r))
	}
	b.Handle(special(KeyEscape))
	if b.Mode() != Normal {
		t.Fatalf("expected Normal mode after Escape, got %v", b.Mode())
	}
	if b.Text() != "select 1" {
		t.Fatalf("unexpected text %q", b.Text())
	}
}

func TestModifiedTracksSavedSnapshot(t *testing.T) {
	b := NewWithText("select 1")
	b.MarkSaved()
	if b.Modified() {
		t.Fatal("freshly saved buffer should not be modified")
	}
	b.Handle(key('a'))
	b.Handle(key(';'))
	b.Handle(special(KeyEscape))
	if !b.Modified() {
		t.Fatal("buffer should be modified after an edit")
	}
	b.MarkSaved()
	if b.Modified() {
		t.Fatal("MarkSaved should clear the modified flag")
	}
}

func TestWordMotions(t *testing.T) {
	b := NewWithText("foo bar baz")
	b.Handle(key('w'))
	if b.Cursor().Col != 4 {
		t.Fatalf("expected col 4 after w, got %d", b.Cursor().Col)
	}
	b.Handle(key('w'))
	if b.Cursor().Col != 8 {
		t.Fatalf("expected col 8 after second w, got %d", b.Cursor().Col)
	}
	b.Handle(key('b'))
	if b.Cursor().Col != 4 {
		t.Fatalf("expected col 4 after b, got %d", b.Cursor().Col)
	}
	b.Handle(key('e'))
	if b.Cursor().Col != 6 {
		t.Fatalf("expected col 6 after e, got %d", b.Cursor().Col)
	}
}

func TestDeleteWordOperator(t *testing.T) {
	b := NewWithText("foo bar baz")
	b.Handle(key('d'))
	b.Handle(key('w'))
	if b.Text() != "bar baz" {
		t.Fatalf("expected 'bar baz' after dw, got %q", b.Text())
	}
	if b.yank != "foo " {
		t.Fatalf("expected yank register to hold 'foo ', got %q", b.yank)
	}
}

func TestDoubledOperatorIsLinewise(t *testing.T) {
	b := NewWithText("one\ntwo\nthree")
	b.cursor = Pos{Line: 1, Col: 0}
	b.Handle(key('d'))
	b.Handle(key('d'))
	if b.Text() != "one\nthree" {
		t.Fatalf("expected 'one\\nthree' after dd, got %q", b.Text())
	}
}

func TestChangeOperatorEntersInsert(t *testing.T) {
	b := NewWithText("foo bar")
	b.Handle(key('c'))
	b.Handle(key('w'))
	if b.Mode() != Insert {
		t.Fatalf("expected Insert mode after cw, got %v", b.Mode())
	}
	if b.Text() != "bar" {
		t.Fatalf("expected 'bar' remaining after cw, got %q", b.Text())
	}
}

func TestUndoRedo(t *testing.T) {
	b := NewWithText("foo")
	b.Handle(key('x'))
	if b.Text() != "oo" {
		t.Fatalf("expected 'oo' after x, got %q", b.Text())
	}
	if !b.Undo() {
		t.Fatal("expected undo to succeed")
	}
	if b.Text() != "foo" {
		t.Fatalf("expected 'foo' after undo, got %q", b.Text())
	}
	if !b.Redo() {
		t.Fatal("expected redo to succeed")
	}
	if b.Text() != "oo" {
		t.Fatalf("expected 'oo' after redo, got %q", b.Text())
	}
}

func TestVisualLineDelete(t *testing.T) {
	b := NewWithText("one\ntwo\nthree")
	b.Handle(key('V'))
	b.Handle(key('j'))
	b.Handle(key('d'))
	if b.Text() != "three" {
		t.Fatalf("expected 'three' after Vjd, got %q", b.Text())
	}
	if b.Mode() != Normal {
		t.Fatalf("expected Normal mode after visual delete, got %v", b.Mode())
	}
}

func TestPasteAfterCharwise(t *testing.T) {
	b := NewWithText("foo bar")
	b.Handle(key('d'))
	b.Handle(key('w'))
	b.Handle(key('$'))
	b.Handle(key('p'))
	if b.Text() != "barfoo " {
		t.Fatalf("unexpected text after dw $ p: %q", b.Text())
	}
}

func TestOpenLineBelowEntersInsert(t *testing.T) {
	b := NewWithText("select 1")
	b.Handle(key('o'))
	if b.Mode() != Insert {
		t.Fatal("expected Insert mode after 'o'")
	}
	for _, r := range "select 2" {
		b.Handle(key(r))
	}
	b.Handle(special(KeyEscape))
	if b.Text() != "select 1\nselect 2" {
		t.Fatalf("unexpected text %q", b.Text())
	}
}
