package textedit

import "testing"

func TestSearchFindsAllMatches(t *testing.T) {
	b := NewWithText("SELECT id FROM users\nWHERE user_id = 1\nORDER BY id")
	n, err := b.Search("id")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if n != 3 {
		t.Fatalf("matches = %d, want 3", n)
	}
	if b.Cursor() != (Pos{Line: 0, Col: 7}) {
		t.Fatalf("cursor after search = %+v", b.Cursor())
	}
}

func TestSearchCaseInsensitiveRegex(t *testing.T) {
	b := NewWithText("select X\nSELECT y")
	n, err := b.Search("^sel.ct")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if n != 2 {
		t.Fatalf("matches = %d, want 2", n)
	}
}

func TestSearchInvalidPattern(t *testing.T) {
	b := NewWithText("abc")
	if _, err := b.Search("("); err == nil {
		t.Fatal("expected error for unbalanced paren")
	}
	if len(b.SearchMatches().Matches) != 0 {
		t.Fatal("failed search should clear matches")
	}
}

func TestNextPrevMatchWrap(t *testing.T) {
	b := NewWithText("a\na\na")
	if n, _ := b.Search("a"); n != 3 {
		t.Fatal("expected 3 matches")
	}
	b.NextMatch()
	if b.Cursor().Line != 1 {
		t.Fatalf("after next, line = %d", b.Cursor().Line)
	}
	b.NextMatch()
	b.NextMatch()
	if b.Cursor().Line != 0 {
		t.Fatalf("expected wrap to first match, line = %d", b.Cursor().Line)
	}
	b.PrevMatch()
	if b.Cursor().Line != 2 {
		t.Fatalf("expected wrap to last match, line = %d", b.Cursor().Line)
	}
}
