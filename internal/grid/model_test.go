package grid

import "testing"

func TestHasValidPK(t *testing.T) {
	m := New([]string{"id", "name"}, []string{"int4", "text"}, [][]string{{"1", "Alice"}})
	if m.HasValidPK() {
		t.Fatal("expected not editable without source table or primary keys")
	}
	m.SourceTable = "users"
	if m.HasValidPK() {
		t.Fatal("expected not editable without primary keys")
	}
	m.PrimaryKeys = []string{"id"}
	if !m.HasValidPK() {
		t.Fatal("expected editable with source table and matching primary key")
	}
	m.PrimaryKeys = []string{"missing_col"}
	if m.HasValidPK() {
		t.Fatal("expected not editable when a primary key is not among headers")
	}
}

func TestValidInvariant(t *testing.T) {
	m := New([]string{"a", "b"}, []string{"text", "text"}, [][]string{{"1", "2"}})
	if !m.Valid() {
		t.Fatal("expected valid model")
	}
	m.Rows = append(m.Rows, []string{"only one cell"})
	if m.Valid() {
		t.Fatal("expected invalid model after appending a malformed row")
	}
}

func TestColumnWidthClamp(t *testing.T) {
	long := make([]string, 0)
	long = append(long, "")
	for i := 0; i < 100; i++ {
		long[0] += "x"
	}
	m := New([]string{"col"}, []string{"text"}, [][]string{long})
	if m.ColWidth[0] != MaxColWidth {
		t.Fatalf("expected width clamped to %d, got %d", MaxColWidth, m.ColWidth[0])
	}

	m2 := New([]string{"x"}, []string{"text"}, [][]string{{"1"}})
	if m2.ColWidth[0] != MinColWidth {
		t.Fatalf("expected width clamped to min %d, got %d", MinColWidth, m2.ColWidth[0])
	}
}

func TestNeedsJSONEditor(t *testing.T) {
	if !NeedsJSONEditor("jsonb", "{}") {
		t.Fatal("jsonb columns should always open the JSON editor")
	}
	if NeedsJSONEditor("text", "short") {
		t.Fatal("short plain text should use the inline cell editor")
	}
	if !NeedsJSONEditor("text", "line one\nline two") {
		t.Fatal("multi-line text should open the JSON editor")
	}
}
