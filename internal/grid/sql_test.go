package grid

import "testing"

func TestEscapeIdentifier(t *testing.T) {
	cases := map[string]string{
		"users":      "users",
		"user_name":  "user_name",
		"User":       `"User"`,
		"has space":  `"has space"`,
		`has"quote`: `"has""quote"`,
		"select": "select",
	}
	for in, want := range cases {
		if got := EscapeIdentifier(in); got != want {
			t.Errorf("EscapeIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildUpdateS1Scenario(t *testing.T) {
	m := New([]string{"id", "name"}, []string{"int4", "text"}, [][]string{{"1", "Alice"}})
	m.SourceTable = "users"
	m.PrimaryKeys = []string{"id"}

	stmt, err := BuildUpdate(m, 0, 1, "Alice2", map[string]string{"id": "1"})
	if err != nil {
		t.Fatal(err)
	}
	want := `UPDATE users SET name = 'Alice2' WHERE id = '1'`
	if stmt != want {
		t.Fatalf("got %q, want %q", stmt, want)
	}
}

func TestBuildUpdateMissingPK(t *testing.T) {
	m := New([]string{"id", "name"}, []string{"int4", "text"}, [][]string{{"1", "Alice"}})
	m.SourceTable = "users"
	m.PrimaryKeys = []string{"id"}
	if _, err := BuildUpdate(m, 0, 1, "x", map[string]string{}); err == nil {
		t.Fatal("expected error when primary key value is missing")
	}
}

func TestBuildUpdateNotEditable(t *testing.T) {
	m := New([]string{"id"}, []string{"int4"}, [][]string{{"1"}})
	if _, err := BuildUpdate(m, 0, 0, "x", map[string]string{"id": "1"}); err == nil {
		t.Fatal("expected error for ungrid without valid pk")
	}
}

func TestBuildInsert(t *testing.T) {
	got := BuildInsert("users", []string{"id", "name"}, []string{"1", "O'Brien"})
	want := `INSERT INTO users (id, name) VALUES ('1', 'O''Brien')`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
