package main

import (
	"reflect"
	"testing"

	"tsql/internal/schema"
	"tsql/internal/textedit"
)

func testCache() *schema.Cache {
	return &schema.Cache{
		Loaded: true,
		Tables: []schema.Table{
			{Schema: "public", Name: "users", Columns: []schema.Column{
				{Name: "id", Type: "int4"},
				{Name: "user_name", Type: "text"},
			}},
			{Schema: "public", Name: "user_events", Columns: []schema.Column{
				{Name: "id", Type: "int4"},
			}},
			{Schema: "public", Name: "orders", Columns: []schema.Column{
				{Name: "order_total", Type: "numeric"},
			}},
		},
	}
}

func TestCompletionCandidates(t *testing.T) {
	tests := []struct {
		prefix string
		want   []string
	}{
		{"user", []string{"user_events", "user_name", "users"}},
		{"USER", []string{"user_events", "user_name", "users"}},
		{"ord", []string{"order_total", "orders"}},
		{"id", []string{"id"}},
		{"zz", nil},
	}
	for _, tt := range tests {
		got := completionCandidates(testCache(), tt.prefix)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("completionCandidates(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func TestCompletionCycleWraps(t *testing.T) {
	c := startCompletion(testCache(), "user")
	if c == nil {
		t.Fatal("expected candidates for prefix user")
	}
	if c.Current() != "user_events" {
		t.Fatalf("first candidate = %q", c.Current())
	}
	c.Cycle(1)
	c.Cycle(1)
	if c.Current() != "users" {
		t.Fatalf("after two cycles = %q", c.Current())
	}
	c.Cycle(1)
	if c.Current() != "user_events" {
		t.Fatalf("expected wraparound, got %q", c.Current())
	}
	c.Cycle(-1)
	if c.Current() != "users" {
		t.Fatalf("backward wrap = %q", c.Current())
	}
}

func TestCompletionExtendNarrows(t *testing.T) {
	c := startCompletion(testCache(), "user")
	if !c.Extend('s') {
		t.Fatal("extend to users should keep a candidate")
	}
	if len(c.Candidates) != 1 || c.Current() != "users" {
		t.Fatalf("candidates after extend = %v", c.Candidates)
	}
	if c.Extend('x') {
		t.Fatal("extend to usersx should report no matches")
	}
}

func TestStartCompletionEmptyPrefix(t *testing.T) {
	if c := startCompletion(testCache(), ""); c != nil {
		t.Fatalf("empty prefix should not open completion, got %v", c.Candidates)
	}
	if c := startCompletion(nil, "user"); c != nil {
		t.Fatal("nil cache should not open completion")
	}
}

func TestWordBeforeCursor(t *testing.T) {
	b := textedit.NewWithText("SELECT * FROM use")
	b.Handle(textedit.KeyEvent{Rune: 'A'}) // cursor to end of line, Insert mode
	if got := wordBeforeCursor(b); got != "use" {
		t.Fatalf("wordBeforeCursor = %q, want use", got)
	}

	b2 := textedit.NewWithText("SELECT ")
	b2.Handle(textedit.KeyEvent{Rune: 'A'})
	if got := wordBeforeCursor(b2); got != "" {
		t.Fatalf("wordBeforeCursor after space = %q, want empty", got)
	}
}
