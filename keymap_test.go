package main

import (
	"strings"
	"testing"
)

func TestResolveCommand(t *testing.T) {
	tests := []struct {
		verb string
		want Action
		ok   bool
	}{
		{"q", ActionQuit, true},
		{"quit", ActionQuit, true},
		{"history", ActionOpenHistoryPicker, true},
		{"tables", ActionOpenTablePicker, true},
		{"help", ActionOpenHelp, true},
		{"bogus", ActionNone, false},
	}
	for _, tt := range tests {
		got, ok := ResolveCommand(tt.verb)
		if ok != tt.ok {
			t.Errorf("ResolveCommand(%q) ok = %v, want %v", tt.verb, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ResolveCommand(%q) = %v, want %v", tt.verb, got, tt.want)
		}
	}
}

func TestSequenceHintTextListsCompletions(t *testing.T) {
	hint := sequenceHintText('g')
	for _, want := range []string{"g:goto-top", "r:run-query", "s:tmpl-select"} {
		if !strings.Contains(hint, want) {
			t.Errorf("hint %q missing %q", hint, want)
		}
	}
}

func TestFirstLineTruncation(t *testing.T) {
	if got := firstLine("SELECT 1"); got != "SELECT 1" {
		t.Errorf("single line = %q", got)
	}
	if got := firstLine("SELECT 1\nFROM t"); got != "SELECT 1 …" {
		t.Errorf("multi line = %q", got)
	}
}
