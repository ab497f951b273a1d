package main

import (
	"strings"
	"testing"

	"tsql/internal/dbsession"
)

func TestStatusBarGlyphPrefixesMessages(t *testing.T) {
	var got string
	s := NewStatusBar(func(text string) { got = text })
	s.SetConnectionStatus(dbsession.Connected)
	s.Message("hello")
	if !strings.Contains(got, "connected") || !strings.Contains(got, "hello") {
		t.Fatalf("status line = %q", got)
	}
}

func TestStatusBarTransactionMarker(t *testing.T) {
	var got string
	s := NewStatusBar(func(text string) { got = text })
	s.SetConnectionStatus(dbsession.Connected)
	s.SetInTransaction(true)
	if !strings.Contains(got, "[txn]") {
		t.Fatalf("expected txn marker, got %q", got)
	}
	s.SetInTransaction(false)
	if strings.Contains(got, "[txn]") {
		t.Fatalf("expected txn marker cleared, got %q", got)
	}
}

func TestStatusBarErrorFormatting(t *testing.T) {
	var got string
	s := NewStatusBar(func(text string) { got = text })
	s.Error(errNotEditable)
	if !strings.Contains(got, "ERROR:") {
		t.Fatalf("error line = %q", got)
	}
}
