package vimseq

import (
	"testing"
	"time"
)

func testTable() map[[2]rune]string {
	return map[[2]rune]string{
		{'g', 'g'}: "goto_top",
		{'g', 'e'}: "focus_query",
		{'g', 'r'}: "refresh",
	}
}

func TestCompleteSequence(t *testing.T) {
	e := New(testTable(), 500*time.Millisecond)
	if !e.ProcessFirstKey('g') {
		t.Fatal("expected 'g' to start a sequence")
	}
	if !e.IsWaiting() {
		t.Fatal("expected engine to be waiting")
	}
	result, action, ctx := e.ProcessSecondKey('e')
	if result != Completed || action != "focus_query" {
		t.Fatalf("got %v %q", result, action)
	}
	if ctx != nil {
		t.Fatalf("expected nil context, got %v", ctx)
	}
	if e.IsWaiting() {
		t.Fatal("expected engine to return to idle after completion")
	}
}

func TestInvalidSecondKeyCancels(t *testing.T) {
	e := New(testTable(), 500*time.Millisecond)
	e.ProcessFirstKey('g')
	result, action, _ := e.ProcessSecondKey('z')
	if result != Cancelled || action != "" {
		t.Fatalf("expected cancellation, got %v %q", result, action)
	}
	if e.IsWaiting() {
		t.Fatal("expected idle after invalid second key")
	}
}

func TestUnrecognizedFirstKeyIsNoop(t *testing.T) {
	e := New(testTable(), 500*time.Millisecond)
	if e.ProcessFirstKey('x') {
		t.Fatal("unrecognized prefix should not start a sequence")
	}
	if e.IsWaiting() {
		t.Fatal("engine should remain idle")
	}
}

func TestContextCarriedToCompletion(t *testing.T) {
	e := New(testTable(), 500*time.Millisecond)
	type schemaTable struct{ Schema, Table string }
	ctx := schemaTable{Schema: "public", Table: "users"}
	e.StartWithContext('g', ctx)
	result, action, got := e.ProcessSecondKey('g')
	if result != Completed || action != "goto_top" {
		t.Fatalf("got %v %q", result, action)
	}
	if got.(schemaTable) != ctx {
		t.Fatalf("expected context to round-trip, got %v", got)
	}
}

func TestHintTimeout(t *testing.T) {
	e := New(testTable(), 10*time.Millisecond)
	fake := time.Now()
	e.now = func() time.Time { return fake }
	e.ProcessFirstKey('g')
	if e.ShouldShowHint() {
		t.Fatal("hint should not show immediately")
	}
	fake = fake.Add(20 * time.Millisecond)
	if !e.ShouldShowHint() {
		t.Fatal("hint should show after the delay elapses")
	}
	e.MarkHintShown()
	if e.ShouldShowHint() {
		t.Fatal("hint should not show again once marked")
	}
}

func TestCancelForcesIdle(t *testing.T) {
	e := New(testTable(), 500*time.Millisecond)
	e.ProcessFirstKey('g')
	e.Cancel()
	if e.IsWaiting() {
		t.Fatal("expected idle after Cancel")
	}
}
