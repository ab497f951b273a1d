package dbsession

import "testing"

func TestIsTxnControlRecognizesStatements(t *testing.T) {
	cases := map[string]string{
		"BEGIN":               "BEGIN",
		"  begin transaction": "BEGIN",
		"COMMIT;":             "COMMIT",
		"rollback":            "ROLLBACK",
		"END":                 "END",
	}
	for sql, want := range cases {
		kind, ok := isTxnControl(sql)
		if !ok || kind != want {
			t.Errorf("isTxnControl(%q) = %q, %v; want %q, true", sql, kind, ok, want)
		}
	}
}

func TestIsTxnControlRejectsOrdinaryQueries(t *testing.T) {
	for _, sql := range []string{"SELECT 1", "UPDATE t SET x = 1", "insert into t values (1)"} {
		if _, ok := isTxnControl(sql); ok {
			t.Errorf("expected %q not to be treated as transaction control", sql)
		}
	}
}

func TestNewSessionStartsDisconnected(t *testing.T) {
	s := New()
	if s.Status() != Disconnected {
		t.Fatalf("expected fresh session to be Disconnected, got %v", s.Status())
	}
	if s.InTransaction() {
		t.Fatal("expected fresh session not to be in a transaction")
	}
}

func TestSubmitWithoutConnectionReportsError(t *testing.T) {
	s := New()
	s.Submit("SELECT 1")
	ev := <-s.Events()
	if ev.Kind != EvQueryError {
		t.Fatalf("expected EvQueryError when not connected, got %v", ev.Kind)
	}
}

func TestStatusStringer(t *testing.T) {
	cases := map[Status]string{
		Disconnected: "disconnected",
		Connecting:   "connecting",
		Connected:    "connected",
		Error:        "error",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestCancelWithoutInFlightQueryIsNoop(t *testing.T) {
	s := New()
	s.Cancel() // must not panic
}

func TestStatementVerbClassification(t *testing.T) {
	tests := []struct {
		sql     string
		verb    string
		counted bool
		ok      bool
	}{
		{"BEGIN", "BEGIN", false, true},
		{"commit;", "COMMIT", false, true},
		{"UPDATE users SET name = 'x' WHERE id = 1", "UPDATE", true, true},
		{"delete from orders where id = 2", "DELETE", true, true},
		{"INSERT INTO t (a) VALUES (1)", "INSERT", true, true},
		{"CREATE TABLE t (id int)", "CREATE", false, true},
		{"TRUNCATE t", "TRUNCATE", false, true},
		{"SET search_path TO app", "SET", false, true},
		{"SELECT * FROM users", "", false, false},
		{"  select 1", "", false, false},
		{"INSERT INTO t (a) VALUES (1) RETURNING id", "", false, false},
		{"EXPLAIN SELECT 1", "", false, false},
	}
	for _, tt := range tests {
		verb, counted, ok := statementVerb(tt.sql)
		if verb != tt.verb || counted != tt.counted || ok != tt.ok {
			t.Errorf("statementVerb(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.sql, verb, counted, ok, tt.verb, tt.counted, tt.ok)
		}
	}
}

func TestFormatCommandTag(t *testing.T) {
	if got := formatCommandTag("UPDATE", true, 3); got != "UPDATE 3" {
		t.Errorf("counted tag = %q", got)
	}
	if got := formatCommandTag("BEGIN", false, 0); got != "BEGIN" {
		t.Errorf("bare tag = %q", got)
	}
}

func TestApplyTxnVerbTogglesFlag(t *testing.T) {
	s := New()
	for _, step := range []struct {
		verb string
		want bool
	}{
		{"BEGIN", true},
		{"UPDATE", true},
		{"COMMIT", false},
		{"BEGIN", true},
		{"ROLLBACK", false},
		{"SELECT", false},
	} {
		s.applyTxnVerb(step.verb)
		if s.InTransaction() != step.want {
			t.Fatalf("after %s: inTxn = %v, want %v", step.verb, s.InTransaction(), step.want)
		}
	}
}
