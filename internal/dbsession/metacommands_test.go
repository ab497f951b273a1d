package dbsession

import (
	"strings"
	"testing"
)

func TestExpandMetaCommandKnownTemplates(t *testing.T) {
	cases := []string{`\dt`, `\dv`, `\di`, `\df`, `\dn`, `\du`, `\l`, `\d`}
	for _, c := range cases {
		q, ok := ExpandMetaCommand(c)
		if !ok {
			t.Errorf("expected %q to be recognized", c)
		}
		if strings.TrimSpace(q) == "" {
			t.Errorf("expected %q to expand to a non-empty query", c)
		}
	}
}

func TestExpandMetaCommandDescribeTable(t *testing.T) {
	q, ok := ExpandMetaCommand(`\d accounts`)
	if !ok {
		t.Fatal("expected \\d accounts to be recognized")
	}
	if !strings.Contains(q, "table_schema = 'public'") || !strings.Contains(q, "table_name = 'accounts'") {
		t.Fatalf("expected default-schema describe query, got %q", q)
	}

	q2, _ := ExpandMetaCommand(`\d reporting.orders`)
	if !strings.Contains(q2, "table_schema = 'reporting'") || !strings.Contains(q2, "table_name = 'orders'") {
		t.Fatalf("expected schema-qualified describe query, got %q", q2)
	}
}

func TestExpandMetaCommandEscapesQuotes(t *testing.T) {
	q, _ := ExpandMetaCommand(`\d o'brien`)
	if !strings.Contains(q, "o''brien") {
		t.Fatalf("expected literal quote to be doubled, got %q", q)
	}
}

func TestExpandMetaCommandUnknown(t *testing.T) {
	if _, ok := ExpandMetaCommand("select 1"); ok {
		t.Fatal("expected plain SQL not to match a meta-command")
	}
}
