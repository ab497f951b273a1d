package grid

import "testing"

func TestEncodeCSVEscaping(t *testing.T) {
	m := New([]string{"a", "b"}, []string{"text", "text"}, [][]string{{`has,comma`, "has\"quote"}, {"line\nbreak", "plain"}})
	csv := encodeCSV(m.Headers, m.Rows)
	want := "a,b\n\"has,comma\",\"has\"\"quote\"\n\"line\nbreak\",plain\n"
	if csv != want {
		t.Fatalf("got %q want %q", csv, want)
	}
}

func TestEncodeJSONEscaping(t *testing.T) {
	m := New([]string{"a"}, []string{"text"}, [][]string{{"line\nbreak\\\"x\""}})
	got := encodeJSON(m.Headers, m.Rows)
	want := "[\n  {\"a\": \"line\\nbreak\\\\\\\"x\\\"\"}\n]\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestCopyTSVWithHeader(t *testing.T) {
	m := New([]string{"id", "name"}, []string{"int4", "text"}, [][]string{{"1", "Alice"}, {"2", "Bob"}})
	got := CopyTSV(m, []int{1}, true)
	want := "id\tname\n2\tBob\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestExpandHome(t *testing.T) {
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path should be unchanged, got %q", got)
	}
	got := ExpandHome("~/exports/out.csv")
	if got == "~/exports/out.csv" {
		t.Fatal("expected ~/ to expand to the home directory")
	}
}

func TestParseFormat(t *testing.T) {
	for _, ok := range []string{"csv", "CSV", "json", "tsv"} {
		if _, valid := ParseFormat(ok); !valid {
			t.Errorf("expected %q to parse", ok)
		}
	}
	if _, valid := ParseFormat("xml"); valid {
		t.Fatal("expected xml to be rejected")
	}
}
