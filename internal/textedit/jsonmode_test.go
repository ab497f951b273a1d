package textedit

import "testing"

func TestDetectContentType(t *testing.T) {
	cases := []struct {
		text string
		want ContentType
	}{
		{`{"a": 1}`, ContentJSON},
		{`[1, 2, 3]`, ContentJSON},
		{`<div class="x">hi</div>`, ContentHTML},
		{"select * from users", ContentSQL},
		{"plain text", ContentPlain},
		{"", ContentPlain},
	}
	for _, c := range cases {
		if got := DetectContentType(c.text); got != c.want {
			t.Errorf("DetectContentType(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}

func TestNewJSONEditorAutoFormats(t *testing.T) {
	e := NewJSONEditor(`{"b":2,"a":1}`)
	if e.ContentType() != ContentJSON {
		t.Fatalf("expected ContentJSON, got %v", e.ContentType())
	}
	want := "{\n  \"b\": 2,\n  \"a\": 1\n}"
	if e.Text() != want {
		t.Fatalf("expected auto-formatted JSON %q, got %q", want, e.Text())
	}
	if e.Modified() {
		t.Fatal("freshly opened editor should not be marked modified")
	}
}

func TestRunExFormat(t *testing.T) {
	e := NewJSONEditor(`{"a":1}`)
	e.SetText(`{"a":1,"b":2}`)
	res := e.RunEx(":format")
	if !res.Handled || res.Err != nil {
		t.Fatalf("expected :format to succeed, got %+v", res)
	}
	want := "{\n  \"a\": 1,\n  \"b\": 2\n}"
	if e.Text() != want {
		t.Fatalf("expected %q, got %q", want, e.Text())
	}
}

func TestRunExFormatRejectsNonJSON(t *testing.T) {
	e := NewJSONEditor("select 1")
	res := e.RunEx(":format")
	if !res.Handled || res.Err == nil {
		t.Fatalf("expected :format on non-JSON content to error, got %+v", res)
	}
}

func TestRunExQuitBlocksOnUnsavedChanges(t *testing.T) {
	e := NewJSONEditor(`{"a":1}`)
	e.SetText(`{"a":2}`)
	res := e.RunEx(":q")
	if res.Err == nil {
		t.Fatal("expected :q to refuse with unsaved changes")
	}
	res = e.RunEx(":wq")
	if !res.Handled || res.Err != nil || !res.Write || !res.Quit {
		t.Fatalf("expected :wq to write and quit, got %+v", res)
	}
}
