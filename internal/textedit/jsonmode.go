package textedit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ContentType classifies a cell's text (plain, JSON, HTML or SQL) for
// the JSON cell editor overlay.
type ContentType int

const (
	ContentPlain ContentType = iota
	ContentJSON
	ContentHTML
	ContentSQL
)

func (c ContentType) String() string {
	switch c {
	case ContentJSON:
		return "json"
	case ContentHTML:
		return "html"
	case ContentSQL:
		return "sql"
	default:
		return "plain"
	}
}

// DetectContentType guesses a cell value's content type from its
// shape: valid JSON is checked first since a JSON string column is the
// common case this editor exists for, then the cheaper textual
// heuristics for HTML/SQL.
func DetectContentType(text string) ContentType {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ContentPlain
	}
	if (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) && json.Valid([]byte(trimmed)) {
		return ContentJSON
	}
	if strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">") {
		return ContentHTML
	}
	upper := strings.ToUpper(trimmed)
	for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "WITH "} {
		if strings.HasPrefix(upper, kw) {
			return ContentSQL
		}
	}
	return ContentPlain
}

type JSONEditor struct {
	*Buffer
	contentType ContentType
}

// NewJSONEditor seeds the editor with text, auto-formatting it first
// if it parses as JSON.
func NewJSONEditor(text string) *JSONEditor {
	ct := DetectContentType(text)
	body := text
	if ct == ContentJSON {
		if formatted, err := formatJSON(text); err == nil {
			body = formatted
		}
	}
	e := &JSONEditor{Buffer: NewWithText(body), contentType: ct}
	e.MarkSaved()
	return e
}

// ContentType reports the editor's detected content type.
func (e *JSONEditor) ContentType() ContentType { return e.contentType }

// ExResult is what running an ex command produced.
type ExResult struct {
	Handled bool
	Write   bool   // the buffer's content should be committed
	Quit    bool   // the overlay should close
	Err     error  // non-nil if the command failed (e.g. bad JSON on :format)
	Message string // status text to show, success or otherwise
}

// RunEx parses and executes a `:`-prefixed command line (the leading
// colon may or may not already be stripped by the caller).
func (e *JSONEditor) RunEx(line string) ExResult {
	cmd := strings.TrimSpace(strings.TrimPrefix(line, ":"))
	switch cmd {
	case "w":
		return ExResult{Handled: true, Write: true, Message: "written"}
	case "q":
		if e.Modified() {
			return ExResult{Handled: true, Err: fmt.Errorf("unsaved changes (use :q! or :wq)")}
		}
		return ExResult{Handled: true, Quit: true}
	case "q!":
		return ExResult{Handled: true, Quit: true}
	case "wq", "x":
		return ExResult{Handled: true, Write: true, Quit: true, Message: "written"}
	case "format", "fmt":
		if e.contentType != ContentJSON {
			return ExResult{Handled: true, Err: fmt.Errorf("no formatter for %s content", e.contentType)}
		}
		formatted, err := formatJSON(e.Text())
		if err != nil {
			return ExResult{Handled: true, Err: fmt.Errorf("invalid json: %w", err)}
		}
		e.pushUndo()
		e.SetText(formatted)
		return ExResult{Handled: true, Message: "formatted"}
	default:
		return ExResult{Handled: false}
	}
}

// formatJSON re-indents text with two spaces, preserving key order by
// decoding the first value into a json.RawMessage and running
// json.Indent over it rather than re-marshaling a parsed map (which
// would not preserve object key order).
func formatJSON(text string) (string, error) {
	var buf bytes.Buffer
	dec := json.NewDecoder(strings.NewReader(text))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return "", err
	}
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
