package main

import (
	"fmt"
	"time"

	"tsql/internal/dbsession"
	"tsql/internal/grid"
)

// SessionStatusGlyph returns the short connection-state indicator shown
// at the left of the status line.
func SessionStatusGlyph(s dbsession.Status) string {
	switch s {
	case dbsession.Connecting:
		return "[yellow]● connecting[white]"
	case dbsession.Connected:
		return "[green]● connected[white]"
	case dbsession.Error:
		return "[red]● error[white]"
	default:
		return "[gray]● disconnected[white]"
	}
}

// StatusBar owns the text view that the command palette, session glyph, and
// running-query timer all write into.
type StatusBar struct {
	set func(text string)

	glyph     string
	lastBody  string
	inTxn     bool
	running   bool
	startedAt time.Time
}

// NewStatusBar wraps a setter function (typically a tview.TextView's
// SetText) so the StatusBar never touches tview directly, keeping the
// status formatting logic testable without a terminal.
func NewStatusBar(set func(string)) *StatusBar {
	return &StatusBar{set: set}
}

func (s *StatusBar) render(body string) {
	s.lastBody = body
	prefix := s.glyph
	if s.inTxn {
		prefix += " [yellow][txn][white]"
	}
	if s.running {
		prefix += fmt.Sprintf(" [yellow](%s)[white]", time.Since(s.startedAt).Round(time.Second))
	}
	if prefix != "" {
		body = prefix + "  " + body
	}
	s.set(body)
}

// SetConnectionStatus updates the glyph shown ahead of every message.
func (s *StatusBar) SetConnectionStatus(status dbsession.Status) {
	s.glyph = SessionStatusGlyph(status)
	s.render("")
}

// QueryStarted begins the elapsed-time counter shown while a query is
// running.
func (s *StatusBar) QueryStarted() {
	s.running = true
	s.startedAt = time.Now()
}

// QueryTick re-renders the status line so the elapsed-time counter
// advances while a query runs.
func (s *StatusBar) QueryTick() {
	if s.running {
		s.render(s.lastBody)
	}
}

// QueryFinished stops the elapsed-time counter.
func (s *StatusBar) QueryFinished() {
	s.running = false
}

// Message sets a plain informational message.
func (s *StatusBar) Message(format string, args ...any) {
	s.render(fmt.Sprintf(format, args...))
}

func (s *StatusBar) Error(err error) {
	s.render("[red]ERROR: " + err.Error() + "[white]")
}

// ErrorWithSentry is Error plus a CaptureError crash report.
func (s *StatusBar) ErrorWithSentry(err error) {
	s.Error(err)
	CaptureError(err)
}

func (s *StatusBar) Log(format string, args ...any) {
	s.render(fmt.Sprintf("[blue]LOG: %s[white]", fmt.Sprintf(format, args...)))
}

// CellPreview renders the current grid cell's type and value, colored
// by whether the column type is known.
func (s *StatusBar) CellPreview(m *grid.Model, row, col int) {
	if row < 0 || row >= len(m.Rows) || col < 0 || col >= len(m.ColTypes) {
		return
	}
	value := m.Rows[row][col]
	colType := m.ColTypes[col]
	if colType != "" {
		s.render(fmt.Sprintf("[black]%s[darkgreen] %s[white]", colType, value))
	} else {
		s.render(fmt.Sprintf("[darkgreen]%s[white]", value))
	}
}

// SetInTransaction toggles the open-transaction marker shown next to
// the connection glyph.
func (s *StatusBar) SetInTransaction(in bool) {
	if in == s.inTxn {
		return
	}
	s.inTxn = in
	s.render("")
}
