// Package dbsession owns the single shared *sql.DB connection and turns
// blocking query/connect calls into asynchronous work that posts one
// terminal Event per submission onto a channel buffered to 64 events.
package dbsession

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
)

// Status is the connection lifecycle state.
type Status int

const (
	Disconnected Status = iota
	Connecting
	Connected
	Error
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// MaxRows caps how many rows a single query returns before the
// remainder is discarded and Truncated is reported.
const MaxRows = 2000

// EventKind discriminates the Event union posted onto a Session's
// channel.
type EventKind int

const (
	EvConnected EventKind = iota
	EvConnectError
	EvConnectionLost
	EvQueryFinished
	EvQueryError
	EvQueryCancelled
	EvSchemaLoaded
	EvCellUpdated
	EvTestConnectionResult
	EvTableMetaLoaded
)

// Event is the single terminal notification posted per async
// submission. Exactly one Event reaches the channel per Submit call.
type Event struct {
	Kind       EventKind
	RequestID  uint64
	Err        error
	Headers    []string
	ColTypes   []string
	Rows       [][]string
	CommandTag string
	Truncated  bool
	Duration   time.Duration
	SchemaRows [][4]string

	// Row, Col, Value annotate EvCellUpdated so the UI can apply the
	// commit to the grid in place without re-deriving it from the SQL
	// text that was sent.
	Row   int
	Col   int
	Value string

	// Table/PrimaryKeys annotate EvTableMetaLoaded, the follow-up
	// introspection fired after a successful SELECT against a single
	// source table; that event carries the table's column names and
	// types in Headers/ColTypes.
	Table       string
	PrimaryKeys []string
}

// Session owns the *sql.DB and the in-flight cancellation state.
type Session struct {
	mu       sync.Mutex
	db       *sql.DB
	status   Status
	dsn      string
	cancel   context.CancelFunc
	events   chan Event
	nextID   uint64
	inTxn    bool
}

// New creates a Session with its event channel. The channel is
// buffered to 64 events and is not unbounded: a producer blocks while
// 64 events are pending. The UI's drain goroutine reads it
// continuously.
func New() *Session {
	return &Session{
		status: Disconnected,
		events: make(chan Event, 64),
	}
}

// Events returns the channel the UI polls for terminal notifications.
func (s *Session) Events() <-chan Event { return s.events }

// Status reports the current connection state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Connect dials dsn on a background goroutine (sql.Open then a pinned
// Ping to force the dial) and posts EvConnected or EvConnectError.
func (s *Session) Connect(dsn string) {
	s.mu.Lock()
	s.status = Connecting
	s.dsn = dsn
	s.mu.Unlock()

	go func() {
		start := time.Now()
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = db.PingContext(ctx)
			cancel()
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.status = Error
			s.events <- Event{Kind: EvConnectError, Err: err, Duration: time.Since(start)}
			return
		}
		s.db = db
		s.status = Connected
		s.events <- Event{Kind: EvConnected, Duration: time.Since(start)}
	}()
}

// TestConnection dials dsn, verifies it, and closes it again without
// adopting it as the session's live connection.
func (s *Session) TestConnection(dsn string) {
	go func() {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = db.PingContext(ctx)
			cancel()
			db.Close()
		}
		s.events <- Event{Kind: EvTestConnectionResult, Err: err}
	}()
}

// Close releases the underlying *sql.DB, if any.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.status = Disconnected
	return err
}

// isTxnControl reports whether sql is a transaction-control statement,
// used to update inTxn without round-tripping to the server for a
// command tag.
func isTxnControl(sqlText string) (kind string, is bool) {
	trimmed := strings.TrimSpace(sqlText)
	upper := strings.ToUpper(trimmed)
	switch {
	case strings.HasPrefix(upper, "BEGIN"):
		return "BEGIN", true
	case strings.HasPrefix(upper, "COMMIT"):
		return "COMMIT", true
	case strings.HasPrefix(upper, "ROLLBACK"):
		return "ROLLBACK", true
	case strings.HasPrefix(upper, "END"):
		return "END", true
	default:
		return "", false
	}
}

// statementVerb classifies statements the server completes with a bare
// command tag instead of a row set: transaction control, DML without
// RETURNING, and DDL/utility statements. counted marks verbs whose tag
// carries an affected-row count. Row-returning statements (SELECT,
// VALUES, SHOW, EXPLAIN, anything with RETURNING) report ok=false and
// go through the row-scan path.
func statementVerb(sqlText string) (verb string, counted bool, ok bool) {
	if kind, is := isTxnControl(sqlText); is {
		return kind, false, true
	}
	upper := strings.ToUpper(strings.TrimSpace(sqlText))
	if strings.Contains(upper, " RETURNING ") {
		return "", false, false
	}
	for _, v := range []string{"INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(upper, v+" ") {
			return v, true, true
		}
	}
	for _, v := range []string{"CREATE ", "DROP ", "ALTER ", "TRUNCATE", "GRANT ", "REVOKE ", "SET ", "VACUUM", "ANALYZE", "COMMENT "} {
		if strings.HasPrefix(upper, v) {
			return strings.TrimSpace(v), false, true
		}
	}
	return "", false, false
}

// formatCommandTag renders the display tag for an exec-path statement,
// "UPDATE 3" style for counted verbs, the bare verb otherwise.
func formatCommandTag(verb string, counted bool, affected int64) string {
	if !counted {
		return verb
	}
	return fmt.Sprintf("%s %d", verb, affected)
}

// applyTxnVerb folds a completed statement's verb into the
// in-transaction flag: BEGIN opens, COMMIT/ROLLBACK/END close, every
// other verb leaves it unchanged.
func (s *Session) applyTxnVerb(verb string) {
	s.mu.Lock()
	switch verb {
	case "BEGIN":
		s.inTxn = true
	case "COMMIT", "ROLLBACK", "END":
		s.inTxn = false
	}
	s.mu.Unlock()
}

// Submit runs sqlText asynchronously, cancelling any still-running
// prior query first. Statements that complete with a bare command tag
// (per statementVerb) run through Exec so the tag can carry the
// affected-row count; everything else is scanned as a row set. Exactly
// one of EvQueryFinished, EvQueryError, EvQueryCancelled, or
// EvConnectionLost is posted per call.
func (s *Session) Submit(sqlText string) uint64 {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.nextID++
	id := s.nextID
	db := s.db
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			if s.cancel != nil {
				s.cancel()
				s.cancel = nil
			}
			s.mu.Unlock()
		}()

		if db == nil {
			s.events <- Event{Kind: EvQueryError, RequestID: id, Err: fmt.Errorf("not connected")}
			return
		}

		start := time.Now()
		if verb, counted, ok := statementVerb(sqlText); ok {
			res, err := db.ExecContext(ctx, sqlText)
			if err != nil {
				s.postCancelOrError(id, ctx, err)
				return
			}
			var affected int64
			if counted {
				if n, err := res.RowsAffected(); err == nil {
					affected = n
				} else {
					counted = false
				}
			}
			s.applyTxnVerb(verb)
			s.events <- Event{
				Kind:       EvQueryFinished,
				RequestID:  id,
				CommandTag: formatCommandTag(verb, counted, affected),
				Duration:   time.Since(start),
			}
			return
		}

		rows, err := db.QueryContext(ctx, sqlText)
		if err != nil {
			s.postCancelOrError(id, ctx, err)
			return
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			s.events <- Event{Kind: EvQueryError, RequestID: id, Err: err}
			return
		}
		colTypesRaw, _ := rows.ColumnTypes()
		colTypes := make([]string, len(colTypesRaw))
		for i, ct := range colTypesRaw {
			colTypes[i] = strings.ToLower(ct.DatabaseTypeName())
		}

		var result [][]string
		truncated := false
		for rows.Next() {
			if len(result) >= MaxRows {
				truncated = true
				break
			}
			vals := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				s.events <- Event{Kind: EvQueryError, RequestID: id, Err: err}
				return
			}
			row := make([]string, len(cols))
			for i, v := range vals {
				row[i] = stringify(v)
			}
			result = append(result, row)
		}
		if err := rows.Err(); err != nil {
			s.postCancelOrError(id, ctx, err)
			return
		}

		s.events <- Event{
			Kind:      EvQueryFinished,
			RequestID: id,
			Headers:   cols,
			ColTypes:  colTypes,
			Rows:      result,
			Truncated: truncated,
			Duration:  time.Since(start),
		}
	}()

	return id
}

// postCancelOrError distinguishes a context-cancelled query (superseded
// by a newer Submit, or an explicit Cancel) from a genuine driver error,
// and further distinguishes a lost connection from an ordinary query
// error.
func (s *Session) postCancelOrError(id uint64, ctx context.Context, err error) {
	if ctx.Err() == context.Canceled {
		s.events <- Event{Kind: EvQueryCancelled, RequestID: id}
		return
	}
	if isConnectionLost(err) {
		s.mu.Lock()
		s.status = Error
		s.db = nil
		s.mu.Unlock()
		s.events <- Event{Kind: EvConnectionLost, RequestID: id, Err: err}
		return
	}
	s.events <- Event{Kind: EvQueryError, RequestID: id, Err: err}
}

func isConnectionLost(err error) bool {
	if err == nil {
		return false
	}
	if err == driver.ErrBadConn || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	// SQLSTATE class 08 covers connection exceptions, including
	// admin-initiated termination.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && strings.HasPrefix(string(pqErr.Code), "08") {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "terminating connection")
}

// Cancel aborts the in-flight query, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// InTransaction reports whether the last-run statement left an open
// transaction.
func (s *Session) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inTxn
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}
