// Package history persists the query history log and serves scored
// fuzzy search over it via github.com/sahilm/fuzzy, whose []string
// Find API fits the query-text search surface directly.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"
)

// MaxEntries bounds the log; the oldest entry is evicted once a push
// would exceed it.
const MaxEntries = 1000

// fileVersion is written to every persisted history file so a future
// format change can migrate forward.
const fileVersion = 1

// Entry is one executed statement.
type Entry struct {
	Query     string    `json:"query"`
	RanAt     time.Time `json:"ran_at"`
	Connection string   `json:"connection,omitempty"`
	DurationMS int64    `json:"duration_ms,omitempty"`
	Succeeded bool       `json:"succeeded"`
}

type fileFormat struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// Log is an in-memory, disk-backed history list. Not safe for use from
// multiple processes; one tsql instance owns the file.
type Log struct {
	mu      sync.Mutex
	path    string
	entries []Entry
	dirty   bool
}

// Load reads path if it exists, or returns an empty Log otherwise.
func Load(path string) (*Log, error) {
	l := &Log{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, err
	}
	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, err
	}
	l.entries = ff.Entries
	return l, nil
}

// Push appends a new entry, rejecting blank queries and evicting the
// oldest entry once MaxEntries is exceeded.
func (l *Log) Push(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if trimmedEmpty(e.Query) {
		return
	}
	l.entries = append(l.entries, e)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[len(l.entries)-MaxEntries:]
	}
	l.dirty = true
}

func trimmedEmpty(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Save writes the log to disk atomically: write to a temp file in the
// same directory, then rename over the target.
func (l *Log) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.dirty {
		return nil
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileFormat{Version: fileVersion, Entries: l.entries}, "", "  ")
	if err != nil {
		return err
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return err
	}
	l.dirty = false
	return nil
}

// Match is one scored search result.
type Match struct {
	Entry          Entry
	Score          int
	MatchedIndexes []int
}

// Search runs a fuzzy query against the log, most-recent-first when
// pattern is empty, else scored descending via sahilm/fuzzy.
func (l *Log) Search(pattern string) []Match {
	l.mu.Lock()
	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	l.mu.Unlock()

	if pattern == "" {
		out := make([]Match, len(entries))
		for i, e := range entries {
			out[len(entries)-1-i] = Match{Entry: e, Score: 0}
		}
		return out
	}

	queries := make([]string, len(entries))
	for i, e := range entries {
		queries[i] = e.Query
	}
	matches := fuzzy.Find(pattern, queries)

	out := make([]Match, len(matches))
	for i, m := range matches {
		out[i] = Match{Entry: entries[m.Index], Score: m.Score, MatchedIndexes: m.MatchedIndexes}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
