package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPushRejectsBlankQueries(t *testing.T) {
	l := &Log{}
	l.Push(Entry{Query: "   \t\n"})
	if len(l.Entries()) != 0 {
		t.Fatalf("expected blank query to be rejected, got %d entries", len(l.Entries()))
	}
}

func TestPushEvictsOldestBeyondMax(t *testing.T) {
	l := &Log{}
	for i := 0; i < MaxEntries+10; i++ {
		l.Push(Entry{Query: "select 1", RanAt: time.Now()})
	}
	entries := l.Entries()
	if len(entries) != MaxEntries {
		t.Fatalf("expected log capped at %d entries, got %d", MaxEntries, len(entries))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "history.json")

	l := &Log{path: path}
	l.Push(Entry{Query: "select 1", Connection: "local", Succeeded: true})
	l.Push(Entry{Query: "select 2", Connection: "local", Succeeded: false})

	if err := l.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist after Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	entries := loaded.Entries()
	if len(entries) != 2 || entries[0].Query != "select 1" || entries[1].Query != "select 2" {
		t.Fatalf("unexpected round-tripped entries: %+v", entries)
	}
}

func TestLoadMissingFileReturnsEmptyLog(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Entries()) != 0 {
		t.Fatal("expected empty log for missing file")
	}
}

func TestSearchEmptyPatternReturnsMostRecentFirst(t *testing.T) {
	l := &Log{}
	l.Push(Entry{Query: "select 1"})
	l.Push(Entry{Query: "select 2"})
	l.Push(Entry{Query: "select 3"})

	matches := l.Search("")
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].Entry.Query != "select 3" {
		t.Fatalf("expected most recent entry first, got %q", matches[0].Entry.Query)
	}
	for _, m := range matches {
		if m.Score != 0 {
			t.Fatalf("expected zero score for empty-pattern search, got %d", m.Score)
		}
	}
}

func TestSearchScoresDescending(t *testing.T) {
	l := &Log{}
	l.Push(Entry{Query: "select id from accounts"})
	l.Push(Entry{Query: "delete from logs"})
	l.Push(Entry{Query: "select * from accounts where id = 1"})

	matches := l.Search("select accounts")
	if len(matches) == 0 {
		t.Fatal("expected at least one fuzzy match")
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Fatalf("expected descending scores, got %v", matches)
		}
	}
}

func TestSaveWithoutDirtyIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	l := &Log{path: path}
	if err := l.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatal("expected no file to be written when log is not dirty")
	}
}
