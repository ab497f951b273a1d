package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionSnapshotRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := &SessionSnapshot{
		Version:       sessionSnapshotVersion,
		Connection:    "staging",
		EditorText:    "SELECT * FROM users\nWHERE id = 1",
		ExpandedNodes: []string{"public", "public.users"},
		SidebarOn:     true,
	}
	if err := SaveSessionSnapshot(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadSessionSnapshot()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("load returned nil after save")
	}
	if got.Connection != want.Connection || got.EditorText != want.EditorText || got.SidebarOn != want.SidebarOn {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if len(got.ExpandedNodes) != 2 || got.ExpandedNodes[0] != "public" {
		t.Errorf("expanded nodes = %v", got.ExpandedNodes)
	}
}

func TestLoadSessionSnapshotMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	snap, err := LoadSessionSnapshot()
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if snap != nil {
		t.Fatalf("missing file should yield nil snapshot, got %+v", snap)
	}
}

func TestSaveSessionSnapshotAtomic(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if err := SaveSessionSnapshot(&SessionSnapshot{Version: sessionSnapshotVersion}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tsql", "session.json.tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}
