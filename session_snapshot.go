package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"tsql/internal/connstore"
)

// SessionSnapshot is the on-disk record of where the user left off: the
// last-connected connection, unsaved editor text, which schema-tree
// nodes were expanded, and whether the sidebar was visible. Written on
// quit, applied on the next launch.
type SessionSnapshot struct {
	Version       int      `json:"version"`
	Connection    string   `json:"connection,omitempty"`
	EditorText    string   `json:"editor_text,omitempty"`
	ExpandedNodes []string `json:"expanded_nodes,omitempty"`
	SidebarOn     bool     `json:"sidebar_visible"`
}

const sessionSnapshotVersion = 1

// LoadSessionSnapshot reads the session file, returning nil (no error)
// when it does not exist yet.
func LoadSessionSnapshot() (*SessionSnapshot, error) {
	path, err := getSessionPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveSessionSnapshot writes the session file atomically (temp file +
// rename), creating the config directory if needed.
func SaveSessionSnapshot(snap *SessionSnapshot) error {
	path, err := getSessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// captureSessionState snapshots the parts of the running app worth
// restoring next launch.
func (a *App) captureSessionState() *SessionSnapshot {
	snap := &SessionSnapshot{
		Version:    sessionSnapshotVersion,
		Connection: a.connectionName,
		SidebarOn:  a.sidebarOn,
	}
	if a.buf.Modified() {
		snap.EditorText = a.buf.Text()
	}
	snap.ExpandedNodes = a.expandedSchemaNodes()
	return snap
}

// applySessionState restores a prior snapshot. Editor text is marked
// unsaved (it was unsaved when captured); the connection is re-dialed
// only when no explicit startup connection was already resolved.
func (a *App) applySessionState(snap *SessionSnapshot, reconnect bool) {
	if snap == nil {
		return
	}
	a.sidebarOn = snap.SidebarOn
	if snap.EditorText != "" {
		a.buf.SetText(snap.EditorText)
	}
	a.pendingExpandedNodes = snap.ExpandedNodes
	if reconnect && snap.Connection != "" {
		if entry, ok := a.conns.FindByName(snap.Connection); ok {
			password, err := connstore.ResolvePassword(entry, os.Getenv)
			if err == nil {
				a.connectEntry(entry, password)
			}
		}
	}
}
