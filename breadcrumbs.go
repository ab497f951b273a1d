package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// BreadcrumbType categorizes the events the crash-report trail records.
type BreadcrumbType string

const (
	BreadcrumbKeyboard   BreadcrumbType = "keyboard"
	BreadcrumbMouse      BreadcrumbType = "mouse"
	BreadcrumbNavigation BreadcrumbType = "navigation"
	BreadcrumbDatabase   BreadcrumbType = "database"
	BreadcrumbModal      BreadcrumbType = "modal"
	BreadcrumbSession    BreadcrumbType = "session"
)

// BreadcrumbEntry is one recorded event.
type BreadcrumbEntry struct {
	Type      BreadcrumbType
	Message   string
	Data      map[string]interface{}
	Timestamp time.Time
	Level     sentry.Level
}

// BreadcrumbBuffer is a thread-safe ring buffer of the most recent
// events, flushed into the Sentry scope just before a crash report or
// explicit capture. Bursts of identical events (key repeat, held-down
// navigation) collapse into one entry with a count.
type BreadcrumbBuffer struct {
	mu           sync.RWMutex
	entries      []BreadcrumbEntry
	maxSize      int
	currentIndex int
	count        int
	last         *BreadcrumbEntry
}

// NewBreadcrumbBuffer creates a ring buffer holding at most maxSize
// events.
func NewBreadcrumbBuffer(maxSize int) *BreadcrumbBuffer {
	return &BreadcrumbBuffer{
		entries: make([]BreadcrumbEntry, maxSize),
		maxSize: maxSize,
	}
}

func (b *BreadcrumbBuffer) record(t BreadcrumbType, level sentry.Level, message string, data map[string]interface{}) {
	entry := BreadcrumbEntry{
		Type:      t,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		Level:     level,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.collapsesIntoLast(&entry) {
		if b.count > 0 {
			lastIdx := (b.currentIndex - 1 + b.maxSize) % b.maxSize
			b.entries[lastIdx].Message = fmt.Sprintf("%s (x%d)", entry.Message, 2)
		}
		b.last = &entry
		return
	}

	b.entries[b.currentIndex] = entry
	b.last = &entry
	b.currentIndex = (b.currentIndex + 1) % b.maxSize
	if b.count < b.maxSize {
		b.count++
	}
}

// collapsesIntoLast reports whether entry repeats the previous event
// closely enough (same type, same discriminating datum, within 100ms)
// to be folded into it instead of consuming a slot.
func (b *BreadcrumbBuffer) collapsesIntoLast(entry *BreadcrumbEntry) bool {
	last := b.last
	if last == nil || last.Type != entry.Type {
		return false
	}
	if entry.Timestamp.Sub(last.Timestamp) > 100*time.Millisecond {
		return false
	}
	key := map[BreadcrumbType]string{
		BreadcrumbKeyboard:   "key",
		BreadcrumbNavigation: "mode",
		BreadcrumbDatabase:   "operation",
	}[entry.Type]
	if key == "" {
		return false
	}
	lastVal, ok1 := last.Data[key].(string)
	curVal, ok2 := entry.Data[key].(string)
	return ok1 && ok2 && lastVal == curVal
}

// RecordKeyboard records one keystroke.
func (b *BreadcrumbBuffer) RecordKeyboard(key string, modifiers string) {
	b.record(BreadcrumbKeyboard, sentry.LevelDebug, "Key: "+key, map[string]interface{}{
		"key":       key,
		"modifiers": modifiers,
	})
}

// RecordMouse records a mouse action.
func (b *BreadcrumbBuffer) RecordMouse(action string) {
	b.record(BreadcrumbMouse, sentry.LevelDebug, "Mouse: "+action, map[string]interface{}{
		"action": action,
	})
}

// RecordNavigation records a focus or mode change.
func (b *BreadcrumbBuffer) RecordNavigation(mode string, description string) {
	b.record(BreadcrumbNavigation, sentry.LevelInfo, fmt.Sprintf("Navigation: %s - %s", mode, description), map[string]interface{}{
		"mode":        mode,
		"description": description,
	})
}

// RecordDatabase records a database operation (connect, query, update).
func (b *BreadcrumbBuffer) RecordDatabase(operation string) {
	b.record(BreadcrumbDatabase, sentry.LevelInfo, "DB: "+operation, map[string]interface{}{
		"operation": operation,
	})
}

// RecordModal records a modal overlay opening or closing.
func (b *BreadcrumbBuffer) RecordModal(page, action string) {
	b.record(BreadcrumbModal, sentry.LevelInfo, fmt.Sprintf("Modal: %s %s", page, action), map[string]interface{}{
		"page":   page,
		"action": action,
	})
}

// RecordSession records a database-session lifecycle event.
func (b *BreadcrumbBuffer) RecordSession(event string) {
	b.record(BreadcrumbSession, sentry.LevelInfo, "Session: "+event, map[string]interface{}{
		"event": event,
	})
}

// Flush moves the buffered trail into the Sentry scope in
// chronological order, collapsing runs of identical events, and resets
// the buffer.
func (b *BreadcrumbBuffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return
	}

	var entries []BreadcrumbEntry
	if b.count < b.maxSize {
		entries = append(entries, b.entries[:b.count]...)
	} else {
		for i := 0; i < b.maxSize; i++ {
			entries = append(entries, b.entries[(b.currentIndex+i)%b.maxSize])
		}
	}

	var crumbs []*sentry.Breadcrumb
	for i := 0; i < len(entries); {
		current := entries[i]
		run := 1
		for i+run < len(entries) && entries[i+run].Type == current.Type &&
			entries[i+run].Message == current.Message {
			run++
		}

		message := current.Message
		data := current.Data
		if run > 1 {
			message = fmt.Sprintf("%s (x%d)", current.Message, run)
			data = make(map[string]interface{}, len(current.Data)+1)
			for k, v := range current.Data {
				data[k] = v
			}
			data["count"] = run
		}

		crumbs = append(crumbs, &sentry.Breadcrumb{
			Message:   message,
			Category:  string(current.Type),
			Data:      data,
			Timestamp: current.Timestamp,
			Level:     current.Level,
		})
		i += run
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		for _, c := range crumbs {
			scope.AddBreadcrumb(c, 100)
		}
	})

	b.entries = make([]BreadcrumbEntry, b.maxSize)
	b.currentIndex = 0
	b.count = 0
	b.last = nil
}

// Global breadcrumb trail, initialized once in main.
var breadcrumbs *BreadcrumbBuffer

// InitBreadcrumbs initializes the global breadcrumb buffer.
func InitBreadcrumbs(maxSize int) {
	breadcrumbs = NewBreadcrumbBuffer(maxSize)
}
