//go:build debug

package main

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// debugSink appends timestamped lines to /tmp/tsql.log. The file opens
// lazily on first write; an open failure disables logging for the rest
// of the run rather than aborting startup.
type debugSink struct {
	mu     sync.Mutex
	file   *os.File
	failed bool
}

var debugOut debugSink

func (d *debugSink) printf(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failed {
		return
	}
	if d.file == nil {
		f, err := os.OpenFile("/tmp/tsql.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "debug log disabled: %v\n", err)
			d.failed = true
			return
		}
		d.file = f
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(d.file, "[%s] "+format, append([]interface{}{timestamp}, args...)...)
}

// debugLog writes one formatted line to the debug log.
func debugLog(format string, args ...interface{}) {
	debugOut.printf(format, args...)
}

// debugLogKeys logs a key-column slice with its length.
func debugLogKeys(prefix string, keys []any) {
	if keys == nil {
		debugLog("%s: nil\n", prefix)
		return
	}
	debugLog("%s: %v (len=%d)\n", prefix, keys, len(keys))
}

// debugLogRow logs row data, truncated to the first few cells.
func debugLogRow(prefix string, row []any) {
	switch {
	case row == nil:
		debugLog("%s: nil\n", prefix)
	case len(row) <= 5:
		debugLog("%s: %v\n", prefix, row)
	default:
		debugLog("%s: %v... (len=%d)\n", prefix, row[:5], len(row))
	}
}
