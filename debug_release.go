//go:build !debug

package main

// Release builds compile the debug helpers down to nothing.

func debugLog(format string, args ...interface{}) {}

func debugLogKeys(prefix string, keys []any) {}

func debugLogRow(prefix string, row []any) {}
