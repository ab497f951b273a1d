package grid

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format selects an export/copy encoding.
type Format int

const (
	FormatCSV Format = iota
	FormatJSON
	FormatTSV
)

// ParseFormat parses the ":export {csv|json|tsv}" argument.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV, true
	case "json":
		return FormatJSON, true
	case "tsv":
		return FormatTSV, true
	default:
		return 0, false
	}
}

func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Export writes the full result set to path in the given format. "~/"
// expansion happens in ExpandHome, called by the caller before
// invoking Export.
func Export(m *Model, format Format, path string) error {
	var data string
	switch format {
	case FormatCSV:
		data = encodeCSV(m.Headers, m.Rows)
	case FormatJSON:
		data = encodeJSON(m.Headers, m.Rows)
	case FormatTSV:
		data = encodeTSV(m.Headers, m.Rows, true)
	default:
		return fmt.Errorf("unknown export format")
	}
	return os.WriteFile(path, []byte(data), 0o644)
}

// CopyTSV renders the given row indices as TSV, optionally with a header
// row.
func CopyTSV(m *Model, rows []int, withHeader bool) string {
	selected := make([][]string, 0, len(rows))
	for _, r := range rows {
		if r >= 0 && r < len(m.Rows) {
			selected = append(selected, m.Rows[r])
		}
	}
	return encodeTSV(m.Headers, selected, withHeader)
}

func encodeTSV(headers []string, rows [][]string, withHeader bool) string {
	var b strings.Builder
	if withHeader {
		b.WriteString(strings.Join(headers, "\t"))
		b.WriteString("\n")
	}
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

func encodeCSV(headers []string, rows [][]string) string {
	var b strings.Builder
	writeRow := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(csvField(f))
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

func csvField(f string) string {
	if strings.ContainsAny(f, ",\"\n") {
		return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return f
}

func encodeJSON(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("[\n")
	for i, row := range rows {
		b.WriteString("  {")
		for j, h := range headers {
			if j > 0 {
				b.WriteString(", ")
			}
			val := ""
			if j < len(row) {
				val = row[j]
			}
			b.WriteString(jsonString(h))
			b.WriteString(": ")
			b.WriteString(jsonString(val))
		}
		b.WriteString("}")
		if i < len(rows)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]\n")
	return b.String()
}

func jsonString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
