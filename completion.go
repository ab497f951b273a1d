package main

import (
	"sort"
	"strings"

	"tsql/internal/schema"
	"tsql/internal/textedit"
)

// Completion is the identifier-completion popup state: the prefix being
// completed, the matching candidates, and which one is highlighted.
// Candidates come from the schema cache (table and column names), so
// the popup only ever offers names the connected database actually has.
type Completion struct {
	Prefix     string
	Candidates []string
	Index      int
}

// completionCandidates collects every table and column name in the
// cache matching prefix case-insensitively, deduplicated and sorted.
func completionCandidates(cache *schema.Cache, prefix string) []string {
	if cache == nil {
		return nil
	}
	lower := strings.ToLower(prefix)
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		if !strings.HasPrefix(strings.ToLower(name), lower) {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, t := range cache.Tables {
		add(t.Name)
		for _, c := range t.Columns {
			add(c.Name)
		}
	}
	sort.Strings(out)
	return out
}

// startCompletion builds a Completion for prefix, or nil when nothing
// matches.
func startCompletion(cache *schema.Cache, prefix string) *Completion {
	if prefix == "" {
		return nil
	}
	cands := completionCandidates(cache, prefix)
	if len(cands) == 0 {
		return nil
	}
	return &Completion{Prefix: prefix, Candidates: cands}
}

// Cycle advances the highlighted candidate by delta, wrapping.
func (c *Completion) Cycle(delta int) {
	n := len(c.Candidates)
	c.Index = ((c.Index+delta)%n + n) % n
}

// Current returns the highlighted candidate.
func (c *Completion) Current() string {
	return c.Candidates[c.Index]
}

// Extend narrows the candidate list after the user typed another
// prefix character. Returns false when no candidate matches the longer
// prefix, meaning the popup should close.
func (c *Completion) Extend(r rune) bool {
	longer := c.Prefix + string(r)
	lower := strings.ToLower(longer)
	var kept []string
	for _, cand := range c.Candidates {
		if strings.HasPrefix(strings.ToLower(cand), lower) {
			kept = append(kept, cand)
		}
	}
	if len(kept) == 0 {
		return false
	}
	c.Prefix = longer
	c.Candidates = kept
	c.Index = 0
	return true
}

// wordBeforeCursor returns the identifier characters immediately left
// of the buffer cursor, the prefix completion operates on.
func wordBeforeCursor(b *textedit.Buffer) string {
	line := b.Line(b.Cursor().Line)
	col := b.Cursor().Col
	if col > len(line) {
		col = len(line)
	}
	start := col
	for start > 0 && isIdentRune(line[start-1]) {
		start--
	}
	return string(line[start:col])
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// statusLine renders the popup into the status bar: up to six
// candidates (the page of six holding the highlighted one), the
// highlighted one shown in inverse colors.
func (c *Completion) statusLine() string {
	const maxShown = 6
	var b strings.Builder
	b.WriteString("complete: ")
	shown := c.Candidates
	offset := 0
	if len(shown) > maxShown {
		offset = c.Index - c.Index%maxShown
		end := offset + maxShown
		if end > len(shown) {
			end = len(shown)
		}
		shown = shown[offset:end]
	}
	for i, cand := range shown {
		if i > 0 {
			b.WriteString("  ")
		}
		if offset+i == c.Index {
			b.WriteString("[black:aqua]" + cand + "[white:-]")
		} else {
			b.WriteString(cand)
		}
	}
	return b.String()
}
