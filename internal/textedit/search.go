package textedit

import "regexp"

// SearchState holds the editor's "/"-search: the compiled pattern and
// every match position, cycled with n/N.
type SearchState struct {
	Pattern string
	Matches []Pos
	Current int // index into Matches, -1 if none
}

// Search compiles pattern case-insensitively and collects every match
// position, moving the cursor to the first match at or after it.
// An empty or invalid pattern clears the search state.
func (b *Buffer) Search(pattern string) (int, error) {
	b.search = SearchState{Current: -1}
	if pattern == "" {
		return 0, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return 0, err
	}
	b.search.Pattern = pattern
	for line := 0; line < len(b.lines); line++ {
		for _, loc := range re.FindAllStringIndex(b.lines[line], -1) {
			col := len([]rune(b.lines[line][:loc[0]]))
			b.search.Matches = append(b.search.Matches, Pos{Line: line, Col: col})
		}
	}
	if len(b.search.Matches) == 0 {
		return 0, nil
	}
	b.search.Current = 0
	for i, m := range b.search.Matches {
		if m.Line > b.cursor.Line || (m.Line == b.cursor.Line && m.Col >= b.cursor.Col) {
			b.search.Current = i
			break
		}
	}
	b.cursor = b.search.Matches[b.search.Current]
	b.clampCursor()
	return len(b.search.Matches), nil
}

// SearchMatches exposes the current match list for rendering.
func (b *Buffer) SearchMatches() SearchState { return b.search }

// NextMatch moves the cursor to the next search match, wrapping.
func (b *Buffer) NextMatch() { b.cycleSearch(1) }

// PrevMatch moves the cursor to the previous search match, wrapping.
func (b *Buffer) PrevMatch() { b.cycleSearch(-1) }

func (b *Buffer) cycleSearch(delta int) {
	n := len(b.search.Matches)
	if n == 0 {
		return
	}
	b.search.Current = ((b.search.Current+delta)%n + n) % n
	b.cursor = b.search.Matches[b.search.Current]
	b.clampCursor()
}

// ClearSearch drops the search state.
func (b *Buffer) ClearSearch() {
	b.search = SearchState{Current: -1}
}
