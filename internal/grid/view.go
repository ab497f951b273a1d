package grid

import "strings"

// MatchPos is a (row, col) coordinate of a search match.
type MatchPos struct {
	Row, Col int
}

// SearchState holds the grid's "/"-search results.
type SearchState struct {
	Pattern      string // always stored lowercased
	Matches      []MatchPos
	CurrentMatch int // index into Matches, -1 if none
}

// ViewState is the grid's viewport, cursor, selection, and search
// bookkeeping, kept separate from Model so a new result set resets the
// view without touching column metadata.
type ViewState struct {
	CursorRow, CursorCol int
	RowOffset, ColOffset int
	SelectedRows         map[int]struct{}
	Search               SearchState

	// MarkerWidth reserves a left column for the cursor/selection
	// indicator independent of data scrolling.
	MarkerWidth int
}

// NewViewState returns a zeroed ViewState with no current search match.
func NewViewState() *ViewState {
	return &ViewState{
		SelectedRows: make(map[int]struct{}),
		Search:       SearchState{CurrentMatch: -1},
		MarkerWidth:  3,
	}
}

// ClampCursor enforces cursor_row < |rows| and cursor_col < |headers|
// whenever rows/headers are non-empty.
func (v *ViewState) ClampCursor(m *Model) {
	if len(m.Rows) == 0 {
		v.CursorRow = 0
	} else if v.CursorRow >= len(m.Rows) {
		v.CursorRow = len(m.Rows) - 1
	} else if v.CursorRow < 0 {
		v.CursorRow = 0
	}
	if len(m.Headers) == 0 {
		v.CursorCol = 0
	} else if v.CursorCol >= len(m.Headers) {
		v.CursorCol = len(m.Headers) - 1
	} else if v.CursorCol < 0 {
		v.CursorCol = 0
	}
}

func (v *ViewState) EnsureRowVisible(viewportRows int) {
	if viewportRows <= 0 {
		return
	}
	if v.CursorRow < v.RowOffset {
		v.RowOffset = v.CursorRow
	} else if v.CursorRow >= v.RowOffset+viewportRows {
		v.RowOffset = v.CursorRow - viewportRows + 1
	}
	if v.RowOffset < 0 {
		v.RowOffset = 0
	}
}

func (v *ViewState) EnsureColVisible(widths []int, availWidth int) {
	if v.CursorCol < v.ColOffset {
		v.ColOffset = v.CursorCol
		return
	}
	for {
		used := 0
		for c := v.ColOffset; c <= v.CursorCol && c < len(widths); c++ {
			used += widths[c] + 1
		}
		if used <= availWidth || v.ColOffset >= v.CursorCol {
			return
		}
		v.ColOffset++
	}
}

// RunSearch performs a case-insensitive substring search over string cell
// values and stores the matches, in row-major order, in v.Search.
func (v *ViewState) RunSearch(m *Model, pattern string) {
	lower := strings.ToLower(pattern)
	v.Search = SearchState{Pattern: lower, CurrentMatch: -1}
	if lower == "" {
		return
	}
	for r, row := range m.Rows {
		for c, cell := range row {
			if strings.Contains(strings.ToLower(cell), lower) {
				v.Search.Matches = append(v.Search.Matches, MatchPos{Row: r, Col: c})
			}
		}
	}
	if len(v.Search.Matches) > 0 {
		v.Search.CurrentMatch = 0
	}
}

// NextMatch cycles forward through search matches with wraparound,
// moving the cursor and ColOffset to make the match visible.
func (v *ViewState) NextMatch() {
	v.cycleMatch(1)
}

// PrevMatch cycles backward through search matches with wraparound.
func (v *ViewState) PrevMatch() {
	v.cycleMatch(-1)
}

func (v *ViewState) cycleMatch(delta int) {
	n := len(v.Search.Matches)
	if n == 0 {
		return
	}
	if v.Search.CurrentMatch < 0 {
		v.Search.CurrentMatch = 0
	} else {
		v.Search.CurrentMatch = ((v.Search.CurrentMatch+delta)%n + n) % n
	}
	match := v.Search.Matches[v.Search.CurrentMatch]
	v.CursorRow = match.Row
	v.CursorCol = match.Col
	v.ColOffset = match.Col
}

// ToggleRowSelection adds/removes row from the multi-row selection set
// used by copy and :gen.
func (v *ViewState) ToggleRowSelection(row int) {
	if _, ok := v.SelectedRows[row]; ok {
		delete(v.SelectedRows, row)
	} else {
		v.SelectedRows[row] = struct{}{}
	}
}

func (v *ViewState) SelectedOrCursorRows() []int {
	if len(v.SelectedRows) == 0 {
		return []int{v.CursorRow}
	}
	rows := make([]int, 0, len(v.SelectedRows))
	for r := range v.SelectedRows {
		rows = append(rows, r)
	}
	// simple insertion sort; selection sets are small
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j-1] > rows[j]; j-- {
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
	return rows
}
