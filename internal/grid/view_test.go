package grid

import "testing"

func buildSearchModel() *Model {
	return New(
		[]string{"id", "name"},
		[]string{"int4", "text"},
		[][]string{
			{"1", "Alice"},
			{"2", "bob"},
			{"3", "ALICE2"},
		},
	)
}

func TestSearchCompleteness(t *testing.T) {
	m := buildSearchModel()
	v := NewViewState()
	v.RunSearch(m, "alice")

	want := []MatchPos{{Row: 0, Col: 1}, {Row: 2, Col: 1}}
	if len(v.Search.Matches) != len(want) {
		t.Fatalf("got %d matches, want %d", len(v.Search.Matches), len(want))
	}
	for i, w := range want {
		if v.Search.Matches[i] != w {
			t.Fatalf("match %d = %+v, want %+v", i, v.Search.Matches[i], w)
		}
	}
}

func TestSearchCycleWraps(t *testing.T) {
	m := buildSearchModel()
	v := NewViewState()
	v.RunSearch(m, "alice")

	v.NextMatch()
	first := v.Search.CurrentMatch
	v.NextMatch()
	v.NextMatch() // wraps back to first
	if v.Search.CurrentMatch != first {
		t.Fatalf("expected wraparound back to %d, got %d", first, v.Search.CurrentMatch)
	}
}

func TestEnsureRowVisible(t *testing.T) {
	v := NewViewState()
	v.CursorRow = 50
	v.EnsureRowVisible(10)
	if v.CursorRow < v.RowOffset || v.CursorRow >= v.RowOffset+10 {
		t.Fatalf("cursor row %d not within viewport [%d, %d)", v.CursorRow, v.RowOffset, v.RowOffset+10)
	}
}

func TestSelectedOrCursorRows(t *testing.T) {
	v := NewViewState()
	v.CursorRow = 5
	if got := v.SelectedOrCursorRows(); len(got) != 1 || got[0] != 5 {
		t.Fatalf("expected [5] with no selection, got %v", got)
	}
	v.ToggleRowSelection(2)
	v.ToggleRowSelection(0)
	got := v.SelectedOrCursorRows()
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("expected sorted [0 2], got %v", got)
	}
}
