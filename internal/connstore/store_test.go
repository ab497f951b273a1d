package connstore

import "testing"

func newTestStore() *Store {
	return &Store{path: "/tmp/does-not-matter/connections.toml"}
}

func baseEntry(name string) Entry {
	return Entry{Name: name, Host: "localhost", Port: 5432, Database: "mydb", User: "postgres", Color: ColorGreen}
}

func TestValidateRejectsBadEntries(t *testing.T) {
	cases := []Entry{
		{Name: "", Host: "h", Port: 5432, Database: "d", User: "u"},
		{Name: "has space", Host: "h", Port: 5432, Database: "d", User: "u"},
		{Name: "ok", Host: "", Port: 5432, Database: "d", User: "u"},
		{Name: "ok", Host: "h", Port: 0, Database: "d", User: "u"},
		{Name: "ok", Host: "h", Port: 70000, Database: "d", User: "u"},
		{Name: "ok", Host: "h", Port: 5432, Database: "", User: "u"},
		{Name: "ok", Host: "h", Port: 5432, Database: "d", User: ""},
		{Name: "ok", Host: "h", Port: 5432, Database: "d", User: "u", Favorite: 10},
	}
	for i, e := range cases {
		if err := e.Validate(); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, e)
		}
	}
}

func TestAddRejectsDuplicateNameAndFavorite(t *testing.T) {
	s := newTestStore()
	if err := s.Add(baseEntry("a")); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(baseEntry("a")); err == nil {
		t.Fatal("expected duplicate name rejection")
	}
	e2 := baseEntry("b")
	e2.Favorite = 1
	if err := s.Add(e2); err != nil {
		t.Fatal(err)
	}
	e3 := baseEntry("c")
	e3.Favorite = 1
	if err := s.Add(e3); err == nil {
		t.Fatal("expected duplicate favorite rejection")
	}
}

func TestSetFavoriteSwapsWithPreviousHolder(t *testing.T) {
	s := newTestStore()
	a := baseEntry("a")
	a.Favorite = 1
	b := baseEntry("b")
	b.Favorite = 2
	must(t, s.Add(a))
	must(t, s.Add(b))

	must(t, s.SetFavorite("b", 1))

	aEntry, _ := s.FindByName("a")
	bEntry, _ := s.FindByName("b")
	if bEntry.Favorite != 1 {
		t.Fatalf("expected b.Favorite == 1, got %d", bEntry.Favorite)
	}
	if aEntry.Favorite != 2 {
		t.Fatalf("expected a.Favorite swapped to 2, got %d", aEntry.Favorite)
	}
	assertNoDuplicateFavorites(t, s)
}

func TestCycleFavoriteWrapsThroughNone(t *testing.T) {
	s := newTestStore()
	must(t, s.Add(baseEntry("a")))
	for want := 1; want <= 9; want++ {
		must(t, s.CycleFavorite("a"))
		e, _ := s.FindByName("a")
		if e.Favorite != want {
			t.Fatalf("expected favorite %d, got %d", want, e.Favorite)
		}
	}
	must(t, s.CycleFavorite("a"))
	e, _ := s.FindByName("a")
	if e.Favorite != 0 {
		t.Fatalf("expected favorite to wrap to none (0), got %d", e.Favorite)
	}
}

func TestSortedOrdersFavoritesThenAlphabetical(t *testing.T) {
	s := newTestStore()
	must(t, s.Add(baseEntry("zeta")))
	fav := baseEntry("alpha")
	fav.Favorite = 3
	must(t, s.Add(fav))
	must(t, s.Add(baseEntry("beta")))

	sorted := s.Sorted()
	if sorted[0].Name != "alpha" {
		t.Fatalf("expected favorite entry first, got %q", sorted[0].Name)
	}
	if sorted[1].Name != "beta" || sorted[2].Name != "zeta" {
		t.Fatalf("expected alphabetical order for non-favorites, got %v", names(sorted))
	}
}

func assertNoDuplicateFavorites(t *testing.T, s *Store) {
	t.Helper()
	seen := map[int]string{}
	for _, e := range s.entries {
		if e.Favorite == 0 {
			continue
		}
		if owner, ok := seen[e.Favorite]; ok {
			t.Fatalf("favorite %d held by both %q and %q", e.Favorite, owner, e.Name)
		}
		seen[e.Favorite] = e.Name
	}
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
