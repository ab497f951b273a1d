package grid

import "testing"

func TestExtractSourceTableSimple(t *testing.T) {
	cases := map[string]string{
		`SELECT id, name FROM users ORDER BY id LIMIT 2`: "users",
		`select * from "Users"`:                          "Users",
		`SELECT * FROM public.users`:                      "users",
		`SELECT * FROM users JOIN orders ON true`:          "",
		`SELECT * FROM (SELECT * FROM users) t`:            "",
		`UPDATE users SET name = 'x'`:                      "",
	}
	for query, want := range cases {
		if got := ExtractSourceTable(query); got != want {
			t.Errorf("ExtractSourceTable(%q) = %q, want %q", query, got, want)
		}
	}
}
