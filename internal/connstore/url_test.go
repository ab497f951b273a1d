package connstore

import "testing"

func TestToURLOmitsDefaultPort(t *testing.T) {
	e := Entry{Name: "x", Host: "localhost", Port: 5432, Database: "mydb", User: "postgres", SSLMode: SSLRequire}
	got := ToURL(e, nil)
	want := "postgres://postgres@localhost/mydb?sslmode=require"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestToURLIncludesNonDefaultPort(t *testing.T) {
	e := Entry{Name: "x", Host: "db.example.com", Port: 6543, Database: "mydb", User: "postgres"}
	got := ToURL(e, nil)
	want := "postgres://postgres@db.example.com:6543/mydb"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestURLRoundTrip(t *testing.T) {
	e := Entry{Name: "x", Host: "localhost", Port: 5432, Database: "mydb", User: "postgres", SSLMode: SSLRequire}
	pwd := "s3cr3t"
	url := ToURL(e, &pwd)

	got, gotPwd, err := FromURL("x", url)
	if err != nil {
		t.Fatal(err)
	}
	if got.Host != e.Host || got.Port != e.Port || got.Database != e.Database || got.User != e.User || got.SSLMode != e.SSLMode {
		t.Fatalf("round-trip mismatch: got %+v want %+v", got, e)
	}
	if gotPwd == nil || *gotPwd != pwd {
		t.Fatalf("expected password to round-trip, got %v", gotPwd)
	}
}

func TestFromURLRejectsBadScheme(t *testing.T) {
	if _, _, err := FromURL("x", "mysql://user@host/db"); err == nil {
		t.Fatal("expected scheme rejection")
	}
}

func TestFromURLRejectsMissingDatabase(t *testing.T) {
	if _, _, err := FromURL("x", "postgres://user@host/"); err == nil {
		t.Fatal("expected missing-database rejection")
	}
}

func TestFromURLNoPasswordSetsFlag(t *testing.T) {
	entry, pwd, err := FromURL("x", "postgres://user@host/db")
	if err != nil {
		t.Fatal(err)
	}
	if pwd != nil {
		t.Fatalf("expected no password, got %v", *pwd)
	}
	if !entry.NoPasswordRequired {
		t.Fatal("expected NoPasswordRequired to be set when URL carries no password")
	}
}

func TestParseSSLModeCaseAndWhitespaceInsensitive(t *testing.T) {
	modes := []SSLMode{SSLDisable, SSLPrefer, SSLRequire, SSLVerifyCA, SSLVerifyFull}
	for _, m := range modes {
		got, ok := ParseSSLMode("  " + string(m) + " ")
		if !ok || got != m {
			t.Errorf("ParseSSLMode(%q) = %v, %v", m, got, ok)
		}
		upper := ParseSSLModeUpper(string(m))
		if upper != m {
			t.Errorf("case-insensitive parse failed for %q", m)
		}
	}
	if _, ok := ParseSSLMode("bogus"); ok {
		t.Fatal("expected bogus sslmode to be rejected")
	}
}

func ParseSSLModeUpper(m string) SSLMode {
	got, _ := ParseSSLMode(upper(m))
	return got
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
