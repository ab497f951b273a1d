package connstore

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ToURL renders entry as a postgres:// URL:
//	postgres://<user>[:<urlenc-pwd>]@<host>[:<port>]/<db>[?sslmode=<mode>]
// The port segment is omitted when it equals 5432.
func ToURL(e Entry, password *string) string {
	var userinfo string
	if password != nil && *password != "" {
		userinfo = e.User + ":" + urlEncode(*password) + "@"
	} else {
		userinfo = e.User + "@"
	}

	hostPort := e.Host
	if e.Port != 0 && e.Port != 5432 {
		hostPort = fmt.Sprintf("%s:%d", e.Host, e.Port)
	}

	u := fmt.Sprintf("postgres://%s%s/%s", userinfo, hostPort, e.Database)
	if e.SSLMode != "" {
		u += "?sslmode=" + string(e.SSLMode)
	}
	return u
}

// urlEncode percent-encodes anything outside the unreserved set
// A-Z a-z 0-9 "-" "_" "." "~".
func urlEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// FromURL parses a postgres:// / postgresql:// URL into an Entry and
// an optional password, setting NoPasswordRequired when the URL
// carries no userinfo password. Rejects other schemes, a missing
// host, or an empty database.
func FromURL(name, rawURL string) (Entry, *string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("invalid connection URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return Entry{}, nil, fmt.Errorf("unsupported URL scheme %q, expected postgres:// or postgresql://", u.Scheme)
	}
	if u.Hostname() == "" {
		return Entry{}, nil, fmt.Errorf("connection URL is missing a host")
	}
	database := strings.TrimPrefix(u.Path, "/")
	if database == "" {
		return Entry{}, nil, fmt.Errorf("connection URL is missing a database name")
	}

	port := 5432
	if p := u.Port(); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return Entry{}, nil, fmt.Errorf("invalid port %q: %w", p, err)
		}
		port = parsed
	}

	user := "postgres"
	var password *string
	noPasswordRequired := true
	if u.User != nil {
		if u.User.Username() != "" {
			user = u.User.Username()
		}
		if pwd, ok := u.User.Password(); ok {
			password = &pwd
			noPasswordRequired = false
		}
	}

	entry := Entry{
		Name:               name,
		Host:               u.Hostname(),
		Port:               port,
		Database:           database,
		User:               user,
		Color:              ColorNone,
		NoPasswordRequired: noPasswordRequired,
	}
	if sslmode := u.Query().Get("sslmode"); sslmode != "" {
		if mode, ok := ParseSSLMode(sslmode); ok {
			entry.SSLMode = mode
		}
	}
	return entry, password, nil
}
