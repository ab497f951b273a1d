// Package connstore manages named, persisted PostgreSQL connections: TOML
// storage, validation, favorites, and OS keychain password resolution.
package connstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Color is a connection's display color tag.
type Color string

const (
	ColorNone    Color = "none"
	ColorRed     Color = "red"
	ColorGreen   Color = "green"
	ColorYellow  Color = "yellow"
	ColorBlue    Color = "blue"
	ColorMagenta Color = "magenta"
	ColorCyan    Color = "cyan"
	ColorWhite   Color = "white"
	ColorGray    Color = "gray"
)

var colorCycleOrder = []Color{
	ColorNone, ColorRed, ColorGreen, ColorYellow, ColorBlue,
	ColorMagenta, ColorCyan, ColorWhite, ColorGray,
}

func (c Color) Next() Color {
	for i, col := range colorCycleOrder {
		if col == c {
			return colorCycleOrder[(i+1)%len(colorCycleOrder)]
		}
	}
	return colorCycleOrder[0]
}

// SSLMode is a libpq sslmode value.
type SSLMode string

const (
	SSLDisable    SSLMode = "disable"
	SSLPrefer     SSLMode = "prefer"
	SSLRequire    SSLMode = "require"
	SSLVerifyCA   SSLMode = "verify-ca"
	SSLVerifyFull SSLMode = "verify-full"
)

// ParseSSLMode parses a case- and whitespace-insensitive sslmode string.
func ParseSSLMode(s string) (SSLMode, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch SSLMode(norm) {
	case SSLDisable, SSLPrefer, SSLRequire, SSLVerifyCA, SSLVerifyFull:
		return SSLMode(norm), true
	default:
		return "", false
	}
}

// Entry is a persisted connection.
type Entry struct {
	Name               string  `toml:"name"`
	Host               string  `toml:"host"`
	Port               int     `toml:"port"`
	Database           string  `toml:"database"`
	User               string  `toml:"user"`
	PasswordInKeychain bool    `toml:"password_in_keychain"`
	PasswordEnv        string  `toml:"password_env,omitempty"`
	Color              Color   `toml:"color"`
	Favorite           int     `toml:"favorite,omitempty"` // 0 means unset
	SSLMode            SSLMode `toml:"ssl_mode,omitempty"`

	// NoPasswordRequired is set by FromURL when the source URL carried
	// no userinfo password, so later connects don't treat its absence
	// as an error.
	NoPasswordRequired bool `toml:"-"`
}

func (e Entry) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("connection name must not be empty")
	}
	if strings.ContainsAny(e.Name, " \t\n\r") {
		return fmt.Errorf("connection name must not contain whitespace")
	}
	if e.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if e.Database == "" {
		return fmt.Errorf("database must not be empty")
	}
	if e.User == "" {
		return fmt.Errorf("user must not be empty")
	}
	if e.Port <= 0 || e.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if e.Favorite != 0 && (e.Favorite < 1 || e.Favorite > 9) {
		return fmt.Errorf("favorite must be between 1 and 9")
	}
	return nil
}

type fileFormat struct {
	Connection []Entry `toml:"connection"`
}

// Store holds the in-memory set of connections backing connections.toml.
type Store struct {
	path    string
	entries []Entry
}

// Load reads connections.toml from path, creating an empty store if the
// file does not exist.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{path: path}, nil
		}
		return nil, fmt.Errorf("could not read connections file: %w", err)
	}
	var ff fileFormat
	if err := toml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("could not parse connections file: %w", err)
	}
	return &Store{path: path, entries: ff.Connection}, nil
}

// Save writes the store back to its TOML file, creating parent
// directories as needed (mirrors settings.go's mkdir/marshal/write
// idiom).
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	data, err := toml.Marshal(fileFormat{Connection: s.entries})
	if err != nil {
		return fmt.Errorf("could not marshal connections: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Entries returns a copy of all stored entries.
func (s *Store) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// FindByName returns the entry with the given name, if any.
func (s *Store) FindByName(name string) (Entry, bool) {
	for _, e := range s.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// FindByFavorite returns the entry currently holding favorite number n.
func (s *Store) FindByFavorite(n int) (Entry, bool) {
	for _, e := range s.entries {
		if e.Favorite == n {
			return e, true
		}
	}
	return Entry{}, false
}

func (s *Store) Add(e Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, ok := s.FindByName(e.Name); ok {
		return fmt.Errorf("a connection named %q already exists", e.Name)
	}
	if e.Favorite != 0 {
		if existing, ok := s.FindByFavorite(e.Favorite); ok {
			return fmt.Errorf("favorite %d is already used by %q", e.Favorite, existing.Name)
		}
	}
	s.entries = append(s.entries, e)
	return nil
}

// Update replaces the entry named originalName with e, applying the same
// uniqueness checks as Add (excluding the entry being replaced).
func (s *Store) Update(originalName string, e Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	idx := -1
	for i, existing := range s.entries {
		if existing.Name == originalName {
			idx = i
			continue
		}
		if existing.Name == e.Name {
			return fmt.Errorf("a connection named %q already exists", e.Name)
		}
		if e.Favorite != 0 && existing.Favorite == e.Favorite {
			return fmt.Errorf("favorite %d is already used by %q", e.Favorite, existing.Name)
		}
	}
	if idx < 0 {
		return fmt.Errorf("no connection named %q", originalName)
	}
	s.entries[idx] = e
	return nil
}

// Delete removes the named entry.
func (s *Store) Delete(name string) error {
	for i, e := range s.entries {
		if e.Name == name {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no connection named %q", name)
}

func (s *Store) SetFavorite(name string, newFav int) error {
	if newFav != 0 && (newFav < 1 || newFav > 9) {
		return fmt.Errorf("favorite must be between 1 and 9")
	}
	targetIdx := -1
	for i, e := range s.entries {
		if e.Name == name {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return fmt.Errorf("no connection named %q", name)
	}
	targetOldFav := s.entries[targetIdx].Favorite

	if newFav != 0 {
		for i := range s.entries {
			if i != targetIdx && s.entries[i].Favorite == newFav {
				s.entries[i].Favorite = targetOldFav
			}
		}
	}
	s.entries[targetIdx].Favorite = newFav
	return nil
}

// CycleFavorite implements the connection manager's "f" key: 1→…→9→none→1.
func (s *Store) CycleFavorite(name string) error {
	e, ok := s.FindByName(name)
	if !ok {
		return fmt.Errorf("no connection named %q", name)
	}
	next := e.Favorite + 1
	if next > 9 {
		next = 0
	}
	return s.SetFavorite(name, next)
}

// Sorted orders favorites ascending first, then remaining entries
// alphabetically.
func (s *Store) Sorted() []Entry {
	out := append([]Entry(nil), s.entries...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Favorite != 0 && b.Favorite != 0 {
			return a.Favorite < b.Favorite
		}
		if a.Favorite != 0 {
			return true
		}
		if b.Favorite != 0 {
			return false
		}
		return a.Name < b.Name
	})
	return out
}
