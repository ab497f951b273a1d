package textedit

// SpecialKey enumerates the non-rune keys the modal engine reacts to.
// Kept separate from tcell.Key so this package has no terminal
// dependency and its tests can drive it with plain values; the
// root-level input router is responsible for translating real
// *tcell.EventKey values into a KeyEvent.
type SpecialKey int

const (
	KeyNone SpecialKey = iota
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyTab
	KeyCtrlD
	KeyCtrlU
)

// KeyEvent is the input unit the modal engine consumes: either a
// printable rune or one of the SpecialKey values, never both.
type KeyEvent struct {
	Rune    rune
	Special SpecialKey
	Ctrl    bool

	// HalfPage is the line count Ctrl-D/Ctrl-U should scroll by. The
	// buffer has no notion of viewport height, so the input router
	// (which does) supplies it on the KeyCtrlD/KeyCtrlU event.
	HalfPage int
}

// Event describes what a key dispatch produced, for callers (the
// status line, the app's dirty-tracking) that need to react without
// re-deriving it from the buffer.
type Event struct {
	ModeChanged bool
	Yanked      bool
	Quit        bool // never set by Handle; :q and friends report through JSONEditor.RunEx
}
