// Package vimseq implements the app-global vim key-sequence engine: a
// two-key resolver with a timeout-driven hint and an optional typed
// context payload, kept deliberately separate from the editor's own
// operator-pending mechanics so overlays can start sequences carrying
// state (a schema-tree table, say) without touching the text buffer.
package vimseq

import "time"

// State is the engine's lifecycle state.
type State int

const (
	Idle State = iota
	Waiting
)

// Result is returned by ProcessSecondKey.
type Result int

const (
	Cancelled Result = iota
	Completed
)

// Engine resolves two-key sequences with a timeout-driven hint and an
// optional context payload captured at sequence start.
type Engine struct {
	state     State
	firstKey  rune
	startedAt time.Time
	context   any
	hintShown bool

	hintDelay time.Duration
	// table maps (first, second) -> action name. Unknown seconds cancel.
	table map[[2]rune]string
	// prefixes is the set of valid first keys.
	prefixes map[rune]struct{}

	now func() time.Time
}

// New builds an Engine with the given two-key action table and hint
// delay.
func New(table map[[2]rune]string, hintDelay time.Duration) *Engine {
	e := &Engine{
		table:     table,
		hintDelay: hintDelay,
		prefixes:  make(map[rune]struct{}),
		now:       time.Now,
	}
	for k := range table {
		e.prefixes[k[0]] = struct{}{}
	}
	return e
}

// ProcessFirstKey starts a sequence if c is a recognized prefix;
// otherwise it is a no-op and the engine stays Idle.
func (e *Engine) ProcessFirstKey(c rune) bool {
	if _, ok := e.prefixes[c]; !ok {
		return false
	}
	e.state = Waiting
	e.firstKey = c
	e.startedAt = e.now()
	e.context = nil
	e.hintShown = false
	return true
}

// StartWithContext starts a sequence carrying a typed payload, e.g. a
// {schema, table} pair captured from the schema-tree item under the
// cursor.
func (e *Engine) StartWithContext(firstKey rune, ctx any) {
	e.state = Waiting
	e.firstKey = firstKey
	e.startedAt = e.now()
	e.context = ctx
	e.hintShown = false
}

// ProcessSecondKey resolves (firstKey, c) against the action table. An
// unrecognized second key cancels the sequence.
func (e *Engine) ProcessSecondKey(c rune) (Result, string, any) {
	if e.state != Waiting {
		return Cancelled, "", nil
	}
	ctx := e.context
	action, ok := e.table[[2]rune{e.firstKey, c}]
	e.reset()
	if !ok {
		return Cancelled, "", nil
	}
	return Completed, action, ctx
}

// Cancel forces the engine back to Idle (Esc, modifier key, or any
// other disqualifying input).
func (e *Engine) Cancel() {
	e.reset()
}

func (e *Engine) reset() {
	e.state = Idle
	e.firstKey = 0
	e.context = nil
	e.hintShown = false
}

// HintDelay returns the configured delay before the hint popup.
func (e *Engine) HintDelay() time.Duration { return e.hintDelay }

// IsWaiting reports whether a first key is pending a completion.
func (e *Engine) IsWaiting() bool {
	return e.state == Waiting
}

// FirstKey returns the pending first key, valid only while IsWaiting.
func (e *Engine) FirstKey() rune {
	return e.firstKey
}

// ShouldShowHint reports whether the hint delay has elapsed since the
// sequence started and the hint has not yet been shown.
func (e *Engine) ShouldShowHint() bool {
	if e.state != Waiting || e.hintShown {
		return false
	}
	return e.now().Sub(e.startedAt) >= e.hintDelay
}

// MarkHintShown records that the hint popup has been displayed, so
// ShouldShowHint doesn't keep firing every tick.
func (e *Engine) MarkHintShown() {
	e.hintShown = true
}
