// internal/host/session.go
//
// A host session is one running copy of the Wordle web game, as seen by
// the server. The browser adapter pushes the game's board state after each
// evaluated row; the session keeps the latest copy and notifies subscribers
// when the row index moves on.
//
// Notes:
//   - Subscribers run after the new state is stored, on the caller's goroutine.
//     They must not block (dispatch is fire-and-forget).
//   - An inert session (game component or hook missing on the page) ignores
//     all updates for its lifetime.

package host

import (
	"sync"

	"github.com/robalobadob/wordleboard/internal/board"
	"github.com/robalobadob/wordleboard/internal/daily"
	"github.com/robalobadob/wordleboard/internal/signals"
)

// State is the game state as reported by the host page.
type State struct {
	RowIndex    int               `json:"rowIndex"`
	BoardState  []string          `json:"boardState"`
	Evaluations [][]board.Outcome `json:"evaluations"`
	// DayOffset is the game's puzzle number; nil means "use the session clock".
	DayOffset *int `json:"dayOffset"`
}

// Session holds per-session settings resolved once at start, plus the latest state.
type Session struct {
	ID      string
	Signals signals.Signals
	Target  signals.Target
	Options board.Options
	Clock   daily.Clock

	mu       sync.Mutex
	inert    bool
	state    State
	rowIndex int
	subs     []func()
}

// NewSession returns a live session that has seen rowIndex rows (resumed games
// start past row 0).
func NewSession(id string, sig signals.Signals, target signals.Target, opts board.Options, clock daily.Clock, rowIndex int) *Session {
	return &Session{
		ID:       id,
		Signals:  sig,
		Target:   target,
		Options:  opts,
		Clock:    clock,
		rowIndex: rowIndex,
		state:    State{RowIndex: rowIndex},
	}
}

// Subscribe registers fn to run on every completed row.
func (s *Session) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inert {
		return
	}
	s.subs = append(s.subs, fn)
}

// MarkInert stops the session from reacting to anything further.
func (s *Session) MarkInert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inert = true
	s.subs = nil
}

// Inert reports whether the session has been disabled.
func (s *Session) Inert() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inert
}

// RowIndex is the last row index seen.
func (s *Session) RowIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowIndex
}

// Update stores st and, if the row index changed, fires subscribers.
// It reports whether a row completion was observed.
func (s *Session) Update(st State) bool {
	s.mu.Lock()
	if s.inert {
		s.mu.Unlock()
		return false
	}
	s.state = st
	if st.RowIndex == s.rowIndex {
		s.mu.Unlock()
		return false
	}
	s.rowIndex = st.RowIndex
	subs := append([]func(){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	return true
}

// Reset drops the stored board state (nocache / timetravel).
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	s.rowIndex = 0
}

// Snapshot returns the latest board state in encoder form.
func (s *Session) Snapshot() board.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.Clock.DayIndex()
	if s.state.DayOffset != nil {
		day = *s.state.DayOffset
	}
	return board.Snapshot{
		Attempts:    append([]string(nil), s.state.BoardState...),
		Evaluations: append([][]board.Outcome(nil), s.state.Evaluations...),
		DayIndex:    day,
	}
}
