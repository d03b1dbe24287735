// Package session runs timed rounds of play on a grid.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacobpatterson1549/swipe-words/game/grid"
	"github.com/jacobpatterson1549/swipe-words/game/powerup"
	"github.com/jacobpatterson1549/swipe-words/game/score"
)

type (
	// Phase is the stage of a session.  Running and Frozen are both active.
	Phase int

	// Mode configures how a session is timed and who plays it.
	Mode string

	// Event is what happened to a session during a tick.
	Event int

	// State is the state machine of a session.  It is not safe for concurrent use; a Session owns one.
	State struct {
		mode     Mode
		grid     grid.Grid
		path     []grid.Coord
		turns    []Turn
		turn     int
		timeLeft int
		phase    Phase
		freeze   *effect
		double   *effect
		// submissions counts the words submitted.  pending is the count of the word being checked, or zero.
		submissions int
		pending     int
	}

	// Submission is a word taken from the selection to be checked.
	// Only the latest submission of the turn it was made in can be completed.
	Submission struct {
		Word string
		seq  int
	}

	// effect is a power-up that lasts for a number of ticks.
	// A nil effect is inactive, so only one of each kind can run.
	effect struct {
		remaining int
	}

	// FoundWord is a word a player was awarded.
	FoundWord struct {
		Word   string `json:"word"`
		Points int    `json:"points"`
	}

	// Turn is the words and score of one player of the session.
	Turn struct {
		Player string      `json:"player"`
		Words  []FoundWord `json:"words"`
		Score  int         `json:"score"`
	}

	// Snapshot is a copy of the visible state of a session.
	Snapshot struct {
		Mode            Mode         `json:"mode"`
		Grid            grid.Grid    `json:"grid"`
		Path            []grid.Coord `json:"path"`
		Selection       string       `json:"selection"`
		Turns           []Turn       `json:"turns"`
		Turn            int          `json:"turn"`
		TimeLeft        int          `json:"timeLeft"`
		Phase           Phase        `json:"phase"`
		FreezeLeft      int          `json:"freezeLeft,omitempty"`
		DoubleScoreLeft int          `json:"doubleScoreLeft,omitempty"`
		Submitting      bool         `json:"submitting,omitempty"`
	}
)

const (
	// Idle sessions have not started, or are waiting for the next pass-and-play turn.
	Idle Phase = iota
	// Running sessions count down the time left.
	Running
	// Frozen sessions count down the freeze instead of the time left.
	Frozen
	// Ended sessions accept nothing.
	Ended
)

const (
	// Solo is a single player game.
	Solo Mode = "solo"
	// PassAndPlay is a game of turns on one device with the same grid.
	PassAndPlay Mode = "pass_and_play"
	// Duel is a game against a matched online opponent.
	Duel Mode = "online"
	// FriendDuel is a game against a challenged friend.
	FriendDuel Mode = "friend"
	// Challenge is a solo game on a grid made from a target word.
	Challenge Mode = "challenge"
)

const (
	// Tick is a tick that did not end anything.
	Tick Event = iota
	// TurnEnded is a pass-and-play turn running out while other players still have a turn.
	TurnEnded
	// SessionEnded is the last turn running out.
	SessionEnded
)

const (
	// FreezeSeconds is how long the extra time power-up stops the clock.
	FreezeSeconds = 10
	// DoubleScoreSeconds is how long words are worth double.
	DoubleScoreSeconds = 30
)

var (
	// ErrDuplicate is returned when submitting a word that was already found.
	ErrDuplicate = errors.New("word already found")
	// ErrTooShort is returned when submitting fewer letters than the minimum word length.
	ErrTooShort = errors.New("word too short")
	// ErrSubmitInFlight is returned when submitting while another word is being checked.
	ErrSubmitInFlight = errors.New("still checking the last word")
	// ErrEffectActive is returned when using a power-up whose effect has not worn off.
	ErrEffectActive = errors.New("power-up already active")
	// ErrNoPowerUp is returned when using a power-up the player does not have.
	ErrNoPowerUp = powerup.ErrNoPowerUp
	// ErrNotActive is returned when changing a session that is not running or frozen.
	ErrNotActive = errors.New("session is not active")
	// ErrInvalidWord is returned when completing the submission of a word that is not valid.
	ErrInvalidWord = errors.New("not a valid word")
	// ErrStaleSubmission is returned when completing a submission from a turn that has ended or one that was already completed.
	ErrStaleSubmission = errors.New("submission is no longer being checked")

	errFrozen  = fmt.Errorf("timer is already frozen: %w", ErrEffectActive)
	errDoubled = fmt.Errorf("double score already active: %w", ErrEffectActive)
)

var phaseNames = []string{"idle", "running", "frozen", "ended"}

// NewState creates an idle session for the players.
// Pass-and-play needs at least two players, other modes exactly one.
func NewState(m Mode, players ...string) (*State, error) {
	switch {
	case !m.valid():
		return nil, fmt.Errorf("creating session: unknown mode %q", m)
	case m == PassAndPlay && len(players) < 2:
		return nil, fmt.Errorf("creating session: at least two players required to pass and play")
	case m != PassAndPlay && len(players) != 1:
		return nil, fmt.Errorf("creating session: one player required, got %v", len(players))
	}
	turns := make([]Turn, len(players))
	for i, p := range players {
		if len(p) == 0 {
			return nil, fmt.Errorf("creating session: player %v has no name", i)
		}
		turns[i] = Turn{Player: p}
	}
	s := State{
		mode:  m,
		turns: turns,
	}
	return &s, nil
}

// Start gives the session its grid and starts the first turn.
func (s *State) Start(g grid.Grid) error {
	if s.phase != Idle || s.turn != 0 || !g.Valid() {
		return fmt.Errorf("cannot start session: %w", ErrNotActive)
	}
	s.grid = g
	s.begin()
	return nil
}

// BeginTurn starts the next pass-and-play turn after the previous one ended.
func (s *State) BeginTurn() error {
	if s.phase != Idle || s.turn == 0 {
		return fmt.Errorf("cannot begin turn: %w", ErrNotActive)
	}
	s.begin()
	return nil
}

func (s *State) begin() {
	s.phase = Running
	s.timeLeft = s.mode.Duration()
	s.path = nil
}

// Tap selects the coordinate, or, if it is already selected, truncates the selection before it.
func (s *State) Tap(c grid.Coord) error {
	if !s.phase.Active() {
		return ErrNotActive
	}
	if !c.Valid() {
		return fmt.Errorf("cannot tap %v: outside grid", c)
	}
	for i, c2 := range s.path {
		if c2 == c {
			s.path = s.path[:i]
			return nil
		}
	}
	s.path = append(s.path, c)
	return nil
}

// ClearSelection deselects every coordinate.
func (s *State) ClearSelection() {
	s.path = nil
}

// BeginSubmit takes the selected word to be checked, clearing the selection.
// Words that are too short or already found are rejected without being checked.
func (s *State) BeginSubmit() (Submission, error) {
	switch {
	case !s.phase.Active():
		return Submission{}, ErrNotActive
	case s.pending != 0:
		return Submission{}, ErrSubmitInFlight
	}
	w := strings.ToLower(s.grid.Word(s.path))
	s.path = nil
	switch {
	case len(w) < score.MinLength:
		return Submission{}, ErrTooShort
	case s.found(w):
		return Submission{}, ErrDuplicate
	}
	s.submissions++
	s.pending = s.submissions
	sub := Submission{
		Word: w,
		seq:  s.submissions,
	}
	return sub, nil
}

// CompleteSubmit finishes the submission after its word is checked.
// If the word is valid and the submission is still pending, the word is scored by scoreWord and awarded to the current player.
// Submissions made before the turn ended are dropped without changing the state.
func (s *State) CompleteSubmit(sub Submission, valid bool, scoreWord func(doubleScore bool) score.Result) (*FoundWord, error) {
	switch {
	case !s.phase.Active():
		return nil, ErrNotActive
	case sub.seq == 0 || sub.seq != s.pending:
		return nil, ErrStaleSubmission
	}
	s.pending = 0
	w := strings.ToLower(sub.Word)
	switch {
	case !valid:
		return nil, ErrInvalidWord
	case s.found(w):
		return nil, ErrDuplicate
	}
	r := scoreWord(s.double != nil)
	fw := FoundWord{
		Word:   w,
		Points: r.Points,
	}
	t := &s.turns[s.turn]
	t.Words = append(t.Words, fw)
	t.Score += fw.Points
	return &fw, nil
}

// found determines if the current player already has the word.
func (s *State) found(w string) bool {
	for _, fw := range s.turns[s.turn].Words {
		if strings.EqualFold(fw.Word, w) {
			return true
		}
	}
	return false
}

// Tick counts down one second.
// The time left does not change while frozen; the freeze counts down instead and the clock resumes on the next tick.
// When the time left runs out, the next pass-and-play turn waits to begin or the session ends.
func (s *State) Tick() Event {
	if !s.phase.Active() {
		return Tick
	}
	if s.double != nil {
		s.double.remaining--
		if s.double.remaining <= 0 {
			s.double = nil
		}
	}
	if s.freeze != nil {
		s.freeze.remaining--
		if s.freeze.remaining <= 0 {
			s.freeze = nil
			s.phase = Running
		}
		return Tick
	}
	s.timeLeft--
	if s.timeLeft > 0 {
		return Tick
	}
	s.timeLeft = 0
	s.path = nil
	s.pending = 0
	s.double = nil
	if s.turn+1 < len(s.turns) {
		s.turn++
		s.phase = Idle
		return TurnEnded
	}
	s.phase = Ended
	return SessionEnded
}

// UsePowerUp applies one of the kind of power-up from the inventory, returning the inventory without it.
// Timed effects that are still active are rejected without using the power-up.
// The swap board power-up takes a new grid from newGrid.
func (s *State) UsePowerUp(k powerup.Kind, inv powerup.Inventory, newGrid func() grid.Grid) (powerup.Inventory, error) {
	switch {
	case !s.phase.Active():
		return inv, ErrNotActive
	case !k.Valid():
		return inv, fmt.Errorf("%w: %q", powerup.ErrUnknownKind, k)
	case k == powerup.ExtraTime && s.freeze != nil:
		return inv, errFrozen
	case k == powerup.DoubleScore && s.double != nil:
		return inv, errDoubled
	}
	inv, err := inv.Debit(k)
	if err != nil {
		return inv, err
	}
	switch k {
	case powerup.ExtraTime:
		s.freeze = &effect{remaining: FreezeSeconds}
		s.phase = Frozen
	case powerup.SwapBoard:
		s.grid = newGrid()
	case powerup.DoubleScore:
		s.double = &effect{remaining: DoubleScoreSeconds}
	}
	s.path = nil
	return inv, nil
}

// Exit ends the session, even if other pass-and-play turns have not been played.
func (s *State) Exit() {
	s.phase = Ended
	s.freeze = nil
	s.double = nil
	s.path = nil
	s.pending = 0
}

// Phase is the stage of the session.
func (s *State) Phase() Phase {
	return s.phase
}

// Player is the name of the player whose turn it is.
func (s *State) Player() string {
	return s.turns[s.turn].Player
}

// DoubleScore determines if words are worth double.
func (s *State) DoubleScore() bool {
	return s.double != nil
}

// Snapshot copies the state.
func (s *State) Snapshot() Snapshot {
	turns := make([]Turn, len(s.turns))
	for i, t := range s.turns {
		turns[i] = t
		turns[i].Words = append([]FoundWord(nil), t.Words...)
	}
	ss := Snapshot{
		Mode:       s.mode,
		Grid:       s.grid,
		Path:       append([]grid.Coord(nil), s.path...),
		Selection:  s.grid.Word(s.path),
		Turns:      turns,
		Turn:       s.turn,
		TimeLeft:   s.timeLeft,
		Phase:      s.phase,
		Submitting: s.pending != 0,
	}
	if s.freeze != nil {
		ss.FreezeLeft = s.freeze.remaining
	}
	if s.double != nil {
		ss.DoubleScoreLeft = s.double.remaining
	}
	return ss
}

// Score is the total score of the players.
func (ss Snapshot) Score() int {
	total := 0
	for _, t := range ss.Turns {
		total += t.Score
	}
	return total
}

// Words are the words found by the players, in the order they were found.
func (ss Snapshot) Words() []string {
	var words []string
	for _, t := range ss.Turns {
		for _, fw := range t.Words {
			words = append(words, fw.Word)
		}
	}
	return words
}

// Active determines if the phase is Running or Frozen.
func (p Phase) Active() bool {
	return p == Running || p == Frozen
}

// String is the name of the phase.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText writes the name of the phase.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText reads the name of a phase.
func (p *Phase) UnmarshalText(text []byte) error {
	for i, n := range phaseNames {
		if n == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Duration is the number of seconds in each turn of the mode.
func (m Mode) Duration() int {
	if m == PassAndPlay {
		return 30
	}
	return 60
}

func (m Mode) valid() bool {
	switch m {
	case Solo, PassAndPlay, Duel, FriendDuel, Challenge:
		return true
	}
	return false
}
