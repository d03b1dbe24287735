package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jacobpatterson1549/swipe-words/game/grid"
	"github.com/jacobpatterson1549/swipe-words/game/powerup"
	"github.com/jacobpatterson1549/swipe-words/game/score"
	"github.com/jacobpatterson1549/swipe-words/game/word"
	"github.com/jacobpatterson1549/swipe-words/server/log"
	"github.com/jacobpatterson1549/swipe-words/server/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type (
	// Session runs a State on its own goroutine.
	// Every change to the state happens on that goroutine, in response to commands, ticks, and checked words.
	Session struct {
		user      string
		state     *State
		grid      grid.Grid
		inventory powerup.Inventory
		commands  chan command
		results   chan validation
		listener  Listener
		runner    runner.Runner
		Config
	}

	// Config contains the properties to create sessions.
	Config struct {
		// Log is used to log errors and other information.
		Log log.Logger
		// TickPeriod is the time between ticks, one second of game time.
		TickPeriod time.Duration
		// Validator checks submitted words.
		Validator WordValidator
		// Scorer scores valid words.
		Scorer WordScorer
		// Recorder saves used power-ups and finished games.
		Recorder Recorder
		// NewGridFunc creates grids for the swap board power-up.
		NewGridFunc func() grid.Grid
	}

	// WordValidator checks words.
	WordValidator interface {
		IsValid(ctx context.Context, word string) (bool, error)
	}

	// WordScorer scores valid words for a player.
	WordScorer interface {
		Score(ctx context.Context, player, word string, doubleScore bool) (score.Result, error)
	}

	// Recorder saves the outcomes of sessions for players.
	Recorder interface {
		// UsePowerUp removes a power-up from the player's saved inventory.
		UsePowerUp(ctx context.Context, player string, k powerup.Kind) error
		// RecordGame saves a game that ran out of time.
		RecordGame(ctx context.Context, player string, ss Snapshot) error
	}

	// Listener receives what happens in a session.  It is called on the session's goroutine, so it should not block.
	Listener interface {
		// Changed is called with the state after it changes.
		Changed(ss Snapshot)
		// Notify tells the player something.
		Notify(n Notice)
		// Ended is called once, when the session ends.
		Ended(ss Snapshot)
	}

	// Notice is a message for the player.  Warnings are for rejected actions.
	Notice struct {
		Text    string `json:"text"`
		Warning bool   `json:"warning,omitempty"`
	}

	// command changes the state.  If it returns an error, the state must not have changed.
	command struct {
		apply func(ctx context.Context) error
		reply chan error
	}

	// validation is the result of checking a submitted word.
	validation struct {
		sub   Submission
		valid bool
		err   error
	}
)

var (
	sessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swipe_words",
		Name:      "sessions_started_total",
		Help:      "Sessions started, by mode.",
	}, []string{"mode"})
	sessionsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swipe_words",
		Name:      "sessions_ended_total",
		Help:      "Sessions ended, by mode and whether the time ran out or the player exited.",
	}, []string{"mode", "reason"})
)

// NewSession creates a session for the user on the grid.
// The inventory is the user's power-ups; the session uses its own copy.
func (cfg Config) NewSession(user string, st *State, g grid.Grid, inv powerup.Inventory) (*Session, error) {
	if err := cfg.validate(user, st, g); err != nil {
		return nil, fmt.Errorf("creating session: validation: %w", err)
	}
	s := Session{
		user:      user,
		state:     st,
		grid:      g,
		inventory: inv.Clone(),
		commands:  make(chan command),
		results:   make(chan validation),
		Config:    cfg,
	}
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(user string, st *State, g grid.Grid) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.TickPeriod <= 0:
		return fmt.Errorf("positive tick period required")
	case cfg.Validator == nil:
		return fmt.Errorf("word validator required")
	case cfg.Scorer == nil:
		return fmt.Errorf("word scorer required")
	case cfg.Recorder == nil:
		return fmt.Errorf("recorder required")
	case cfg.NewGridFunc == nil:
		return fmt.Errorf("new grid func required")
	case len(user) == 0:
		return fmt.Errorf("user required")
	case st == nil:
		return fmt.Errorf("state required")
	case st.Phase() != Idle:
		return fmt.Errorf("idle state required")
	case !g.Valid():
		return fmt.Errorf("full grid required")
	}
	return nil
}

// Run starts the session and runs it until it ends or the context is done.
// Checked words that arrive after the session stops are dropped.
func (s *Session) Run(ctx context.Context, l Listener) error {
	if err := s.runner.Run(); err != nil {
		return fmt.Errorf("running session: %w", err)
	}
	defer s.runner.Finish()
	if err := s.state.Start(s.grid); err != nil {
		return err
	}
	s.listener = l
	sessionsStarted.WithLabelValues(string(s.state.mode)).Inc()
	ticker := time.NewTicker(s.TickPeriod)
	defer ticker.Stop()
	l.Changed(s.state.Snapshot())
	for { // BLOCKING
		select {
		case <-ctx.Done():
			return nil
		case c := <-s.commands:
			err := c.apply(ctx)
			c.reply <- err
			if err != nil {
				l.Notify(Notice{Text: warningText(err), Warning: true})
				break
			}
			if s.state.Phase() == Ended {
				sessionsEnded.WithLabelValues(string(s.state.mode), "exit").Inc()
				l.Ended(s.state.Snapshot())
				return nil
			}
			l.Changed(s.state.Snapshot())
		case v := <-s.results:
			s.complete(ctx, v, l)
			l.Changed(s.state.Snapshot())
		case <-ticker.C:
			if s.tick(ctx, l) {
				return nil
			}
		}
	}
}

// tick counts down the state, returning true if the session ended.
func (s *Session) tick(ctx context.Context, l Listener) bool {
	doubleScore := s.state.DoubleScore()
	ev := s.state.Tick()
	if doubleScore && !s.state.DoubleScore() && ev == Tick {
		l.Notify(Notice{Text: "Double score ended!"})
	}
	switch ev {
	case TurnEnded:
		l.Notify(Notice{Text: fmt.Sprintf("Time's up! Pass to %v.", s.state.Player())})
	case SessionEnded:
		ss := s.state.Snapshot()
		sessionsEnded.WithLabelValues(string(s.state.mode), "time").Inc()
		if err := s.Recorder.RecordGame(ctx, s.user, ss); err != nil {
			s.Log.Printf("recording %v game for %v: %v", ss.Mode, s.user, err)
			l.Notify(Notice{Text: "Failed to save game.", Warning: true})
		}
		l.Ended(ss)
		return true
	}
	l.Changed(s.state.Snapshot())
	return false
}

// complete awards or rejects a checked word.
// Words submitted in a turn that has ended are dropped.
func (s *Session) complete(ctx context.Context, v validation, l Listener) {
	var r score.Result
	w := v.sub.Word
	fw, err := s.state.CompleteSubmit(v.sub, v.valid, func(doubleScore bool) score.Result {
		var err error
		r, err = s.Scorer.Score(ctx, s.user, w, doubleScore)
		if err != nil {
			s.Log.Printf("scoring %q: %v", w, err)
		}
		return r
	})
	switch {
	case errors.Is(err, ErrStaleSubmission), errors.Is(err, ErrNotActive):
		s.Log.Printf("dropping checked word %q: %v", w, err)
	case v.err != nil && !v.valid:
		s.Log.Printf("checking %q: %v", w, v.err)
		l.Notify(Notice{Text: "Could not check the word, try again later.", Warning: true})
	case err != nil:
		l.Notify(Notice{Text: warningText(err), Warning: true})
	default:
		text := fmt.Sprintf("%q - %v points", strings.ToUpper(fw.Word), fw.Points)
		if r.NewWordBonus > 0 {
			text += fmt.Sprintf(" NEW WORD! (+%v)", r.NewWordBonus)
		}
		l.Notify(Notice{Text: text})
	}
}

// send runs the change on the session's goroutine and waits for it to be applied.
func (s *Session) send(ctx context.Context, apply func(ctx context.Context) error) error {
	c := command{
		apply: apply,
		reply: make(chan error, 1),
	}
	done := s.runner.Done()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return ErrNotActive
	case s.commands <- c:
	}
	return <-c.reply
}

// Tap selects or deselects the coordinate.
func (s *Session) Tap(ctx context.Context, c grid.Coord) error {
	return s.send(ctx, func(ctx context.Context) error {
		return s.state.Tap(c)
	})
}

// ClearSelection deselects every coordinate.
func (s *Session) ClearSelection(ctx context.Context) error {
	return s.send(ctx, func(ctx context.Context) error {
		if !s.state.Phase().Active() {
			return ErrNotActive
		}
		s.state.ClearSelection()
		return nil
	})
}

// Submit checks the selected word.  The word is awarded later, after it is checked.
func (s *Session) Submit(ctx context.Context) error {
	return s.send(ctx, func(ctx context.Context) error {
		sub, err := s.state.BeginSubmit()
		if err != nil {
			return err
		}
		go s.validate(ctx, sub)
		return nil
	})
}

// validate checks the word and sends the result to the session if it is still running.
func (s *Session) validate(ctx context.Context, sub Submission) {
	valid, err := s.Validator.IsValid(ctx, sub.Word)
	v := validation{
		sub:   sub,
		valid: valid && err == nil,
		err:   err,
	}
	select {
	case <-ctx.Done():
	case <-s.runner.Done():
	case s.results <- v:
	}
}

// UsePowerUp applies one of the kind of power-up.  Removing it from the saved inventory can fail without undoing the effect.
func (s *Session) UsePowerUp(ctx context.Context, k powerup.Kind) error {
	return s.send(ctx, func(ctx context.Context) error {
		inv, err := s.state.UsePowerUp(k, s.inventory, s.NewGridFunc)
		if err != nil {
			return err
		}
		s.inventory = inv
		if err := s.Recorder.UsePowerUp(ctx, s.user, k); err != nil {
			s.Log.Printf("using %v power-up for %v: %v", k, s.user, err)
		}
		s.listener.Notify(Notice{Text: powerUpText(k)})
		return nil
	})
}

// BeginTurn starts the next pass-and-play turn.
func (s *Session) BeginTurn(ctx context.Context) error {
	return s.send(ctx, func(ctx context.Context) error {
		return s.state.BeginTurn()
	})
}

// Exit ends the session without saving it.
func (s *Session) Exit(ctx context.Context) error {
	return s.send(ctx, func(ctx context.Context) error {
		s.state.Exit()
		return nil
	})
}

// Done is closed when the session stops running.
func (s *Session) Done() <-chan struct{} {
	return s.runner.Done()
}

// Inventory is a copy of the power-ups left in the session.  It is only safe to read after the session is done.
func (s *Session) Inventory() powerup.Inventory {
	return s.inventory.Clone()
}

// warningText is the message shown to players for a rejected action.
func warningText(err error) string {
	switch {
	case errors.Is(err, ErrTooShort):
		return "Word too short!"
	case errors.Is(err, ErrDuplicate):
		return "Already found!"
	case errors.Is(err, ErrInvalidWord):
		return "Not a valid word!"
	case errors.Is(err, ErrSubmitInFlight):
		return "Still checking the last word."
	case errors.Is(err, ErrNoPowerUp):
		return "No power-ups of that kind left."
	case errors.Is(err, errFrozen):
		return "Timer is already frozen!"
	case errors.Is(err, errDoubled):
		return "Double score already active!"
	case errors.Is(err, ErrNotActive):
		return "The game is not running."
	}
	return err.Error()
}

// powerUpText is the message shown to players after they use a power-up.
func powerUpText(k powerup.Kind) string {
	switch k {
	case powerup.ExtraTime:
		return fmt.Sprintf("Timer frozen for %v seconds!", FreezeSeconds)
	case powerup.WordHint:
		return powerup.HintMessage
	case powerup.SwapBoard:
		return "Board swapped!"
	case powerup.DoubleScore:
		return fmt.Sprintf("Double score for %vs!", DoubleScoreSeconds)
	}
	return string(k)
}

var _ WordValidator = (*word.Chain)(nil)
var _ WordScorer = (*score.Scorer)(nil)
