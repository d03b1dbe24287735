package duel

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/jacobpatterson1549/swipe-words/server/log"
)

type (
	// Tracker shares one player's progress in a duel and follows the opponent's.
	Tracker struct {
		duelID string
		seat   int
		TrackerConfig
	}

	// TrackerConfig contains the properties to create Trackers.
	TrackerConfig struct {
		// Log is used to log errors and other information.
		Log log.Logger
		// Store holds the duels.
		Store db.Store
		// PollPeriod is the time between reads of the duel.
		PollPeriod time.Duration
		// ResultTimeout is how long to wait for the opponent to finish.
		ResultTimeout time.Duration
	}
)

// NewTracker creates a Tracker for the user in the duel.
func (cfg TrackerConfig) NewTracker(d Duel, userID string) (*Tracker, error) {
	if err := cfg.validate(d); err != nil {
		return nil, fmt.Errorf("creating duel tracker: validation: %w", err)
	}
	seat, err := d.Seat(userID)
	if err != nil {
		return nil, fmt.Errorf("creating duel tracker: %w", err)
	}
	t := Tracker{
		duelID:        d.ID,
		seat:          seat,
		TrackerConfig: cfg,
	}
	return &t, nil
}

// validate ensures the configuration has no errors.
func (cfg TrackerConfig) validate(d Duel) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.Store == nil:
		return fmt.Errorf("store required")
	case cfg.PollPeriod <= 0:
		return fmt.Errorf("positive poll period required")
	case cfg.ResultTimeout <= 0:
		return fmt.Errorf("positive result timeout required")
	case len(d.ID) == 0:
		return fmt.Errorf("duel id required")
	}
	return nil
}

// Seat is the player number of the tracked user.
func (t *Tracker) Seat() int {
	return t.seat
}

// opponent is the seat of the other player.
func (t *Tracker) opponent() int {
	return 3 - t.seat
}

// Run reads the duel every poll period until the context is done, calling progressFunc when the opponent's progress changes.
// Read failures are logged and retried on the next poll.
func (t *Tracker) Run(ctx context.Context, progressFunc func(p Progress)) error {
	ticker := time.NewTicker(t.PollPeriod)
	defer ticker.Stop()
	var last *Progress
	for { // BLOCKING
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d, err := Load(ctx, t.Store, t.duelID)
			if err != nil {
				if ctx.Err() == nil {
					t.Log.Printf("polling duel progress: %v", err)
				}
				continue
			}
			p := d.Progress(t.opponent())
			if last != nil && reflect.DeepEqual(*last, p) {
				continue
			}
			last = &p
			progressFunc(p)
		}
	}
}

// PublishProgress writes the player's score and words.  Only the player's own fields are changed.
func (t *Tracker) PublishProgress(ctx context.Context, score int, words []string) error {
	f := t.fields(score, words)
	if err := t.Store.Update(ctx, db.Duels, t.duelID, f); err != nil {
		return fmt.Errorf("publishing duel progress: %w", err)
	}
	return nil
}

// Finish writes the player's final score and words and marks the player finished.
// The duel is finished when both players are, see Load.
func (t *Tracker) Finish(ctx context.Context, score int, words []string) error {
	f := t.fields(score, words)
	f[t.key("finished")] = true
	if err := t.Store.Update(ctx, db.Duels, t.duelID, f); err != nil {
		return fmt.Errorf("finishing duel: %w", err)
	}
	duelEvents.WithLabelValues("finished").Inc()
	return nil
}

// AwaitResult polls the duel until the opponent finishes, then reconciles both players' words.
// If the opponent does not finish before the result timeout, ErrStaleMatch is returned.
func (t *Tracker) AwaitResult(ctx context.Context) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.ResultTimeout)
	defer cancel()
	ticker := time.NewTicker(t.PollPeriod)
	defer ticker.Stop()
	for { // BLOCKING
		d, err := Load(ctx, t.Store, t.duelID)
		switch {
		case err != nil:
			if ctx.Err() == nil {
				t.Log.Printf("polling duel result: %v", err)
			}
		case d.Progress(t.opponent()).Finished:
			r := Reconcile(d.Player1Words, d.Player2Words)
			return &r, nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				duelEvents.WithLabelValues("stale").Inc()
				return nil, fmt.Errorf("waiting for opponent to finish: %w", ErrStaleMatch)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// fields are the player's own score and words.
func (t *Tracker) fields(score int, words []string) db.Fields {
	if words == nil {
		words = []string{}
	}
	return db.Fields{
		t.key("score"): score,
		t.key("words"): words,
	}
}

// key is the name of the player's field.
func (t *Tracker) key(name string) string {
	return fmt.Sprintf("player%d_%s", t.seat, name)
}
