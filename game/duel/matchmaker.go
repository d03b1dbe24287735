package duel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/jacobpatterson1549/swipe-words/game/grid"
	"github.com/jacobpatterson1549/swipe-words/game/session"
	"github.com/jacobpatterson1549/swipe-words/server/log"
)

type (
	// Matchmaker pairs waiting players and announces the start of their duels.
	Matchmaker struct {
		MatchmakerConfig
	}

	// MatchmakerConfig contains the properties to create a Matchmaker.
	MatchmakerConfig struct {
		// Log is used to log errors and other information.
		Log log.Logger
		// Store holds the waiting pool, start events, and duels.
		Store db.Store
		// Grids creates the shared grids.
		Grids GridGenerator
		// TimeFunc is the current time.
		TimeFunc func() time.Time
		// StartDelay is how long after a match the duel starts, so both players start together.
		StartDelay time.Duration
		// Freshness is how old a start event can be and still be joined.
		Freshness time.Duration
		// PollPeriod is the time between checks for start events.
		PollPeriod time.Duration
		// WaitTimeout is how long to wait for a start event.
		WaitTimeout time.Duration
	}

	// WaitingEntry is a player in the matchmaking pool.
	WaitingEntry struct {
		ID          string `json:"-"`
		UserID      string `json:"user_id"`
		Nickname    string `json:"nickname"`
		GamesPlayed int    `json:"games_played"`
		CreatedAt   int64  `json:"created_at"`
	}

	// StartEvent tells both players of a duel when to start.
	StartEvent struct {
		GameID    string       `json:"game_id"`
		Player1ID string       `json:"player1_id"`
		Player2ID string       `json:"player2_id"`
		Grid      grid.Grid    `json:"shared_grid"`
		Mode      session.Mode `json:"game_mode"`
		// StartTimestamp is when the duel starts, in unix milliseconds.
		StartTimestamp int64 `json:"start_timestamp"`
		// Duel is the announced duel.  It is read separately from the event.
		Duel *Duel `json:"-"`
	}
)

// NewMatchmaker creates a Matchmaker.
func (cfg MatchmakerConfig) NewMatchmaker() (*Matchmaker, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating matchmaker: validation: %w", err)
	}
	m := Matchmaker{
		MatchmakerConfig: cfg,
	}
	return &m, nil
}

// validate ensures the configuration has no errors.
func (cfg MatchmakerConfig) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.Store == nil:
		return fmt.Errorf("store required")
	case cfg.Grids == nil:
		return fmt.Errorf("grid generator required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.StartDelay < 0:
		return fmt.Errorf("non-negative start delay required")
	case cfg.Freshness <= 0:
		return fmt.Errorf("positive freshness required")
	case cfg.PollPeriod <= 0:
		return fmt.Errorf("positive poll period required")
	case cfg.WaitTimeout <= 0:
		return fmt.Errorf("positive wait timeout required")
	}
	return nil
}

// FindMatch pairs the player with the longest waiting other player and creates their duel.
// If nobody else is waiting, the player is added to the pool and the duel is nil.
// The waiting entry is claimed by deleting it, so two players cannot both match it.
func (m *Matchmaker) FindMatch(ctx context.Context, p Player) (*Duel, error) {
	records, err := m.Store.List(ctx, db.WaitingPlayers, db.ListOptions{Sort: "created_at"})
	if err != nil {
		return nil, fmt.Errorf("listing waiting players: %w", err)
	}
	alreadyWaiting := false
	for _, r := range records {
		var e WaitingEntry
		if err := r.Fields.Decode(&e); err != nil {
			m.Log.Printf("skipping waiting player %v: %v", r.ID, err)
			continue
		}
		if e.UserID == p.ID {
			alreadyWaiting = true
			continue
		}
		err := m.Store.Delete(ctx, db.WaitingPlayers, r.ID)
		switch {
		case errors.Is(err, db.ErrNotFound):
			continue // matched by someone else
		case err != nil:
			return nil, fmt.Errorf("claiming waiting player: %w", err)
		}
		opponent := Player{
			ID:          e.UserID,
			Nickname:    e.Nickname,
			GamesPlayed: e.GamesPlayed,
		}
		d, err := m.start(ctx, opponent, p, session.Duel)
		if err != nil {
			return nil, err
		}
		if alreadyWaiting {
			if err := m.CancelWaiting(ctx, p.ID); err != nil {
				m.Log.Printf("removing matched player %v from waiting players: %v", p.ID, err)
			}
		}
		duelEvents.WithLabelValues("matched").Inc()
		return d, nil
	}
	if alreadyWaiting {
		return nil, nil
	}
	e := WaitingEntry{
		UserID:      p.ID,
		Nickname:    p.Nickname,
		GamesPlayed: p.GamesPlayed,
		CreatedAt:   m.TimeFunc().UnixMilli(),
	}
	f, err := db.Encode(e)
	if err != nil {
		return nil, err
	}
	if _, err := m.Store.Create(ctx, db.WaitingPlayers, db.Record{Fields: f}); err != nil {
		return nil, fmt.Errorf("adding %v to waiting players: %w", p.ID, err)
	}
	duelEvents.WithLabelValues("waiting").Inc()
	return nil, nil
}

// Challenge creates a duel between a player and a friend without the waiting pool.
func (m *Matchmaker) Challenge(ctx context.Context, from, to Player) (*Duel, error) {
	if from.ID == to.ID {
		return nil, fmt.Errorf("players cannot challenge themselves")
	}
	d, err := m.start(ctx, from, to, session.FriendDuel)
	if err != nil {
		return nil, err
	}
	duelEvents.WithLabelValues("challenged").Inc()
	return d, nil
}

// start creates a duel and the event announcing it.
func (m *Matchmaker) start(ctx context.Context, p1, p2 Player, mode session.Mode) (*Duel, error) {
	d := Duel{
		Player1ID: p1.ID,
		Player2ID: p2.ID,
		Grid:      m.Grids.ForDuel(p1.GamesPlayed, p2.GamesPlayed),
		Status:    Active,
		Mode:      mode,
		StartTime: m.TimeFunc().Add(m.StartDelay).UnixMilli(),
	}
	f, err := db.Encode(d)
	if err != nil {
		return nil, err
	}
	r, err := m.Store.Create(ctx, db.Duels, db.Record{Fields: f})
	if err != nil {
		return nil, fmt.Errorf("creating duel: %w", err)
	}
	d.ID = r.ID
	e := StartEvent{
		GameID:         d.ID,
		Player1ID:      d.Player1ID,
		Player2ID:      d.Player2ID,
		Grid:           d.Grid,
		Mode:           mode,
		StartTimestamp: d.StartTime,
	}
	if f, err = db.Encode(e); err != nil {
		return nil, err
	}
	if _, err := m.Store.Create(ctx, db.GameStartEvents, db.Record{Fields: f}); err != nil {
		return nil, fmt.Errorf("creating start event for duel %v: %w", d.ID, err)
	}
	return &d, nil
}

// CancelWaiting removes the user from the waiting pool.
func (m *Matchmaker) CancelWaiting(ctx context.Context, userID string) error {
	records, err := m.Store.Filter(ctx, db.WaitingPlayers, db.Fields{"user_id": userID})
	if err != nil {
		return fmt.Errorf("finding waiting entries of %v: %w", userID, err)
	}
	for _, r := range records {
		if err := m.Store.Delete(ctx, db.WaitingPlayers, r.ID); err != nil && !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("removing waiting entry of %v: %w", userID, err)
		}
	}
	return nil
}

// WaitForStart polls for a fresh start event of a duel the user is in, as either player.
// It gives up with ErrStaleMatch after the wait timeout.
func (m *Matchmaker) WaitForStart(ctx context.Context, userID string, mode session.Mode) (*StartEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, m.WaitTimeout)
	defer cancel()
	ticker := time.NewTicker(m.PollPeriod)
	defer ticker.Stop()
	for { // BLOCKING
		e, err := m.findStart(ctx, userID, mode)
		switch {
		case err != nil:
			m.Log.Printf("polling start events for %v: %v", userID, err)
		case e != nil:
			return e, nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				duelEvents.WithLabelValues("stale").Inc()
				return nil, fmt.Errorf("waiting for duel to start: %w", ErrStaleMatch)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// findStart checks the start events of the user, first as player 1, then as player 2.
func (m *Matchmaker) findStart(ctx context.Context, userID string, mode session.Mode) (*StartEvent, error) {
	now := m.TimeFunc().UnixMilli()
	for _, seat := range []string{"player1_id", "player2_id"} {
		records, err := m.Store.Filter(ctx, db.GameStartEvents, db.Fields{seat: userID, "game_mode": string(mode)})
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			var e StartEvent
			if err := r.Fields.Decode(&e); err != nil {
				return nil, fmt.Errorf("decoding start event %v: %w", r.ID, err)
			}
			if now-e.StartTimestamp >= m.Freshness.Milliseconds() {
				continue
			}
			d, err := Load(ctx, m.Store, e.GameID)
			if err != nil {
				return nil, err
			}
			e.Duel = d
			return &e, nil
		}
	}
	return nil, nil
}
