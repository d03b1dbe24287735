// Package duel synchronizes two players sharing a grid through a store.
package duel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/jacobpatterson1549/swipe-words/game/grid"
	"github.com/jacobpatterson1549/swipe-words/game/score"
	"github.com/jacobpatterson1549/swipe-words/game/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type (
	// Status is the stage of a duel.
	Status string

	// Duel is the shared record of a two player game.
	// Each player only writes its own fields.  Status is written when the duel is created, and Load derives Finished from the finished flags of both players.
	Duel struct {
		ID              string       `json:"-"`
		Player1ID       string       `json:"player1_id"`
		Player2ID       string       `json:"player2_id"`
		Grid            grid.Grid    `json:"shared_grid"`
		Player1Score    int          `json:"player1_score"`
		Player1Words    []string     `json:"player1_words"`
		Player1Finished bool         `json:"player1_finished"`
		Player2Score    int          `json:"player2_score"`
		Player2Words    []string     `json:"player2_words"`
		Player2Finished bool         `json:"player2_finished"`
		Status          Status       `json:"status"`
		Mode            session.Mode `json:"game_mode"`
		// StartTime is when both players start, in unix milliseconds.
		StartTime int64 `json:"start_time"`
	}

	// Progress is what one player of a duel has done.
	Progress struct {
		Score    int      `json:"score"`
		Words    []string `json:"words"`
		Finished bool     `json:"finished"`
	}

	// Player is someone looking for a duel.
	Player struct {
		ID          string
		Nickname    string
		GamesPlayed int
	}

	// GridGenerator creates the shared grid for two players.
	GridGenerator interface {
		ForDuel(gamesPlayed1, gamesPlayed2 int) grid.Grid
	}

	// PlayerResult is the reconciled score of one player.
	PlayerResult struct {
		Words       []string `json:"words"`
		Base        int      `json:"base"`
		UniqueBonus int      `json:"uniqueBonus"`
		Total       int      `json:"total"`
	}

	// Result is the reconciled outcome of a duel.
	Result struct {
		Player1 PlayerResult `json:"player1"`
		Player2 PlayerResult `json:"player2"`
		// Winner is the seat of the player with the higher total, or 0 for a tie.
		Winner int `json:"winner"`
	}
)

const (
	// Active duels are being played.
	Active Status = "active"
	// Finished duels have had both players finish.
	Finished Status = "finished"
)

var (
	// ErrStaleMatch is returned when a match or opponent could not be found in time.
	ErrStaleMatch = errors.New("match expired or opponent left")
	// ErrNotInDuel is returned for users that are not one of the duel's players.
	ErrNotInDuel = errors.New("user is not a player of the duel")
)

var duelEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "swipe_words",
	Name:      "duel_events_total",
	Help:      "Matchmaking and duel events, by kind.",
}, []string{"event"})

// Seat is the player number of the user: 1 or 2.
func (d Duel) Seat(userID string) (int, error) {
	switch userID {
	case d.Player1ID:
		return 1, nil
	case d.Player2ID:
		return 2, nil
	}
	return 0, fmt.Errorf("%v in duel %v: %w", userID, d.ID, ErrNotInDuel)
}

// Progress is what the player in the seat has done.
func (d Duel) Progress(seat int) Progress {
	if seat == 1 {
		return Progress{Score: d.Player1Score, Words: d.Player1Words, Finished: d.Player1Finished}
	}
	return Progress{Score: d.Player2Score, Words: d.Player2Words, Finished: d.Player2Finished}
}

// Load reads the duel from the store.
func Load(ctx context.Context, s db.Store, id string) (*Duel, error) {
	r, err := s.Get(ctx, db.Duels, id)
	if err != nil {
		return nil, fmt.Errorf("reading duel %v: %w", id, err)
	}
	var d Duel
	if err := r.Fields.Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding duel %v: %w", id, err)
	}
	d.ID = r.ID
	if d.Player1Finished && d.Player2Finished {
		d.Status = Finished
	}
	return &d, nil
}

// Reconcile scores the words of both players.
// Each word is worth its base score, plus the unique bonus if the other player did not find it.
// The result only depends on the words, so both players compute the same result.
func Reconcile(player1Words, player2Words []string) Result {
	w1, w2 := lowerSet(player1Words), lowerSet(player2Words)
	r := Result{
		Player1: reconcilePlayer(w1, w2),
		Player2: reconcilePlayer(w2, w1),
	}
	switch {
	case r.Player1.Total > r.Player2.Total:
		r.Winner = 1
	case r.Player2.Total > r.Player1.Total:
		r.Winner = 2
	}
	return r
}

func reconcilePlayer(words []string, opponentWords []string) PlayerResult {
	opponent := make(map[string]struct{}, len(opponentWords))
	for _, w := range opponentWords {
		opponent[w] = struct{}{}
	}
	pr := PlayerResult{
		Words: words,
	}
	for _, w := range words {
		pr.Base += score.Base(w)
		if _, ok := opponent[w]; !ok {
			pr.UniqueBonus += score.UniqueBonus
		}
	}
	pr.Total = pr.Base + pr.UniqueBonus
	return pr
}

// lowerSet lower cases the words, dropping duplicates but keeping their order.
func lowerSet(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	set := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		set = append(set, w)
	}
	return set
}

// Seat is the result of the player in the seat.
func (r Result) Seat(seat int) PlayerResult {
	if seat == 1 {
		return r.Player1
	}
	return r.Player2
}
