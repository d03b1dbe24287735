// Package score calculates the points of found words.
package score

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacobpatterson1549/swipe-words/game/word"
)

type (
	// Modifiers change the points of a word.
	Modifiers struct {
		// DoubleScore is true while the double score power-up is active.
		DoubleScore bool
		// NewWord is true if the player has never been awarded the word before.
		NewWord bool
	}

	// Result is the breakdown of the points of a word.
	Result struct {
		Base         int `json:"base"`
		NewWordBonus int `json:"newWordBonus"`
		Multiplier   int `json:"multiplier"`
		Points       int `json:"points"`
	}

	// Scorer scores words, granting the new word bonus once per player.
	Scorer struct {
		cache word.Cache
	}
)

const (
	// MinLength is the length of the shortest word that can be scored.
	MinLength = 2
	// UniqueBonus is added in duels for each word only one player found.
	UniqueBonus = 5
	// NewWordBonus is added the first time a player is awarded a word.
	NewWordBonus = 20
)

// Base is the points of a word by its length, before bonuses.
func Base(w string) int {
	switch n := len(w); {
	case n < MinLength:
		return 0
	case n <= 4:
		return 30
	case n <= 7:
		return 60
	default:
		return 90
	}
}

// Word scores the word with the modifiers.
func Word(w string, m Modifiers) Result {
	r := Result{
		Base:       Base(w),
		Multiplier: 1,
	}
	if r.Base == 0 {
		return r
	}
	if m.NewWord {
		r.NewWordBonus = NewWordBonus
	}
	if m.DoubleScore {
		r.Multiplier = 2
	}
	r.Points = (r.Base + r.NewWordBonus) * r.Multiplier
	return r
}

// NewScorer creates a Scorer that remembers words in the cache.
func NewScorer(cache word.Cache) (*Scorer, error) {
	if cache == nil {
		return nil, fmt.Errorf("creating scorer: validation: cache required")
	}
	s := Scorer{
		cache: cache,
	}
	return &s, nil
}

// Score scores a valid word for the player, adding it to the player's cache.
// If the cache fails, the word is scored without the new word bonus and the error is returned with the result.
func (s *Scorer) Score(ctx context.Context, player, w string, doubleScore bool) (Result, error) {
	w = strings.ToLower(w)
	isNew, err := s.cache.Add(ctx, player, w)
	m := Modifiers{
		DoubleScore: doubleScore,
		NewWord:     isNew && err == nil,
	}
	r := Word(w, m)
	if err != nil {
		return r, fmt.Errorf("checking if %q is new: %w", w, err)
	}
	return r, nil
}
