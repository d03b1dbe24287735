// Package daily runs the daily challenge: one target word per day, guessed in a few attempts.
package daily

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/jacobpatterson1549/swipe-words/db/user"
	"github.com/jacobpatterson1549/swipe-words/server/log"
)

type (
	// Service picks the daily word and checks guesses of it.
	Service struct {
		words []string
		ServiceConfig
	}

	// ServiceConfig contains the properties to create a Service.
	ServiceConfig struct {
		// Log is used to log errors and other information.
		Log log.Logger
		// Store holds the daily challenges.
		Store db.Store
		// Users rewards the players.
		Users Users
		// Validator checks that guesses are words.
		Validator WordValidator
		// Words are the possible daily words.
		Words []string
		// Salt makes the daily words hard to predict.
		Salt string
		// TimeFunc is the current time.  The day is in UTC.
		TimeFunc func() time.Time
	}

	// Users changes and rewards players.
	Users interface {
		Modify(ctx context.Context, username string, modifyFunc func(u *user.User) error) (*user.User, error)
		AwardXP(ctx context.Context, username string, xp int) (*user.Reward, error)
		SendGift(ctx context.Context, g user.Gift) error
	}

	// WordValidator checks if words are valid.
	WordValidator interface {
		IsValid(ctx context.Context, word string) (bool, error)
	}

	// Challenge is the word of a day.
	Challenge struct {
		// Date is formatted as YYYY-MM-DD.
		Date string `json:"date"`
		Word string `json:"word"`
	}

	// Result is the outcome of a guess.
	Result struct {
		Correct      bool `json:"correct"`
		Crystals     int  `json:"crystals"`
		AttemptsLeft int  `json:"attemptsLeft"`
		// Word is the daily word.  It is only set after it is guessed or there are no attempts left.
		Word string `json:"word,omitempty"`
	}
)

const (
	// MaxAttempts is the number of valid guesses a player has each day.
	MaxAttempts = 3
	// MinLength is the shortest guess.
	MinLength = 3
	// CorrectCrystals are given for guessing the word.
	CorrectCrystals = 30
	// ValidCrystals are given for guessing a valid word that is not the daily word.
	ValidCrystals = 1
	// GiftCrystals are in the gift for guessing the word.
	GiftCrystals = 50
	// dateLayout is the format of the challenge dates.
	dateLayout = "2006-01-02"
)

var (
	// ErrTooShort is returned for guesses with fewer than MinLength letters.
	ErrTooShort = errors.New("word too short")
	// ErrInvalidWord is returned for guesses that are not words.  The attempt is not used.
	ErrInvalidWord = errors.New("not a valid word")
	// ErrNoAttempts is returned when the player has used all of the day's attempts.
	ErrNoAttempts = errors.New("no attempts left")
	// ErrCompleted is returned when the player has already guessed the day's word.
	ErrCompleted = errors.New("daily challenge already completed")
)

// NewService creates a Service.
func (cfg ServiceConfig) NewService() (*Service, error) {
	var words []string
	for _, w := range cfg.Words {
		if len(w) >= MinLength {
			words = append(words, strings.ToLower(w))
		}
	}
	if err := cfg.validate(words); err != nil {
		return nil, fmt.Errorf("creating daily challenge service: validation: %w", err)
	}
	s := Service{
		words:         words,
		ServiceConfig: cfg,
	}
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg ServiceConfig) validate(words []string) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.Store == nil:
		return fmt.Errorf("store required")
	case cfg.Users == nil:
		return fmt.Errorf("users required")
	case cfg.Validator == nil:
		return fmt.Errorf("validator required")
	case len(words) == 0:
		return fmt.Errorf("words of at least %v letters required", MinLength)
	case len(cfg.Salt) == 0:
		return fmt.Errorf("salt required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	}
	return nil
}

// Word picks the word for the date.  The same date, salt, and words always pick the same word.
func Word(date time.Time, salt string, words []string) string {
	if len(words) == 0 {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(date.UTC().Format(dateLayout)))
	sum := mac.Sum(nil)
	i := binary.BigEndian.Uint64(sum[:8]) % uint64(len(words))
	return words[i]
}

// Today reads the challenge for the current day, creating it if it does not exist.
// Once created, the challenge does not change, even if the words do.
func (s *Service) Today(ctx context.Context) (*Challenge, error) {
	now := s.TimeFunc().UTC()
	date := now.Format(dateLayout)
	c, err := s.read(ctx, date)
	switch {
	case err == nil:
		return c, nil
	case !errors.Is(err, db.ErrNotFound):
		return nil, err
	}
	c = &Challenge{
		Date: date,
		Word: Word(now, s.Salt, s.words),
	}
	f, err := db.Encode(c)
	if err != nil {
		return nil, err
	}
	_, err = s.Store.Create(ctx, db.DailyChallenges, db.Record{ID: date, Fields: f})
	switch {
	case errors.Is(err, db.ErrAlreadyExists):
		return s.read(ctx, date)
	case err != nil:
		return nil, fmt.Errorf("creating daily challenge: %w", err)
	}
	return c, nil
}

// Guess checks the player's guess of today's word.
// Guesses that are too short or not words do not use an attempt.
// A correct guess earns crystals, xp, and a gift.  Other valid guesses earn a crystal.
func (s *Service) Guess(ctx context.Context, username, guess string) (*Result, error) {
	g := strings.ToLower(strings.TrimSpace(guess))
	if len(g) < MinLength {
		return nil, fmt.Errorf("guessing %q: %w", g, ErrTooShort)
	}
	c, err := s.Today(ctx)
	if err != nil {
		return nil, err
	}
	valid, err := s.Validator.IsValid(ctx, g)
	switch {
	case err != nil:
		return nil, fmt.Errorf("checking guess: %w", err)
	case !valid:
		return nil, fmt.Errorf("guessing %q: %w", g, ErrInvalidWord)
	}
	var r Result
	if _, err := s.Users.Modify(ctx, username, func(u *user.User) error {
		if u.Daily.Date != c.Date {
			u.Daily = user.Daily{Date: c.Date}
		}
		switch {
		case u.Daily.Completed:
			return ErrCompleted
		case u.Daily.Attempts >= MaxAttempts:
			return ErrNoAttempts
		}
		u.Daily.Attempts++
		r.AttemptsLeft = MaxAttempts - u.Daily.Attempts
		r.Correct = g == c.Word
		switch {
		case r.Correct:
			u.Daily.Completed = true
			r.Crystals = CorrectCrystals
		default:
			r.Crystals = ValidCrystals
		}
		u.Crystals += r.Crystals
		return nil
	}); err != nil {
		return nil, fmt.Errorf("guessing daily word: %w", err)
	}
	if r.Correct || r.AttemptsLeft == 0 {
		r.Word = c.Word
	}
	if r.Correct {
		s.reward(ctx, username)
	}
	return &r, nil
}

// reward gives the player xp and a gift for completing the challenge.  Failures are logged.
func (s *Service) reward(ctx context.Context, username string) {
	if _, err := s.Users.AwardXP(ctx, username, user.DailyXP); err != nil {
		s.Log.Printf("awarding daily challenge xp to %v: %v", username, err)
	}
	g := user.Gift{
		RecipientID: username,
		Type:        user.DailyChallengeGift,
		Title:       "Daily Challenge Completed!",
		Crystals:    GiftCrystals,
	}
	if err := s.Users.SendGift(ctx, g); err != nil {
		s.Log.Printf("sending daily challenge gift to %v: %v", username, err)
	}
}

// read gets the challenge of the date.
func (s *Service) read(ctx context.Context, date string) (*Challenge, error) {
	r, err := s.Store.Get(ctx, db.DailyChallenges, date)
	if err != nil {
		return nil, fmt.Errorf("reading daily challenge: %w", err)
	}
	var c Challenge
	if err := r.Fields.Decode(&c); err != nil {
		return nil, fmt.Errorf("reading daily challenge %v: %w", date, err)
	}
	return &c, nil
}
