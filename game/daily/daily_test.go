package daily

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/jacobpatterson1549/swipe-words/db/bcrypt"
	"github.com/jacobpatterson1549/swipe-words/db/memory"
	"github.com/jacobpatterson1549/swipe-words/db/user"
	"github.com/jacobpatterson1549/swipe-words/server/log/logtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockValidator func(ctx context.Context, word string) (bool, error)

func (m mockValidator) IsValid(ctx context.Context, word string) (bool, error) {
	return m(ctx, word)
}

var testWords = map[string]bool{
	"cat":       true,
	"dog":       true,
	"run":       true,
	"sun":       true,
	"brilliant": true,
}

type testService struct {
	*Service
	store *memory.Store
	users *user.Dao
	now   time.Time
}

func newTestService(t *testing.T, words ...string) *testService {
	t.Helper()
	ts := testService{
		store: memory.NewStore(),
		now:   time.Date(2026, 10, 15, 23, 0, 0, 0, time.UTC),
	}
	daoCfg := user.DaoConfig{
		Store:           ts.store,
		PasswordHandler: bcrypt.NewPasswordHandler(4),
		TimeFunc:        func() time.Time { return ts.now },
	}
	users, err := daoCfg.NewDao()
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), "selene", "password"))
	ts.users = users
	cfg := ServiceConfig{
		Log:   logtest.DiscardLogger,
		Store: ts.store,
		Users: users,
		Validator: mockValidator(func(ctx context.Context, word string) (bool, error) {
			return testWords[word], nil
		}),
		Words:    words,
		Salt:     "pepper",
		TimeFunc: func() time.Time { return ts.now },
	}
	s, err := cfg.NewService()
	require.NoError(t, err)
	ts.Service = s
	return &ts
}

func TestNewService(t *testing.T) {
	validator := mockValidator(func(ctx context.Context, word string) (bool, error) { return true, nil })
	newServiceTests := []struct {
		ServiceConfig
		wantOk bool
	}{
		{},
		{
			ServiceConfig: ServiceConfig{
				Log:       logtest.DiscardLogger,
				Store:     memory.NewStore(),
				Users:     &user.Dao{},
				Validator: validator,
				Words:     []string{"a", "an"},
				Salt:      "pepper",
				TimeFunc:  time.Now,
			},
		},
		{
			ServiceConfig: ServiceConfig{
				Log:       logtest.DiscardLogger,
				Store:     memory.NewStore(),
				Users:     &user.Dao{},
				Validator: validator,
				Words:     []string{"cat"},
				TimeFunc:  time.Now,
			},
		},
		{
			ServiceConfig: ServiceConfig{
				Log:       logtest.DiscardLogger,
				Store:     memory.NewStore(),
				Users:     &user.Dao{},
				Validator: validator,
				Words:     []string{"a", "CAT"},
				Salt:      "pepper",
				TimeFunc:  time.Now,
			},
			wantOk: true,
		},
	}
	for i, test := range newServiceTests {
		s, err := test.ServiceConfig.NewService()
		switch {
		case !test.wantOk:
			assert.Error(t, err, "Test %v", i)
		default:
			require.NoError(t, err, "Test %v", i)
			assert.Equal(t, []string{"cat"}, s.words, "Test %v", i)
		}
	}
}

func TestWord(t *testing.T) {
	words := []string{"elephant", "mystery", "brilliant", "adventure", "fantastic"}
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	w := Word(day, "pepper", words)
	assert.Contains(t, words, w)
	assert.Equal(t, w, Word(day.Add(23*time.Hour), "pepper", words), "same day")
	seen := make(map[string]struct{})
	for i := 0; i < 60; i++ {
		seen[Word(day.AddDate(0, 0, i), "pepper", words)] = struct{}{}
	}
	assert.Greater(t, len(seen), 1, "words should change between days")
	assert.Empty(t, Word(day, "pepper", nil))
}

func TestToday(t *testing.T) {
	ctx := context.Background()
	ts := newTestService(t, "brilliant")
	c, err := ts.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, Challenge{Date: "2026-10-15", Word: "brilliant"}, *c)
	_, err = ts.store.Get(ctx, db.DailyChallenges, "2026-10-15")
	assert.NoError(t, err)

	f, err := db.Encode(Challenge{Date: "2026-10-16", Word: "custom"})
	require.NoError(t, err)
	_, err = ts.store.Create(ctx, db.DailyChallenges, db.Record{ID: "2026-10-16", Fields: f})
	require.NoError(t, err)
	ts.now = ts.now.Add(2 * time.Hour)
	c, err = ts.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "custom", c.Word, "stored challenge should be used")
}

func TestGuessCorrect(t *testing.T) {
	ctx := context.Background()
	ts := newTestService(t, "brilliant")
	r, err := ts.Guess(ctx, "selene", "cat")
	require.NoError(t, err)
	assert.Equal(t, Result{Crystals: 1, AttemptsLeft: 2}, *r)
	r, err = ts.Guess(ctx, "selene", " BRILLIANT ")
	require.NoError(t, err)
	assert.Equal(t, Result{Correct: true, Crystals: 30, AttemptsLeft: 1, Word: "brilliant"}, *r)
	_, err = ts.Guess(ctx, "selene", "dog")
	assert.True(t, errors.Is(err, ErrCompleted), "wanted completed, got %v", err)

	u, err := ts.users.Read(ctx, "selene")
	require.NoError(t, err)
	assert.Equal(t, 31, u.Crystals)
	assert.Equal(t, user.DailyXP, u.XP)
	assert.Equal(t, user.Daily{Date: "2026-10-15", Attempts: 2, Completed: true}, u.Daily)
	gifts, err := ts.users.Gifts(ctx, "selene")
	require.NoError(t, err)
	require.Len(t, gifts, 1)
	assert.Equal(t, user.DailyChallengeGift, gifts[0].Type)
	assert.Equal(t, GiftCrystals, gifts[0].Crystals)
}

func TestGuessRejected(t *testing.T) {
	guessTests := []struct {
		guess        string
		validatorErr error
		wantErr      error
	}{
		{guess: "ab", wantErr: ErrTooShort},
		{guess: "  ab  ", wantErr: ErrTooShort},
		{guess: "qwrt", wantErr: ErrInvalidWord},
		{guess: "zyzzyva", validatorErr: fmt.Errorf("oracle down")},
	}
	for i, test := range guessTests {
		ctx := context.Background()
		ts := newTestService(t, "brilliant")
		if test.validatorErr != nil {
			ts.Validator = mockValidator(func(ctx context.Context, word string) (bool, error) {
				return false, test.validatorErr
			})
		}
		_, err := ts.Guess(ctx, "selene", test.guess)
		switch {
		case test.wantErr != nil:
			assert.True(t, errors.Is(err, test.wantErr), "Test %v: wanted %v, got %v", i, test.wantErr, err)
		default:
			assert.Error(t, err, "Test %v", i)
		}
		u, err := ts.users.Read(ctx, "selene")
		require.NoError(t, err, "Test %v", i)
		assert.Equal(t, 0, u.Daily.Attempts, "Test %v: no attempt should be used", i)
		assert.Equal(t, 0, u.Crystals, "Test %v", i)
	}
}

func TestGuessNoAttempts(t *testing.T) {
	ctx := context.Background()
	ts := newTestService(t, "brilliant")
	for i, g := range []string{"cat", "dog"} {
		r, err := ts.Guess(ctx, "selene", g)
		require.NoError(t, err, "Test %v", i)
		assert.Empty(t, r.Word, "Test %v: word should be hidden", i)
	}
	r, err := ts.Guess(ctx, "selene", "run")
	require.NoError(t, err)
	assert.Equal(t, Result{Crystals: 1, AttemptsLeft: 0, Word: "brilliant"}, *r)
	_, err = ts.Guess(ctx, "selene", "brilliant")
	assert.True(t, errors.Is(err, ErrNoAttempts), "wanted no attempts, got %v", err)

	ts.now = ts.now.Add(time.Hour)
	r, err = ts.Guess(ctx, "selene", "sun")
	require.NoError(t, err, "attempts should reset on a new day")
	assert.Equal(t, MaxAttempts-1, r.AttemptsLeft)
	u, err := ts.users.Read(ctx, "selene")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", u.Daily.Date)
	assert.Equal(t, 4, u.Crystals)
}

func TestGuessUnknownUser(t *testing.T) {
	ts := newTestService(t, "brilliant")
	_, err := ts.Guess(context.Background(), "nobody", "cat")
	assert.True(t, errors.Is(err, db.ErrNotFound))
}
