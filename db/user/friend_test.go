package user

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/jacobpatterson1549/swipe-words/db/dbtest"
	"github.com/jacobpatterson1549/swipe-words/db/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFriends(t *testing.T) *Dao {
	t.Helper()
	ctx := context.Background()
	d := newTestDao(t, memory.NewStore())
	for _, username := range []string{"selene", "alice", "bob"} {
		require.NoError(t, d.Create(ctx, username, "password"))
	}
	return d
}

func TestDaoRequestFriend(t *testing.T) {
	ctx := context.Background()
	d := newTestFriends(t)
	f, err := d.RequestFriend(ctx, "selene", "alice")
	require.NoError(t, err)
	want := Friendship{
		ID:          f.ID,
		RequesterID: "selene",
		RecipientID: "alice",
		Status:      RequestPending,
		CreatedAt:   testTime.UnixMilli(),
	}
	assert.Equal(t, want, *f)
	assert.NotEmpty(t, f.ID)
	requestFriendTests := []struct {
		username string
		friend   string
		wantErr  error
	}{
		{"selene", "selene", ErrInvalid},
		{"selene", "nobody", db.ErrNotFound},
		{"selene", "alice", ErrFriendshipExists},
		{"alice", "selene", ErrFriendshipExists},
	}
	for i, test := range requestFriendTests {
		_, err := d.RequestFriend(ctx, test.username, test.friend)
		assert.True(t, errors.Is(err, test.wantErr), "Test %v: wanted %v, got %v", i, test.wantErr, err)
	}
	friendships, err := d.Friendships(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []Friendship{want}, friendships)
}

func TestDaoAnswerFriend(t *testing.T) {
	ctx := context.Background()
	d := newTestFriends(t)
	toAlice, err := d.RequestFriend(ctx, "selene", "alice")
	require.NoError(t, err)
	toBob, err := d.RequestFriend(ctx, "selene", "bob")
	require.NoError(t, err)

	_, err = d.AnswerFriend(ctx, "selene", toAlice.ID, true)
	assert.True(t, errors.Is(err, db.ErrNotFound), "only the recipient can answer")
	_, err = d.AnswerFriend(ctx, "alice", "unknown-id", true)
	assert.True(t, errors.Is(err, db.ErrNotFound))
	assert.True(t, errors.Is(d.CheckFriends(ctx, "selene", "alice"), ErrNotFriends), "pending requests are not friends")

	f, err := d.AnswerFriend(ctx, "alice", toAlice.ID, true)
	require.NoError(t, err)
	assert.Equal(t, RequestAccepted, f.Status)
	_, err = d.AnswerFriend(ctx, "alice", toAlice.ID, false)
	assert.True(t, errors.Is(err, ErrFriendshipAnswered))
	f, err = d.AnswerFriend(ctx, "bob", toBob.ID, false)
	require.NoError(t, err)
	assert.Equal(t, RequestDeclined, f.Status)

	checkFriendsTests := []struct {
		username string
		friend   string
		wantOk   bool
	}{
		{"selene", "alice", true},
		{"alice", "selene", true},
		{"selene", "bob", false},
		{"bob", "selene", false},
		{"alice", "bob", false},
	}
	for i, test := range checkFriendsTests {
		err := d.CheckFriends(ctx, test.username, test.friend)
		switch {
		case test.wantOk:
			assert.NoError(t, err, "Test %v", i)
		default:
			assert.True(t, errors.Is(err, ErrNotFriends), "Test %v: %v", i, err)
		}
	}

	friendships, err := d.Friendships(ctx, "selene")
	require.NoError(t, err)
	require.Len(t, friendships, 2)
	assert.Equal(t, "alice", friendships[0].Friend("selene"))
	assert.Equal(t, RequestAccepted, friendships[0].Status)
	assert.Equal(t, "bob", friendships[1].Friend("selene"))
	assert.Equal(t, "selene", friendships[1].Friend("bob"))
}

func TestDaoLeaderboard(t *testing.T) {
	ctx := context.Background()
	d := newTestFriends(t)
	scores := map[string]int{
		"selene": 40,
		"alice":  300,
		"bob":    120,
	}
	for username, score := range scores {
		_, err := d.RecordGame(ctx, Game{PlayerID: username, Mode: "solo", Score: score}, SoloXP)
		require.NoError(t, err)
	}
	users, err := d.Leaderboard(ctx)
	require.NoError(t, err)
	var got []string
	for _, u := range users {
		got = append(got, u.Username)
		assert.Equal(t, scores[u.Username], u.Score, u.Username)
	}
	assert.Equal(t, []string{"alice", "bob", "selene"}, got)
}

func TestDaoLeaderboardOptions(t *testing.T) {
	var gotOptions db.ListOptions
	s := dbtest.MockStore{
		ListFunc: func(ctx context.Context, c db.Collection, o db.ListOptions) ([]db.Record, error) {
			assert.Equal(t, db.Users, c)
			gotOptions = o
			return nil, fmt.Errorf("store down")
		},
	}
	d := newTestDao(t, s)
	_, err := d.Leaderboard(context.Background())
	assert.Error(t, err)
	assert.Equal(t, db.ListOptions{Sort: "-score", Limit: LeaderboardSize}, gotOptions)
}
