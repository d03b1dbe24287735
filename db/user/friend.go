package user

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jacobpatterson1549/swipe-words/db"
)

type (
	// Friendship is a friend request from one user to another.
	Friendship struct {
		ID          string           `json:"id"`
		RequesterID string           `json:"requester_id"`
		RecipientID string           `json:"recipient_id"`
		Status      FriendshipStatus `json:"status"`
		// CreatedAt is unix milliseconds.
		CreatedAt int64 `json:"created_at"`
	}

	// FriendshipStatus is the answer to a friend request.
	FriendshipStatus string
)

const (
	// RequestPending friendships have not been answered by the recipient.
	RequestPending FriendshipStatus = "pending"
	// RequestAccepted friendships are between friends.
	RequestAccepted FriendshipStatus = "accepted"
	// RequestDeclined friendships were turned down by the recipient.
	RequestDeclined FriendshipStatus = "declined"
)

// LeaderboardSize is the number of users on the leaderboard.
const LeaderboardSize = 100

var (
	// ErrFriendshipExists is returned when requesting a friend that has a request with the user, in either direction.
	ErrFriendshipExists = errors.New("already friends or request exists")
	// ErrFriendshipAnswered is returned when answering a friend request that is not pending.
	ErrFriendshipAnswered = errors.New("friend request already answered")
	// ErrNotFriends is returned when challenging a user that is not a friend.
	ErrNotFriends = errors.New("not friends")
)

// Friend is the other user of the friendship.
func (f Friendship) Friend(username string) string {
	if f.RequesterID == username {
		return f.RecipientID
	}
	return f.RequesterID
}

// RequestFriend sends a friend request from the user to the friend.
func (d *Dao) RequestFriend(ctx context.Context, username, friend string) (*Friendship, error) {
	if username == friend {
		return nil, fmt.Errorf("%w: cannot add yourself as a friend", ErrInvalid)
	}
	if _, err := d.read(ctx, friend); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	existing, err := d.friendships(ctx, username, friend)
	if err != nil {
		return nil, err
	}
	if len(existing) != 0 {
		return nil, fmt.Errorf("requesting %v as friend of %v: %w", friend, username, ErrFriendshipExists)
	}
	f := Friendship{
		ID:          db.NewID(),
		RequesterID: username,
		RecipientID: friend,
		Status:      RequestPending,
		CreatedAt:   d.TimeFunc().UnixMilli(),
	}
	fields, err := db.Encode(f)
	if err != nil {
		return nil, err
	}
	if _, err := d.Store.Create(ctx, db.Friendships, db.Record{ID: f.ID, Fields: fields}); err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}
	return &f, nil
}

// AnswerFriend accepts or declines a pending friend request sent to the user.
func (d *Dao) AnswerFriend(ctx context.Context, username, friendshipID string, accept bool) (*Friendship, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, err := d.Store.Get(ctx, db.Friendships, friendshipID)
	if err != nil {
		return nil, fmt.Errorf("reading friend request: %w", err)
	}
	var f Friendship
	if err := r.Fields.Decode(&f); err != nil {
		return nil, fmt.Errorf("reading friend request %v: %w", friendshipID, err)
	}
	switch {
	case f.RecipientID != username:
		return nil, fmt.Errorf("friend request %v is not for %v: %w", friendshipID, username, db.ErrNotFound)
	case f.Status != RequestPending:
		return nil, fmt.Errorf("answering friend request %v: %w", friendshipID, ErrFriendshipAnswered)
	}
	f.Status = RequestDeclined
	if accept {
		f.Status = RequestAccepted
	}
	if err := d.Store.Update(ctx, db.Friendships, friendshipID, db.Fields{"status": string(f.Status)}); err != nil {
		return nil, fmt.Errorf("answering friend request %v: %w", friendshipID, err)
	}
	return &f, nil
}

// Friendships reads the friend requests sent by or to the user, newest first.
func (d *Dao) Friendships(ctx context.Context, username string) ([]Friendship, error) {
	sent, err := d.filterFriendships(ctx, db.Fields{"requester_id": username})
	if err != nil {
		return nil, err
	}
	received, err := d.filterFriendships(ctx, db.Fields{"recipient_id": username})
	if err != nil {
		return nil, err
	}
	all := append(sent, received...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt > all[j].CreatedAt
	})
	return all, nil
}

// CheckFriends returns ErrNotFriends if the users have not accepted a friend request between them.
func (d *Dao) CheckFriends(ctx context.Context, username, friend string) error {
	existing, err := d.friendships(ctx, username, friend)
	if err != nil {
		return err
	}
	for _, f := range existing {
		if f.Status == RequestAccepted {
			return nil
		}
	}
	return fmt.Errorf("%v and %v: %w", username, friend, ErrNotFriends)
}

// Leaderboard reads the users with the highest scores, highest first.
func (d *Dao) Leaderboard(ctx context.Context) ([]User, error) {
	o := db.ListOptions{
		Sort:  "-score",
		Limit: LeaderboardSize,
	}
	records, err := d.Store.List(ctx, db.Users, o)
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	users := make([]User, 0, len(records))
	for _, r := range records {
		var u User
		if err := r.Fields.Decode(&u); err != nil {
			return nil, fmt.Errorf("reading user %v: %w", r.ID, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// friendships reads the friend requests between the users, in either direction.
func (d *Dao) friendships(ctx context.Context, a, b string) ([]Friendship, error) {
	ab, err := d.filterFriendships(ctx, db.Fields{"requester_id": a, "recipient_id": b})
	if err != nil {
		return nil, err
	}
	ba, err := d.filterFriendships(ctx, db.Fields{"requester_id": b, "recipient_id": a})
	if err != nil {
		return nil, err
	}
	return append(ab, ba...), nil
}

func (d *Dao) filterFriendships(ctx context.Context, predicate db.Fields) ([]Friendship, error) {
	records, err := d.Store.Filter(ctx, db.Friendships, predicate)
	if err != nil {
		return nil, fmt.Errorf("reading friend requests: %w", err)
	}
	friendships := make([]Friendship, 0, len(records))
	for _, r := range records {
		var f Friendship
		if err := r.Fields.Decode(&f); err != nil {
			return nil, fmt.Errorf("reading friend request %v: %w", r.ID, err)
		}
		f.ID = r.ID
		friendships = append(friendships, f)
	}
	return friendships, nil
}
