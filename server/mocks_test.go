package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/jacobpatterson1549/swipe-words/db/user"
	"github.com/jacobpatterson1549/swipe-words/game/daily"
	"github.com/jacobpatterson1549/swipe-words/game/powerup"
)

type mockTokenizer struct {
	CreateFunc       func(username string) (string, error)
	ReadUsernameFunc func(tokenString string) (string, error)
}

func (m mockTokenizer) Create(username string) (string, error) {
	return m.CreateFunc(username)
}

func (m mockTokenizer) ReadUsername(tokenString string) (string, error) {
	return m.ReadUsernameFunc(tokenString)
}

type mockUserDao struct {
	CreateFunc         func(ctx context.Context, username, password string) error
	LoginFunc          func(ctx context.Context, username, password string) (*user.User, error)
	ReadFunc           func(ctx context.Context, username string) (*user.User, error)
	UpdatePasswordFunc func(ctx context.Context, username, password, newPassword string) error
	DeleteFunc         func(ctx context.Context, username, password string) error
	PurchaseFunc       func(ctx context.Context, username string, k powerup.Kind) (*user.User, error)
	GamesFunc          func(ctx context.Context, username string, limit int) ([]user.Game, error)
	GiftsFunc          func(ctx context.Context, username string) ([]user.Gift, error)
	ClaimGiftFunc      func(ctx context.Context, username, giftID string) (*user.User, error)
	RequestFriendFunc  func(ctx context.Context, username, friend string) (*user.Friendship, error)
	AnswerFriendFunc   func(ctx context.Context, username, friendshipID string, accept bool) (*user.Friendship, error)
	FriendshipsFunc    func(ctx context.Context, username string) ([]user.Friendship, error)
	LeaderboardFunc    func(ctx context.Context) ([]user.User, error)
}

func (m mockUserDao) Create(ctx context.Context, username, password string) error {
	return m.CreateFunc(ctx, username, password)
}

func (m mockUserDao) Login(ctx context.Context, username, password string) (*user.User, error) {
	return m.LoginFunc(ctx, username, password)
}

func (m mockUserDao) Read(ctx context.Context, username string) (*user.User, error) {
	return m.ReadFunc(ctx, username)
}

func (m mockUserDao) UpdatePassword(ctx context.Context, username, password, newPassword string) error {
	return m.UpdatePasswordFunc(ctx, username, password, newPassword)
}

func (m mockUserDao) Delete(ctx context.Context, username, password string) error {
	return m.DeleteFunc(ctx, username, password)
}

func (m mockUserDao) Purchase(ctx context.Context, username string, k powerup.Kind) (*user.User, error) {
	return m.PurchaseFunc(ctx, username, k)
}

func (m mockUserDao) Games(ctx context.Context, username string, limit int) ([]user.Game, error) {
	return m.GamesFunc(ctx, username, limit)
}

func (m mockUserDao) Gifts(ctx context.Context, username string) ([]user.Gift, error) {
	return m.GiftsFunc(ctx, username)
}

func (m mockUserDao) ClaimGift(ctx context.Context, username, giftID string) (*user.User, error) {
	return m.ClaimGiftFunc(ctx, username, giftID)
}

func (m mockUserDao) RequestFriend(ctx context.Context, username, friend string) (*user.Friendship, error) {
	return m.RequestFriendFunc(ctx, username, friend)
}

func (m mockUserDao) AnswerFriend(ctx context.Context, username, friendshipID string, accept bool) (*user.Friendship, error) {
	return m.AnswerFriendFunc(ctx, username, friendshipID, accept)
}

func (m mockUserDao) Friendships(ctx context.Context, username string) ([]user.Friendship, error) {
	return m.FriendshipsFunc(ctx, username)
}

func (m mockUserDao) Leaderboard(ctx context.Context) ([]user.User, error) {
	return m.LeaderboardFunc(ctx)
}

type mockLobby struct {
	RunFunc        func(ctx context.Context, wg *sync.WaitGroup)
	AddUserFunc    func(ctx context.Context, username string, w http.ResponseWriter, r *http.Request) error
	RemoveUserFunc func(ctx context.Context, username string)
}

func (m mockLobby) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.RunFunc(ctx, wg)
}

func (m mockLobby) AddUser(ctx context.Context, username string, w http.ResponseWriter, r *http.Request) error {
	return m.AddUserFunc(ctx, username, w, r)
}

func (m mockLobby) RemoveUser(ctx context.Context, username string) {
	m.RemoveUserFunc(ctx, username)
}

type mockDaily struct {
	TodayFunc func(ctx context.Context) (*daily.Challenge, error)
	GuessFunc func(ctx context.Context, username, guess string) (*daily.Result, error)
}

func (m mockDaily) Today(ctx context.Context) (*daily.Challenge, error) {
	return m.TodayFunc(ctx)
}

func (m mockDaily) Guess(ctx context.Context, username, guess string) (*daily.Result, error) {
	return m.GuessFunc(ctx, username, guess)
}
