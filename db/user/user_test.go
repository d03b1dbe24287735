package user

import (
	"testing"

	"github.com/jacobpatterson1549/swipe-words/game/powerup"
	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	isValidTests := []struct {
		username string
		want     bool
	}{
		{"", false},
		{"selene", true},
		{"username", true},
		{"user-name", false},
		{"User", false},
		{"abcdefghijklmnopqrstuvwxyzabcdef", true},   // 32
		{"abcdefghijklmnopqrstuvwxyzabcdefg", false}, // 33
	}
	for i, test := range isValidTests {
		err := validateUsername(test.username)
		assert.Equal(t, test.want, err == nil, "Test %v: %q", i, test.username)
	}
}

func TestValidatePassword(t *testing.T) {
	isValidTests := []struct {
		password string
		want     bool
	}{
		{"", false},
		{"selene", false},
		{"password", true},
		{"password123", true},
	}
	for i, test := range isValidTests {
		err := validatePassword(test.password)
		assert.Equal(t, test.want, err == nil, "Test %v", i)
	}
}

func TestLevel(t *testing.T) {
	levelTests := []struct {
		xp       int
		want     int
		wantNext int
	}{
		{-5, 1, 100},
		{0, 1, 100},
		{99, 1, 100},
		{100, 2, 250},
		{449, 3, 450},
		{450, 4, 700},
		{2700, 10, 3250},
		{23199, 29, 23200},
		{23200, 30, 0},
		{99999, 30, 0},
	}
	for i, test := range levelTests {
		assert.Equal(t, test.want, Level(test.xp), "Test %v: level", i)
		assert.Equal(t, test.wantNext, NextLevelXP(test.xp), "Test %v: next level xp", i)
		u := User{XP: test.xp}
		assert.Equal(t, test.want, u.Level(), "Test %v: user level", i)
	}
}

func TestLevelUpGifts(t *testing.T) {
	gifts := levelUpGifts("selene", 8, 11)
	if assert.Len(t, gifts, 3) {
		assert.Equal(t, Gift{RecipientID: "selene", Type: LevelUpGift, Title: "Level 9 Reward!", Crystals: 20, PowerUps: 1}, gifts[0])
		assert.Equal(t, Gift{RecipientID: "selene", Type: MegaLevelUpGift, Title: "Level 10 Mega Reward!", Crystals: 100, PowerUps: 3}, gifts[1])
		assert.Equal(t, LevelUpGift, gifts[2].Type)
	}
	assert.Empty(t, levelUpGifts("selene", 4, 4))
}

func TestPowerUpShares(t *testing.T) {
	sharesTests := []struct {
		n    int
		want map[powerup.Kind]int
	}{
		{0, nil},
		{1, map[powerup.Kind]int{powerup.ExtraTime: 1, powerup.WordHint: 1, powerup.DoubleScore: 1, powerup.SwapBoard: 0}},
		{3, map[powerup.Kind]int{powerup.ExtraTime: 1, powerup.WordHint: 1, powerup.DoubleScore: 1, powerup.SwapBoard: 0}},
		{4, map[powerup.Kind]int{powerup.ExtraTime: 1, powerup.WordHint: 1, powerup.DoubleScore: 1, powerup.SwapBoard: 1}},
		{5, map[powerup.Kind]int{powerup.ExtraTime: 2, powerup.WordHint: 2, powerup.DoubleScore: 2, powerup.SwapBoard: 1}},
	}
	for i, test := range sharesTests {
		assert.Equal(t, test.want, powerUpShares(test.n), "Test %v", i)
	}
}
