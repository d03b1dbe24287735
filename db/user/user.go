// Package user handles the accounts of players and what they have earned.
package user

import (
	"fmt"
	"unicode"

	"github.com/jacobpatterson1549/swipe-words/game/powerup"
)

type (
	// User contains information for each player.
	User struct {
		Username    string            `json:"username"`
		Crystals    int               `json:"crystals"`
		Score       int               `json:"score"`
		GamesPlayed int               `json:"games_played"`
		XP          int               `json:"xp"`
		PowerUps    powerup.Inventory `json:"powerups"`
		Daily       Daily             `json:"daily_challenge"`
	}

	// Daily is the progress of the user on a daily challenge.
	Daily struct {
		// Date is the day of the challenge, formatted as YYYY-MM-DD.
		Date      string `json:"date"`
		Attempts  int    `json:"attempts"`
		Completed bool   `json:"completed"`
	}

	// record is how a user is stored.
	record struct {
		User
		PasswordHash string `json:"password"`
	}
)

// XP awarded for finishing games.
const (
	SoloXP        = 10
	MultiplayerXP = 20
	DailyXP       = 15
)

// levelThresholds are the xp needed for each level, starting at level 1.
var levelThresholds = [...]int{
	0, 100, 250, 450, 700, 1000, 1350, 1750, 2200, 2700,
	3250, 3850, 4500, 5200, 5950, 6750, 7600, 8500, 9450, 10450,
	11500, 12600, 13750, 14950, 16200, 17500, 18850, 20250, 21700, 23200,
}

// MaxLevel is the highest level a user can reach.
const MaxLevel = len(levelThresholds)

// Level is the level of a user with the xp.
func Level(xp int) int {
	for i := len(levelThresholds) - 1; i > 0; i-- {
		if xp >= levelThresholds[i] {
			return i + 1
		}
	}
	return 1
}

// NextLevelXP is the xp needed to reach the level after the xp's level.  It is zero at the max level.
func NextLevelXP(xp int) int {
	l := Level(xp)
	if l >= MaxLevel {
		return 0
	}
	return levelThresholds[l]
}

// Level is the level of the user.
func (u User) Level() int {
	return Level(u.XP)
}

// validateUsername returns an error if the username is not valid.
func validateUsername(u string) error {
	switch {
	case len(u) < 1:
		return fmt.Errorf("username required")
	case len(u) > 32:
		return fmt.Errorf("username must be less than 32 characters long")
	default:
		for _, r := range u {
			if !unicode.IsLower(r) {
				return fmt.Errorf("username must be made of only lowercase letters")
			}
		}
	}
	return nil
}

// validatePassword returns an error if the password is not valid.
func validatePassword(p string) error {
	switch {
	case len(p) < 8:
		return fmt.Errorf("password must be at least 8 characters long")
	}
	return nil
}
