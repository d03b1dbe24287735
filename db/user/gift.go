package user

import (
	"fmt"

	"github.com/jacobpatterson1549/swipe-words/game/powerup"
)

type (
	// Gift is a reward waiting for a user to claim it.
	Gift struct {
		ID          string     `json:"-"`
		RecipientID string     `json:"recipient_id"`
		Type        GiftType   `json:"gift_type"`
		Title       string     `json:"title"`
		Crystals    int        `json:"crystals"`
		PowerUps    int        `json:"powerups"`
		Status      GiftStatus `json:"status"`
		// CreatedAt and ClaimedAt are unix milliseconds.
		CreatedAt int64 `json:"created_at"`
		ClaimedAt int64 `json:"claimed_at,omitempty"`
	}

	// GiftType is the reason a gift was given.
	GiftType string

	// GiftStatus is whether a gift has been claimed.
	GiftStatus string
)

const (
	// DailyChallengeGift is given for guessing the daily word.
	DailyChallengeGift GiftType = "daily_challenge"
	// LevelUpGift is given for reaching a level.
	LevelUpGift GiftType = "level_up"
	// MegaLevelUpGift is given for reaching every tenth level.
	MegaLevelUpGift GiftType = "mega_level_up"
)

const (
	// Pending gifts can be claimed.
	Pending GiftStatus = "pending"
	// Claimed gifts have been added to the user.
	Claimed GiftStatus = "claimed"
)

// levelUpGifts are the gifts for each level after the old level, up to and including the new level.
func levelUpGifts(username string, oldLevel, newLevel int) []Gift {
	var gifts []Gift
	for l := oldLevel + 1; l <= newLevel; l++ {
		g := Gift{
			RecipientID: username,
			Type:        LevelUpGift,
			Title:       fmt.Sprintf("Level %d Reward!", l),
			Crystals:    20,
			PowerUps:    1,
		}
		if l%10 == 0 {
			g.Type = MegaLevelUpGift
			g.Title = fmt.Sprintf("Level %d Mega Reward!", l)
			g.Crystals = 100
			g.PowerUps = 3
		}
		gifts = append(gifts, g)
	}
	return gifts
}

// powerUpShares splits n power-ups between the kinds.  Swap board, the most powerful, gets the smallest share.
func powerUpShares(n int) map[powerup.Kind]int {
	if n <= 0 {
		return nil
	}
	share := (n + 3) / 4
	return map[powerup.Kind]int{
		powerup.ExtraTime:   share,
		powerup.WordHint:    share,
		powerup.DoubleScore: share,
		powerup.SwapBoard:   n / 4,
	}
}
