package user

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jacobpatterson1549/swipe-words/db"
	"github.com/jacobpatterson1549/swipe-words/game/powerup"
)

type (
	// Dao contains CRUD operations for user-related information.
	// Changes to a user are read, modified, and written while holding a lock, so changes made through one Dao do not overwrite each other.
	Dao struct {
		mu sync.Mutex
		DaoConfig
	}

	// DaoConfig contains the properties to create a Dao.
	DaoConfig struct {
		// Store holds users, games, and gifts.
		Store db.Store
		// PasswordHandler hashes and checks passwords.
		PasswordHandler PasswordHandler
		// TimeFunc is the current time.
		TimeFunc func() time.Time
	}

	// PasswordHandler hashes and checks passwords.
	PasswordHandler interface {
		Hash(password string) ([]byte, error)
		IsCorrect(hashedPassword []byte, password string) (bool, error)
	}

	// Game is the record of a finished game.
	Game struct {
		PlayerID       string   `json:"player_id"`
		Mode           string   `json:"game_mode"`
		Score          int      `json:"score"`
		WordsFound     []string `json:"words_found"`
		CrystalsEarned int      `json:"crystals_earned"`
		CreatedAt      int64    `json:"created_at"`
	}

	// Reward is what a user earned for a game.
	Reward struct {
		Crystals int `json:"crystals"`
		XP       int `json:"xp"`
		OldLevel int `json:"oldLevel"`
		NewLevel int `json:"newLevel"`
	}
)

// CrystalsPerScore is the score needed to earn a crystal.
const CrystalsPerScore = 20

var (
	// ErrIncorrectPassword is returned when logging in with the wrong password.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrUsernameTaken is returned when creating a user that exists.
	ErrUsernameTaken = errors.New("username taken")
	// ErrGiftClaimed is returned when claiming a gift again.
	ErrGiftClaimed = errors.New("gift already claimed")
	// ErrInvalid is returned for usernames and passwords that cannot be used.
	ErrInvalid = errors.New("invalid user")
)

// NewDao creates a Dao on the specified store.
func (cfg DaoConfig) NewDao() (*Dao, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating user dao: validation: %w", err)
	}
	d := Dao{
		DaoConfig: cfg,
	}
	return &d, nil
}

// validate checks fields to set up the dao.
func (cfg DaoConfig) validate() error {
	switch {
	case cfg.Store == nil:
		return fmt.Errorf("store required")
	case cfg.PasswordHandler == nil:
		return fmt.Errorf("password handler required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	}
	return nil
}

// Create adds a user.
func (d *Dao) Create(ctx context.Context, username, password string) error {
	if err := validateUsername(username); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := validatePassword(password); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	hashedPassword, err := d.PasswordHandler.Hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	r := record{
		User: User{
			Username: username,
			PowerUps: powerup.Inventory{},
		},
		PasswordHash: string(hashedPassword),
	}
	f, err := db.Encode(r)
	if err != nil {
		return err
	}
	_, err = d.Store.Create(ctx, db.Users, db.Record{ID: username, Fields: f})
	switch {
	case errors.Is(err, db.ErrAlreadyExists):
		return fmt.Errorf("creating user %v: %w", username, ErrUsernameTaken)
	case err != nil:
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Login reads the user if the password is correct.
func (d *Dao) Login(ctx context.Context, username, password string) (*User, error) {
	r, err := d.read(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := d.checkPassword(r, password); err != nil {
		return nil, err
	}
	return &r.User, nil
}

// Read gets the user's information such as crystals and power-ups.
func (d *Dao) Read(ctx context.Context, username string) (*User, error) {
	r, err := d.read(ctx, username)
	if err != nil {
		return nil, err
	}
	return &r.User, nil
}

// UpdatePassword sets the password of a user.
func (d *Dao) UpdatePassword(ctx context.Context, username, password, newPassword string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, err := d.read(ctx, username)
	if err != nil {
		return err
	}
	if err := d.checkPassword(r, password); err != nil {
		return err
	}
	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	hashedPassword, err := d.PasswordHandler.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := d.Store.Update(ctx, db.Users, username, db.Fields{"password": string(hashedPassword)}); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// Delete removes a user.
func (d *Dao) Delete(ctx context.Context, username, password string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, err := d.read(ctx, username)
	if err != nil {
		return err
	}
	if err := d.checkPassword(r, password); err != nil {
		return err
	}
	if err := d.Store.Delete(ctx, db.Users, username); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// Modify changes the user with the function and saves the result.
// The user is not saved if the function returns an error.
func (d *Dao) Modify(ctx context.Context, username string, modifyFunc func(u *User) error) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modify(ctx, username, modifyFunc)
}

// Purchase buys a power-up for the user with crystals.
func (d *Dao) Purchase(ctx context.Context, username string, k powerup.Kind) (*User, error) {
	return d.Modify(ctx, username, func(u *User) error {
		crystals, inv, err := powerup.Purchase(u.Crystals, u.PowerUps, k)
		if err != nil {
			return err
		}
		u.Crystals, u.PowerUps = crystals, inv
		return nil
	})
}

// UsePowerUp removes one power-up of the kind from the user.
func (d *Dao) UsePowerUp(ctx context.Context, username string, k powerup.Kind) error {
	_, err := d.Modify(ctx, username, func(u *User) error {
		inv, err := u.PowerUps.Debit(k)
		if err != nil {
			return err
		}
		u.PowerUps = inv
		return nil
	})
	return err
}

// AddCrystals gives the user crystals.
func (d *Dao) AddCrystals(ctx context.Context, username string, crystals int) (*User, error) {
	return d.Modify(ctx, username, func(u *User) error {
		u.Crystals += crystals
		return nil
	})
}

// AwardXP gives the user xp.  A gift is sent for each level the user reaches.
func (d *Dao) AwardXP(ctx context.Context, username string, xp int) (*Reward, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.awardXP(ctx, username, xp)
}

// RecordGame saves the game and adds its score, crystals, and xp to the player.
// Crystals are earned for every CrystalsPerScore points.
func (d *Dao) RecordGame(ctx context.Context, g Game, xp int) (*Reward, error) {
	g.CrystalsEarned = g.Score / CrystalsPerScore
	g.CreatedAt = d.TimeFunc().UnixMilli()
	if g.WordsFound == nil {
		g.WordsFound = []string{}
	}
	f, err := db.Encode(g)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.Store.Create(ctx, db.Games, db.Record{Fields: f}); err != nil {
		return nil, fmt.Errorf("saving game: %w", err)
	}
	if _, err := d.modify(ctx, g.PlayerID, func(u *User) error {
		u.Score += g.Score
		u.Crystals += g.CrystalsEarned
		u.GamesPlayed++
		return nil
	}); err != nil {
		return nil, err
	}
	r, err := d.awardXP(ctx, g.PlayerID, xp)
	if err != nil {
		return nil, err
	}
	r.Crystals = g.CrystalsEarned
	return r, nil
}

// Games reads the most recent games of the player, newest first.
func (d *Dao) Games(ctx context.Context, username string, limit int) ([]Game, error) {
	records, err := d.Store.Filter(ctx, db.Games, db.Fields{"player_id": username})
	if err != nil {
		return nil, fmt.Errorf("reading games: %w", err)
	}
	games := make([]Game, 0, len(records))
	for _, r := range records {
		var g Game
		if err := r.Fields.Decode(&g); err != nil {
			return nil, fmt.Errorf("reading game %v: %w", r.ID, err)
		}
		games = append(games, g)
	}
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].CreatedAt > games[j].CreatedAt
	})
	if limit > 0 && len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

// SendGift gives the gift to its recipient.  The recipient must claim it.
func (d *Dao) SendGift(ctx context.Context, g Gift) error {
	g.Status = Pending
	g.CreatedAt = d.TimeFunc().UnixMilli()
	f, err := db.Encode(g)
	if err != nil {
		return err
	}
	if _, err := d.Store.Create(ctx, db.Gifts, db.Record{Fields: f}); err != nil {
		return fmt.Errorf("sending %v gift to %v: %w", g.Type, g.RecipientID, err)
	}
	return nil
}

// Gifts reads the gifts of the user, newest first.
func (d *Dao) Gifts(ctx context.Context, username string) ([]Gift, error) {
	records, err := d.Store.Filter(ctx, db.Gifts, db.Fields{"recipient_id": username})
	if err != nil {
		return nil, fmt.Errorf("reading gifts: %w", err)
	}
	gifts := make([]Gift, 0, len(records))
	for _, r := range records {
		var g Gift
		if err := r.Fields.Decode(&g); err != nil {
			return nil, fmt.Errorf("reading gift %v: %w", r.ID, err)
		}
		g.ID = r.ID
		gifts = append(gifts, g)
	}
	sort.SliceStable(gifts, func(i, j int) bool {
		return gifts[i].CreatedAt > gifts[j].CreatedAt
	})
	return gifts, nil
}

// ClaimGift adds the crystals and power-ups of the gift to the user.
func (d *Dao) ClaimGift(ctx context.Context, username, giftID string) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, err := d.Store.Get(ctx, db.Gifts, giftID)
	if err != nil {
		return nil, fmt.Errorf("reading gift: %w", err)
	}
	var g Gift
	if err := r.Fields.Decode(&g); err != nil {
		return nil, fmt.Errorf("reading gift %v: %w", giftID, err)
	}
	switch {
	case g.RecipientID != username:
		return nil, fmt.Errorf("gift %v is not for %v: %w", giftID, username, db.ErrNotFound)
	case g.Status == Claimed:
		return nil, fmt.Errorf("claiming gift %v: %w", giftID, ErrGiftClaimed)
	}
	f := db.Fields{
		"status":     string(Claimed),
		"claimed_at": d.TimeFunc().UnixMilli(),
	}
	if err := d.Store.Update(ctx, db.Gifts, giftID, f); err != nil {
		return nil, fmt.Errorf("claiming gift %v: %w", giftID, err)
	}
	return d.modify(ctx, username, func(u *User) error {
		u.Crystals += g.Crystals
		for k, n := range powerUpShares(g.PowerUps) {
			u.PowerUps = u.PowerUps.Add(k, n)
		}
		return nil
	})
}

// read gets the stored user.
func (d *Dao) read(ctx context.Context, username string) (*record, error) {
	r, err := d.Store.Get(ctx, db.Users, username)
	if err != nil {
		return nil, fmt.Errorf("reading user: %w", err)
	}
	var u record
	if err := r.Fields.Decode(&u); err != nil {
		return nil, fmt.Errorf("reading user %v: %w", username, err)
	}
	if u.PowerUps == nil {
		u.PowerUps = powerup.Inventory{}
	}
	return &u, nil
}

// checkPassword returns an error if the password is not the user's.
func (d *Dao) checkPassword(r *record, password string) error {
	isCorrect, err := d.PasswordHandler.IsCorrect([]byte(r.PasswordHash), password)
	switch {
	case err != nil:
		return fmt.Errorf("checking password: %w", err)
	case !isCorrect:
		return ErrIncorrectPassword
	}
	return nil
}

// modify changes and saves the user.  The lock must be held.
func (d *Dao) modify(ctx context.Context, username string, modifyFunc func(u *User) error) (*User, error) {
	r, err := d.read(ctx, username)
	if err != nil {
		return nil, err
	}
	u := r.User
	u.PowerUps = u.PowerUps.Clone()
	if err := modifyFunc(&u); err != nil {
		return nil, err
	}
	u.Username = username
	f, err := db.Encode(u)
	if err != nil {
		return nil, err
	}
	if err := d.Store.Update(ctx, db.Users, username, f); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return &u, nil
}

// awardXP gives the user xp and sends level up gifts.  The lock must be held.
func (d *Dao) awardXP(ctx context.Context, username string, xp int) (*Reward, error) {
	var oldXP int
	u, err := d.modify(ctx, username, func(u *User) error {
		oldXP = u.XP
		u.XP += xp
		return nil
	})
	if err != nil {
		return nil, err
	}
	r := Reward{
		XP:       xp,
		OldLevel: Level(oldXP),
		NewLevel: u.Level(),
	}
	for _, g := range levelUpGifts(username, r.OldLevel, r.NewLevel) {
		if err := d.SendGift(ctx, g); err != nil {
			return nil, err
		}
	}
	return &r, nil
}
