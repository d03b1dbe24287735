// Package powerup contains the power-ups players buy with crystals and use during games.
package powerup

import (
	"errors"
	"fmt"
)

type (
	// Kind is a type of power-up.
	Kind string

	// Inventory is the number of each kind of power-up a player has.
	Inventory map[Kind]int
)

const (
	// ExtraTime freezes the game timer.
	ExtraTime Kind = "extra_time"
	// WordHint shows a hint.
	WordHint Kind = "word_hint"
	// SwapBoard replaces the grid, keeping the score and found words.
	SwapBoard Kind = "swap_board"
	// DoubleScore doubles the points of words for a while.
	DoubleScore Kind = "double_score"
)

// HintMessage is shown when a word hint is used.
const HintMessage = "Look for 3+ letter words!"

var (
	// ErrNoPowerUp is returned when the player has none of a kind of power-up to use.
	ErrNoPowerUp = errors.New("no power-up of that kind remaining")
	// ErrInsufficientCurrency is returned when a player does not have enough crystals to buy a power-up.
	ErrInsufficientCurrency = errors.New("not enough crystals")
	// ErrUnknownKind is returned for kinds of power-ups that do not exist.
	ErrUnknownKind = errors.New("unknown power-up")
)

// prices are the crystal costs of the power-ups in the shop.
var prices = map[Kind]int{
	ExtraTime:   20,
	WordHint:    30,
	SwapBoard:   120,
	DoubleScore: 100,
}

// Kinds lists the power-ups in shop order.
func Kinds() []Kind {
	return []Kind{ExtraTime, WordHint, SwapBoard, DoubleScore}
}

// Price is the crystal cost of the kind of power-up.
func (k Kind) Price() (int, error) {
	p, ok := prices[k]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return p, nil
}

// Valid determines if the kind is in the shop.
func (k Kind) Valid() bool {
	_, ok := prices[k]
	return ok
}

// Count is the number of the kind in the inventory.
func (inv Inventory) Count(k Kind) int {
	return inv[k]
}

// Add puts n of the kind into a copy of the inventory.
func (inv Inventory) Add(k Kind, n int) Inventory {
	c := inv.Clone()
	c[k] += n
	return c
}

// Debit removes one of the kind from a copy of the inventory.
func (inv Inventory) Debit(k Kind) (Inventory, error) {
	if inv.Count(k) <= 0 {
		return inv, fmt.Errorf("using %v: %w", k, ErrNoPowerUp)
	}
	c := inv.Clone()
	c[k]--
	return c, nil
}

// Clone copies the inventory.
func (inv Inventory) Clone() Inventory {
	c := make(Inventory, len(inv)+1)
	for k, n := range inv {
		c[k] = n
	}
	return c
}

// Purchase buys one of the kind with the crystals.
// It returns the remaining crystals and the inventory with the kind added.
func Purchase(crystals int, inv Inventory, k Kind) (int, Inventory, error) {
	price, err := k.Price()
	if err != nil {
		return crystals, inv, err
	}
	if crystals < price {
		return crystals, inv, fmt.Errorf("buying %v for %v crystals with %v: %w", k, price, crystals, ErrInsufficientCurrency)
	}
	return crystals - price, inv.Add(k, 1), nil
}
