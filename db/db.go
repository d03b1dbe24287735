// Package db stores records in named collections so they can be retrieved after the server restarts.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type (
	// Store contains methods to create, read, update, and delete records in collections.
	Store interface {
		// Create adds the record to the collection.  An id is generated if the record does not have one.
		// Creating a record with an id that is already used returns ErrAlreadyExists.
		Create(ctx context.Context, c Collection, r Record) (*Record, error)
		// Get reads the record with the id.  ErrNotFound is returned if no record has the id.
		Get(ctx context.Context, c Collection, id string) (*Record, error)
		// List reads the records in the collection.
		List(ctx context.Context, c Collection, o ListOptions) ([]Record, error)
		// Filter reads the records whose fields are equal to all of the predicate's fields.
		Filter(ctx context.Context, c Collection, predicate Fields) ([]Record, error)
		// Update merges the fields into the existing record.  Fields not specified are not changed.
		Update(ctx context.Context, c Collection, id string, f Fields) error
		// Delete removes the record.
		Delete(ctx context.Context, c Collection, id string) error
	}

	// Collection is the name of a group of records.
	Collection string

	// Fields are the top-level values of a record.
	Fields map[string]interface{}

	// Record is a stored item in a collection.
	Record struct {
		ID     string
		Fields Fields
	}

	// ListOptions change the order and amount of listed records.
	ListOptions struct {
		// Sort is the field to order records by.  Prefix the field with a "-" to sort descending.
		// Records are in creation order if no sort is specified.
		Sort string
		// Limit is the maximum number of records to read.  Zero or negative limits read all records.
		Limit int
	}

	// Config contains common properties for stores.
	Config struct {
		// QueryPeriod is the amount of time that any database action can take before it should timeout.
		QueryPeriod time.Duration
	}
)

const (
	// Users stores player accounts.
	Users Collection = "users"
	// Games stores the results of solo games.
	Games Collection = "games"
	// Duels stores shared two player games.
	Duels Collection = "duels"
	// WaitingPlayers is the matchmaking pool.
	WaitingPlayers Collection = "waiting_players"
	// GameStartEvents announce duels to the waiting players.
	GameStartEvents Collection = "game_start_events"
	// ValidatedWords is the shared ledger of word validity decisions.
	ValidatedWords Collection = "validated_words"
	// Gifts are rewards for users to collect.
	Gifts Collection = "gifts"
	// DailyChallenges stores the target word of each day.
	DailyChallenges Collection = "daily_challenges"
	// Friendships are friend requests between users.
	Friendships Collection = "friendships"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when creating a record with an id that is used.
	ErrAlreadyExists = errors.New("record already exists")
)

// NewID creates a random record id.
func NewID() string {
	return uuid.NewString()
}

// Encode converts the value to fields by marshalling it as json.
func Encode(v interface{}) (Fields, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	var f Fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	return f, nil
}

// Decode converts the fields into the value by marshalling it as json.
func (f Fields) Decode(v interface{}) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("decoding fields: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decoding fields: %w", err)
	}
	return nil
}

// Normalize converts the values of the fields to the types created by json unmarshalling.
// Numbers become float64s, lists become []interface{}, and objects become map[string]interface{}.
func (f Fields) Normalize() (Fields, error) {
	if f == nil {
		return Fields{}, nil
	}
	return Encode(f)
}

// SortField splits the sort into the field name and if it is descending.
func (o ListOptions) SortField() (field string, descending bool) {
	if len(o.Sort) > 0 && o.Sort[0] == '-' {
		return o.Sort[1:], true
	}
	return o.Sort, false
}
