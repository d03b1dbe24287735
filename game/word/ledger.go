package word

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jacobpatterson1549/swipe-words/db"
)

type (
	// Ledger is the shared record of words that have been judged by the oracle.
	// Entries are written once, by whichever player first needs the word.
	Ledger struct {
		store db.Store
	}

	// LedgerEntry is the judgement of a word.
	LedgerEntry struct {
		Word    string `json:"word"`
		IsValid bool   `json:"is_valid"`
	}
)

// NewLedger creates a ledger in the store.
func NewLedger(store db.Store) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("creating ledger: validation: store required")
	}
	l := Ledger{
		store: store,
	}
	return &l, nil
}

// Lookup reads the entry for the word.  If the word has not been judged, the entry is nil.
func (l *Ledger) Lookup(ctx context.Context, word string) (*LedgerEntry, error) {
	w := strings.ToLower(word)
	r, err := l.store.Get(ctx, db.ValidatedWords, w)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("looking up %q in ledger: %w", w, err)
	}
	var e LedgerEntry
	if err := r.Fields.Decode(&e); err != nil {
		return nil, fmt.Errorf("reading ledger entry for %q: %w", w, err)
	}
	return &e, nil
}

// Record writes the judgement of the word.
// If another player recorded the word first, their entry is kept.
func (l *Ledger) Record(ctx context.Context, word string, isValid bool) error {
	e := LedgerEntry{
		Word:    strings.ToLower(word),
		IsValid: isValid,
	}
	f, err := db.Encode(e)
	if err != nil {
		return err
	}
	r := db.Record{
		ID:     e.Word,
		Fields: f,
	}
	if _, err := l.store.Create(ctx, db.ValidatedWords, r); err != nil && !errors.Is(err, db.ErrAlreadyExists) {
		return fmt.Errorf("recording %q in ledger: %w", e.Word, err)
	}
	return nil
}
