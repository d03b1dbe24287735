package word

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jacobpatterson1549/swipe-words/server/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type (
	// Chain checks words with progressively slower sources, stopping at the first definitive answer.
	// The local lexicon is checked first, but only a match is definitive.
	// The shared ledger is checked next, then the oracle, whose answer is recorded in the ledger.
	Chain struct {
		ChainConfig
	}

	// ChainConfig contains the sources the Chain checks.
	ChainConfig struct {
		// Log is used to log errors and other information.
		Log log.Logger
		// Lexicon is the local word list.
		Lexicon LocalLexicon
		// Ledger has the words that the oracle judged.
		Ledger WordLedger
		// Oracle is asked about words no other source knows.  It is optional.
		Oracle Oracle
		// OnlineFunc reports if the ledger and oracle can be reached.
		OnlineFunc func() bool
	}

	// LocalLexicon looks up words in a local list.
	LocalLexicon interface {
		Lookup(ctx context.Context, word string) (found, ok bool)
	}

	// WordLedger reads and writes shared judgements of words.
	WordLedger interface {
		Lookup(ctx context.Context, word string) (*LedgerEntry, error)
		Record(ctx context.Context, word string, isValid bool) error
	}
)

// ErrValidationUnavailable is returned when no source could decide if a word is valid.
var ErrValidationUnavailable = errors.New("word validation unavailable")

var validations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "swipe_words",
	Name:      "word_validations_total",
	Help:      "Words checked, by the source that decided and the result.",
}, []string{"tier", "result"})

// NewChain creates a Chain.
func (cfg ChainConfig) NewChain() (*Chain, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating word chain: validation: %w", err)
	}
	c := Chain{
		ChainConfig: cfg,
	}
	return &c, nil
}

// validate ensures the configuration has no errors.
func (cfg ChainConfig) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.Lexicon == nil:
		return fmt.Errorf("lexicon required")
	case cfg.Ledger == nil:
		return fmt.Errorf("ledger required")
	case cfg.OnlineFunc == nil:
		return fmt.Errorf("online func required")
	}
	return nil
}

// IsValid determines if the word is valid.
// When offline, only the lexicon is checked and words not in it are unavailable.
// If the oracle fails, the word is unavailable and nothing is recorded so it can be asked again later.
func (c *Chain) IsValid(ctx context.Context, word string) (bool, error) {
	w := strings.ToLower(word)
	if found, ok := c.Lexicon.Lookup(ctx, w); ok && found {
		validations.WithLabelValues("lexicon", "valid").Inc()
		return true, nil
	}
	if !c.OnlineFunc() {
		validations.WithLabelValues("lexicon", "unavailable").Inc()
		return false, fmt.Errorf("checking %q while offline: %w", w, ErrValidationUnavailable)
	}
	e, err := c.Ledger.Lookup(ctx, w)
	switch {
	case err != nil:
		c.Log.Printf("reading word ledger: %v", err)
	case e != nil:
		validations.WithLabelValues("ledger", result(e.IsValid)).Inc()
		return e.IsValid, nil
	}
	if c.Oracle == nil {
		validations.WithLabelValues("oracle", "unavailable").Inc()
		return false, fmt.Errorf("no oracle to check %q: %w", w, ErrValidationUnavailable)
	}
	isValid, err := ask(ctx, c.Oracle, w)
	if err != nil {
		validations.WithLabelValues("oracle", "unavailable").Inc()
		c.Log.Printf("asking oracle about %q: %v", w, err)
		return false, fmt.Errorf("asking oracle about %q: %v: %w", w, err, ErrValidationUnavailable)
	}
	validations.WithLabelValues("oracle", result(isValid)).Inc()
	if err := c.Ledger.Record(ctx, w, isValid); err != nil {
		c.Log.Printf("recording oracle judgement: %v", err)
	}
	return isValid, nil
}

// result is the metric label for a judgement.
func result(isValid bool) string {
	if isValid {
		return "valid"
	}
	return "invalid"
}
