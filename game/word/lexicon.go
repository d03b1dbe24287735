package word

import (
	"context"
	"fmt"
	"io"

	"github.com/jacobpatterson1549/swipe-words/server/log"
	"golang.org/x/sync/errgroup"
)

type (
	// Lexicon answers lookups of a local word list on a pool of worker goroutines.
	// The workers only receive words and send answers, they share nothing with callers.
	Lexicon struct {
		requests chan lookup
		ready    chan struct{}
		done     chan struct{}
		LexiconConfig
	}

	// LexiconConfig contains the properties to create a Lexicon.
	LexiconConfig struct {
		// Log is used to log errors and other information.
		Log log.Logger
		// Workers is the number of goroutines that look up words.
		Workers int
		// WordsFunc opens the lower case words of the lexicon.  It is called once when the lexicon is run.
		WordsFunc func() (io.Reader, error)
	}

	// lookup is a request for a worker to check a word.
	lookup struct {
		word  string
		found chan<- bool
	}
)

// NewLexicon creates a Lexicon that must be run before it is ready.
func (cfg LexiconConfig) NewLexicon() (*Lexicon, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating lexicon: validation: %w", err)
	}
	l := Lexicon{
		requests:      make(chan lookup),
		ready:         make(chan struct{}),
		done:          make(chan struct{}),
		LexiconConfig: cfg,
	}
	return &l, nil
}

// validate ensures the configuration has no errors.
func (cfg LexiconConfig) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.Workers <= 0:
		return fmt.Errorf("positive worker count required")
	case cfg.WordsFunc == nil:
		return fmt.Errorf("words func required")
	}
	return nil
}

// Run loads the words and then answers lookups until the context is cancelled.
func (l *Lexicon) Run(ctx context.Context) error {
	defer close(l.done)
	r, err := l.WordsFunc()
	if err != nil {
		return fmt.Errorf("opening lexicon words: %w", err)
	}
	v, err := NewValidator(r)
	if err != nil {
		return fmt.Errorf("loading lexicon words: %w", err)
	}
	l.Log.Printf("lexicon loaded %v words", len(v))
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < l.Workers; i++ {
		g.Go(func() error {
			l.work(ctx, v)
			return nil
		})
	}
	close(l.ready)
	return g.Wait()
}

// work answers lookups with the validator.
func (l *Lexicon) work(ctx context.Context, v Validator) {
	for { // BLOCKING
		select {
		case <-ctx.Done():
			return
		case req := <-l.requests:
			req.found <- v.Validate(req.word)
		}
	}
}

// Ready is closed when the words are loaded.
func (l *Lexicon) Ready() <-chan struct{} {
	return l.ready
}

// Lookup determines if the word is in the lexicon.
// If the lexicon is not ready, has stopped, or the context is done before a worker answers, ok is false.
func (l *Lexicon) Lookup(ctx context.Context, word string) (found, ok bool) {
	select {
	case <-l.ready:
	default:
		return false, false
	}
	answer := make(chan bool, 1)
	req := lookup{
		word:  word,
		found: answer,
	}
	select {
	case <-ctx.Done():
		return false, false
	case <-l.done:
		return false, false
	case l.requests <- req:
	}
	select {
	case <-ctx.Done():
		return false, false
	case found := <-answer:
		return found, true
	}
}
