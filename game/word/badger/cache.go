// Package badger implements a word cache in an embedded badger database.
package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jacobpatterson1549/swipe-words/game/word"
	"github.com/jacobpatterson1549/swipe-words/server/log"
)

type (
	// Cache is a word.Cache that keeps each player's words on disk.
	Cache struct {
		db *badger.DB
		Config
	}

	// Config contains the properties to open a Cache.
	Config struct {
		// Log is used to log errors and other information.
		Log log.Logger
		// Path is the directory of the database files.  It is ignored if InMemory is set.
		Path string
		// InMemory keeps the database out of the filesystem.
		InMemory bool
		// GCPeriod is how often the value log is garbage collected while running.
		GCPeriod time.Duration
		// MaxRetries is the number of times a conflicting write is retried.
		MaxRetries int
	}

	// logger adapts the server logger to badger's leveled logger.
	logger struct {
		log.Logger
	}
)

const gcDiscardRatio = 0.5

// present is the value stored for each word.
var present = []byte{1}

var _ word.Cache = (*Cache)(nil)

// NewCache opens the database of the Cache.  It must be closed when it is no longer used.
func (cfg Config) NewCache() (*Cache, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating badger word cache: validation: %w", err)
	}
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithNumVersionsToKeep(1).
		WithLogger(logger{cfg.Log})
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger word cache: %w", err)
	}
	c := Cache{
		db:     db,
		Config: cfg,
	}
	return &c, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case !cfg.InMemory && len(cfg.Path) == 0:
		return fmt.Errorf("path required for persistent cache")
	case cfg.GCPeriod < 0:
		return fmt.Errorf("non-negative gc period required")
	case cfg.MaxRetries < 0:
		return fmt.Errorf("non-negative max retries required")
	}
	return nil
}

// Add stores the word for the player, returning true if the player did not have it.
func (c *Cache) Add(ctx context.Context, player, w string) (bool, error) {
	k := []byte(word.CacheKey(player, w))
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		added := false
		err := c.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(k)
			switch {
			case err == nil:
				return nil
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
			added = true
			return txn.Set(k, present)
		})
		switch {
		case err == nil:
			return added, nil
		case errors.Is(err, badger.ErrConflict) && attempt < c.MaxRetries:
			continue
		}
		return false, fmt.Errorf("adding %q to word cache: %w", k, err)
	}
}

// Run collects value log garbage periodically until the context is done.
// If the GCPeriod is zero, it only waits for the context.
func (c *Cache) Run(ctx context.Context) error {
	if c.GCPeriod == 0 || c.InMemory {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(c.GCPeriod)
	defer ticker.Stop()
	for { // BLOCKING
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.db.RunValueLogGC(gcDiscardRatio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				c.Log.Printf("collecting word cache garbage: %v", err)
			}
		}
	}
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Errorf writes at the error level if the server logger has levels.
func (l logger) Errorf(format string, v ...interface{}) {
	if ll, ok := l.Logger.(log.LeveledLogger); ok {
		ll.Errorf("badger: "+format, v...)
		return
	}
	l.Printf("badger error: "+format, v...)
}

// Warningf writes at the warning level if the server logger has levels.
func (l logger) Warningf(format string, v ...interface{}) {
	if ll, ok := l.Logger.(log.LeveledLogger); ok {
		ll.Warnf("badger: "+format, v...)
		return
	}
	l.Printf("badger warning: "+format, v...)
}

// Infof drops badger's startup and compaction chatter.
func (l logger) Infof(format string, v ...interface{}) {}

func (l logger) Debugf(format string, v ...interface{}) {}
