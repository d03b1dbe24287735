package word

import (
	"context"
	"strings"
	"sync"
)

type (
	// Cache remembers the words each player has ever been awarded.
	Cache interface {
		// Add stores the lower case word for the player.  It returns true if the player did not have the word before.
		Add(ctx context.Context, player, word string) (bool, error)
	}

	// MemoryCache is a Cache that is lost when the process stops.  The server uses it when no cache directory is set.
	MemoryCache struct {
		mu    sync.Mutex
		words map[string]struct{}
	}
)

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	c := MemoryCache{
		words: make(map[string]struct{}),
	}
	return &c
}

// Add stores the word for the player.
func (c *MemoryCache) Add(ctx context.Context, player, word string) (bool, error) {
	k := CacheKey(player, word)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.words[k]; ok {
		return false, nil
	}
	c.words[k] = struct{}{}
	return true, nil
}

// Run waits for the context to be done.  The cache has no background work.
func (c *MemoryCache) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Close forgets every word.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.words = make(map[string]struct{})
	return nil
}

// CacheKey is the key of the player's lower cased word.
func CacheKey(player, word string) string {
	return player + "/" + strings.ToLower(word)
}
