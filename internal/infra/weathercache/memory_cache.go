package weathercache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/ai-wardrobe/internal/domain/weather"
)

type entry struct {
	reading   weather.Reading
	expiresAt time.Time
}

// MemoryCache keeps readings in process memory.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry), now: time.Now}
}

// Get implements weather.Cache.
func (c *MemoryCache) Get(_ context.Context, location string) (weather.Reading, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[location]
	c.mu.RUnlock()
	if !ok {
		return weather.Reading{}, false, nil
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(c.now()) {
		c.mu.Lock()
		delete(c.entries, location)
		c.mu.Unlock()
		return weather.Reading{}, false, nil
	}
	return e.reading, true, nil
}

// Set implements weather.Cache.
func (c *MemoryCache) Set(_ context.Context, location string, reading weather.Reading, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[location] = entry{reading: reading, expiresAt: exp}
	c.mu.Unlock()
	return nil
}

var _ weather.Cache = (*MemoryCache)(nil)
