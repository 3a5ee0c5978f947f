// Package cache provides a small in-process TTL cache used for OTP challenges
// and request rate limiting. Entries are evicted lazily on read and by a
// background sweep.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a concurrency-safe map with per-entry expiry
type TTLCache struct {
	entries map[string]entry
	mu      sync.RWMutex
	stop    chan struct{}
	once    sync.Once
}

// New creates a TTLCache and starts a background sweep at the given interval
func New(sweepInterval time.Duration) *TTLCache {
	c := &TTLCache{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	go c.sweep(sweepInterval)
	return c
}

// Set stores value under key for the given TTL, replacing any existing entry
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get returns the value for key, or false when missing or expired
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Delete removes key from the cache
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Len returns the number of entries, including any not yet swept
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Close stops the background sweep
func (c *TTLCache) Close() {
	c.once.Do(func() {
		close(c.stop)
	})
}

func (c *TTLCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
