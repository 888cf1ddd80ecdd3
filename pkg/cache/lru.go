package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultLRUSize is the number of entries kept by [NewLRUCache] when size <= 0.
const DefaultLRUSize = 1024

type lruEntry struct {
	data      []byte
	expiresAt time.Time
}

// LRUCache is a bounded in-process cache. Entries are evicted by recency
// and lazily on expiry.
type LRUCache struct {
	entries *lru.Cache[string, lruEntry]
}

// NewLRUCache creates an LRU cache holding at most size entries.
func NewLRUCache(size int) (*LRUCache, error) {
	if size <= 0 {
		size = DefaultLRUSize
	}
	entries, err := lru.New[string, lruEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{entries: entries}, nil
}

// Get retrieves a value from memory.
func (c *LRUCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.entries.Remove(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores a value in memory.
func (c *LRUCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	e := lruEntry{data: data}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.entries.Add(key, e)
	return nil
}

// Delete removes a value from memory.
func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Len returns the number of entries currently held.
func (c *LRUCache) Len() int { return c.entries.Len() }

// Close purges all entries.
func (c *LRUCache) Close() error {
	c.entries.Purge()
	return nil
}

var _ Cache = (*LRUCache)(nil)

// Layered checks a fast front cache before a slower backend and populates
// the front on backend hits. Writes go to both.
type Layered struct {
	front    Cache
	back     Cache
	frontTTL time.Duration
}

// DefaultFrontTTL bounds front entries when [NewLayered] is given no window.
const DefaultFrontTTL = time.Minute

// NewLayered combines front and back. frontTTL bounds how long any entry
// stays in the front cache, so a backend expiry or delete is observed within
// that window; values <= 0 use [DefaultFrontTTL].
func NewLayered(front, back Cache, frontTTL time.Duration) *Layered {
	if frontTTL <= 0 {
		frontTTL = DefaultFrontTTL
	}
	return &Layered{front: front, back: back, frontTTL: frontTTL}
}

// Get implements Cache.
func (l *Layered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, err := l.front.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, ok, err := l.back.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = l.front.Set(ctx, key, data, l.frontTTL)
	return data, true, nil
}

// Set implements Cache.
func (l *Layered) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	frontTTL := l.frontTTL
	if ttl > 0 {
		frontTTL = min(ttl, frontTTL)
	}
	_ = l.front.Set(ctx, key, data, frontTTL)
	return l.back.Set(ctx, key, data, ttl)
}

// Delete implements Cache.
func (l *Layered) Delete(ctx context.Context, key string) error {
	_ = l.front.Delete(ctx, key)
	return l.back.Delete(ctx, key)
}

// Close closes both layers, returning the backend's error.
func (l *Layered) Close() error {
	_ = l.front.Close()
	return l.back.Close()
}

var _ Cache = (*Layered)(nil)
