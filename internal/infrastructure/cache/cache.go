// Package cache is the bounded, time-boxed store for GET responses.
//
// Keys are request paths including their query string. Entries expire after
// the TTL and are evicted least-recently-used at capacity. A mutation on a
// path invalidates that path and every query variant of it.
package cache

import (
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultMaxSize = 500
	DefaultTTL     = 5 * time.Minute
)

// Config configures the response cache
type Config struct {
	MaxSize int
	TTL     time.Duration
}

// DefaultConfig returns the standard cache sizing
func DefaultConfig() Config {
	return Config{MaxSize: DefaultMaxSize, TTL: DefaultTTL}
}

// Entry is one cached response
type Entry struct {
	Key          string
	Data         interface{}
	StatusCode   int
	InsertedAt   time.Time
	lastAccessed atomic.Int64
}

// LastAccessed returns when the entry was last read
func (e *Entry) LastAccessed() time.Time {
	return time.Unix(0, e.lastAccessed.Load())
}

// Stats is a snapshot of cache counters
type Stats struct {
	Size      int     `json:"size"`
	MaxSize   int     `json:"maxSize"`
	TTL       string  `json:"ttl"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hitRate"`
}

// Cache is safe for concurrent use
type Cache struct {
	store   *lru.Cache[string, *Entry]
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache; non-positive settings fall back to defaults
func New(cfg Config) *Cache {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	// lru.New only fails on a non-positive size.
	store, _ := lru.New[string, *Entry](cfg.MaxSize)
	return &Cache{
		store:   store,
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		now:     time.Now,
	}
}

// Get returns a live entry and records a hit, or records a miss
func (c *Cache) Get(key string) (*Entry, bool) {
	entry, ok := c.store.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	now := c.now()
	if now.Sub(entry.InsertedAt) >= c.ttl {
		c.store.Remove(key)
		c.misses.Add(1)
		return nil, false
	}

	entry.lastAccessed.Store(now.UnixNano())
	c.hits.Add(1)
	return entry, true
}

// Set stores a response under key
func (c *Cache) Set(key string, data interface{}, statusCode int) {
	now := c.now()
	entry := &Entry{
		Key:        key,
		Data:       data,
		StatusCode: statusCode,
		InsertedAt: now,
	}
	entry.lastAccessed.Store(now.UnixNano())

	if evicted := c.store.Add(key, entry); evicted {
		c.evictions.Add(1)
	}
}

// InvalidatePath drops path and every cached query variant of it. It
// returns the number of entries removed.
func (c *Cache) InvalidatePath(path string) int {
	base := path
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	prefix := base + "?"

	removed := 0
	for _, key := range c.store.Keys() {
		if key == base || strings.HasPrefix(key, prefix) {
			if c.store.Remove(key) {
				removed++
			}
		}
	}
	return removed
}

// Clear drops every entry and resets counters
func (c *Cache) Clear() {
	c.store.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Len returns the number of stored entries, expired ones included
func (c *Cache) Len() int {
	return c.store.Len()
}

// Stats returns current counters
func (c *Cache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Size:      c.store.Len(),
		MaxSize:   c.maxSize,
		TTL:       c.ttl.String(),
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   rate,
	}
}
