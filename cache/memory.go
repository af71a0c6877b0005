package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultMaxSize is the entry bound used when a non-positive size is given.
const DefaultMaxSize = 100

// cacheEntry holds a cached value with its timestamp.
type cacheEntry[V any] struct {
	value     V
	timestamp time.Time
}

// Stats counts cache activity since creation or the last Clear.
type Stats struct {
	Evictions   int // Entries removed to make room
	Expirations int // Entries removed because their TTL elapsed
}

// InMemoryCache is a bounded in-memory cache with TTL support.
//
// Entries are kept in insertion order. Reads never reorder them, so when the
// cache is full the oldest-inserted entry is evicted first (FIFO).
type InMemoryCache[V any] struct {
	mu      sync.Mutex
	entries *simplelru.LRU[string, cacheEntry[V]]
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	stats   Stats
}

// Option configures an InMemoryCache.
type Option func(*memoryOptions)

type memoryOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *memoryOptions) {
		o.now = now
	}
}

// NewInMemoryCache creates a cache holding at most maxSize entries.
// If maxSize is 0 or negative, DefaultMaxSize is used.
// If ttl is 0 or negative, entries never expire.
func NewInMemoryCache[V any](maxSize int, ttl time.Duration, opts ...Option) *InMemoryCache[V] {
	o := memoryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl < 0 {
		ttl = 0
	}

	// NewLRU only fails for a non-positive size.
	entries, _ := simplelru.NewLRU[string, cacheEntry[V]](maxSize, nil)

	return &InMemoryCache[V]{
		entries: entries,
		maxSize: maxSize,
		ttl:     ttl,
		now:     o.now,
	}
}

// Get retrieves a value from the cache.
// Returns the value and true if found and not expired, the zero value and false otherwise.
func (c *InMemoryCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.entries.Peek(key)
	if !ok {
		return zero, false
	}

	if c.expired(entry, c.now()) {
		c.entries.Remove(key)
		c.stats.Expirations++
		return zero, false
	}

	return entry.value, true
}

// Set stores a value in the cache, making room first if the cache is full.
func (c *InMemoryCache[V]) Set(key string, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.entries.Contains(key) && c.entries.Len() >= c.maxSize {
		c.sweep(now)
		if c.entries.Len() >= c.maxSize {
			c.entries.RemoveOldest()
			c.stats.Evictions++
		}
	}

	c.entries.Add(key, cacheEntry[V]{value: value, timestamp: now})
	return nil
}

// sweep drops expired entries (must be called with lock held).
func (c *InMemoryCache[V]) sweep(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for _, key := range c.entries.Keys() {
		entry, ok := c.entries.Peek(key)
		if ok && c.expired(entry, now) {
			c.entries.Remove(key)
			c.stats.Expirations++
		}
	}
}

func (c *InMemoryCache[V]) expired(entry cacheEntry[V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(entry.timestamp) >= c.ttl
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Clear removes all entries from the cache.
func (c *InMemoryCache[V]) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
	c.stats = Stats{}
	return nil
}

// Keys returns the keys of non-expired entries, oldest first.
func (c *InMemoryCache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	keys := make([]string, 0, c.entries.Len())
	for _, key := range c.entries.Keys() {
		if entry, ok := c.entries.Peek(key); ok && !c.expired(entry, now) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Entries returns all non-expired entries as key-value pairs.
func (c *InMemoryCache[V]) Entries() map[string]V {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	result := make(map[string]V, c.entries.Len())
	for _, key := range c.entries.Keys() {
		entry, ok := c.entries.Peek(key)
		if !ok || c.expired(entry, now) {
			continue
		}
		result[key] = entry.value
	}
	return result
}

// Stats returns eviction and expiration counters.
func (c *InMemoryCache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// MaxSize returns the entry bound.
func (c *InMemoryCache[V]) MaxSize() int {
	return c.maxSize
}

// Verify InMemoryCache implements Store
var _ Store[bool] = (*InMemoryCache[bool])(nil)
