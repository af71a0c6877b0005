// Package cache provides result stores for memoized functions.
package cache

// Store is the interface for memoization result storage.
type Store[V any] interface {
	// Get retrieves a cached value. Returns the zero value and false if not found or expired.
	Get(key string) (V, bool)

	// Set stores a value in the cache.
	Set(key string, value V) error

	// Clear removes every entry.
	Clear() error
}
