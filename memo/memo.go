// Package memo wraps single-argument functions with a bounded, time-expiring
// result cache.
//
// Cache keys are the JSON serialization of the argument, so structurally
// equal inputs share an entry regardless of identity. The cache is purely an
// optimization: a memoized function always returns what the wrapped function
// would.
//
// Basic usage:
//
//	isURL := memo.New(validate.URL, 200)
//	isURL.Call("https://example.com") // computed
//	isURL.Call("https://example.com") // cached for DefaultTTL
//	isURL.ClearCache()
package memo

import (
	"encoding/json"
	"errors"
	"reflect"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/ZaguanLabs/gatito/cache"
)

const (
	// DefaultTTL is how long a computed result stays valid.
	DefaultTTL = 5 * time.Minute

	// DefaultMaxSize bounds the in-memory cache when no size is given.
	DefaultMaxSize = cache.DefaultMaxSize
)

// Func is a memoized single-argument function.
type Func[K, V any] struct {
	fn    func(K) V
	store cache.Store[V]

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures the in-memory store created by New.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL overrides DefaultTTL. A non-positive TTL disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New memoizes fn in an in-memory FIFO cache of at most maxSize entries.
// If maxSize is 0 or negative, DefaultMaxSize is used.
func New[K, V any](fn func(K) V, maxSize int, opts ...Option) *Func[K, V] {
	o := options{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	store := cache.NewInMemoryCache[V](maxSize, o.ttl, cache.WithClock(o.now))
	return NewWithStore(fn, store)
}

// NewWithStore memoizes fn using an arbitrary store, such as a RedisCache
// shared between processes.
func NewWithStore[K, V any](fn func(K) V, store cache.Store[V]) *Func[K, V] {
	return &Func[K, V]{fn: fn, store: store}
}

// Call returns fn(in), serving a live cached result when one exists.
// Inputs that cannot be serialized bypass the cache.
func (f *Func[K, V]) Call(in K) V {
	key, err := Key(in)
	if err != nil {
		f.misses.Add(1)
		return f.fn(in)
	}

	if v, ok := f.store.Get(key); ok {
		f.hits.Add(1)
		return v
	}

	f.misses.Add(1)
	v := f.fn(in)
	_ = f.store.Set(key, v) // Ignore cache set errors
	return v
}

// ClearCache empties the cache unconditionally.
func (f *Func[K, V]) ClearCache() {
	_ = f.store.Clear()
}

// Stats reports cache hits and misses since creation.
type Stats struct {
	Hits   int64
	Misses int64
}

// Stats returns hit and miss counters.
func (f *Func[K, V]) Stats() Stats {
	return Stats{Hits: f.hits.Load(), Misses: f.misses.Load()}
}

// Store returns the backing store.
func (f *Func[K, V]) Store() cache.Store[V] {
	return f.store
}

// ErrLossyKey is returned by Key for input holding invalid UTF-8. The JSON
// encoder replaces such bytes with U+FFFD, so distinct inputs would share a key.
var ErrLossyKey = errors.New("memo: input is not valid UTF-8")

// Key serializes an argument into its cache key.
func Key(in any) (string, error) {
	if !validUTF8(reflect.ValueOf(in), 0) {
		return "", ErrLossyKey
	}
	data, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// validUTF8 reports whether every string reachable from v is valid UTF-8.
// Nesting beyond 64 levels is left to json.Marshal.
func validUTF8(v reflect.Value, depth int) bool {
	if !v.IsValid() || depth > 64 {
		return true
	}
	switch v.Kind() {
	case reflect.String:
		return utf8.ValidString(v.String())
	case reflect.Pointer, reflect.Interface:
		return v.IsNil() || validUTF8(v.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return true // encoded as base64
		}
		for i := 0; i < v.Len(); i++ {
			if !validUTF8(v.Index(i), depth+1) {
				return false
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !validUTF8(iter.Key(), depth+1) || !validUTF8(iter.Value(), depth+1) {
				return false
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if t.Field(i).IsExported() && !validUTF8(v.Field(i), depth+1) {
				return false
			}
		}
	}
	return true
}
