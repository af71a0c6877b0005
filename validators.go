package gatito

import (
	"github.com/ZaguanLabs/gatito/cache"
	"github.com/ZaguanLabs/gatito/memo"
	"github.com/ZaguanLabs/gatito/validate"
)

// ValidatorSet holds the predicates the schema generator runs.
type ValidatorSet struct {
	URL          validate.Func
	Currency     validate.Func
	Availability validate.Func
	Rating       validate.Func
	ReviewCount  validate.Func

	memos  []*memo.Func[string, bool]
	shared cache.Store[bool] // Set when every memo uses one store
}

// StrictValidators returns the uncached predicates.
func StrictValidators() *ValidatorSet {
	return &ValidatorSet{
		URL:          validate.URL,
		Currency:     validate.CurrencyCode,
		Availability: validate.AvailabilityState,
		Rating:       validate.Rating,
		ReviewCount:  validate.ReviewCount,
	}
}

// CachedValidators returns predicates memoized in independent in-memory
// caches of at most maxSize entries each.
func CachedValidators(maxSize int, opts ...memo.Option) *ValidatorSet {
	return cachedSet(func(fn validate.Func) *memo.Func[string, bool] {
		return memo.New(fn, maxSize, opts...)
	})
}

// SharedValidators returns predicates memoized in a shared store, such as a
// cache.RedisCache. Keys are namespaced per predicate. The set adds no size
// bound of its own: a RedisCache holds entries until their TTL expires.
func SharedValidators(store cache.Store[bool]) *ValidatorSet {
	s := cachedSet(func(fn validate.Func) *memo.Func[string, bool] {
		return memo.NewWithStore(fn, store)
	})
	s.shared = store
	return s
}

func cachedSet(wrap func(validate.Func) *memo.Func[string, bool]) *ValidatorSet {
	strict := StrictValidators()
	s := &ValidatorSet{}

	bind := func(name string, fn validate.Func) validate.Func {
		m := wrap(namespaced(name, fn))
		s.memos = append(s.memos, m)
		return func(in string) bool {
			return m.Call(name + "\x00" + in)
		}
	}

	s.URL = bind("url", strict.URL)
	s.Currency = bind("currency", strict.Currency)
	s.Availability = bind("availability", strict.Availability)
	s.Rating = bind("rating", strict.Rating)
	s.ReviewCount = bind("reviewCount", strict.ReviewCount)
	return s
}

// namespaced strips the predicate prefix added by bind before validating.
func namespaced(name string, fn validate.Func) func(string) bool {
	prefix := name + "\x00"
	return func(in string) bool {
		return fn(in[len(prefix):])
	}
}

// ClearCache empties every memoized predicate. A shared store is cleared
// once. It is a no-op for strict sets.
func (s *ValidatorSet) ClearCache() {
	if s.shared != nil {
		_ = s.shared.Clear()
		return
	}
	for _, m := range s.memos {
		m.ClearCache()
	}
}

// Stats sums hit and miss counters over the memoized predicates.
func (s *ValidatorSet) Stats() memo.Stats {
	var total memo.Stats
	for _, m := range s.memos {
		st := m.Stats()
		total.Hits += st.Hits
		total.Misses += st.Misses
	}
	return total
}
