package gatito

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// ConsentCategory groups trackers that share a consent decision.
type ConsentCategory string

const (
	// ConsentNecessary trackers are always allowed.
	ConsentNecessary ConsentCategory = "necessary"
	// ConsentAnalytics covers measurement such as Web Vitals and page views.
	ConsentAnalytics ConsentCategory = "analytics"
	// ConsentMarketing covers advertising pixels.
	ConsentMarketing ConsentCategory = "marketing"
)

// ConsentCookieName is the cookie that stores the visitor's decision.
const ConsentCookieName = "gatito_consent"

// ConsentState is the visitor's decision per optional category.
type ConsentState struct {
	Analytics bool
	Marketing bool
	Decided   bool // False until the visitor answers the banner
}

// Allows reports whether trackers of category c may load.
func (s ConsentState) Allows(c ConsentCategory) bool {
	switch c {
	case ConsentNecessary:
		return true
	case ConsentAnalytics:
		return s.Analytics
	case ConsentMarketing:
		return s.Marketing
	default:
		return false
	}
}

// String encodes the state as a cookie value, e.g. "analytics=1|marketing=0".
func (s ConsentState) String() string {
	if !s.Decided {
		return ""
	}
	flag := func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	}
	return "analytics=" + flag(s.Analytics) + "|marketing=" + flag(s.Marketing)
}

// ParseConsent decodes a cookie value. Unknown or malformed parts are
// treated as refusals.
func ParseConsent(value string) ConsentState {
	var s ConsentState
	if strings.TrimSpace(value) == "" {
		return s
	}

	s.Decided = true
	for _, part := range strings.Split(value, "|") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		granted := v == "1"
		switch ConsentCategory(k) {
		case ConsentAnalytics:
			s.Analytics = granted
		case ConsentMarketing:
			s.Marketing = granted
		}
	}
	return s
}

// Tracker is a third-party script gated by consent.
type Tracker struct {
	Name     string          `yaml:"name"`
	Category ConsentCategory `yaml:"category"`
	Src      string          `yaml:"src"`    // External script URL
	Inline   string          `yaml:"inline"` // Inline bootstrap snippet
}

// AllowedTrackers returns the trackers state permits, sorted by name.
func AllowedTrackers(state ConsentState, trackers []Tracker) []Tracker {
	var out []Tracker
	for _, t := range trackers {
		if state.Allows(t.Category) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ConsentManager tracks the current consent state and notifies reset hooks
// when consent is withdrawn.
type ConsentManager struct {
	mu        sync.Mutex
	state     ConsentState
	updatedAt time.Time
	onReset   []func()
	now       func() time.Time
}

// NewConsentManager creates a manager starting from initial.
func NewConsentManager(initial ConsentState) *ConsentManager {
	return &ConsentManager{state: initial, now: time.Now}
}

// OnReset registers a hook run by Reset and by Update when a previously
// granted category is revoked.
func (m *ConsentManager) OnReset(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReset = append(m.onReset, fn)
}

// State returns the current state.
func (m *ConsentManager) State() ConsentState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// UpdatedAt returns when the state last changed.
func (m *ConsentManager) UpdatedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updatedAt
}

// Update records a new decision. It returns true if any category was revoked.
func (m *ConsentManager) Update(next ConsentState) bool {
	m.mu.Lock()
	prev := m.state
	next.Decided = true
	m.state = next
	m.updatedAt = m.now()
	hooks := append([]func(){}, m.onReset...)
	m.mu.Unlock()

	revoked := (prev.Analytics && !next.Analytics) || (prev.Marketing && !next.Marketing)
	if revoked {
		for _, fn := range hooks {
			fn()
		}
	}
	return revoked
}

// Reset withdraws every optional consent and runs the reset hooks.
func (m *ConsentManager) Reset() {
	m.mu.Lock()
	m.state = ConsentState{}
	m.updatedAt = m.now()
	hooks := append([]func(){}, m.onReset...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}
