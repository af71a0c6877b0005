package gatito

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by analytics deliveries and the
// beacon endpoints.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	perSecond  float64
	lastRefill time.Time
	now        func() time.Time
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Defaults to 60
	BurstSize         int // Defaults to RequestsPerMinute
}

// NewRateLimiter creates a limiter that starts with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}
	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	return &RateLimiter{
		tokens:     burst,
		capacity:   burst,
		perSecond:  rpm / 60.0,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.Allow() {
			return nil
		}

		timer := time.NewTimer(r.interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Allow takes a token if one is available.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refillLocked()
	if r.tokens < 1 {
		return false
	}
	r.tokens--
	return true
}

// Available returns the current number of tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refillLocked()
	return r.tokens
}

func (r *RateLimiter) interval() time.Duration {
	return time.Duration(float64(time.Second) / r.perSecond)
}

func (r *RateLimiter) refillLocked() {
	now := r.now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.perSecond
	if r.tokens > r.capacity {
		r.tokens = r.capacity
	}
}

// RateLimitedSink wraps an AnalyticsSink with rate limiting.
type RateLimitedSink struct {
	sink    AnalyticsSink
	limiter *RateLimiter
}

// NewRateLimitedSink creates a sink that waits for a token before each event.
func NewRateLimitedSink(sink AnalyticsSink, cfg RateLimitConfig) *RateLimitedSink {
	return &RateLimitedSink{sink: sink, limiter: NewRateLimiter(cfg)}
}

// Track implements AnalyticsSink.
func (s *RateLimitedSink) Track(ctx context.Context, event Event) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &SinkError{Message: "rate limit wait cancelled", Cause: err}
	}
	return s.sink.Track(ctx, event)
}

// Limiter returns the underlying limiter.
func (s *RateLimitedSink) Limiter() *RateLimiter {
	return s.limiter
}
