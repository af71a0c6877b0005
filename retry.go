package gatito

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds configuration for analytics delivery retries.
type RetryConfig struct {
	MaxRetries int           // Attempts after the first one
	BaseDelay  time.Duration // Delay before the first retry, doubled each time
	MaxDelay   time.Duration // Cap on a single delay
}

// DefaultRetryConfig keeps retries short: analytics is best effort.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry runs fn until it succeeds, fails with a non-retryable error,
// runs out of attempts or ctx is done. Delays grow exponentially.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		timer := time.NewTimer(backoff(cfg, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

func backoff(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay * time.Duration(1<<attempt)
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// IsRetryable reports whether err is a *SinkError marked retryable.
// Context errors are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var sinkErr *SinkError
	if errors.As(err, &sinkErr) {
		return sinkErr.Retryable
	}
	return false
}

// RetryableSink wraps an AnalyticsSink with retry logic.
type RetryableSink struct {
	sink   AnalyticsSink
	config RetryConfig
}

// NewRetryableSink creates a sink that retries retryable delivery failures.
func NewRetryableSink(sink AnalyticsSink, cfg RetryConfig) *RetryableSink {
	return &RetryableSink{sink: sink, config: cfg}
}

// Track implements AnalyticsSink with retry logic.
func (s *RetryableSink) Track(ctx context.Context, event Event) error {
	_, err := WithRetry(ctx, s.config, func() (struct{}, error) {
		return struct{}{}, s.sink.Track(ctx, event)
	})
	return err
}
