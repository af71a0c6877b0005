package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/gatito"
)

// HTTPSink posts each event as JSON to a collector endpoint.
type HTTPSink struct {
	endpoint string
	client   *http.Client
	headers  map[string]string
}

// HTTPConfig holds configuration for the HTTP sink.
type HTTPConfig struct {
	Endpoint          string              // Collector URL (required)
	Client            *http.Client        // Default: client with Timeout
	Timeout           time.Duration       // Per request timeout (default: 5s)
	Headers           map[string]string   // Extra request headers, e.g. an API key
	RequestsPerMinute int                 // Token bucket rate for NewCollectorSink (default: 120)
	Retry             *gatito.RetryConfig // Default: gatito.DefaultRetryConfig()
}

// NewHTTPSink creates an HTTP sink without retries or rate limiting.
func NewHTTPSink(cfg HTTPConfig) (*HTTPSink, error) {
	if cfg.Endpoint == "" {
		return nil, &gatito.ConfigError{Message: "analytics endpoint is required"}
	}
	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return nil, &gatito.ConfigError{Message: fmt.Sprintf("analytics endpoint %q must be http or https", cfg.Endpoint)}
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTPSink{endpoint: cfg.Endpoint, client: client, headers: cfg.Headers}, nil
}

// NewCollectorSink creates an HTTP sink wrapped with retries and a rate
// limiter. Retries of one event share a single token.
func NewCollectorSink(cfg HTTPConfig) (AnalyticsSink, error) {
	h, err := NewHTTPSink(cfg)
	if err != nil {
		return nil, err
	}

	retry := gatito.DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 120
	}

	return gatito.NewRateLimitedSink(
		gatito.NewRetryableSink(h, retry),
		gatito.RateLimitConfig{RequestsPerMinute: rpm},
	), nil
}

// Track posts the event. 429 and 5xx responses and transport failures are
// reported as retryable.
func (s *HTTPSink) Track(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return &gatito.SinkError{Message: "failed to encode event", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return &gatito.SinkError{Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", gatito.UserAgent())
	if e.ID != "" {
		req.Header.Set("Idempotency-Key", e.ID)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &gatito.SinkError{
			Message:   "collector request failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &gatito.SinkError{
		Message:   fmt.Sprintf("collector returned %s", resp.Status),
		Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
	}
}

// isRetryableError classifies transport failures. Context errors are
// handled by gatito.IsRetryable.
func isRetryableError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"eof",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

var _ AnalyticsSink = (*HTTPSink)(nil)
