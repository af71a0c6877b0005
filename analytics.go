package gatito

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a single analytics hit. ID is unique per event so a collector can
// drop redelivered retries.
type Event struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name"`
	Params    map[string]any `json:"params,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// AnalyticsSink receives analytics events. A nil sink disables reporting.
type AnalyticsSink interface {
	Track(ctx context.Context, event Event) error
}

// WebVital is a Core Web Vitals measurement reported by the page.
type WebVital struct {
	Name  string  `json:"name"`  // LCP, FCP, CLS, INP, FID or TTFB
	Value float64 `json:"value"` // Milliseconds, or unitless for CLS
	ID    string  `json:"id"`    // Unique per page load
}

// Web Vital ratings.
const (
	RatingGood             = "good"
	RatingNeedsImprovement = "needs-improvement"
	RatingPoor             = "poor"
)

// webVitalThresholds maps a metric to its good and poor boundaries.
var webVitalThresholds = map[string][2]float64{
	"LCP":  {2500, 4000},
	"FCP":  {1800, 3000},
	"CLS":  {0.1, 0.25},
	"INP":  {200, 500},
	"FID":  {100, 300},
	"TTFB": {800, 1800},
}

// RateWebVital classifies a measurement. Unknown metrics return "".
func RateWebVital(v WebVital) string {
	th, ok := webVitalThresholds[v.Name]
	if !ok {
		return ""
	}
	switch {
	case v.Value <= th[0]:
		return RatingGood
	case v.Value <= th[1]:
		return RatingNeedsImprovement
	default:
		return RatingPoor
	}
}

// Reporter sends analytics events without blocking the caller.
// Delivery failures are logged and never returned.
type Reporter struct {
	sink    AnalyticsSink
	consent func() ConsentState
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithConsent gates events on analytics consent.
func WithConsent(state func() ConsentState) ReporterOption {
	return func(r *Reporter) {
		r.consent = state
	}
}

// WithReporterLogger sets the logger for delivery failures.
func WithReporterLogger(l *slog.Logger) ReporterOption {
	return func(r *Reporter) {
		r.logger = l
	}
}

// WithSendTimeout bounds each delivery (default 10s).
func WithSendTimeout(d time.Duration) ReporterOption {
	return func(r *Reporter) {
		r.timeout = d
	}
}

// NewReporter creates a reporter. sink may be nil.
func NewReporter(sink AnalyticsSink, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		sink:    sink,
		logger:  slog.Default(),
		timeout: 10 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports whether events would currently be sent.
func (r *Reporter) Enabled() bool {
	if r == nil || r.sink == nil {
		return false
	}
	return r.consent == nil || r.consent().Allows(ConsentAnalytics)
}

// TrackEvent sends an event in the background.
func (r *Reporter) TrackEvent(ctx context.Context, name string, params map[string]any) {
	if !r.Enabled() {
		return
	}

	event := Event{ID: uuid.New().String(), Name: name, Params: params, Timestamp: r.now()}
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		sendCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		if err := r.sink.Track(sendCtx, event); err != nil {
			r.logger.Warn("analytics event dropped", "event", name, "error", err)
		}
	}()
}

// ReportWebVital sends a Web Vitals measurement with its rating.
func (r *Reporter) ReportWebVital(ctx context.Context, v WebVital) {
	r.TrackEvent(ctx, "web_vital", map[string]any{
		"metric": v.Name,
		"value":  v.Value,
		"id":     v.ID,
		"rating": RateWebVital(v),
	})
}

// CaptureError records an error. It is always logged; it is also sent to
// the sink when analytics consent allows.
func (r *Reporter) CaptureError(ctx context.Context, err error, attrs map[string]any) {
	if err == nil {
		return
	}
	if r == nil {
		slog.Default().Error("captured error", "error", err)
		return
	}

	args := []any{"error", err}
	for k, v := range attrs {
		args = append(args, k, v)
	}
	r.logger.Error("captured error", args...)

	params := map[string]any{"message": err.Error()}
	for k, v := range attrs {
		params[k] = v
	}
	r.TrackEvent(ctx, "exception", params)
}

// Flush waits for in-flight deliveries.
func (r *Reporter) Flush() {
	if r == nil {
		return
	}
	r.wg.Wait()
}
