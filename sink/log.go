package sink

import (
	"context"
	"log/slog"
)

// LogSink writes events to a logger. It is the fallback when no collector
// endpoint is configured.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink creates a sink logging at level. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger, level slog.Level) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger, level: level}
}

// Track logs the event with its params as attributes.
func (s *LogSink) Track(ctx context.Context, e Event) error {
	attrs := make([]slog.Attr, 0, len(e.Params)+2)
	attrs = append(attrs, slog.Time("ts", e.Timestamp))
	if e.ID != "" {
		attrs = append(attrs, slog.String("id", e.ID))
	}
	for k, v := range e.Params {
		attrs = append(attrs, slog.Any(k, v))
	}
	s.logger.LogAttrs(ctx, s.level, "analytics "+e.Name, attrs...)
	return nil
}

var _ AnalyticsSink = (*LogSink)(nil)
