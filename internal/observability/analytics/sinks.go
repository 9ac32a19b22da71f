package analytics

import (
	"context"
	"errors"
	"log/slog"
)

// LogSink writes analytics events to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink constructs a LogSink; a nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "analytics")}
}

// LogEvent logs the event with its attributes.
func (s *LogSink) LogEvent(ctx context.Context, name string, attrs map[string]string) error {
	args := make([]any, 0, 2+2*len(attrs))
	args = append(args, "event", name)
	for k, v := range attrs {
		args = append(args, k, v)
	}
	s.logger.InfoContext(ctx, "analytics event", args...)
	return nil
}

// EventLogger is the single-method shape shared by all sinks.
type EventLogger interface {
	LogEvent(ctx context.Context, name string, attrs map[string]string) error
}

// MultiSink fans an event out to every sink and joins their errors.
type MultiSink []EventLogger

// LogEvent delivers to all sinks even when one fails.
func (m MultiSink) LogEvent(ctx context.Context, name string, attrs map[string]string) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.LogEvent(ctx, name, attrs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
