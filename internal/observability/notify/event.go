package notify

import (
	"context"
	"time"
)

// Level constants for user-visible notices.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Notice is a transient, user-visible message surfaced after a failed or notable operation.
type Notice struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Code      string    `json:"code,omitempty"`
	Operation string    `json:"operation,omitempty"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}

// Sink describes a destination capable of consuming notices.
type Sink interface {
	Notify(ctx context.Context, n Notice)
}

// SinkFunc adapts a function to Sink. A nil SinkFunc drops notices.
type SinkFunc func(ctx context.Context, n Notice)

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, n Notice) {
	if f == nil {
		return
	}
	f(ctx, n)
}
