package ports

import (
	"context"

	"github.com/hillstay/hillstay/internal/observability/notify"
)

// AnalyticsSink delivers one analytics event to an external pipeline.
type AnalyticsSink interface {
	LogEvent(ctx context.Context, name string, attrs map[string]string) error
}

// EventEmitter is the non-blocking analytics dispatch used by services.
// Emit never blocks and never reports failure to the caller.
type EventEmitter interface {
	Emit(name string, attrs map[string]string)
}

// Notifier publishes user-visible transient notices.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notice)
}
