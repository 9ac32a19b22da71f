package service

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/hillstay/hillstay/internal/observability/metrics"
	"github.com/hillstay/hillstay/internal/ports"
)

const (
	defaultAnalyticsQueueSize = 256
	defaultAnalyticsTimeout   = 2 * time.Second
)

// DispatcherOptions configures the analytics dispatcher.
type DispatcherOptions struct {
	Sink      ports.AnalyticsSink
	QueueSize int
	Timeout   time.Duration
	Logger    *slog.Logger
	Metrics   metrics.Recorder
}

type analyticsEvent struct {
	name  string
	attrs map[string]string
}

// Dispatcher decouples analytics delivery from session operations. Emit never blocks;
// events are dropped when the queue is full or the dispatcher is closed.
type Dispatcher struct {
	sink    ports.AnalyticsSink
	timeout time.Duration
	logger  *slog.Logger
	metrics metrics.Recorder

	mu     sync.RWMutex
	closed bool
	queue  chan analyticsEvent
}

var _ ports.EventEmitter = (*Dispatcher)(nil)

// NewDispatcher constructs a Dispatcher. Run must be started for events to be delivered.
func NewDispatcher(opts DispatcherOptions) (*Dispatcher, error) {
	if opts.Sink == nil {
		return nil, errors.New("analytics sink is required")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultAnalyticsQueueSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultAnalyticsTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	return &Dispatcher{
		sink:    opts.Sink,
		timeout: opts.Timeout,
		logger:  opts.Logger.With("component", "analytics_dispatcher"),
		metrics: opts.Metrics,
		queue:   make(chan analyticsEvent, opts.QueueSize),
	}, nil
}

// Emit enqueues an event without blocking.
func (d *Dispatcher) Emit(name string, attrs map[string]string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(name, "closed")
		return
	}
	select {
	case d.queue <- analyticsEvent{name: name, attrs: maps.Clone(attrs)}:
	default:
		d.drop(name, "queue_full")
	}
}

func (d *Dispatcher) drop(name, reason string) {
	d.metrics.RecordAnalytics("dropped")
	d.logger.Warn("analytics event dropped", "event", name, "reason", reason)
}

// Run delivers queued events until ctx is done or Close is called, then flushes what is buffered.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.flush(ctx)
			return nil
		case ev, ok := <-d.queue:
			if !ok {
				return nil
			}
			d.deliver(ctx, ev)
		}
	}
}

// Close stops accepting events. Buffered events are still delivered by Run.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.queue)
}

func (d *Dispatcher) flush(ctx context.Context) {
	for {
		select {
		case ev, ok := <-d.queue:
			if !ok {
				return
			}
			d.deliver(ctx, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev analyticsEvent) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()
	if err := d.sink.LogEvent(sendCtx, ev.name, ev.attrs); err != nil {
		d.metrics.RecordAnalytics(metrics.ResultError)
		d.logger.Warn("analytics delivery failed", "event", ev.name, "error", err)
		return
	}
	d.metrics.RecordAnalytics(metrics.ResultSuccess)
}
