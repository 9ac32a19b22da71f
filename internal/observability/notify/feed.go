package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultFeedCapacity bounds the feed when no capacity is configured.
const DefaultFeedCapacity = 50

// FeedOptions configures a Feed.
type FeedOptions struct {
	Capacity int
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Feed is a bounded in-memory buffer of recent notices. The oldest notice is
// evicted when the feed is full. Safe for concurrent use.
type Feed struct {
	mu     sync.Mutex
	buf    []Notice
	next   int
	full   bool
	logger *slog.Logger
	clock  func() time.Time
}

var _ Sink = (*Feed)(nil)

// NewFeed constructs a Feed.
func NewFeed(opts FeedOptions) *Feed {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Feed{
		buf:    make([]Notice, capacity),
		logger: logger.With("component", "notice_feed"),
		clock:  clock,
	}
}

// Notify appends n, filling in ID, level and time when unset.
func (f *Feed) Notify(ctx context.Context, n Notice) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Level == "" {
		n.Level = LevelError
	}
	if n.Time.IsZero() {
		n.Time = f.clock().UTC()
	}

	f.mu.Lock()
	f.buf[f.next] = n
	f.next = (f.next + 1) % len(f.buf)
	if f.next == 0 {
		f.full = true
	}
	f.mu.Unlock()

	f.logger.InfoContext(ctx, "notice published",
		"level", n.Level,
		"code", n.Code,
		"operation", n.Operation,
		"message", n.Message,
	)
}

// List returns notices oldest first. When limit > 0 only the newest limit notices are returned.
func (f *Feed) List(limit int) []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Notice
	if f.full {
		out = make([]Notice, 0, len(f.buf))
		out = append(out, f.buf[f.next:]...)
		out = append(out, f.buf[:f.next]...)
	} else {
		out = append([]Notice(nil), f.buf[:f.next]...)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Clear drops all notices.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.buf {
		f.buf[i] = Notice{}
	}
	f.next = 0
	f.full = false
}
