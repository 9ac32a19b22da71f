package authfeed

// Package authfeed provides the identity-change fan-out shared by identity providers.
// Changes are delivered serially, in publish order, on a single goroutine so that
// Publish never blocks and listeners may call back into the provider.

import (
	"log/slog"
	"slices"
	"sync"

	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
	"github.com/hillstay/hillstay/internal/ports"
)

type delivery struct {
	// target is the single listener to deliver to; zero means every listener.
	target   uint64
	identity *domainauth.Identity
}

// Feed tracks the current identity and notifies subscribers of changes.
type Feed struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []delivery
	listeners map[uint64]ports.IdentityListener
	nextID    uint64
	current   *domainauth.Identity
	closed    bool

	logger *slog.Logger
	done   chan struct{}
}

// New starts a feed with no current identity.
func New(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Feed{
		listeners: make(map[uint64]ports.IdentityListener),
		logger:    logger.With("component", "identity_feed"),
		done:      make(chan struct{}),
	}
	f.cond = sync.NewCond(&f.mu)
	go f.run()
	return f
}

// Subscribe registers fn. The current identity (possibly nil) is delivered to fn first.
func (f *Feed) Subscribe(fn ports.IdentityListener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || fn == nil {
		return func() {}
	}
	f.nextID++
	id := f.nextID
	f.listeners[id] = fn
	f.enqueueLocked(delivery{target: id, identity: copyIdentity(f.current)})

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.listeners, id)
			f.mu.Unlock()
		})
	}
}

// Publish makes id current and queues it for every listener.
func (f *Feed) Publish(id *domainauth.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.current = copyIdentity(id)
	f.enqueueLocked(delivery{identity: copyIdentity(id)})
}

// Current returns a copy of the current identity, or nil when signed out.
func (f *Feed) Current() *domainauth.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyIdentity(f.current)
}

// Close stops delivery after the queued changes have been delivered.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		<-f.done
		return
	}
	f.closed = true
	f.cond.Broadcast()
	f.mu.Unlock()
	<-f.done
}

func (f *Feed) enqueueLocked(d delivery) {
	f.queue = append(f.queue, d)
	f.cond.Signal()
}

func (f *Feed) run() {
	defer close(f.done)
	for {
		f.mu.Lock()
		for len(f.queue) == 0 && !f.closed {
			f.cond.Wait()
		}
		if len(f.queue) == 0 {
			f.mu.Unlock()
			return
		}
		d := f.queue[0]
		f.queue[0] = delivery{}
		f.queue = f.queue[1:]
		targets := f.targetsLocked(d.target)
		f.mu.Unlock()

		for _, fn := range targets {
			f.deliver(fn, d.identity)
		}
	}
}

func (f *Feed) targetsLocked(target uint64) []ports.IdentityListener {
	if target != 0 {
		if fn, ok := f.listeners[target]; ok {
			return []ports.IdentityListener{fn}
		}
		return nil
	}
	ids := make([]uint64, 0, len(f.listeners))
	for id := range f.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]ports.IdentityListener, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.listeners[id])
	}
	return out
}

func (f *Feed) deliver(fn ports.IdentityListener, id *domainauth.Identity) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("identity listener panicked", "panic", r)
		}
	}()
	fn(copyIdentity(id))
}

func copyIdentity(id *domainauth.Identity) *domainauth.Identity {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}
