package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
	"github.com/hillstay/hillstay/internal/observability/notify"
	"github.com/hillstay/hillstay/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*FakeIdentityProvider)(nil)
	_ ports.CredentialLinker = (*FakeIdentityProvider)(nil)
	_ ports.EventEmitter     = (*RecordingEmitter)(nil)
	_ ports.Notifier         = (*RecordingNotifier)(nil)
)

// FakeIdentityProvider delivers identity changes synchronously on the calling goroutine,
// which keeps controller tests deterministic.
type FakeIdentityProvider struct {
	SignInAnonymouslyFunc func(ctx context.Context) (domainauth.Identity, error)
	SignOutFunc           func(ctx context.Context) error
	LinkCredentialsFunc   func(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error)

	mu            sync.Mutex
	listeners     map[int]ports.IdentityListener
	nextID        int
	current       *domainauth.Identity
	anonCount     int
	signOutCalls  int
	subscriptions int
}

// NewFakeIdentityProvider creates a provider with no current identity.
func NewFakeIdentityProvider() *FakeIdentityProvider {
	return &FakeIdentityProvider{listeners: make(map[int]ports.IdentityListener)}
}

// Subscribe registers fn. Unlike real providers the current identity is not replayed.
func (f *FakeIdentityProvider) Subscribe(fn ports.IdentityListener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.listeners[id] = fn
	f.subscriptions++
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

// Emit makes id current and delivers it to every listener before returning.
func (f *FakeIdentityProvider) Emit(id *domainauth.Identity) {
	f.mu.Lock()
	if id != nil {
		cp := *id
		f.current = &cp
	} else {
		f.current = nil
	}
	listeners := make([]ports.IdentityListener, 0, len(f.listeners))
	for i := 1; i <= f.nextID; i++ {
		if fn, ok := f.listeners[i]; ok {
			listeners = append(listeners, fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range listeners {
		if id == nil {
			fn(nil)
			continue
		}
		cp := *id
		fn(&cp)
	}
}

// SignInAnonymously issues "anon-N" identities unless overridden.
func (f *FakeIdentityProvider) SignInAnonymously(ctx context.Context) (domainauth.Identity, error) {
	if f.SignInAnonymouslyFunc != nil {
		return f.SignInAnonymouslyFunc(ctx)
	}
	f.mu.Lock()
	f.anonCount++
	id := domainauth.Identity{UID: fmt.Sprintf("anon-%d", f.anonCount), IsAnonymous: true, ProviderID: "anonymous"}
	f.mu.Unlock()
	f.Emit(&id)
	return id, nil
}

// SignOut clears the identity unless overridden.
func (f *FakeIdentityProvider) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOutCalls++
	f.mu.Unlock()
	if f.SignOutFunc != nil {
		return f.SignOutFunc(ctx)
	}
	f.Emit(nil)
	return nil
}

// LinkCredentials upgrades the current anonymous identity unless overridden.
func (f *FakeIdentityProvider) LinkCredentials(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	if f.LinkCredentialsFunc != nil {
		return f.LinkCredentialsFunc(ctx, creds)
	}
	cur := f.Current()
	if cur == nil {
		return domainauth.Identity{}, errors.New("no current identity")
	}
	linked := *cur
	linked.IsAnonymous = false
	linked.Email = creds.Email
	linked.ProviderID = "password"
	if creds.DisplayName != "" {
		linked.DisplayName = creds.DisplayName
	}
	f.Emit(&linked)
	return linked, nil
}

// Current returns a copy of the current identity.
func (f *FakeIdentityProvider) Current() *domainauth.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return nil
	}
	cp := *f.current
	return &cp
}

// SignOutCalls reports how many times SignOut was invoked.
func (f *FakeIdentityProvider) SignOutCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOutCalls
}

// Subscriptions reports how many times Subscribe was invoked.
func (f *FakeIdentityProvider) Subscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscriptions
}

// ListenerCount reports the number of live subscriptions.
func (f *FakeIdentityProvider) ListenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// Event is one recorded analytics event.
type Event struct {
	Name  string
	Attrs map[string]string
}

// RecordingEmitter records emitted analytics events.
type RecordingEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (r *RecordingEmitter) Emit(name string, attrs map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[string]string, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	r.events = append(r.events, Event{Name: name, Attrs: cp})
}

// Events returns a copy of the recorded events.
func (r *RecordingEmitter) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the recorded event names in order.
func (r *RecordingEmitter) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

// RecordingNotifier records published notices.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (r *RecordingNotifier) Notify(_ context.Context, n notify.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *RecordingNotifier) Notices() []notify.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notice(nil), r.notices...)
}
