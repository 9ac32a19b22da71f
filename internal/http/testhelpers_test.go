package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
	"github.com/hillstay/hillstay/internal/domain/model"
	"github.com/hillstay/hillstay/internal/observability/notify"
	"github.com/hillstay/hillstay/internal/ports"
)

type fakeSession struct {
	mu       sync.Mutex
	snapshot domainauth.Session
	err      error

	guestRole domainauth.Role
	patch     *model.ProfilePatch
	link      *model.LinkRequest
	signOuts  int
}

func (f *fakeSession) Snapshot() domainauth.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

func (f *fakeSession) ContinueAsGuest(_ context.Context, role domainauth.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guestRole = role
	if f.err == nil {
		f.snapshot = domainauth.Session{UID: "anon-1", Anonymous: true, IsAuthenticated: true, Role: role}
	}
	return f.err
}

func (f *fakeSession) UpdateProfile(_ context.Context, patch model.ProfilePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patch = &patch
	return f.err
}

func (f *fakeSession) LinkCredentials(_ context.Context, req model.LinkRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.link = &req
	return f.err
}

func (f *fakeSession) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	f.snapshot = domainauth.ResetSession()
	return f.err
}

type fakeListings struct {
	page    model.ListingPage
	put     *model.Listing
	synced  []model.Listing
	deleted string
	err     error
}

func (f *fakeListings) List(context.Context) (model.ListingPage, error) { return f.page, f.err }

func (f *fakeListings) Put(_ context.Context, l model.Listing) (model.Listing, error) {
	f.put = &l
	if f.err != nil {
		return model.Listing{}, f.err
	}
	l.OwnerID = "owner-1"
	return l, nil
}

func (f *fakeListings) Delete(_ context.Context, id string) error {
	f.deleted = id
	return f.err
}

func (f *fakeListings) Sync(_ context.Context, listings []model.Listing) ([]model.Listing, error) {
	f.synced = listings
	return listings, f.err
}

type fakeLoginFlow struct {
	exchanged *ports.ExchangeInput
	beginErr  error
	exchErr   error
}

func (f *fakeLoginFlow) Begin(context.Context, ports.BeginInput) (string, string, string, error) {
	if f.beginErr != nil {
		return "", "", "", f.beginErr
	}
	return "https://login.example.com/authorize?state=st-1", "st-1", "nonce-1", nil
}

func (f *fakeLoginFlow) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	f.exchanged = &in
	if f.exchErr != nil {
		return domainauth.Identity{}, f.exchErr
	}
	return domainauth.Identity{UID: "u-1", ProviderID: "google.com"}, nil
}

type fakeDevSignIn struct {
	in *ports.DevSignInInput
}

func (f *fakeDevSignIn) SignIn(_ context.Context, in ports.DevSignInInput) (domainauth.Identity, error) {
	f.in = &in
	uid := in.UID
	if uid == "" {
		uid = "dev-user"
	}
	return domainauth.Identity{UID: uid, ProviderID: "password"}, nil
}

type staticNotices []notify.Notice

func (s staticNotices) List(limit int) []notify.Notice {
	if limit > 0 && len(s) > limit {
		return s[len(s)-limit:]
	}
	return s
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
