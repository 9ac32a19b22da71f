package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func limitedRequest(t *testing.T, h http.Handler, remote string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/session/guest", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: 60, Burst: 2, Clock: clock.Now}, discardLogger())
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.Equal(t, http.StatusNoContent, limitedRequest(t, h, "10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusNoContent, limitedRequest(t, h, "10.0.0.1:2222").Code)

	rec := limitedRequest(t, h, "10.0.0.1:3333")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"error":"rate_limited"`)

	// Other clients keep their own budget.
	assert.Equal(t, http.StatusNoContent, limitedRequest(t, h, "10.0.0.2:1111").Code)

	clock.now = clock.now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, limitedRequest(t, h, "10.0.0.1:4444").Code)
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(RateLimiterConfig{PerMinute: 30, Burst: 1, IdleTTL: time.Minute, Clock: clock.Now}, discardLogger())
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	limitedRequest(t, h, "10.0.0.1:1")
	limitedRequest(t, h, "10.0.0.2:1")
	assert.Equal(t, 2, rl.Len())

	clock.now = clock.now.Add(2 * time.Minute)
	limitedRequest(t, h, "10.0.0.3:1")
	assert.Equal(t, 1, rl.Len())
}

func TestValidateCookieDomain(t *testing.T) {
	cases := []struct {
		domain  string
		wantErr bool
	}{
		{domain: ""},
		{domain: "hillstay.example.com"},
		{domain: ".hillstay.in"},
		{domain: "com", wantErr: true},
		{domain: "co.uk", wantErr: true},
		{domain: "127.0.0.1", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.domain, func(t *testing.T) {
			err := ValidateCookieDomain(tc.domain)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
