package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hillstay/hillstay/internal/observability/metrics"
)

type statusRecorder struct {
	metrics.Nop
	statuses []int
}

func (r *statusRecorder) RecordHTTPStatus(code int) { r.statuses = append(r.statuses, code) }

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestLogging_RecordsStatus(t *testing.T) {
	rec := &statusRecorder{}
	h := Logging(discardLogger(), rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/y", nil))

	assert.Equal(t, []int{http.StatusTeapot, http.StatusTeapot}, rec.statuses)
}

func TestLogging_DefaultsToOK(t *testing.T) {
	rec := &statusRecorder{}
	h := Logging(discardLogger(), rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []int{http.StatusOK}, rec.statuses)
}

func TestRecover(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() { h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil)) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLimitBody(t *testing.T) {
	router := LimitBody(16)(NewRouter(RouterServices{Session: &fakeSession{}}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/session/guest", strings.NewReader(`{"role":"`+strings.Repeat("x", 64)+`"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
