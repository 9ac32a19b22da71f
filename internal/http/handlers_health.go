package httpx

import (
	"io"
	"net/http"
)

const healthResponse = `{"status":"ok"}`

// Readiness reports whether the service can take traffic.
type Readiness interface {
	Ready() error
}

// healthHandler returns a simple 200 OK status for liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// readyHandler returns 503 until the session controller is listening for identity
// changes and again once it has been disposed during shutdown.
func readyHandler(probe Readiness) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := probe.Ready(); err != nil {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": err.Error(),
			})
			return
		}
		healthHandler(w, r)
	}
}
