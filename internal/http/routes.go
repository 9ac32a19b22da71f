package httpx

import (
	"log/slog"
	"net/http"

	"github.com/hillstay/hillstay/internal/ports"
)

// RouterServices holds everything the HTTP router serves.
type RouterServices struct {
	Session  SessionAPI
	Listings ListingAPI
	Notices  NoticeLister
	// Optional: browser login flow (OIDC or dev).
	Login ports.LoginFlow
	// Optional: dev sign-in endpoint; set only in dev mode.
	DevSignIn ports.DevSignIn
	// Optional: readiness probe for /readyz.
	Ready Readiness
	// Optional: Prometheus handler for /metrics.
	Metrics http.Handler
	// Optional: throttles sign-in and session-changing requests per client.
	Limiter      *RateLimiter
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the JSON API router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	if services.Ready != nil {
		ready := readyHandler(services.Ready)
		mux.Handle("GET /readyz", ready)
		mux.Handle("HEAD /readyz", ready)
	}
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics)
	}

	if services.Session != nil {
		registerSessionRoutes(mux, &SessionHandlers{Svc: services.Session, Logger: services.Logger}, services.Limiter)
	}
	if services.Listings != nil {
		registerListingRoutes(mux, &ListingHandlers{Svc: services.Listings})
	}
	if services.Notices != nil {
		mux.HandleFunc("GET /api/notices", (&NoticeHandlers{Feed: services.Notices}).List)
	}

	auth := &AuthHandlers{
		Flow:         services.Login,
		Dev:          services.DevSignIn,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	if services.Login != nil {
		mux.Handle("GET /auth/login", throttle(services.Limiter, auth.Login))
		mux.Handle("GET /auth/callback", throttle(services.Limiter, auth.Callback))
	}
	if services.DevSignIn != nil {
		mux.Handle("POST /auth/dev/signin", throttle(services.Limiter, auth.DevSignIn))
	}

	return mux
}

func registerSessionRoutes(mux *http.ServeMux, h *SessionHandlers, limiter *RateLimiter) {
	mux.HandleFunc("GET /api/session", h.Get)
	mux.Handle("POST /api/session/guest", throttle(limiter, h.ContinueAsGuest))
	mux.Handle("POST /api/session/link", throttle(limiter, h.LinkCredentials))
	mux.Handle("POST /api/session/signout", throttle(limiter, h.SignOut))
	mux.HandleFunc("PATCH /api/profile", h.UpdateProfile)
}

func registerListingRoutes(mux *http.ServeMux, h *ListingHandlers) {
	mux.HandleFunc("GET /api/listings", h.List)
	mux.HandleFunc("PUT /api/listings", h.Sync)
	mux.HandleFunc("PUT /api/listings/{id}", h.Put)
	mux.HandleFunc("DELETE /api/listings/{id}", h.Delete)
}

func throttle(limiter *RateLimiter, h http.HandlerFunc) http.Handler {
	if limiter == nil {
		return h
	}
	return limiter.Middleware(h)
}
