package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
	"github.com/hillstay/hillstay/internal/domain/model"
)

// SessionAPI is the session controller surface exposed over HTTP.
type SessionAPI interface {
	Snapshot() domainauth.Session
	ContinueAsGuest(ctx context.Context, role domainauth.Role) error
	UpdateProfile(ctx context.Context, patch model.ProfilePatch) error
	LinkCredentials(ctx context.Context, req model.LinkRequest) error
	SignOut(ctx context.Context) error
}

// SessionHandlers serves the session and profile endpoints.
type SessionHandlers struct {
	Svc    SessionAPI
	Logger *slog.Logger
}

func (h *SessionHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type guestRequest struct {
	Role string `json:"role"`
}

// profileRequest lists the profile fields a client may edit.
type profileRequest struct {
	DisplayName     *string  `json:"display_name"`
	Email           *string  `json:"email"`
	PhoneNumber     *string  `json:"phone"`
	UserType        *string  `json:"role"`
	Profession      *string  `json:"profession"`
	BusinessAddress *string  `json:"business_address"`
	LicenseNumber   *string  `json:"license_number"`
	VisitedPlaces   []string `json:"visited_places"`
	RecentBookings  []string `json:"recent_bookings"`
	SavedPlaces     []string `json:"saved_places"`
}

func (p profileRequest) patch() model.ProfilePatch {
	out := model.ProfilePatch{
		DisplayName:     p.DisplayName,
		Email:           p.Email,
		PhoneNumber:     p.PhoneNumber,
		Profession:      p.Profession,
		BusinessAddress: p.BusinessAddress,
		LicenseNumber:   p.LicenseNumber,
		VisitedPlaces:   p.VisitedPlaces,
		RecentBookings:  p.RecentBookings,
		SavedPlaces:     p.SavedPlaces,
	}
	if p.UserType != nil {
		role := domainauth.Role(*p.UserType)
		out.UserType = &role
	}
	return out
}

// Get returns the current session snapshot.
// GET /api/session.
func (h *SessionHandlers) Get(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, h.Svc.Snapshot())
}

// ContinueAsGuest signs in anonymously with the requested role.
// POST /api/session/guest.
func (h *SessionHandlers) ContinueAsGuest(w http.ResponseWriter, r *http.Request) {
	var req guestRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Svc.ContinueAsGuest(r.Context(), domainauth.Role(req.Role)); err != nil {
		h.fail(w, r, "continue_as_guest", err)
		return
	}
	WriteJSON(w, http.StatusOK, h.Svc.Snapshot())
}

// UpdateProfile merges a partial profile update.
// PATCH /api/profile.
func (h *SessionHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Svc.UpdateProfile(r.Context(), req.patch()); err != nil {
		h.fail(w, r, "update_profile", err)
		return
	}
	WriteJSON(w, http.StatusOK, h.Svc.Snapshot())
}

// LinkCredentials upgrades the anonymous session to an email account.
// POST /api/session/link.
func (h *SessionHandlers) LinkCredentials(w http.ResponseWriter, r *http.Request) {
	var req model.LinkRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Svc.LinkCredentials(r.Context(), req); err != nil {
		h.fail(w, r, "link_credentials", err)
		return
	}
	WriteJSON(w, http.StatusOK, h.Svc.Snapshot())
}

// SignOut ends the session. The session is reset even when the provider call fails,
// so the reset snapshot accompanies any error.
// POST /api/session/signout.
func (h *SessionHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.SignOut(r.Context()); err != nil {
		h.fail(w, r, "sign_out", err)
		return
	}
	WriteJSON(w, http.StatusOK, h.Svc.Snapshot())
}

func (h *SessionHandlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger().WarnContext(r.Context(), "session operation failed", "op", op, "error", err)
	WriteAppError(w, err)
}
