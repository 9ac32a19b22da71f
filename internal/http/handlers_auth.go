package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/hillstay/hillstay/internal/errors"
	"github.com/hillstay/hillstay/internal/ports"
)

const (
	cookieOAuthState   = "oauth_state"
	cookieOAuthNonce   = "oauth_nonce"
	cookiePostLoginURL = "post_login_redirect"
	oauthCookieMaxAge  = 600
)

// AuthHandlers provides the browser login flow and the dev sign-in endpoint.
// The identity change itself reaches the session controller through the provider.
type AuthHandlers struct {
	Flow         ports.LoginFlow
	Dev          ports.DevSignIn
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles the login initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	authURL, state, nonce, err := h.Flow.Begin(r.Context(), ports.BeginInput{RedirectURL: redirectURI})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("could not start login"),
		})
		return
	}

	h.setCookie(w, r, cookieOAuthState, state)
	h.setCookie(w, r, cookieOAuthNonce, nonce)
	h.setCookie(w, r, cookiePostLoginURL, redirectURI)

	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie(cookieOAuthState)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(cookieOAuthNonce)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	if _, err = h.Flow.Exchange(r.Context(), ports.ExchangeInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	}); err != nil {
		h.logger().WarnContext(r.Context(), "login exchange failed", "error", err)
		WriteAppError(w, apperrors.Wrap(err, apperrors.ErrCodeNotAuthenticated, "login could not be completed"))
		return
	}

	h.clearCookie(w, r, cookieOAuthState)
	h.clearCookie(w, r, cookieOAuthNonce)

	http.Redirect(w, r, h.postLoginRedirect(w, r), http.StatusFound)
}

type devSignInRequest struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Provider    string `json:"provider"`
}

// DevSignIn makes an arbitrary identity current. Only routed in dev mode.
// POST /auth/dev/signin.
func (h *AuthHandlers) DevSignIn(w http.ResponseWriter, r *http.Request) {
	var req devSignInRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	id, err := h.Dev.SignIn(r.Context(), ports.DevSignInInput{
		UID:         req.UID,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		ProviderID:  req.Provider,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"uid": id.UID, "provider": id.ProviderID})
}

func (h *AuthHandlers) setCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   oauthCookieMaxAge,
	})
}

// clearCookie mirrors the attributes used when setting so browsers drop the cookie.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// postLoginRedirect returns the stored redirect and clears its cookie.
func (h *AuthHandlers) postLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(cookiePostLoginURL)
	if err != nil {
		return "/"
	}
	h.clearCookie(w, r, cookiePostLoginURL)
	return safeRedirectPath(c.Value)
}
