package devauth

// Package devauth provides a config-driven identity provider for local development.
// It issues anonymous identities, signs in a configured user without an IdP, and
// links credentials onto anonymous identities in memory.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hillstay/hillstay/internal/adapters/authfeed"
	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
	apperrors "github.com/hillstay/hillstay/internal/errors"
	"github.com/hillstay/hillstay/internal/ports"
)

// Config controls the dev provider behavior.
// UserID and Email identify the user signed in through the login flow.
type Config struct {
	UserID      string
	Email       string
	DisplayName string
	// ProviderID is reported on the dev identity; defaults to "password".
	ProviderID string
	Logger     *slog.Logger
}

// Provider implements ports.IdentityProvider, ports.CredentialLinker, ports.LoginFlow
// and ports.DevSignIn for local development.
type Provider struct {
	identity domainauth.Identity
	feed     *authfeed.Feed

	mu     sync.Mutex
	linked map[string]string // email -> uid
}

var (
	_ ports.IdentityProvider = (*Provider)(nil)
	_ ports.CredentialLinker = (*Provider)(nil)
	_ ports.LoginFlow        = (*Provider)(nil)
	_ ports.DevSignIn        = (*Provider)(nil)
)

// NewProvider constructs a dev identity provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	providerID := cfg.ProviderID
	if providerID == "" {
		providerID = "password"
	}
	return &Provider{
		identity: domainauth.Identity{
			UID:         cfg.UserID,
			Email:       cfg.Email,
			DisplayName: cfg.DisplayName,
			ProviderID:  providerID,
		},
		feed:   authfeed.New(cfg.Logger),
		linked: make(map[string]string),
	}, nil
}

// Subscribe registers fn for identity changes.
func (p *Provider) Subscribe(fn ports.IdentityListener) func() {
	return p.feed.Subscribe(fn)
}

// SignInAnonymously issues a fresh anonymous identity and makes it current.
func (p *Provider) SignInAnonymously(ctx context.Context) (domainauth.Identity, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Identity{}, err
	}
	id := domainauth.Identity{
		UID:         uuid.NewString(),
		IsAnonymous: true,
		ProviderID:  "anonymous",
	}
	p.feed.Publish(&id)
	return id, nil
}

// SignOut clears the current identity.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.feed.Publish(nil)
	return nil
}

// SignIn makes the described identity current. Empty fields fall back to the configured dev user.
func (p *Provider) SignIn(ctx context.Context, in ports.DevSignInInput) (domainauth.Identity, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Identity{}, err
	}
	id := p.identity
	if in.UID != "" {
		id = domainauth.Identity{UID: in.UID, ProviderID: "password"}
	}
	if in.DisplayName != "" {
		id.DisplayName = in.DisplayName
	}
	if in.Email != "" {
		id.Email = in.Email
	}
	if in.Phone != "" {
		id.Phone = in.Phone
	}
	if in.ProviderID != "" {
		id.ProviderID = in.ProviderID
	}
	p.feed.Publish(&id)
	return id, nil
}

// LinkCredentials upgrades the current anonymous identity in place; the uid is kept.
func (p *Provider) LinkCredentials(ctx context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Identity{}, err
	}
	cur := p.feed.Current()
	if cur == nil {
		return domainauth.Identity{}, apperrors.NotAuthenticated("no active identity to link")
	}
	if !cur.IsAnonymous {
		return domainauth.Identity{}, apperrors.InvalidArgument("identity already has credentials")
	}
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return domainauth.Identity{}, apperrors.InvalidArgument("email and password are required")
	}

	p.mu.Lock()
	if owner, ok := p.linked[email]; ok && owner != cur.UID {
		p.mu.Unlock()
		return domainauth.Identity{}, apperrors.Conflictf("email %s is already linked to another account", email)
	}
	p.linked[email] = cur.UID
	p.mu.Unlock()

	linked := *cur
	linked.IsAnonymous = false
	linked.Email = email
	linked.ProviderID = "password"
	if creds.DisplayName != "" {
		linked.DisplayName = creds.DisplayName
	}
	p.feed.Publish(&linked)
	return linked, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// Our standard handler expects GET /auth/callback?code=...&state=...
	authURL := "/auth/callback?code=dev&state=" + state
	return authURL, state, nonce, nil
}

// Exchange ignores the provided code/state/nonce (validation handled by handler) and signs in the dev identity.
func (p *Provider) Exchange(ctx context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	return p.SignIn(ctx, ports.DevSignInInput{})
}

// Close stops identity delivery.
func (p *Provider) Close() {
	p.feed.Close()
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
