package ports

// Package ports defines interfaces (hexagonal ports) for the session controller's collaborators.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/hillstay/hillstay/internal/domain/auth"
)

// IdentityListener receives identity changes. A nil identity means signed out.
type IdentityListener func(id *domainauth.Identity)

// IdentityProvider is the external authentication provider the controller mirrors.
type IdentityProvider interface {
	// Subscribe registers fn for identity changes, delivered serially in arrival order.
	// The returned function removes the subscription.
	Subscribe(fn IdentityListener) (unsubscribe func())

	// SignInAnonymously creates a credential-less identity and makes it current.
	SignInAnonymously(ctx context.Context) (domainauth.Identity, error)

	// SignOut clears the current identity.
	SignOut(ctx context.Context) error
}

// Credentials are the real credentials linked onto an anonymous identity.
type Credentials struct {
	Email       string
	Password    string
	DisplayName string
}

// CredentialLinker upgrades the current anonymous identity in place, keeping its uid.
type CredentialLinker interface {
	LinkCredentials(ctx context.Context, creds Credentials) (domainauth.Identity, error)
}

// BeginInput carries inputs for initiating a browser login flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// LoginFlow is implemented by providers that sign users in through a browser redirect.
// A successful Exchange makes the identity current and notifies subscribers.
type LoginFlow interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// DevSignInInput describes an identity to sign in locally without credentials checks.
type DevSignInInput struct {
	UID         string
	DisplayName string
	Email       string
	Phone       string
	ProviderID  string
}

// DevSignIn is implemented by the local development provider.
type DevSignIn interface {
	SignIn(ctx context.Context, in DevSignInInput) (domainauth.Identity, error)
}
