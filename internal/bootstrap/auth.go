package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hillstay/hillstay/config"
	"github.com/hillstay/hillstay/internal/adapters/devauth"
	"github.com/hillstay/hillstay/internal/adapters/oidc"
	"github.com/hillstay/hillstay/internal/ports"
)

// Identity bundles the configured identity provider with the optional
// browser login flow and dev sign-in capabilities it exposes.
type Identity struct {
	Provider ports.IdentityProvider
	Login    ports.LoginFlow
	// Dev is set only in dev mode.
	Dev   ports.DevSignIn
	close func()
}

// Close releases the provider's subscriber feed.
func (i *Identity) Close() {
	if i != nil && i.close != nil {
		i.close()
	}
}

// AuthConfig contains configuration for the identity provider.
type AuthConfig struct {
	Auth   config.AuthConfig
	Logger *slog.Logger
}

// BuildIdentity creates the identity provider for the configured auth mode.
func BuildIdentity(cfg AuthConfig) (*Identity, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Auth.Mode {
	case config.AuthModeDev:
		return buildDevIdentity(cfg.Auth.DevAuth, logger)
	case config.AuthModeOIDC:
		return buildOIDCIdentity(cfg.Auth, logger)
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func buildDevIdentity(cfg config.DevAuthConfig, logger *slog.Logger) (*Identity, error) {
	prov, err := devauth.NewProvider(devauth.Config{
		UserID:      cfg.UserID,
		Email:       cfg.Email,
		DisplayName: cfg.DisplayName,
		ProviderID:  cfg.ProviderID,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create dev auth provider: %w", err)
	}
	logger.Warn("dev auth enabled; do not use in production", "user_id", cfg.UserID)
	return &Identity{Provider: prov, Login: prov, Dev: prov, close: prov.Close}, nil
}

func buildOIDCIdentity(cfg config.AuthConfig, logger *slog.Logger) (*Identity, error) {
	oc := cfg.OIDC
	if oc.DiscoveryURL == "" || oc.ClientID == "" || oc.ClientSecret == "" {
		logger.Error("AUTH_MODE=oidc selected but required config missing",
			"discovery_url_empty", oc.DiscoveryURL == "",
			"client_id_empty", oc.ClientID == "",
			"client_secret_empty", oc.ClientSecret == "",
		)
		return nil, errors.New("oidc auth requires OIDC_DISCOVERY_URL, OIDC_CLIENT_ID and OIDC_CLIENT_SECRET")
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:         oc.ClientID,
		ClientSecret:     oc.ClientSecret,
		RedirectURL:      oc.RedirectURL,
		Scope:            oc.Scope,
		DiscoveryURL:     oc.DiscoveryURL,
		LogoutURL:        oc.LogoutURL,
		LoginMethodClaim: cfg.LoginMethodClaim,
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create oidc provider: %w", err)
	}
	return &Identity{Provider: prov, Login: prov, close: prov.Close}, nil
}
