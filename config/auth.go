package config

import (
	"fmt"
	"strings"
)

// AuthMode selects the identity provider.
type AuthMode string

const (
	// AuthModeOIDC signs users in through an OpenID Connect provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeDev uses the local development provider (for development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oidc", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, dev)", v)
	}
}

// OIDCConfig contains OAuth/OIDC client configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email phone"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls the identity returned by the dev login flow.
// Used when AUTH_MODE=dev for development and testing.
type DevAuthConfig struct {
	UserID      string `env:"USER_ID"      envDefault:"dev-user"`
	Email       string `env:"EMAIL"        envDefault:"dev@example.com"`
	DisplayName string `env:"DISPLAY_NAME" envDefault:"Dev Traveller"`
	ProviderID  string `env:"PROVIDER_ID"  envDefault:"password"`
}

// AuthConfig groups all identity-provider configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"dev"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=dev).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// LoginMethodClaim is a JMESPath expression over ID token claims yielding the provider-chain id.
	// Empty uses the provider default.
	LoginMethodClaim string `env:"AUTH_LOGIN_METHOD_CLAIM"`
}

// Sanitize trims free-form values.
func (c *AuthConfig) Sanitize() {
	c.LoginMethodClaim = strings.TrimSpace(c.LoginMethodClaim)
	c.OIDC.DiscoveryURL = strings.TrimSpace(c.OIDC.DiscoveryURL)
	if strings.TrimSpace(c.DevAuth.ProviderID) == "" {
		c.DevAuth.ProviderID = "password"
	}
}
