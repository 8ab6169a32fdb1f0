package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN). postgres:// URLs use Postgres, anything else SQLite.
	DatabaseURL string `envconfig:"DATABASE_URL" default:"file:muzfi.db"`

	// Server bind address (host:port)
	ServerAddr string `envconfig:"SERVER_ADDR" default:"localhost:8080"`

	// Public base URL, used for cookie security decisions and redirects
	ServerURL string `envconfig:"SERVER_URL" default:"http://localhost:8080"`

	// LogLevel controls the zerolog global level (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// SessionTTL bounds the lifetime of a login session.
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	// SessionRevalidateInterval bounds how long a cached session is trusted before its
	// row and the user's stored roles are read again.
	SessionRevalidateInterval time.Duration `envconfig:"SESSION_REVALIDATE_INTERVAL" default:"30s"`

	// SessionCacheSize caps the number of live sessions kept in memory.
	SessionCacheSize int `envconfig:"SESSION_CACHE_SIZE" default:"10000"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	Okta OktaConfig

	// ExternalIdP is nil when SSO login is not configured.
	ExternalIdP *ExternalIdPConfig `ignored:"true"`

	// GroupsClaimField names the ID token claim carrying IdP group names.
	GroupsClaimField string `envconfig:"OIDC_GROUPS_CLAIM" default:"groups"`
}

// OktaConfig configures the Okta management API client used for role synchronization.
type OktaConfig struct {
	// OrgURL is the Okta org base URL (e.g., "https://muzfi.okta.com").
	OrgURL string `envconfig:"OKTA_ORG_URL"`
	// APIToken is the SSWS service credential.
	APIToken string `envconfig:"OKTA_API_TOKEN"`
	// Timeout is applied to every management API call.
	Timeout time.Duration `envconfig:"OKTA_TIMEOUT" default:"10s"`
	// RateLimit is the sustained request rate towards Okta (requests per second).
	RateLimit float64 `envconfig:"OKTA_RATE_LIMIT" default:"10"`
	RateBurst int     `envconfig:"OKTA_RATE_BURST" default:"5"`
	// MaxPages bounds how many Link rel="next" pages a collection call follows.
	MaxPages int `envconfig:"OKTA_MAX_PAGES" default:"10"`
}

// Enabled reports whether the management API is configured.
func (c OktaConfig) Enabled() bool {
	return c.OrgURL != ""
}

// ExternalIdPConfig holds configuration for the OIDC login against the external IdP (Okta).
type ExternalIdPConfig struct {
	Issuer       string   `envconfig:"EXTERNAL_IDP_ISSUER"`
	ClientID     string   `envconfig:"EXTERNAL_IDP_CLIENT_ID"`
	ClientSecret string   `envconfig:"EXTERNAL_IDP_CLIENT_SECRET"`
	RedirectURI  string   `envconfig:"EXTERNAL_IDP_REDIRECT_URI"`
	Scopes       []string `envconfig:"EXTERNAL_IDP_SCOPES" default:"openid,profile,email,groups"`
}

// Load reads configuration from environment variables with fallback defaults
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}

	idp, err := loadExternalIdPConfig()
	if err != nil {
		return nil, err
	}
	cfg.ExternalIdP = idp

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that envconfig cannot express.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.SessionRevalidateInterval < 0 {
		return fmt.Errorf("SESSION_REVALIDATE_INTERVAL must not be negative")
	}
	if c.SessionCacheSize <= 0 {
		return fmt.Errorf("SESSION_CACHE_SIZE must be positive")
	}

	if c.Okta.Enabled() {
		if c.Okta.APIToken == "" {
			return fmt.Errorf("OKTA_API_TOKEN is required when OKTA_ORG_URL is set")
		}
		if c.Okta.Timeout <= 0 {
			return fmt.Errorf("OKTA_TIMEOUT must be positive")
		}
		if c.Okta.MaxPages < 1 {
			return fmt.Errorf("OKTA_MAX_PAGES must be at least 1")
		}
	}

	if c.ExternalIdP != nil {
		if c.ExternalIdP.ClientID == "" {
			return fmt.Errorf("EXTERNAL_IDP_CLIENT_ID is required for SSO login")
		}
		if c.ExternalIdP.ClientSecret == "" {
			return fmt.Errorf("EXTERNAL_IDP_CLIENT_SECRET is required for SSO login")
		}
		if c.ExternalIdP.RedirectURI == "" {
			return fmt.Errorf("EXTERNAL_IDP_REDIRECT_URI is required for SSO login")
		}
	}
	return nil
}

// loadExternalIdPConfig returns nil if EXTERNAL_IDP_ISSUER is unset
func loadExternalIdPConfig() (*ExternalIdPConfig, error) {
	var idp ExternalIdPConfig
	if err := envconfig.Process("", &idp); err != nil {
		return nil, fmt.Errorf("config: process external idp env: %w", err)
	}
	if idp.Issuer == "" {
		return nil, nil
	}
	return &idp, nil
}
