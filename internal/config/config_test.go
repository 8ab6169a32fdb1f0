package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears variables for the duration of the test so envconfig defaults apply.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

var configKeys = []string{
	"DATABASE_URL", "SERVER_ADDR", "SESSION_TTL", "SESSION_CACHE_SIZE", "SESSION_REVALIDATE_INTERVAL", "OIDC_GROUPS_CLAIM",
	"OKTA_ORG_URL", "OKTA_API_TOKEN", "OKTA_TIMEOUT", "OKTA_MAX_PAGES",
	"EXTERNAL_IDP_ISSUER", "EXTERNAL_IDP_CLIENT_ID", "EXTERNAL_IDP_CLIENT_SECRET",
	"EXTERNAL_IDP_REDIRECT_URI", "EXTERNAL_IDP_SCOPES",
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, configKeys...)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file:muzfi.db", cfg.DatabaseURL)
	assert.Equal(t, "localhost:8080", cfg.ServerAddr)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.SessionRevalidateInterval)
	assert.Equal(t, 10*time.Second, cfg.Okta.Timeout)
	assert.Equal(t, 10, cfg.Okta.MaxPages)
	assert.False(t, cfg.Okta.Enabled())
	assert.Nil(t, cfg.ExternalIdP)
	assert.Equal(t, "groups", cfg.GroupsClaimField)
}

func TestLoad_Okta(t *testing.T) {
	unsetEnv(t, configKeys...)

	t.Run("token required", func(t *testing.T) {
		t.Setenv("OKTA_ORG_URL", "https://muzfi.okta.com")
		t.Setenv("OKTA_API_TOKEN", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OKTA_API_TOKEN")
	})

	t.Run("explicit timeout", func(t *testing.T) {
		t.Setenv("OKTA_ORG_URL", "https://muzfi.okta.com")
		t.Setenv("OKTA_API_TOKEN", "00abc")
		t.Setenv("OKTA_TIMEOUT", "3s")
		t.Setenv("OKTA_MAX_PAGES", "2")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Okta.Enabled())
		assert.Equal(t, "00abc", cfg.Okta.APIToken)
		assert.Equal(t, 3*time.Second, cfg.Okta.Timeout)
		assert.Equal(t, 2, cfg.Okta.MaxPages)
	})

	t.Run("zero pages rejected", func(t *testing.T) {
		t.Setenv("OKTA_ORG_URL", "https://muzfi.okta.com")
		t.Setenv("OKTA_API_TOKEN", "00abc")
		t.Setenv("OKTA_MAX_PAGES", "0")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoad_ExternalIdP(t *testing.T) {
	unsetEnv(t, configKeys...)

	t.Run("partial config rejected", func(t *testing.T) {
		t.Setenv("EXTERNAL_IDP_ISSUER", "https://muzfi.okta.com/oauth2/default")
		t.Setenv("EXTERNAL_IDP_CLIENT_ID", "muzfi-web")
		t.Setenv("EXTERNAL_IDP_CLIENT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EXTERNAL_IDP_CLIENT_SECRET")
	})

	t.Run("complete config", func(t *testing.T) {
		t.Setenv("EXTERNAL_IDP_ISSUER", "https://muzfi.okta.com/oauth2/default")
		t.Setenv("EXTERNAL_IDP_CLIENT_ID", "muzfi-web")
		t.Setenv("EXTERNAL_IDP_CLIENT_SECRET", "secret")
		t.Setenv("EXTERNAL_IDP_REDIRECT_URI", "http://localhost:8080/auth/sso/callback")

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg.ExternalIdP)
		assert.Equal(t, "muzfi-web", cfg.ExternalIdP.ClientID)
		assert.Equal(t, []string{"openid", "profile", "email", "groups"}, cfg.ExternalIdP.Scopes)
	})
}

func TestValidate_Session(t *testing.T) {
	cfg := &Config{DatabaseURL: ":memory:", SessionTTL: 0, SessionCacheSize: 10}
	assert.Error(t, cfg.Validate())

	cfg.SessionTTL = time.Hour
	assert.NoError(t, cfg.Validate())

	cfg.SessionCacheSize = 0
	assert.Error(t, cfg.Validate())
}
