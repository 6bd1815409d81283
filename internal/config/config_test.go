package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("PORT", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "memory", cfg.Storage.Driver)
	require.Equal(t, time.Hour, cfg.State.TTL)
	require.Equal(t, time.Hour, cfg.State.SweepInterval)
	require.Equal(t, 60*time.Second, cfg.Refresh.SafetyMargin)
	require.Equal(t, 15*time.Second, cfg.HTTPClient.Timeout)
	require.Equal(t, "v22.0", cfg.Providers.Facebook.APIVersion)
	require.Contains(t, cfg.Providers.TikTok.Scopes, "video.publish")
	require.Empty(t, cfg.EnabledProviders())
}

func TestLoad_YAMLThenEnvOverrides(t *testing.T) {
	path := writeYAML(t, `
server:
  addr: ":9000"
  frontend_url: "https://app.example.com/integrations"
state:
  ttl: 30m
providers:
  tiktok:
    enabled: true
    client_id: yaml-key
    client_secret: yaml-secret
    redirect_uri: https://api.example.com/auth/tiktok/callback
`)
	t.Setenv("SERVER_ADDR", ":7000")
	t.Setenv("TIKTOK_CLIENT_SECRET", "env-secret")
	t.Setenv("GMAIL_ENABLED", "true")
	t.Setenv("GMAIL_SCOPES", "a, b ,")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":7000", cfg.Server.Addr)
	require.Equal(t, "https://app.example.com/integrations", cfg.Server.FrontendURL)
	require.Equal(t, 30*time.Minute, cfg.State.TTL)

	tt, ok := cfg.Provider("TikTok")
	require.True(t, ok)
	require.Equal(t, "yaml-key", tt.ClientID)
	require.Equal(t, "env-secret", tt.ClientSecret)

	require.Equal(t, []string{"a", "b"}, cfg.Providers.Gmail.Scopes)
	require.Equal(t, []string{ProviderTikTok, ProviderGmail}, cfg.EnabledProviders())
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", "")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Error(t, cfg.Validate(), "jwt secret is required")

	cfg.JWT.Secret = "dev-secret"
	require.NoError(t, cfg.Validate())

	cfg.Providers.Instagram.Enabled = true
	err = cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "providers.instagram")

	cfg.Providers.Instagram.ClientID = "id"
	cfg.Providers.Instagram.ClientSecret = "secret"
	cfg.Providers.Instagram.RedirectURI = "https://x/cb"
	require.NoError(t, cfg.Validate())

	cfg.Providers.Instagram.Scopes = []string{"instagram_business_basic", "bad scope"}
	err = cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad scope")
	cfg.Providers.Instagram.Scopes = nil

	cfg.Storage.Driver = "sqlite"
	require.Error(t, cfg.Validate())
}

func TestProvider_Unknown(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	_, ok := cfg.Provider("myspace")
	require.False(t, ok)
}
