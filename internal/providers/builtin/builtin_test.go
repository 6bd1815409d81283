package builtin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/providers"
)

func TestBuild_OnlyEnabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Providers.TikTok = config.ProviderConfig{Enabled: true, ClientID: "k", ClientSecret: "s", RedirectURI: "https://x/cb"}
	cfg.Providers.WhatsApp = config.ProviderConfig{Enabled: true, ClientID: "k", ClientSecret: "s", RedirectURI: "https://x/cb"}

	reg := Build(cfg, providers.Options{})
	require.Equal(t, []string{"tiktok", "whatsapp"}, reg.Names())

	_, err := reg.Get("facebook")
	require.ErrorIs(t, err, providers.ErrProviderDisabled)

	wa, err := reg.Get("whatsapp")
	require.NoError(t, err)
	_, ok := wa.(providers.LongLivedExchanger)
	require.True(t, ok)
}
