package instagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/providers"
)

func TestInstagram_LongLivedRefreshAndMetadata(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "ig-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ig-short","user_id":17841400000000001,"permissions":"instagram_business_basic"}`))
	})
	mux.HandleFunc("/access_token", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "ig_exchange_token", q.Get("grant_type"))
		require.Equal(t, "ig-secret", q.Get("client_secret"))
		require.Equal(t, "ig-short", q.Get("access_token"))
		_, _ = w.Write([]byte(`{"access_token":"ig-long","token_type":"bearer","expires_in":5183944}`))
	})
	mux.HandleFunc("/refresh_access_token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "ig_refresh_token", r.URL.Query().Get("grant_type"))
		require.Equal(t, "ig-long", r.URL.Query().Get("access_token"))
		_, _ = w.Write([]byte(`{"access_token":"ig-long-2","token_type":"bearer","expires_in":5183944}`))
	})
	mux.HandleFunc("/v22.0/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer ig-long", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"user_id":17841400000000001,"username":"acme"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := New(config.ProviderConfig{
		Enabled:      true,
		ClientID:     "ig-id",
		ClientSecret: "ig-secret",
		RedirectURI:  "https://api.example.com/auth/instagram/callback",
		TokenURL:     srv.URL + "/oauth/access_token",
		APIBaseURL:   srv.URL,
	}, providers.Options{HTTPClient: srv.Client(), Timeout: 2 * time.Second})

	ctx := context.Background()
	short, err := p.Exchange(ctx, "ig-code")
	require.NoError(t, err)
	require.Equal(t, "ig-short", short.AccessToken)

	long, err := p.ExchangeLongLived(ctx, short)
	require.NoError(t, err)
	require.Equal(t, "ig-long", long.AccessToken)
	require.False(t, long.ExpiresAt.IsZero())

	refreshed, err := p.Refresh(ctx, &repository.Credential{AccessToken: "ig-long"})
	require.NoError(t, err)
	require.Equal(t, "ig-long-2", refreshed.AccessToken)

	ids, err := p.FetchMetadata(ctx, "ig-long")
	require.NoError(t, err)
	require.Equal(t, "17841400000000001", ids["instagram_user_id"])
	require.Equal(t, "acme", ids["username"])
}

func TestInstagram_TransportErrorHidesSecrets(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	p := New(config.ProviderConfig{
		Enabled:      true,
		ClientID:     "ig-id",
		ClientSecret: "IG-SECRET-XYZ",
		RedirectURI:  "https://api.example.com/auth/instagram/callback",
		APIBaseURL:   srv.URL,
	}, providers.Options{Timeout: time.Second})
	ctx := context.Background()

	_, err := p.ExchangeLongLived(ctx, &providers.TokenSet{AccessToken: "IG-SHORT-TOKEN"})
	require.Error(t, err)
	require.NotContains(t, err.Error(), "IG-SECRET-XYZ")
	require.NotContains(t, err.Error(), "IG-SHORT-TOKEN")
	require.Contains(t, err.Error(), "/access_token")

	_, err = p.Refresh(ctx, &repository.Credential{AccessToken: "IG-LONG-TOKEN"})
	require.Error(t, err)
	require.NotContains(t, err.Error(), "IG-LONG-TOKEN")
}
