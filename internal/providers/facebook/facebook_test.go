package facebook

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

func newGraphServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v22.0/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Empty(t, r.URL.RawQuery)
		require.NoError(t, r.ParseForm())
		q := r.PostForm
		require.Equal(t, "fb_exchange_token", q.Get("grant_type"))
		require.Equal(t, "app-id", q.Get("client_id"))
		require.Equal(t, "app-secret", q.Get("client_secret"))
		switch q.Get("fb_exchange_token") {
		case "short":
			_, _ = w.Write([]byte(`{"access_token":"long","token_type":"bearer","expires_in":5184000}`))
		case "long":
			_, _ = w.Write([]byte(`{"access_token":"long-2","token_type":"bearer","expires_in":5184000}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Error validating access token","type":"OAuthException","code":190}}`))
		}
	})
	mux.HandleFunc("/v22.0/me/adaccounts", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer long", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"id":"act_123"}]}`))
	})
	mux.HandleFunc("/v22.0/me/businesses", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"biz_9"}]}`))
	})
	mux.HandleFunc("/v22.0/me/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"pages_show_list missing","type":"OAuthException"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGraph(srv *httptest.Server) *Graph {
	return New(config.ProviderConfig{
		Enabled:      true,
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		RedirectURI:  "https://api.example.com/auth/facebook/callback",
		TokenURL:     srv.URL + "/v22.0/oauth/access_token",
		APIBaseURL:   srv.URL,
		APIVersion:   "v22.0",
	}, providers.Options{HTTPClient: srv.Client(), Timeout: 2 * time.Second})
}

func TestGraph_ImplementsCapabilities(t *testing.T) {
	var p providers.Provider = New(config.ProviderConfig{}, providers.Options{})
	_, ok := p.(providers.LongLivedExchanger)
	require.True(t, ok)
	_, ok = p.(providers.MetadataFetcher)
	require.True(t, ok)
	require.Equal(t, config.ProviderFacebook, p.Name())
	require.Contains(t, p.AuthCodeURL("s"), "https://www.facebook.com/v22.0/dialog/oauth?")
}

func TestGraph_ExchangeLongLived(t *testing.T) {
	g := newTestGraph(newGraphServer(t))

	ts, err := g.ExchangeLongLived(context.Background(), &providers.TokenSet{
		AccessToken: "short", Scopes: []string{"ads_read"},
	})
	require.NoError(t, err)
	require.Equal(t, "long", ts.AccessToken)
	require.Equal(t, []string{"ads_read"}, ts.Scopes)
	require.WithinDuration(t, time.Now().Add(60*24*time.Hour), ts.ExpiresAt, time.Minute)

	_, err = g.ExchangeLongLived(context.Background(), &providers.TokenSet{AccessToken: "revoked"})
	require.Error(t, err)
	require.True(t, providers.IsRejected(err))
}

func TestGraph_RefreshWithoutRefreshTokenReexchanges(t *testing.T) {
	g := newTestGraph(newGraphServer(t))

	ts, err := g.Refresh(context.Background(), &repository.Credential{
		AccessToken: "long", Scopes: []string{"ads_read"},
	})
	require.NoError(t, err)
	require.Equal(t, "long-2", ts.AccessToken)
	require.Equal(t, []string{"ads_read"}, ts.Scopes)
}

func TestGraph_TransportErrorHidesSecrets(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	g := newTestGraph(srv)
	srv.Close()

	_, err := g.Refresh(context.Background(), &repository.Credential{AccessToken: "USER-ACCESS-TOKEN-123"})
	require.Error(t, err)
	require.False(t, providers.IsRejected(err))
	require.NotContains(t, err.Error(), "USER-ACCESS-TOKEN-123")
	require.NotContains(t, err.Error(), "app-secret")
}

func TestGraph_MetadataIsPartial(t *testing.T) {
	g := newTestGraph(newGraphServer(t))

	ids, err := g.FetchMetadata(context.Background(), "long")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"ad_account_id": "act_123", "business_id": "biz_9"}, ids)
}
