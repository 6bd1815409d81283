package tiktok

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/providers"
)

func newTestProvider(srv *httptest.Server) *Provider {
	pc := config.ProviderConfig{
		Enabled:      true,
		ClientID:     "ck",
		ClientSecret: "cs",
		RedirectURI:  "https://api.example.com/auth/tiktok/callback",
	}
	opts := providers.Options{Timeout: 2 * time.Second}
	if srv != nil {
		pc.TokenURL = srv.URL + "/v2/oauth/token/"
		pc.APIBaseURL = srv.URL
		opts.HTTPClient = srv.Client()
	}
	return New(pc, opts)
}

func TestTikTok_AuthCodeURL(t *testing.T) {
	raw := newTestProvider(nil).AuthCodeURL("abc")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "www.tiktok.com", u.Host)
	require.Equal(t, "ck", q.Get("client_key"))
	require.Empty(t, q.Get("client_id"))
	require.Equal(t, "user.info.basic,user.info.stats,video.publish,video.list,video.stats", q.Get("scope"))
	require.Equal(t, "abc", q.Get("state"))
	require.Equal(t, "code", q.Get("response_type"))
}

func TestTikTok_ExchangeAndRefresh(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/oauth/token/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "ck", r.PostForm.Get("client_key"))
		require.Equal(t, "cs", r.PostForm.Get("client_secret"))
		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			if r.PostForm.Get("code") != "good" {
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Authorization code is expired.","log_id":"1"}`))
				return
			}
			require.Equal(t, "https://api.example.com/auth/tiktok/callback", r.PostForm.Get("redirect_uri"))
			_, _ = w.Write([]byte(`{"access_token":"act.1","expires_in":86400,"open_id":"oid-1","refresh_expires_in":31536000,"refresh_token":"rft.1","scope":"user.info.basic,video.list","token_type":"Bearer"}`))
		case "refresh_token":
			require.Equal(t, "rft.1", r.PostForm.Get("refresh_token"))
			_, _ = w.Write([]byte(`{"access_token":"act.2","expires_in":86400,"open_id":"oid-1","refresh_token":"rft.2","scope":"user.info.basic,video.list"}`))
		}
	})
	mux.HandleFunc("/v2/user/info/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer act.1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"user":{"open_id":"oid-1","union_id":"uid-1","display_name":"acme"}},"error":{"code":"ok","message":""}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := newTestProvider(srv)
	ctx := context.Background()

	_, err := p.Exchange(ctx, "bad")
	require.Error(t, err)
	require.True(t, providers.IsRejected(err))

	ts, err := p.Exchange(ctx, "good")
	require.NoError(t, err)
	require.Equal(t, "act.1", ts.AccessToken)
	require.Equal(t, "rft.1", ts.RefreshToken)
	require.Equal(t, []string{"user.info.basic", "video.list"}, ts.Scopes)
	require.Equal(t, "oid-1", ts.AccountIDs["open_id"])

	ts2, err := p.Refresh(ctx, &repository.Credential{AccessToken: "act.1", RefreshToken: "rft.1"})
	require.NoError(t, err)
	require.Equal(t, "act.2", ts2.AccessToken)
	require.Equal(t, "rft.2", ts2.RefreshToken)

	ids, err := p.FetchMetadata(ctx, "act.1")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"open_id": "oid-1", "union_id": "uid-1", "display_name": "acme"}, ids)
}

func TestTikTok_RefreshWithoutToken(t *testing.T) {
	_, err := newTestProvider(nil).Refresh(context.Background(), &repository.Credential{AccessToken: "a"})
	require.ErrorIs(t, err, providers.ErrNoRefreshToken)
}
