// Package tiktok implementa TikTok Login Kit v2. TikTok usa client_key en
// lugar de client_id y scopes separados por coma, por eso no pasa por
// golang.org/x/oauth2.
package tiktok

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/providers"
)

func Descriptor() providers.Descriptor {
	return providers.Descriptor{
		Name:          config.ProviderTikTok,
		AuthURL:       "https://www.tiktok.com/v2/auth/authorize/",
		TokenURL:      "https://open.tiktokapis.com/v2/oauth/token/",
		APIBaseURL:    "https://open.tiktokapis.com",
		APIVersion:    "v2",
		DefaultScopes: []string{"user.info.basic", "user.info.stats", "video.publish", "video.list", "video.stats"},
	}
}

type Provider struct {
	desc         providers.Descriptor
	clientKey    string
	clientSecret string
	redirectURI  string
	scopes       []string
	opts         providers.Options
	now          func() time.Time
}

func New(pc config.ProviderConfig, opts providers.Options) *Provider {
	d := Descriptor().WithOverrides(pc)
	return &Provider{
		desc:         d,
		clientKey:    pc.ClientID,
		clientSecret: pc.ClientSecret,
		redirectURI:  pc.RedirectURI,
		scopes:       providers.ScopesOrDefault(pc, d),
		opts:         opts.Normalize(),
		now:          time.Now,
	}
}

func (p *Provider) Name() string { return p.desc.Name }

func (p *Provider) AuthCodeURL(state string) string {
	q := url.Values{
		"client_key":    {p.clientKey},
		"scope":         {strings.Join(p.scopes, ",")},
		"response_type": {"code"},
		"redirect_uri":  {p.redirectURI},
		"state":         {state},
	}
	sep := "?"
	if strings.Contains(p.desc.AuthURL, "?") {
		sep = "&"
	}
	return p.desc.AuthURL + sep + q.Encode()
}

func (p *Provider) Exchange(ctx context.Context, code string) (*providers.TokenSet, error) {
	return p.tokenRequest(ctx, "exchange", url.Values{
		"client_key":    {p.clientKey},
		"client_secret": {p.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {p.redirectURI},
	})
}

// Refresh: TikTok puede rotar el refresh token; si no lo devuelve se conserva.
func (p *Provider) Refresh(ctx context.Context, cred *repository.Credential) (*providers.TokenSet, error) {
	if cred == nil || cred.RefreshToken == "" {
		return nil, &providers.ExchangeError{Provider: p.Name(), Op: "refresh", Err: providers.ErrNoRefreshToken}
	}
	ts, err := p.tokenRequest(ctx, "refresh", url.Values{
		"client_key":    {p.clientKey},
		"client_secret": {p.clientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {cred.RefreshToken},
	})
	if err != nil {
		return nil, err
	}
	if ts.RefreshToken == "" {
		ts.RefreshToken = cred.RefreshToken
	}
	if len(ts.Scopes) == 0 {
		ts.Scopes = append([]string(nil), cred.Scopes...)
	}
	return ts, nil
}

func (p *Provider) tokenRequest(ctx context.Context, op string, form url.Values) (*providers.TokenSet, error) {
	ctx, cancel := p.opts.WithTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.desc.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &providers.ExchangeError{Provider: p.Name(), Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := providers.TokenRequest(p.opts.HTTPClient, req, p.Name(), op)
	if err != nil {
		return nil, err
	}
	ts := &providers.TokenSet{
		AccessToken:  res.Get("access_token").String(),
		RefreshToken: res.Get("refresh_token").String(),
		ExpiresAt:    providers.ExpiryFrom(res, p.now()),
		Scopes:       providers.SplitScopes(res.Get("scope").String()),
	}
	if openID := res.Get("open_id").String(); openID != "" {
		ts.AccountIDs = map[string]string{"open_id": openID}
	}
	return ts, nil
}

// FetchMetadata lee /v2/user/info/. TikTok responde 200 con error.code != "ok"
// cuando falla.
func (p *Provider) FetchMetadata(ctx context.Context, accessToken string) (map[string]string, error) {
	u := p.desc.APIURL("/user/info/") + "?" + url.Values{"fields": {"open_id,union_id,display_name"}}.Encode()
	res, err := providers.GetJSON(ctx, p.opts.HTTPClient, u, accessToken, p.opts.MetadataTries)
	if err != nil {
		return nil, err
	}
	if code := res.Get("error.code").String(); code != "" && code != "ok" {
		return nil, errors.New("tiktok: user info: " + code)
	}
	user := res.Get("data.user")
	out := map[string]string{}
	user.ForEach(func(k, v gjson.Result) bool {
		switch k.String() {
		case "open_id", "union_id", "display_name":
			if s := v.String(); s != "" {
				out[k.String()] = s
			}
		}
		return true
	})
	if out["open_id"] == "" {
		return nil, errors.New("tiktok: missing open_id")
	}
	return out, nil
}
