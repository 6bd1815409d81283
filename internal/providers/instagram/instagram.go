// Package instagram implementa Instagram API with Instagram Login (cuentas business).
package instagram

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/providers"
)

const graphBaseURL = "https://graph.instagram.com"

func Descriptor(version string) providers.Descriptor {
	if version == "" {
		version = "v22.0"
	}
	return providers.Descriptor{
		Name:       config.ProviderInstagram,
		AuthURL:    "https://www.instagram.com/oauth/authorize",
		TokenURL:   "https://api.instagram.com/oauth/access_token",
		APIBaseURL: graphBaseURL,
		APIVersion: version,
		DefaultScopes: []string{
			"instagram_business_basic",
			"instagram_business_manage_messages",
			"instagram_business_manage_comments",
			"instagram_business_content_publish",
			"instagram_business_manage_insights",
		},
		LongLived: true,
	}
}

// Provider usa el code exchange genérico y endpoints propios para el token largo.
type Provider struct {
	*providers.OAuth2
}

func New(pc config.ProviderConfig, opts providers.Options) *Provider {
	return &Provider{OAuth2: providers.NewOAuth2(Descriptor(pc.APIVersion), pc, opts)}
}

// baseURL es graph.instagram.com sin versión (access_token y refresh no la llevan).
func (p *Provider) baseURL() string {
	return strings.TrimRight(p.Descriptor().APIBaseURL, "/")
}

// ExchangeLongLived: ig_exchange_token, token de 60 días.
func (p *Provider) ExchangeLongLived(ctx context.Context, short *providers.TokenSet) (*providers.TokenSet, error) {
	q := url.Values{
		"grant_type":    {"ig_exchange_token"},
		"client_secret": {p.ClientSecret()},
		"access_token":  {short.AccessToken},
	}
	ts, err := p.get(ctx, p.baseURL()+"/access_token?"+q.Encode(), "long_lived")
	if err != nil {
		return nil, err
	}
	ts.Scopes = append([]string(nil), short.Scopes...)
	ts.AccountIDs = short.AccountIDs
	return ts, nil
}

// Refresh: ig_refresh_token sobre el token largo vigente. Instagram no usa
// refresh tokens; un token ya vencido no se puede renovar.
func (p *Provider) Refresh(ctx context.Context, cred *repository.Credential) (*providers.TokenSet, error) {
	if cred == nil || cred.AccessToken == "" {
		return nil, &providers.ExchangeError{Provider: p.Name(), Op: "refresh", Err: providers.ErrNoRefreshToken}
	}
	q := url.Values{
		"grant_type":   {"ig_refresh_token"},
		"access_token": {cred.AccessToken},
	}
	ts, err := p.get(ctx, p.baseURL()+"/refresh_access_token?"+q.Encode(), "refresh")
	if err != nil {
		return nil, err
	}
	ts.Scopes = append([]string(nil), cred.Scopes...)
	return ts, nil
}

func (p *Provider) get(ctx context.Context, rawURL, op string) (*providers.TokenSet, error) {
	opts := p.Options()
	ctx, cancel := opts.WithTimeout(ctx)
	defer cancel()

	// los endpoints de Instagram sólo aceptan GET; TokenRequest redacta la query en errores
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &providers.ExchangeError{Provider: p.Name(), Op: op, Err: providers.RedactURLError(err)}
	}
	res, err := providers.TokenRequest(opts.HTTPClient, req, p.Name(), op)
	if err != nil {
		return nil, err
	}
	return &providers.TokenSet{
		AccessToken: res.Get("access_token").String(),
		ExpiresAt:   providers.ExpiryFrom(res, p.Now()),
	}, nil
}

// FetchMetadata: id y username de la cuenta profesional.
func (p *Provider) FetchMetadata(ctx context.Context, accessToken string) (map[string]string, error) {
	u := p.Descriptor().APIURL("/me") + "?" + url.Values{"fields": {"user_id,username"}}.Encode()
	opts := p.Options()
	res, err := providers.GetJSON(ctx, opts.HTTPClient, u, accessToken, opts.MetadataTries)
	if err != nil {
		return nil, err
	}
	id := res.Get("user_id").String()
	if id == "" {
		id = res.Get("id").String()
	}
	if id == "" {
		return nil, errors.New("instagram: missing user_id")
	}
	out := map[string]string{"instagram_user_id": id}
	if name := res.Get("username").String(); name != "" {
		out["username"] = name
	}
	return out, nil
}
