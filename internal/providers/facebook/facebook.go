// Package facebook implementa el proveedor Facebook (Marketing API) y la base
// Graph API que reutiliza WhatsApp.
package facebook

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

const (
	DefaultAPIVersion = "v22.0"
	graphBaseURL      = "https://graph.facebook.com"
)

// Descriptor devuelve el descriptor de Facebook para la versión dada.
func Descriptor(version string) providers.Descriptor {
	if version == "" {
		version = DefaultAPIVersion
	}
	return providers.Descriptor{
		Name:          config.ProviderFacebook,
		AuthURL:       "https://www.facebook.com/" + version + "/dialog/oauth",
		TokenURL:      graphBaseURL + "/" + version + "/oauth/access_token",
		APIBaseURL:    graphBaseURL,
		APIVersion:    version,
		DefaultScopes: []string{"ads_management", "ads_read", "business_management", "pages_show_list", "pages_read_engagement"},
		LongLived:     true,
	}
}

// MetadataFunc obtiene los ids de cuenta propios de cada producto Graph.
type MetadataFunc func(ctx context.Context, g *Graph, accessToken string) (map[string]string, error)

// Graph es un proveedor OAuth2 de la familia Meta Graph API.
type Graph struct {
	*providers.OAuth2
	fetch MetadataFunc
}

// New crea el proveedor Facebook.
func New(pc config.ProviderConfig, opts providers.Options) *Graph {
	return NewGraph(Descriptor(pc.APIVersion), pc, opts, facebookMetadata)
}

// NewGraph crea un proveedor Graph con descriptor y metadata propios.
func NewGraph(d providers.Descriptor, pc config.ProviderConfig, opts providers.Options, fetch MetadataFunc) *Graph {
	return &Graph{OAuth2: providers.NewOAuth2(d, pc, opts), fetch: fetch}
}

// ExchangeLongLived canjea el token corto por uno de ~60 días (fb_exchange_token).
func (g *Graph) ExchangeLongLived(ctx context.Context, short *providers.TokenSet) (*providers.TokenSet, error) {
	ts, err := g.fbExchange(ctx, short.AccessToken, "long_lived")
	if err != nil {
		return nil, err
	}
	ts.RefreshToken = short.RefreshToken
	ts.Scopes = append([]string(nil), short.Scopes...)
	ts.AccountIDs = short.AccountIDs
	return ts, nil
}

// Refresh: Graph no emite refresh tokens; un token largo todavía válido se
// vuelve a canjear por otro. Si hay refresh token se usa el flujo estándar.
func (g *Graph) Refresh(ctx context.Context, cred *repository.Credential) (*providers.TokenSet, error) {
	if cred == nil {
		return nil, &providers.ExchangeError{Provider: g.Name(), Op: "refresh", Err: providers.ErrNoRefreshToken}
	}
	if cred.RefreshToken != "" {
		return g.OAuth2.Refresh(ctx, cred)
	}
	if cred.AccessToken == "" {
		return nil, &providers.ExchangeError{Provider: g.Name(), Op: "refresh", Err: providers.ErrNoRefreshToken}
	}
	ts, err := g.fbExchange(ctx, cred.AccessToken, "refresh")
	if err != nil {
		return nil, err
	}
	ts.Scopes = append([]string(nil), cred.Scopes...)
	return ts, nil
}

func (g *Graph) fbExchange(ctx context.Context, accessToken, op string) (*providers.TokenSet, error) {
	opts := g.Options()
	ctx, cancel := opts.WithTimeout(ctx)
	defer cancel()

	form := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {g.ClientID()},
		"client_secret":     {g.ClientSecret()},
		"fb_exchange_token": {accessToken},
	}
	// POST: secretos en el body, nunca en la URL
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Descriptor().TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &providers.ExchangeError{Provider: g.Name(), Op: op, Err: providers.RedactURLError(err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err := providers.TokenRequest(opts.HTTPClient, req, g.Name(), op)
	if err != nil {
		return nil, err
	}
	return &providers.TokenSet{
		AccessToken: res.Get("access_token").String(),
		ExpiresAt:   providers.ExpiryFrom(res, g.Now()),
	}, nil
}

// FetchMetadata delega en la función del producto.
func (g *Graph) FetchMetadata(ctx context.Context, accessToken string) (map[string]string, error) {
	if g.fetch == nil {
		return nil, nil
	}
	return g.fetch(ctx, g, accessToken)
}

// FirstID devuelve data[0].id de un edge Graph (/me/adaccounts, /me/accounts...).
func (g *Graph) FirstID(ctx context.Context, accessToken, edge string) (string, error) {
	u := g.Descriptor().APIURL(edge) + "?" + url.Values{"fields": {"id"}, "limit": {"1"}}.Encode()
	res, err := providers.GetJSON(ctx, g.Options().HTTPClient, u, accessToken, g.Options().MetadataTries)
	if err != nil {
		return "", err
	}
	id := res.Get("data.0.id").String()
	if id == "" {
		return "", errors.New("graph: empty edge " + edge)
	}
	return id, nil
}

// facebookMetadata: ad account, business y page del usuario.
func facebookMetadata(ctx context.Context, g *Graph, accessToken string) (map[string]string, error) {
	edges := []struct{ key, edge string }{
		{"ad_account_id", "/me/adaccounts"},
		{"business_id", "/me/businesses"},
		{"page_id", "/me/accounts"},
	}
	out := make(map[string]string, len(edges))
	var errs []error
	for _, e := range edges {
		id, err := g.FirstID(ctx, accessToken, e.edge)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[e.key] = id
	}
	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
