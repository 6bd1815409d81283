package providers

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
)

// OAuth2 es el proveedor genérico sobre golang.org/x/oauth2. Lo usan
// directamente o embebido Facebook, Instagram, Gmail y WhatsApp.
type OAuth2 struct {
	desc Descriptor
	conf *oauth2.Config
	opts Options
	now  func() time.Time
}

// NewOAuth2 construye el proveedor a partir del descriptor y la config.
func NewOAuth2(d Descriptor, pc config.ProviderConfig, opts Options) *OAuth2 {
	d = d.WithOverrides(pc)
	return &OAuth2{
		desc: d,
		conf: &oauth2.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURL:  pc.RedirectURI,
			Scopes:       ScopesOrDefault(pc, d),
			Endpoint: oauth2.Endpoint{
				AuthURL:  d.AuthURL,
				TokenURL: d.TokenURL,
				// credenciales en el body: Meta no acepta Basic auth
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		opts: opts.Normalize(),
		now:  time.Now,
	}
}

func (p *OAuth2) Name() string                  { return p.desc.Name }
func (p *OAuth2) Descriptor() Descriptor        { return p.desc }
func (p *OAuth2) Options() Options              { return p.opts }
func (p *OAuth2) ClientID() string              { return p.conf.ClientID }
func (p *OAuth2) ClientSecret() string          { return p.conf.ClientSecret }
func (p *OAuth2) Scopes() []string              { return append([]string(nil), p.conf.Scopes...) }
func (p *OAuth2) Now() time.Time                { return p.now() }
func (p *OAuth2) SetClock(now func() time.Time) { p.now = now }

func (p *OAuth2) AuthCodeURL(state string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(p.desc.AuthParams))
	for k, v := range p.desc.AuthParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return p.conf.AuthCodeURL(state, opts...)
}

// clientContext acota ctx con el timeout e inyecta el http.Client.
func (p *OAuth2) clientContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := p.opts.WithTimeout(ctx)
	return context.WithValue(ctx, oauth2.HTTPClient, p.opts.HTTPClient), cancel
}

func (p *OAuth2) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	ctx, cancel := p.clientContext(ctx)
	defer cancel()

	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, wrapOAuth2Error(p.desc.Name, "exchange", err)
	}
	ts := tokenSetFrom(tok)
	if len(ts.Scopes) == 0 {
		ts.Scopes = p.Scopes()
	}
	return ts, nil
}

// Refresh usa el refresh token guardado. Si el proveedor no rota el refresh
// token, oauth2 conserva el anterior.
func (p *OAuth2) Refresh(ctx context.Context, cred *repository.Credential) (*TokenSet, error) {
	if cred == nil || cred.RefreshToken == "" {
		return nil, &ExchangeError{Provider: p.desc.Name, Op: "refresh", Err: ErrNoRefreshToken}
	}
	ctx, cancel := p.clientContext(ctx)
	defer cancel()

	tok, err := p.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return nil, wrapOAuth2Error(p.desc.Name, "refresh", err)
	}
	ts := tokenSetFrom(tok)
	if len(ts.Scopes) == 0 {
		ts.Scopes = append([]string(nil), cred.Scopes...)
	}
	return ts, nil
}

func tokenSetFrom(tok *oauth2.Token) *TokenSet {
	ts := &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if s, ok := tok.Extra("scope").(string); ok {
		ts.Scopes = SplitScopes(s)
	}
	return ts
}
