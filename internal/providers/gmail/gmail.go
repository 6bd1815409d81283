// Package gmail implementa el proveedor Gmail (Google OAuth2, acceso offline).
package gmail

import (
	"context"
	"errors"

	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/providers"
)

func Descriptor() providers.Descriptor {
	return providers.Descriptor{
		Name:       config.ProviderGmail,
		AuthURL:    "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:   "https://oauth2.googleapis.com/token",
		APIBaseURL: "https://gmail.googleapis.com",
		DefaultScopes: []string{
			"https://www.googleapis.com/auth/gmail.send",
			"https://www.googleapis.com/auth/gmail.readonly",
		},
		// offline + consent para que Google emita refresh token siempre
		AuthParams: map[string]string{
			"access_type":            "offline",
			"prompt":                 "consent",
			"include_granted_scopes": "true",
		},
	}
}

type Provider struct {
	*providers.OAuth2
}

func New(pc config.ProviderConfig, opts providers.Options) *Provider {
	return &Provider{OAuth2: providers.NewOAuth2(Descriptor(), pc, opts)}
}

// FetchMetadata devuelve la dirección de la casilla conectada.
func (p *Provider) FetchMetadata(ctx context.Context, accessToken string) (map[string]string, error) {
	opts := p.Options()
	res, err := providers.GetJSON(ctx, opts.HTTPClient, p.Descriptor().APIURL("/gmail/v1/users/me/profile"), accessToken, opts.MetadataTries)
	if err != nil {
		return nil, err
	}
	email := res.Get("emailAddress").String()
	if email == "" {
		return nil, errors.New("gmail: missing emailAddress")
	}
	return map[string]string{"email": email}, nil
}
