// Package providers define el contrato común de los proveedores OAuth2
// externos (Facebook, Instagram, TikTok, Gmail, WhatsApp) y las piezas
// compartidas: descriptor, registry, cliente OAuth2 genérico y helpers HTTP.
//
// El flujo (state, callback, persistencia) vive en services/connect; acá solo
// se habla con el proveedor.
package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
)

var (
	ErrProviderUnknown  = errors.New("providers: unknown provider")
	ErrProviderDisabled = errors.New("providers: provider not enabled")
	ErrNoRefreshToken   = errors.New("providers: no refresh token")
)

// TokenSet es el resultado de un intercambio o refresh.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // zero = el proveedor no informó vencimiento
	Scopes       []string

	// AccountIDs que el proveedor devuelve junto al token (open_id, user_id).
	AccountIDs map[string]string
}

// Provider es lo mínimo que el Flow Controller y el Refresh Service necesitan.
type Provider interface {
	Name() string

	// AuthCodeURL arma la URL de autorización con state, client id,
	// redirect URI y scopes.
	AuthCodeURL(state string) string

	// Exchange canjea el authorization code usando el redirect URI configurado.
	Exchange(ctx context.Context, code string) (*TokenSet, error)

	// Refresh renueva el access token de una credencial guardada.
	Refresh(ctx context.Context, cred *repository.Credential) (*TokenSet, error)
}

// LongLivedExchanger lo implementan los proveedores que canjean el token
// corto por uno de larga duración (Facebook, Instagram, WhatsApp).
type LongLivedExchanger interface {
	ExchangeLongLived(ctx context.Context, short *TokenSet) (*TokenSet, error)
}

// Described lo implementan los proveedores construidos desde un Descriptor.
type Described interface {
	Descriptor() Descriptor
}

// LongLivedFor devuelve el exchanger si el proveedor canjea tokens largos.
// Con descriptor manda Descriptor.LongLived; sin descriptor alcanza con
// implementar LongLivedExchanger.
func LongLivedFor(p Provider) (LongLivedExchanger, bool) {
	lle, ok := p.(LongLivedExchanger)
	if !ok {
		return nil, false
	}
	if d, ok := p.(Described); ok && !d.Descriptor().LongLived {
		return nil, false
	}
	return lle, true
}

// MetadataFetcher obtiene ids de cuenta del proveedor. Es best-effort.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, accessToken string) (map[string]string, error)
}

// Descriptor describe los endpoints y defaults de un proveedor.
type Descriptor struct {
	Name          string
	AuthURL       string
	TokenURL      string
	APIBaseURL    string
	APIVersion    string
	DefaultScopes []string

	// AuthParams se agregan a la URL de autorización (access_type, prompt...).
	AuthParams map[string]string

	// LongLived indica que el token del code exchange se canjea por uno largo.
	LongLived bool
}

// WithOverrides aplica los endpoints/versión configurados sobre el descriptor.
func (d Descriptor) WithOverrides(pc config.ProviderConfig) Descriptor {
	if pc.AuthURL != "" {
		d.AuthURL = pc.AuthURL
	}
	if pc.TokenURL != "" {
		d.TokenURL = pc.TokenURL
	}
	if pc.APIBaseURL != "" {
		d.APIBaseURL = pc.APIBaseURL
	}
	if pc.APIVersion != "" {
		d.APIVersion = pc.APIVersion
	}
	return d
}

// APIURL arma base/version/path. Sin versión queda base/path.
func (d Descriptor) APIURL(path string) string {
	base := strings.TrimRight(d.APIBaseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if d.APIVersion == "" {
		return base + path
	}
	return base + "/" + strings.Trim(d.APIVersion, "/") + path
}

// Options son las dependencias compartidas por todos los proveedores.
type Options struct {
	HTTPClient *http.Client

	// Timeout acota cada llamada al proveedor (además de HTTPClient.Timeout).
	Timeout time.Duration

	// MetadataTries es el máximo de intentos de cada GET de metadata.
	MetadataTries uint
}

const (
	DefaultTimeout       = 15 * time.Second
	DefaultMetadataTries = 3
)

// Normalize completa los defaults.
func (o Options) Normalize() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	if o.MetadataTries == 0 {
		o.MetadataTries = DefaultMetadataTries
	}
	return o
}

// WithTimeout acota ctx al timeout de las llamadas salientes.
func (o Options) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.Timeout)
}

// ScopesOrDefault devuelve los scopes configurados o los del descriptor.
func ScopesOrDefault(pc config.ProviderConfig, d Descriptor) []string {
	if len(pc.Scopes) > 0 {
		return append([]string(nil), pc.Scopes...)
	}
	return append([]string(nil), d.DefaultScopes...)
}

// SplitScopes separa por coma o espacio y descarta vacíos.
func SplitScopes(s string) []string {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(f) == 0 {
		return nil
	}
	return f
}
