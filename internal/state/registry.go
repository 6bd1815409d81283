// Package state implementa el registro de state tokens OAuth: un valor opaco
// de un solo uso que correlaciona el callback del proveedor con el usuario
// que inició el flujo.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/socialbridge/internal/cache"
	tokens "github.com/dropDatabas3/socialbridge/internal/security/token"
)

const (
	// DefaultTTL es la vida máxima de un state token.
	DefaultTTL = time.Hour

	// tokenBytes da 256 bits de entropía (mínimo requerido: 128).
	tokenBytes = 32

	keyPrefix = "oauth_state:"
)

// ErrNotFound indica state desconocido, ya consumido o expirado.
var ErrNotFound = errors.New("state: not found or expired")

// Entry es lo que se registra al emitir un state.
type Entry struct {
	UserID    string    `json:"user_id"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// Registry es el contrato del registro de states.
type Registry interface {
	// Issue emite un state nuevo para (userID, provider).
	Issue(ctx context.Context, userID, provider string) (string, error)

	// VerifyAndConsume devuelve la entrada y la elimina de forma atómica.
	// Un segundo intento con el mismo token devuelve ErrNotFound.
	VerifyAndConsume(ctx context.Context, token string) (*Entry, error)

	// Evict elimina las entradas con más de TTL de antigüedad.
	Evict(ctx context.Context) (int, error)
}

// Options configura el registro.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}

type cacheRegistry struct {
	cache cache.Client
	ttl   time.Duration
	now   func() time.Time
}

// New crea un Registry sobre un cache.Client (memory o redis).
func New(c cache.Client, opts Options) Registry {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &cacheRegistry{cache: c, ttl: opts.TTL, now: opts.Now}
}

// storageKey no persiste el token en claro.
func storageKey(token string) string {
	return keyPrefix + tokens.SHA256Base64URL(token)
}

func (r *cacheRegistry) Issue(ctx context.Context, userID, provider string) (string, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(provider) == "" {
		return "", fmt.Errorf("state: user and provider are required")
	}
	tok, err := tokens.GenerateOpaqueToken(tokenBytes)
	if err != nil {
		return "", fmt.Errorf("state: generate: %w", err)
	}
	b, err := json.Marshal(Entry{UserID: userID, Provider: provider, CreatedAt: r.now().UTC()})
	if err != nil {
		return "", err
	}
	if err := r.cache.Set(ctx, storageKey(tok), string(b), r.ttl); err != nil {
		return "", fmt.Errorf("state: store: %w", err)
	}
	return tok, nil
}

func (r *cacheRegistry) VerifyAndConsume(ctx context.Context, token string) (*Entry, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNotFound
	}
	raw, err := r.cache.Take(ctx, storageKey(token))
	if cache.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("state: take: %w", err)
	}

	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, ErrNotFound
	}
	// Vencido aunque el sweep todavía no haya pasado.
	if !r.now().Before(e.CreatedAt.Add(r.ttl)) {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *cacheRegistry) Evict(ctx context.Context) (int, error) {
	return r.cache.Sweep(ctx)
}
