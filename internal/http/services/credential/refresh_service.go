// Package credential implementa el Credential Refresh Service: devuelve un
// access token usable para (user, provider), renovándolo cuando está por
// vencer. Los refresh concurrentes de la misma clave se colapsan en uno.
package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/metrics"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
	"github.com/dropDatabas3/socialbridge/internal/providers"
)

// Service errors
var (
	ErrNotConnected  = errors.New("credential: not connected")
	ErrRefreshFailed = errors.New("credential: refresh failed")
)

const (
	DefaultSafetyMargin = 60 * time.Second
	DefaultTimeout      = 15 * time.Second
)

// RefreshService entrega access tokens válidos.
type RefreshService interface {
	// EnsureValid devuelve el access token vigente o uno renovado.
	// ErrNotConnected si no hay credencial; ErrRefreshFailed si el refresh
	// falló (la credencial se conserva).
	EnsureValid(ctx context.Context, userID, provider string) (string, error)
}

// ProviderResolver resuelve el proveedor por nombre (providers.Registry).
type ProviderResolver interface {
	Get(name string) (providers.Provider, error)
}

// Deps contains dependencies for the refresh service.
type Deps struct {
	Store     repository.CredentialRepository
	Providers ProviderResolver

	// SafetyMargin: el token se considera vencido este tiempo antes de ExpiresAt.
	SafetyMargin time.Duration
	// Locks se comparte con el connect service (callback/disconnect).
	Locks *Locks
	// Timeout acota el refresh completo (relectura + proveedor + upsert).
	Timeout time.Duration
	Now     func() time.Time
}

type refreshService struct {
	store     repository.CredentialRepository
	providers ProviderResolver
	margin    time.Duration
	timeout   time.Duration
	now       func() time.Time
	locks     *Locks

	group singleflight.Group
}

// NewRefreshService creates a new RefreshService.
func NewRefreshService(d Deps) RefreshService {
	s := &refreshService{
		store:     d.Store,
		providers: d.Providers,
		margin:    d.SafetyMargin,
		timeout:   d.Timeout,
		now:       d.Now,
		locks:     d.Locks,
	}
	if s.locks == nil {
		s.locks = NewLocks()
	}
	if s.margin <= 0 {
		s.margin = DefaultSafetyMargin
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func flightKey(userID, provider string) string { return provider + "\x00" + userID }

func (s *refreshService) EnsureValid(ctx context.Context, userID, provider string) (string, error) {
	cred, err := s.store.Get(ctx, userID, provider)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", ErrNotConnected
		}
		return "", fmt.Errorf("credential: load: %w", err)
	}
	// fast path: sin red, sin lock
	if cred.ValidAt(s.now(), s.margin) {
		return cred.AccessToken, nil
	}

	v, err, _ := s.group.Do(flightKey(userID, provider), func() (any, error) {
		// Contexto desacoplado: si el caller que inició el flight cancela,
		// los demás que esperan el mismo resultado no fallan.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.refresh(fctx, userID, provider)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *refreshService) refresh(ctx context.Context, userID, provider string) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("credential.refresh"),
		logger.UserID(userID),
		logger.Provider(provider),
	)

	// Relectura dentro del flight: un flight anterior pudo haber renovado.
	cred, err := s.store.Get(ctx, userID, provider)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", ErrNotConnected
		}
		return "", fmt.Errorf("credential: reload: %w", err)
	}
	if cred.ValidAt(s.now(), s.margin) {
		return cred.AccessToken, nil
	}

	p, err := s.providers.Get(provider)
	if err != nil {
		log.Warn("refresh: provider unavailable", logger.Err(err))
		metrics.RecordTokenRefresh(provider, metrics.OutcomeRefreshFailed)
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	log.Debug("refresh: calling provider", logger.TokenPresence("refresh_token", cred.RefreshToken)...)
	ts, err := p.Refresh(ctx, cred)
	if err != nil {
		log.Warn("refresh: provider rejected or unreachable",
			logger.Bool("rejected", providers.IsRejected(err)),
			logger.Err(err),
		)
		metrics.RecordTokenRefresh(provider, metrics.OutcomeRefreshFailed)
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	// La llamada al proveedor corre sin lock; la escritura se hace bajo el lock
	// de la clave y sólo si la fila sigue siendo la que se renovó. Un
	// disconnect o un reconnect concurrente ganan.
	unlock := s.locks.Lock(userID, provider)
	defer unlock()
	cur, err := s.store.Get(ctx, userID, provider)
	if err != nil {
		metrics.RecordTokenRefresh(provider, metrics.OutcomeRefreshFailed)
		if repository.IsNotFound(err) {
			log.Info("refresh: credential cleared while refreshing, discarding token")
			return "", ErrNotConnected
		}
		return "", fmt.Errorf("%w: reload: %v", ErrRefreshFailed, err)
	}
	if cur.AccessToken != cred.AccessToken || cur.RefreshToken != cred.RefreshToken {
		log.Info("refresh: credential replaced while refreshing, discarding token")
		metrics.RecordTokenRefresh(provider, metrics.OutcomeRefreshSuperseded)
		if cur.ValidAt(s.now(), s.margin) {
			return cur.AccessToken, nil
		}
		return "", fmt.Errorf("%w: credential replaced during refresh", ErrRefreshFailed)
	}

	updated := *cur
	updated.AccessToken = ts.AccessToken
	updated.ExpiresAt = ts.ExpiresAt
	if ts.RefreshToken != "" {
		updated.RefreshToken = ts.RefreshToken
	}
	if len(ts.Scopes) > 0 {
		updated.Scopes = ts.Scopes
	}
	if len(ts.AccountIDs) > 0 {
		merged := make(map[string]string, len(cur.AccountIDs)+len(ts.AccountIDs))
		for k, v := range cur.AccountIDs {
			merged[k] = v
		}
		for k, v := range ts.AccountIDs {
			merged[k] = v
		}
		updated.AccountIDs = merged
	}

	if err := s.store.Upsert(ctx, userID, provider, updated); err != nil {
		log.Error("refresh: persist failed", logger.Err(err))
		metrics.RecordTokenRefresh(provider, metrics.OutcomeRefreshFailed)
		return "", fmt.Errorf("%w: persist: %v", ErrRefreshFailed, err)
	}

	fields := append(logger.TokenPresence("access_token", updated.AccessToken),
		logger.Bool("refresh_token_rotated", ts.RefreshToken != "" && ts.RefreshToken != cred.RefreshToken),
		logger.Bool("has_expiry", updated.HasExpiry()),
	)
	log.Info("refresh: token renewed", fields...)
	metrics.RecordTokenRefresh(provider, metrics.OutcomeRefreshed)
	return updated.AccessToken, nil
}
