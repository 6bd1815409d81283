// Package connect implementa el OAuth Flow Controller compartido por todos
// los proveedores: login (state + authorize URL), callback (validación,
// canje, persistencia, metadata), disconnect y estado de conexiones.
package connect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/http/services/credential"
	"github.com/dropDatabas3/socialbridge/internal/providers"
	"github.com/dropDatabas3/socialbridge/internal/state"
)

// FlowState es el estado de un flujo (user, provider).
type FlowState string

const (
	StateIdle             FlowState = "idle"
	StateInitiated        FlowState = "initiated"
	StateAwaitingCallback FlowState = "awaiting_callback"
	StateCompleted        FlowState = "completed"
	StateFailed           FlowState = "failed"
)

// Service errors
var (
	ErrProviderUnknown     = errors.New("connect: unknown provider")
	ErrProviderDisabled    = errors.New("connect: provider not enabled")
	ErrInvalidState        = errors.New("connect: invalid state")
	ErrProviderDenied      = errors.New("connect: provider denied authorization")
	ErrMissingCode         = errors.New("connect: missing code")
	ErrTokenExchangeFailed = errors.New("connect: token exchange failed")
	ErrMetadataFetchFailed = errors.New("connect: metadata fetch failed")
	ErrStoreFailed         = errors.New("connect: credential store failed")
)

// FlowError lleva el detalle de un callback fallido. errors.Is funciona
// contra Kind y contra la causa.
type FlowError struct {
	Kind     error
	Provider string

	// Detail es seguro para el cliente (descripción del proveedor, nunca tokens).
	Detail string

	// Rejected: el proveedor rechazó el canje (vs. red/timeout/5xx).
	Rejected bool
	Err      error
}

func (e *FlowError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FlowError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// CallbackRequest son los query params del redirect del proveedor.
type CallbackRequest struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackResult describe un flujo completado.
type CallbackResult struct {
	UserID     string
	Provider   string
	State      FlowState
	ExpiresAt  time.Time
	AccountIDs map[string]string

	// MetadataFetched es false si el enriquecimiento falló (la conexión sigue válida).
	MetadataFetched bool
}

// Connection es el estado de un proveedor para el usuario. Nunca incluye tokens.
type Connection struct {
	Provider        string
	Enabled         bool
	Connected       bool
	State           FlowState // idle | completed
	ExpiresAt       time.Time
	HasRefreshToken bool
	Scopes          []string
	AccountIDs      map[string]string
	UpdatedAt       time.Time
}

// Service es el Flow Controller.
type Service interface {
	// Login emite un state y devuelve la URL de autorización del proveedor.
	Login(ctx context.Context, userID, provider string) (string, error)

	// Callback procesa el redirect del proveedor. La identidad sale del state,
	// nunca del caller.
	Callback(ctx context.Context, provider string, req CallbackRequest) (*CallbackResult, error)

	// Disconnect borra la credencial. Idempotente.
	Disconnect(ctx context.Context, userID, provider string) error

	// Connections lista el estado de cada proveedor conocido.
	Connections(ctx context.Context, userID string) ([]Connection, error)
}

// ProviderResolver resuelve proveedores habilitados (providers.Registry).
type ProviderResolver interface {
	Get(name string) (providers.Provider, error)
}

// Deps contains dependencies for the connect service.
type Deps struct {
	States    state.Registry
	Providers ProviderResolver
	Store     repository.CredentialRepository

	// Known son los proveedores listados en Connections (default: todos).
	Known []string

	// MetadataTimeout acota el enriquecimiento best-effort.
	MetadataTimeout time.Duration

	// Locks serializa escrituras por (user, provider) con el refresh service.
	Locks *credential.Locks
}

type service struct {
	states          state.Registry
	providers       ProviderResolver
	store           repository.CredentialRepository
	known           []string
	metadataTimeout time.Duration
	locks           *credential.Locks
}

// NewService creates a new connect Service.
func NewService(d Deps) Service {
	s := &service{
		states:          d.States,
		providers:       d.Providers,
		store:           d.Store,
		known:           d.Known,
		metadataTimeout: d.MetadataTimeout,
		locks:           d.Locks,
	}
	if s.locks == nil {
		s.locks = credential.NewLocks()
	}
	if len(s.known) == 0 {
		s.known = config.ProviderNames
	}
	if s.metadataTimeout <= 0 {
		s.metadataTimeout = 15 * time.Second
	}
	return s
}

// resolve traduce los errores del registry a errores del servicio.
func (s *service) resolve(name string) (providers.Provider, error) {
	p, err := s.providers.Get(name)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, providers.ErrProviderDisabled):
		return nil, ErrProviderDisabled
	case errors.Is(err, providers.ErrProviderUnknown):
		return nil, ErrProviderUnknown
	default:
		return nil, fmt.Errorf("%w: %v", ErrProviderUnknown, err)
	}
}

func (s *service) isKnown(name string) bool {
	for _, k := range s.known {
		if k == name {
			return true
		}
	}
	return false
}
