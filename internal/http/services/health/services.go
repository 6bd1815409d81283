// Package health contiene los services de health check.
package health

import (
	"context"
	"time"

	dto "github.com/dropDatabas3/socialbridge/internal/http/dto/health"
)

// Pinger es cualquier dependencia con chequeo de conectividad (store, redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapta una función a Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthService responde liveness y readiness.
type HealthService interface {
	Live() dto.HealthResponse
	Ready(ctx context.Context) (dto.HealthResponse, bool)
}

// Deps contains dependencies for the health service.
type Deps struct {
	Components map[string]Pinger
	Providers  func() []string
	Version    string
	Timeout    time.Duration
}

// Services agrupa todos los services del dominio health.
type Services struct {
	Health HealthService
}

// NewServices crea el agregador de services health.
func NewServices(d Deps) Services {
	return Services{
		Health: NewHealthService(d),
	}
}

type healthService struct {
	deps Deps
	now  func() time.Time
}

// NewHealthService creates a new HealthService.
func NewHealthService(d Deps) HealthService {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	return &healthService{deps: d, now: time.Now}
}

func (s *healthService) Live() dto.HealthResponse {
	return dto.HealthResponse{Status: "ok", Version: s.deps.Version, Timestamp: s.now().UTC()}
}

// Ready pingea cada componente; cualquier error => unavailable.
func (s *healthService) Ready(ctx context.Context) (dto.HealthResponse, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:     "ready",
		Components: make(map[string]dto.HealthStatus, len(s.deps.Components)),
		Version:    s.deps.Version,
		Timestamp:  s.now().UTC(),
	}
	if s.deps.Providers != nil {
		resp.Providers = s.deps.Providers()
	}

	ok := true
	for name, p := range s.deps.Components {
		if p == nil {
			resp.Components[name] = dto.HealthStatus{Status: "disabled"}
			continue
		}
		if err := p.Ping(ctx); err != nil {
			ok = false
			resp.Components[name] = dto.HealthStatus{Status: "error", Message: err.Error()}
			continue
		}
		resp.Components[name] = dto.HealthStatus{Status: "ok"}
	}
	if !ok {
		resp.Status = "unavailable"
	}
	return resp, ok
}
