// Package router arma el chi.Router con todas las rutas del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	connectctrl "github.com/dropDatabas3/socialbridge/internal/http/controllers/connect"
	healthctrl "github.com/dropDatabas3/socialbridge/internal/http/controllers/health"
	sessionctrl "github.com/dropDatabas3/socialbridge/internal/http/controllers/session"
	httperrors "github.com/dropDatabas3/socialbridge/internal/http/errors"
	mw "github.com/dropDatabas3/socialbridge/internal/http/middlewares"
	"github.com/dropDatabas3/socialbridge/internal/http/services/credential"
	"github.com/dropDatabas3/socialbridge/internal/rate"
)

// Deps contiene todo lo que el router necesita.
type Deps struct {
	Connect *connectctrl.Controllers
	Session *sessionctrl.LoginController
	Health  *healthctrl.Controllers

	Auth      mw.AuthConfig
	Refresher credential.RefreshService

	// EnabledProviders monta /{provider}/verify para cada uno.
	EnabledProviders []string

	// Limiter puede ser nil (sin rate limiting).
	Limiter       rate.MultiLimiter
	GlobalLimit   mw.RateLimitConfig
	LoginLimit    mw.RateLimitConfig
	CallbackLimit mw.RateLimitConfig

	CORSOrigins []string

	// Metrics es el handler de /metrics; Instrument envuelve el router.
	Metrics    http.Handler
	Instrument func(http.Handler) http.Handler
}

// New arma el router completo.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(d.CORSOrigins),
	)
	if d.Instrument != nil {
		r.Use(d.Instrument)
	}
	r.Use(mw.WithRateLimit(withLimiter(d.GlobalLimit, d.Limiter)))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	HealthRoutes(r, d)
	SessionRoutes(r, d)
	ConnectRoutes(r, d)
	return r
}

func withLimiter(cfg mw.RateLimitConfig, l rate.MultiLimiter) mw.RateLimitConfig {
	if cfg.Limiter == nil {
		cfg.Limiter = l
	}
	return cfg
}
