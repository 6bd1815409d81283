package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/socialbridge/internal/http/middlewares"
)

// SessionRoutes registra POST /v1/session/login (público, rate limited).
func SessionRoutes(r chi.Router, d Deps) {
	if d.Session == nil {
		return
	}
	r.With(
		mw.WithNoStore(),
		mw.WithRateLimit(withLimiter(d.LoginLimit, d.Limiter)),
	).Post("/v1/session/login", d.Session.Login)
}
