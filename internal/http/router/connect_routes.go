package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/socialbridge/internal/http/middlewares"
)

// ConnectRoutes registra el flujo OAuth por proveedor y el Access Gate.
func ConnectRoutes(r chi.Router, d Deps) {
	c := d.Connect
	if c == nil {
		return
	}
	auth := mw.RequireAuth(d.Auth)

	r.Route("/auth", func(r chi.Router) {
		r.Use(mw.WithNoStore())

		// GET /auth/{provider}/callback - público, la identidad sale del state
		r.With(mw.WithRateLimit(withLimiter(d.CallbackLimit, d.Limiter))).
			Get("/{provider}/callback", c.Callback.Callback)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/connections", c.Connections.List)
			r.Get("/{provider}/login", c.Login.Login)
			r.Delete("/{provider}", c.Connections.Disconnect)
		})
	})

	// GET /{provider}/verify - detrás del Access Gate
	if d.Refresher == nil {
		return
	}
	for _, name := range d.EnabledProviders {
		r.With(auth, mw.WithNoStore(), mw.RequireConnection(name, d.Refresher)).
			Get("/"+name+"/verify", c.Verify.For(name))
	}
}
