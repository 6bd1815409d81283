// Package connect contiene los controllers de /auth/{provider}/* y
// /{provider}/verify.
package connect

import (
	svc "github.com/dropDatabas3/socialbridge/internal/http/services/connect"
)

// Controllers agrupa todos los controllers del dominio connect.
type Controllers struct {
	Login       *LoginController
	Callback    *CallbackController
	Connections *ConnectionsController
	Verify      *VerifyController
}

// Deps contains dependencies for the connect controllers.
type Deps struct {
	Service   svc.Service
	Providers svc.ProviderResolver

	// FrontendURL, si está, el callback redirige ahí con ?provider=&status=.
	FrontendURL string
}

// NewControllers crea el agregador de controllers connect.
func NewControllers(d Deps) *Controllers {
	return &Controllers{
		Login:       NewLoginController(d.Service),
		Callback:    NewCallbackController(d.Service, d.FrontendURL),
		Connections: NewConnectionsController(d.Service),
		Verify:      NewVerifyController(d.Providers),
	}
}
