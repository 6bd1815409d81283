// Package health contiene los controllers de health check.
package health

import (
	"net/http"

	"github.com/dropDatabas3/socialbridge/internal/http/helpers"
	svc "github.com/dropDatabas3/socialbridge/internal/http/services/health"
)

// Controllers agrupa todos los controllers del dominio health.
type Controllers struct {
	Health *HealthController
}

// NewControllers crea el agregador de controllers health.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Health: NewHealthController(s.Health),
	}
}

// HealthController handles /healthz and /readyz.
type HealthController struct {
	service svc.HealthService
}

// NewHealthController creates a new HealthController.
func NewHealthController(s svc.HealthService) *HealthController {
	return &HealthController{service: s}
}

// Live responde 200 mientras el proceso esté vivo.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, http.StatusOK, c.service.Live())
}

// Ready responde 503 si algún componente no responde.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	resp, ok := c.service.Ready(r.Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, status, resp)
}
