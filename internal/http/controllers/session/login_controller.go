// Package session contiene el controller de login de la aplicación.
package session

import (
	"errors"
	"net/http"
	"time"

	dto "github.com/dropDatabas3/socialbridge/internal/http/dto/session"
	httperrors "github.com/dropDatabas3/socialbridge/internal/http/errors"
	"github.com/dropDatabas3/socialbridge/internal/http/helpers"
	svc "github.com/dropDatabas3/socialbridge/internal/http/services/session"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
	"github.com/dropDatabas3/socialbridge/internal/rate"
)

// LoginController handles POST /v1/session/login.
type LoginController struct {
	service svc.LoginService
	limiter rate.MultiLimiter
	limits  helpers.LoginRateConfig
}

// NewLoginController creates a new session login controller. limiter puede ser nil.
func NewLoginController(service svc.LoginService, limiter rate.MultiLimiter, limits helpers.LoginRateConfig) *LoginController {
	return &LoginController{service: service, limiter: limiter, limits: limits}
}

// Login autentica con email/password y devuelve el JWT de la aplicación.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if !helpers.ReadStrictJSON(w, r, &req) {
		return
	}

	if !helpers.EnforceLoginLimit(w, r, c.limiter, c.limits, req.Email) {
		return
	}

	result, err := c.service.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrLoginMissingEmail):
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email is required"))
		case errors.Is(err, svc.ErrLoginMissingPassword):
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("password is required"))
		case errors.Is(err, svc.ErrLoginInvalidCredentials):
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
		default:
			log.Error("login error", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")

	u := result.User
	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(result.ExpiresAt).Seconds()),
		ExpiresAt:   result.ExpiresAt,
		User: dto.UserInfo{
			ID:    u.ID,
			Email: u.Email,
			Name:  u.Name,
			Role:  string(u.Role),
		},
	})
}
