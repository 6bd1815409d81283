package connect

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/socialbridge/internal/http/dto/connect"
	httperrors "github.com/dropDatabas3/socialbridge/internal/http/errors"
	"github.com/dropDatabas3/socialbridge/internal/http/helpers"
	mw "github.com/dropDatabas3/socialbridge/internal/http/middlewares"
	svc "github.com/dropDatabas3/socialbridge/internal/http/services/connect"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
)

// LoginController handles GET /auth/{provider}/login.
type LoginController struct {
	service svc.Service
}

// NewLoginController creates a new LoginController.
func NewLoginController(service svc.Service) *LoginController {
	return &LoginController{service: service}
}

// Login devuelve la URL de autorización; el frontend hace el redirect.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	userID := mw.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	authURL, err := c.service.Login(ctx, userID, chi.URLParam(r, "provider"))
	if err != nil {
		appErr := mapError(err)
		if appErr.HTTPStatus >= 500 {
			log.Error("login failed", logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{AuthURL: authURL})
}
