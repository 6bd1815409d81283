package connect

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/socialbridge/internal/http/dto/connect"
	httperrors "github.com/dropDatabas3/socialbridge/internal/http/errors"
	"github.com/dropDatabas3/socialbridge/internal/http/helpers"
	mw "github.com/dropDatabas3/socialbridge/internal/http/middlewares"
	svc "github.com/dropDatabas3/socialbridge/internal/http/services/connect"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
)

// ConnectionsController handles GET /auth/connections and DELETE /auth/{provider}.
type ConnectionsController struct {
	service svc.Service
}

// NewConnectionsController creates a new ConnectionsController.
func NewConnectionsController(service svc.Service) *ConnectionsController {
	return &ConnectionsController{service: service}
}

func (c *ConnectionsController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mw.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	conns, err := c.service.Connections(ctx, userID)
	if err != nil {
		logger.From(ctx).Error("list connections failed", logger.Layer("controller"), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	out := dto.ConnectionsResponse{Connections: make([]dto.Connection, 0, len(conns))}
	for _, cn := range conns {
		out.Connections = append(out.Connections, dto.Connection{
			Provider:        cn.Provider,
			Enabled:         cn.Enabled,
			Connected:       cn.Connected,
			State:           string(cn.State),
			ExpiresAt:       optTime(cn.ExpiresAt),
			HasRefreshToken: cn.HasRefreshToken,
			Scopes:          cn.Scopes,
			AccountIDs:      cn.AccountIDs,
			UpdatedAt:       optTime(cn.UpdatedAt),
		})
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *ConnectionsController) Disconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mw.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	if err := c.service.Disconnect(ctx, userID, chi.URLParam(r, "provider")); err != nil {
		appErr := mapError(err)
		if appErr.HTTPStatus >= 500 {
			logger.From(ctx).Error("disconnect failed", logger.Layer("controller"), logger.Err(err))
		}
		httperrors.WriteError(w, appErr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
