package connect

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/socialbridge/internal/http/dto/connect"
	httperrors "github.com/dropDatabas3/socialbridge/internal/http/errors"
	"github.com/dropDatabas3/socialbridge/internal/http/helpers"
	svc "github.com/dropDatabas3/socialbridge/internal/http/services/connect"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
)

// CallbackController handles GET /auth/{provider}/callback.
// Endpoint público: la identidad sale del state.
type CallbackController struct {
	service     svc.Service
	frontendURL string
}

// NewCallbackController creates a new CallbackController.
func NewCallbackController(service svc.Service, frontendURL string) *CallbackController {
	return &CallbackController{service: service, frontendURL: strings.TrimSpace(frontendURL)}
}

// Callback handles the provider redirect.
func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CallbackController.Callback"))

	provider := strings.ToLower(chi.URLParam(r, "provider"))
	q := r.URL.Query()

	res, err := c.service.Callback(ctx, provider, svc.CallbackRequest{
		Code:             strings.TrimSpace(q.Get("code")),
		State:            strings.TrimSpace(q.Get("state")),
		Error:            strings.TrimSpace(q.Get("error")),
		ErrorDescription: strings.TrimSpace(q.Get("error_description")),
	})
	if err != nil {
		appErr := mapError(err)
		if appErr.HTTPStatus >= 500 {
			log.Error("callback failed", logger.Err(err))
		}

		// un proveedor inexistente no es un flujo real: siempre JSON
		if c.frontendURL != "" && !errors.Is(err, svc.ErrProviderUnknown) && !errors.Is(err, svc.ErrProviderDisabled) {
			c.redirect(w, r, provider, "error", appErr.Code)
			return
		}
		httperrors.WriteError(w, appErr)
		return
	}

	if c.frontendURL != "" {
		c.redirect(w, r, res.Provider, "connected", "")
		return
	}

	out := dto.CallbackResponse{
		Status:     "connected",
		Provider:   res.Provider,
		AccountIDs: res.AccountIDs,
	}
	if !res.ExpiresAt.IsZero() {
		exp := res.ExpiresAt.UTC()
		out.ExpiresAt = &exp
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// redirect agrega provider/status/code a frontend_url conservando su query.
func (c *CallbackController) redirect(w http.ResponseWriter, r *http.Request, provider, status, code string) {
	u, err := url.Parse(c.frontendURL)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	q := u.Query()
	q.Set("provider", provider)
	q.Set("status", status)
	if code != "" {
		q.Set("code", code)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}
