package connect

import (
	"net/http"

	dto "github.com/dropDatabas3/socialbridge/internal/http/dto/connect"
	httperrors "github.com/dropDatabas3/socialbridge/internal/http/errors"
	"github.com/dropDatabas3/socialbridge/internal/http/helpers"
	mw "github.com/dropDatabas3/socialbridge/internal/http/middlewares"
	svc "github.com/dropDatabas3/socialbridge/internal/http/services/connect"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
	"github.com/dropDatabas3/socialbridge/internal/providers"
)

// VerifyController handles GET /{provider}/verify. Corre detrás del Access
// Gate y usa el token del contexto contra la API del proveedor.
type VerifyController struct {
	providers svc.ProviderResolver
}

// NewVerifyController creates a new VerifyController.
func NewVerifyController(p svc.ProviderResolver) *VerifyController {
	return &VerifyController{providers: p}
}

// For devuelve el handler de verify para un proveedor fijo.
func (c *VerifyController) For(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { c.verify(w, r, name) }
}

func (c *VerifyController) verify(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()

	tok, ok := mw.ProviderToken(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrNotConnected.WithDetail("/auth/"+name+"/login"))
		return
	}
	p, err := c.providers.Get(name)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrProviderNotFound.WithCause(err))
		return
	}

	out := dto.VerifyResponse{Provider: p.Name(), Valid: true}
	if mf, ok := p.(providers.MetadataFetcher); ok {
		account, err := mf.FetchMetadata(ctx, tok)
		if err != nil {
			logger.From(ctx).Warn("provider verify failed",
				logger.Layer("controller"),
				logger.Provider(p.Name()),
				logger.Err(err),
			)
			if providers.IsUnauthorized(err) {
				httperrors.WriteError(w, httperrors.ErrReauthRequired.WithDetail("/auth/"+p.Name()+"/login").WithCause(err))
				return
			}
			httperrors.WriteError(w, httperrors.ErrProviderUnavailable.WithCause(err))
			return
		}
		out.Account = account
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}
