package middlewares

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/socialbridge/internal/http/errors"
	"github.com/dropDatabas3/socialbridge/internal/http/services/credential"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
)

// RequireConnection es el Access Gate: exige una credencial usable de provider
// para el usuario autenticado, refrescándola si está por vencer. En éxito el
// access token queda en el contexto (ProviderToken).
// Debe usarse después de RequireAuth.
func RequireConnection(provider string, refresher credential.RefreshService) Middleware {
	loginPath := "/auth/" + provider + "/login"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}

			tok, err := refresher.EnsureValid(r.Context(), userID, provider)
			switch {
			case err == nil:
			case errors.Is(err, credential.ErrNotConnected):
				httperrors.WriteError(w, httperrors.ErrNotConnected.WithDetail(loginPath))
				return
			case errors.Is(err, credential.ErrRefreshFailed):
				httperrors.WriteError(w, httperrors.ErrReauthRequired.WithDetail(loginPath).WithCause(err))
				return
			default:
				logger.From(r.Context()).Error("access gate failed",
					logger.Component("access_gate"),
					logger.Provider(provider),
					logger.Err(err),
				)
				httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(setProviderToken(r.Context(), tok)))
		})
	}
}
