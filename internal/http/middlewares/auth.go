package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/http/errors"
	jwtx "github.com/dropDatabas3/socialbridge/internal/jwt"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
)

// =================================================================================
// AUTHENTICATION MIDDLEWARES
// =================================================================================

// UserLookup resuelve el usuario dueño del token (repository.UserRepository).
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*repository.User, error)
}

// AuthConfig configura RequireAuth.
type AuthConfig struct {
	Issuer *jwtx.Issuer

	// Users, si no es nil, confirma que el sub sigue existiendo (usuario
	// borrado => 401). El resultado se cachea CacheTTL.
	Users    UserLookup
	CacheTTL time.Duration
}

// RequireAuth valida Authorization: Bearer <JWT> y guarda el usuario en el contexto.
// Si el token es inválido o no está presente, responde 401.
func RequireAuth(cfg AuthConfig) Middleware {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	users := gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}
			raw := strings.TrimSpace(ah[7:])

			claims, err := cfg.Issuer.Parse(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="`+err.Error()+`"`)
				errors.WriteError(w, errors.ErrTokenInvalid.WithDetail(err.Error()))
				return
			}

			u := &AuthUser{ID: claims.Subject, Email: claims.Email, Role: repository.Role(claims.Role)}
			if cfg.Users != nil {
				resolved, err := lookupUser(r.Context(), cfg.Users, users, claims.Subject)
				if err != nil {
					if repository.IsNotFound(err) {
						errors.WriteError(w, errors.ErrTokenInvalid.WithDetail("user not found"))
						return
					}
					errors.WriteError(w, errors.ErrInternalServerError.WithCause(err))
					return
				}
				u = resolved
			}

			ctx := WithUser(r.Context(), u)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(u.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func lookupUser(ctx context.Context, repo UserLookup, c *gocache.Cache, id string) (*AuthUser, error) {
	if v, ok := c.Get(id); ok {
		return v.(*AuthUser), nil
	}
	usr, err := repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u := &AuthUser{ID: usr.ID, Email: usr.Email, Role: usr.Role}
	c.SetDefault(id, u)
	return u, nil
}
