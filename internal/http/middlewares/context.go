package middlewares

import (
	"context"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
)

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	// ctxUserKey guarda el usuario autenticado
	ctxUserKey ctxKey = "user"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
	// ctxProviderTokenKey guarda el access token validado por RequireConnection
	ctxProviderTokenKey ctxKey = "provider_token"
)

// AuthUser es la identidad de la aplicación resuelta desde el JWT.
type AuthUser struct {
	ID    string
	Email string
	Role  repository.Role
}

// WithUser inyecta el usuario autenticado en el contexto.
func WithUser(ctx context.Context, u *AuthUser) context.Context {
	return context.WithValue(ctx, ctxUserKey, u)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

func setProviderToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxProviderTokenKey, token)
}

// GetUser obtiene el usuario autenticado o nil.
func GetUser(ctx context.Context) *AuthUser {
	if u, ok := ctx.Value(ctxUserKey).(*AuthUser); ok {
		return u
	}
	return nil
}

// GetUserID obtiene el user ID del contexto ("" si no hay usuario).
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.ID
	}
	return ""
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}

// ProviderToken devuelve el access token del proveedor que dejó RequireConnection.
// Nunca se loguea ni se devuelve al cliente.
func ProviderToken(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxProviderTokenKey).(string)
	return v, ok && v != ""
}
