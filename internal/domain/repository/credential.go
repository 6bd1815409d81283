package repository

import (
	"context"
	"time"
)

// Credential es la credencial OAuth de un usuario para un proveedor.
// Hay como máximo una por (UserID, Provider).
//
// AccessToken y RefreshToken son confidenciales: nunca se devuelven al
// cliente ni se loguean.
type Credential struct {
	UserID       string
	Provider     string
	AccessToken  string
	RefreshToken string // vacío si el proveedor no emite refresh token

	// ExpiresAt es el vencimiento del access token. Zero = sin vencimiento informado.
	ExpiresAt time.Time

	// Scopes y AccountIDs: vacío y nil son equivalentes; los stores
	// devuelven nil cuando no hay elementos.
	Scopes []string

	// AccountIDs son identificadores propios del proveedor (ad account,
	// page, open_id, ...). Opacos para el core.
	AccountIDs map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasExpiry indica si el proveedor informó vencimiento.
func (c *Credential) HasExpiry() bool { return !c.ExpiresAt.IsZero() }

// ValidAt indica si el access token sigue siendo usable en now con el margen dado.
// Sin vencimiento informado se considera válido.
func (c *Credential) ValidAt(now time.Time, margin time.Duration) bool {
	if c.AccessToken == "" {
		return false
	}
	if !c.HasExpiry() {
		return true
	}
	return now.Add(margin).Before(c.ExpiresAt)
}

// CredentialRepository es el Credential Store.
type CredentialRepository interface {
	// Get retorna la credencial o ErrNotFound.
	Get(ctx context.Context, userID, provider string) (*Credential, error)

	// Upsert crea o reemplaza la credencial en una sola operación atómica:
	// access token, refresh token y vencimiento cambian juntos.
	Upsert(ctx context.Context, userID, provider string, cred Credential) error

	// Clear elimina la credencial. Idempotente.
	Clear(ctx context.Context, userID, provider string) error

	// ListByUser retorna las credenciales del usuario ordenadas por proveedor.
	ListByUser(ctx context.Context, userID string) ([]*Credential, error)
}
