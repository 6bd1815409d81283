// Package connect contiene DTOs de los endpoints /auth/{provider}/*.
// Ninguno transporta tokens del proveedor.
package connect

import "time"

// LoginResponse de GET /auth/{provider}/login.
type LoginResponse struct {
	AuthURL string `json:"authUrl"`
}

// CallbackResponse de GET /auth/{provider}/callback (sin frontend_url).
type CallbackResponse struct {
	Status     string            `json:"status"` // "connected"
	Provider   string            `json:"provider"`
	ExpiresAt  *time.Time        `json:"expiresAt,omitempty"`
	AccountIDs map[string]string `json:"accountIds,omitempty"`
}

// Connection es un item de GET /auth/connections.
type Connection struct {
	Provider        string            `json:"provider"`
	Enabled         bool              `json:"enabled"`
	Connected       bool              `json:"connected"`
	State           string            `json:"state"`
	ExpiresAt       *time.Time        `json:"expiresAt,omitempty"`
	HasRefreshToken bool              `json:"hasRefreshToken"`
	Scopes          []string          `json:"scopes,omitempty"`
	AccountIDs      map[string]string `json:"accountIds,omitempty"`
	UpdatedAt       *time.Time        `json:"updatedAt,omitempty"`
}

// ConnectionsResponse de GET /auth/connections.
type ConnectionsResponse struct {
	Connections []Connection `json:"connections"`
}

// VerifyResponse de GET /{provider}/verify.
type VerifyResponse struct {
	Provider string            `json:"provider"`
	Valid    bool              `json:"valid"`
	Account  map[string]string `json:"account,omitempty"`
}
