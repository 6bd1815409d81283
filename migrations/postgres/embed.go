// Package postgres embebe las migraciones goose para PostgreSQL.
package postgres

import "embed"

// FS contiene las migraciones SQL (goose) del schema principal.
//
//go:embed *.sql
var FS embed.FS
