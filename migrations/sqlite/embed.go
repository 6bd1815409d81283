// Package sqlite embebe las migraciones goose para SQLite.
package sqlite

import "embed"

// FS contiene las migraciones SQL (goose) del schema principal.
//
//go:embed *.sql
var FS embed.FS
