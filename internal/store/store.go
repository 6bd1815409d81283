// Package store abre el backend de persistencia configurado (postgres,
// sqlite o memory) y expone los repositorios de usuarios y credenciales.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/security/secretbox"
	"github.com/dropDatabas3/socialbridge/internal/store/memory"
	"github.com/dropDatabas3/socialbridge/internal/store/pg"
	"github.com/dropDatabas3/socialbridge/internal/store/sqlite"
)

type Config struct {
	Driver   string
	DSN      string
	Postgres pg.PoolConfig

	// SecretBox cifra access/refresh tokens en reposo. nil = texto plano.
	SecretBox *secretbox.Box
}

// Store agrupa los repositorios de un backend.
type Store struct {
	Driver      string
	Users       repository.UserRepository
	Credentials repository.CredentialRepository

	// Postgres es el backend pg (nil en otros drivers); expone el pool a métricas.
	Postgres *pg.Store

	ping    func(ctx context.Context) error
	migrate func(ctx context.Context) error
	close   func() error
}

// Ping verifica la conexión con el backend.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Migrate aplica las migraciones pendientes (no-op en memory).
func (s *Store) Migrate(ctx context.Context) error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(ctx)
}

// Close libera el pool/handle (idempotente).
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open abre el backend según cfg.Driver.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	var st *Store
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "postgres", "pg", "postgresql":
		db, err := pg.New(ctx, cfg.DSN, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("store: open postgres: %w", err)
		}
		st = &Store{
			Driver:      "postgres",
			Postgres:    db,
			Users:       db,
			Credentials: db,
			ping:        db.Ping,
			migrate:     db.Migrate,
			close:       func() error { db.Close(); return nil },
		}
	case "sqlite", "sqlite3":
		db, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("store: open sqlite: %w", err)
		}
		st = &Store{
			Driver:      "sqlite",
			Users:       db,
			Credentials: db,
			ping:        db.Ping,
			migrate:     db.Migrate,
			close:       db.Close,
		}
	case "memory", "":
		db := memory.New()
		st = &Store{Driver: "memory", Users: db, Credentials: db}
	default:
		return nil, fmt.Errorf("store: unsupported driver: %s", cfg.Driver)
	}

	if cfg.SecretBox != nil {
		st.Credentials = NewEncryptedCredentials(st.Credentials, cfg.SecretBox)
	}
	return st, nil
}
