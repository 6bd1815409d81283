// Package pg implementa los repositorios sobre PostgreSQL (pgxpool).
package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"go.uber.org/zap"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
	migrations "github.com/dropDatabas3/socialbridge/migrations/postgres"
)

type Store struct{ pool *pgxpool.Pool }

// PoolConfig es el tuning opcional del pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

// Pool expone el pool interno para usos avanzados (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func New(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	// MaxIdleConns → MinConns (pgxpool)
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 10
	}
	if pcfg.MinConns > pcfg.MaxConns {
		pcfg.MinConns = pcfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Arranque no bloqueante: si la DB no responde todavía, readyz lo reporta.
	log := logger.L().With(logger.Component("store.pg"))
	if err := pool.Ping(ctx); err != nil {
		log.Warn("pg_pool_startup_ping_failed", logger.Err(err))
	} else {
		log.Info("pg_pool_ready", zap.Int32("max_conns", pcfg.MaxConns))
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Migrate aplica las migraciones goose embebidas.
func (s *Store) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	provider, err := goose.NewProvider(database.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("pg: goose provider: %w", err)
	}
	res, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("pg: apply migrations: %w", err)
	}
	logger.L().Info("pg_migrations_applied", logger.Component("store.pg"), logger.Count(len(res)))
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation: user_id sin fila en app_user.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ====================== USERS ======================

const userColumns = `id::text, email, name, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Role = repository.Role(role)
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.PasswordHash == "" {
		return nil, repository.ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = repository.RoleUser
	}
	if !role.Valid() {
		return nil, repository.ErrInvalidInput
	}

	const q = `
INSERT INTO app_user (id, email, name, password_hash, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
RETURNING ` + userColumns
	u, err := scanUser(s.pool.QueryRow(ctx, q, uuid.NewString(), email, in.Name, in.PasswordHash, string(role)))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*repository.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*repository.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE LOWER(email) = LOWER($1) LIMIT 1`, strings.TrimSpace(email)))
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM app_user WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ====================== CREDENTIALS ======================

const credentialColumns = `user_id::text, provider, access_token, refresh_token, expires_at,
       scopes, account_ids, created_at, updated_at`

func scanCredential(row pgx.Row) (*repository.Credential, error) {
	var c repository.Credential
	var exp *time.Time
	if err := row.Scan(&c.UserID, &c.Provider, &c.AccessToken, &c.RefreshToken, &exp,
		&c.Scopes, &c.AccountIDs, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if exp != nil {
		c.ExpiresAt = *exp
	}
	if len(c.Scopes) == 0 {
		c.Scopes = nil
	}
	if len(c.AccountIDs) == 0 {
		c.AccountIDs = nil
	}
	return &c, nil
}

func (s *Store) Get(ctx context.Context, userID, provider string) (*repository.Credential, error) {
	if !validID(userID) {
		return nil, repository.ErrNotFound
	}
	const q = `SELECT ` + credentialColumns + ` FROM provider_credential WHERE user_id = $1 AND provider = $2`
	return scanCredential(s.pool.QueryRow(ctx, q, userID, provider))
}

// Upsert reemplaza la fila completa en un solo statement.
func (s *Store) Upsert(ctx context.Context, userID, provider string, cred repository.Credential) error {
	if userID == "" || provider == "" || cred.AccessToken == "" {
		return repository.ErrInvalidInput
	}
	if !validID(userID) {
		return repository.ErrNotFound
	}
	var exp *time.Time
	if cred.HasExpiry() {
		t := cred.ExpiresAt.UTC()
		exp = &t
	}
	scopes := cred.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	accounts := cred.AccountIDs
	if accounts == nil {
		accounts = map[string]string{}
	}

	const q = `
INSERT INTO provider_credential
  (user_id, provider, access_token, refresh_token, expires_at, scopes, account_ids, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
ON CONFLICT (user_id, provider) DO UPDATE SET
  access_token  = EXCLUDED.access_token,
  refresh_token = EXCLUDED.refresh_token,
  expires_at    = EXCLUDED.expires_at,
  scopes        = EXCLUDED.scopes,
  account_ids   = EXCLUDED.account_ids,
  updated_at    = NOW()`
	_, err := s.pool.Exec(ctx, q, userID, provider, cred.AccessToken, cred.RefreshToken, exp, scopes, accounts)
	return credentialWriteError(err)
}

func credentialWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return repository.ErrNotFound
	default:
		return fmt.Errorf("pg: upsert credential: %w", err)
	}
}

func (s *Store) Clear(ctx context.Context, userID, provider string) error {
	if !validID(userID) {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM provider_credential WHERE user_id = $1 AND provider = $2`, userID, provider)
	return err
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*repository.Credential, error) {
	if !validID(userID) {
		return nil, nil
	}
	const q = `SELECT ` + credentialColumns + ` FROM provider_credential WHERE user_id = $1 ORDER BY provider`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*repository.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
