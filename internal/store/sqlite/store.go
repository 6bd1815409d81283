// Package sqlite implementa los repositorios sobre SQLite (modernc, sin cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	migrations "github.com/dropDatabas3/socialbridge/migrations/sqlite"
)

const defaultPragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Store guarda usuarios y credenciales en un archivo SQLite.
// Los timestamps se guardan como unix nanos UTC.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open abre (o crea) la base. dsn es un path o "file:...".
// Se agregan los pragmas por defecto si el DSN no trae ninguno.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite: empty dsn")
	}
	if !strings.Contains(dsn, "_pragma=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + defaultPragmas
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Un solo writer; evita SQLITE_BUSY entre conexiones del pool.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// DB expone el handle (tests y migraciones).
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// Migrate aplica las migraciones goose embebidas.
func (s *Store) Migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(database.DialectSQLite3, s.db, migrations.FS)
	if err != nil {
		return fmt.Errorf("sqlite: goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("sqlite: apply migrations: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite3.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

// ====================== USERS ======================

const userColumns = `id, email, name, password_hash, role, created_at, updated_at`

func scanUser(row *sql.Row) (*repository.User, error) {
	var (
		u                repository.User
		role             string
		created, updated int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Role = repository.Role(role)
	u.CreatedAt, u.UpdatedAt = fromNanos(created), fromNanos(updated)
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

	now := s.now().UTC()
	u := repository.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         in.Name,
		PasswordHash: in.PasswordHash,
		Role:         role,
		CreatedAt:    fromNanos(toNanos(now)),
		UpdatedAt:    fromNanos(toNanos(now)),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_user (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, string(u.Role), toNanos(now), toNanos(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("sqlite: insert user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*repository.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = ?`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*repository.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE email = ? COLLATE NOCASE`, strings.TrimSpace(email)))
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM app_user WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ====================== CREDENTIALS ======================

const credentialColumns = `user_id, provider, access_token, refresh_token, expires_at,
       scopes, account_ids, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*repository.Credential, error) {
	var (
		c                repository.Credential
		exp              sql.NullInt64
		scopes, accounts string
		created, updated int64
	)
	if err := row.Scan(&c.UserID, &c.Provider, &c.AccessToken, &c.RefreshToken, &exp,
		&scopes, &accounts, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if exp.Valid {
		c.ExpiresAt = fromNanos(exp.Int64)
	}
	if err := json.Unmarshal([]byte(scopes), &c.Scopes); err != nil {
		return nil, fmt.Errorf("sqlite: decode scopes: %w", err)
	}
	if err := json.Unmarshal([]byte(accounts), &c.AccountIDs); err != nil {
		return nil, fmt.Errorf("sqlite: decode account_ids: %w", err)
	}
	if len(c.Scopes) == 0 {
		c.Scopes = nil
	}
	if len(c.AccountIDs) == 0 {
		c.AccountIDs = nil
	}
	c.CreatedAt, c.UpdatedAt = fromNanos(created), fromNanos(updated)
	return &c, nil
}

func (s *Store) Get(ctx context.Context, userID, provider string) (*repository.Credential, error) {
	const q = `SELECT ` + credentialColumns + ` FROM provider_credential WHERE user_id = ? AND provider = ?`
	return scanCredential(s.db.QueryRowContext(ctx, q, userID, provider))
}

// Upsert reemplaza la fila completa en un solo statement.
func (s *Store) Upsert(ctx context.Context, userID, provider string, cred repository.Credential) error {
	if userID == "" || provider == "" || cred.AccessToken == "" {
		return repository.ErrInvalidInput
	}
	var exp sql.NullInt64
	if cred.HasExpiry() {
		exp = sql.NullInt64{Int64: toNanos(cred.ExpiresAt), Valid: true}
	}
	scopes := cred.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	accounts := cred.AccountIDs
	if accounts == nil {
		accounts = map[string]string{}
	}
	scopesJSON, err := json.Marshal(scopes)
	if err != nil {
		return fmt.Errorf("sqlite: encode scopes: %w", err)
	}
	accountsJSON, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("sqlite: encode account_ids: %w", err)
	}

	now := toNanos(s.now())
	const q = `
INSERT INTO provider_credential
  (user_id, provider, access_token, refresh_token, expires_at, scopes, account_ids, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, provider) DO UPDATE SET
  access_token  = excluded.access_token,
  refresh_token = excluded.refresh_token,
  expires_at    = excluded.expires_at,
  scopes        = excluded.scopes,
  account_ids   = excluded.account_ids,
  updated_at    = excluded.updated_at`
	_, err = s.db.ExecContext(ctx, q, userID, provider, cred.AccessToken, cred.RefreshToken, exp,
		string(scopesJSON), string(accountsJSON), now, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("sqlite: upsert credential: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, userID, provider string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM provider_credential WHERE user_id = ? AND provider = ?`, userID, provider)
	return err
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*repository.Credential, error) {
	const q = `SELECT ` + credentialColumns + ` FROM provider_credential WHERE user_id = ? ORDER BY provider`
	rows, err := s.db.QueryContext(ctx, q, userID)
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
