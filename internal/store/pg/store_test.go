package pg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
)

func TestCredentialWriteError(t *testing.T) {
	require.NoError(t, credentialWriteError(nil))

	fk := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23503", ConstraintName: "provider_credential_user_id_fkey"})
	require.ErrorIs(t, credentialWriteError(fk), repository.ErrNotFound)

	other := &pgconn.PgError{Code: "23514"}
	err := credentialWriteError(other)
	require.NotErrorIs(t, err, repository.ErrNotFound)
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	require.Equal(t, "23514", pgErr.Code)
}

func TestConstraintClassifiers(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.True(t, isForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isForeignKeyViolation(errors.New("23503")))
}

func TestValidID(t *testing.T) {
	require.True(t, validID("3f2504e0-4f89-11d3-9a0c-0305e82c3301"))
	require.False(t, validID("ghost"))
	require.False(t, validID(""))
}
