package store_test

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/security/secretbox"
	"github.com/dropDatabas3/socialbridge/internal/store"
	"github.com/dropDatabas3/socialbridge/internal/store/memory"
)

func openBackends(t *testing.T) map[string]*store.Store {
	t.Helper()
	ctx := context.Background()

	mem, err := store.Open(ctx, store.Config{Driver: "memory"})
	require.NoError(t, err)

	lite, err := store.Open(ctx, store.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "sb.db")})
	require.NoError(t, err)
	require.NoError(t, lite.Migrate(ctx))
	t.Cleanup(func() { _ = lite.Close() })

	return map[string]*store.Store{"memory": mem, "sqlite": lite}
}

func TestStore_CredentialLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Ping(ctx))

			u, err := st.Users.CreateUser(ctx, repository.CreateUserInput{Email: "Ana@Example.com", PasswordHash: "h"})
			require.NoError(t, err)
			require.Equal(t, repository.RoleUser, u.Role)

			_, err = st.Credentials.Get(ctx, u.ID, "facebook")
			require.ErrorIs(t, err, repository.ErrNotFound)

			exp := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Microsecond)
			in := repository.Credential{
				AccessToken:  "at-1",
				RefreshToken: "rt-1",
				ExpiresAt:    exp,
				Scopes:       []string{"ads_read", "pages_show_list"},
				AccountIDs:   map[string]string{"ad_account_id": "act_1"},
			}
			require.NoError(t, st.Credentials.Upsert(ctx, u.ID, "facebook", in))

			got, err := st.Credentials.Get(ctx, u.ID, "facebook")
			require.NoError(t, err)
			require.Equal(t, u.ID, got.UserID)
			require.Equal(t, "facebook", got.Provider)
			require.Equal(t, in.AccessToken, got.AccessToken)
			require.Equal(t, in.RefreshToken, got.RefreshToken)
			require.True(t, exp.Equal(got.ExpiresAt))
			require.Equal(t, in.Scopes, got.Scopes)
			require.Equal(t, in.AccountIDs, got.AccountIDs)
			createdAt := got.CreatedAt

			// reemplazo completo: el refresh token viejo no sobrevive
			require.NoError(t, st.Credentials.Upsert(ctx, u.ID, "facebook", repository.Credential{
				AccessToken: "at-2",
				Scopes:      []string{"ads_read"},
			}))
			got, err = st.Credentials.Get(ctx, u.ID, "facebook")
			require.NoError(t, err)
			require.Equal(t, "at-2", got.AccessToken)
			require.Empty(t, got.RefreshToken)
			require.False(t, got.HasExpiry())
			require.True(t, createdAt.Equal(got.CreatedAt))

			require.NoError(t, st.Credentials.Upsert(ctx, u.ID, "gmail", repository.Credential{AccessToken: "g", Scopes: []string{"x"}}))
			list, err := st.Credentials.ListByUser(ctx, u.ID)
			require.NoError(t, err)
			require.Len(t, list, 2)
			require.Equal(t, "facebook", list[0].Provider)
			require.Equal(t, "gmail", list[1].Provider)

			require.NoError(t, st.Credentials.Clear(ctx, u.ID, "facebook"))
			require.NoError(t, st.Credentials.Clear(ctx, u.ID, "facebook"))
			_, err = st.Credentials.Get(ctx, u.ID, "facebook")
			require.ErrorIs(t, err, repository.ErrNotFound)

			// borrar el usuario arrastra sus credenciales
			require.NoError(t, st.Users.DeleteUser(ctx, u.ID))
			_, err = st.Credentials.Get(ctx, u.ID, "gmail")
			require.ErrorIs(t, err, repository.ErrNotFound)
		})
	}
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			u, err := st.Users.CreateUser(ctx, repository.CreateUserInput{
				Email: "root@example.com", Name: "Root", PasswordHash: "h", Role: repository.RoleAdmin,
			})
			require.NoError(t, err)

			_, err = st.Users.CreateUser(ctx, repository.CreateUserInput{Email: "ROOT@example.com", PasswordHash: "h"})
			require.ErrorIs(t, err, repository.ErrConflict)

			byEmail, err := st.Users.GetUserByEmail(ctx, "Root@Example.com")
			require.NoError(t, err)
			require.Equal(t, u.ID, byEmail.ID)
			require.Equal(t, repository.RoleAdmin, byEmail.Role)

			byID, err := st.Users.GetUserByID(ctx, u.ID)
			require.NoError(t, err)
			require.Equal(t, "Root", byID.Name)

			_, err = st.Users.CreateUser(ctx, repository.CreateUserInput{Email: "x@example.com", PasswordHash: "h", Role: "GOD"})
			require.ErrorIs(t, err, repository.ErrInvalidInput)

			require.NoError(t, st.Users.DeleteUser(ctx, u.ID))
			require.ErrorIs(t, st.Users.DeleteUser(ctx, u.ID), repository.ErrNotFound)
			_, err = st.Users.GetUserByID(ctx, u.ID)
			require.ErrorIs(t, err, repository.ErrNotFound)
		})
	}
}

func TestStore_EmptyCollectionsReadBackNil(t *testing.T) {
	ctx := context.Background()
	for name, st := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			u, err := st.Users.CreateUser(ctx, repository.CreateUserInput{Email: "empty@example.com", PasswordHash: "h"})
			require.NoError(t, err)

			require.NoError(t, st.Credentials.Upsert(ctx, u.ID, "tiktok", repository.Credential{AccessToken: "a"}))
			got, err := st.Credentials.Get(ctx, u.ID, "tiktok")
			require.NoError(t, err)
			require.Nil(t, got.Scopes)
			require.Nil(t, got.AccountIDs)

			require.NoError(t, st.Credentials.Upsert(ctx, u.ID, "tiktok", repository.Credential{
				AccessToken: "b",
				Scopes:      []string{},
				AccountIDs:  map[string]string{},
			}))
			got, err = st.Credentials.Get(ctx, u.ID, "tiktok")
			require.NoError(t, err)
			require.Nil(t, got.Scopes)
			require.Nil(t, got.AccountIDs)
		})
	}
}

func TestSQLite_UpsertForUnknownUserIsNotFound(t *testing.T) {
	ctx := context.Background()
	st := openBackends(t)["sqlite"]
	err := st.Credentials.Upsert(ctx, "ghost", "gmail", repository.Credential{AccessToken: "a"})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := store.Open(context.Background(), store.Config{Driver: "cassandra"})
	require.Error(t, err)
}

func TestEncryptedCredentials(t *testing.T) {
	ctx := context.Background()
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
	box, err := secretbox.New(key)
	require.NoError(t, err)

	raw := memory.New()
	enc := store.NewEncryptedCredentials(raw, box)

	require.NoError(t, enc.Upsert(ctx, "u1", "tiktok", repository.Credential{
		AccessToken:  "act.plain",
		RefreshToken: "rft.plain",
		Scopes:       []string{"user.info.basic"},
	}))

	stored, err := raw.Get(ctx, "u1", "tiktok")
	require.NoError(t, err)
	require.NotEqual(t, "act.plain", stored.AccessToken)
	require.NotEqual(t, "rft.plain", stored.RefreshToken)

	got, err := enc.Get(ctx, "u1", "tiktok")
	require.NoError(t, err)
	require.Equal(t, "act.plain", got.AccessToken)
	require.Equal(t, "rft.plain", got.RefreshToken)

	list, err := enc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "act.plain", list[0].AccessToken)

	// refresh token vacío queda vacío
	require.NoError(t, enc.Upsert(ctx, "u1", "tiktok", repository.Credential{AccessToken: "a2"}))
	stored, err = raw.Get(ctx, "u1", "tiktok")
	require.NoError(t, err)
	require.Empty(t, stored.RefreshToken)
}
