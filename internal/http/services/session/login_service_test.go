package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	dto "github.com/dropDatabas3/socialbridge/internal/http/dto/session"
	jwtx "github.com/dropDatabas3/socialbridge/internal/jwt"
	"github.com/dropDatabas3/socialbridge/internal/security/password"
	"github.com/dropDatabas3/socialbridge/internal/store/memory"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	users := memory.New()
	hash, err := password.Hash(password.Default, "correct horse 1")
	require.NoError(t, err)
	u, err := users.CreateUser(ctx, repository.CreateUserInput{Email: "Ana@Example.com", PasswordHash: hash})
	require.NoError(t, err)

	iss, err := jwtx.NewIssuer("socialbridge", "secret", time.Hour)
	require.NoError(t, err)
	svc := NewLoginService(LoginDeps{Users: users, Issuer: iss})

	res, err := svc.Login(ctx, dto.LoginRequest{Email: " ana@example.com ", Password: "correct horse 1"})
	require.NoError(t, err)
	require.Equal(t, u.ID, res.User.ID)

	claims, err := iss.Parse(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrLoginInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "x"})
	require.ErrorIs(t, err, ErrLoginInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Password: "x"})
	require.ErrorIs(t, err, ErrLoginMissingEmail)
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ana@example.com"})
	require.ErrorIs(t, err, ErrLoginMissingPassword)
}
