package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
)

func newTestIssuer(t *testing.T, now time.Time) *Issuer {
	t.Helper()
	iss, err := NewIssuer("socialbridge", "test-secret", 0)
	require.NoError(t, err)
	iss.SetClock(func() time.Time { return now })
	return iss
}

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	iss := newTestIssuer(t, now)

	tok, exp, err := iss.IssueAccess(&repository.User{ID: "u-1", Email: "a@b.c", Role: repository.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, now.Add(24*time.Hour), exp)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.Subject)
	require.Equal(t, "a@b.c", claims.Email)
	require.Equal(t, "ADMIN", claims.Role)
	require.NotEmpty(t, claims.ID)
}

func TestParse_Rejects(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	iss := newTestIssuer(t, now)
	tok, _, err := iss.IssueAccess(&repository.User{ID: "u-1"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newTestIssuer(t, now.Add(25*time.Hour))
		_, err := later.Parse(tok)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewIssuer("socialbridge", "another-secret", 0)
		require.NoError(t, err)
		other.SetClock(func() time.Time { return now })
		_, err = other.Parse(tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other issuer", func(t *testing.T) {
		other, err := NewIssuer("someone-else", "test-secret", 0)
		require.NoError(t, err)
		other.SetClock(func() time.Time { return now })
		_, err = other.Parse(tok)
		require.ErrorIs(t, err, ErrInvalidIssuer)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.MapClaims{
			"sub": "u-1", "iss": "socialbridge", "exp": now.Add(time.Hour).Unix(),
		})
		s, err := unsigned.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = iss.Parse(s)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := iss.Parse("not-a-jwt")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer("x", "  ", time.Hour)
	require.ErrorIs(t, err, ErrMissingSecret)
}
