package password

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fast = Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashVerify_Argon2id(t *testing.T) {
	h, err := Hash(fast, "correct horse")
	require.NoError(t, err)
	require.True(t, Verify("correct horse", h))
	require.False(t, Verify("wrong horse", h))
}

func TestVerify_LegacyBcrypt(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, Verify("legacy-pass", string(h)))
	require.False(t, Verify("nope", string(h)))
}

func TestVerify_Garbage(t *testing.T) {
	require.False(t, Verify("x", "$argon2id$v=19$broken"))
	require.False(t, Verify("x", ""))
	_, err := Hash(fast, "")
	require.ErrorIs(t, err, ErrEmpty)
}

func TestPolicy(t *testing.T) {
	p := Policy{MinLength: 8, RequireDigit: true}
	ok, reasons := p.Validate("short")
	require.False(t, ok)
	require.Contains(t, reasons, "too_short")
	require.Contains(t, reasons, "missing_digit")

	ok, _ = p.Validate("longenough1")
	require.True(t, ok)
}
