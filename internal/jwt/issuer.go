package jwt

import (
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
)

// DefaultAccessTTL es la vida por defecto del token de sesión.
const DefaultAccessTTL = 24 * time.Hour

var (
	ErrInvalidIssuer = errors.New("invalid_issuer")
	ErrInvalidToken  = errors.New("invalid_jwt")
	ErrExpired       = errors.New("expired")
	ErrMissingSecret = errors.New("jwt secret is empty")
)

// Claims del token de sesión de la aplicación.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwtv5.RegisteredClaims
}

// Issuer firma tokens de sesión HS256 con un secreto compartido.
type Issuer struct {
	Iss       string        // "iss"
	AccessTTL time.Duration // TTL del token de sesión (ej: 24h)

	secret []byte
	now    func() time.Time
}

func NewIssuer(iss, secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return &Issuer{
		Iss:       iss,
		AccessTTL: ttl,
		secret:    []byte(secret),
		now:       time.Now,
	}, nil
}

// SetClock reemplaza el reloj (tests).
func (i *Issuer) SetClock(now func() time.Time) { i.now = now }

// Keyfunc valida el algoritmo antes de entregar el secreto.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}
}

// IssueAccess emite el token de sesión para u.
func (i *Issuer) IssueAccess(u *repository.User) (string, time.Time, error) {
	if u == nil || u.ID == "" {
		return "", time.Time{}, errors.New("jwt: user id required")
	}
	now := i.now().UTC()
	exp := now.Add(i.AccessTTL)

	claims := Claims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.Iss,
			Subject:   u.ID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
