package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Parse valida firma (HS256), iss (si el issuer tiene uno) y exp/nbf con una
// pequeña tolerancia. Devuelve las claims tipadas.
func (i *Issuer) Parse(token string) (*Claims, error) {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithLeeway(30 * time.Second),
		jwtv5.WithTimeFunc(i.now),
		jwtv5.WithExpirationRequired(),
	}
	if i.Iss != "" {
		opts = append(opts, jwtv5.WithIssuer(i.Iss))
	}

	var claims Claims
	tok, err := jwtv5.ParseWithClaims(token, &claims, i.Keyfunc(), opts...)
	switch {
	case err == nil && tok.Valid:
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwtv5.ErrTokenInvalidIssuer):
		return nil, ErrInvalidIssuer
	default:
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
