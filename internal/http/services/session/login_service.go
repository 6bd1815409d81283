// Package session autentica usuarios de la aplicación y emite el JWT que
// identifica al usuario en los endpoints /auth/*.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	dto "github.com/dropDatabas3/socialbridge/internal/http/dto/session"
	jwtx "github.com/dropDatabas3/socialbridge/internal/jwt"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
	"github.com/dropDatabas3/socialbridge/internal/security/password"
	"github.com/dropDatabas3/socialbridge/internal/util"
)

// LoginService defines operations for application login.
type LoginService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*LoginResult, error)
}

// LoginResult contains the result of a successful login.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *repository.User
}

// LoginDeps contains dependencies for the login service.
type LoginDeps struct {
	Users  repository.UserRepository
	Issuer *jwtx.Issuer
}

type loginService struct {
	users  repository.UserRepository
	issuer *jwtx.Issuer
}

// NewLoginService creates a new LoginService.
func NewLoginService(deps LoginDeps) LoginService {
	return &loginService{users: deps.Users, issuer: deps.Issuer}
}

// Service errors
var (
	ErrLoginMissingEmail       = errors.New("email is required")
	ErrLoginMissingPassword    = errors.New("password is required")
	ErrLoginInvalidCredentials = errors.New("invalid credentials")
	ErrLoginTokenFailed        = errors.New("failed to issue token")
)

// dummyHash iguala el costo de verificación cuando el email no existe.
var dummyHash, _ = password.Hash(password.Default, "socialbridge-dummy-password")

// Login verifica email/password y emite el JWT de la aplicación.
func (s *loginService) Login(ctx context.Context, req dto.LoginRequest) (*LoginResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("session.login"),
		logger.Op("Login"),
	)

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return nil, ErrLoginMissingEmail
	}
	if req.Password == "" {
		return nil, ErrLoginMissingPassword
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !repository.IsNotFound(err) {
			log.Error("user lookup failed", logger.Err(err))
			return nil, err
		}
		_ = password.Verify(req.Password, dummyHash)
		log.Debug("user not found", logger.String("email", util.MaskEmail(email)))
		return nil, ErrLoginInvalidCredentials
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		log.Debug("password mismatch", logger.UserID(user.ID))
		return nil, ErrLoginInvalidCredentials
	}

	tok, exp, err := s.issuer.IssueAccess(user)
	if err != nil {
		log.Error("token issue failed", logger.Err(err))
		return nil, ErrLoginTokenFailed
	}

	log.Info("login successful", logger.UserID(user.ID))
	return &LoginResult{AccessToken: tok, ExpiresAt: exp, User: user}, nil
}
