package connect

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
)

// Login: Idle → Initiated. Quien llama hace el redirect.
func (s *service) Login(ctx context.Context, userID, provider string) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("connect.login"),
		logger.UserID(userID),
		logger.Provider(provider),
	)

	p, err := s.resolve(provider)
	if err != nil {
		log.Debug("login rejected", logger.Err(err))
		return "", err
	}

	st, err := s.states.Issue(ctx, userID, p.Name())
	if err != nil {
		log.Error("state issue failed", logger.Err(err))
		return "", fmt.Errorf("connect: issue state: %w", err)
	}

	log.Debug("state issued", logger.FlowState(string(StateInitiated)))

	// la redirección la hace el caller; desde acá depende del proveedor
	log.Info("oauth flow awaiting callback",
		logger.FlowState(string(StateAwaitingCallback)),
		logger.StatePrefix(st),
	)
	return p.AuthCodeURL(st), nil
}
