package connect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
)

func (s *service) Disconnect(ctx context.Context, userID, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	// un proveedor deshabilitado se puede desconectar igual
	if _, err := s.resolve(provider); err != nil && !errors.Is(err, ErrProviderDisabled) {
		return err
	}
	unlock := s.locks.Lock(userID, provider)
	err := s.store.Clear(ctx, userID, provider)
	unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	logger.From(ctx).Info("provider disconnected",
		logger.Layer("service"),
		logger.Component("connect.disconnect"),
		logger.UserID(userID),
		logger.Provider(provider),
	)
	return nil
}

func (s *service) Connections(ctx context.Context, userID string) ([]Connection, error) {
	creds, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	byProvider := make(map[string]int, len(creds))
	for i, c := range creds {
		byProvider[c.Provider] = i
	}

	out := make([]Connection, 0, len(s.known))
	for _, name := range s.known {
		_, perr := s.providers.Get(name)
		conn := Connection{Provider: name, Enabled: perr == nil, State: StateIdle}
		if i, ok := byProvider[name]; ok {
			c := creds[i]
			conn.Connected = true
			conn.State = StateCompleted
			conn.ExpiresAt = c.ExpiresAt
			conn.HasRefreshToken = c.RefreshToken != ""
			conn.Scopes = c.Scopes
			conn.AccountIDs = c.AccountIDs
			conn.UpdatedAt = c.UpdatedAt
		}
		if conn.Enabled || conn.Connected {
			out = append(out, conn)
		}
	}
	return out, nil
}
