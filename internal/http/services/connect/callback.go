package connect

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/socialbridge/internal/domain/repository"
	"github.com/dropDatabas3/socialbridge/internal/metrics"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
	"github.com/dropDatabas3/socialbridge/internal/providers"
	"github.com/dropDatabas3/socialbridge/internal/state"
)

// Callback: AwaitingCallback → Completed | Failed. No hay reintentos.
func (s *service) Callback(ctx context.Context, provider string, req CallbackRequest) (*CallbackResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("connect.callback"),
		logger.Provider(provider),
	)

	p, err := s.resolve(provider)
	if err != nil {
		log.Debug("callback for unavailable provider", logger.Err(err))
		return nil, err
	}
	name := p.Name()

	fail := func(outcome string, ferr *FlowError, fields ...zap.Field) (*CallbackResult, error) {
		ferr.Provider = name
		fields = append(fields, logger.FlowState(string(StateFailed)), logger.String("outcome", outcome))
		if ferr.Err != nil {
			fields = append(fields, logger.Err(ferr.Err))
		}
		log.Warn("oauth flow failed", fields...)
		metrics.RecordOAuthFlow(name, outcome)
		return nil, ferr
	}

	// (a) state: único origen de identidad del callback
	if strings.TrimSpace(req.State) == "" {
		return fail(metrics.OutcomeInvalidState, &FlowError{Kind: ErrInvalidState, Detail: "missing state"})
	}
	entry, err := s.states.VerifyAndConsume(ctx, req.State)
	if err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			log.Error("state lookup failed", logger.Err(err))
		}
		return fail(metrics.OutcomeInvalidState, &FlowError{Kind: ErrInvalidState, Err: err}, logger.StatePrefix(req.State))
	}
	log = log.With(logger.UserID(entry.UserID))
	if entry.Provider != name {
		return fail(metrics.OutcomeInvalidState,
			&FlowError{Kind: ErrInvalidState, Detail: "state issued for another provider"},
			logger.String("state_provider", entry.Provider),
		)
	}

	// (b) el usuario rechazó o el proveedor devolvió error
	if req.Error != "" {
		detail := req.ErrorDescription
		if detail == "" {
			detail = req.Error
		}
		return fail(metrics.OutcomeProviderDenied,
			&FlowError{Kind: ErrProviderDenied, Detail: detail},
			logger.String("provider_error", req.Error),
		)
	}

	// (c)
	if strings.TrimSpace(req.Code) == "" {
		return fail(metrics.OutcomeMissingCode, &FlowError{Kind: ErrMissingCode})
	}

	// (d) canje del code
	ts, err := p.Exchange(ctx, req.Code)
	if err != nil {
		return fail(metrics.OutcomeExchangeFailed, exchangeFailure(err))
	}
	log.Debug("code exchanged",
		append(logger.TokenPresence("access_token", ts.AccessToken),
			logger.TokenPresence("refresh_token", ts.RefreshToken)...)...,
	)

	// (e) token de larga duración
	if lle, ok := providers.LongLivedFor(p); ok {
		long, err := lle.ExchangeLongLived(ctx, ts)
		if err != nil {
			return fail(metrics.OutcomeExchangeFailed, exchangeFailure(err), logger.Op("long_lived"))
		}
		ts = long
	}

	// (f) persistir bajo el usuario del state
	cred := repository.Credential{
		AccessToken:  ts.AccessToken,
		RefreshToken: ts.RefreshToken,
		ExpiresAt:    ts.ExpiresAt,
		Scopes:       ts.Scopes,
		AccountIDs:   copyIDs(ts.AccountIDs),
	}
	unlock := s.locks.Lock(entry.UserID, name)
	err = s.store.Upsert(ctx, entry.UserID, name, cred)
	unlock()
	if err != nil {
		log.Error("credential upsert failed", logger.Err(err))
		metrics.RecordOAuthFlow(name, metrics.OutcomeStoreFailed)
		return nil, &FlowError{Kind: ErrStoreFailed, Provider: name, Err: err}
	}

	res := &CallbackResult{
		UserID:     entry.UserID,
		Provider:   name,
		State:      StateCompleted,
		ExpiresAt:  cred.ExpiresAt,
		AccountIDs: cred.AccountIDs,
	}

	// (g) metadata best-effort
	if mf, ok := p.(providers.MetadataFetcher); ok {
		if ids, err := s.fetchMetadata(ctx, mf, cred.AccessToken); err != nil {
			log.Warn("metadata fetch failed", logger.Err(err))
		} else if len(ids) > 0 {
			if merged, ok := s.mergeAccountIDs(ctx, log, entry.UserID, name, cred.AccessToken, ids); ok {
				res.AccountIDs = merged
				res.MetadataFetched = true
			}
		} else {
			res.MetadataFetched = true
		}
	}

	log.Info("oauth flow completed",
		logger.FlowState(string(StateCompleted)),
		logger.Bool("has_refresh_token", cred.RefreshToken != ""),
		logger.Bool("has_expiry", cred.HasExpiry()),
		logger.Bool("metadata", res.MetadataFetched),
	)
	metrics.RecordOAuthFlow(name, metrics.OutcomeConnected)
	return res, nil
}

// mergeAccountIDs agrega ids a la credencial guardada, bajo el lock de la
// clave y sólo si sigue siendo la del access token recién conectado.
func (s *service) mergeAccountIDs(ctx context.Context, log *zap.Logger, userID, provider, accessToken string, ids map[string]string) (map[string]string, bool) {
	unlock := s.locks.Lock(userID, provider)
	defer unlock()

	cur, err := s.store.Get(ctx, userID, provider)
	if err != nil {
		log.Warn("metadata skipped: credential not readable", logger.Err(err))
		return nil, false
	}
	if cur.AccessToken != accessToken {
		log.Info("metadata skipped: credential changed since connect")
		return nil, false
	}
	merged := copyIDs(cur.AccountIDs)
	if merged == nil {
		merged = make(map[string]string, len(ids))
	}
	for k, v := range ids {
		merged[k] = v
	}
	cur.AccountIDs = merged
	if err := s.store.Upsert(ctx, userID, provider, *cur); err != nil {
		log.Warn("metadata upsert failed", logger.Err(err))
		return nil, false
	}
	return merged, true
}

func (s *service) fetchMetadata(ctx context.Context, mf providers.MetadataFetcher, accessToken string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.metadataTimeout)
	defer cancel()
	ids, err := mf.FetchMetadata(ctx, accessToken)
	if err != nil {
		return nil, errors.Join(ErrMetadataFetchFailed, err)
	}
	return ids, nil
}

func exchangeFailure(err error) *FlowError {
	fe := &FlowError{Kind: ErrTokenExchangeFailed, Rejected: providers.IsRejected(err), Err: err}
	var xe *providers.ExchangeError
	if errors.As(err, &xe) && xe.Rejected() {
		fe.Detail = xe.Description
		if fe.Detail == "" {
			fe.Detail = xe.Code
		}
	}
	return fe
}

func copyIDs(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
