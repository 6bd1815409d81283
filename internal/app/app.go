// Package app arma el servicio completo a partir de la configuración:
// store, cache, state registry, proveedores, services, controllers y router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/socialbridge/internal/cache"
	"github.com/dropDatabas3/socialbridge/internal/config"
	connectctrl "github.com/dropDatabas3/socialbridge/internal/http/controllers/connect"
	healthctrl "github.com/dropDatabas3/socialbridge/internal/http/controllers/health"
	sessionctrl "github.com/dropDatabas3/socialbridge/internal/http/controllers/session"
	"github.com/dropDatabas3/socialbridge/internal/http/helpers"
	mw "github.com/dropDatabas3/socialbridge/internal/http/middlewares"
	"github.com/dropDatabas3/socialbridge/internal/http/router"
	"github.com/dropDatabas3/socialbridge/internal/http/services/connect"
	"github.com/dropDatabas3/socialbridge/internal/http/services/credential"
	"github.com/dropDatabas3/socialbridge/internal/http/services/health"
	"github.com/dropDatabas3/socialbridge/internal/http/services/session"
	jwtx "github.com/dropDatabas3/socialbridge/internal/jwt"
	"github.com/dropDatabas3/socialbridge/internal/metrics"
	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
	"github.com/dropDatabas3/socialbridge/internal/providers"
	"github.com/dropDatabas3/socialbridge/internal/providers/builtin"
	"github.com/dropDatabas3/socialbridge/internal/rate"
	"github.com/dropDatabas3/socialbridge/internal/security/secretbox"
	"github.com/dropDatabas3/socialbridge/internal/state"
	"github.com/dropDatabas3/socialbridge/internal/store"
)

// Options son dependencias opcionales (tests).
type Options struct {
	// Registerer/Gatherer de Prometheus; default el global.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// Providers reemplaza el registry construido desde la config.
	Providers *providers.Registry

	Version string
}

// App es el servicio armado.
type App struct {
	Handler   http.Handler
	Store     *store.Store
	States    state.Registry
	Sweeper   *state.Sweeper
	Providers *providers.Registry
	Issuer    *jwtx.Issuer
	Refresher credential.RefreshService

	closers []func() error
}

// Close libera store y redis. Idempotente a nivel de cada recurso.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenStore abre el store configurado (con cifrado en reposo si hay master key).
// También lo usan los comandos migrate/user de la CLI.
func OpenStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	var box *secretbox.Box
	if cfg.Security.SecretBoxMasterKey != "" {
		b, err := secretbox.New(cfg.Security.SecretBoxMasterKey)
		if err != nil {
			return nil, fmt.Errorf("secretbox: %w", err)
		}
		box = b
	}
	return store.Open(ctx, store.Config{
		Driver:    cfg.Storage.Driver,
		DSN:       cfg.Storage.DSN,
		Postgres:  pgPoolConfig(cfg),
		SecretBox: box,
	})
}

// New arma la aplicación. El llamador es dueño de a.Close y de correr a.Sweeper.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.L().With(logger.Component("app"))
	a := &App{}

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = st
	a.closers = append(a.closers, st.Close)

	if cfg.Flags.Migrate {
		if err := st.Migrate(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	// cache + limiter: redis compartido o memoria de proceso
	var (
		cacheClient cache.Client
		limiter     rate.MultiLimiter
		rdb         *redis.Client
	)
	switch cfg.Cache.Kind {
	case "redis":
		rdb, err = cache.OpenRedis(ctx, cache.Config{
			Driver:   "redis",
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		cacheClient = cache.NewRedis(rdb, cfg.Cache.Redis.Prefix)
		limiter = rate.NewMultiRedisLimiter(rdb, cfg.Cache.Redis.Prefix+":rl:")
	default:
		cacheClient = cache.NewMemory("")
		limiter = rate.NewMemoryLimiter()
	}
	if !cfg.Rate.Enabled {
		limiter = nil
	}

	a.States = state.New(cacheClient, state.Options{TTL: cfg.State.TTL})
	a.Sweeper = &state.Sweeper{
		Registry: a.States,
		Interval: cfg.State.SweepInterval,
		OnEvict:  metrics.RecordStateEvictions,
	}

	a.Providers = opts.Providers
	if a.Providers == nil {
		a.Providers = builtin.Build(cfg, providers.Options{Timeout: cfg.HTTPClient.Timeout})
	}

	a.Issuer, err = jwtx.NewIssuer(cfg.JWT.Issuer, cfg.JWT.Secret, cfg.JWT.AccessTTL)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	// refresh, callback y disconnect escriben la misma fila
	locks := credential.NewLocks()
	a.Refresher = credential.NewRefreshService(credential.Deps{
		Locks:        locks,
		Store:        st.Credentials,
		Providers:    a.Providers,
		SafetyMargin: cfg.Refresh.SafetyMargin,
		Timeout:      cfg.Refresh.Timeout,
	})
	connectSvc := connect.NewService(connect.Deps{
		States:          a.States,
		Providers:       a.Providers,
		Store:           st.Credentials,
		MetadataTimeout: cfg.HTTPClient.Timeout,
		Locks:           locks,
	})
	loginSvc := session.NewLoginService(session.LoginDeps{Users: st.Users, Issuer: a.Issuer})

	components := map[string]health.Pinger{"store": st}
	if rdb != nil {
		components["redis"] = health.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	healthSvcs := health.NewServices(health.Deps{
		Components: components,
		Providers:  a.Providers.Names,
		Version:    opts.Version,
	})

	var pool func() *pgxpool.Pool
	if st.Postgres != nil {
		pool = st.Postgres.Pool
	}
	metricsHandler, err := metrics.RegisterHTTP(metrics.HTTPConfig{
		Registry: opts.Registerer,
		Gatherer: opts.Gatherer,
		Pool:     pool,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}

	a.Handler = router.New(router.Deps{
		Connect: connectctrl.NewControllers(connectctrl.Deps{
			Service:     connectSvc,
			Providers:   a.Providers,
			FrontendURL: cfg.Server.FrontendURL,
		}),
		Session: sessionctrl.NewLoginController(loginSvc, limiter, helpers.LoginRateConfig{
			Limit:  cfg.Rate.Login.Limit,
			Window: cfg.Rate.Login.Window,
		}),
		Health:           healthctrl.NewControllers(healthSvcs),
		Auth:             mw.AuthConfig{Issuer: a.Issuer, Users: st.Users},
		Refresher:        a.Refresher,
		EnabledProviders: a.Providers.Names(),
		Limiter:          limiter,
		GlobalLimit: mw.RateLimitConfig{
			Limit:   cfg.Rate.MaxRequests,
			Window:  cfg.Rate.Window,
			KeyFunc: mw.IPOnlyRateKey,
		},
		LoginLimit:    mw.RateLimitConfig{Limit: cfg.Rate.Login.Limit, Window: cfg.Rate.Login.Window},
		CallbackLimit: mw.RateLimitConfig{Limit: cfg.Rate.Callback.Limit, Window: cfg.Rate.Callback.Window},
		CORSOrigins:   cfg.Server.CORSAllowedOrigins,
		Metrics:       metricsHandler,
		Instrument:    metrics.WithMetrics,
	})

	log.Info("app wired",
		logger.String("storage", st.Driver),
		logger.String("cache", cfg.Cache.Kind),
		logger.Bool("rate_limit", limiter != nil),
		logger.Any("providers", a.Providers.Names()),
	)
	return a, nil
}
