package app

import (
	"github.com/dropDatabas3/socialbridge/internal/config"
	"github.com/dropDatabas3/socialbridge/internal/store/pg"
)

func pgPoolConfig(cfg *config.Config) pg.PoolConfig {
	return pg.PoolConfig{
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
	}
}
