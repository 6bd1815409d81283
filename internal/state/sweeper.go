package state

import (
	"context"
	"time"

	"github.com/dropDatabas3/socialbridge/internal/observability/logger"
)

// Sweeper ejecuta Evict periódicamente. Lo arranca y detiene el ciclo de
// vida del proceso (comando serve) vía el contexto.
type Sweeper struct {
	Registry Registry
	Interval time.Duration

	// OnEvict se invoca tras cada pasada (métricas). Opcional.
	OnEvict func(removed int)
}

// Run bloquea hasta que ctx se cancela.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultTTL
	}
	log := logger.From(ctx).With(logger.Component("state.sweeper"))
	log.Info("state sweeper started", logger.String("interval", interval.String()))

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("state sweeper stopped")
			return
		case <-t.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	n, err := s.Registry.Evict(ctx)
	if err != nil {
		logger.From(ctx).Warn("state sweep failed", logger.Component("state.sweeper"), logger.Err(err))
		return
	}
	if s.OnEvict != nil {
		s.OnEvict(n)
	}
	if n > 0 {
		logger.From(ctx).Debug("expired states evicted", logger.Component("state.sweeper"), logger.Count(n))
	}
}
