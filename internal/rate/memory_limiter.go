package rate

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	xrate "golang.org/x/time/rate"
)

// MemoryLimiter es un token bucket por clave, para una sola réplica.
// Los buckets sin uso expiran solos.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets *gocache.Cache
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		buckets: gocache.New(10*time.Minute, 10*time.Minute),
		now:     time.Now,
	}
}

// AllowWithLimits implementa MultiLimiter: limit eventos por window, con
// ráfaga igual a limit.
func (m *MemoryLimiter) AllowWithLimits(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	if limit <= 0 || window <= 0 {
		return Result{Allowed: true}, nil
	}
	bucketKey := fmt.Sprintf("%d:%s:%s", limit, window, key)
	every := window / time.Duration(limit)

	m.mu.Lock()
	var lim *xrate.Limiter
	if v, ok := m.buckets.Get(bucketKey); ok {
		lim = v.(*xrate.Limiter)
	} else {
		lim = xrate.NewLimiter(xrate.Every(every), limit)
	}
	// renueva la expiración en cada uso
	m.buckets.Set(bucketKey, lim, 2*window)
	m.mu.Unlock()

	now := m.now()
	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Result{
			Allowed:     false,
			RetryAfter:  time.Duration(math.Ceil(delay.Seconds())) * time.Second,
			WindowTTL:   window,
			CurrentHits: int64(limit),
		}, nil
	}

	remaining := int64(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:     true,
		Remaining:   remaining,
		WindowTTL:   window,
		CurrentHits: int64(limit) - remaining,
	}, nil
}
