// Package rate implementa los limitadores usados por los middlewares HTTP:
// ventana fija en Redis (varias réplicas) y token bucket en memoria.
package rate

import (
	"context"
	"time"
)

// Result describe la decisión para un request.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// MultiLimiter aplica límites distintos por endpoint (login, callback, global).
// limit <= 0 o window <= 0 significa sin límite.
type MultiLimiter interface {
	AllowWithLimits(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}
