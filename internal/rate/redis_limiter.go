package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// MultiRedisLimiter es un fixed window (INCR + EXPIRE) compartido entre
// réplicas. Cada combinación limit/window cuenta por separado.
type MultiRedisLimiter struct {
	client *rdb.Client
	prefix string
	now    func() time.Time
}

func NewMultiRedisLimiter(client *rdb.Client, prefix string) *MultiRedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &MultiRedisLimiter{client: client, prefix: prefix, now: time.Now}
}

func (m *MultiRedisLimiter) windowKey(key string, limit int, window time.Duration, start time.Time) string {
	return fmt.Sprintf("%s%d:%s:%s:%d", m.prefix, limit, window, strings.ReplaceAll(key, " ", "_"), start.Unix())
}

// AllowWithLimits implementa MultiLimiter.
func (m *MultiRedisLimiter) AllowWithLimits(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	if limit <= 0 || window <= 0 {
		return Result{Allowed: true}, nil
	}
	start := m.now().UTC().Truncate(window)
	redisKey := m.windowKey(key, limit, window, start)

	hits, err := m.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, err
	}
	// el primer hit fija la expiración de la ventana
	if hits == 1 {
		if err := m.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return Result{}, err
		}
	}
	ttl, err := m.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = start.Add(window).Sub(m.now().UTC())
	}

	res := Result{
		Allowed:     hits <= int64(limit),
		Remaining:   max(int64(limit)-hits, 0),
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		res.RetryAfter = ttl.Round(time.Second)
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Second
		}
	}
	return res, nil
}
