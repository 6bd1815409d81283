package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newRedisClient(t *testing.T) (*miniredis.Miniredis, Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewRedis(rdb, "test")
}

func TestMemory_TakeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("p")

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	v, err := c.Take(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	_, err = c.Take(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, c.Delete(ctx, "k"), "double delete is a no-op")
}

func TestMemory_ExpiredEntriesAreNotFoundBeforeSweep(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryWithClock("", clk.Now)

	require.NoError(t, c.Set(ctx, "a", "1", time.Hour))
	require.NoError(t, c.Set(ctx, "b", "2", 2*time.Hour))
	require.NoError(t, c.Set(ctx, "c", "3", 0))

	clk.Advance(time.Hour)

	_, err := c.Get(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)

	n, err := c.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = c.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	v, err := c.Take(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, "2", v)

	_, err = c.Get(ctx, "b")
	require.True(t, IsNotFound(err))
}

func TestMemory_ConcurrentTakeExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")
	require.NoError(t, c.Set(ctx, "state", "user-1", time.Minute))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Take(ctx, "state"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins.Load())
}

func TestRedis_TakeAndTTL(t *testing.T) {
	ctx := context.Background()
	mr, c := newRedisClient(t)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.True(t, mr.Exists("test:k"))

	v, err := c.Take(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)
	require.False(t, mr.Exists("test:k"))

	_, err = c.Take(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Set(ctx, "short", "v", time.Minute))
	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "short")
	require.True(t, IsNotFound(err))

	n, err := c.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.NoError(t, c.Ping(ctx))
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: "memcached"})
	require.Error(t, err)
}
