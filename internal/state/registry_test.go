package state

import (
	"context"
	"encoding/base64"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialbridge/internal/cache"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newMemoryRegistry(t *testing.T) (Registry, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	c := cache.NewMemoryWithClock("", clk.Now)
	return New(c, Options{TTL: time.Hour, Now: clk.Now}), clk
}

func TestIssue_TokenHasEnoughEntropy(t *testing.T) {
	reg, _ := newMemoryRegistry(t)
	tok, err := reg.Issue(context.Background(), "user-1", "tiktok")
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw)*8, 128)

	_, err = reg.Issue(context.Background(), "", "tiktok")
	require.Error(t, err)
}

func TestVerifyAndConsume_SingleUse(t *testing.T) {
	ctx := context.Background()
	reg, _ := newMemoryRegistry(t)

	tok, err := reg.Issue(ctx, "user-1", "gmail")
	require.NoError(t, err)

	e, err := reg.VerifyAndConsume(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", e.UserID)
	require.Equal(t, "gmail", e.Provider)

	_, err = reg.VerifyAndConsume(ctx, tok)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = reg.VerifyAndConsume(ctx, "")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = reg.VerifyAndConsume(ctx, "never-issued")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyAndConsume_ExpiredEvenWithoutSweep(t *testing.T) {
	ctx := context.Background()
	reg, clk := newMemoryRegistry(t)

	tok, err := reg.Issue(ctx, "user-1", "facebook")
	require.NoError(t, err)

	clk.Advance(time.Hour + time.Second)
	_, err = reg.VerifyAndConsume(ctx, tok)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEvict_RemovesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	reg, clk := newMemoryRegistry(t)

	old, err := reg.Issue(ctx, "user-1", "facebook")
	require.NoError(t, err)
	clk.Advance(40 * time.Minute)
	fresh, err := reg.Issue(ctx, "user-2", "facebook")
	require.NoError(t, err)
	clk.Advance(30 * time.Minute)

	n, err := reg.Evict(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = reg.VerifyAndConsume(ctx, old)
	require.ErrorIs(t, err, ErrNotFound)
	e, err := reg.VerifyAndConsume(ctx, fresh)
	require.NoError(t, err)
	require.Equal(t, "user-2", e.UserID)
}

func TestEvictAndConsumeRace(t *testing.T) {
	ctx := context.Background()
	reg, clk := newMemoryRegistry(t)

	tok, err := reg.Issue(ctx, "user-1", "instagram")
	require.NoError(t, err)
	clk.Advance(time.Hour)

	var wg sync.WaitGroup
	var consumed atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = reg.Evict(ctx)
		}()
		go func() {
			defer wg.Done()
			if _, err := reg.VerifyAndConsume(ctx, tok); err == nil {
				consumed.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Zero(t, consumed.Load())
}

func TestRedisRegistry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg := New(cache.NewRedis(rdb, "sb"), Options{TTL: time.Hour})

	tok, err := reg.Issue(ctx, "user-9", "whatsapp")
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 1)
	require.NotContains(t, mr.Keys()[0], tok, "raw token must not be used as key")

	e, err := reg.VerifyAndConsume(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "user-9", e.UserID)

	_, err = reg.VerifyAndConsume(ctx, tok)
	require.ErrorIs(t, err, ErrNotFound)

	tok2, err := reg.Issue(ctx, "user-9", "whatsapp")
	require.NoError(t, err)
	mr.FastForward(61 * time.Minute)
	_, err = reg.VerifyAndConsume(ctx, tok2)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSweeper_RunsUntilCancelled(t *testing.T) {
	reg, clk := newMemoryRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := reg.Issue(ctx, "user-1", "gmail")
	require.NoError(t, err)
	clk.Advance(2 * time.Hour)

	evicted := make(chan int, 16)
	s := &Sweeper{Registry: reg, Interval: 5 * time.Millisecond, OnEvict: func(n int) {
		select {
		case evicted <- n:
		default:
		}
	}}

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case n := <-evicted:
		require.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not run")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
