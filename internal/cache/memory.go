package cache

import (
	"context"
	"sync"
	"time"
)

// memoryClient implementa Client usando un map en memoria.
type memoryClient struct {
	prefix string
	now    func() time.Time

	mu   sync.Mutex
	data map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero = no expira
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// NewMemory crea un cliente de cache en memoria.
func NewMemory(prefix string) *memoryClient {
	return NewMemoryWithClock(prefix, time.Now)
}

// NewMemoryWithClock permite inyectar el reloj (tests de expiración).
func NewMemoryWithClock(prefix string, now func() time.Time) *memoryClient {
	if now == nil {
		now = time.Now
	}
	return &memoryClient{
		prefix: prefix,
		now:    now,
		data:   make(map[string]memoryEntry),
	}
}

func (c *memoryClient) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// removeLocked es la única primitiva de borrado; Take, Delete y Sweep pasan
// por aquí. Borrar dos veces es no-op. Requiere c.mu tomado.
func (c *memoryClient) removeLocked(k string) bool {
	if _, ok := c.data[k]; !ok {
		return false
	}
	delete(c.data, k)
	return true
}

func (c *memoryClient) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[c.key(key)]
	if !ok || entry.expired(c.now()) {
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (c *memoryClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.data[c.key(key)] = entry
	c.mu.Unlock()
	return nil
}

func (c *memoryClient) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	c.removeLocked(c.key(key))
	c.mu.Unlock()
	return nil
}

func (c *memoryClient) Take(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.key(key)
	entry, ok := c.data[k]
	if !ok {
		return "", ErrNotFound
	}
	c.removeLocked(k)
	if entry.expired(c.now()) {
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (c *memoryClient) Sweep(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.data {
		if e.expired(now) && c.removeLocked(k) {
			removed++
		}
	}
	return removed, nil
}

func (c *memoryClient) Ping(ctx context.Context) error { return nil }

func (c *memoryClient) Close() error {
	c.mu.Lock()
	c.data = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}
