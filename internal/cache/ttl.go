package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GenziCode/genzi-rms-sub003/internal/clock"
)

// DefaultTTL is the lifetime of a cache generation.
const DefaultTTL = 5 * time.Minute

// TTL is a map cache whose entries all expire together.
type TTL[K comparable, V any] struct {
	name  string
	ttl   time.Duration
	clock clock.Clock

	mu        sync.Mutex
	items     map[K]V
	expiresAt time.Time
	gen       uint64

	group singleflight.Group
}

// NewTTL creates a cache. A ttl <= 0 disables caching, every lookup goes to the loader.
func NewTTL[K comparable, V any](name string, ttl time.Duration, clk clock.Clock) *TTL[K, V] {
	if clk == nil {
		clk = clock.Real{}
	}

	return &TTL[K, V]{
		name:  name,
		ttl:   ttl,
		clock: clk,
		items: make(map[K]V),
	}
}

// Name returns the cache name used in metrics and invalidation topics.
func (c *TTL[K, V]) Name() string {
	return c.name
}

// Get returns the cached value of key.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireLocked()

	v, ok := c.items[key]
	if ok {
		requests.WithLabelValues(c.name, resultHit).Inc()
	} else {
		requests.WithLabelValues(c.name, resultMiss).Inc()
	}

	return v, ok
}

// Set stores the value of key. The first Set of a generation starts its TTL.
func (c *TTL[K, V]) Set(key K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setLocked(key, v)
}

// Invalidate drops every entry immediately.
// Loads running while Invalidate is called do not store their results.
func (c *TTL[K, V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	invalidations.WithLabelValues(c.name).Inc()
}

// Len returns the number of live entries.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireLocked()

	return len(c.items)
}

// GetOrLoad returns the cached value of key or calls load once for all concurrent
// callers of the same key and caches its result.
// Errors are returned to the callers and are not cached.
func (c *TTL[K, V]) GetOrLoad(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	ch := c.group.DoChan(fmt.Sprintf("%d/%#v", gen, key), func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.setLocked(key, v)
		}
		c.mu.Unlock()

		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero V

		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero V

			return zero, res.Err
		}

		v, _ := res.Val.(V)

		return v, nil
	}
}

func (c *TTL[K, V]) setLocked(key K, v V) {
	if c.ttl <= 0 {
		return
	}

	c.expireLocked()

	if len(c.items) == 0 {
		c.expiresAt = c.clock.Now().Add(c.ttl)
	}

	c.items[key] = v
}

func (c *TTL[K, V]) expireLocked() {
	if len(c.items) > 0 && !c.clock.Now().Before(c.expiresAt) {
		c.resetLocked()
	}
}

func (c *TTL[K, V]) resetLocked() {
	c.items = make(map[K]V)
	c.expiresAt = time.Time{}
	c.gen++
}
