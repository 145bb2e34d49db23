// Package cache provides a TTL request cache that collapses concurrent
// fetches of the same key into one upstream call.
//
// Entries are valid while now - timestamp < ttl. The TTL is supplied per
// lookup, so expired entries are treated as absent rather than deleted; Purge
// reclaims them in the background.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// Entry is a cached value and the time it was stored.
type Entry struct {
	Data      any
	Timestamp time.Time
}

// Fresh reports whether the entry is still valid at now for the given ttl.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) < ttl
}

// Store holds cache entries. Implementations must be safe for concurrent use.
type Store interface {
	Load(key string) (Entry, bool)
	Save(key string, e Entry)
	Delete(key string)
	Range(fn func(key string, e Entry) bool)
	Len() int
}

// Options configures a Cache. Zero values select the system clock, an
// in-memory store and unregistered metrics.
type Options struct {
	// Name labels the metrics of this cache instance.
	Name string

	Clock      Clock
	Store      Store
	Registerer prometheus.Registerer
}

// Cache is a TTL cache with in-flight request deduplication.
type Cache struct {
	name    string
	clock   Clock
	store   Store
	group   singleflight.Group
	metrics *metrics

	// gens counts invalidations per key. A fetch that started under an
	// older generation does not store its result.
	mu   sync.Mutex
	gens map[string]uint64
}

// New creates a Cache.
func New(opts Options) *Cache {
	if opts.Name == "" {
		opts.Name = "default"
	}

	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}

	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}

	return &Cache{
		name:    opts.Name,
		clock:   opts.Clock,
		store:   opts.Store,
		metrics: newMetrics(opts.Registerer),
		gens:    make(map[string]uint64),
	}
}

// Get returns the value stored under key if it is fresh for ttl.
func (c *Cache) Get(key string, ttl time.Duration) (any, bool) {
	e, ok := c.store.Load(key)
	if !ok || !e.Fresh(c.clock.Now(), ttl) {
		return nil, false
	}

	return e.Data, true
}

// Set stores value under key, stamped with the current time.
func (c *Cache) Set(key string, value any) {
	c.store.Save(key, Entry{Data: value, Timestamp: c.clock.Now()})
}

// Invalidate removes key immediately regardless of its age. A fetch already
// in flight for key is detached: the next lookup starts a new one, and the
// detached fetch no longer writes its result.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[key]++
	c.store.Delete(key)
	c.group.Forget(key)
}

func (c *Cache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gens[key]
}

// setIfCurrent stores value unless key was invalidated since gen was read.
func (c *Cache) setIfCurrent(key string, value any, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[key] != gen {
		return false
	}

	c.Set(key, value)

	return true
}

// InvalidatePrefix removes every key starting with prefix and returns the
// number removed.
func (c *Cache) InvalidatePrefix(prefix string) int {
	var keys []string

	c.store.Range(func(key string, _ Entry) bool {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}

		return true
	})

	for _, key := range keys {
		c.Invalidate(key)
	}

	return len(keys)
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	return c.store.Len()
}

// Purge deletes entries older than maxAge and returns how many were removed.
func (c *Cache) Purge(maxAge time.Duration) int {
	now := c.clock.Now()

	var stale []string

	c.store.Range(func(key string, e Entry) bool {
		if !e.Fresh(now, maxAge) {
			stale = append(stale, key)
		}

		return true
	})

	for _, key := range stale {
		c.store.Delete(key)
	}

	return len(stale)
}

// RunJanitor purges entries older than maxAge every interval until ctx is
// done.
func (c *Cache) RunJanitor(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Purge(maxAge); n > 0 {
				c.metrics.evicted.WithLabelValues(c.name).Add(float64(n))
			}
		}
	}
}

// GetOrFetch returns the fresh value cached under key, or calls fetch and
// caches its result. Concurrent callers for the same key share one fetch.
// Errors are returned to every waiter and never cached.
//
// The shared fetch runs detached from the cancellation of any single caller;
// a caller whose ctx ends stops waiting and gets ctx.Err().
func GetOrFetch[T any](
	ctx context.Context,
	c *Cache,
	key string,
	fetch func(ctx context.Context) (T, error),
	ttl time.Duration,
) (T, error) {
	var zero T

	if v, ok := c.Get(key, ttl); ok {
		if typed, ok := v.(T); ok {
			c.metrics.requests.WithLabelValues(c.name, resultHit).Inc()
			return typed, nil
		}
	}

	fetchCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (any, error) {
		c.metrics.requests.WithLabelValues(c.name, resultMiss).Inc()

		gen := c.generation(key)

		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		c.setIfCurrent(key, v, gen)

		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.metrics.requests.WithLabelValues(c.name, resultShared).Inc()
		}

		if res.Err != nil {
			return zero, fmt.Errorf("fetching %q: %w", key, res.Err)
		}

		typed, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("fetching %q: cached %T, want %T", key, res.Val, zero)
		}

		return typed, nil
	}
}

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Load(key string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]

	return e, ok
}

func (m *MemoryStore) Save(key string, e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = e
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
}

// Range calls fn for each entry until fn returns false. fn must not modify
// the store.
func (m *MemoryStore) Range(fn func(key string, e Entry) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for k, e := range m.entries {
		if !fn(k, e) {
			return
		}
	}
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
