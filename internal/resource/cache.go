package resource

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the value for a key.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// CacheConfig configures a new Cache.
type CacheConfig[K comparable] struct {
	// KeyOf maps a key to the string used for single-flight grouping.
	// Defaults to fmt.Sprint, which is sufficient for keys whose string
	// form is unique (resource.Key qualifies).
	KeyOf func(K) string

	// CacheFailures memoizes failed fetches instead of discarding them.
	// The default (false) favors retryability: a failed attempt leaves
	// the entry empty so the next Get issues a fresh fetch.
	CacheFailures bool

	// Logger for fetch outcomes. Defaults to slog.Default().
	Logger *slog.Logger
}

// Cache is a single-flight, fetch-through cache.
//
// Get transitions an entry through empty -> pending -> ready. While a
// fetch is pending, all concurrent Gets for the same key share the one
// in-flight call (the single-flight guarantee). A successful result is
// retained for all future Gets. The cache imposes no timeout or retry
// limit of its own.
type Cache[K comparable, V any] struct {
	fetch         FetchFunc[K, V]
	keyOf         func(K) string
	cacheFailures bool
	logger        *slog.Logger

	mu     sync.RWMutex
	ready  map[K]V
	failed map[K]error

	flight singleflight.Group
}

// NewCache creates a cache around the given fetch function.
func NewCache[K comparable, V any](fetch FetchFunc[K, V], cfg CacheConfig[K]) *Cache[K, V] {
	keyOf := cfg.KeyOf
	if keyOf == nil {
		keyOf = func(k K) string { return fmt.Sprint(k) }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache[K, V]{
		fetch:         fetch,
		keyOf:         keyOf,
		cacheFailures: cfg.CacheFailures,
		logger:        logger,
		ready:         make(map[K]V),
		failed:        make(map[K]error),
	}
}

// Result carries the outcome of an asynchronous Get.
type Result[V any] struct {
	Value V
	Err   error
}

// Get returns the cached value for key, fetching it if necessary.
//
// Concurrent callers for the same key block on a single underlying
// fetch and all receive the same result. The fetch itself is detached
// from the caller's cancellation: once issued, it runs to completion
// and populates the cache even if every waiter has gone away, so a
// page that scrolls out of the window still warms the cache for later.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	var zero V

	c.mu.RLock()
	if v, ok := c.ready[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	if err, ok := c.failed[key]; ok {
		c.mu.RUnlock()
		return zero, err
	}
	c.mu.RUnlock()

	fetchCtx := context.WithoutCancel(ctx)

	v, err, _ := c.flight.Do(c.keyOf(key), func() (any, error) {
		// Another caller may have completed between the read above and
		// entering the flight.
		c.mu.RLock()
		cached, ok := c.ready[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		val, err := c.fetch(fetchCtx, key)
		if err != nil {
			c.mu.Lock()
			if c.cacheFailures {
				c.failed[key] = err
			}
			c.mu.Unlock()
			c.logger.Debug("resource fetch failed", "key", c.keyOf(key), "error", err)
			return nil, err
		}

		c.mu.Lock()
		c.ready[key] = val
		c.mu.Unlock()
		return val, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(V), nil
}

// GetAsync issues Get on a new goroutine and returns a channel that
// receives the single result. It never blocks the caller, which lets a
// scheduler issue many requests in priority order without waiting on
// earlier ones.
func (c *Cache[K, V]) GetAsync(ctx context.Context, key K) <-chan Result[V] {
	ch := make(chan Result[V], 1)
	go func() {
		v, err := c.Get(ctx, key)
		ch <- Result[V]{Value: v, Err: err}
	}()
	return ch
}

// Peek returns the ready value for key without triggering a fetch.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.ready[key]
	return v, ok
}

// Len returns the number of ready entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ready)
}

// Forget drops any memoized result for key. In-flight fetches are
// unaffected and will still populate the cache on completion.
func (c *Cache[K, V]) Forget(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ready, key)
	delete(c.failed, key)
}

// Store is the cache instantiation used throughout the browser: page
// resources keyed by (page, kind), loaded through a Fetcher.
type Store = Cache[Key, Value]

// NewStore creates a Store backed by the given fetcher.
func NewStore(f Fetcher, cfg CacheConfig[Key]) *Store {
	if cfg.KeyOf == nil {
		cfg.KeyOf = Key.String
	}
	return NewCache(func(ctx context.Context, key Key) (Value, error) {
		return f.Fetch(ctx, key.Page, key.Kind)
	}, cfg)
}
