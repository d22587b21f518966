package cache

import (
	"container/list"
	"errors"
	"sync"
	"time"
)

const defaultCapacity = 10
const defaultTTL = 10 * time.Minute
const defaultCleanupInterval = 1 * time.Minute

// LRUOption is a functional option for building LRUTTL cache
type LRUOption[K comparable, V any] func(*LRUWithTTL[K, V])

// Weigher returns the weight of a single entry. Weights are summed into Stats.WeightedSize.
type Weigher[K comparable, V any] func(key K, value V) int64

// ttlEntry stored in list.Element
type ttlEntry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
	weight    int64
}

// LRU cache with TTL based cleanup
type LRUWithTTL[K comparable, V any] struct {
	capacity int
	mu       sync.RWMutex
	ll       *list.List
	items    map[K]*list.Element
	weight   int64

	defaultTTL      time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	weigher         Weigher[K, V]

	cleanupStop    chan struct{}
	cleanupRunning bool
}

// WithCapacity sets the capacity of the cache.
func WithCapacity[K comparable, V any](capacity int) LRUOption[K, V] {
	return func(c *LRUWithTTL[K, V]) {
		if capacity > 0 {
			c.capacity = capacity
		} else {
			panic("capacity must be > 0")
		}
	}
}

// WithDefaultTTL sets a default TTL (SECONDS) used by Set().
func WithDefaultTTL[K comparable, V any](ttlSeconds int) LRUOption[K, V] {
	return func(c *LRUWithTTL[K, V]) {
		if ttlSeconds > 0 {
			c.defaultTTL = time.Duration(ttlSeconds) * time.Second
		} else {
			panic("default TTL must be > 0")
		}
	}
}

// WithCleanupInterval configures automatic cleanup interval (SECONDS). intervalSeconds > 0 for TTL based cleanup
func WithCleanupInterval[K comparable, V any](intervalSeconds int) LRUOption[K, V] {
	return func(c *LRUWithTTL[K, V]) {
		if intervalSeconds > 0 {
			c.cleanupInterval = time.Duration(intervalSeconds) * time.Second
		} else {
			panic("cleanup interval must be > 0")
		}
	}
}

// WithCleanupStart configures whether to start the cleanup cronjob on cache creation.
func WithCleanupStart[K comparable, V any](cleanupRunning bool) LRUOption[K, V] {
	return func(c *LRUWithTTL[K, V]) {
		c.cleanupRunning = cleanupRunning
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock[K comparable, V any](now func() time.Time) LRUOption[K, V] {
	return func(c *LRUWithTTL[K, V]) {
		c.now = now
	}
}

// WithWeigher sets the per-entry weight function. Without it every entry weighs 1.
func WithWeigher[K comparable, V any](w Weigher[K, V]) LRUOption[K, V] {
	return func(c *LRUWithTTL[K, V]) {
		c.weigher = w
	}
}

// NewLRUTTL creates an LRU cache with TTL based cleanup.
// Provide options to configure capacity, TTL and cleanup interval.
func NewLRUTTL[K comparable, V any](opts ...LRUOption[K, V]) (*LRUWithTTL[K, V], error) {
	c := &LRUWithTTL[K, V]{
		capacity:        defaultCapacity,
		ll:              list.New(),
		defaultTTL:      defaultTTL,
		cleanupInterval: defaultCleanupInterval,
		now:             time.Now,
		weigher:         func(K, V) int64 { return 1 },
		cleanupStop:     make(chan struct{}),
		cleanupRunning:  true,
	}

	for _, o := range opts {
		o(c)
	}
	if c.now == nil || c.weigher == nil {
		return nil, errors.New("clock and weigher must not be nil")
	}
	c.items = make(map[K]*list.Element, c.capacity)

	if c.cleanupRunning {
		c.cleanupRunning = false
		c.StartCleanupDaemon()
	}
	return c, nil
}
