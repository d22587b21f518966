package cache

import (
	"errors"
	"hash/fnv"
	"sync"
	"time"
)

const defaultShardCount = 16

// Sharded spreads string keys over independent LRUWithTTL shards so that
// operations on keys in different shards never contend for the same lock.
// Capacity is split so the shard capacities add up to exactly the requested
// total. LRU order is tracked per shard.
type Sharded[V any] struct {
	shards   []*LRUWithTTL[string, V]
	capacity int

	mu             sync.Mutex
	cleanupStop    chan struct{}
	cleanupRunning bool
}

// NewSharded builds a store holding at most capacity entries across shardCount shards.
// shardCount <= 0 picks the default; it is lowered to capacity when larger.
// opts are applied to every shard; capacity and cleanup options in opts are overridden.
func NewSharded[V any](capacity, shardCount int, opts ...LRUOption[string, V]) (*Sharded[V], error) {
	if capacity <= 0 {
		return nil, errors.New("capacity must be > 0")
	}
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	if shardCount > capacity {
		shardCount = capacity
	}

	s := &Sharded[V]{
		shards:      make([]*LRUWithTTL[string, V], shardCount),
		capacity:    capacity,
		cleanupStop: make(chan struct{}),
	}

	base, extra := capacity/shardCount, capacity%shardCount
	for i := range s.shards {
		shardCap := base
		if i < extra {
			shardCap++
		}
		shardOpts := append(append([]LRUOption[string, V]{}, opts...),
			WithCapacity[string, V](shardCap),
			WithCleanupStart[string, V](false),
		)
		shard, err := NewLRUTTL[string, V](shardOpts...)
		if err != nil {
			return nil, err
		}
		s.shards[i] = shard
	}

	s.StartCleanupDaemon()
	return s, nil
}

func (s *Sharded[V]) shard(key string) *LRUWithTTL[string, V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

func (s *Sharded[V]) Get(key string) (V, bool) {
	return s.shard(key).Get(key)
}

// Peek returns the value without touching its recency.
func (s *Sharded[V]) Peek(key string) (V, bool) {
	return s.shard(key).Peek(key)
}

func (s *Sharded[V]) Set(key string, value V) {
	s.shard(key).Set(key, value)
}

func (s *Sharded[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	s.shard(key).SetWithTTL(key, value, ttl)
}

func (s *Sharded[V]) Delete(key string) {
	s.shard(key).Delete(key)
}

func (s *Sharded[V]) Len() int {
	n := 0
	for _, shard := range s.shards {
		n += shard.Len()
	}
	return n
}

// Stats sums the shards. Shards are read one after another, so the result
// is not an atomic snapshot of the whole store.
func (s *Sharded[V]) Stats() Stats {
	out := Stats{
		TTL:         s.shards[0].defaultTTL,
		MaxCapacity: s.capacity,
	}
	for _, shard := range s.shards {
		st := shard.Stats()
		out.EntryCount += st.EntryCount
		out.WeightedSize += st.WeightedSize
	}
	return out
}

// StartCleanupDaemon runs one janitor goroutine that sweeps every shard.
func (s *Sharded[V]) StartCleanupDaemon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleanupRunning {
		return
	}
	s.cleanupRunning = true
	stop := s.cleanupStop
	interval := s.shards[0].cleanupInterval

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.cleanupExpired()
			case <-stop:
				return
			}
		}
	}()
}

func (s *Sharded[V]) cleanupExpired() int {
	removed := 0
	for _, shard := range s.shards {
		removed += shard.cleanupExpired()
	}
	return removed
}

func (s *Sharded[V]) StopCleanupDaemon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleanupRunning {
		close(s.cleanupStop)
		s.cleanupStop = make(chan struct{})
		s.cleanupRunning = false
	}
}

func (s *Sharded[V]) Close() {
	s.StopCleanupDaemon()
}

var (
	_ Cache[string, int] = (*LRUWithTTL[string, int])(nil)
	_ Cache[string, int] = (*Sharded[int])(nil)
)
