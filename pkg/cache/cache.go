package cache

import "time"

// Cache is a bounded key/value store whose entries expire after a TTL.
// Implementations are safe for concurrent use.
type Cache[K comparable, V any] interface {
	// Get returns the value for key and true if present (and not expired).
	Get(key K) (V, bool)

	// Set stores the value for key using the cache's default TTL.
	Set(key K, value V)

	// SetWithTTL stores the value for key with a custom ttl. ttl <= 0 falls back to the default TTL.
	SetWithTTL(key K, value V, ttl time.Duration)

	// Delete removes the key from the cache.
	Delete(key K)

	// Len returns the number of items currently stored. Expired items not yet reclaimed are counted.
	Len() int

	// Stats returns a point-in-time view of the cache size and limits.
	Stats() Stats

	//// TTL Specific ////

	// StartCleanupDaemon starts a background cleanup cronjob that periodically removes expired entries.
	StartCleanupDaemon()

	// StopCleanupDaemon stops the background cleanup cronjob if running.
	StopCleanupDaemon()

	// Close stops cleanup cronjob and releases resources. After Close the cache can still be used, but TTL cronjob won't run.
	Close()
}

// Stats is a possibly slightly stale snapshot of a cache.
type Stats struct {
	EntryCount   int
	WeightedSize int64
	TTL          time.Duration
	MaxCapacity  int
}
