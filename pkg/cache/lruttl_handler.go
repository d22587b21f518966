package cache

import (
	"container/list"
	"time"
)

// Len returns number of stored items, expired ones included until they are reclaimed.
// Uses read lock since it only reads the map length
func (c *LRUWithTTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns entry count, summed weight and the configured limits.
func (c *LRUWithTTL[K, V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		EntryCount:   len(c.items),
		WeightedSize: c.weight,
		TTL:          c.defaultTTL,
		MaxCapacity:  c.capacity,
	}
}

// Get returns value if present and not expired
// Marks the element as most-recent
func (c *LRUWithTTL[K, V]) Get(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	element, ok := c.items[key]
	if !ok {
		return zero, false
	}
	entry := element.Value.(*ttlEntry[K, V])

	if c.isExpired(entry, c.now()) {
		c.removeElement(element)
		return zero, false
	}

	c.ll.MoveToFront(element)
	return entry.value, true
}

// Peek returns the value like Get but without marking it as most-recent.
func (c *LRUWithTTL[K, V]) Peek(key K) (value V, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	element, ok := c.items[key]
	if !ok {
		return zero, false
	}
	entry := element.Value.(*ttlEntry[K, V])
	if c.isExpired(entry, c.now()) {
		return zero, false
	}
	return entry.value, true
}

// Delete removes the key from the cache (both the linked list node and the items map).
func (c *LRUWithTTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	element, ok := c.items[key]
	if !ok {
		return
	}
	c.removeElement(element)
}

// Set stores value with the default TTL
func (c *LRUWithTTL[K, V]) Set(key K, value V) {
	c.setWithTTLInternal(key, value, c.defaultTTL)
}

// SetWithTTL stores value with a specific ttl, ttl <= 0 uses the default TTL
func (c *LRUWithTTL[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.setWithTTLInternal(key, value, ttl)
}

// Actual setting
func (c *LRUWithTTL[K, V]) setWithTTLInternal(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	weight := c.weigher(key, value)

	// update if it's existing
	if element, ok := c.items[key]; ok {
		entry := element.Value.(*ttlEntry[K, V])
		c.weight += weight - entry.weight
		entry.value = value
		entry.expiresAt = expiresAt
		entry.weight = weight
		c.ll.MoveToFront(element)
		return
	}

	// if its full, evict the least recently used to create space
	if len(c.items) >= c.capacity {
		if tail := c.ll.Back(); tail != nil {
			c.removeElement(tail)
		}
	}

	entry := &ttlEntry[K, V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
		weight:    weight,
	}
	c.items[key] = c.ll.PushFront(entry)
	c.weight += weight
}

// removeElement unlinks element from both the list and the map. Caller holds the write lock.
func (c *LRUWithTTL[K, V]) removeElement(element *list.Element) {
	entry := element.Value.(*ttlEntry[K, V])
	c.ll.Remove(element)
	delete(c.items, entry.key)
	c.weight -= entry.weight
}

// isExpired reports whether now has reached the entry's expiry.
func (c *LRUWithTTL[K, V]) isExpired(entry *ttlEntry[K, V], now time.Time) bool {
	return !now.Before(entry.expiresAt)
}

// CRONJOB

// Close stops cleanup cronjob if running.
func (c *LRUWithTTL[K, V]) Close() {
	c.StopCleanupDaemon()
}

// StartCleanupDaemon starts a background goroutine that periodically evicts expired items.
// Calling it while the daemon already runs is a no-op.
func (c *LRUWithTTL[K, V]) StartCleanupDaemon() {
	if c.cleanupInterval <= 0 {
		panic("cleanup interval must be > 0")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cleanupRunning {
		return
	}
	c.cleanupRunning = true
	stop := c.cleanupStop

	go func() {
		ticker := time.NewTicker(c.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.cleanupExpired()
			case <-stop:
				return
			}
		}
	}()
}

// cleanupExpired iterates through the linked list and removes expired entries and also deletes the entry from the map.
func (c *LRUWithTTL[K, V]) cleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	current := c.ll.Front()
	for current != nil {
		next := current.Next()
		if c.isExpired(current.Value.(*ttlEntry[K, V]), now) {
			c.removeElement(current)
			removed++
		}
		current = next
	}
	return removed
}

// StopCleanupDaemon stops the janitor if running.
func (c *LRUWithTTL[K, V]) StopCleanupDaemon() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cleanupRunning {
		close(c.cleanupStop)
		c.cleanupStop = make(chan struct{})
		c.cleanupRunning = false
	}
}
