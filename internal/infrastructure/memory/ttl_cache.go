// Package memory holds single-process stand-ins for the Redis-backed
// cooldown and dedup stores.
package memory

import (
	"container/list"
	"sync"
	"time"
)

const (
	defaultMaxEntries = 10000
	sweepInterval     = time.Minute
)

type entry struct {
	expiresAt time.Time
	element   *list.Element
}

// TTLCache is a bounded set of keys that each expire after a fixed TTL.
// Keys are kept in insertion order so the oldest can be evicted in O(1)
// when the cache is full.
type TTLCache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      *list.List
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	done   chan struct{}
	closed bool
}

// NewTTLCache creates a cache and starts its background sweeper. Call Close
// to stop it.
func NewTTLCache(ttl time.Duration, maxEntries int) *TTLCache {
	c := newTTLCache(ttl, maxEntries, time.Now)
	go c.sweepLoop()
	return c
}

func newTTLCache(ttl time.Duration, maxEntries int, now func() time.Time) *TTLCache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &TTLCache{
		entries:    make(map[string]*entry),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
		done:       make(chan struct{}),
	}
}

// Claim atomically marks key if it is absent or expired. When the key is
// still live it returns false and the time left until it expires.
func (c *TTLCache) Claim(key string) (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[key]; ok {
		if remaining := e.expiresAt.Sub(now); remaining > 0 {
			return false, remaining
		}
		c.removeLocked(key, e)
	}
	c.insertLocked(key, now)
	return true, 0
}

// Contains reports whether key is present and not expired.
func (c *TTLCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return ok && c.now().Before(e.expiresAt)
}

// Mark records key, refreshing its expiry if already present.
func (c *TTLCache) Mark(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.removeLocked(key, e)
	}
	c.insertLocked(key, c.now())
}

// Len returns the number of stored keys, expired or not.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// insertLocked must be called with mu held.
func (c *TTLCache) insertLocked(key string, now time.Time) {
	if len(c.entries) >= c.maxEntries {
		c.sweepLocked(now)
	}
	if len(c.entries) >= c.maxEntries {
		if front := c.order.Front(); front != nil {
			k, _ := front.Value.(string)
			c.removeLocked(k, c.entries[k])
		}
	}
	c.entries[key] = &entry{
		expiresAt: now.Add(c.ttl),
		element:   c.order.PushBack(key),
	}
}

func (c *TTLCache) removeLocked(key string, e *entry) {
	c.order.Remove(e.element)
	delete(c.entries, key)
}

// sweepLocked drops expired keys. Entries share one TTL, so insertion order
// is also expiry order and the walk stops at the first live key.
func (c *TTLCache) sweepLocked(now time.Time) {
	for front := c.order.Front(); front != nil; front = c.order.Front() {
		k, _ := front.Value.(string)
		e := c.entries[k]
		if now.Before(e.expiresAt) {
			return
		}
		c.removeLocked(k, e)
	}
}

func (c *TTLCache) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.sweepLocked(c.now())
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}

// Close stops the background sweeper. It is safe to call multiple times.
func (c *TTLCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
