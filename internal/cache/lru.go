// Lumen - Street-Lighting Dimming Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lumen

package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/lumen/internal/metrics"
)

const (
	defaultCapacity = 10000
	defaultTTL      = 5 * time.Minute
)

// entry is a node of the recency list.
type entry[V any] struct {
	key       string
	value     V
	prev      *entry[V]
	next      *entry[V]
	expiresAt time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
	Capacity  int   `json:"capacity"`
}

// HitRate returns hits / (hits + misses), 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// LRU is a thread-safe least recently used cache with a fixed TTL.
//
// Get, Add and Remove are O(1): a map indexes the nodes of a doubly linked
// list ordered by recency. Expired entries are dropped lazily on access and
// by CleanupExpired. Every operation is reported to the cache metrics under
// the cache name.
type LRU[V any] struct {
	mu sync.Mutex

	name     string
	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[string]*entry[V]

	// head.next is the most recently used entry, tail.prev the least.
	head *entry[V]
	tail *entry[V]

	hits      int64
	misses    int64
	evictions int64
}

// NewLRU creates a cache. Non-positive capacity or ttl select the defaults.
func NewLRU[V any](name string, capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	c := &LRU[V]{
		name:     name,
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*entry[V]),
		head:     &entry[V]{},
		tail:     &entry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Name returns the cache name used as the metrics label.
func (c *LRU[V]) Name() string {
	return c.name
}

// Get returns the value for key if present and not expired, marking it most
// recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		if c.now().After(e.expiresAt) {
			c.removeEntry(e)
			c.evicted(1)
		} else {
			c.moveToFront(e)
			c.hits++
			metrics.CacheHits.WithLabelValues(c.name).Inc()
			return e.value, true
		}
	}

	c.misses++
	metrics.CacheMisses.WithLabelValues(c.name).Inc()
	var zero V
	return zero, false
}

// Contains reports whether key is present and not expired without changing
// its recency.
func (c *LRU[V]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	return ok && !c.now().After(e.expiresAt)
}

// Add inserts or refreshes key. The least recently used entry is evicted
// when the cache is full.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	evicted := 0
	for len(c.items) > c.capacity {
		if !c.evictOldest() {
			break
		}
		evicted++
	}
	c.evicted(evicted)
	c.reportSize()
}

// Remove deletes key and reports whether it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if ok {
		c.removeEntry(e)
		c.reportSize()
	}
	return ok
}

// Len returns the number of entries, expired ones included.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes every entry.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V])
	c.head.next = c.tail
	c.tail.prev = c.head
	c.reportSize()
}

// CleanupExpired removes every expired entry and returns how many went.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.removeEntry(e)
			removed++
		}
		e = prev
	}
	c.evicted(removed)
	return removed
}

// Stats returns the current counters.
func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.items),
		Capacity:  c.capacity,
	}
}

// The methods below must be called with mu held.

func (c *LRU[V]) addToFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) moveToFront(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *LRU[V]) removeEntry(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

func (c *LRU[V]) evictOldest() bool {
	oldest := c.tail.prev
	if oldest == c.head {
		return false
	}
	c.removeEntry(oldest)
	return true
}

func (c *LRU[V]) evicted(n int) {
	if n == 0 {
		return
	}
	c.evictions += int64(n)
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
	c.reportSize()
}

func (c *LRU[V]) reportSize() {
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.items)))
}
