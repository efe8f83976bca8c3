// Package cache implements a generic, thread-safe LRU cache whose entries
// carry an expiry deadline. Expired entries read as misses and are evicted
// on access. Backs the AI-summary cache.
//
// A hash map gives O(1) key lookup; a doubly linked list gives O(1)
// eviction ordering.
package cache

import (
	"sync"
	"time"
)

type node[K comparable, V any] struct {
	key      K
	val      V
	deadline time.Time
	prev     *node[K, V]
	next     *node[K, V]
}

// Cache is a generic, thread-safe LRU cache with per-entry TTL.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[K]*node[K, V]
	head     *node[K, V] // most recently used (sentinel)
	tail     *node[K, V] // least recently used (sentinel)
}

// New creates a cache with the given capacity and default entry TTL.
// A zero ttl means entries never expire. Panics if capacity < 1.
func New[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be >= 1")
	}

	head := &node[K, V]{}
	tail := &node[K, V]{}
	head.next = tail
	tail.prev = head

	return &Cache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[K]*node[K, V], capacity),
		head:     head,
		tail:     tail,
	}
}

// Get retrieves a live value by key. An expired entry is evicted and reads
// as a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.expired(n) {
		c.remove(n)
		delete(c.items, key)
		var zero V
		return zero, false
	}

	c.moveToFront(n)
	return n.val, true
}

// Put inserts or refreshes a key with the default TTL.
func (c *Cache[K, V]) Put(key K, val V) {
	c.PutTTL(key, val, c.ttl)
}

// PutTTL inserts or refreshes a key with an explicit TTL. The least
// recently used entry is evicted when at capacity.
func (c *Cache[K, V]) PutTTL(key K, val V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var deadline time.Time
	if ttl > 0 {
		deadline = c.now().Add(ttl)
	}

	if n, ok := c.items[key]; ok {
		n.val = val
		n.deadline = deadline
		c.moveToFront(n)
		return
	}

	if len(c.items) >= c.capacity {
		victim := c.tail.prev
		c.remove(victim)
		delete(c.items, victim.key)
	}

	n := &node[K, V]{key: key, val: val, deadline: deadline}
	c.items[key] = n
	c.pushFront(n)
}

// Delete removes a key. Returns true if the key existed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	if !ok {
		return false
	}
	c.remove(n)
	delete(c.items, key)
	return true
}

// Len returns the number of entries, including any not-yet-evicted
// expired ones.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Purge removes all expired entries and reports how many were dropped.
func (c *Cache[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for cur := c.head.next; cur != c.tail; {
		next := cur.next
		if c.expired(cur) {
			c.remove(cur)
			delete(c.items, cur.key)
			dropped++
		}
		cur = next
	}
	return dropped
}

func (c *Cache[K, V]) expired(n *node[K, V]) bool {
	return !n.deadline.IsZero() && c.now().After(n.deadline)
}

// --- linked list operations (caller must hold lock) ---

func (c *Cache[K, V]) remove(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = nil
	n.next = nil
}

func (c *Cache[K, V]) pushFront(n *node[K, V]) {
	n.next = c.head.next
	n.prev = c.head
	c.head.next.prev = n
	c.head.next = n
}

func (c *Cache[K, V]) moveToFront(n *node[K, V]) {
	c.remove(n)
	c.pushFront(n)
}
