// Package cache provides a fixed-capacity LRU cache for search results.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a bounded cache with least-recently-used eviction. Lookup
// promotes an entry to most-recently-used; insertion beyond capacity
// evicts the least-recently-used entry. Safe for concurrent use.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

type entry struct {
	key   string
	value interface{}
}

// NewLRU creates a cache holding at most capacity entries.
// A capacity below 1 is normalized to 1.
func NewLRU(capacity int) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns the cached value for key and promotes it to most recently
// used. The second return is false when the key is absent.
func (c *LRU) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

// Set inserts or updates the value for key as most recently used,
// evicting the least-recently-used entry if capacity is exceeded.
func (c *LRU) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, value: value})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

// Clear removes all entries.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the maximum number of entries the cache holds.
func (c *LRU) Capacity() int {
	return c.capacity
}
