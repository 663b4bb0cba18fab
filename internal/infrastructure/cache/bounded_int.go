package cache

import (
	"fmt"
	"iter"

	"github.com/rs/zerolog"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/domain/entity"
)

// BoundedIntCache is BoundedCache specialised for int keys, negative keys
// included. It indexes entries with a native map instead of a hashing
// strategy.
//
// BoundedIntCache is not safe for concurrent use.
type BoundedIntCache[V any] struct {
	capacity  int
	items     map[int]*entry[int, V]
	queue     evictionQueue[int, V]
	listeners listenerRegistry[int, V]
	stats     Stats
	log       zerolog.Logger
}

// NewBoundedInt creates an int-keyed cache holding at most capacity keys.
// It returns entity.ErrInvalidCapacity if capacity <= 0.
func NewBoundedInt[V any](capacity int, opts ...Option) (*BoundedIntCache[V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("bounded int cache: %w (got %d)", entity.ErrInvalidCapacity, capacity)
	}
	o := buildOptions(opts)
	c := &BoundedIntCache[V]{
		capacity: capacity,
		items:    make(map[int]*entry[int, V], capacity),
		log:      o.logger,
	}
	c.queue.init()
	return c, nil
}

// Capacity returns the maximum number of keys.
func (c *BoundedIntCache[V]) Capacity() int {
	return c.capacity
}

// Len returns the number of entries in the cache.
func (c *BoundedIntCache[V]) Len() int {
	return len(c.items)
}

// TryKey returns the value cached for key. It does not affect eviction order.
func (c *BoundedIntCache[V]) TryKey(key int) (V, bool) {
	e, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	return e.value, true
}

// Contains reports whether key is cached without touching statistics.
func (c *BoundedIntCache[V]) Contains(key int) bool {
	_, ok := c.items[key]
	return ok
}

// Put inserts or updates key. Inserting a new key into a full cache evicts the
// oldest entry first.
func (c *BoundedIntCache[V]) Put(key int, value V) {
	if e, ok := c.items[key]; ok {
		e.value = value
		c.stats.Updates++
		return
	}

	e := &entry[int, V]{key: key, value: value}
	c.items[key] = e
	c.queue.pushBack(e)
	c.stats.Inserts++

	if c.queue.Len() > c.capacity {
		victim := c.queue.popOldest()
		delete(c.items, victim.key)
		c.stats.Evictions++
		c.log.Trace().Int("key", victim.key).Msg("evicted oldest entry")
		c.listeners.notify(victim.key, victim.value)
	}
}

// Remove deletes key and returns the value it held without notifying listeners.
func (c *BoundedIntCache[V]) Remove(key int) (V, bool) {
	e, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(c.items, key)
	c.queue.remove(e)
	return e.value, true
}

// Clear removes every entry without notifying listeners.
func (c *BoundedIntCache[V]) Clear() {
	clear(c.items)
	c.queue.init()
}

// Keys returns the cached keys from oldest to newest insertion.
func (c *BoundedIntCache[V]) Keys() []int {
	keys := make([]int, 0, len(c.items))
	for e := range c.queue.all() {
		keys = append(keys, e.key)
	}
	return keys
}

// Values lazily yields cached values from oldest to newest insertion.
func (c *BoundedIntCache[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for e := range c.queue.all() {
			if !yield(e.value) {
				return
			}
		}
	}
}

// AddListener registers l for eviction notifications and returns a function
// that unregisters it.
func (c *BoundedIntCache[V]) AddListener(l port.EvictionListener[int, V]) (remove func()) {
	return c.listeners.add(l)
}

// RemoveListener unregisters a comparable listener.
func (c *BoundedIntCache[V]) RemoveListener(l port.EvictionListener[int, V]) bool {
	return c.listeners.remove(l)
}

// Stats returns a snapshot of the cache statistics.
func (c *BoundedIntCache[V]) Stats() Stats {
	s := c.stats
	s.Len = len(c.items)
	s.Capacity = c.capacity
	return s
}
