// Package cache provides fixed-capacity caches with deterministic eviction.
package cache

import (
	"fmt"
	"iter"

	"github.com/rs/zerolog"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/domain/entity"
	"github.com/bnema/retain/internal/infrastructure/hashing"
)

// BoundedCache retains at most Capacity distinct keys. Inserting a new key
// into a full cache evicts the entry that was inserted first, and every
// registered listener sees the evicted pair before Put returns.
//
// Updating an existing key replaces its value in place and keeps its position
// in the eviction order; Get never changes the order either.
//
// BoundedCache is not safe for concurrent use.
type BoundedCache[K, V any] struct {
	capacity  int
	strategy  port.HashingStrategy[K]
	buckets   map[uint64]*entry[K, V]
	queue     evictionQueue[K, V]
	listeners listenerRegistry[K, V]
	stats     Stats
	log       zerolog.Logger
}

var _ port.ObservableCache[string, int] = (*BoundedCache[string, int])(nil)

// NewBounded creates a cache holding at most capacity keys, compared with
// strategy. It returns entity.ErrInvalidCapacity if capacity <= 0.
func NewBounded[K, V any](capacity int, strategy port.HashingStrategy[K], opts ...Option) (*BoundedCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("bounded cache: %w (got %d)", entity.ErrInvalidCapacity, capacity)
	}
	if strategy == nil {
		return nil, fmt.Errorf("bounded cache: %w: nil hashing strategy", entity.ErrUnsupportedConfiguration)
	}
	o := buildOptions(opts)
	c := &BoundedCache[K, V]{
		capacity: capacity,
		strategy: strategy,
		buckets:  make(map[uint64]*entry[K, V], capacity),
		log:      o.logger,
	}
	c.queue.init()
	return c, nil
}

// NewBoundedComparable creates a bounded cache using natural equality.
func NewBoundedComparable[K comparable, V any](capacity int, opts ...Option) (*BoundedCache[K, V], error) {
	return NewBounded[K, V](capacity, hashing.Natural[K](), opts...)
}

// Capacity returns the maximum number of keys.
func (c *BoundedCache[K, V]) Capacity() int {
	return c.capacity
}

// Len returns the number of entries in the cache.
func (c *BoundedCache[K, V]) Len() int {
	return c.queue.Len()
}

func (c *BoundedCache[K, V]) find(key K, hash uint64) *entry[K, V] {
	for e := c.buckets[hash]; e != nil; e = e.chain {
		if c.strategy.Equal(e.key, key) {
			return e
		}
	}
	return nil
}

// Get returns the value cached for key. It does not affect eviction order.
func (c *BoundedCache[K, V]) Get(key K) (V, bool) {
	e := c.find(key, c.strategy.Hash(key))
	if e == nil {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	return e.value, true
}

// Contains reports whether key is cached without touching statistics.
func (c *BoundedCache[K, V]) Contains(key K) bool {
	return c.find(key, c.strategy.Hash(key)) != nil
}

// Put inserts or updates key. Inserting a new key into a full cache evicts the
// oldest entry first.
func (c *BoundedCache[K, V]) Put(key K, value V) {
	hash := c.strategy.Hash(key)
	if e := c.find(key, hash); e != nil {
		e.value = value
		c.stats.Updates++
		return
	}

	e := &entry[K, V]{key: key, value: value, hash: hash}
	e.chain = c.buckets[hash]
	c.buckets[hash] = e
	c.queue.pushBack(e)
	c.stats.Inserts++

	// At most one key was added, so at most one eviction restores the bound.
	if c.queue.Len() > c.capacity {
		c.evictOldest()
	}
}

// Remove deletes key and returns the value it held. Removal is not an
// eviction and does not notify listeners.
func (c *BoundedCache[K, V]) Remove(key K) (V, bool) {
	hash := c.strategy.Hash(key)
	e := c.find(key, hash)
	if e == nil {
		var zero V
		return zero, false
	}
	c.unlink(e)
	return e.value, true
}

// Clear removes every entry without notifying listeners. Statistics are kept.
func (c *BoundedCache[K, V]) Clear() {
	clear(c.buckets)
	c.queue.init()
}

// Keys returns the cached keys from oldest to newest insertion.
func (c *BoundedCache[K, V]) Keys() []K {
	keys := make([]K, 0, c.queue.Len())
	for e := range c.queue.all() {
		keys = append(keys, e.key)
	}
	return keys
}

// Values lazily yields cached values from oldest to newest insertion. The
// sequence is only stable while the cache is not mutated.
func (c *BoundedCache[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for e := range c.queue.all() {
			if !yield(e.value) {
				return
			}
		}
	}
}

// All lazily yields key/value pairs from oldest to newest insertion.
func (c *BoundedCache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for e := range c.queue.all() {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// AddListener registers l for eviction notifications and returns a function
// that unregisters it.
func (c *BoundedCache[K, V]) AddListener(l port.EvictionListener[K, V]) (remove func()) {
	return c.listeners.add(l)
}

// RemoveListener unregisters l. It reports false for unknown listeners and for
// listeners whose dynamic type is not comparable (such as ListenerFunc); use
// the function returned by AddListener for those.
func (c *BoundedCache[K, V]) RemoveListener(l port.EvictionListener[K, V]) bool {
	return c.listeners.remove(l)
}

// Stats returns a snapshot of the cache statistics.
func (c *BoundedCache[K, V]) Stats() Stats {
	s := c.stats
	s.Len = c.queue.Len()
	s.Capacity = c.capacity
	return s
}

func (c *BoundedCache[K, V]) evictOldest() {
	victim := c.queue.oldest()
	if victim == nil {
		return
	}
	c.unlink(victim)
	c.stats.Evictions++
	c.log.Trace().Int("len", c.queue.Len()).Msg("evicted oldest entry")
	c.listeners.notify(victim.key, victim.value)
}

// unlink removes e from its bucket chain and the eviction queue.
func (c *BoundedCache[K, V]) unlink(e *entry[K, V]) {
	head := c.buckets[e.hash]
	if head == e {
		if e.chain == nil {
			delete(c.buckets, e.hash)
		} else {
			c.buckets[e.hash] = e.chain
		}
	} else {
		for prev := head; prev != nil; prev = prev.chain {
			if prev.chain == e {
				prev.chain = e.chain
				break
			}
		}
	}
	e.chain = nil
	c.queue.remove(e)
}
