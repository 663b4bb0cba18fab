package cache

import "iter"

// entry is a cache slot. It is linked into two structures at once: a hash
// bucket chain (chain) and the eviction queue (prev/next).
type entry[K, V any] struct {
	key   K
	value V
	hash  uint64

	chain *entry[K, V]

	prev *entry[K, V]
	next *entry[K, V]
}

// evictionQueue is an intrusive doubly linked list of entries ordered by first
// insertion, oldest at the front. It uses a sentinel root so that link and
// unlink never branch on nil.
//
// The zero value is not valid and a queue must not be copied after init.
type evictionQueue[K, V any] struct {
	root entry[K, V]
	len  int
}

// init reinitializes the queue, making it empty.
func (q *evictionQueue[K, V]) init() {
	q.root.next = &q.root
	q.root.prev = &q.root
	q.len = 0
}

// Len returns the number of queued entries.
func (q *evictionQueue[K, V]) Len() int {
	return q.len
}

// pushBack appends e as the newest entry.
func (q *evictionQueue[K, V]) pushBack(e *entry[K, V]) {
	e.next = &q.root
	e.prev = q.root.prev
	q.root.prev.next = e
	q.root.prev = e
	q.len++
}

// remove unlinks e. e must currently be in q.
func (q *evictionQueue[K, V]) remove(e *entry[K, V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.next, e.prev = nil, nil
	q.len--
}

// oldest returns the least recently inserted entry, or nil if q is empty.
func (q *evictionQueue[K, V]) oldest() *entry[K, V] {
	e := q.root.next
	if e == &q.root {
		return nil
	}
	return e
}

// popOldest unlinks and returns the oldest entry, or nil if q is empty.
func (q *evictionQueue[K, V]) popOldest() *entry[K, V] {
	e := q.oldest()
	if e != nil {
		q.remove(e)
	}
	return e
}

// all yields entries from oldest to newest. The successor is read before
// yielding, so the yielded entry may be removed by the consumer.
func (q *evictionQueue[K, V]) all() iter.Seq[*entry[K, V]] {
	return func(yield func(*entry[K, V]) bool) {
		for e := q.root.next; e != &q.root; {
			next := e.next
			if !yield(e) {
				return
			}
			e = next
		}
	}
}
