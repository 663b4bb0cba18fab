package refmap

import "sync"

// refQueue receives slots whose weak or soft referent was collected.
// Enqueueing happens on the runtime's cleanup goroutine, draining on the map
// owner's goroutine, so the queue is always locked.
type refQueue[K, V any] struct {
	mu      sync.Mutex
	pending []*slot[K, V]
}

func newRefQueue[K, V any]() *refQueue[K, V] {
	return &refQueue[K, V]{}
}

func (q *refQueue[K, V]) enqueue(s *slot[K, V]) {
	q.mu.Lock()
	q.pending = append(q.pending, s)
	q.mu.Unlock()
}

// drain removes and returns every pending slot.
func (q *refQueue[K, V]) drain() []*slot[K, V] {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	pending := q.pending
	q.pending = nil
	return pending
}

func (q *refQueue[K, V]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// notice is the argument attached to a referent's cleanup. It must never
// point at the referent itself, otherwise the referent would stay reachable.
type notice[K, V any] struct {
	queue *refQueue[K, V]
	slot  *slot[K, V]
}

func notify[K, V any](n notice[K, V]) {
	n.queue.enqueue(n.slot)
}
