package refmap

import (
	"container/list"
	"math"
	"sync"
	"unsafe"

	"github.com/bnema/retain/internal/application/port"
)

// SoftRegistry keeps softly retained referents strongly reachable until it is
// told to shrink. Anchors are ordered by last touch; Shrink releases the least
// recently touched ones first.
//
// A registry may be shared by several maps and is safe for concurrent use.
type SoftRegistry struct {
	mu       sync.Mutex
	anchors  map[uint64]*list.Element
	order    *list.List // Front = least recently touched
	nextID   uint64
	released uint64
}

type anchor struct {
	id  uint64
	ref unsafe.Pointer
}

var _ port.SoftReleaser = (*SoftRegistry)(nil)

// NewSoftRegistry creates an empty registry.
func NewSoftRegistry() *SoftRegistry {
	return &SoftRegistry{
		anchors: make(map[uint64]*list.Element),
		order:   list.New(),
	}
}

// hold anchors p and returns the anchor id.
func (r *SoftRegistry) hold(p unsafe.Pointer) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.anchors[id] = r.order.PushBack(&anchor{id: id, ref: p})
	return id
}

// touch marks the anchor as recently used. Unknown ids are ignored: the
// anchor may already have been released by Shrink.
func (r *SoftRegistry) touch(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.anchors[id]; ok {
		r.order.MoveToBack(elem)
	}
}

// release drops a single anchor.
func (r *SoftRegistry) release(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.anchors[id]; ok {
		r.order.Remove(elem)
		delete(r.anchors, id)
	}
}

// Len returns the number of anchors currently held.
func (r *SoftRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.anchors)
}

// Released returns how many anchors Shrink and ReleaseAll have dropped in
// total.
func (r *SoftRegistry) Released() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Shrink releases ceil(fraction*Len) anchors, least recently touched first,
// and returns how many were released. Fractions outside (0, 1] are clamped.
func (r *SoftRegistry) Shrink(fraction float64) int {
	if fraction <= 0 || math.IsNaN(fraction) {
		return 0
	}
	if fraction > 1 {
		fraction = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := int(math.Ceil(fraction * float64(len(r.anchors))))
	released := 0
	for ; released < n; released++ {
		front := r.order.Front()
		if front == nil {
			break
		}
		r.order.Remove(front)
		delete(r.anchors, front.Value.(*anchor).id)
	}
	r.released += uint64(released)
	return released
}

// ReleaseAll drops every anchor and returns how many were held.
func (r *SoftRegistry) ReleaseAll() int {
	return r.Shrink(1)
}
