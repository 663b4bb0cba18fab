package refmap

import (
	"runtime"
	"unsafe"
	"weak"

	"github.com/bnema/retain/internal/domain/entity"
)

// handle holds one side of an entry. Strong handles carry the value itself;
// weak and soft handles carry only a weak pointer, and soft handles also own
// an anchor in a SoftRegistry that keeps the referent reachable.
//
// The zero handle is a strong handle holding the zero value.
type handle[T any] struct {
	kind    entity.Retention
	strong  T
	ref     weak.Pointer[byte]
	softID  uint64
	cleanup runtime.Cleanup
	tracked bool
}

func strongHandle[T any](v T) handle[T] {
	return handle[T]{kind: entity.RetentionStrong, strong: v}
}

// makeHandle builds a handle for v with the requested retention. Reclaimable
// handles register a cleanup that posts s to q once the referent is
// collected. A nil pointer cannot be collected and is stored strongly.
func makeHandle[K, V, T any](kind entity.Retention, v T, s *slot[K, V], q *refQueue[K, V], soft *SoftRegistry) handle[T] {
	if !kind.IsReclaimable() {
		return strongHandle(v)
	}
	p := pointerOf(v)
	if p == nil {
		return strongHandle(v)
	}

	ptr := (*byte)(p)
	h := handle[T]{
		kind:    kind,
		ref:     weak.Make(ptr),
		cleanup: runtime.AddCleanup(ptr, notify[K, V], notice[K, V]{queue: q, slot: s}),
		tracked: true,
	}
	if kind == entity.RetentionSoft {
		h.softID = soft.hold(p)
	}
	return h
}

// get dereferences the handle. It reports false once the referent has been
// collected.
func (h *handle[T]) get() (T, bool) {
	if !h.kind.IsReclaimable() {
		return h.strong, true
	}
	p := h.ref.Value()
	if p == nil {
		var zero T
		return zero, false
	}
	return valueOf[T](unsafe.Pointer(p)), true
}

func (h *handle[T]) live() bool {
	return !h.kind.IsReclaimable() || h.ref.Value() != nil
}

// touch refreshes a soft anchor so memory pressure releases it last.
func (h *handle[T]) touch(soft *SoftRegistry) {
	if h.softID != 0 {
		soft.touch(h.softID)
	}
}

// release detaches the handle from the collector: the pending cleanup is
// cancelled and any soft anchor dropped. The weak pointer stays readable.
func (h *handle[T]) release(soft *SoftRegistry) {
	if h.tracked {
		h.cleanup.Stop()
		h.tracked = false
	}
	if h.softID != 0 {
		soft.release(h.softID)
		h.softID = 0
	}
	var zero T
	h.strong = zero
}

// pointerOf and valueOf reinterpret a pointer-shaped T. Callers must have
// checked the type with checkRetention.
func pointerOf[T any](v T) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&v))
}

func valueOf[T any](p unsafe.Pointer) T {
	return *(*T)(unsafe.Pointer(&p))
}
