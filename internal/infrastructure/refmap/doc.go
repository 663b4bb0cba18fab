// Package refmap provides hash maps whose keys and/or values can be held
// weakly or softly, so that entries disappear once the garbage collector
// reclaims what they refer to.
//
// # Retention
//
// Each side of an entry is held with one of three retention kinds:
//
//   - strong: an ordinary reference; the entry keeps the referent alive.
//   - weak: a weak.Pointer; the referent is reclaimed as soon as nothing else
//     references it.
//   - soft: a weak.Pointer plus a strong anchor kept in a SoftRegistry. The
//     referent survives until the registry is asked to shrink, typically by
//     the memory pressure monitor, after which it behaves like a weak one.
//
// Weak and soft sides require a pointer type parameter pointing to a
// non-zero-sized, heap-allocated object. Referents smaller than 16 bytes that
// contain no pointers may share an allocation with unrelated objects and can
// stay alive longer than expected.
//
// # Purging
//
// A referent that has been collected makes its entry absent immediately, but
// the slot holding it is only unlinked when the map is purged. The runtime
// posts a notification to a queue owned by the map; mutating calls and Purge
// drain that queue on the caller's goroutine. RawSlotCount exposes the
// physical slot count so tests can observe both states:
//
//	runtime.GC()
//	for !m.Purge() {
//	}
//
// # Concurrency
//
// Map is not safe for concurrent use. ConcurrentMap stripes its buckets over
// independently locked segments and iterates with weakly consistent
// semantics.
package refmap
