package refmap

import (
	"iter"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/infrastructure/hashing"
)

const (
	defaultInitialCapacity = 16
	maximumCapacity        = 1 << 30
	loadFactorNum          = 3 // load factor 0.75
	loadFactorDen          = 4
)

// slot is one physical entry in a bucket chain. The key hash is cached at
// insertion so dead slots can still be located and unlinked after their key
// has been collected.
type slot[K, V any] struct {
	hash   uint64
	key    handle[K]
	value  handle[V]
	gen    uint64 // bumped when the value is replaced in place
	next   *slot[K, V]
	linked bool
}

// entry returns the dereferenced key and value, or false if either side has
// been collected.
func (s *slot[K, V]) entry() (K, V, bool) {
	var (
		zk K
		zv V
	)
	k, ok := s.key.get()
	if !ok {
		return zk, zv, false
	}
	v, ok := s.value.get()
	if !ok {
		return zk, zv, false
	}
	return k, v, true
}

func (s *slot[K, V]) dead() bool {
	return !s.key.live() || !s.value.live()
}

func (s *slot[K, V]) touch(soft *SoftRegistry) {
	s.key.touch(soft)
	s.value.touch(soft)
}

func (s *slot[K, V]) release(soft *SoftRegistry) {
	s.key.release(soft)
	s.value.release(soft)
}

// table is a chained hash table with a power-of-two bucket array. It does no
// locking; Map uses one table, ConcurrentMap one per segment.
type table[K, V any] struct {
	buckets   []*slot[K, V]
	count     int
	threshold int
}

func newTable[K, V any](capacity int) table[K, V] {
	n := tableSizeFor(capacity)
	return table[K, V]{
		buckets:   make([]*slot[K, V], n),
		threshold: n * loadFactorNum / loadFactorDen,
	}
}

func tableSizeFor(capacity int) int {
	n := 1
	for n < capacity && n < maximumCapacity {
		n <<= 1
	}
	return n
}

func (t *table[K, V]) indexFor(hash uint64) int {
	return int(hashing.Spread(hash) & uint64(len(t.buckets)-1))
}

// find returns the slot whose live key equals key under strategy.
// Slots with a collected key are skipped.
func (t *table[K, V]) find(hash uint64, key K, strategy port.HashingStrategy[K]) *slot[K, V] {
	for s := t.buckets[t.indexFor(hash)]; s != nil; s = s.next {
		if s.hash != hash {
			continue
		}
		k, ok := s.key.get()
		if ok && strategy.Equal(k, key) {
			return s
		}
	}
	return nil
}

func (t *table[K, V]) insert(s *slot[K, V]) {
	i := t.indexFor(s.hash)
	s.next = t.buckets[i]
	s.linked = true
	t.buckets[i] = s
	t.count++
	if t.count > t.threshold {
		t.resize()
	}
}

// unlink removes s by identity. It reports false if s was not in the table.
func (t *table[K, V]) unlink(s *slot[K, V]) bool {
	if !s.linked {
		return false
	}
	i := t.indexFor(s.hash)
	var prev *slot[K, V]
	for cur := t.buckets[i]; cur != nil; prev, cur = cur, cur.next {
		if cur != s {
			continue
		}
		if prev == nil {
			t.buckets[i] = cur.next
		} else {
			prev.next = cur.next
		}
		s.next = nil
		s.linked = false
		t.count--
		return true
	}
	return false
}

func (t *table[K, V]) resize() {
	if len(t.buckets) >= maximumCapacity {
		t.threshold = int(^uint(0) >> 1)
		return
	}
	old := t.buckets
	t.buckets = make([]*slot[K, V], len(old)*2)
	t.threshold = len(t.buckets) * loadFactorNum / loadFactorDen
	for _, head := range old {
		for s := head; s != nil; {
			next := s.next
			i := t.indexFor(s.hash)
			s.next = t.buckets[i]
			t.buckets[i] = s
			s = next
		}
	}
}

// slots yields every linked slot, live or dead. The next pointer is read
// before yielding so the caller may unlink the current slot.
func (t *table[K, V]) slots() iter.Seq[*slot[K, V]] {
	return func(yield func(*slot[K, V]) bool) {
		for _, head := range t.buckets {
			for s := head; s != nil; {
				next := s.next
				if !yield(s) {
					return
				}
				s = next
			}
		}
	}
}

// clear unlinks every slot and releases its handles.
func (t *table[K, V]) clear(soft *SoftRegistry) int {
	n := t.count
	for s := range t.slots() {
		s.release(soft)
		s.next = nil
		s.linked = false
	}
	clear(t.buckets)
	t.count = 0
	return n
}
