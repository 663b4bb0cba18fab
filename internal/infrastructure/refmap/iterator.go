package refmap

import "github.com/bnema/retain/internal/domain/entity"

// Entry is a key/value pair yielded by iterators and the entry view.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// Iterator walks the live entries of a map. While an entry is current its key
// and value are held strongly by the iterator, so they cannot be collected
// between Next and the accessors.
//
//	it := m.Iterator()
//	for it.Next() {
//		use(it.Key(), it.Value())
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
type Iterator[K, V any] interface {
	// Next advances to the next live entry and reports whether there is one.
	Next() bool
	// Key returns the current key.
	Key() K
	// Value returns the current value.
	Value() V
	// Entry returns the current key and value.
	Entry() Entry[K, V]
	// Remove deletes the current entry from the underlying map.
	Remove() error
	// Err returns the error that stopped iteration, if any.
	Err() error
}

// mapIterator is the fail-fast iterator of Map.
type mapIterator[K, V any] struct {
	m        *Map[K, V]
	expected int

	bucket  int
	pending *slot[K, V]

	current *slot[K, V]
	key     K
	value   V
	err     error
}

func (it *mapIterator[K, V]) Next() bool {
	if it.err != nil {
		return false
	}
	if it.m.modCount != it.expected {
		it.err = entity.ErrConcurrentModification
		it.current = nil
		return false
	}

	buckets := it.m.table.buckets
	for {
		for it.pending == nil {
			if it.bucket >= len(buckets) {
				it.current = nil
				return false
			}
			it.pending = buckets[it.bucket]
			it.bucket++
		}
		s := it.pending
		it.pending = s.next
		if k, v, ok := s.entry(); ok {
			it.current = s
			it.key, it.value = k, v
			return true
		}
	}
}

func (it *mapIterator[K, V]) Key() K   { return it.key }
func (it *mapIterator[K, V]) Value() V { return it.value }

func (it *mapIterator[K, V]) Entry() Entry[K, V] {
	return Entry[K, V]{Key: it.key, Value: it.value}
}

func (it *mapIterator[K, V]) Remove() error {
	if it.err != nil {
		return it.err
	}
	if it.m.modCount != it.expected {
		it.err = entity.ErrConcurrentModification
		return it.err
	}
	if it.current == nil {
		return entity.ErrNoCurrentEntry
	}
	it.m.removeSlot(it.current)
	it.expected = it.m.modCount
	it.current = nil
	return nil
}

func (it *mapIterator[K, V]) Err() error { return it.err }

// mustFinish panics with the iterator's error once a range loop over it
// ends. Range and the All sequences have no error return, so a fail-fast
// iterator surfaces structural modification this way.
func mustFinish[K, V any](it Iterator[K, V]) {
	if err := it.Err(); err != nil {
		panic(err)
	}
}
