package refmap

import (
	"iter"

	"github.com/bnema/retain/internal/domain/entity"
)

// source is what a view needs from its backing map.
type source[K, V any] interface {
	Get(key K) (V, bool)
	ContainsKey(key K) bool
	ContainsValue(v V) bool
	Remove(key K) (V, bool)
	Len() int
	Clear()
	Iterator() Iterator[K, V]

	equalValues(a, b V) bool
	removeValue(v V) bool
	removeEntry(key K, value V) bool
}

var (
	_ source[string, string] = (*Map[string, string])(nil)
	_ source[string, string] = (*ConcurrentMap[string, string])(nil)
)

// KeyView is a live view of a map's keys. Removing from the view removes the
// mapping; adding is not supported.
type KeyView[K, V any] struct {
	src source[K, V]
}

func (v KeyView[K, V]) Len() int                 { return v.src.Len() }
func (v KeyView[K, V]) IsEmpty() bool            { return v.src.Len() == 0 }
func (v KeyView[K, V]) Contains(key K) bool      { return v.src.ContainsKey(key) }
func (v KeyView[K, V]) Clear()                   { v.src.Clear() }
func (v KeyView[K, V]) Iterator() Iterator[K, V] { return v.src.Iterator() }

// Remove deletes the mapping for key and reports whether one existed.
func (v KeyView[K, V]) Remove(key K) bool {
	_, ok := v.src.Remove(key)
	return ok
}

// Add always fails with entity.ErrUnsupportedOperation.
func (v KeyView[K, V]) Add(K) error {
	return entity.ErrUnsupportedOperation
}

// All yields the live keys. Over a Map, modifying the map during the loop
// other than through the view panics with entity.ErrConcurrentModification.
func (v KeyView[K, V]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		it := v.src.Iterator()
		for it.Next() {
			if !yield(it.Key()) {
				return
			}
		}
		mustFinish(it)
	}
}

// ValueView is a live view of a map's values. Values are compared with the
// map's value equality.
type ValueView[K, V any] struct {
	src source[K, V]
}

func (v ValueView[K, V]) Len() int                 { return v.src.Len() }
func (v ValueView[K, V]) IsEmpty() bool            { return v.src.Len() == 0 }
func (v ValueView[K, V]) Contains(value V) bool    { return v.src.ContainsValue(value) }
func (v ValueView[K, V]) Clear()                   { v.src.Clear() }
func (v ValueView[K, V]) Iterator() Iterator[K, V] { return v.src.Iterator() }

// Remove deletes one mapping whose value equals value.
func (v ValueView[K, V]) Remove(value V) bool {
	return v.src.removeValue(value)
}

// Add always fails with entity.ErrUnsupportedOperation.
func (v ValueView[K, V]) Add(V) error {
	return entity.ErrUnsupportedOperation
}

// All yields the live values.
func (v ValueView[K, V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		it := v.src.Iterator()
		for it.Next() {
			if !yield(it.Value()) {
				return
			}
		}
		mustFinish(it)
	}
}

// EntryView is a live view of a map's entries. An entry is contained when its
// key maps to an equal value.
type EntryView[K, V any] struct {
	src source[K, V]
}

func (v EntryView[K, V]) Len() int                 { return v.src.Len() }
func (v EntryView[K, V]) IsEmpty() bool            { return v.src.Len() == 0 }
func (v EntryView[K, V]) Clear()                   { v.src.Clear() }
func (v EntryView[K, V]) Iterator() Iterator[K, V] { return v.src.Iterator() }

func (v EntryView[K, V]) Contains(e Entry[K, V]) bool {
	val, ok := v.src.Get(e.Key)
	if !ok {
		return false
	}
	return v.src.equalValues(val, e.Value)
}

// Remove deletes the mapping if e.Key currently maps to e.Value.
func (v EntryView[K, V]) Remove(e Entry[K, V]) bool {
	return v.src.removeEntry(e.Key, e.Value)
}

// Add always fails with entity.ErrUnsupportedOperation.
func (v EntryView[K, V]) Add(Entry[K, V]) error {
	return entity.ErrUnsupportedOperation
}

// All yields the live entries.
func (v EntryView[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		it := v.src.Iterator()
		for it.Next() {
			if !yield(it.Key(), it.Value()) {
				return
			}
		}
		mustFinish(it)
	}
}
