package cache

import (
	"reflect"
	"slices"

	"github.com/bnema/retain/internal/application/port"
)

type registeredListener[K, V any] struct {
	id       uint64
	listener port.EvictionListener[K, V]
}

// listenerRegistry is an ordered set of eviction listeners. Notification order
// is registration order.
type listenerRegistry[K, V any] struct {
	listeners []registeredListener[K, V]
	nextID    uint64
}

// add registers l and returns a function that unregisters exactly this
// registration. Adding a comparable listener that is already registered is a
// no-op whose returned function still removes it.
func (r *listenerRegistry[K, V]) add(l port.EvictionListener[K, V]) func() {
	if l == nil {
		return func() {}
	}
	if idx := r.indexOf(l); idx >= 0 {
		id := r.listeners[idx].id
		return func() { r.removeID(id) }
	}

	r.nextID++
	id := r.nextID
	r.listeners = append(r.listeners, registeredListener[K, V]{id: id, listener: l})
	return func() { r.removeID(id) }
}

// remove unregisters l. Only listeners of comparable dynamic type can be
// matched; function adapters must use the func returned by add instead.
func (r *listenerRegistry[K, V]) remove(l port.EvictionListener[K, V]) bool {
	idx := r.indexOf(l)
	if idx < 0 {
		return false
	}
	r.listeners = slices.Delete(r.listeners, idx, idx+1)
	return true
}

func (r *listenerRegistry[K, V]) removeID(id uint64) {
	r.listeners = slices.DeleteFunc(r.listeners, func(rl registeredListener[K, V]) bool {
		return rl.id == id
	})
}

func (r *listenerRegistry[K, V]) indexOf(l port.EvictionListener[K, V]) int {
	if !comparableListener(l) {
		return -1
	}
	for i, rl := range r.listeners {
		if comparableListener(rl.listener) && rl.listener == l {
			return i
		}
	}
	return -1
}

// comparableListener reports whether l can be compared with == without
// panicking. The check looks at the dynamic contents, so a struct whose
// interface field holds a func is not comparable.
func comparableListener[K, V any](l port.EvictionListener[K, V]) bool {
	return l != nil && reflect.ValueOf(l).Comparable()
}

func (r *listenerRegistry[K, V]) len() int {
	return len(r.listeners)
}

// notify calls every listener with the evicted pair. It iterates over a
// snapshot so listeners may unregister themselves from inside the callback.
func (r *listenerRegistry[K, V]) notify(key K, value V) {
	if len(r.listeners) == 0 {
		return
	}
	for _, rl := range slices.Clone(r.listeners) {
		rl.listener.EntryEvicted(key, value)
	}
}
