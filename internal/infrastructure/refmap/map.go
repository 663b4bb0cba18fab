package refmap

import (
	"github.com/rs/zerolog"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/domain/entity"
)

// Map is a hash map whose keys and values are each held with a configurable
// retention. An entry is present only while every reclaimable side still has
// a live referent.
//
// Map is not safe for concurrent use; see ConcurrentMap.
type Map[K, V any] struct {
	keyRetention   entity.Retention
	valueRetention entity.Retention
	strategy       port.HashingStrategy[K]
	valueEqual     func(a, b V) bool

	table    table[K, V]
	queue    *refQueue[K, V]
	soft     *SoftRegistry
	modCount int
	log      zerolog.Logger
}

var _ port.ReferenceMap[string, string] = (*Map[string, string])(nil)

// New creates a Map. It fails with entity.ErrUnsupportedConfiguration if
// strategy is nil or a retention cannot be applied to its type parameter.
func New[K, V any](keyRetention, valueRetention entity.Retention, strategy port.HashingStrategy[K], opts ...Option) (*Map[K, V], error) {
	cfg, err := newConfig[K, V]("refmap", keyRetention, valueRetention, strategy == nil, opts)
	if err != nil {
		return nil, err
	}
	return &Map[K, V]{
		keyRetention:   keyRetention,
		valueRetention: valueRetention,
		strategy:       strategy,
		valueEqual:     cfg.valueEqual,
		table:          newTable[K, V](cfg.initialCapacity),
		queue:          newRefQueue[K, V](),
		soft:           cfg.soft,
		log:            cfg.logger,
	}, nil
}

// NewWeakKeyMap creates a map with weak keys and strong values.
func NewWeakKeyMap[K, V any](strategy port.HashingStrategy[K], opts ...Option) (*Map[K, V], error) {
	return New[K, V](entity.RetentionWeak, entity.RetentionStrong, strategy, opts...)
}

// NewWeakValueMap creates a map with strong keys and weak values.
func NewWeakValueMap[K, V any](strategy port.HashingStrategy[K], opts ...Option) (*Map[K, V], error) {
	return New[K, V](entity.RetentionStrong, entity.RetentionWeak, strategy, opts...)
}

// NewWeakKeyWeakValueMap creates a map with weak keys and weak values.
func NewWeakKeyWeakValueMap[K, V any](strategy port.HashingStrategy[K], opts ...Option) (*Map[K, V], error) {
	return New[K, V](entity.RetentionWeak, entity.RetentionWeak, strategy, opts...)
}

// NewSoftValueMap creates a map with strong keys and soft values.
func NewSoftValueMap[K, V any](strategy port.HashingStrategy[K], opts ...Option) (*Map[K, V], error) {
	return New[K, V](entity.RetentionStrong, entity.RetentionSoft, strategy, opts...)
}

// NewSoftKeySoftValueMap creates a map with soft keys and soft values.
func NewSoftKeySoftValueMap[K, V any](strategy port.HashingStrategy[K], opts ...Option) (*Map[K, V], error) {
	return New[K, V](entity.RetentionSoft, entity.RetentionSoft, strategy, opts...)
}

// KeyRetention returns how keys are held.
func (m *Map[K, V]) KeyRetention() entity.Retention { return m.keyRetention }

// ValueRetention returns how values are held.
func (m *Map[K, V]) ValueRetention() entity.Retention { return m.valueRetention }

// SoftRegistry returns the registry anchoring soft referents, or nil when no
// side is soft.
func (m *Map[K, V]) SoftRegistry() *SoftRegistry { return m.soft }

// Put maps key to value. If a live entry for key existed, its value is
// replaced in place and returned.
func (m *Map[K, V]) Put(key K, value V) (V, bool) {
	m.purge()

	hash := m.strategy.Hash(key)
	if s := m.table.find(hash, key, m.strategy); s != nil {
		old, live := s.value.get()
		s.value.release(m.soft)
		s.value = makeHandle(m.valueRetention, value, s, m.queue, m.soft)
		return old, live
	}

	s := &slot[K, V]{hash: hash}
	s.key = makeHandle(m.keyRetention, key, s, m.queue, m.soft)
	s.value = makeHandle(m.valueRetention, value, s, m.queue, m.soft)
	m.table.insert(s)
	m.modCount++

	var zero V
	return zero, false
}

// Get returns the value mapped to key. A collected key or value makes the
// entry absent even before it is purged.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.table.find(m.strategy.Hash(key), key, m.strategy)
	if s == nil {
		var zero V
		return zero, false
	}
	v, ok := s.value.get()
	if ok {
		s.touch(m.soft)
	}
	return v, ok
}

// ContainsKey reports whether a live entry exists for key.
func (m *Map[K, V]) ContainsKey(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// ContainsValue reports whether some live entry maps to a value equal to v.
func (m *Map[K, V]) ContainsValue(v V) bool {
	for s := range m.table.slots() {
		if _, val, ok := s.entry(); ok && m.valueEqual(val, v) {
			return true
		}
	}
	return false
}

// Remove deletes the mapping for key and returns its value.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	m.purge()

	s := m.table.find(m.strategy.Hash(key), key, m.strategy)
	if s == nil {
		var zero V
		return zero, false
	}
	v, ok := s.value.get()
	m.removeSlot(s)
	return v, ok
}

func (m *Map[K, V]) removeSlot(s *slot[K, V]) bool {
	if !m.table.unlink(s) {
		return false
	}
	s.release(m.soft)
	m.modCount++
	return true
}

func (m *Map[K, V]) removeValue(v V) bool {
	for s := range m.table.slots() {
		if _, val, ok := s.entry(); ok && m.valueEqual(val, v) {
			return m.removeSlot(s)
		}
	}
	return false
}

func (m *Map[K, V]) removeEntry(key K, value V) bool {
	s := m.table.find(m.strategy.Hash(key), key, m.strategy)
	if s == nil {
		return false
	}
	if v, ok := s.value.get(); !ok || !m.valueEqual(v, value) {
		return false
	}
	return m.removeSlot(s)
}

// Clear removes every mapping and discards pending notifications.
func (m *Map[K, V]) Clear() {
	n := m.table.clear(m.soft)
	m.queue.drain()
	m.modCount++
	m.log.Debug().Int("removed", n).Msg("cleared")
}

// Range calls fn for every live entry until fn returns false. fn must not
// modify the map; if it does, Range panics with
// entity.ErrConcurrentModification once the iterator notices.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	it := m.Iterator()
	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			return
		}
	}
	mustFinish(it)
}

// Len purges collected slots and returns the number of slots left.
// The count is exact only until the next collection cycle.
func (m *Map[K, V]) Len() int {
	m.purge()
	return m.table.count
}

// IsEmpty reports whether Len is zero.
func (m *Map[K, V]) IsEmpty() bool {
	return m.Len() == 0
}

// Purge unlinks every slot the collector has reported. It returns true if
// there was nothing pending, so a second call in a row returns true.
func (m *Map[K, V]) Purge() bool {
	return m.purge() == 0
}

// purge drains the queue and returns the number of notifications seen.
// A notification for a slot that was already unlinked, or whose value was
// replaced since, is ignored.
func (m *Map[K, V]) purge() int {
	pending := m.queue.drain()
	if len(pending) == 0 {
		return 0
	}
	unlinked := 0
	for _, s := range pending {
		if s.linked && s.dead() && m.removeSlot(s) {
			unlinked++
		}
	}
	m.log.Debug().
		Int("notifications", len(pending)).
		Int("unlinked", unlinked).
		Int("slots", m.table.count).
		Msg("purged collected entries")
	return len(pending)
}

// RawSlotCount returns the number of physical slots, including slots whose
// referents were collected but not yet purged.
func (m *Map[K, V]) RawSlotCount() int {
	return m.table.count
}

// Iterator returns a fail-fast iterator over the live entries.
func (m *Map[K, V]) Iterator() Iterator[K, V] {
	return &mapIterator[K, V]{m: m, expected: m.modCount}
}

// Keys returns a view of the map's keys.
func (m *Map[K, V]) Keys() KeyView[K, V] { return KeyView[K, V]{src: m} }

// Values returns a view of the map's values.
func (m *Map[K, V]) Values() ValueView[K, V] { return ValueView[K, V]{src: m} }

// Entries returns a view of the map's entries.
func (m *Map[K, V]) Entries() EntryView[K, V] { return EntryView[K, V]{src: m} }

func (m *Map[K, V]) equalValues(a, b V) bool {
	return m.valueEqual(a, b)
}
