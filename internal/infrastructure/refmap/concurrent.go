package refmap

import (
	"math/bits"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/domain/entity"
	"github.com/bnema/retain/internal/infrastructure/hashing"
)

const (
	defaultConcurrency = 16
	maxSegments        = 1 << 16
)

type segment[K, V any] struct {
	mu    sync.RWMutex
	table table[K, V]
}

// snapshot copies the live entries of the segment under its read lock.
func (seg *segment[K, V]) snapshot(buf []snapshotEntry[K, V]) []snapshotEntry[K, V] {
	seg.mu.RLock()
	defer seg.mu.RUnlock()

	for s := range seg.table.slots() {
		if k, v, ok := s.entry(); ok {
			buf = append(buf, snapshotEntry[K, V]{slot: s, gen: s.gen, key: k, value: v})
		}
	}
	return buf
}

func (seg *segment[K, V]) count() int {
	seg.mu.RLock()
	defer seg.mu.RUnlock()
	return seg.table.count
}

// ConcurrentMap is the thread-safe counterpart of Map. Keys are spread over
// lock segments selected by the high bits of the spread hash; each segment
// owns its own bucket table. All segments share one notification queue.
type ConcurrentMap[K, V any] struct {
	keyRetention   entity.Retention
	valueRetention entity.Retention
	strategy       port.HashingStrategy[K]
	valueEqual     func(a, b V) bool

	segments []segment[K, V]
	shift    uint
	queue    *refQueue[K, V]
	soft     *SoftRegistry
	log      zerolog.Logger
}

var _ port.ReferenceMap[string, string] = (*ConcurrentMap[string, string])(nil)

// NewConcurrent creates a ConcurrentMap. It validates its arguments exactly
// like New.
func NewConcurrent[K, V any](keyRetention, valueRetention entity.Retention, strategy port.HashingStrategy[K], opts ...Option) (*ConcurrentMap[K, V], error) {
	cfg, err := newConfig[K, V]("concurrent_refmap", keyRetention, valueRetention, strategy == nil, opts)
	if err != nil {
		return nil, err
	}

	n := min(tableSizeFor(cfg.concurrency), maxSegments)
	perSegment := max((cfg.initialCapacity+n-1)/n, 2)

	m := &ConcurrentMap[K, V]{
		keyRetention:   keyRetention,
		valueRetention: valueRetention,
		strategy:       strategy,
		valueEqual:     cfg.valueEqual,
		segments:       make([]segment[K, V], n),
		shift:          uint(64 - bits.TrailingZeros(uint(n))),
		queue:          newRefQueue[K, V](),
		soft:           cfg.soft,
		log:            cfg.logger,
	}
	for i := range m.segments {
		m.segments[i].table = newTable[K, V](perSegment)
	}
	return m, nil
}

// Segments returns the number of lock segments.
func (m *ConcurrentMap[K, V]) Segments() int { return len(m.segments) }

// SoftRegistry returns the registry anchoring soft referents, or nil when no
// side is soft.
func (m *ConcurrentMap[K, V]) SoftRegistry() *SoftRegistry { return m.soft }

func (m *ConcurrentMap[K, V]) segmentFor(hash uint64) *segment[K, V] {
	return &m.segments[hashing.Spread(hash)>>m.shift]
}

// Put maps key to value and returns the value it replaced, if any.
func (m *ConcurrentMap[K, V]) Put(key K, value V) (V, bool) {
	return m.put(key, value, false)
}

// PutIfAbsent stores value only if no live entry exists for key. It returns
// the existing value and true when nothing was stored.
func (m *ConcurrentMap[K, V]) PutIfAbsent(key K, value V) (V, bool) {
	return m.put(key, value, true)
}

func (m *ConcurrentMap[K, V]) put(key K, value V, onlyIfAbsent bool) (V, bool) {
	m.purge()

	hash := m.strategy.Hash(key)
	seg := m.segmentFor(hash)
	seg.mu.Lock()
	defer seg.mu.Unlock()

	if s := seg.table.find(hash, key, m.strategy); s != nil {
		old, live := s.value.get()
		if live && onlyIfAbsent {
			return old, true
		}
		s.value.release(m.soft)
		s.value = makeHandle(m.valueRetention, value, s, m.queue, m.soft)
		s.gen++
		return old, live
	}

	s := &slot[K, V]{hash: hash}
	s.key = makeHandle(m.keyRetention, key, s, m.queue, m.soft)
	s.value = makeHandle(m.valueRetention, value, s, m.queue, m.soft)
	seg.table.insert(s)

	var zero V
	return zero, false
}

// Get returns the value mapped to key.
func (m *ConcurrentMap[K, V]) Get(key K) (V, bool) {
	var zero V

	hash := m.strategy.Hash(key)
	seg := m.segmentFor(hash)
	seg.mu.RLock()
	defer seg.mu.RUnlock()

	s := seg.table.find(hash, key, m.strategy)
	if s == nil {
		return zero, false
	}
	v, ok := s.value.get()
	if !ok || !s.linked || s.hash != hash {
		return zero, false
	}
	s.touch(m.soft)
	return v, true
}

// ContainsKey reports whether a live entry exists for key.
func (m *ConcurrentMap[K, V]) ContainsKey(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// ContainsValue reports whether some live entry maps to a value equal to v.
// The answer is weakly consistent.
func (m *ConcurrentMap[K, V]) ContainsValue(v V) bool {
	it := m.Iterator()
	for it.Next() {
		if m.valueEqual(it.Value(), v) {
			return true
		}
	}
	return false
}

// Remove deletes the mapping for key and returns its value.
func (m *ConcurrentMap[K, V]) Remove(key K) (V, bool) {
	m.purge()

	var zero V
	hash := m.strategy.Hash(key)
	seg := m.segmentFor(hash)
	seg.mu.Lock()
	defer seg.mu.Unlock()

	s := seg.table.find(hash, key, m.strategy)
	if s == nil {
		return zero, false
	}
	v, ok := s.value.get()
	seg.table.unlink(s)
	s.release(m.soft)
	return v, ok
}

// removeSnapshot unlinks the slot behind e only if it still holds the value
// e was copied with.
func (m *ConcurrentMap[K, V]) removeSnapshot(e snapshotEntry[K, V]) bool {
	seg := m.segmentFor(e.slot.hash)
	seg.mu.Lock()
	defer seg.mu.Unlock()

	if e.slot.gen != e.gen || !seg.table.unlink(e.slot) {
		return false
	}
	e.slot.release(m.soft)
	return true
}

func (m *ConcurrentMap[K, V]) removeValue(v V) bool {
	var buf []snapshotEntry[K, V]
	for i := range m.segments {
		buf = m.segments[i].snapshot(buf[:0])
		for _, e := range buf {
			if m.valueEqual(e.value, v) && m.removeSnapshot(e) {
				return true
			}
		}
	}
	return false
}

func (m *ConcurrentMap[K, V]) removeEntry(key K, value V) bool {
	hash := m.strategy.Hash(key)
	seg := m.segmentFor(hash)
	seg.mu.Lock()
	defer seg.mu.Unlock()

	s := seg.table.find(hash, key, m.strategy)
	if s == nil {
		return false
	}
	if v, ok := s.value.get(); !ok || !m.valueEqual(v, value) {
		return false
	}
	seg.table.unlink(s)
	s.release(m.soft)
	return true
}

func (m *ConcurrentMap[K, V]) equalValues(a, b V) bool {
	return m.valueEqual(a, b)
}

// Clear removes every mapping. Entries added concurrently may survive.
func (m *ConcurrentMap[K, V]) Clear() {
	removed := 0
	for i := range m.segments {
		seg := &m.segments[i]
		seg.mu.Lock()
		removed += seg.table.clear(m.soft)
		seg.mu.Unlock()
	}
	m.queue.drain()
	m.log.Debug().Int("removed", removed).Msg("cleared")
}

// Range calls fn for every live entry until fn returns false. fn may modify
// the map.
func (m *ConcurrentMap[K, V]) Range(fn func(key K, value V) bool) {
	it := m.Iterator()
	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			return
		}
	}
}

// Len purges collected slots and returns the sum of the segment counts.
func (m *ConcurrentMap[K, V]) Len() int {
	m.purge()
	return m.RawSlotCount()
}

// IsEmpty reports whether Len is zero.
func (m *ConcurrentMap[K, V]) IsEmpty() bool {
	return m.Len() == 0
}

// Purge unlinks every slot the collector has reported and returns true if
// there was nothing pending. Concurrent callers split the pending work.
func (m *ConcurrentMap[K, V]) Purge() bool {
	return m.purge() == 0
}

func (m *ConcurrentMap[K, V]) purge() int {
	pending := m.queue.drain()
	if len(pending) == 0 {
		return 0
	}
	unlinked := 0
	for _, s := range pending {
		seg := m.segmentFor(s.hash)
		seg.mu.Lock()
		if s.linked && s.dead() && seg.table.unlink(s) {
			s.release(m.soft)
			unlinked++
		}
		seg.mu.Unlock()
	}
	m.log.Debug().
		Int("notifications", len(pending)).
		Int("unlinked", unlinked).
		Msg("purged collected entries")
	return len(pending)
}

// RawSlotCount returns the number of physical slots across all segments.
func (m *ConcurrentMap[K, V]) RawSlotCount() int {
	n := 0
	for i := range m.segments {
		n += m.segments[i].count()
	}
	return n
}

// Iterator returns a weakly consistent iterator. It never fails: each segment
// is copied under its read lock when the iterator reaches it, and entries
// added or removed afterwards may or may not be observed.
func (m *ConcurrentMap[K, V]) Iterator() Iterator[K, V] {
	return &concurrentIterator[K, V]{m: m}
}

// Keys returns a view of the map's keys.
func (m *ConcurrentMap[K, V]) Keys() KeyView[K, V] { return KeyView[K, V]{src: m} }

// Values returns a view of the map's values.
func (m *ConcurrentMap[K, V]) Values() ValueView[K, V] { return ValueView[K, V]{src: m} }

// Entries returns a view of the map's entries.
func (m *ConcurrentMap[K, V]) Entries() EntryView[K, V] { return EntryView[K, V]{src: m} }

type snapshotEntry[K, V any] struct {
	slot  *slot[K, V]
	gen   uint64
	key   K
	value V
}

type concurrentIterator[K, V any] struct {
	m       *ConcurrentMap[K, V]
	segment int
	buf     []snapshotEntry[K, V]
	pos     int
	current snapshotEntry[K, V]
}

func (it *concurrentIterator[K, V]) Next() bool {
	for it.pos >= len(it.buf) {
		if it.segment >= len(it.m.segments) {
			it.current = snapshotEntry[K, V]{}
			return false
		}
		clear(it.buf)
		it.buf = it.m.segments[it.segment].snapshot(it.buf[:0])
		it.segment++
		it.pos = 0
	}
	it.current = it.buf[it.pos]
	it.pos++
	return true
}

func (it *concurrentIterator[K, V]) Key() K   { return it.current.key }
func (it *concurrentIterator[K, V]) Value() V { return it.current.value }

func (it *concurrentIterator[K, V]) Entry() Entry[K, V] {
	return Entry[K, V]{Key: it.current.key, Value: it.current.value}
}

// Remove unlinks the current entry if its slot still holds the value the
// iterator saw. It is a no-op when the entry was removed or its value was
// replaced since Next.
func (it *concurrentIterator[K, V]) Remove() error {
	if it.current.slot == nil {
		return entity.ErrNoCurrentEntry
	}
	it.m.removeSnapshot(it.current)
	it.current.slot = nil
	return nil
}

func (it *concurrentIterator[K, V]) Err() error { return nil }
