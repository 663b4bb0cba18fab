package port

// HashingStrategy replaces built-in equality for map-like caches.
// Hash and Equal must be consistent: Equal(a, b) implies Hash(a) == Hash(b).
type HashingStrategy[K any] interface {
	Hash(key K) uint64
	Equal(a, b K) bool
}

// EvictionListener is notified synchronously when a bounded cache evicts a
// still-live entry to stay within its capacity.
type EvictionListener[K, V any] interface {
	EntryEvicted(key K, value V)
}

// ListenerFunc adapts a plain function to EvictionListener.
type ListenerFunc[K, V any] func(key K, value V)

// EntryEvicted calls f(key, value).
func (f ListenerFunc[K, V]) EntryEvicted(key K, value V) {
	f(key, value)
}

// Cache is a capacity-bounded key/value cache.
// Implementations are not required to be thread-safe.
type Cache[K, V any] interface {
	// Get retrieves a value by key. Returns the value and true if found,
	// or the zero value and false if not found.
	Get(key K) (V, bool)

	// Put stores a value for the given key. If the cache is at capacity,
	// the oldest entry is evicted and listeners are notified before Put returns.
	Put(key K, value V)

	// Remove deletes a key from the cache and returns the value it held.
	Remove(key K) (V, bool)

	// Len returns the number of items currently in the cache.
	Len() int
}

// ObservableCache is a Cache that reports evictions and exposes its
// insertion order.
type ObservableCache[K, V any] interface {
	Cache[K, V]

	// Keys returns the keys oldest first.
	Keys() []K

	// AddListener registers l and returns a function that unregisters it.
	AddListener(l EvictionListener[K, V]) (remove func())
}

// ReferenceMap is an associative map whose entries may vanish once the
// collector reclaims a weakly or softly held key or value.
type ReferenceMap[K, V any] interface {
	// Put stores the mapping and returns the value it replaced, if any.
	Put(key K, value V) (V, bool)

	// Get returns the value for key if the entry is still live.
	Get(key K) (V, bool)

	// ContainsKey reports whether a live entry exists for key.
	ContainsKey(key K) bool

	// Remove deletes the mapping for key and returns its value.
	Remove(key K) (V, bool)

	// Range calls fn for every live entry until fn returns false.
	Range(fn func(key K, value V) bool)

	// Len purges pending notifications and returns the live entry count.
	Len() int

	// IsEmpty reports whether Len would return zero.
	IsEmpty() bool

	// Clear removes every mapping.
	Clear()

	// Purge unlinks slots whose referents were collected. It returns true when
	// there was nothing to purge.
	Purge() bool

	// RawSlotCount returns the physical slot count, dead slots included.
	RawSlotCount() int
}
