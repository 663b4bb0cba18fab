package refmap

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/retain/internal/domain/entity"
	"github.com/bnema/retain/internal/infrastructure/hashing"
)

func TestNewConcurrent_RoundsSegmentsToPowerOfTwo(t *testing.T) {
	tests := []struct {
		concurrency int
		want        int
	}{
		{1, 1},
		{5, 8},
		{16, 16},
		{17, 32},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.concurrency), func(t *testing.T) {
			m, err := NewConcurrent[string, int](entity.RetentionStrong, entity.RetentionStrong,
				hashing.Natural[string](), WithConcurrency(tt.concurrency))
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Segments())

			for i := range 100 {
				m.Put(fmt.Sprint(i), i)
			}
			assert.Equal(t, 100, m.Len())
		})
	}
}

func TestConcurrentMap_BasicOperations(t *testing.T) {
	m, err := NewConcurrent[string, string](entity.RetentionStrong, entity.RetentionStrong, hashing.CaseInsensitive())
	require.NoError(t, err)

	m.Put("ab", "ab")
	assert.True(t, m.ContainsKey("AB"))
	assert.True(t, m.ContainsValue("ab"))

	existing, present := m.PutIfAbsent("AB", "other")
	assert.True(t, present)
	assert.Equal(t, "ab", existing)

	old, replaced := m.Put("Ab", "new")
	assert.True(t, replaced)
	assert.Equal(t, "ab", old)

	v, ok := m.Remove("aB")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
	assert.True(t, m.IsEmpty())
	assert.True(t, m.Purge())
}

func TestConcurrentMap_WeakKeysArePurged(t *testing.T) {
	m, err := NewConcurrent[*token, string](entity.RetentionWeak, entity.RetentionStrong, byName(), WithConcurrency(4))
	require.NoError(t, err)

	kept := tok("kept")
	m.Put(kept, "kept")
	for i := range 16 {
		putTransientKey(m, fmt.Sprint("gone-", i))
	}
	require.Equal(t, 17, m.RawSlotCount())

	collectUntil(t, func() bool { return !m.ContainsKey(tok("gone-0")) })
	collectUntil(t, func() bool {
		purgeAll(m)
		return m.RawSlotCount() == 1
	})
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.ContainsKey(kept))
	runtime.KeepAlive(kept)
}

func TestConcurrentMap_IteratorIsWeaklyConsistent(t *testing.T) {
	m, err := NewConcurrent[int, int](entity.RetentionStrong, entity.RetentionStrong, hashing.Natural[int](), WithConcurrency(4))
	require.NoError(t, err)
	for i := range 64 {
		m.Put(i, i)
	}

	it := m.Iterator()
	assert.ErrorIs(t, it.Remove(), entity.ErrNoCurrentEntry)

	seen := 0
	for it.Next() {
		seen++
		m.Put(1000+it.Key(), 0)
		if it.Key()%2 == 1 {
			require.NoError(t, it.Remove())
		}
		m.Remove(it.Key())
	}
	assert.NoError(t, it.Err())
	assert.GreaterOrEqual(t, seen, 64)

	for i := range 64 {
		assert.False(t, m.ContainsKey(i))
	}
}

func TestConcurrentMap_IteratorRemoveKeepsReplacedValue(t *testing.T) {
	m, err := NewConcurrent[string, string](entity.RetentionStrong, entity.RetentionStrong, hashing.Natural[string]())
	require.NoError(t, err)
	m.Put("a", "old")

	it := m.Iterator()
	require.True(t, it.Next())
	require.Equal(t, "old", it.Value())

	m.Put("a", "new")
	require.NoError(t, it.Remove())

	v, ok := m.Get("a")
	assert.True(t, ok, "the newer mapping survives")
	assert.Equal(t, "new", v)

	it = m.Iterator()
	require.True(t, it.Next())
	require.NoError(t, it.Remove())
	assert.False(t, m.ContainsKey("a"))
}

func TestConcurrentMap_ValueRemoveSkipsReplacedSlot(t *testing.T) {
	m, err := NewConcurrent[string, int](entity.RetentionStrong, entity.RetentionStrong, hashing.Natural[string]())
	require.NoError(t, err)
	m.Put("a", 1)
	m.Put("a", 2)

	assert.False(t, m.Values().Remove(1))
	assert.True(t, m.Values().Remove(2))
	assert.True(t, m.IsEmpty())
}

func TestConcurrentMap_LastCharacterStrategy(t *testing.T) {
	m, err := NewConcurrent[string, int](entity.RetentionStrong, entity.RetentionStrong, lastCharFold(), WithConcurrency(4))
	require.NoError(t, err)

	keys := []string{"ab", "cb", "db", "eB", "fb", "gb", "hb", "ib"}
	for i, k := range keys {
		m.Put(k, i)
	}
	prev, loaded := m.PutIfAbsent("AB", 100)
	assert.True(t, loaded)
	assert.Equal(t, 0, prev)
	assert.Equal(t, len(keys), m.Len())

	for i, k := range keys {
		v, ok := m.Get(strings.ToUpper(k))
		require.True(t, ok, k)
		assert.Equal(t, i, v)
	}
	assert.False(t, m.ContainsKey("zb"))

	v, ok := m.Remove("CB")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, len(keys)-1, m.RawSlotCount())
}

func TestConcurrentMap_Views(t *testing.T) {
	m, err := NewConcurrent[string, int](entity.RetentionStrong, entity.RetentionStrong, hashing.Natural[string]())
	require.NoError(t, err)
	m.Put("a", 1)
	m.Put("b", 2)
	m.Put("c", 2)

	assert.ErrorIs(t, m.Keys().Add("x"), entity.ErrUnsupportedOperation)
	assert.ErrorIs(t, m.Values().Add(3), entity.ErrUnsupportedOperation)

	assert.True(t, m.Values().Remove(2))
	assert.Equal(t, 2, m.Values().Len())
	assert.True(t, m.Values().Contains(2), "only one mapping is removed")

	assert.True(t, m.Entries().Remove(Entry[string, int]{Key: "a", Value: 1}))
	assert.False(t, m.Keys().Contains("a"))
	assert.Equal(t, 1, m.Keys().Len())

	m.Entries().Clear()
	assert.True(t, m.IsEmpty())
}

func TestConcurrentMap_ParallelWriters(t *testing.T) {
	m, err := NewConcurrent[string, int](entity.RetentionStrong, entity.RetentionStrong,
		hashing.Natural[string](), WithConcurrency(8))
	require.NoError(t, err)

	const (
		workers = 8
		perKey  = 500
	)
	g, _ := errgroup.WithContext(context.Background())
	for w := range workers {
		g.Go(func() error {
			for i := range perKey {
				key := fmt.Sprintf("w%d-%d", w, i)
				m.Put(key, i)
				if v, ok := m.Get(key); !ok || v != i {
					return fmt.Errorf("lost write for %s", key)
				}
				m.Put("shared", w)
				if i%3 == 0 {
					if _, ok := m.Remove(key); !ok {
						return fmt.Errorf("remove of %s found nothing", key)
					}
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for range perKey {
			m.Range(func(string, int) bool { return true })
			m.Purge()
		}
		return nil
	})
	require.NoError(t, g.Wait())

	removed := (perKey + 2) / 3
	assert.Equal(t, workers*(perKey-removed)+1, m.Len())
}

func TestConcurrentMap_ParallelCollection(t *testing.T) {
	m, err := NewConcurrent[*token, string](entity.RetentionWeak, entity.RetentionStrong, byName())
	require.NoError(t, err)

	var g errgroup.Group
	for w := range 4 {
		g.Go(func() error {
			for i := range 200 {
				putTransientKey(m, fmt.Sprintf("%d-%d", w, i))
				if i%50 == 0 {
					runtime.GC()
				}
			}
			return nil
		})
		g.Go(func() error {
			for range 200 {
				m.Purge()
				_ = m.Len()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	collectUntil(t, func() bool {
		purgeAll(m)
		return m.RawSlotCount() == 0
	})
	assert.True(t, m.IsEmpty())
}
