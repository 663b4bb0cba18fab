package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/retain/internal/application/port/mocks"
	"github.com/bnema/retain/internal/domain/entity"
)

func TestNewBoundedInt_RejectsNonPositiveCapacity(t *testing.T) {
	_, err := NewBoundedInt[string](0)
	assert.ErrorIs(t, err, entity.ErrInvalidCapacity)
}

func TestBoundedIntCache_EvictsOldest(t *testing.T) {
	cache, err := NewBoundedInt[string](4)
	require.NoError(t, err)
	listener := mocks.NewMockEvictionListener[int, string](t)
	listener.EXPECT().EntryEvicted(0, "v0").Once()
	cache.AddListener(listener)

	for i, v := range []string{"v0", "v1", "v2", "v3", "v4"} {
		cache.Put(i, v)
	}

	_, ok := cache.TryKey(0)
	assert.False(t, ok)
	for i := 1; i <= 4; i++ {
		_, ok := cache.TryKey(i)
		assert.True(t, ok, "key %d should be retrievable", i)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, cache.Keys())
}

func TestBoundedIntCache_NegativeKeys(t *testing.T) {
	cache, err := NewBoundedInt[int](8)
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		cache.Put(i, i*10)
		cache.Put(-i, -i*10)
	}

	assert.Equal(t, 8, cache.Len())
	for i := 1; i <= 4; i++ {
		v, ok := cache.TryKey(i)
		require.True(t, ok)
		assert.Equal(t, i*10, v)

		v, ok = cache.TryKey(-i)
		require.True(t, ok)
		assert.Equal(t, -i*10, v)
	}
}

func TestBoundedIntCache_UpdateAndRemove(t *testing.T) {
	cache, err := NewBoundedInt[string](2)
	require.NoError(t, err)

	cache.Put(1, "a")
	cache.Put(2, "b")
	cache.Put(1, "A")
	assert.Equal(t, 2, cache.Len())
	v, _ := cache.TryKey(1)
	assert.Equal(t, "A", v)

	cache.Put(3, "c")
	assert.False(t, cache.Contains(1))

	v, ok := cache.Remove(2)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	var values []string
	for v := range cache.Values() {
		values = append(values, v)
	}
	assert.Equal(t, []string{"c"}, values)

	cache.Clear()
	assert.Zero(t, cache.Len())
	assert.Equal(t, uint64(1), cache.Stats().Evictions)
	assert.False(t, cache.RemoveListener(nil))
}
