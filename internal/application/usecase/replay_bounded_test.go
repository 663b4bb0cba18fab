package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/retain/internal/application/port/mocks"
	"github.com/bnema/retain/internal/application/usecase"
	"github.com/bnema/retain/internal/infrastructure/cache"
	"github.com/bnema/retain/internal/infrastructure/hashing"
)

func parseOps(t *testing.T, args ...string) []usecase.BoundedOp {
	t.Helper()
	ops := make([]usecase.BoundedOp, 0, len(args))
	for _, a := range args {
		op, err := usecase.ParseBoundedOp(a)
		require.NoError(t, err)
		ops = append(ops, op)
	}
	return ops
}

func TestParseBoundedOp(t *testing.T) {
	tests := []struct {
		in      string
		want    usecase.BoundedOp
		wantErr bool
	}{
		{in: "a=1", want: usecase.BoundedOp{Kind: usecase.BoundedOpPut, Key: "a", Value: "1"}},
		{in: "a=", want: usecase.BoundedOp{Kind: usecase.BoundedOpPut, Key: "a"}},
		{in: "a=b=c", want: usecase.BoundedOp{Kind: usecase.BoundedOpPut, Key: "a", Value: "b=c"}},
		{in: "?a", want: usecase.BoundedOp{Kind: usecase.BoundedOpGet, Key: "a"}},
		{in: "-a", want: usecase.BoundedOp{Kind: usecase.BoundedOpRemove, Key: "a"}},
		{in: "a", wantErr: true},
		{in: "=1", wantErr: true},
		{in: "?", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := usecase.ParseBoundedOp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestReplayBoundedUseCase_Execute(t *testing.T) {
	t.Run("evicts oldest key on overflow", func(t *testing.T) {
		c, err := cache.NewBoundedComparable[string, string](2)
		require.NoError(t, err)
		uc := usecase.NewReplayBoundedUseCase(c)

		out, err := uc.Execute(context.Background(), usecase.ReplayBoundedInput{
			Ops: parseOps(t, "a=1", "b=2", "c=3", "?a", "?c"),
		})

		require.NoError(t, err)
		require.Len(t, out.Steps, 5)
		assert.Empty(t, out.Steps[0].Evicted)
		assert.Empty(t, out.Steps[1].Evicted)
		assert.Equal(t, []usecase.BoundedPair{{Key: "a", Value: "1"}}, out.Steps[2].Evicted)
		assert.False(t, out.Steps[3].Found)
		assert.True(t, out.Steps[4].Found)
		assert.Equal(t, "3", out.Steps[4].Value)
		assert.Equal(t, 1, out.Evictions)
		assert.Equal(t, []string{"b", "c"}, out.Keys)
	})

	t.Run("update keeps insertion order", func(t *testing.T) {
		c, err := cache.NewBoundedComparable[string, string](2)
		require.NoError(t, err)
		uc := usecase.NewReplayBoundedUseCase(c)

		out, err := uc.Execute(context.Background(), usecase.ReplayBoundedInput{
			Ops: parseOps(t, "a=1", "b=2", "a=9", "c=3"),
		})

		require.NoError(t, err)
		assert.Equal(t, []usecase.BoundedPair{{Key: "a", Value: "9"}}, out.Steps[3].Evicted)
		assert.Equal(t, []string{"b", "c"}, out.Keys)
	})

	t.Run("remove frees a slot", func(t *testing.T) {
		c, err := cache.NewBoundedComparable[string, string](2)
		require.NoError(t, err)
		uc := usecase.NewReplayBoundedUseCase(c)

		out, err := uc.Execute(context.Background(), usecase.ReplayBoundedInput{
			Ops: parseOps(t, "a=1", "b=2", "-a", "-a", "c=3"),
		})

		require.NoError(t, err)
		assert.True(t, out.Steps[2].Found)
		assert.Equal(t, "1", out.Steps[2].Value)
		assert.False(t, out.Steps[3].Found)
		assert.Zero(t, out.Evictions)
		assert.Equal(t, []string{"b", "c"}, out.Keys)
	})

	t.Run("case insensitive keys share a slot", func(t *testing.T) {
		c, err := cache.NewBounded[string, string](2, hashing.CaseInsensitive())
		require.NoError(t, err)
		uc := usecase.NewReplayBoundedUseCase(c)

		out, err := uc.Execute(context.Background(), usecase.ReplayBoundedInput{
			Ops: parseOps(t, "ab=1", "AB=2", "?aB"),
		})

		require.NoError(t, err)
		assert.True(t, out.Steps[2].Found)
		assert.Equal(t, "2", out.Steps[2].Value)
		assert.Equal(t, []string{"ab"}, out.Keys)
	})

	t.Run("listener is removed afterwards", func(t *testing.T) {
		c, err := cache.NewBoundedComparable[string, string](1)
		require.NoError(t, err)
		listener := mocks.NewMockEvictionListener[string, string](t)
		listener.EXPECT().EntryEvicted("a", "1").Return().Once()
		listener.EXPECT().EntryEvicted("b", "2").Return().Once()
		c.AddListener(listener)

		uc := usecase.NewReplayBoundedUseCase(c)
		_, err = uc.Execute(context.Background(), usecase.ReplayBoundedInput{
			Ops: parseOps(t, "a=1", "b=2"),
		})
		require.NoError(t, err)

		// The replay's own listener is gone; only the mock sees this one.
		c.Put("c", "3")
		assert.EqualValues(t, 2, c.Stats().Evictions)
	})

	t.Run("cancelled context stops the replay", func(t *testing.T) {
		c, err := cache.NewBoundedComparable[string, string](2)
		require.NoError(t, err)
		uc := usecase.NewReplayBoundedUseCase(c)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		out, err := uc.Execute(ctx, usecase.ReplayBoundedInput{Ops: parseOps(t, "a=1")})

		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, out)
		assert.Zero(t, c.Len())
	})
}
