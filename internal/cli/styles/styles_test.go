package styles_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/application/usecase"
	"github.com/bnema/retain/internal/cli/styles"
	"github.com/bnema/retain/internal/domain/entity"
	"github.com/bnema/retain/internal/infrastructure/cache"
)

func TestCount(t *testing.T) {
	assert.Equal(t, "0", styles.Count(0))
	assert.Equal(t, "1,234,567", styles.Count(1234567))
	assert.Equal(t, "-12,000", styles.Count(-12000))
	assert.Equal(t, "42", styles.Count(uint64(42)))
}

func TestBytes(t *testing.T) {
	assert.Equal(t, "unknown", styles.Bytes(0))
	assert.Equal(t, "1.0 KiB", styles.Bytes(1024))
	assert.Equal(t, "2.0 GiB", styles.Bytes(2<<30))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "12.5%", styles.Percent(0.125))
	assert.Equal(t, "100.0%", styles.Percent(1))
}

func TestBoundedRenderer_Render(t *testing.T) {
	r := styles.NewBoundedRenderer(styles.NewTheme())
	out := &usecase.ReplayBoundedOutput{
		Steps: []usecase.BoundedStep{
			{Op: usecase.BoundedOp{Kind: usecase.BoundedOpPut, Key: "a", Value: "1"}},
			{
				Op:      usecase.BoundedOp{Kind: usecase.BoundedOpPut, Key: "b", Value: "2"},
				Evicted: []usecase.BoundedPair{{Key: "a", Value: "1"}},
			},
			{Op: usecase.BoundedOp{Kind: usecase.BoundedOpGet, Key: "a"}},
			{Op: usecase.BoundedOp{Kind: usecase.BoundedOpGet, Key: "b"}, Found: true, Value: "2"},
		},
		Evictions: 1,
		Keys:      []string{"b"},
	}

	rendered := r.Render(out, cache.Stats{Len: 1, Capacity: 1, Inserts: 2, Evictions: 1, Hits: 1, Misses: 1})

	assert.Contains(t, rendered, "a=1")
	assert.Contains(t, rendered, "evicted a=1")
	assert.Contains(t, rendered, "?a")
	assert.Contains(t, rendered, "miss")
	assert.Contains(t, rendered, "Evictions")
	assert.Contains(t, rendered, "50.0%")
}

func TestBoundedRenderer_RenderEmpty(t *testing.T) {
	r := styles.NewBoundedRenderer(styles.NewTheme())

	rendered := r.Render(&usecase.ReplayBoundedOutput{}, cache.Stats{Capacity: 4})

	assert.Contains(t, rendered, "no operations")
	assert.Contains(t, rendered, "(empty)")
}

func TestSoakRenderer_Render(t *testing.T) {
	r := styles.NewSoakRenderer(styles.NewTheme())
	out := &usecase.RunSoakOutput{
		Puts:          12000,
		Hits:          3,
		Misses:        1,
		Collections:   5,
		PeakRawSlots:  900,
		FinalRawSlots: 10,
		FinalLen:      10,
		SoftHeld:      10,
		Elapsed:       1500 * time.Millisecond,
		Interrupted:   true,
		Phases:        "soak=1s settle=5ms",
	}

	t.Run("soft values show anchors", func(t *testing.T) {
		rendered := r.Render(styles.SoakInfo{
			KeyRetention:   entity.RetentionWeak,
			ValueRetention: entity.RetentionSoft,
			Segments:       16,
			Monitored:      true,
			Released:       7,
		}, out)

		assert.Contains(t, rendered, "weak/soft")
		assert.Contains(t, rendered, "interrupted")
		assert.Contains(t, rendered, "monitored")
		assert.Contains(t, rendered, "12,000")
		assert.Contains(t, rendered, "75.0%")
		assert.Contains(t, rendered, "Soft anchors")
		assert.Contains(t, rendered, "Released")
		assert.Contains(t, rendered, "settle=5ms")
	})

	t.Run("strong map hides soft rows", func(t *testing.T) {
		rendered := r.Render(styles.SoakInfo{
			KeyRetention:   entity.RetentionStrong,
			ValueRetention: entity.RetentionStrong,
		}, out)

		assert.NotContains(t, rendered, "Soft anchors")
		assert.NotContains(t, rendered, "Released")
		assert.NotContains(t, rendered, "monitored")
	})
}

func TestMemoryRenderer_Render(t *testing.T) {
	r := styles.NewMemoryRenderer(styles.NewTheme())

	t.Run("no limit", func(t *testing.T) {
		rendered := r.Render(port.MemoryStats{TotalRAM: 8 << 30, AvailableRAM: 4 << 30, HeapLive: 1 << 20}, false)

		assert.Contains(t, rendered, "8.0 GiB")
		assert.Contains(t, rendered, "50.0%")
		assert.Contains(t, rendered, "unlimited")
		assert.Contains(t, rendered, "OK")
	})

	t.Run("limit and pressure", func(t *testing.T) {
		rendered := r.Render(port.MemoryStats{HeapLive: 512 << 20, MemoryLimit: 1 << 30}, true)

		assert.Contains(t, rendered, "1.0 GiB (50.0% used)")
		assert.Contains(t, rendered, "pressure")
		assert.Contains(t, rendered, "unknown")
	})
}

func TestConfigRenderer(t *testing.T) {
	r := styles.NewConfigRenderer(styles.NewTheme())

	assert.Contains(t, r.RenderConfigInfo(""), "using defaults")
	assert.Contains(t, r.RenderConfigInfo("/tmp/retain/config.toml"), "config.toml")

	settings := r.RenderSettings(map[string]any{
		"soak":    map[string]any{"workers": 4},
		"logging": map[string]any{"level": "info"},
	})
	lines := strings.Split(strings.TrimSpace(settings), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "logging.level")
	assert.Contains(t, lines[0], "info")
	assert.Contains(t, lines[1], "soak.workers")

	written := r.RenderWritten("/tmp/a/config.toml", "/tmp/a/config.schema.json")
	assert.Contains(t, written, "config.toml")
	assert.Contains(t, written, "config.schema.json")
	assert.Contains(t, r.RenderReloaded("/tmp/a/config.toml"), "reloaded")
}

func TestTheme_Failure(t *testing.T) {
	rendered := styles.NewTheme().Failure(errors.New("load config: boom"))
	assert.Contains(t, rendered, "load config: boom")
	assert.Contains(t, rendered, styles.IconX)
}
