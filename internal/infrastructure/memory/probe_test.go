package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMeminfo = `MemTotal:       16318460 kB
MemFree:         1034452 kB
MemAvailable:    8123456 kB
Buffers:          412344 kB
Cached:          6012120 kB
`

func TestParseMeminfo(t *testing.T) {
	total, available, err := parseMeminfo(strings.NewReader(sampleMeminfo))
	require.NoError(t, err)
	assert.Equal(t, uint64(16318460*1024), total)
	assert.Equal(t, uint64(8123456*1024), available)
}

func TestParseMeminfo_FallsBackToMemFree(t *testing.T) {
	in := "MemTotal: 2048 kB\nMemFree: 512 kB\n"
	total, available, err := parseMeminfo(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, uint64(2048*1024), total)
	assert.Equal(t, uint64(512*1024), available)
}

func TestParseMeminfo_RequiresTotal(t *testing.T) {
	_, _, err := parseMeminfo(strings.NewReader("MemFree: 512 kB\n"))
	assert.Error(t, err)
}

func TestParseMeminfoLine(t *testing.T) {
	tests := []struct {
		line string
		want uint64
	}{
		{"MemTotal:       1 kB", 1024},
		{"MemTotal:", 0},
		{"MemTotal: lots kB", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseMeminfoLine(tt.line), tt.line)
	}
}

func TestProbe_ReadsMeminfoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meminfo")
	require.NoError(t, os.WriteFile(path, []byte(sampleMeminfo), 0o600))

	p := &Probe{meminfoPath: path}
	stats, err := p.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(16318460*1024), stats.TotalRAM)
	assert.Equal(t, uint64(8123456*1024), stats.AvailableRAM)
	assert.NotZero(t, stats.HeapGoal)
}

func TestProbe_FallsBackToSysinfo(t *testing.T) {
	p := &Probe{
		meminfoPath: filepath.Join(t.TempDir(), "missing"),
		sysinfo: func() (uint64, uint64, error) {
			return 4096, 1024, nil
		},
	}
	stats, err := p.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), stats.TotalRAM)
	assert.Equal(t, uint64(1024), stats.AvailableRAM)
	assert.InDelta(t, 0.25, stats.AvailableRatio(), 1e-9)
}

func TestProbe_UnknownHostMemoryIsNotAnError(t *testing.T) {
	p := &Probe{
		meminfoPath: filepath.Join(t.TempDir(), "missing"),
		sysinfo: func() (uint64, uint64, error) {
			return 0, 0, errors.New("unavailable")
		},
	}
	stats, err := p.Read(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalRAM)
	assert.Equal(t, 1.0, stats.AvailableRatio())
}

func TestProbe_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProbe().Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
