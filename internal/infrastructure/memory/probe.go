package memory

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"runtime/debug"
	"runtime/metrics"
	"strconv"
	"strings"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/logging"
)

const (
	// kibibyte is 1024 bytes (/proc/meminfo reports in kB which is actually KiB)
	kibibyte = 1024

	defaultMeminfoPath = "/proc/meminfo"

	metricHeapLive = "/gc/heap/live:bytes"
	metricHeapGoal = "/gc/heap/goal:bytes"
)

// Probe implements port.MemoryProbe. Host figures come from /proc/meminfo,
// falling back to sysinfo(2) where available; heap figures come from
// runtime/metrics.
type Probe struct {
	meminfoPath string
	sysinfo     func() (total, available uint64, err error)
}

var _ port.MemoryProbe = (*Probe)(nil)

// NewProbe creates a probe reading the host's /proc/meminfo.
func NewProbe() *Probe {
	return &Probe{
		meminfoPath: defaultMeminfoPath,
		sysinfo:     sysinfo,
	}
}

// Read returns the current memory figures. It only fails when ctx is done;
// figures that cannot be determined are left at zero.
func (p *Probe) Read(ctx context.Context) (port.MemoryStats, error) {
	if err := ctx.Err(); err != nil {
		return port.MemoryStats{}, err
	}
	log := logging.FromContext(ctx)

	var stats port.MemoryStats
	total, available, err := p.hostMemory()
	if err != nil {
		log.Debug().Err(err).Msg("cannot determine host memory")
	}
	stats.TotalRAM, stats.AvailableRAM = total, available
	stats.HeapLive, stats.HeapGoal = heapMetrics()
	stats.MemoryLimit = memoryLimit()

	log.Trace().
		Uint64("total_ram_mb", stats.TotalRAM/(1024*1024)).
		Uint64("available_ram_mb", stats.AvailableRAM/(1024*1024)).
		Uint64("heap_live_mb", stats.HeapLive/(1024*1024)).
		Msg("memory probe read")
	return stats, nil
}

func (p *Probe) hostMemory() (total, available uint64, err error) {
	file, err := os.Open(p.meminfoPath)
	if err == nil {
		defer func() { _ = file.Close() }()
		total, available, err = parseMeminfo(file)
		if err == nil && total > 0 {
			return total, available, nil
		}
	}
	if p.sysinfo == nil {
		return 0, 0, err
	}
	return p.sysinfo()
}

// parseMeminfo reads MemTotal and MemAvailable. Kernels older than 3.14 lack
// MemAvailable; MemFree is used instead.
func parseMeminfo(r io.Reader) (total, available uint64, err error) {
	var free uint64
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			total = parseMeminfoLine(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			available = parseMeminfoLine(line)
		case strings.HasPrefix(line, "MemFree:"):
			free = parseMeminfoLine(line)
		}
		if total > 0 && available > 0 {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, fmt.Errorf("reading meminfo: %w", err)
	}
	if total == 0 {
		return 0, 0, fmt.Errorf("meminfo has no MemTotal line")
	}
	if available == 0 {
		available = free
	}
	return total, available, nil
}

// parseMeminfoLine extracts bytes from a /proc/meminfo line like "MemTotal: 12345 kB".
func parseMeminfoLine(line string) uint64 {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return 0
	}
	value, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0
	}
	return value * kibibyte
}

func heapMetrics() (live, goal uint64) {
	samples := []metrics.Sample{
		{Name: metricHeapLive},
		{Name: metricHeapGoal},
	}
	metrics.Read(samples)
	if samples[0].Value.Kind() == metrics.KindUint64 {
		live = samples[0].Value.Uint64()
	}
	if samples[1].Value.Kind() == metrics.KindUint64 {
		goal = samples[1].Value.Uint64()
	}
	return live, goal
}

// memoryLimit returns the GOMEMLIMIT soft limit, or 0 when unlimited.
func memoryLimit() uint64 {
	limit := debug.SetMemoryLimit(-1)
	if limit <= 0 || limit == math.MaxInt64 {
		return 0
	}
	return uint64(limit)
}
