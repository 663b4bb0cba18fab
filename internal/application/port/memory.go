package port

import "context"

//go:generate mockgen -source=memory.go -destination=mocks/mock_memory.go -package=mocks

// MemoryStats is a point-in-time reading of host and Go runtime memory.
// All values are in bytes; zero means the value could not be determined.
type MemoryStats struct {
	TotalRAM     uint64 // Total system RAM
	AvailableRAM uint64 // RAM the kernel reports as available
	HeapLive     uint64 // Bytes of live heap objects after the last GC
	HeapGoal     uint64 // Heap size target for the next GC cycle
	MemoryLimit  uint64 // Soft memory limit set via GOMEMLIMIT, 0 if unlimited
}

// AvailableRatio returns AvailableRAM/TotalRAM, or 1 when total is unknown.
func (s MemoryStats) AvailableRatio() float64 {
	if s.TotalRAM == 0 {
		return 1
	}
	return float64(s.AvailableRAM) / float64(s.TotalRAM)
}

// LimitRatio returns HeapLive/MemoryLimit, or 0 when no limit is set.
func (s MemoryStats) LimitRatio() float64 {
	if s.MemoryLimit == 0 {
		return 0
	}
	return float64(s.HeapLive) / float64(s.MemoryLimit)
}

// MemoryProbe reads current memory figures.
type MemoryProbe interface {
	Read(ctx context.Context) (MemoryStats, error)
}

// SoftReleaser drops strong anchors held for softly retained referents so the
// collector can reclaim them.
type SoftReleaser interface {
	// Shrink releases the given fraction (0..1] of anchors, least recently
	// touched first, and returns how many were released.
	Shrink(fraction float64) int

	// Len returns the number of anchors currently held.
	Len() int
}

// PressureMonitor watches memory in the background and shrinks the soft
// releasers registered with it. Add returns a function that unregisters r.
type PressureMonitor interface {
	Add(r SoftReleaser) (remove func())
	Run(ctx context.Context) error
}
