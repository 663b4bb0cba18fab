package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/logging"
)

// SoakObject is the key and value type written by soak workers. Keys are
// compared by ID so a fresh probe object finds a live entry.
type SoakObject struct {
	ID    int
	Round int

	// Payload gives each object some weight for the collector to reclaim.
	Payload [4]int64
}

// SoakHash hashes a soak key by ID.
func SoakHash(o *SoakObject) uint64 {
	if o == nil {
		return 0
	}
	return uint64(o.ID) * 0x9e3779b97f4a7c15
}

// SoakEqual compares soak keys by ID.
func SoakEqual(a, b *SoakObject) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// RunSoakInput configures one soak run.
type RunSoakInput struct {
	Workers    int
	Keys       int // keys written per worker and round
	Duration   time.Duration
	GCInterval time.Duration
	KeepRatio  float64 // fraction of written objects kept reachable until the next round
	Seed       uint64

	// Releaser, when set, is registered with the monitor.
	Releaser port.SoftReleaser

	// Progress, when set, is called from the collector goroutine after each
	// forced collection.
	Progress func(SoakProgress)
}

// SoakProgress is a live snapshot taken after a forced collection.
type SoakProgress struct {
	Elapsed     time.Duration
	Duration    time.Duration
	Puts        uint64
	Collections uint64
	RawSlots    int
}

// RunSoakOutput summarises a soak run.
type RunSoakOutput struct {
	Puts        uint64
	Hits        uint64
	Misses      uint64
	Removes     uint64
	Collections uint64

	PeakRawSlots  int
	FinalRawSlots int
	FinalLen      int
	SoftHeld      int

	Elapsed     time.Duration
	Interrupted bool
	Phases      string
}

// RunSoakUseCase hammers a reference map from several goroutines while
// forcing collections, then reports how many entries survived.
type RunSoakUseCase struct {
	refs    port.ReferenceMap[*SoakObject, *SoakObject]
	monitor port.PressureMonitor
}

// NewRunSoakUseCase creates a new RunSoakUseCase. monitor may be nil.
func NewRunSoakUseCase(refs port.ReferenceMap[*SoakObject, *SoakObject], monitor port.PressureMonitor) *RunSoakUseCase {
	return &RunSoakUseCase{refs: refs, monitor: monitor}
}

type soakCounters struct {
	puts, hits, misses, removes, collections atomic.Uint64

	mu      sync.Mutex
	peakRaw int
}

func (c *soakCounters) observeRaw(n int) {
	c.mu.Lock()
	if n > c.peakRaw {
		c.peakRaw = n
	}
	c.mu.Unlock()
}

func validateSoakInput(input RunSoakInput) error {
	var errs []error
	if input.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", input.Workers))
	}
	if input.Keys <= 0 {
		errs = append(errs, fmt.Errorf("keys must be positive, got %d", input.Keys))
	}
	if input.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be positive, got %s", input.Duration))
	}
	if input.GCInterval <= 0 {
		errs = append(errs, fmt.Errorf("gc interval must be positive, got %s", input.GCInterval))
	}
	if input.KeepRatio < 0 || input.KeepRatio > 1 {
		errs = append(errs, fmt.Errorf("keep ratio must be within [0,1], got %g", input.KeepRatio))
	}
	return errors.Join(errs...)
}

// Execute runs the soak until input.Duration elapses or ctx is cancelled.
// Cancelling ctx is not an error: the partial report has Interrupted set.
func (uc *RunSoakUseCase) Execute(ctx context.Context, input RunSoakInput) (*RunSoakOutput, error) {
	if err := validateSoakInput(input); err != nil {
		return nil, fmt.Errorf("invalid soak input: %w", err)
	}

	log := logging.FromContext(ctx)
	trace := logging.NewPhaseTrace(log)
	start := time.Now()

	if uc.monitor != nil && input.Releaser != nil {
		if remove := uc.monitor.Add(input.Releaser); remove != nil {
			defer remove()
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, input.Duration)
	defer cancel()

	var counters soakCounters
	g, gctx := errgroup.WithContext(runCtx)
	for w := range input.Workers {
		g.Go(func() error {
			uc.work(gctx, w, input, &counters)
			return nil
		})
	}
	g.Go(func() error {
		uc.collect(gctx, input, start, &counters)
		return nil
	})
	if uc.monitor != nil {
		g.Go(func() error {
			return uc.monitor.Run(gctx)
		})
	}

	log.Info().
		Int("workers", input.Workers).
		Int("keys", input.Keys).
		Dur("duration", input.Duration).
		Bool("monitor", uc.monitor != nil).
		Msg("soak started")

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("soak failed: %w", err)
	}
	trace.Mark("soak")

	// Worker state is gone; give the collector a chance to clear what the
	// workers stopped referencing, then purge.
	for range 2 {
		runtime.GC()
	}
	uc.refs.Purge()
	trace.Mark("settle")

	out := &RunSoakOutput{
		Puts:          counters.puts.Load(),
		Hits:          counters.hits.Load(),
		Misses:        counters.misses.Load(),
		Removes:       counters.removes.Load(),
		Collections:   counters.collections.Load(),
		FinalLen:      uc.refs.Len(),
		FinalRawSlots: uc.refs.RawSlotCount(),
		Elapsed:       time.Since(start),
		Interrupted:   ctx.Err() != nil,
		Phases:        trace.Summary(),
	}
	counters.observeRaw(out.FinalRawSlots)
	out.PeakRawSlots = counters.peakRaw
	if input.Releaser != nil {
		out.SoftHeld = input.Releaser.Len()
	}

	log.Info().
		Uint64("puts", out.Puts).
		Uint64("collections", out.Collections).
		Int("peak_raw", out.PeakRawSlots).
		Int("final_len", out.FinalLen).
		Bool("interrupted", out.Interrupted).
		Str("phases", out.Phases).
		Msg("soak finished")
	return out, nil
}

// work writes rounds of fresh objects. Objects kept in one round stay
// reachable until the next round starts.
func (uc *RunSoakUseCase) work(ctx context.Context, worker int, input RunSoakInput, c *soakCounters) {
	rng := rand.New(rand.NewPCG(input.Seed, uint64(worker)))
	base := worker * input.Keys
	var kept []*SoakObject

	for round := 0; ; round++ {
		clear(kept)
		kept = kept[:0]

		for i := range input.Keys {
			if i%256 == 0 && ctx.Err() != nil {
				return
			}

			key := &SoakObject{ID: base + i, Round: round}
			value := &SoakObject{ID: base + i, Round: round}
			uc.refs.Put(key, value)
			c.puts.Add(1)
			if rng.Float64() < input.KeepRatio {
				kept = append(kept, key, value)
			}

			probe := &SoakObject{ID: base + rng.IntN(input.Keys)}
			if _, ok := uc.refs.Get(probe); ok {
				c.hits.Add(1)
			} else {
				c.misses.Add(1)
			}

			if rng.IntN(64) == 0 {
				if _, ok := uc.refs.Remove(&SoakObject{ID: base + rng.IntN(input.Keys)}); ok {
					c.removes.Add(1)
				}
			}
		}
	}
}

// collect forces a collection and purge every interval.
func (uc *RunSoakUseCase) collect(ctx context.Context, input RunSoakInput, start time.Time, c *soakCounters) {
	log := logging.FromContext(ctx)
	ticker := time.NewTicker(input.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.observeRaw(uc.refs.RawSlotCount())
			runtime.GC()
			idle := uc.refs.Purge()
			collections := c.collections.Add(1)
			raw := uc.refs.RawSlotCount()
			log.Debug().
				Bool("idle", idle).
				Int("raw", raw).
				Msg("forced collection")

			if input.Progress != nil {
				input.Progress(SoakProgress{
					Elapsed:     time.Since(start),
					Duration:    input.Duration,
					Puts:        c.puts.Load(),
					Collections: collections,
					RawSlots:    raw,
				})
			}
		}
	}
}
