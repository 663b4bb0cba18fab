package memory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/retain/internal/application/port"
)

// Policy decides when the monitor considers the process under memory
// pressure and how much it releases when it is.
type Policy struct {
	// Interval between probe readings.
	Interval time.Duration
	// MinAvailableRatio triggers a release when available/total host RAM
	// drops below it. Zero disables the host check.
	MinAvailableRatio float64
	// MaxLimitRatio triggers a release when live heap/GOMEMLIMIT rises above
	// it. Zero disables the limit check.
	MaxLimitRatio float64
	// ShrinkFraction is the fraction of each registry's anchors released per
	// pressured reading.
	ShrinkFraction float64
}

// DefaultPolicy returns the policy used when no configuration is given.
func DefaultPolicy() Policy {
	return Policy{
		Interval:          time.Second,
		MinAvailableRatio: 0.10,
		MaxLimitRatio:     0.90,
		ShrinkFraction:    0.25,
	}
}

// Validate reports every invalid field.
func (p Policy) Validate() error {
	var errs []error
	if p.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", p.Interval))
	}
	if p.MinAvailableRatio < 0 || p.MinAvailableRatio > 1 {
		errs = append(errs, fmt.Errorf("min available ratio must be within [0, 1], got %v", p.MinAvailableRatio))
	}
	if p.MaxLimitRatio < 0 || p.MaxLimitRatio > 1 {
		errs = append(errs, fmt.Errorf("max limit ratio must be within [0, 1], got %v", p.MaxLimitRatio))
	}
	if p.ShrinkFraction <= 0 || p.ShrinkFraction > 1 {
		errs = append(errs, fmt.Errorf("shrink fraction must be within (0, 1], got %v", p.ShrinkFraction))
	}
	return errors.Join(errs...)
}

// UnderPressure reports whether stats cross either threshold.
func (p Policy) UnderPressure(stats port.MemoryStats) bool {
	if p.MinAvailableRatio > 0 && stats.TotalRAM > 0 && stats.AvailableRatio() < p.MinAvailableRatio {
		return true
	}
	if p.MaxLimitRatio > 0 && stats.MemoryLimit > 0 && stats.LimitRatio() > p.MaxLimitRatio {
		return true
	}
	return false
}

// Report summarises one monitor check.
type Report struct {
	Stats    port.MemoryStats
	Pressure bool
	Released int
}

// Monitor periodically probes memory and shrinks soft registries while the
// process is under pressure. It never touches map structure: released
// referents become weakly reachable and are purged by their maps.
type Monitor struct {
	probe port.MemoryProbe
	log   zerolog.Logger

	mu        sync.Mutex
	policy    Policy
	releasers []registered
	nextID    uint64
	last      Report
	released  uint64
}

var _ port.PressureMonitor = (*Monitor)(nil)

type registered struct {
	id uint64
	r  port.SoftReleaser
}

// NewMonitor creates a monitor. The policy is validated up front.
func NewMonitor(probe port.MemoryProbe, policy Policy, logger zerolog.Logger, releasers ...port.SoftReleaser) (*Monitor, error) {
	if probe == nil {
		return nil, errors.New("memory monitor needs a probe")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid memory policy: %w", err)
	}
	m := &Monitor{
		probe:  probe,
		policy: policy,
		log:    logger.With().Str("component", "memory_monitor").Logger(),
	}
	for _, r := range releasers {
		m.Add(r)
	}
	return m, nil
}

// Add registers r and returns a function that unregisters it. Adding a
// releaser that is already registered does not register it twice, so each
// pressure reading shrinks it once.
func (m *Monitor) Add(r port.SoftReleaser) (remove func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r == nil {
		return func() {}
	}
	if reflect.ValueOf(r).Comparable() {
		for _, e := range m.releasers {
			if reflect.ValueOf(e.r).Comparable() && e.r == r {
				return m.remover(e.id)
			}
		}
	}
	m.nextID++
	m.releasers = append(m.releasers, registered{id: m.nextID, r: r})
	return m.remover(m.nextID)
}

func (m *Monitor) remover(id uint64) func() {
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.releasers = slices.DeleteFunc(m.releasers, func(e registered) bool { return e.id == id })
	}
}

// SetPolicy replaces the policy; used when configuration is reloaded. The
// new interval applies from the next tick.
func (m *Monitor) SetPolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.policy = p
	m.mu.Unlock()
	m.log.Info().
		Dur("interval", p.Interval).
		Float64("min_available_ratio", p.MinAvailableRatio).
		Float64("max_limit_ratio", p.MaxLimitRatio).
		Float64("shrink_fraction", p.ShrinkFraction).
		Msg("memory policy updated")
	return nil
}

// Policy returns the current policy.
func (m *Monitor) Policy() Policy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy
}

// Last returns the report of the most recent check.
func (m *Monitor) Last() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Released returns the total number of anchors released so far.
func (m *Monitor) Released() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

// Check takes one reading and shrinks every registry if it shows pressure.
func (m *Monitor) Check(ctx context.Context) (Report, error) {
	stats, err := m.probe.Read(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("reading memory: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	report := Report{Stats: stats, Pressure: m.policy.UnderPressure(stats)}
	if report.Pressure {
		for _, e := range m.releasers {
			report.Released += e.r.Shrink(m.policy.ShrinkFraction)
		}
		m.released += uint64(report.Released)
		m.log.Info().
			Float64("available_ratio", stats.AvailableRatio()).
			Float64("limit_ratio", stats.LimitRatio()).
			Int("released", report.Released).
			Msg("memory pressure, released soft anchors")
	}
	m.last = report
	return report, nil
}

// Run checks memory every policy interval until ctx is cancelled. Probe
// errors are logged and do not stop the loop.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.Policy().Interval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.log.Debug().Dur("interval", interval).Msg("memory monitor started")
	for {
		select {
		case <-ctx.Done():
			m.log.Debug().Uint64("released", m.Released()).Msg("memory monitor stopped")
			return nil
		case <-ticker.C:
			if _, err := m.Check(ctx); err != nil && ctx.Err() == nil {
				m.log.Warn().Err(err).Msg("memory check failed")
			}
			if next := m.Policy().Interval; next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}
