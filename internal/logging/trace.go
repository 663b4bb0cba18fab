package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PhaseTrace records the milestones of a long-running command and logs each
// one at debug level. Safe for concurrent use.
type PhaseTrace struct {
	mu     sync.Mutex
	t0     time.Time
	phases []Phase
	logger *zerolog.Logger
	now    func() time.Time
}

// Phase is a timing checkpoint.
type Phase struct {
	Name    string
	Elapsed time.Duration // time since the trace started
	Delta   time.Duration // time since the previous phase
}

// NewPhaseTrace starts a trace. logger may be nil.
func NewPhaseTrace(logger *zerolog.Logger) *PhaseTrace {
	return newPhaseTrace(logger, time.Now)
}

func newPhaseTrace(logger *zerolog.Logger, now func() time.Time) *PhaseTrace {
	return &PhaseTrace{t0: now(), logger: logger, now: now}
}

// Mark records the end of the named phase.
func (t *PhaseTrace) Mark(name string) Phase {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := t.now().Sub(t.t0)
	p := Phase{Name: name, Elapsed: elapsed, Delta: elapsed}
	if n := len(t.phases); n > 0 {
		p.Delta = elapsed - t.phases[n-1].Elapsed
	}
	t.phases = append(t.phases, p)

	if t.logger != nil {
		t.logger.Debug().
			Str("phase", name).
			Dur("delta", p.Delta).
			Dur("elapsed", p.Elapsed).
			Msg("phase done")
	}
	return p
}

// Phases returns a copy of the recorded phases.
func (t *PhaseTrace) Phases() []Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Phase(nil), t.phases...)
}

// Summary formats the phases as "name=delta" pairs.
func (t *PhaseTrace) Summary() string {
	phases := t.Phases()
	parts := make([]string, 0, len(phases))
	for _, p := range phases {
		parts = append(parts, fmt.Sprintf("%s=%s", p.Name, p.Delta.Round(time.Microsecond)))
	}
	return strings.Join(parts, " ")
}
