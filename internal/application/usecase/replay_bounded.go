package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/logging"
)

// BoundedOpKind identifies one step of a bounded cache replay.
type BoundedOpKind string

const (
	BoundedOpPut    BoundedOpKind = "put"
	BoundedOpGet    BoundedOpKind = "get"
	BoundedOpRemove BoundedOpKind = "remove"
)

// BoundedOp is a single replayed operation.
type BoundedOp struct {
	Kind  BoundedOpKind
	Key   string
	Value string
}

// ParseBoundedOp parses the command line form of an operation:
// "key=value" puts, "?key" gets and "-key" removes.
func ParseBoundedOp(s string) (BoundedOp, error) {
	switch {
	case strings.HasPrefix(s, "?") && len(s) > 1:
		return BoundedOp{Kind: BoundedOpGet, Key: s[1:]}, nil
	case strings.HasPrefix(s, "-") && len(s) > 1:
		return BoundedOp{Kind: BoundedOpRemove, Key: s[1:]}, nil
	}
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return BoundedOp{}, fmt.Errorf("invalid operation %q: want key=value, ?key or -key", s)
	}
	return BoundedOp{Kind: BoundedOpPut, Key: key, Value: value}, nil
}

// String returns the command line form of the operation.
func (o BoundedOp) String() string {
	switch o.Kind {
	case BoundedOpGet:
		return "?" + o.Key
	case BoundedOpRemove:
		return "-" + o.Key
	default:
		return o.Key + "=" + o.Value
	}
}

// BoundedPair is a key/value pair observed during a replay.
type BoundedPair struct {
	Key   string
	Value string
}

// BoundedStep records what one operation did.
type BoundedStep struct {
	Op      BoundedOp
	Found   bool
	Value   string
	Evicted []BoundedPair
}

// ReplayBoundedInput contains the operations to replay, in order.
type ReplayBoundedInput struct {
	Ops []BoundedOp
}

// ReplayBoundedOutput contains the per-step trace and the final contents.
type ReplayBoundedOutput struct {
	Steps     []BoundedStep
	Evictions int
	Keys      []string
}

// ReplayBoundedUseCase replays operations against a bounded cache and traces
// which entries each put evicted.
type ReplayBoundedUseCase struct {
	cache port.ObservableCache[string, string]
}

// NewReplayBoundedUseCase creates a new ReplayBoundedUseCase.
func NewReplayBoundedUseCase(cache port.ObservableCache[string, string]) *ReplayBoundedUseCase {
	return &ReplayBoundedUseCase{cache: cache}
}

// Execute runs every operation in order. It stops early only if ctx is
// cancelled.
func (uc *ReplayBoundedUseCase) Execute(ctx context.Context, input ReplayBoundedInput) (*ReplayBoundedOutput, error) {
	log := logging.FromContext(ctx)

	var evicted []BoundedPair
	remove := uc.cache.AddListener(port.ListenerFunc[string, string](func(key, value string) {
		evicted = append(evicted, BoundedPair{Key: key, Value: value})
	}))
	defer remove()

	out := &ReplayBoundedOutput{Steps: make([]BoundedStep, 0, len(input.Ops))}
	for i, op := range input.Ops {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("replay interrupted at step %d: %w", i, err)
		}

		step := BoundedStep{Op: op}
		switch op.Kind {
		case BoundedOpPut:
			evicted = nil
			uc.cache.Put(op.Key, op.Value)
			step.Evicted = evicted
			out.Evictions += len(evicted)
		case BoundedOpGet:
			step.Value, step.Found = uc.cache.Get(op.Key)
		case BoundedOpRemove:
			step.Value, step.Found = uc.cache.Remove(op.Key)
		default:
			return nil, fmt.Errorf("step %d: unknown operation %q", i, op.Kind)
		}

		log.Debug().
			Int("step", i).
			Str("op", op.String()).
			Bool("found", step.Found).
			Int("evicted", len(step.Evicted)).
			Msg("replayed")
		out.Steps = append(out.Steps, step)
	}

	out.Keys = uc.cache.Keys()
	log.Info().
		Int("ops", len(input.Ops)).
		Int("evictions", out.Evictions).
		Int("len", uc.cache.Len()).
		Msg("bounded replay finished")
	return out, nil
}
