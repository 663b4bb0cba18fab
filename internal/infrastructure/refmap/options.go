package refmap

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/bnema/retain/internal/domain/entity"
)

type options struct {
	logger          zerolog.Logger
	name            string
	soft            *SoftRegistry
	initialCapacity int
	concurrency     int
	valueEqual      any
}

func defaultOptions() options {
	return options{
		logger:          zerolog.Nop(),
		initialCapacity: defaultInitialCapacity,
		concurrency:     defaultConcurrency,
	}
}

// Option configures a Map or ConcurrentMap.
type Option func(*options)

// WithLogger routes purge diagnostics (debug level) to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName tags log lines with a map name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithSoftRegistry anchors soft referents in r instead of a private registry.
// Sharing one registry lets a single memory monitor release anchors across
// maps.
func WithSoftRegistry(r *SoftRegistry) Option {
	return func(o *options) {
		o.soft = r
	}
}

// WithInitialCapacity sizes the bucket array up front. For a ConcurrentMap
// the capacity is spread over the segments.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.initialCapacity = n
		}
	}
}

// WithConcurrency sets the number of lock segments of a ConcurrentMap,
// rounded up to a power of two. Map ignores it.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithValueEquality overrides how values are compared by ContainsValue and the
// value and entry views. V must match the map's value type.
func WithValueEquality[V any](equal func(a, b V) bool) Option {
	return func(o *options) {
		o.valueEqual = equal
	}
}

func buildOptions(component string, opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logCtx := o.logger.With().Str("component", component)
	if o.name != "" {
		logCtx = logCtx.Str("map", o.name)
	}
	o.logger = logCtx.Logger()
	return o
}

// config is the validated, typed form of the constructor arguments shared by
// Map and ConcurrentMap.
type config[V any] struct {
	options
	valueEqual func(a, b V) bool
}

func newConfig[K, V any](component string, keyRetention, valueRetention entity.Retention, strategyNil bool, opts []Option) (config[V], error) {
	o := buildOptions(component, opts)
	if strategyNil {
		return config[V]{}, fmt.Errorf("%w: hashing strategy is nil", entity.ErrUnsupportedConfiguration)
	}
	if err := checkRetention[K]("key", keyRetention); err != nil {
		return config[V]{}, err
	}
	if err := checkRetention[V]("value", valueRetention); err != nil {
		return config[V]{}, err
	}

	cfg := config[V]{options: o, valueEqual: defaultValueEqual[V]()}
	if o.valueEqual != nil {
		eq, ok := o.valueEqual.(func(a, b V) bool)
		if !ok {
			return config[V]{}, fmt.Errorf("%w: value equality %T does not match value type %v",
				entity.ErrUnsupportedConfiguration, o.valueEqual, reflect.TypeFor[V]())
		}
		cfg.valueEqual = eq
	}
	if cfg.soft == nil && (keyRetention == entity.RetentionSoft || valueRetention == entity.RetentionSoft) {
		cfg.soft = NewSoftRegistry()
	}
	return cfg, nil
}

// checkRetention rejects retentions that cannot be honoured for T. Weak and
// soft sides need a pointer to a sized type so that weak.Make and
// runtime.AddCleanup apply.
func checkRetention[T any](side string, r entity.Retention) error {
	if !r.IsValid() {
		return fmt.Errorf("%w: unknown %s retention %q", entity.ErrUnsupportedConfiguration, side, r)
	}
	if !r.IsReclaimable() {
		return nil
	}
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Pointer {
		return fmt.Errorf("%w: %s retention %s requires a pointer type, got %v",
			entity.ErrUnsupportedConfiguration, side, r, t)
	}
	if t.Elem().Size() == 0 {
		return fmt.Errorf("%w: %s retention %s cannot track zero-sized %v",
			entity.ErrUnsupportedConfiguration, side, r, t.Elem())
	}
	return nil
}

func defaultValueEqual[V any]() func(a, b V) bool {
	if reflect.TypeFor[V]().Comparable() {
		return func(a, b V) bool { return any(a) == any(b) }
	}
	return func(a, b V) bool { return reflect.DeepEqual(a, b) }
}
