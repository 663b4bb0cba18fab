package cache

import "github.com/rs/zerolog"

type options struct {
	logger zerolog.Logger
	name   string
}

func defaultOptions() options {
	return options{
		logger: zerolog.Nop(),
	}
}

// Option configures a bounded cache.
type Option func(*options)

// WithLogger routes cache diagnostics (evictions at trace level) to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName tags log lines with a cache name, useful when several caches share
// a logger.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logCtx := o.logger.With().Str("component", "bounded_cache")
	if o.name != "" {
		logCtx = logCtx.Str("cache", o.name)
	}
	o.logger = logCtx.Logger()
	return o
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the maximum number of entries.
	Capacity int
	// Inserts counts puts that added a new key.
	Inserts uint64
	// Updates counts puts that replaced the value of an existing key.
	Updates uint64
	// Hits is the number of lookups that found a value.
	Hits uint64
	// Misses is the number of lookups that found nothing.
	Misses uint64
	// Evictions is the number of entries removed to honour the capacity.
	Evictions uint64
}

// HitRate returns Hits/(Hits+Misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
