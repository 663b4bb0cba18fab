package config

import (
	"time"

	"github.com/bnema/retain/internal/domain/entity"
)

// Default configuration constants
const (
	// Logging defaults
	defaultMaxLogSizeMB  = 10 // MB
	defaultMaxBackups    = 3  // backup files
	defaultMaxLogAgeDays = 7  // days

	// Bounded defaults
	defaultBoundedCapacity = 4

	// RefMap defaults
	defaultConcurrency     = 16
	defaultInitialCapacity = 16

	// Memory defaults
	defaultMonitorInterval   = time.Second
	defaultMinAvailableRatio = 0.10
	defaultMaxLimitRatio     = 0.90
	defaultShrinkFraction    = 0.25

	// Soak defaults
	defaultSoakWorkers    = 4
	defaultSoakKeys       = 10000
	defaultSoakDuration   = 5 * time.Second
	defaultSoakGCInterval = 250 * time.Millisecond
	defaultSoakKeepRatio  = 0.5
)

// DefaultConfig returns the default configuration values for retain.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  defaultMaxLogSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAgeDays: defaultMaxLogAgeDays,
		},
		Bounded: BoundedConfig{
			Capacity: defaultBoundedCapacity,
		},
		RefMap: RefMapConfig{
			KeyRetention:    entity.RetentionWeak,
			ValueRetention:  entity.RetentionStrong,
			Concurrency:     defaultConcurrency,
			InitialCapacity: defaultInitialCapacity,
		},
		Memory: MemoryConfig{
			Interval:          defaultMonitorInterval,
			MinAvailableRatio: defaultMinAvailableRatio,
			MaxLimitRatio:     defaultMaxLimitRatio,
			ShrinkFraction:    defaultShrinkFraction,
		},
		Soak: SoakConfig{
			Workers:    defaultSoakWorkers,
			Keys:       defaultSoakKeys,
			Duration:   defaultSoakDuration,
			GCInterval: defaultSoakGCInterval,
			KeepRatio:  defaultSoakKeepRatio,
		},
	}
}
