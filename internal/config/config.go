// Package config loads retain's configuration from a TOML file and RETAIN_
// environment variables, and reloads it when the file changes.
package config

import (
	"time"

	"github.com/bnema/retain/internal/domain/entity"
)

// File permission constants
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Config represents the complete configuration for retain.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" json:"logging" jsonschema:"description=Log output settings"`
	Bounded BoundedConfig `mapstructure:"bounded" json:"bounded" jsonschema:"description=Defaults for the bounded command"`
	RefMap  RefMapConfig  `mapstructure:"refmap" json:"refmap" jsonschema:"description=Reference map construction"`
	Memory  MemoryConfig  `mapstructure:"memory" json:"memory" jsonschema:"description=Memory pressure monitor"`
	Soak    SoakConfig    `mapstructure:"soak" json:"soak" jsonschema:"description=Defaults for the soak command"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Format     string `mapstructure:"format" json:"format" jsonschema:"enum=console,enum=json,default=console"`
	File       string `mapstructure:"file" json:"file,omitempty" jsonschema:"description=Write logs to this file instead of stderr"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" json:"max_size_mb" jsonschema:"minimum=1"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups" jsonschema:"minimum=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" json:"max_age_days" jsonschema:"minimum=0"`
	Compress   bool   `mapstructure:"compress" json:"compress"`
}

// BoundedConfig holds defaults for bounded cache replays.
type BoundedConfig struct {
	Capacity        int  `mapstructure:"capacity" json:"capacity" jsonschema:"minimum=1,default=4"`
	CaseInsensitive bool `mapstructure:"case_insensitive" json:"case_insensitive" jsonschema:"description=Compare keys with Unicode case folding"`
}

// RefMapConfig selects how reference maps are built.
type RefMapConfig struct {
	KeyRetention    entity.Retention `mapstructure:"key_retention" json:"key_retention" jsonschema:"enum=strong,enum=weak,enum=soft,default=weak"`
	ValueRetention  entity.Retention `mapstructure:"value_retention" json:"value_retention" jsonschema:"enum=strong,enum=weak,enum=soft,default=strong"`
	Concurrency     int              `mapstructure:"concurrency" json:"concurrency" jsonschema:"minimum=1,description=Lock segments, rounded up to a power of two"`
	InitialCapacity int              `mapstructure:"initial_capacity" json:"initial_capacity" jsonschema:"minimum=1"`
}

// MemoryConfig tunes the memory pressure monitor.
type MemoryConfig struct {
	Interval          time.Duration `mapstructure:"interval" json:"interval" jsonschema:"type=string,description=Probe interval such as 1s"`
	MinAvailableRatio float64       `mapstructure:"min_available_ratio" json:"min_available_ratio" jsonschema:"minimum=0,maximum=1"`
	MaxLimitRatio     float64       `mapstructure:"max_limit_ratio" json:"max_limit_ratio" jsonschema:"minimum=0,maximum=1"`
	ShrinkFraction    float64       `mapstructure:"shrink_fraction" json:"shrink_fraction" jsonschema:"exclusiveMinimum=0,maximum=1"`
}

// SoakConfig holds defaults for soak runs.
type SoakConfig struct {
	Workers    int           `mapstructure:"workers" json:"workers" jsonschema:"minimum=1"`
	Keys       int           `mapstructure:"keys" json:"keys" jsonschema:"minimum=1,description=Keys written per worker"`
	Duration   time.Duration `mapstructure:"duration" json:"duration" jsonschema:"type=string"`
	GCInterval time.Duration `mapstructure:"gc_interval" json:"gc_interval" jsonschema:"type=string,description=How often the soak forces a collection"`
	KeepRatio  float64       `mapstructure:"keep_ratio" json:"keep_ratio" jsonschema:"minimum=0,maximum=1,description=Fraction of referents the workers keep reachable"`
}
