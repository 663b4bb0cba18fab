package config

import (
	"fmt"
	"strings"

	"github.com/bnema/retain/internal/domain/entity"
	"github.com/bnema/retain/internal/logging"
)

// normalizeConfig canonicalises enum-like values before validation.
func normalizeConfig(config *Config) {
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
	if config.Logging.Format == "" {
		config.Logging.Format = "console"
	}

	if r, err := entity.ParseRetention(string(config.RefMap.KeyRetention)); err == nil {
		config.RefMap.KeyRetention = r
	}
	if r, err := entity.ParseRetention(string(config.RefMap.ValueRetention)); err == nil {
		config.RefMap.ValueRetention = r
	}
}

// validateConfig performs comprehensive validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateLogging(config)...)
	validationErrors = append(validationErrors, validateBounded(config)...)
	validationErrors = append(validationErrors, validateRefMap(config)...)
	validationErrors = append(validationErrors, validateMemory(config)...)
	validationErrors = append(validationErrors, validateSoak(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

// Validate checks cfg without normalising it.
func Validate(cfg *Config) error {
	return validateConfig(cfg)
}

func validateLogging(config *Config) []string {
	var validationErrors []string
	if _, err := logging.ParseLevel(config.Logging.Level); err != nil {
		validationErrors = append(validationErrors, fmt.Sprintf("logging.level %q is not one of trace, debug, info, warn, error", config.Logging.Level))
	}
	switch config.Logging.Format {
	case "console", "json":
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.format %q must be console or json", config.Logging.Format))
	}
	if config.Logging.MaxSizeMB < 1 {
		validationErrors = append(validationErrors, "logging.max_size_mb must be at least 1")
	}
	if config.Logging.MaxBackups < 0 {
		validationErrors = append(validationErrors, "logging.max_backups must be non-negative")
	}
	if config.Logging.MaxAgeDays < 0 {
		validationErrors = append(validationErrors, "logging.max_age_days must be non-negative")
	}
	return validationErrors
}

func validateBounded(config *Config) []string {
	if config.Bounded.Capacity < 1 {
		return []string{"bounded.capacity must be positive"}
	}
	return nil
}

func validateRefMap(config *Config) []string {
	var validationErrors []string
	if !config.RefMap.KeyRetention.IsValid() {
		validationErrors = append(validationErrors, fmt.Sprintf("refmap.key_retention %q must be strong, weak or soft", config.RefMap.KeyRetention))
	}
	if !config.RefMap.ValueRetention.IsValid() {
		validationErrors = append(validationErrors, fmt.Sprintf("refmap.value_retention %q must be strong, weak or soft", config.RefMap.ValueRetention))
	}
	if config.RefMap.Concurrency < 1 {
		validationErrors = append(validationErrors, "refmap.concurrency must be positive")
	}
	if config.RefMap.InitialCapacity < 1 {
		validationErrors = append(validationErrors, "refmap.initial_capacity must be positive")
	}
	return validationErrors
}

func validateMemory(config *Config) []string {
	var validationErrors []string
	if config.Memory.Interval <= 0 {
		validationErrors = append(validationErrors, "memory.interval must be positive")
	}
	if !inUnitRange(config.Memory.MinAvailableRatio) {
		validationErrors = append(validationErrors, "memory.min_available_ratio must be between 0 and 1")
	}
	if !inUnitRange(config.Memory.MaxLimitRatio) {
		validationErrors = append(validationErrors, "memory.max_limit_ratio must be between 0 and 1")
	}
	if config.Memory.ShrinkFraction <= 0 || config.Memory.ShrinkFraction > 1 {
		validationErrors = append(validationErrors, "memory.shrink_fraction must be greater than 0 and at most 1")
	}
	return validationErrors
}

func validateSoak(config *Config) []string {
	var validationErrors []string
	if config.Soak.Workers < 1 {
		validationErrors = append(validationErrors, "soak.workers must be positive")
	}
	if config.Soak.Keys < 1 {
		validationErrors = append(validationErrors, "soak.keys must be positive")
	}
	if config.Soak.Duration <= 0 {
		validationErrors = append(validationErrors, "soak.duration must be positive")
	}
	if config.Soak.GCInterval <= 0 {
		validationErrors = append(validationErrors, "soak.gc_interval must be positive")
	}
	if !inUnitRange(config.Soak.KeepRatio) {
		validationErrors = append(validationErrors, "soak.keep_ratio must be between 0 and 1")
	}
	return validationErrors
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
