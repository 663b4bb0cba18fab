package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	dir      string
	config   *Config
	viper    *viper.Viper
	mu       sync.RWMutex
	watchers []watcher
	nextID   uint64
	watching bool
	reloads  int
	log      zerolog.Logger
}

// NewManager creates a configuration manager reading config.toml from dir.
// An empty dir selects the XDG config directory.
func NewManager(dir string, logger zerolog.Logger) (*Manager, error) {
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
		}
		dir = configDir
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	// Most variables map automatically with the RETAIN_ prefix
	// (e.g. RETAIN_SOAK_WORKERS); the log variables keep their short names.
	v.SetEnvPrefix("RETAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("logging.level", "RETAIN_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind RETAIN_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "RETAIN_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind RETAIN_LOG_FORMAT: %w", err)
	}

	return &Manager{
		dir:   dir,
		viper: v,
		log:   logger.With().Str("component", "config").Logger(),
	}, nil
}

// Load reads the config file, if any, and environment overrides. A missing
// file is not an error: defaults apply.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config, err := m.unmarshalConfig()
	if err != nil {
		return err
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	return nil
}

func (m *Manager) readConfigFile() error {
	err := m.viper.ReadInConfig()
	if err == nil {
		m.log.Debug().Str("file", m.viper.ConfigFileUsed()).Msg("config file loaded")
		return nil
	}

	var configFileNotFoundError viper.ConfigFileNotFoundError
	if errors.As(err, &configFileNotFoundError) {
		m.log.Debug().Str("dir", m.dir).Msg("no config file, using defaults")
		return nil
	}
	return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", m.configFile(), err)
}

func (m *Manager) unmarshalConfig() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.configFile(),
			err,
		)
	}
	return config, nil
}

func (m *Manager) configFile() string {
	if used := m.viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(m.dir, configFileName)
}

// Get returns the current configuration. Callers must not modify it.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	return m.config
}

// ConfigFile returns the path of the config file in use, or the path one
// would be created at.
func (m *Manager) ConfigFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.configFile()
}

// SchemaFile returns the path the JSON schema is written to.
func (m *Manager) SchemaFile() string {
	return filepath.Join(m.dir, schemaFileName)
}

// Settings returns the merged settings as a nested map, for display.
func (m *Manager) Settings() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viper.AllSettings()
}

// WriteDefault creates config.toml with default values and the JSON schema
// next to it. It fails if config.toml already exists.
func (m *Manager) WriteDefault() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	file := filepath.Join(m.dir, configFileName)
	defaults := viper.New()
	defaults.SetConfigType("toml")
	for key, value := range defaultSettings(DefaultConfig()) {
		defaults.Set(key, value)
	}
	if err := defaults.SafeWriteConfigAs(file); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	if _, err := WriteSchemaFile(m.dir); err != nil {
		return "", err
	}
	m.log.Info().Str("file", file).Msg("default config written")
	return file, nil
}

func (m *Manager) setDefaults() {
	for key, value := range defaultSettings(DefaultConfig()) {
		m.viper.SetDefault(key, value)
	}
}

// defaultSettings flattens cfg into viper keys. Durations are written as
// strings so the generated TOML is readable.
func defaultSettings(cfg *Config) map[string]any {
	return map[string]any{
		"logging.level":        cfg.Logging.Level,
		"logging.format":       cfg.Logging.Format,
		"logging.file":         cfg.Logging.File,
		"logging.max_size_mb":  cfg.Logging.MaxSizeMB,
		"logging.max_backups":  cfg.Logging.MaxBackups,
		"logging.max_age_days": cfg.Logging.MaxAgeDays,
		"logging.compress":     cfg.Logging.Compress,

		"bounded.capacity":         cfg.Bounded.Capacity,
		"bounded.case_insensitive": cfg.Bounded.CaseInsensitive,

		"refmap.key_retention":    string(cfg.RefMap.KeyRetention),
		"refmap.value_retention":  string(cfg.RefMap.ValueRetention),
		"refmap.concurrency":      cfg.RefMap.Concurrency,
		"refmap.initial_capacity": cfg.RefMap.InitialCapacity,

		"memory.interval":            cfg.Memory.Interval.String(),
		"memory.min_available_ratio": cfg.Memory.MinAvailableRatio,
		"memory.max_limit_ratio":     cfg.Memory.MaxLimitRatio,
		"memory.shrink_fraction":     cfg.Memory.ShrinkFraction,

		"soak.workers":     cfg.Soak.Workers,
		"soak.keys":        cfg.Soak.Keys,
		"soak.duration":    cfg.Soak.Duration.String(),
		"soak.gc_interval": cfg.Soak.GCInterval.String(),
		"soak.keep_ratio":  cfg.Soak.KeepRatio,
	}
}
