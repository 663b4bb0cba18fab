// Package cli wires configuration, logging and styling for the retain
// commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bnema/retain/internal/cli/styles"
	"github.com/bnema/retain/internal/config"
	"github.com/bnema/retain/internal/domain/build"
	"github.com/bnema/retain/internal/logging"
)

// AutoLogFile selects a per-run log file under the XDG state directory.
const AutoLogFile = "auto"

// Options are the persistent command line overrides.
type Options struct {
	ConfigDir string
	LogLevel  string
	LogFile   string
}

// App holds CLI dependencies.
type App struct {
	Config    *config.Config
	Manager   *config.Manager
	Theme     *styles.Theme
	BuildInfo build.Info
	RunID     string
	LogFile   string

	// Context with logger
	ctx       context.Context
	logCloser io.Closer
}

// NewApp loads the configuration and opens the logger. parent is usually the
// command context and carries cancellation.
func NewApp(parent context.Context, opts Options) (*App, error) {
	// Config loading logs through a stderr logger until the configured one
	// is ready.
	manager, err := config.NewManager(opts.ConfigDir, logging.NewFromEnv())
	if err != nil {
		return nil, fmt.Errorf("create config manager: %w", err)
	}
	if err := manager.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := manager.Get()

	runID := logging.GenerateRunID()
	logCfg, err := loggingConfig(cfg.Logging, opts, runID)
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.Open(logCfg)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	ctx := logging.WithContext(parent, logger)
	ctx = logging.WithRunID(ctx, logging.ShortRunID(runID))
	logging.FromContext(ctx).Debug().
		Str("config", manager.ConfigFile()).
		Str("log_file", logCfg.File).
		Msg("app initialized")

	return &App{
		Config:    cfg,
		Manager:   manager,
		Theme:     styles.NewTheme(),
		RunID:     runID,
		LogFile:   logCfg.File,
		ctx:       ctx,
		logCloser: closer,
	}, nil
}

// loggingConfig merges the config file, RETAIN_ environment and flags.
func loggingConfig(c config.LoggingConfig, opts Options, runID string) (logging.Config, error) {
	cfg := logging.DefaultConfig()
	cfg.TimeFormat = "15:04:05"
	cfg.Format = c.Format
	cfg.File = c.File
	cfg.MaxSizeMB = c.MaxSizeMB
	cfg.MaxBackups = c.MaxBackups
	cfg.MaxAgeDays = c.MaxAgeDays
	cfg.Compress = c.Compress

	levelName := c.Level
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return cfg, err
	}
	cfg.Level = level

	if opts.LogFile != "" {
		cfg.File = opts.LogFile
	}
	if cfg.File == AutoLogFile {
		dir, err := config.GetLogDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve log directory: %w", err)
		}
		cfg.File = filepath.Join(dir, fmt.Sprintf("retain-%s.log", logging.ShortRunID(runID)))
	}
	if cfg.File != "" {
		// Files are for machines.
		cfg.Format = "json"
	}
	return cfg, nil
}

// Close releases all resources.
func (a *App) Close() error {
	if a.logCloser != nil {
		return a.logCloser.Close()
	}
	return nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}
