package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/retain/internal/config"
	"github.com/bnema/retain/internal/logging"
)

func TestLoggingConfig(t *testing.T) {
	base := config.DefaultConfig().Logging

	t.Run("config values", func(t *testing.T) {
		cfg, err := loggingConfig(base, Options{}, "run")

		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, cfg.Level)
		assert.Equal(t, "console", cfg.Format)
		assert.Empty(t, cfg.File)
		assert.Equal(t, base.MaxSizeMB, cfg.MaxSizeMB)
	})

	t.Run("flags win", func(t *testing.T) {
		cfg, err := loggingConfig(base, Options{LogLevel: "debug", LogFile: "/tmp/x.log"}, "run")

		require.NoError(t, err)
		assert.Equal(t, zerolog.DebugLevel, cfg.Level)
		assert.Equal(t, "/tmp/x.log", cfg.File)
		assert.Equal(t, "json", cfg.Format)
	})

	t.Run("auto file goes to the state directory", func(t *testing.T) {
		state := t.TempDir()
		t.Setenv("XDG_STATE_HOME", state)

		runID := logging.GenerateRunID()
		cfg, err := loggingConfig(base, Options{LogFile: AutoLogFile}, runID)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(cfg.File, filepath.Join(state, "retain", "logs")))
		assert.Contains(t, cfg.File, logging.ShortRunID(runID))
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := loggingConfig(base, Options{LogLevel: "loud"}, "run")

		require.Error(t, err)
	})
}

func TestNewApp(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "retain.log")

	a, err := NewApp(context.Background(), Options{ConfigDir: dir, LogFile: logFile, LogLevel: "debug"})
	require.NoError(t, err)

	assert.NotNil(t, a.Theme)
	assert.NotEmpty(t, a.RunID)
	assert.Equal(t, logFile, a.LogFile)
	assert.Equal(t, config.DefaultConfig().Soak.Workers, a.Config.Soak.Workers)

	logging.FromContext(a.Ctx()).Info().Msg("hello")
	require.NoError(t, a.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"run_id"`)
}

func TestNewApp_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[soak]\nworkers = -1\n"), 0o600))

	_, err := NewApp(context.Background(), Options{ConfigDir: dir})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
