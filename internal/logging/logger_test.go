package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envLogFormat, "json")

	cfg := ApplyEnv(DefaultConfig())
	assert.Equal(t, zerolog.DebugLevel, cfg.Level)
	assert.Equal(t, "json", cfg.Format)
}

func TestApplyEnv_IgnoresUnknownValues(t *testing.T) {
	t.Setenv(envLogLevel, "verbose")
	t.Setenv(envLogFormat, "xml")

	cfg := ApplyEnv(DefaultConfig())
	assert.Equal(t, DefaultConfig().Level, cfg.Level)
	assert.Equal(t, "console", cfg.Format)
}

func TestNewWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "json"
	logger := NewWriter(cfg, &buf)

	ctx := WithComponent(WithRunID(WithContext(context.Background(), logger), "run-1"), "soak")
	ctx = With(ctx, map[string]any{"values": "weak"})
	FromContext(ctx).Info().Int("slots", 3).Msg("hello")
	FromContext(ctx).Debug().Msg("filtered")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "soak", line["component"])
	assert.Equal(t, "run-1", line["run_id"])
	assert.EqualValues(t, 3, line["slots"])
	assert.Equal(t, "weak", line["values"])
}

func TestFromContext_WithoutLoggerIsDisabled(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestOpen_WritesToFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.File = filepath.Join(t.TempDir(), "logs", "retain.log")

	logger, closer, err := Open(cfg)
	require.NoError(t, err)
	logger.Info().Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestGenerateRunID(t *testing.T) {
	id := generateRunID(time.Date(2025, 12, 17, 20, 51, 6, 0, time.UTC))
	assert.Len(t, id, len("20251217_205106_a7b3"))
	assert.Equal(t, "20251217_205106_", id[:16])
	assert.Len(t, ShortRunID(id), 4)
	assert.Equal(t, "ab", ShortRunID("ab"))
}

func TestPhaseTrace(t *testing.T) {
	clock := time.Unix(0, 0)
	now := func() time.Time { return clock }
	trace := newPhaseTrace(nil, now)

	clock = clock.Add(10 * time.Millisecond)
	trace.Mark("fill")
	clock = clock.Add(5 * time.Millisecond)
	p := trace.Mark("purge")

	assert.Equal(t, 5*time.Millisecond, p.Delta)
	assert.Equal(t, 15*time.Millisecond, p.Elapsed)
	assert.Len(t, trace.Phases(), 2)
	assert.Equal(t, "fill=10ms purge=5ms", trace.Summary())
}
