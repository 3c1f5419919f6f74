package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bodsmap/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.DebugLevel))

	logging.Info().Msg("info message")
	logging.Error().Msg("error message")

	assert.Contains(t, buf.String(), "info message")
	assert.Contains(t, buf.String(), "error message")
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
}

func TestNewLoggerFromConfig(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(originalLevel)

	tests := []struct {
		name    string
		level   string
		present []string
		absent  []string
	}{
		{name: "debug level", level: "debug", present: []string{`"level":"debug"`, `"level":"info"`}},
		{name: "error level only", level: "error", present: []string{`"level":"error"`}, absent: []string{`"level":"info"`}},
		{name: "invalid falls back to info", level: "chatty", present: []string{`"level":"info"`}, absent: []string{`"level":"debug"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "run.log")
			logger := logging.NewLoggerFromConfig(&logging.Config{
				Level:  tt.level,
				Format: "json",
				Output: path,
				Fields: map[string]any{"component": "test"},
			})

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			for _, s := range tt.present {
				assert.Contains(t, string(content), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, string(content), s)
			}
			assert.Contains(t, string(content), `"component":"test"`)
		})
	}
}

func TestDiscardOutput(t *testing.T) {
	originalLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(originalLevel)

	logger := logging.NewLoggerFromConfig(&logging.Config{Level: "info", Format: "auto", Output: "discard"})
	logger.Info().Msg("goes nowhere")
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithRunID(ctx, "run-123")
	ctx = logging.WithInputFile(ctx, "statements.json.gz")
	ctx = logging.WithPolicy(ctx, "register")
	ctx = logging.WithOutputFile(ctx, "records.json")
	ctx = logging.WithError(ctx, errors.New("disk full"))

	logging.FromContext(ctx).Info().Msg("mapping started")

	testLogger.AssertContains(t, "run-123")
	testLogger.AssertContains(t, "statements.json.gz")
	testLogger.AssertContains(t, `"policy":"register"`)
	assert.Equal(t, "run-123", logging.RunID(ctx))
	assert.Equal(t, 1, testLogger.Count())

	lines := testLogger.Lines()
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "run-123", entry["run_id"])
	assert.Equal(t, "records.json", entry["output_file"])
	assert.Equal(t, "disk full", entry["error"])
	assert.Equal(t, "mapping started", entry["message"])
}

func TestConfigure(t *testing.T) {
	original := *logging.Default()
	level := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(original)
		zerolog.SetGlobalLevel(level)
	})

	path := filepath.Join(t.TempDir(), "bodsmap.log")
	logging.Configure(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
		Fields: map[string]any{"component": "bodsmap"},
	})

	logging.Info().Msg("below level")
	logging.Warn().Msg("orphans dropped")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "below level")
	assert.Contains(t, string(data), "orphans dropped")
	assert.Contains(t, string(data), `"component":"bodsmap"`)
	assert.Equal(t, zerolog.WarnLevel, logging.Default().GetLevel())
}

func TestContextFallbacks(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Equal(t, "", logging.RunID(context.Background()))

	ctx := context.Background()
	assert.Equal(t, ctx, logging.WithError(ctx, nil))
}

func TestWithFields(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithFields(ctx, map[string]any{"rows": 10000, "interrupted": false})

	logging.Ctx(ctx).Info().Msg("progress")

	testLogger.AssertContains(t, `"rows":10000`)
	testLogger.AssertContains(t, `"interrupted":false`)
}

func TestCaptureLoggingForTest(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)
	logging.Warn().Str("kind", "relationship-without-entity").Msg("dropped")

	captured.AssertContains(t, "relationship-without-entity")
	captured.AssertNotContains(t, "panic")
}
