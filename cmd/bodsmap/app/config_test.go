package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "register", config.Policy)
	assert.Equal(t, constants.ProgressInterval, config.ProgressInterval)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Equal(t, "stderr", config.LogOutput)
	assert.Empty(t, config.InputFile)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("BODSMAP_INPUT_FILE", "in.jsonl")
	t.Setenv("BODSMAP_POLICY", "generic")
	t.Setenv("BODSMAP_STRICT", "true")
	t.Setenv("BODSMAP_PROGRESS_INTERVAL", "50")
	t.Setenv("BODSMAP_LOG_LEVEL", "debug")

	config, err := LoadConfig(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "in.jsonl", config.InputFile)
	assert.Equal(t, "generic", config.Policy)
	assert.True(t, config.Strict)
	assert.Equal(t, 50, config.ProgressInterval)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bodsmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_file: out.jsonl.gz\nspill_file: cache.db\nquiet: true\n"), 0o644))

	v := NewViper()
	v.Set("config", path)
	config, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, "out.jsonl.gz", config.OutputFile)
	assert.Equal(t, "cache.db", config.SpillFile)
	assert.True(t, config.Quiet)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	v := NewViper()
	v.Set("config", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig(v)
	require.Error(t, err)
	var configErr *errors.ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jsonl")
	require.NoError(t, os.WriteFile(in, nil, 0o644))

	valid := func() *Config {
		return &Config{InputFile: in, OutputFile: filepath.Join(dir, "out.jsonl"), ProgressInterval: 10}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no input", mutate: func(c *Config) { c.InputFile = "" }, field: "input_file"},
		{name: "missing input", mutate: func(c *Config) { c.InputFile = filepath.Join(dir, "nope") }, field: "input_file"},
		{name: "directory input", mutate: func(c *Config) { c.InputFile = dir }, field: "input_file"},
		{name: "no output", mutate: func(c *Config) { c.OutputFile = "" }, field: "output_file"},
		{name: "zero interval", mutate: func(c *Config) { c.ProgressInterval = 0 }, field: "progress_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
