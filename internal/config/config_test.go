package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clokai/clok/pkg/call"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Validation.Enabled)
	assert.True(t, cfg.Validation.BlockEmptyArgs)
	assert.Equal(t, 2, cfg.Validation.MaxConsecutiveSameTool)
	assert.True(t, cfg.Validation.PreventRedundantSearch)

	assert.Equal(t, float64(10), cfg.Executor.CommandTimeoutSeconds)
	assert.Equal(t, float64(5), cfg.Executor.ReadTimeoutSeconds)
	assert.False(t, cfg.Tracking.Enabled)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.WorkspaceRoot = os.TempDir()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing workspace", func(c *Config) { c.WorkspaceRoot = "" }, "workspace_root"},
		{"workspace not a dir", func(c *Config) { c.WorkspaceRoot = "/nonexistent/path" }, "workspace_root"},
		{"negative window", func(c *Config) { c.Validation.MaxConsecutiveSameTool = -1 }, "validation.max_consecutive_same_tool"},
		{"negative workers", func(c *Config) { c.Executor.Workers = -1 }, "executor.workers"},
		{"negative timeout", func(c *Config) { c.Executor.ReadTimeoutSeconds = -1 }, "executor.read_timeout_seconds"},
		{"negative settle", func(c *Config) { c.Watcher.SettleMs = -1 }, "watcher.settle_ms"},
		{"tracking without schedule", func(c *Config) { c.Tracking.Enabled = true; c.Tracking.ExportSchedule = "" }, "tracking.export_schedule"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *call.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoader_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.json")).Load()
	require.NoError(t, err)

	assert.True(t, cfg.Validation.Enabled)
	assert.NotEmpty(t, cfg.WorkspaceRoot)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoader_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clok.json")
	content := `{
		"workspace_root": "` + dir + `",
		"validation": {"max_consecutive_same_tool": 5},
		"executor": {"workers": 8, "command_timeout_seconds": 30},
		"tracking": {"enabled": true}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.WorkspaceRoot)
	assert.Equal(t, 5, cfg.Validation.MaxConsecutiveSameTool)
	assert.Equal(t, 8, cfg.Executor.Workers)
	assert.Equal(t, float64(30), cfg.Executor.CommandTimeoutSeconds)
	// Enabled tracking fills in the database path.
	assert.NotEmpty(t, cfg.Tracking.DBPath)
}

func TestLoader_InvalidFileRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clok.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"executor": {"workers": -2}}`), 0644))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}
