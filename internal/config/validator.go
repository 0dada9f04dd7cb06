package config

import (
	"os"

	"github.com/clokai/clok/pkg/call"
)

// Validate checks the configuration before the engine accepts work.
func (c *Config) Validate() error {
	if c.WorkspaceRoot == "" {
		return call.NewConfigurationError("workspace_root", "must not be empty")
	}
	if info, err := os.Stat(c.WorkspaceRoot); err != nil || !info.IsDir() {
		return call.NewConfigurationError("workspace_root", "%q is not a directory", c.WorkspaceRoot)
	}

	if c.Validation.MaxConsecutiveSameTool < 0 {
		return call.NewConfigurationError("validation.max_consecutive_same_tool", "must not be negative")
	}

	if c.Executor.Workers < 0 {
		return call.NewConfigurationError("executor.workers", "must not be negative")
	}
	for field, v := range map[string]float64{
		"executor.command_timeout_seconds": c.Executor.CommandTimeoutSeconds,
		"executor.read_timeout_seconds":    c.Executor.ReadTimeoutSeconds,
		"executor.write_timeout_seconds":   c.Executor.WriteTimeoutSeconds,
		"executor.search_timeout_seconds":  c.Executor.SearchTimeoutSeconds,
	} {
		if v < 0 {
			return call.NewConfigurationError(field, "must not be negative")
		}
	}

	if c.Watcher.SettleMs < 0 {
		return call.NewConfigurationError("watcher.settle_ms", "must not be negative")
	}

	if c.Tracking.Enabled && c.Tracking.ExportSchedule == "" {
		return call.NewConfigurationError("tracking.export_schedule", "required when tracking is enabled")
	}

	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return call.NewConfigurationError("logging.level", "unknown level %q", c.Logging.Level)
	}

	return nil
}
