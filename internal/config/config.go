// Package config loads and validates the engine's configuration: a JSON
// file with CLOK_-prefixed environment overrides. Malformed settings are
// configuration errors and prevent the engine from accepting work.
package config

import (
	"github.com/clokai/clok/internal/logger"
)

// Config is the clok engine configuration.
type Config struct {
	// WorkspaceRoot scopes every file tool. Defaults to the current
	// working directory.
	WorkspaceRoot string `json:"workspace_root" mapstructure:"workspace_root"`

	// DataDir holds the log file and tracking database.
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	Validation ValidationConfig `json:"validation" mapstructure:"validation"`
	Executor   ExecutorConfig   `json:"executor" mapstructure:"executor"`
	Tracking   TrackingConfig   `json:"tracking" mapstructure:"tracking"`
	Watcher    WatcherConfig    `json:"watcher" mapstructure:"watcher"`
	Logging    logger.Config    `json:"logging" mapstructure:"logging"`
}

// ValidationConfig mirrors the validator's admission rules.
type ValidationConfig struct {
	Enabled                bool `json:"enabled" mapstructure:"enabled"`
	BlockEmptyArgs         bool `json:"block_empty_args" mapstructure:"block_empty_args"`
	MaxConsecutiveSameTool int  `json:"max_consecutive_same_tool" mapstructure:"max_consecutive_same_tool"`
	PreventRedundantSearch bool `json:"prevent_redundant_search" mapstructure:"prevent_redundant_search"`
}

// ExecutorConfig holds pool size and per-class timeouts in seconds.
type ExecutorConfig struct {
	Workers               int     `json:"workers" mapstructure:"workers"`
	CommandTimeoutSeconds float64 `json:"command_timeout_seconds" mapstructure:"command_timeout_seconds"`
	ReadTimeoutSeconds    float64 `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds   float64 `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`
	SearchTimeoutSeconds  float64 `json:"search_timeout_seconds" mapstructure:"search_timeout_seconds"`
}

// TrackingConfig controls the sqlite audit store.
type TrackingConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	DBPath  string `json:"db_path" mapstructure:"db_path"`
	// ExportSchedule is a five-field cron expression for stats flushes.
	ExportSchedule string `json:"export_schedule" mapstructure:"export_schedule"`
}

// WatcherConfig controls search-cache invalidation on workspace changes.
type WatcherConfig struct {
	Enabled  bool `json:"enabled" mapstructure:"enabled"`
	SettleMs int  `json:"settle_ms" mapstructure:"settle_ms"`
}

// DefaultConfig returns the shipped defaults.
func DefaultConfig() *Config {
	return &Config{
		Validation: ValidationConfig{
			Enabled:                true,
			BlockEmptyArgs:         true,
			MaxConsecutiveSameTool: 2,
			PreventRedundantSearch: true,
		},
		Executor: ExecutorConfig{
			Workers:               0, // 0 means one worker per execution unit
			CommandTimeoutSeconds: 10,
			ReadTimeoutSeconds:    5,
			WriteTimeoutSeconds:   5,
			SearchTimeoutSeconds:  5,
		},
		Tracking: TrackingConfig{
			Enabled:        false,
			ExportSchedule: "*/5 * * * *",
		},
		Watcher: WatcherConfig{
			Enabled:  true,
			SettleMs: 100,
		},
		Logging: logger.Config{
			Level:     "info",
			Console:   true,
			Pretty:    false,
			Redaction: true,
		},
	}
}
