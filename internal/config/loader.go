package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader reads the configuration file and environment overrides.
type Loader struct {
	configPath string
}

// NewLoader creates a loader. An empty path falls back to
// $HOME/.clok/clok.json; a missing file yields the defaults.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load reads, merges, and finalizes the configuration.
func (l *Loader) Load() (*Config, error) {
	configPath := l.configPath
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".clok", "clok.json")
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		v := viper.New()
		v.SetConfigFile(configPath)
		v.SetConfigType("json")
		v.SetEnvPrefix("CLOK")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if cfg.WorkspaceRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg.WorkspaceRoot = wd
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".clok")
	}

	if cfg.Logging.File == "" && !cfg.Logging.Console {
		cfg.Logging.File = filepath.Join(cfg.DataDir, "clok.log")
	}

	if cfg.Tracking.Enabled && cfg.Tracking.DBPath == "" {
		cfg.Tracking.DBPath = filepath.Join(cfg.DataDir, "tracking.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
