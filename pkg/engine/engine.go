// Package engine wires the tool-call pipeline: parse, validate, plan,
// execute, aggregate. An Engine is immutable after construction; all
// per-conversation mutable state lives in Sessions.
package engine

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/clokai/clok/internal/metrics"
	"github.com/clokai/clok/pkg/call"
	"github.com/clokai/clok/pkg/executor"
	"github.com/clokai/clok/pkg/parser"
	"github.com/clokai/clok/pkg/registry"
	"github.com/clokai/clok/pkg/validator"
)

// Tracker persists execution outcomes. Implementations must tolerate
// being called concurrently from worker goroutines.
type Tracker interface {
	StartSession(ctx context.Context, sessionID string) error
	RecordResult(ctx context.Context, sessionID string, res call.ExecutionResult) error
}

// Config assembles an engine.
type Config struct {
	Registry   *registry.Registry
	Validation validator.Config
	Executor   executor.Config
	// Metrics and Tracker are optional.
	Metrics *metrics.Metrics
	Tracker Tracker
}

// Engine turns raw model text into executed tool calls and a report.
type Engine struct {
	cfg       Config
	parser    *parser.Parser
	validator *validator.Validator
}

// New validates the configuration and builds an engine. Malformed
// settings yield a ConfigurationError and the engine refuses work.
func New(cfg Config) (*Engine, error) {
	if cfg.Registry == nil {
		return nil, call.NewConfigurationError("registry", "tool registry is required")
	}
	if cfg.Registry.Len() == 0 {
		return nil, call.NewConfigurationError("registry", "no tools registered")
	}
	if cfg.Validation.MaxConsecutiveSameTool < 0 {
		return nil, call.NewConfigurationError("validation.max_consecutive_same_tool", "must not be negative")
	}
	if cfg.Executor.Workers < 0 {
		return nil, call.NewConfigurationError("executor.workers", "must not be negative")
	}
	if cfg.Executor.Timeouts.Command < 0 || cfg.Executor.Timeouts.Read < 0 ||
		cfg.Executor.Timeouts.Write < 0 || cfg.Executor.Timeouts.Search < 0 {
		return nil, call.NewConfigurationError("executor.timeouts", "must not be negative")
	}

	e := &Engine{
		cfg:       cfg,
		parser:    parser.New(),
		validator: validator.New(cfg.Validation, cfg.Registry),
	}

	log.Info().
		Int("tools", cfg.Registry.Len()).
		Bool("validation", cfg.Validation.Enabled).
		Msg("Engine initialized")

	return e, nil
}

// Registry exposes the engine's tool registry.
func (e *Engine) Registry() *registry.Registry {
	return e.cfg.Registry
}
