// Package validator admits or rejects parsed descriptors before
// execution. Rules apply in fixed precedence: empty arguments, then the
// consecutive same-tool limit, then redundant searches. All mutable state
// lives in a per-session History passed in by the caller.
package validator

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/clokai/clok/pkg/call"
	"github.com/clokai/clok/pkg/registry"
)

// Config controls which admission rules run.
type Config struct {
	Enabled                bool
	BlockEmptyArgs         bool
	MaxConsecutiveSameTool int
	PreventRedundantSearch bool
}

// DefaultConfig mirrors the engine's shipped validation settings.
func DefaultConfig() Config {
	return Config{
		Enabled:                true,
		BlockEmptyArgs:         true,
		MaxConsecutiveSameTool: 2,
		PreventRedundantSearch: true,
	}
}

// Validator applies admission rules against a registry's tool contracts.
type Validator struct {
	cfg Config
	reg *registry.Registry
}

// New creates a validator.
func New(cfg Config, reg *registry.Registry) *Validator {
	return &Validator{cfg: cfg, reg: reg}
}

// Validate returns one verdict per descriptor, in order. Admissions are
// recorded into history as they are decided, so a later descriptor in the
// same batch sees its predecessors.
func (v *Validator) Validate(history *History, descriptors []call.Descriptor) []call.Verdict {
	verdicts := make([]call.Verdict, 0, len(descriptors))
	for _, d := range descriptors {
		verdicts = append(verdicts, v.validateOne(history, d))
	}
	return verdicts
}

func (v *Validator) validateOne(history *History, d call.Descriptor) call.Verdict {
	class := v.classOf(d.Tool)

	if !v.cfg.Enabled {
		history.recordAdmission(d, class)
		return call.Verdict{Descriptor: d, Admitted: true}
	}

	if v.cfg.BlockEmptyArgs && hasEmptyArgs(d.Args) {
		return v.reject(d, call.ReasonEmptyArguments, nil)
	}

	if v.cfg.MaxConsecutiveSameTool > 0 && history.windowFull(d.Tool) {
		return v.reject(d, call.ReasonConsecutiveLimit, nil)
	}

	if v.cfg.PreventRedundantSearch && class == registry.ClassSearch {
		if cached, seen := history.lookupSearch(d.CacheKey()); seen {
			return v.reject(d, call.ReasonRedundantSearch, cached)
		}
	}

	history.recordAdmission(d, class)
	return call.Verdict{Descriptor: d, Admitted: true}
}

func (v *Validator) reject(d call.Descriptor, reason string, cached interface{}) call.Verdict {
	log.Warn().
		Str("tool", d.Tool).
		Str("reason", reason).
		Interface("args", d.Args).
		Msg("Tool call blocked")

	return call.Verdict{
		Descriptor:   d,
		Admitted:     false,
		Reason:       reason,
		CachedOutput: cached,
	}
}

func (v *Validator) classOf(tool string) registry.Class {
	if def := v.reg.Get(tool); def != nil {
		return def.Class
	}
	return registry.ClassCommand
}

// hasEmptyArgs reports whether the argument map is empty or every value
// is empty or whitespace. Numbers and booleans count as meaningful.
func hasEmptyArgs(args map[string]interface{}) bool {
	if len(args) == 0 {
		return true
	}
	for _, v := range args {
		switch value := v.(type) {
		case nil:
		case string:
			if strings.TrimSpace(value) != "" {
				return false
			}
		case []interface{}:
			if len(value) > 0 {
				return false
			}
		case map[string]interface{}:
			if len(value) > 0 {
				return false
			}
		default:
			// Numbers and booleans carry intent.
			return false
		}
	}
	return true
}
