// Package executor runs execution groups strictly in sequence while
// dispatching the descriptors inside each group concurrently on a
// bounded worker pool. Every dispatch is bounded by a per-class timeout;
// no single failure aborts the batch.
package executor

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clokai/clok/pkg/call"
	"github.com/clokai/clok/pkg/registry"
)

// Timeouts holds the per-tool-class execution bounds.
type Timeouts struct {
	Command time.Duration
	Read    time.Duration
	Write   time.Duration
	Search  time.Duration
}

// DefaultTimeouts mirrors the shipped defaults: commands get 10s, file
// and search operations a shorter 5s.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Command: 10 * time.Second,
		Read:    5 * time.Second,
		Write:   5 * time.Second,
		Search:  5 * time.Second,
	}
}

// Config controls pool size and timeouts.
type Config struct {
	Workers  int
	Timeouts Timeouts
}

// Observer receives every execution result as it is produced.
type Observer func(call.ExecutionResult)

// Executor dispatches descriptors to their registered tool handlers.
type Executor struct {
	reg       *registry.Registry
	cfg       Config
	observers []Observer
}

// New creates an executor. A non-positive worker count falls back to the
// number of available execution units.
func New(reg *registry.Registry, cfg Config, observers ...Observer) *Executor {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	zero := Timeouts{}
	if cfg.Timeouts == zero {
		cfg.Timeouts = DefaultTimeouts()
	}
	return &Executor{reg: reg, cfg: cfg, observers: observers}
}

// Run executes the groups in order and returns one result per
// descriptor, sorted by original parse index. Cancellation is checked
// only at group boundaries: in-flight work finishes or times out, and
// descriptors in groups never started are reported as cancelled.
func (e *Executor) Run(ctx context.Context, groups []call.Group) []call.ExecutionResult {
	var (
		mu      sync.Mutex
		results []call.ExecutionResult
	)

	collect := func(res call.ExecutionResult) {
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
		for _, obs := range e.observers {
			obs(res)
		}
	}

	cancelled := false
	for _, group := range groups {
		if cancelled || ctx.Err() != nil {
			cancelled = true
			for _, d := range group.Descriptors {
				collect(call.ExecutionResult{
					Descriptor: d,
					Status:     call.StatusError,
					Reason:     call.ReasonCancelled,
					Error:      "batch cancelled before group started",
					GroupIndex: group.Index,
				})
			}
			continue
		}

		e.runGroup(ctx, group, collect)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Descriptor.Index < results[j].Descriptor.Index
	})
	return results
}

// runGroup dispatches every descriptor in the group concurrently, bounded
// by the worker pool, and waits for all of them.
func (e *Executor) runGroup(ctx context.Context, group call.Group, collect func(call.ExecutionResult)) {
	sem := make(chan struct{}, e.cfg.Workers)
	var wg sync.WaitGroup

	log.Debug().
		Int("group", group.Index).
		Int("size", len(group.Descriptors)).
		Msg("Starting execution group")

	for _, d := range group.Descriptors {
		wg.Add(1)
		go func(d call.Descriptor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := e.dispatch(ctx, d)
			res.GroupIndex = group.Index
			collect(res)
		}(d)
	}

	wg.Wait()
}

// dispatch runs one descriptor under its tool's timeout. Handler errors,
// panics, and timeouts all become error results.
func (e *Executor) dispatch(ctx context.Context, d call.Descriptor) call.ExecutionResult {
	start := time.Now()

	def := e.reg.Get(d.Tool)
	if def == nil {
		return call.ExecutionResult{
			Descriptor: d,
			Status:     call.StatusError,
			Reason:     call.ReasonUnknownTool,
			Error:      fmt.Sprintf("tool not found: %s", d.Tool),
			Duration:   time.Since(start),
		}
	}

	if err := e.reg.ValidateArgs(d.Tool, d.Args); err != nil {
		return call.ExecutionResult{
			Descriptor: d,
			Status:     call.StatusError,
			Error:      err.Error(),
			Duration:   time.Since(start),
		}
	}

	// In-flight calls are never force-interrupted by batch cancellation,
	// only time-bounded; cancellation takes effect at group boundaries.
	timeout := e.timeoutFor(def)
	execCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	outCh := make(chan interface{}, 1)
	errCh := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("tool panicked: %v", r)
			}
		}()
		out, err := def.Handler(execCtx, d.Args)
		if err != nil {
			errCh <- err
			return
		}
		outCh <- out
	}()

	select {
	case out := <-outCh:
		duration := time.Since(start)
		log.Debug().Str("tool", d.Tool).Dur("duration", duration).Msg("Tool execution completed")
		return call.ExecutionResult{
			Descriptor: d,
			Status:     call.StatusSuccess,
			Output:     out,
			Duration:   duration,
		}

	case err := <-errCh:
		duration := time.Since(start)
		log.Error().Str("tool", d.Tool).Dur("duration", duration).Err(err).Msg("Tool execution failed")
		return call.ExecutionResult{
			Descriptor: d,
			Status:     call.StatusError,
			Error:      err.Error(),
			Duration:   duration,
		}

	case <-execCtx.Done():
		duration := time.Since(start)
		log.Error().Str("tool", d.Tool).Dur("timeout", timeout).Msg("Tool execution timeout")
		return call.ExecutionResult{
			Descriptor: d,
			Status:     call.StatusError,
			Reason:     call.ReasonTimeout,
			Error:      fmt.Sprintf("tool execution timeout after %v", timeout),
			Duration:   duration,
		}
	}
}

func (e *Executor) timeoutFor(def *registry.Definition) time.Duration {
	if def.Timeout > 0 {
		return def.Timeout
	}
	switch def.Class {
	case registry.ClassCommand:
		return e.cfg.Timeouts.Command
	case registry.ClassRead:
		return e.cfg.Timeouts.Read
	case registry.ClassWrite:
		return e.cfg.Timeouts.Write
	case registry.ClassSearch:
		return e.cfg.Timeouts.Search
	default:
		return e.cfg.Timeouts.Command
	}
}
