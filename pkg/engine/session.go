package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clokai/clok/pkg/call"
	"github.com/clokai/clok/pkg/executor"
	"github.com/clokai/clok/pkg/monitor"
	"github.com/clokai/clok/pkg/report"
	"github.com/clokai/clok/pkg/scheduler"
	"github.com/clokai/clok/pkg/validator"
)

// Session owns one conversation's mutable state: the validator history
// (call window + search cache) and the monitor. Concurrent sessions
// never share either.
type Session struct {
	id      string
	engine  *Engine
	history *validator.History
	monitor *monitor.Monitor
}

// NewSession creates a session with fresh history and statistics.
func (e *Engine) NewSession(ctx context.Context) *Session {
	s := &Session{
		id:      uuid.NewString(),
		engine:  e,
		history: validator.NewHistory(e.cfg.Validation.MaxConsecutiveSameTool),
		monitor: monitor.New(),
	}

	if e.cfg.Tracker != nil {
		if err := e.cfg.Tracker.StartSession(ctx, s.id); err != nil {
			log.Error().Err(err).Str("session", s.id).Msg("Failed to start tracking session")
		}
	}

	log.Info().Str("session", s.id).Msg("Session started")
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Monitor returns the session's statistics accumulator.
func (s *Session) Monitor() *monitor.Monitor { return s.monitor }

// History returns the session's validator state, e.g. for wiring a
// workspace watcher to InvalidateSearches.
func (s *Session) History() *validator.History { return s.history }

// ResetWindow clears the consecutive-call window for new user input.
func (s *Session) ResetWindow() { s.history.Reset() }

// Process runs the full pipeline over one model response and returns the
// order-preserving report. Parse warnings, rejections, execution errors,
// and timeouts are all report data; Process itself only fails on a
// cancelled context before work begins.
func (s *Session) Process(ctx context.Context, text string) (*call.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := s.engine

	descriptors, warnings := e.parser.Parse(text)
	if e.cfg.Metrics != nil {
		e.cfg.Metrics.DescriptorsParsed.Add(float64(len(descriptors)))
		e.cfg.Metrics.ParseWarnings.Add(float64(len(warnings)))
	}

	verdicts := e.validator.Validate(s.history, descriptors)

	admitted := make([]call.Descriptor, 0, len(descriptors))
	for _, v := range verdicts {
		if e.cfg.Metrics != nil {
			e.cfg.Metrics.ObserveVerdict(v)
		}
		if v.Admitted {
			admitted = append(admitted, v.Descriptor)
			continue
		}
		if v.Reason == call.ReasonRedundantSearch {
			s.monitor.ObserveCached(v.Descriptor)
		}
	}

	groups := scheduler.Plan(admitted, e.cfg.Registry.ResourceKey)
	if e.cfg.Metrics != nil {
		e.cfg.Metrics.ObservePlan(groups)
	}

	exec := executor.New(e.cfg.Registry, e.cfg.Executor, s.observers()...)
	results := exec.Run(ctx, groups)

	for _, res := range results {
		if res.Status != call.StatusSuccess {
			continue
		}
		if def := e.cfg.Registry.Get(res.Descriptor.Tool); def != nil {
			s.history.RecordResult(res.Descriptor, def.Class, res.Output)
		}
	}

	rep := report.Build(s.id, verdicts, results, warnings)

	log.Info().
		Str("session", s.id).
		Int("total", rep.Counts.Total).
		Int("admitted", rep.Counts.Admitted).
		Int("rejected", rep.Counts.Rejected).
		Int("succeeded", rep.Counts.Succeeded).
		Int("failed", rep.Counts.Failed).
		Msg("Batch processed")

	return rep, nil
}

// observers assembles the per-result callbacks for one executor run.
func (s *Session) observers() []executor.Observer {
	e := s.engine
	obs := []executor.Observer{s.monitor.Observe}

	if e.cfg.Metrics != nil {
		obs = append(obs, e.cfg.Metrics.ObserveExecution)
	}
	if e.cfg.Tracker != nil {
		tracker := e.cfg.Tracker
		sessionID := s.id
		obs = append(obs, func(res call.ExecutionResult) {
			if err := tracker.RecordResult(context.Background(), sessionID, res); err != nil {
				log.Error().Err(err).Str("tool", res.Descriptor.Tool).Msg("Failed to track tool call")
			}
		})
	}
	return obs
}
