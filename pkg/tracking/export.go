package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/clokai/clok/pkg/monitor"
)

// StatsSource provides the snapshots to export, keyed by session ID.
type StatsSource func() map[string]map[string]monitor.ToolStats

// Exporter flushes monitor snapshots into the tool_stats table on a cron
// schedule.
type Exporter struct {
	store    *Store
	source   StatsSource
	schedule cron.Schedule
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewExporter parses the cron expression (standard five-field form) and
// builds an exporter. An invalid expression is a configuration error.
func NewExporter(store *Store, source StatsSource, expr string) (*Exporter, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid stats export schedule %q: %w", expr, err)
	}
	return &Exporter{
		store:    store,
		source:   source,
		schedule: schedule,
		done:     make(chan struct{}),
	}, nil
}

// Start runs the export loop until Stop is called.
func (e *Exporter) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	go func() {
		defer close(e.done)
		for {
			next := e.schedule.Next(time.Now())
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Until(next)):
				if err := e.Flush(ctx); err != nil {
					log.Error().Err(err).Msg("Stats export failed")
				}
			}
		}
	}()

	log.Info().Msg("Stats exporter started")
}

// Stop halts the export loop and performs one final flush.
func (e *Exporter) Stop() {
	e.stopOnce.Do(func() {
		if e.cancel != nil {
			e.cancel()
			<-e.done
		}
		if err := e.Flush(context.Background()); err != nil {
			log.Error().Err(err).Msg("Final stats export failed")
		}
	})
}

// Flush writes the current snapshots to the tool_stats table.
func (e *Exporter) Flush(ctx context.Context) error {
	now := time.Now().UTC()
	for sessionID, stats := range e.source() {
		for tool, s := range stats {
			_, err := e.store.db.ExecContext(ctx, `
				INSERT INTO tool_stats
					(session_id, tool_name, calls, successes, errors, cached_serves, duration_ms, exported_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				sessionID, tool, s.Calls, s.Successes, s.Errors, s.CachedServes,
				s.DurationTotal.Milliseconds(), now,
			)
			if err != nil {
				return fmt.Errorf("failed to export stats for %s: %w", tool, err)
			}
		}
	}
	return nil
}
