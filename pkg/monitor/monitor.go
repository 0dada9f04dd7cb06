// Package monitor accumulates per-tool timing and outcome statistics for
// one session. Updates are O(1) behind a mutex so they never block
// dispatch; counters only ever increase.
package monitor

import (
	"sync"
	"time"

	"github.com/clokai/clok/pkg/call"
)

// ToolStats holds append-only counters for one tool name.
type ToolStats struct {
	Calls         int64         `json:"calls"`
	Successes     int64         `json:"successes"`
	Errors        int64         `json:"errors"`
	CachedServes  int64         `json:"cached_serves"`
	DurationTotal time.Duration `json:"duration_total"`
	DurationMin   time.Duration `json:"duration_min"`
	DurationMax   time.Duration `json:"duration_max"`
}

// Monitor observes execution results for a single session. Concurrent
// sessions must each own their own instance.
type Monitor struct {
	mu    sync.Mutex
	stats map[string]*ToolStats
}

// New creates an empty monitor.
func New() *Monitor {
	return &Monitor{stats: make(map[string]*ToolStats)}
}

// Observe folds one execution result into the tool's counters.
func (m *Monitor) Observe(res call.ExecutionResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[res.Descriptor.Tool]
	if !ok {
		s = &ToolStats{}
		m.stats[res.Descriptor.Tool] = s
	}

	s.Calls++
	switch {
	case res.Cached:
		s.CachedServes++
	case res.Status == call.StatusSuccess:
		s.Successes++
	default:
		s.Errors++
	}

	s.DurationTotal += res.Duration
	if s.DurationMin == 0 || res.Duration < s.DurationMin {
		s.DurationMin = res.Duration
	}
	if res.Duration > s.DurationMax {
		s.DurationMax = res.Duration
	}
}

// ObserveCached counts a redundant-search rejection served from cache,
// kept distinct from fresh dispatches.
func (m *Monitor) ObserveCached(d call.Descriptor) {
	m.Observe(call.ExecutionResult{
		Descriptor: d,
		Status:     call.StatusSuccess,
		Cached:     true,
	})
}

// Snapshot returns a deep copy of the accumulated statistics.
func (m *Monitor) Snapshot() map[string]ToolStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]ToolStats, len(m.stats))
	for name, s := range m.stats {
		out[name] = *s
	}
	return out
}
