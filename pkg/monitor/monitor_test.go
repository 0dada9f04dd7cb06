package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clokai/clok/pkg/call"
)

func result(tool string, status call.Status, d time.Duration) call.ExecutionResult {
	return call.ExecutionResult{
		Descriptor: call.Descriptor{Tool: tool},
		Status:     status,
		Duration:   d,
	}
}

func TestObserve_Counters(t *testing.T) {
	m := New()

	m.Observe(result("read_file", call.StatusSuccess, 10*time.Millisecond))
	m.Observe(result("read_file", call.StatusSuccess, 30*time.Millisecond))
	m.Observe(result("read_file", call.StatusError, 5*time.Millisecond))

	stats := m.Snapshot()
	require.Contains(t, stats, "read_file")
	s := stats["read_file"]

	assert.Equal(t, int64(3), s.Calls)
	assert.Equal(t, int64(2), s.Successes)
	assert.Equal(t, int64(1), s.Errors)
	assert.Equal(t, 45*time.Millisecond, s.DurationTotal)
	assert.Equal(t, 5*time.Millisecond, s.DurationMin)
	assert.Equal(t, 30*time.Millisecond, s.DurationMax)
}

func TestObserveCached_CountedDistinctly(t *testing.T) {
	m := New()

	m.Observe(result("find_files", call.StatusSuccess, 20*time.Millisecond))
	m.ObserveCached(call.Descriptor{Tool: "find_files"})

	s := m.Snapshot()["find_files"]
	assert.Equal(t, int64(2), s.Calls)
	assert.Equal(t, int64(1), s.Successes)
	assert.Equal(t, int64(1), s.CachedServes)
	assert.Equal(t, int64(0), s.Errors)
}

func TestSnapshot_IsACopy(t *testing.T) {
	m := New()
	m.Observe(result("read_file", call.StatusSuccess, time.Millisecond))

	snap := m.Snapshot()
	entry := snap["read_file"]
	entry.Calls = 999

	assert.Equal(t, int64(1), m.Snapshot()["read_file"].Calls)
}

func TestObserve_ConcurrentUpdates(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Observe(result("run_command", call.StatusSuccess, time.Millisecond))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), m.Snapshot()["run_command"].Calls)
}
