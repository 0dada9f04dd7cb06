package tracking

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clokai/clok/pkg/call"
	"github.com/clokai/clok/pkg/monitor"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tracking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestStore_RecordAndQuery(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.StartSession(ctx, "s1"))

	results := []call.ExecutionResult{
		{
			Descriptor: call.Descriptor{Tool: "read_file", Args: map[string]interface{}{"path": "a.go"}},
			Status:     call.StatusSuccess,
			Output:     "contents",
			Duration:   12 * time.Millisecond,
		},
		{
			Descriptor: call.Descriptor{Tool: "run_command", Args: map[string]interface{}{"cmd": "ls"}},
			Status:     call.StatusError,
			Reason:     call.ReasonTimeout,
			Duration:   10 * time.Second,
		},
	}
	for _, res := range results {
		require.NoError(t, store.RecordResult(ctx, "s1", res))
	}

	calls, err := store.SessionCalls(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"read_file", "run_command"}, calls)

	// Other sessions see nothing.
	calls, err = store.SessionCalls(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestStore_UnencodableOutputDegrades(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.StartSession(ctx, "s1"))

	res := call.ExecutionResult{
		Descriptor: call.Descriptor{Tool: "run_command"},
		Status:     call.StatusSuccess,
		Output:     func() {}, // not JSON-encodable
	}
	assert.NoError(t, store.RecordResult(ctx, "s1", res))
}

func TestExporter_InvalidSchedule(t *testing.T) {
	store := openStore(t)
	_, err := NewExporter(store, func() map[string]map[string]monitor.ToolStats {
		return nil
	}, "not a cron expr")
	assert.Error(t, err)
}

func TestExporter_Flush(t *testing.T) {
	store := openStore(t)

	source := func() map[string]map[string]monitor.ToolStats {
		return map[string]map[string]monitor.ToolStats{
			"s1": {
				"read_file": {
					Calls: 3, Successes: 2, Errors: 1,
					DurationTotal: 45 * time.Millisecond,
				},
			},
		}
	}

	exporter, err := NewExporter(store, source, "*/5 * * * *")
	require.NoError(t, err)
	require.NoError(t, exporter.Flush(context.Background()))

	var calls, successes, errors int64
	row := store.db.QueryRow("SELECT calls, successes, errors FROM tool_stats WHERE session_id = 's1' AND tool_name = 'read_file'")
	require.NoError(t, row.Scan(&calls, &successes, &errors))
	assert.Equal(t, int64(3), calls)
	assert.Equal(t, int64(2), successes)
	assert.Equal(t, int64(1), errors)
}

func TestExporter_StopFlushes(t *testing.T) {
	store := openStore(t)

	source := func() map[string]map[string]monitor.ToolStats {
		return map[string]map[string]monitor.ToolStats{
			"s1": {"run_command": {Calls: 1, Successes: 1}},
		}
	}

	exporter, err := NewExporter(store, source, "0 0 * * *")
	require.NoError(t, err)

	exporter.Start()
	exporter.Stop()

	var count int
	row := store.db.QueryRow("SELECT COUNT(*) FROM tool_stats")
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count)
}
