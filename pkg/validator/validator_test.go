package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clokai/clok/pkg/call"
	"github.com/clokai/clok/pkg/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()

	noop := func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return "ok", nil
	}
	for name, class := range map[string]registry.Class{
		"read_file":   registry.ClassRead,
		"write_file":  registry.ClassWrite,
		"run_command": registry.ClassCommand,
		"find_files":  registry.ClassSearch,
	} {
		require.NoError(t, reg.Register(registry.Definition{
			Name:        name,
			Description: "test tool",
			Class:       class,
			Handler:     noop,
		}))
	}
	return reg
}

func desc(index int, tool string, args map[string]interface{}) call.Descriptor {
	return call.Descriptor{ID: "d", Tool: tool, Args: args, Index: index}
}

func TestValidate_EmptyArguments(t *testing.T) {
	v := New(DefaultConfig(), testRegistry(t))
	h := NewHistory(2)

	tests := []struct {
		name     string
		args     map[string]interface{}
		admitted bool
	}{
		{"nil args", nil, false},
		{"empty map", map[string]interface{}{}, false},
		{"all whitespace", map[string]interface{}{"path": "  ", "content": ""}, false},
		{"real command", map[string]interface{}{"cmd": "git status"}, true},
		{"number counts as intent", map[string]interface{}{"max_results": float64(5)}, true},
		{"boolean counts as intent", map[string]interface{}{"recursive": false}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdicts := v.Validate(h, []call.Descriptor{desc(0, "run_command", tt.args)})
			require.Len(t, verdicts, 1)
			assert.Equal(t, tt.admitted, verdicts[0].Admitted)
			if !tt.admitted {
				assert.Equal(t, call.ReasonEmptyArguments, verdicts[0].Reason)
			}
		})
	}
}

func TestValidate_ConsecutiveLimit(t *testing.T) {
	v := New(DefaultConfig(), testRegistry(t))
	h := NewHistory(2)

	verdicts := v.Validate(h, []call.Descriptor{
		desc(0, "read_file", map[string]interface{}{"path": "a.go"}),
		desc(1, "read_file", map[string]interface{}{"path": "b.go"}),
		desc(2, "read_file", map[string]interface{}{"path": "c.go"}),
		desc(3, "write_file", map[string]interface{}{"path": "d.go", "content": "x"}),
	})

	require.Len(t, verdicts, 4)
	assert.True(t, verdicts[0].Admitted)
	assert.True(t, verdicts[1].Admitted)
	assert.False(t, verdicts[2].Admitted)
	assert.Equal(t, call.ReasonConsecutiveLimit, verdicts[2].Reason)
	// A different tool breaks the run.
	assert.True(t, verdicts[3].Admitted)
}

func TestValidate_ConsecutiveLimitResetOnNewInput(t *testing.T) {
	v := New(DefaultConfig(), testRegistry(t))
	h := NewHistory(2)

	v.Validate(h, []call.Descriptor{
		desc(0, "read_file", map[string]interface{}{"path": "a.go"}),
		desc(1, "read_file", map[string]interface{}{"path": "b.go"}),
	})
	h.Reset()

	verdicts := v.Validate(h, []call.Descriptor{
		desc(2, "read_file", map[string]interface{}{"path": "c.go"}),
	})
	assert.True(t, verdicts[0].Admitted)
}

func TestValidate_RedundantSearch(t *testing.T) {
	reg := testRegistry(t)
	v := New(DefaultConfig(), reg)
	h := NewHistory(2)

	first := desc(0, "find_files", map[string]interface{}{"pattern": "*.go"})
	verdicts := v.Validate(h, []call.Descriptor{first})
	require.True(t, verdicts[0].Admitted)

	h.RecordResult(first, registry.ClassSearch, "cached listing")

	repeat := desc(1, "find_files", map[string]interface{}{"pattern": "*.go"})
	verdicts = v.Validate(h, []call.Descriptor{repeat})
	require.False(t, verdicts[0].Admitted)
	assert.Equal(t, call.ReasonRedundantSearch, verdicts[0].Reason)
	assert.Equal(t, "cached listing", verdicts[0].CachedOutput)

	// Different arguments are a different search.
	fresh := desc(2, "find_files", map[string]interface{}{"pattern": "*.py"})
	verdicts = v.Validate(h, []call.Descriptor{fresh})
	assert.True(t, verdicts[0].Admitted)
}

func TestValidate_InvalidatedCacheAdmitsAgain(t *testing.T) {
	v := New(DefaultConfig(), testRegistry(t))
	h := NewHistory(2)

	search := desc(0, "find_files", map[string]interface{}{"pattern": "*.go"})
	v.Validate(h, []call.Descriptor{search})

	h.InvalidateSearches()

	verdicts := v.Validate(h, []call.Descriptor{desc(1, "find_files", map[string]interface{}{"pattern": "*.go"})})
	assert.True(t, verdicts[0].Admitted)
}

func TestValidate_DisabledAdmitsEverything(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	v := New(cfg, testRegistry(t))
	h := NewHistory(2)

	verdicts := v.Validate(h, []call.Descriptor{
		desc(0, "run_command", nil),
		desc(1, "read_file", map[string]interface{}{"path": "a.go"}),
		desc(2, "read_file", map[string]interface{}{"path": "a.go"}),
		desc(3, "read_file", map[string]interface{}{"path": "a.go"}),
	})

	for _, verdict := range verdicts {
		assert.True(t, verdict.Admitted)
	}
}

func TestValidate_RulePrecedence(t *testing.T) {
	v := New(DefaultConfig(), testRegistry(t))
	h := NewHistory(2)

	// Fill the window with find_files, then submit an empty-args
	// find_files: the empty-argument rule must win.
	v.Validate(h, []call.Descriptor{
		desc(0, "find_files", map[string]interface{}{"pattern": "a"}),
		desc(1, "find_files", map[string]interface{}{"pattern": "b"}),
	})

	verdicts := v.Validate(h, []call.Descriptor{desc(2, "find_files", map[string]interface{}{"pattern": " "})})
	require.False(t, verdicts[0].Admitted)
	assert.Equal(t, call.ReasonEmptyArguments, verdicts[0].Reason)
}
