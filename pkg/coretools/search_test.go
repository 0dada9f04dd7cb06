package coretools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTree(t *testing.T, root string) {
	t.Helper()
	files := map[string]string{
		"main.go":             "package main",
		"util_test.go":        "package main",
		"docs/readme.md":      "searchable needle here",
		"src/handler.py":      "def handle(): pass",
		".git/objects/x":      "binary",
		"node_modules/m/a.js": "ignored",
	}
	for path, content := range files {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func TestFindFiles_ByName(t *testing.T) {
	reg, root := testReg(t)
	seedTree(t, root)

	out, err := invoke(t, reg, "find_files", map[string]interface{}{
		"pattern": "main", "search_type": "name",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "Found 1 file(s)")
}

func TestFindFiles_Glob(t *testing.T) {
	reg, root := testReg(t)
	seedTree(t, root)

	out, err := invoke(t, reg, "find_files", map[string]interface{}{"pattern": "*.go"})
	require.NoError(t, err)
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "util_test.go")
}

func TestFindFiles_Regex(t *testing.T) {
	reg, root := testReg(t)
	seedTree(t, root)

	out, err := invoke(t, reg, "find_files", map[string]interface{}{
		"pattern": "^handler\\.(py|go)$", "search_type": "regex",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "handler.py")

	_, err = invoke(t, reg, "find_files", map[string]interface{}{
		"pattern": "([unclosed", "search_type": "regex",
	})
	assert.Error(t, err)
}

func TestFindFiles_Content(t *testing.T) {
	reg, root := testReg(t)
	seedTree(t, root)

	out, err := invoke(t, reg, "find_files", map[string]interface{}{
		"pattern": "needle", "search_type": "content",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "docs/readme.md")
	// .git and node_modules are never searched.
	assert.NotContains(t, out, "node_modules")
}

func TestFindFiles_NoMatchSuggests(t *testing.T) {
	reg, root := testReg(t)
	seedTree(t, root)

	out, err := invoke(t, reg, "find_files", map[string]interface{}{
		"pattern": "absent", "search_type": "name",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "No files found")
}

func TestFindFiles_MaxResults(t *testing.T) {
	reg, root := testReg(t)
	seedTree(t, root)

	out, err := invoke(t, reg, "find_files", map[string]interface{}{
		"pattern": ".", "search_type": "name", "max_results": float64(1),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Limited to 1 results")
}

func TestDetectSearchType(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"main", "name"},
		{"*.go", "glob"},
		{"test?", "glob"},
		{"^handler\\.py$", "regex"},
		{"foo.*bar", "regex"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, detectSearchType(tt.pattern), "pattern %q", tt.pattern)
	}
}

func TestListDirectory(t *testing.T) {
	reg, root := testReg(t)
	seedTree(t, root)

	out, err := invoke(t, reg, "list_directory", map[string]interface{}{"path": "."})
	require.NoError(t, err)
	assert.Contains(t, out, "[DIR]  docs/")
	assert.Contains(t, out, "[FILE] main.go")

	_, err = invoke(t, reg, "list_directory", map[string]interface{}{"path": "nope"})
	assert.Error(t, err)
}
