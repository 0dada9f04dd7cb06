package call

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptor_CacheKeyIgnoresMapOrder(t *testing.T) {
	a := Descriptor{Tool: "find_files", Args: map[string]interface{}{
		"pattern": "*.go", "max_results": 10,
	}}
	b := Descriptor{Tool: "find_files", Args: map[string]interface{}{
		"max_results": 10, "pattern": "*.go",
	}}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
}

func TestDescriptor_CacheKeyDistinguishesArgs(t *testing.T) {
	a := Descriptor{Tool: "find_files", Args: map[string]interface{}{"pattern": "*.go"}}
	b := Descriptor{Tool: "find_files", Args: map[string]interface{}{"pattern": "*.py"}}
	c := Descriptor{Tool: "list_directory", Args: map[string]interface{}{"pattern": "*.go"}}

	assert.NotEqual(t, a.CacheKey(), b.CacheKey())
	assert.NotEqual(t, a.CacheKey(), c.CacheKey())
}

func TestDescriptor_StringArg(t *testing.T) {
	d := Descriptor{Args: map[string]interface{}{
		"path":   "  main.go  ",
		"blank":  "   ",
		"number": 42,
	}}

	assert.Equal(t, "main.go", d.StringArg("path"))
	assert.Equal(t, "main.go", d.StringArg("file_path", "path"))
	assert.Equal(t, "", d.StringArg("blank"))
	assert.Equal(t, "", d.StringArg("number"))
	assert.Equal(t, "", d.StringArg("missing"))
}

func TestConfigurationError_Message(t *testing.T) {
	err := NewConfigurationError("executor.workers", "must not be negative")
	assert.EqualError(t, err, "configuration error: executor.workers: must not be negative")

	bare := &ConfigurationError{Detail: "broken"}
	assert.EqualError(t, bare, "configuration error: broken")
}
