package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "clok.log")

	lg, err := New(Config{Level: "debug", File: path})
	require.NoError(t, err)

	zl := lg.GetZerolog()
	zl.Info().Str("tool", "read_file").Msg("Tool registered")
	require.NoError(t, lg.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tool registered")
	assert.Contains(t, string(data), "read_file")
}

func TestNew_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clok.log")

	lg, err := New(Config{Level: "error", File: path})
	require.NoError(t, err)

	zl := lg.GetZerolog()
	zl.Debug().Msg("too quiet to appear")
	zl.Error().Msg("loud enough")
	require.NoError(t, lg.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "too quiet")
	assert.Contains(t, string(data), "loud enough")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	lg, err := New(Config{Level: "shouting", Console: true})
	require.NoError(t, err)
	defer lg.Close()

	assert.Equal(t, "info", lg.GetZerolog().GetLevel().String())
}
