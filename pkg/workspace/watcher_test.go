package workspace

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestNewWatcher_Validation(t *testing.T) {
	_, err := NewWatcher(Config{OnChange: func() {}})
	assert.Error(t, err)

	_, err = NewWatcher(Config{Root: t.TempDir()})
	assert.Error(t, err)
}

func TestWatcher_InvalidatesOnFileChange(t *testing.T) {
	root := t.TempDir()

	var fired int32
	w, err := NewWatcher(Config{
		Root:     root,
		Settle:   20 * time.Millisecond,
		OnChange: func() { atomic.AddInt32(&fired, 1) },
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("x"), 0644))

	waitFor(t, func() bool { return atomic.LoadInt32(&fired) > 0 })
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()

	var fired int32
	w, err := NewWatcher(Config{
		Root:     root,
		Settle:   100 * time.Millisecond,
		OnChange: func() { atomic.AddInt32(&fired, 1) },
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	// A burst of writes within the settle window collapses to one
	// invalidation.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte{byte(i)}, 0644))
		time.Sleep(10 * time.Millisecond)
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&fired) > 0 })
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestWatcher_IgnoresGitNoise(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))

	var fired int32
	w, err := NewWatcher(Config{
		Root:     root,
		Settle:   20 * time.Millisecond,
		OnChange: func() { atomic.AddInt32(&fired, 1) },
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "index"), []byte("x"), 0644))
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(0), atomic.LoadInt32(&fired))
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(Config{Root: t.TempDir(), OnChange: func() {}})
	require.NoError(t, err)
	require.NoError(t, w.Start())

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
