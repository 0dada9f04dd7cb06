// Package workspace watches the workspace tree and invalidates cached
// search results when files change. A cached find_files listing is stale
// the moment the tree moves underneath it.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// InvalidateFunc is called once per settled burst of file events.
type InvalidateFunc func()

// Watcher monitors a workspace directory recursively and debounces event
// bursts before invalidating.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	settle   time.Duration
	onChange InvalidateFunc
	done     chan struct{}
	timerMu  sync.Mutex
	timer    *time.Timer
	stopOnce sync.Once
}

// Config holds watcher configuration.
type Config struct {
	Root string
	// Settle is how long the tree must stay quiet before invalidating.
	Settle   time.Duration
	OnChange InvalidateFunc
}

// NewWatcher creates a watcher over the workspace root.
func NewWatcher(cfg Config) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("workspace root is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("on change callback is required")
	}
	if cfg.Settle <= 0 {
		cfg.Settle = 100 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		root:     filepath.Clean(cfg.Root),
		settle:   cfg.Settle,
		onChange: cfg.OnChange,
		done:     make(chan struct{}),
	}, nil
}

// Start registers the directory tree and begins processing events.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.root); err != nil {
		return fmt.Errorf("failed to watch workspace: %w", err)
	}

	go w.eventLoop()

	log.Info().Str("path", w.root).Msg("Workspace watcher started")
	return nil
}

// Stop halts the watcher and cancels any pending invalidation.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.timerMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timerMu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Workspace watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if shouldIgnore(event.Name) {
		return
	}

	// New directories must be added to the watch set before their
	// contents start producing events.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				log.Warn().Err(err).Str("path", event.Name).Msg("Failed to watch new directory")
			}
		}
	}

	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settle, func() {
		log.Debug().Str("path", event.Name).Msg("Workspace changed, invalidating search cache")
		w.onChange()
	})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// shouldIgnore filters noise that never affects search results.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if base == ".git" || base == "node_modules" || base == "__pycache__" {
		return true
	}
	if strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, "~") {
		return true
	}
	return strings.Contains(path, string(filepath.Separator)+".git"+string(filepath.Separator))
}
