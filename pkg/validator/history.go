package validator

import (
	"sync"

	"github.com/clokai/clok/pkg/call"
	"github.com/clokai/clok/pkg/registry"
)

// History is the per-session mutable state the validator reasons over:
// the sliding window of recently admitted tool names and the
// redundant-search cache. Sessions never share a History.
type History struct {
	mu          sync.Mutex
	window      []string
	windowSize  int
	searchSeen  map[string]bool
	searchCache map[string]interface{}
}

// NewHistory creates session state with the given consecutive-call
// window size.
func NewHistory(windowSize int) *History {
	if windowSize < 1 {
		windowSize = 1
	}
	return &History{
		windowSize:  windowSize,
		searchSeen:  make(map[string]bool),
		searchCache: make(map[string]interface{}),
	}
}

// recordAdmission pushes an admitted tool name into the window and marks
// the cache key of search-class tools as seen.
func (h *History) recordAdmission(d call.Descriptor, class registry.Class) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.window = append(h.window, d.Tool)
	if len(h.window) > h.windowSize {
		h.window = h.window[len(h.window)-h.windowSize:]
	}

	if class == registry.ClassSearch {
		h.searchSeen[d.CacheKey()] = true
	}
}

// windowFull reports whether every one of the last N admitted tool names
// equals tool, with the window at capacity.
func (h *History) windowFull(tool string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.window) < h.windowSize {
		return false
	}
	for _, name := range h.window {
		if name != tool {
			return false
		}
	}
	return true
}

// lookupSearch returns the cached output for a search key, and whether
// the key was admitted earlier in the session.
func (h *History) lookupSearch(key string) (interface{}, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.searchSeen[key] {
		return nil, false
	}
	return h.searchCache[key], true
}

// RecordResult caches the output of a successfully executed search-class
// descriptor so later identical requests can be served without dispatch.
func (h *History) RecordResult(d call.Descriptor, class registry.Class, output interface{}) {
	if class != registry.ClassSearch {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.searchCache[d.CacheKey()] = output
}

// InvalidateSearches drops all cached search results and seen keys.
// Wired to the workspace watcher: a cached file search is stale the
// moment the tree changes underneath it.
func (h *History) InvalidateSearches() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.searchSeen = make(map[string]bool)
	h.searchCache = make(map[string]interface{})
}

// Reset clears the consecutive-call window, e.g. on new user input.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.window = nil
}
