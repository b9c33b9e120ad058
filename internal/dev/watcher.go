package dev

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Change represents a detected file change.
type Change struct {
	Path string
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch.
	Paths []string

	// Ignore patterns to skip, matched against base names (globs).
	Ignore []string

	// Debounce is the polling interval.
	Debounce time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors files for changes by polling modification times. Polling
// keeps behavior identical across platforms and survives editors that
// replace files instead of writing them in place.
type Watcher struct {
	config      WatcherConfig
	onChange    func(Change)
	mu          sync.Mutex
	running     bool
	initialized bool
	stopCh      chan struct{}
	timestamps  map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 250 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins watching for file changes. It blocks until ctx is canceled or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	w.scan(nil)
	w.mu.Lock()
	w.initialized = true
	w.mu.Unlock()

	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case <-ticker.C:
			w.poll()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// poll scans for modifications and deletions, reporting at most one change
// per cycle: downstream recompiles the whole configuration anyway.
func (w *Watcher) poll() {
	w.mu.Lock()
	callback := w.onChange
	initialized := w.initialized
	w.mu.Unlock()

	var changes []Change
	seen := make(map[string]bool)

	w.scan(func(path string, mod time.Time) {
		seen[path] = true
		w.mu.Lock()
		last, exists := w.timestamps[path]
		if !exists || mod.After(last) {
			w.timestamps[path] = mod
			if exists || initialized {
				changes = append(changes, Change{Path: path})
			}
		}
		w.mu.Unlock()
	})

	w.mu.Lock()
	for path := range w.timestamps {
		if !seen[path] {
			delete(w.timestamps, path)
			changes = append(changes, Change{Path: path})
		}
	}
	w.mu.Unlock()

	if callback != nil && len(changes) > 0 {
		callback(changes[0])
	}
}

// scan walks the watched paths. With a nil visit it just records timestamps.
func (w *Watcher) scan(visit func(path string, mod time.Time)) {
	for _, root := range w.config.Paths {
		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if w.shouldIgnore(p) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() {
				return nil
			}
			if visit != nil {
				visit(p, info.ModTime())
			} else {
				w.mu.Lock()
				w.timestamps[p] = info.ModTime()
				w.mu.Unlock()
			}
			return nil
		})
	}
}

func (w *Watcher) shouldIgnore(path string) bool {
	name := filepath.Base(path)
	for _, pattern := range w.config.Ignore {
		if name == pattern {
			return true
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
