// Package watch rebuilds a deck when its slide files change. Bursts of
// events, such as an editor's save sequence, are debounced into a single
// rebuild.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"slidedeck/internal/deck"
	"slidedeck/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a path must stay quiet before it counts.
const DefaultDebounce = 500 * time.Millisecond

// RebuildFunc is called with the settled, sorted set of changed paths.
// Rebuilds never overlap.
type RebuildFunc func(ctx context.Context, changed []string) error

// Stats tracks watcher activity.
type Stats struct {
	FilesCreated  int
	FilesModified int
	FilesDeleted  int
	Rebuilds      int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
	LastEventType string
}

// Watcher watches one slide directory.
type Watcher struct {
	mu       sync.RWMutex
	watcher  *fsnotify.Watcher
	dir      string
	rebuild  RebuildFunc
	pending  map[string]time.Time
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool

	stats Stats
}

// New creates a watcher for dir. A non-positive debounce uses
// DefaultDebounce.
func New(dir string, debounce time.Duration, rebuild RebuildFunc) (*Watcher, error) {
	if rebuild == nil {
		return nil, errors.New("watch: rebuild func is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		watcher:  fw,
		dir:      dir,
		rebuild:  rebuild,
		pending:  make(map[string]time.Time),
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.running = true
	w.mu.Unlock()

	logging.Watch("watching %s", w.dir)
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for an in-flight rebuild to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.WatchWarn("error closing watcher: %v", err)
	}
	logging.Watch("stopped")
}

// Done is closed when the event loop exits, either from Stop or from ctx.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
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
			logging.WatchWarn("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// handleEvent records a slide change. The generated index, rendered
// markdown, metadata and temp files never match the slide pattern, so
// builds do not retrigger themselves.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !deck.IsSlideFile(filepath.Base(event.Name)) {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}

	logging.WatchDebug("%s event for %s", eventType, event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventType = eventType
	switch eventType {
	case "create":
		w.stats.FilesCreated++
	case "modify":
		w.stats.FilesModified++
	case "delete", "rename":
		w.stats.FilesDeleted++
	}
	w.pending[event.Name] = time.Now()
}

// flush rebuilds once every pending path has been quiet for the debounce
// window.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	now := time.Now()
	for _, at := range w.pending {
		if now.Sub(at) < w.debounce {
			w.mu.Unlock()
			return
		}
	}
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]time.Time)
	w.mu.Unlock()

	sort.Strings(changed)
	w.runRebuild(ctx, changed)
}

func (w *Watcher) runRebuild(ctx context.Context, changed []string) {
	logging.Watch("rebuilding after %d change(s)", len(changed))
	err := w.rebuild(ctx, changed)

	w.mu.Lock()
	w.stats.Rebuilds++
	if err != nil {
		w.stats.Errors++
	}
	w.mu.Unlock()

	if err != nil {
		logging.WatchWarn("rebuild failed: %v", err)
	}
}

// Trigger runs a rebuild immediately, outside the event loop. Callers use it
// for the initial build before Start.
func (w *Watcher) Trigger(ctx context.Context) error {
	if _, err := os.Stat(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	err := w.rebuild(ctx, nil)
	w.mu.Lock()
	w.stats.Rebuilds++
	if err != nil {
		w.stats.Errors++
	}
	w.mu.Unlock()
	return err
}

// GetStats returns the current watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching returns true if the watcher is currently running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
