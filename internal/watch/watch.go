// Package watch re-runs an action when source files of a project change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"
)

// DefaultDebounce is the quiet period after the last event before the action
// runs.
const DefaultDebounce = 200 * time.Millisecond

// Action is run with the files changed since the previous run.
type Action func(ctx context.Context, changed []string) error

// Config configures a Watcher.
type Config struct {
	// Dirs are watched recursively; hidden directories are skipped.
	Dirs []string
	// Exclude lists directories that are never watched, such as the
	// directory reports are written to.
	Exclude []string
	// Extensions limits the files that trigger the action; empty means all.
	Extensions []string
	Debounce   time.Duration
	Logger     *slog.Logger
}

// Watcher runs an action on file changes.
type Watcher struct {
	cfg    Config
	action Action
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	runs    chan []string
}

// New creates a watcher.
func New(cfg Config, action Action) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		cfg:     cfg,
		action:  action,
		logger:  logger,
		pending: map[string]bool{},
		runs:    make(chan []string, 1),
	}
}

// Run blocks until ctx is cancelled. Errors from the action are logged and do
// not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range w.cfg.Dirs {
		if err := w.watchDir(watcher, dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.logger.Debug("watching for changes", "dirs", w.cfg.Dirs)

	go w.runLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.excluded(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// new directories must be watched too
				if err := w.watchDir(watcher, event.Name); err == nil {
					w.logger.Debug("watching new directory", "dir", event.Name)
				}
			}
			if !w.relevant(event) {
				continue
			}
			w.schedule(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// runLoop serialises action runs so a slow run is never overlapped.
func (w *Watcher) runLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case changed := <-w.runs:
			w.logger.Debug("change detected", "files", changed)
			if err := w.action(ctx, changed); err != nil && ctx.Err() == nil {
				w.logger.Error("watch action failed", "error", err)
			}
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = map[string]bool{}
	w.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)
	select {
	case w.runs <- changed:
	default:
		// a run is already queued; fold the files into the next batch
		w.mu.Lock()
		for _, p := range changed {
			w.pending[p] = true
		}
		w.timer = time.AfterFunc(w.cfg.Debounce, w.flush)
		w.mu.Unlock()
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	if isHidden(filepath.Base(event.Name)) {
		return false
	}
	return matchesExtension(event.Name, w.cfg.Extensions)
}

// watchDir adds dir and its subdirectories to the watcher.
func (w *Watcher) watchDir(watcher *fsnotify.Watcher, dir string) error {
	return godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			if path != dir && (isHidden(de.Name()) || w.excluded(path)) {
				return godirwalk.SkipThis
			}
			return watcher.Add(path)
		},
		Unsorted: true,
	})
}

func (w *Watcher) excluded(path string) bool {
	for _, ex := range w.cfg.Exclude {
		rel, err := filepath.Rel(ex, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func matchesExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, "."+strings.TrimPrefix(e, ".")) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}
