// Package watcher re-runs slice plans when their files change on disk.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file has to stay quiet before its callback fires
const DefaultDebounce = 250 * time.Millisecond

// Watcher collapses bursts of write events per file into a single callback.
// Editors often save through a rename, so create events count as changes too.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.Mutex
	handlers map[string]func(string)
	pending  map[string]*time.Timer
}

// New creates a watcher; a non-positive debounce selects DefaultDebounce
func New(debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		fs:       fs,
		logger:   logger,
		debounce: debounce,
		handlers: make(map[string]func(string)),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Watch registers files and the callback invoked with the changed file's absolute path
func (w *Watcher) Watch(files []string, onChange func(string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		if _, ok := w.handlers[abs]; ok {
			w.handlers[abs] = onChange
			continue
		}
		if err := w.fs.Add(abs); err != nil {
			return fmt.Errorf("failed to watch %s: %w", abs, err)
		}
		w.handlers[abs] = onChange
		w.logger.Debug("watching file", "path", abs)
	}
	return nil
}

// Files returns the absolute paths currently watched
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := make([]string, 0, len(w.handlers))
	for file := range w.handlers {
		files = append(files, file)
	}
	return files
}

// Run dispatches events until ctx is cancelled or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.schedule(event.Name)
			}
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				w.rewatch(event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}

// Start runs the event loop in its own goroutine
func (w *Watcher) Start(ctx context.Context) {
	go w.Run(ctx)
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	handler, ok := w.handlers[path]
	if !ok {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.logger.Info("file changed", "path", path)
		handler(path)
	})
}

// rewatch re-adds a file that an editor replaced through rename.
// The new inode shows up as a create event once it is watched again.
func (w *Watcher) rewatch(path string) {
	w.mu.Lock()
	_, ok := w.handlers[path]
	w.mu.Unlock()
	if !ok {
		return
	}
	go func() {
		time.Sleep(w.debounce)
		if err := w.fs.Add(path); err != nil {
			w.logger.Debug("file not back yet", "path", path, "err", err)
			return
		}
		w.schedule(path)
	}()
}

// Close stops pending callbacks and releases the underlying watcher
func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	return w.fs.Close()
}
