package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce batches the bursts of events editors produce on save.
var watchDebounce = 100 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching the directory holding path. The directory must
// exist; the file itself may be created later.
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{path: path, watcher: w}, nil
}

// Run delivers a freshly loaded config to onChange after each settled change
// until ctx is done. Load and watcher errors are delivered with a nil config.
// Run closes the watcher when it returns.
func (w *Watcher) Run(ctx context.Context, onChange func(*Config, error)) {
	defer w.watcher.Close()

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			settle = time.After(watchDebounce)

		case <-settle:
			settle = nil
			onChange(Load(w.path))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			onChange(nil, fmt.Errorf("config watcher: %w", err))
		}
	}
}

// Close stops the watcher without waiting for Run.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
