// Package watch provides file watching for re-running SQL files.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/satishbabariya/r2dbc-go/internal/debug"
)

// DefaultDebounce collapses the bursts of events editors produce on save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches files for changes
type Watcher struct {
	files    map[string]struct{}
	callback func(path string) error
	onError  func(error)
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher calling callback with the changed file.
func NewWatcher(callback func(path string) error, files ...string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]struct{}, len(files)),
		callback: callback,
		onError:  func(err error) { debug.Error("watch", "error", err) },
		debounce: DefaultDebounce,
		watcher:  watcher,
	}

	dirs := map[string]struct{}{}
	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		w.files[absPath] = struct{}{}

		// Watch the directory so files replaced on save are still seen
		dir := filepath.Dir(absPath)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch directory: %w", err)
		}
		dirs[dir] = struct{}{}
	}
	return w, nil
}

// SetDebounce sets how long to wait for events to settle.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// OnError sets the handler for watch and callback errors.
func (w *Watcher) OnError(fn func(error)) { w.onError = fn }

// Run delivers changes until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()
	var debounceCh <-chan time.Time
	pending := map[string]struct{}{}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			eventPath, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, watched := w.files[eventPath]; !watched {
				continue
			}
			pending[eventPath] = struct{}{}
			debounceTimer.Reset(w.debounce)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			for path := range pending {
				debug.Debug("file changed", "path", path)
				if err := w.callback(path); err != nil {
					w.onError(err)
				}
			}
			clear(pending)
			debounceCh = nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.onError(err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
