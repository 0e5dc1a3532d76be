package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// shouldSkipDirectories are directories that should not be watched.
var shouldSkipDirectories = map[string]bool{
	".git":                true,
	".jj":                 true,
	domain.JavelinDirName: true,
}

const eventChannelBuffer = 100

// Watcher implements source root watching using fsnotify. Only directories and .java
// files produce events.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	events    chan ports.WatchEvent
}

// NewWatcher creates a new file system watcher.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatcherFailed.Error())
	}
	return &Watcher{
		fsWatcher: watcher,
		logger:    logger,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}, nil
}

// Start begins watching the given source roots recursively.
func (w *Watcher) Start(ctx context.Context, roots []string) error {
	// Walk the directory trees and add all directories to the watcher.
	for _, root := range roots {
		for dir := range w.watchRecursively(root) {
			if err := w.fsWatcher.Add(dir); err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrWatcherFailed.Error()), "dir", dir)
			}
		}
	}

	// Start processing events in a goroutine.
	go w.processEvents(ctx)

	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// watchRecursively walks the directory tree and yields all directories.
func (w *Watcher) watchRecursively(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Continue walking even if there's an error accessing a directory.
				return nil //nolint:nilerr // This is intentional - we want to skip problematic directories
			}
			if d.IsDir() {
				if w.shouldSkip(d.Name()) {
					return fs.SkipDir
				}
				if !yield(path) {
					return filepath.SkipAll
				}
			}
			return nil
		})
	}
}

// shouldSkip returns true if the directory should be skipped.
func (w *Watcher) shouldSkip(name string) bool {
	return shouldSkipDirectories[name]
}

// processEvents processes raw fsnotify events and converts them to ports.WatchEvent.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			// Convert fsnotify event to ports.WatchEvent.
			watchEvent := w.convertEvent(event)
			if watchEvent == nil {
				continue
			}

			// Send the event to the output channel.
			select {
			case w.events <- *watchEvent:
			case <-ctx.Done():
				return
			}

			// If a new directory was created, add it to the watcher.
			if event.Op&fsnotify.Create == fsnotify.Create && watchEvent.Operation == ports.OpCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.shouldSkip(info.Name()) {
					// Recursively add the new directory and its subdirectories.
					for dir := range w.watchRecursively(event.Name) {
						_ = w.fsWatcher.Add(dir)
					}
				}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher: file system error: " + err.Error())
		}
	}
}

// convertEvent converts an fsnotify event to a ports.WatchEvent. Events for files that
// are not Java sources are dropped; a created directory is kept so it gets watched.
func (w *Watcher) convertEvent(event fsnotify.Event) *ports.WatchEvent {
	path := event.Name
	if !strings.HasSuffix(path, ".java") {
		if event.Op&fsnotify.Create != fsnotify.Create {
			return nil
		}
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			return nil
		}
	}

	if event.Op&fsnotify.Write == fsnotify.Write {
		return &ports.WatchEvent{
			Path:      path,
			Operation: ports.OpWrite,
		}
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		return &ports.WatchEvent{
			Path:      path,
			Operation: ports.OpCreate,
		}
	}

	if event.Op&fsnotify.Remove == fsnotify.Remove {
		return &ports.WatchEvent{
			Path:      path,
			Operation: ports.OpRemove,
		}
	}

	if event.Op&fsnotify.Rename == fsnotify.Rename {
		return &ports.WatchEvent{
			Path:      path,
			Operation: ports.OpRename,
		}
	}

	return nil
}
