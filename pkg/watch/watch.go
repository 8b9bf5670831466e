// Package watch triggers a callback when exposition files in a directory
// are created, written, renamed or removed.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Watcher observes one directory (non-recursively)
type Watcher struct {
	dir      string
	pattern  string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a watcher for files in dir whose base name matches pattern.
// Bursts of events closer together than debounce produce a single callback.
func New(dir, pattern string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      dir,
		pattern:  pattern,
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Matches reports whether an event for path is relevant
func (w *Watcher) Matches(path string) bool {
	ok, err := doublestar.Match(w.pattern, filepath.Base(path))
	return err == nil && ok
}

// Run blocks until ctx is cancelled, calling onChange after each settled
// burst of relevant events. onChange runs on the watcher goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching directory", "dir", w.dir, "pattern", w.pattern)

	// nil until a relevant event arrives; every event pushes the deadline out
	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.Matches(event.Name) {
				continue
			}
			w.logger.Debug("file changed", "path", event.Name, "op", event.Op.String())

			settle = time.After(w.debounce)
		case <-settle:
			settle = nil
			onChange()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "dir", w.dir, "error", err)
		}
	}
}
