// Package watch re-runs a rebuild function whenever SQL sources change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/dbtdoc/internal/loader"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches directory trees and calls Rebuild after each burst of
// changes to .sql files. Rebuild calls never overlap.
type Watcher struct {
	Dirs     []string
	Debounce time.Duration
	Logger   *slog.Logger

	// Rebuild errors are logged; watching continues.
	Rebuild func(ctx context.Context) error
}

// Relevant reports whether a change to name should trigger a rebuild.
func Relevant(name string) bool {
	return filepath.Ext(name) == loader.SQLExt
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

// Run blocks until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Rebuild == nil {
		return errors.New("watch: no rebuild function")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, dir := range w.Dirs {
		if err := watchDirRecursive(fw, dir); err != nil {
			w.logger().Warn("failed to watch directory", "dir", dir, "error", err)
		}
	}
	w.logger().Debug("watching", "dirs", len(w.Dirs))

	// Capacity 1: a pending trigger absorbs any further changes.
	triggers := make(chan struct{}, 1)

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return w.watchEvents(egctx, fw, triggers)
	})
	eg.Go(func() error {
		return w.rebuildLoop(egctx, triggers)
	})
	return eg.Wait()
}

func (w *Watcher) watchEvents(ctx context.Context, fw *fsnotify.Watcher, triggers chan<- struct{}) error {
	logger := w.logger()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchDirRecursive(fw, event.Name); err != nil {
						logger.Warn("failed to watch directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}

			if !Relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			logger.Debug("source changed", "file", event.Name, "op", event.Op.String())
			select {
			case triggers <- struct{}{}:
			default:
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) rebuildLoop(ctx context.Context, triggers <-chan struct{}) error {
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-triggers:
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.Rebuild(ctx); err != nil {
				w.logger().Error("rebuild failed", "error", err)
			}
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
