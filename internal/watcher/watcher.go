// Package watcher observes the notes directory for changes made outside the
// application (another editor, a sync client) and reports them as events.
// It never mutates the notebook itself: the consumer applies events on the
// single interactive control thread, so display reads always observe a
// consistent catalog.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ansuz/internal/storage"
)

// Op classifies a filesystem change.
type Op int

const (
	// Upserted covers both creates and content writes.
	Upserted Op = iota
	// Removed means the file at Path is gone.
	Removed
	// Swept asks the consumer to drop catalog entries whose files have
	// vanished. Emitted after renames, where fsnotify reports only the
	// old path.
	Swept
)

// Event is one observed change. Path is relative to the notes root and
// empty for Swept.
type Event struct {
	Op   Op
	Path string
}

// Watch runs an fsnotify loop on the store's root until ctx is cancelled,
// delivering events to notify. Directories created at runtime are added to
// the watch list; excluded directories are never watched. Rename events
// schedule a debounced sweep to catch entries whose files moved away.
func Watch(ctx context.Context, store storage.Provider, logger *slog.Logger, notify func(Event)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root, store.ExcludedDir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var sweepTimer *time.Timer
	var sweepCh <-chan time.Time

	scheduleSweep := func() {
		if sweepTimer == nil {
			sweepTimer = time.NewTimer(200 * time.Millisecond)
			sweepCh = sweepTimer.C
		} else {
			sweepTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if sweepTimer != nil {
				sweepTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-sweepCh:
			notify(Event{Op: Swept})

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if store.ExcludedDir(info.Name()) {
						continue
					}
					if addErr := addDirsRecursive(w, ev.Name, store.ExcludedDir); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					notifyNewDir(store, ev.Name, notify)
					continue
				}
			}

			if !store.Tracks(rel) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				logger.Debug("watcher: upsert", slog.String("path", rel))
				notify(Event{Op: Upserted, Path: rel})

			case ev.Op&fsnotify.Remove != 0:
				logger.Debug("watcher: removed", slog.String("path", rel))
				notify(Event{Op: Removed, Path: rel})

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only; the new
				// path arrives as a separate Create if it stays inside a
				// watched dir. Remove the old entry now and sweep shortly
				// after for stragglers.
				logger.Debug("watcher: rename old path", slog.String("path", rel))
				notify(Event{Op: Removed, Path: rel})
				scheduleSweep()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// notifyNewDir emits upserts for tracked files already inside a directory
// that appeared whole (e.g. moved in from outside the root).
func notifyNewDir(store storage.Provider, dirPath string, notify func(Event)) {
	root := store.Root()
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || !store.Tracks(rel) {
			return nil
		}
		notify(Event{Op: Upserted, Path: rel})
		return nil
	})
}

// addDirsRecursive adds root and all non-excluded subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string, excluded func(name string) bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && excluded(d.Name()) {
			return fs.SkipDir
		}
		return w.Add(path)
	})
}
