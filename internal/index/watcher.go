package index

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/modalk/internal/apperr"
	"github.com/starford/modalk/internal/checksum"
	"github.com/starford/modalk/internal/storage"
)

const (
	// settleDelay lets editors finish multi-chunk saves before a file is proved.
	settleDelay    = 100 * time.Millisecond
	reconcileDelay = 200 * time.Millisecond
)

// EventCallback is called after a watcher-driven change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Watch follows the workspace with fsnotify until ctx is cancelled,
// re-proving changed files through ix and calling cb (if non-nil) after
// each successful change.
//
// Events are collected per path and applied once the path has been quiet
// for settleDelay, against what is on disk at that moment. Directories
// created at runtime are added to the watch list; renames and new
// directories also schedule a full reconciliation pass.
func Watch(ctx context.Context, db *DB, store storage.Provider, ix FileIndexer, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, path string) {
		if cb != nil {
			cb(kind, path)
		}
	}

	settle := newDebounce(settleDelay)
	defer settle.stop()
	reconcileTimer := newDebounce(reconcileDelay)
	defer reconcileTimer.stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-settle.C():
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			slices.Sort(paths)
			for _, p := range paths {
				applyPath(db, store, ix, logger, notify, p)
			}

		case <-reconcileTimer.C():
			if _, _, err := syncFiles(db, store, ix, logger, notify); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					// Files may land before the directory is watched.
					reconcileTimer.reset()
					continue
				}
			}

			if filepath.Ext(ev.Name) != storage.Extension {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			pending[filepath.ToSlash(rel)] = struct{}{}
			settle.reset()
			if ev.Op&fsnotify.Rename != 0 {
				// The new name of a file moved in from an unwatched place
				// arrives as nothing at all.
				reconcileTimer.reset()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// applyPath brings one path in the history in line with the disk.
func applyPath(db *DB, store storage.Provider, ix FileIndexer, logger *slog.Logger, notify EventCallback, rel string) {
	exists, err := store.Exists(rel)
	if err != nil {
		logger.Warn("watcher: stat failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	row, err := db.GetFile(rel)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		logger.Warn("watcher: lookup failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	known := err == nil

	if !exists {
		if !known {
			return
		}
		if delErr := db.DeleteFile(rel); delErr != nil {
			logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
			return
		}
		logger.Debug("watcher: deleted", slog.String("path", rel))
		notify("deleted", rel)
		return
	}

	data, err := store.Read(rel)
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	// Writes through the API are indexed before the event arrives.
	if known && row.Checksum == checksum.Sum(data) {
		return
	}
	if idxErr := ix.IndexFile(rel, data); idxErr != nil {
		logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
		return
	}
	kind := "created"
	if known {
		kind = "updated"
	}
	logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
	notify(kind, rel)
}

// debounce is a resettable one-shot timer usable in a select.
type debounce struct {
	d time.Duration
	t *time.Timer
}

func newDebounce(d time.Duration) *debounce { return &debounce{d: d} }

// C returns the timer channel, or nil (never ready) before the first reset.
func (b *debounce) C() <-chan time.Time {
	if b.t == nil {
		return nil
	}
	return b.t.C
}

func (b *debounce) reset() {
	if b.t == nil {
		b.t = time.NewTimer(b.d)
		return
	}
	b.t.Reset(b.d)
}

func (b *debounce) stop() {
	if b.t != nil {
		b.t.Stop()
	}
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
