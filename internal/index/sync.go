package index

import (
	"log/slog"

	"github.com/starford/modalk/internal/storage"
)

// FileIndexer proves a workspace file and records the result.
type FileIndexer interface {
	IndexFile(path string, data []byte) error
}

// Sync walks the workspace and brings the history up to date:
//   - new or changed files are proved and recorded
//   - files removed from disk lose their source lines
func Sync(db *DB, store storage.Provider, ix FileIndexer, logger *slog.Logger) error {
	indexed, removed, err := syncFiles(db, store, ix, logger, nil)
	if err != nil {
		return err
	}
	logger.Info("sync: done",
		slog.Int("indexed", indexed),
		slog.Int("removed", removed))
	return nil
}

// syncFiles compares the workspace listing with the recorded checksums and
// applies the difference, calling notify (if non-nil) for every change.
// Per-file failures are logged and skipped.
func syncFiles(db *DB, store storage.Provider, ix FileIndexer, logger *slog.Logger, notify EventCallback) (indexed, removed int, err error) {
	metas, err := store.List("")
	if err != nil {
		return 0, 0, err
	}
	checksums, err := db.AllFileChecksums()
	if err != nil {
		return 0, 0, err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		recorded, known := checksums[m.Path]
		if known && recorded == m.Checksum {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := ix.IndexFile(m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		indexed++
		logger.Debug("sync: indexed", slog.String("path", m.Path))
		if notify != nil {
			kind := "created"
			if known {
				kind = "updated"
			}
			notify(kind, m.Path)
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteFile(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		removed++
		logger.Debug("sync: removed stale", slog.String("path", p))
		if notify != nil {
			notify("deleted", p)
		}
	}
	return indexed, removed, nil
}
