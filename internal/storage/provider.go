// Package storage defines the workspace file-system abstraction.
package storage

import "github.com/starford/modalk/internal/models"

// Extension marks the files the workspace manages.
const Extension = ".modal"

// MaxFileSize bounds a formula file. Larger files are rejected on read and
// write with apperr.ErrInvalidInput.
const MaxFileSize = 1 << 20

// Provider is the interface for workspace file operations.
type Provider interface {
	// List returns metadata for every *.modal file under dir (relative to
	// the workspace root), sorted by path. Hidden directories are skipped.
	List(dir string) ([]models.FileMetadata, error)
	// Exists reports whether a formula file is present at path.
	Exists(path string) (bool, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Root is the absolute workspace directory.
	Root() string
}
