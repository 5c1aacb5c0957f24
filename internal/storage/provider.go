// Package storage defines the notes-directory file-system abstraction.
package storage

import "github.com/starford/ansuz/internal/models"

// Provider is the interface for note file operations. All paths are
// relative to the notes root.
type Provider interface {
	// List returns metadata for every tracked note file under the root.
	List() ([]models.NoteMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Stat returns size and modification time for the file at path.
	Stat(path string) (models.NoteMeta, int64, error)
	// Tracks reports whether path names a file the notebook should index:
	// allow-listed extension, no excluded path component.
	Tracks(path string) bool
	// ExcludedDir reports whether a directory with the given base name is
	// excluded from scanning and watching.
	ExcludedDir(name string) bool
	// Root returns the absolute notes root directory.
	Root() string
}
