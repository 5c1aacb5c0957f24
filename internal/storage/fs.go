package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root       string // absolute path to the notes directory
	extensions map[string]struct{}
	excluded   map[string]struct{}
}

// NewFS creates a new FS provider rooted at the given directory. The
// directory must already exist; anything else is a fatal startup condition,
// since there is nothing to index.
func NewFS(root string, extensions, excludeNames []string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		exts[e] = struct{}{}
	}
	excl := make(map[string]struct{}, len(excludeNames))
	for _, n := range excludeNames {
		excl[n] = struct{}{}
	}
	return &FS{root: abs, extensions: exts, excluded: excl}, nil
}

// Root returns the absolute notes root directory.
func (f *FS) Root() string {
	return f.root
}

// Tracks reports whether the given relative path names a note file: its
// extension must be allow-listed and no path component may be excluded.
// Exclusion applies at every directory level, not only the top.
func (f *FS) Tracks(rel string) bool {
	if _, ok := f.extensions[filepath.Ext(rel)]; !ok {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if _, ok := f.excluded[part]; ok {
			return false
		}
	}
	return true
}

// ExcludedDir reports whether a directory base name is on the exclusion
// list.
func (f *FS) ExcludedDir(name string) bool {
	_, ok := f.excluded[name]
	return ok
}

// safePath resolves a relative path against the notes root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes notes root: %s", rel)
	}
	return abs, nil
}

// List walks the root and returns metadata for every tracked note file.
// Excluded directories are pruned from the walk entirely.
func (f *FS) List() ([]models.NoteMeta, error) {
	var out []models.NoteMeta
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == f.root {
				return walkErr
			}
			// Unreadable entries below the root are skipped, not fatal.
			return nil
		}
		if d.IsDir() {
			if _, ok := f.excluded[d.Name()]; ok && p != f.root {
				return fs.SkipDir
			}
			return nil
		}
		if _, ok := f.extensions[filepath.Ext(d.Name())]; !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.NoteMeta{Path: rel, ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a note file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ansuz-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a note file.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Move renames a note file within the notes directory.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}

// Stat returns metadata and size for a note file.
func (f *FS) Stat(path string) (models.NoteMeta, int64, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return models.NoteMeta{}, 0, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return models.NoteMeta{}, 0, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return models.NoteMeta{Path: path, ModTime: info.ModTime()}, info.Size(), nil
}
