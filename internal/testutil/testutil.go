// Package testutil provides shared test helpers for setting up notes
// directories and notebooks.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/notebook"
	"github.com/starford/ansuz/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestNotesDir creates a temporary notes directory with a storage.Provider
// tracking .txt and .md files and excluding ".git" directories.
func TestNotesDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir, []string{".txt", ".md"}, []string{".git"})
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteNote drops a raw file into dir, creating parent directories.
func WriteNote(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestNotebook builds and scans a notebook over files, a map of relative
// path to content.
func TestNotebook(t *testing.T, files map[string]string) (string, storage.Provider, *notebook.Notebook) {
	t.Helper()
	dir, store := TestNotesDir(t)
	for rel, content := range files {
		WriteNote(t, dir, rel, content)
	}
	nb := notebook.New(store, Logger())
	if err := nb.Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return dir, store, nb
}
