// Package notebook owns the in-memory catalog of notes for a notes
// directory. It is built once by a full scan at startup and mutated
// incrementally afterwards; it is the single source of truth for which
// notes exist, and the only component that touches the filesystem on the
// search path.
package notebook

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/snippet"
	"github.com/starford/ansuz/internal/storage"
)

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Notebook maps titles to notes (case-insensitive) and paths back to
// titles, O(1) both ways. Not safe for concurrent mutation: all writes must
// happen on the single interactive control thread.
type Notebook struct {
	store   storage.Provider
	logger  *slog.Logger
	byTitle map[string]*models.Note // key: lower-cased title
	byPath  map[string]string       // key: path relative to root, value: title key
	nextSeq int
}

// New creates an empty notebook over the given store.
func New(store storage.Provider, logger *slog.Logger) *Notebook {
	return &Notebook{
		store:   store,
		logger:  logger,
		byTitle: make(map[string]*models.Note),
		byPath:  make(map[string]string),
	}
}

func titleKey(title string) string {
	return strings.ToLower(title)
}

// titleOf derives the user-facing title from a relative note path.
func titleOf(rel string) string {
	base := filepath.Base(rel)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// rel converts a note's absolute path back to a root-relative one.
func (nb *Notebook) rel(n *models.Note) string {
	r, err := filepath.Rel(nb.store.Root(), n.Path)
	if err != nil {
		return n.Path
	}
	return r
}

// Scan populates the notebook from a full walk of the notes directory.
// Individual unreadable files are skipped and logged; only a failure to
// list the root itself is fatal.
func (nb *Notebook) Scan() error {
	metas, err := nb.store.List()
	if err != nil {
		return fmt.Errorf("notebook: scan: %w", err)
	}
	for _, m := range metas {
		data, err := nb.store.Read(m.Path)
		if err != nil {
			nb.logger.Warn("scan: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		nb.upsert(m.Path, m.ModTime, data)
	}
	nb.logger.Info("scan complete", slog.Int("notes", len(nb.byTitle)))
	return nil
}

// upsert inserts or refreshes the entry for rel. On a title collision with
// a different path the later entry wins; the collision is logged as a
// recoverable condition, never a fatal one.
func (nb *Notebook) upsert(rel string, modTime time.Time, data []byte) *models.Note {
	key := titleKey(titleOf(rel))

	if existingKey, ok := nb.byPath[rel]; ok && existingKey == key {
		// Same file, refreshed content.
		n := nb.byTitle[key]
		n.Snippet = snippet.Extract(data)
		n.Checksum = checksum(data)
		n.ModTime = modTime
		n.Pending = false
		return n
	}

	if prev, ok := nb.byTitle[key]; ok {
		nb.logger.Warn("title collision, later entry wins",
			slog.String("title", titleOf(rel)),
			slog.String("kept", rel),
			slog.String("dropped", nb.rel(prev)))
		delete(nb.byPath, nb.rel(prev))
	}

	n := &models.Note{
		Path:     filepath.Join(nb.store.Root(), rel),
		Title:    titleOf(rel),
		Ext:      filepath.Ext(rel),
		Snippet:  snippet.Extract(data),
		Checksum: checksum(data),
		ModTime:  modTime,
		Seq:      nb.nextSeq,
	}
	nb.nextSeq++
	nb.byTitle[key] = n
	nb.byPath[rel] = key
	return n
}

// drop removes an entry from both mappings.
func (nb *Notebook) drop(n *models.Note) {
	delete(nb.byPath, nb.rel(n))
	delete(nb.byTitle, titleKey(n.Title))
}

// Lookup returns the note with the given title (case-insensitive).
func (nb *Notebook) Lookup(title string) (*models.Note, error) {
	n, ok := nb.byTitle[titleKey(title)]
	if !ok {
		return nil, fmt.Errorf("notebook: lookup %q: %w", title, apperr.ErrNotFound)
	}
	return n, nil
}

// validTitle rejects titles that cannot map to a filename stem.
func validTitle(title string) bool {
	if strings.TrimSpace(title) == "" {
		return false
	}
	if strings.ContainsAny(title, `/\`) || strings.ContainsRune(title, 0) {
		return false
	}
	return title != "." && title != ".."
}

// Create registers a pending entry for a new note at root/title.ext, using
// the title verbatim as the filename stem. The file itself is written by
// the editor, not here; the pending entry exists so a duplicate create is
// rejected immediately.
func (nb *Notebook) Create(title, ext string) (*models.Note, error) {
	if !validTitle(title) {
		return nil, fmt.Errorf("notebook: create %q: %w", title, apperr.ErrInvalidTitle)
	}
	if _, ok := nb.byTitle[titleKey(title)]; ok {
		return nil, fmt.Errorf("notebook: create %q: %w", title, apperr.ErrAlreadyExists)
	}
	rel := title + ext
	n := &models.Note{
		Path:    filepath.Join(nb.store.Root(), rel),
		Title:   title,
		Ext:     ext,
		Seq:     nb.nextSeq,
		Pending: true,
	}
	nb.nextSeq++
	nb.byTitle[titleKey(title)] = n
	nb.byPath[rel] = titleKey(title)
	return n, nil
}

// Rename moves the underlying file to newTitle (same directory, same
// extension) and updates both mappings atomically with respect to the
// single-writer discipline.
func (nb *Notebook) Rename(oldTitle, newTitle string) (*models.Note, error) {
	if !validTitle(newTitle) {
		return nil, fmt.Errorf("notebook: rename to %q: %w", newTitle, apperr.ErrInvalidTitle)
	}
	n, ok := nb.byTitle[titleKey(oldTitle)]
	if !ok {
		return nil, fmt.Errorf("notebook: rename %q: %w", oldTitle, apperr.ErrNotFound)
	}
	if other, ok := nb.byTitle[titleKey(newTitle)]; ok && other != n {
		return nil, fmt.Errorf("notebook: rename %q to %q: %w", oldTitle, newTitle, apperr.ErrTitleConflict)
	}

	oldRel := nb.rel(n)
	newRel := filepath.Join(filepath.Dir(oldRel), newTitle+n.Ext)
	if newRel == oldRel {
		n.Title = newTitle // case-only change of the in-memory title
		return n, nil
	}
	if !n.Pending {
		if err := nb.store.Move(oldRel, newRel); err != nil {
			return nil, err
		}
	}

	delete(nb.byPath, oldRel)
	delete(nb.byTitle, titleKey(oldTitle))
	n.Title = newTitle
	n.Path = filepath.Join(nb.store.Root(), newRel)
	nb.byTitle[titleKey(newTitle)] = n
	nb.byPath[newRel] = titleKey(newTitle)
	return n, nil
}

// Remove deletes the underlying file and drops the entry. File deletion is
// irreversible; callers confirm destructive intent before calling.
func (nb *Notebook) Remove(title string) error {
	n, ok := nb.byTitle[titleKey(title)]
	if !ok {
		return fmt.Errorf("notebook: remove %q: %w", title, apperr.ErrNotFound)
	}
	if !n.Pending {
		if err := nb.store.Delete(nb.rel(n)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	nb.drop(n)
	return nil
}

// Reconcile refreshes a single entry after an external edit. A vanished
// file drops the entry; changed content refreshes the cached snippet and
// metadata. Identity (path, title) is untouched unless the caller used
// Rename.
func (nb *Notebook) Reconcile(title string) error {
	n, ok := nb.byTitle[titleKey(title)]
	if !ok {
		return fmt.Errorf("notebook: reconcile %q: %w", title, apperr.ErrNotFound)
	}
	rel := nb.rel(n)
	meta, _, err := nb.store.Stat(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			nb.logger.Debug("reconcile: file gone, dropping entry", slog.String("path", rel))
			nb.drop(n)
			return nil
		}
		return err
	}
	data, err := nb.store.Read(rel)
	if err != nil {
		return err
	}
	if cs := checksum(data); cs != n.Checksum {
		n.Checksum = cs
		n.Snippet = snippet.Extract(data)
	}
	n.ModTime = meta.ModTime
	n.Pending = false
	return nil
}

// Abandon drops a pending or freshly created entry whose edit was aborted,
// removing a zero-byte file if the editor left one behind. Existing notes
// that were merely emptied are never passed here.
func (nb *Notebook) Abandon(title string) error {
	n, ok := nb.byTitle[titleKey(title)]
	if !ok {
		return fmt.Errorf("notebook: abandon %q: %w", title, apperr.ErrNotFound)
	}
	rel := nb.rel(n)
	if _, size, err := nb.store.Stat(rel); err == nil && size == 0 {
		if delErr := nb.store.Delete(rel); delErr != nil {
			nb.logger.Warn("abandon: delete empty file failed", slog.String("path", rel), slog.String("error", delErr.Error()))
		}
	}
	nb.drop(n)
	return nil
}

// Notes returns the catalog snapshot in scan/insert order.
func (nb *Notebook) Notes() []*models.Note {
	out := make([]*models.Note, 0, len(nb.byTitle))
	for _, n := range nb.byTitle {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Len returns the number of catalogued notes, pending entries included.
func (nb *Notebook) Len() int {
	return len(nb.byTitle)
}

// ExternalUpsert applies a watcher-observed create or write for rel.
// Must be called from the single writer.
func (nb *Notebook) ExternalUpsert(rel string) {
	meta, _, err := nb.store.Stat(rel)
	if err != nil {
		return
	}
	data, err := nb.store.Read(rel)
	if err != nil {
		nb.logger.Warn("external upsert: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	nb.upsert(rel, meta.ModTime, data)
}

// ExternalRemove applies a watcher-observed deletion for rel.
func (nb *Notebook) ExternalRemove(rel string) {
	if key, ok := nb.byPath[rel]; ok {
		delete(nb.byPath, rel)
		delete(nb.byTitle, key)
	}
}

// Sweep drops entries whose files have vanished, without rescanning the
// tree. Used after external renames, where the removal event carries only
// the old path. Pending entries are kept; they have no file yet.
func (nb *Notebook) Sweep() {
	for rel, key := range nb.byPath {
		n := nb.byTitle[key]
		if n.Pending {
			continue
		}
		if _, _, err := nb.store.Stat(rel); errors.Is(err, os.ErrNotExist) {
			nb.logger.Debug("sweep: removed stale entry", slog.String("path", rel))
			delete(nb.byPath, rel)
			delete(nb.byTitle, key)
		}
	}
}
