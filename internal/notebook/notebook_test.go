package notebook_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/notebook"
	"github.com/starford/ansuz/internal/testutil"
)

func TestScanBuildsCatalog(t *testing.T) {
	_, _, nb := testutil.TestNotebook(t, map[string]string{
		"apple.txt":          "crunchy\n",
		"sub/banana.md":      "# Banana\nyellow\n",
		".git/ignored.txt":   "never indexed\n",
		"sub/.git/lost.txt":  "never indexed either\n",
		"sub/picture.png":    "not a note",
		"deeper/sub/kiwi.md": "green\n",
	})

	if nb.Len() != 3 {
		t.Fatalf("Len = %d, want 3", nb.Len())
	}
	for _, title := range []string{"apple", "banana", "kiwi"} {
		if _, err := nb.Lookup(title); err != nil {
			t.Errorf("Lookup(%q): %v", title, err)
		}
	}
	if _, err := nb.Lookup("ignored"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("excluded file should be invisible, got %v", err)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	_, _, nb := testutil.TestNotebook(t, map[string]string{"Grocery List.txt": "milk\n"})

	n, err := nb.Lookup("grocery list")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if n.Title != "Grocery List" {
		t.Errorf("Title = %q, want original casing preserved", n.Title)
	}
}

func TestScanSetsSnippet(t *testing.T) {
	_, _, nb := testutil.TestNotebook(t, map[string]string{"idea.md": "# Big Idea\n\nbuild a note finder\n"})

	n, err := nb.Lookup("idea")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if n.Snippet != "Big Idea" {
		t.Errorf("Snippet = %q", n.Snippet)
	}
}

func TestTitleCollisionLaterWins(t *testing.T) {
	_, _, nb := testutil.TestNotebook(t, map[string]string{
		"Apple.txt":     "first\n",
		"sub/apple.md":  "second\n",
		"unrelated.txt": "x\n",
	})

	// Both files normalise to the title key "apple"; exactly one survives
	// and the scan does not fail.
	if nb.Len() != 2 {
		t.Fatalf("Len = %d, want 2", nb.Len())
	}
	if _, err := nb.Lookup("apple"); err != nil {
		t.Errorf("Lookup after collision: %v", err)
	}
}

func TestCreateRegistersPending(t *testing.T) {
	dir, _, nb := testutil.TestNotebook(t, nil)

	n, err := nb.Create("Grocery List", ".txt")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !n.Pending {
		t.Error("created note should be pending")
	}
	if want := filepath.Join(dir, "Grocery List.txt"); n.Path != want {
		t.Errorf("Path = %q, want %q", n.Path, want)
	}
	if _, statErr := os.Stat(n.Path); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("Create must not touch the disk")
	}

	if _, err := nb.Create("grocery list", ".md"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate create = %v, want ErrAlreadyExists", err)
	}
}

func TestCreateRejectsInvalidTitles(t *testing.T) {
	_, _, nb := testutil.TestNotebook(t, nil)

	for _, title := range []string{"", "   ", "a/b", `a\b`, ".", ".."} {
		if _, err := nb.Create(title, ".txt"); !errors.Is(err, apperr.ErrInvalidTitle) {
			t.Errorf("Create(%q) = %v, want ErrInvalidTitle", title, err)
		}
	}
}

func TestRenameMovesFileAndMappings(t *testing.T) {
	dir, store, nb := testutil.TestNotebook(t, map[string]string{"Old Title.txt": "contents survive\n"})

	n, err := nb.Rename("Old Title", "New Title")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if n.Title != "New Title" {
		t.Errorf("Title = %q", n.Title)
	}
	if want := filepath.Join(dir, "New Title.txt"); n.Path != want {
		t.Errorf("Path = %q, want %q", n.Path, want)
	}

	if _, err := nb.Lookup("Old Title"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old title lookup = %v, want ErrNotFound", err)
	}
	got, err := store.Read("New Title.txt")
	if err != nil {
		t.Fatalf("read renamed file: %v", err)
	}
	if string(got) != "contents survive\n" {
		t.Errorf("content = %q", got)
	}
}

func TestRenameKeepsDirectory(t *testing.T) {
	dir, _, nb := testutil.TestNotebook(t, map[string]string{"sub/nested.md": "deep\n"})

	n, err := nb.Rename("nested", "relocated")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if want := filepath.Join(dir, "sub", "relocated.md"); n.Path != want {
		t.Errorf("Path = %q, want %q", n.Path, want)
	}
}

func TestRenameConflict(t *testing.T) {
	_, _, nb := testutil.TestNotebook(t, map[string]string{
		"one.txt": "1\n",
		"two.txt": "2\n",
	})

	if _, err := nb.Rename("one", "Two"); !errors.Is(err, apperr.ErrTitleConflict) {
		t.Errorf("Rename = %v, want ErrTitleConflict", err)
	}
	if _, err := nb.Rename("missing", "anything"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Rename = %v, want ErrNotFound", err)
	}
}

func TestRemoveDeletesFile(t *testing.T) {
	dir, _, nb := testutil.TestNotebook(t, map[string]string{"doomed.txt": "bye\n"})

	if err := nb.Remove("doomed"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := nb.Lookup("doomed"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Lookup = %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "doomed.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Error("file should be deleted")
	}

	if err := nb.Remove("doomed"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second Remove = %v, want ErrNotFound", err)
	}
}

func TestReconcileRefreshesContent(t *testing.T) {
	dir, _, nb := testutil.TestNotebook(t, map[string]string{"log.txt": "first line\n"})

	testutil.WriteNote(t, dir, "log.txt", "rewritten line\nmore\n")
	if err := nb.Reconcile("log"); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	n, _ := nb.Lookup("log")
	if n.Snippet != "rewritten line" {
		t.Errorf("Snippet = %q", n.Snippet)
	}
}

func TestReconcileDropsVanishedEntry(t *testing.T) {
	dir, _, nb := testutil.TestNotebook(t, map[string]string{"gone.txt": "x\n"})

	if err := os.Remove(filepath.Join(dir, "gone.txt")); err != nil {
		t.Fatal(err)
	}
	if err := nb.Reconcile("gone"); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if _, err := nb.Lookup("gone"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Lookup = %v, want ErrNotFound", err)
	}
}

func TestAbandonRemovesEmptyFile(t *testing.T) {
	dir, _, nb := testutil.TestNotebook(t, nil)

	if _, err := nb.Create("draft", ".txt"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Editor created the file but wrote nothing.
	testutil.WriteNote(t, dir, "draft.txt", "")

	if err := nb.Abandon("draft"); err != nil {
		t.Fatalf("Abandon: %v", err)
	}
	if _, err := nb.Lookup("draft"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Lookup = %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "draft.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Error("zero-byte file should be pruned")
	}
}

func TestNotesScanOrderDeterministic(t *testing.T) {
	_, _, nb := testutil.TestNotebook(t, map[string]string{
		"c.txt": "c\n",
		"a.txt": "a\n",
		"b.txt": "b\n",
	})

	first := titles(nb)
	for i := 0; i < 5; i++ {
		if got := titles(nb); got != first {
			t.Fatalf("Notes order changed between calls: %q vs %q", got, first)
		}
	}
}

func TestExternalChanges(t *testing.T) {
	dir, _, nb := testutil.TestNotebook(t, map[string]string{"seed.txt": "s\n"})

	// A file appeared outside the app.
	testutil.WriteNote(t, dir, "outside.txt", "external content\n")
	nb.ExternalUpsert("outside.txt")
	if n, err := nb.Lookup("outside"); err != nil || n.Snippet != "external content" {
		t.Errorf("after ExternalUpsert: note %+v err %v", n, err)
	}

	// It vanished again.
	if err := os.Remove(filepath.Join(dir, "outside.txt")); err != nil {
		t.Fatal(err)
	}
	nb.ExternalRemove("outside.txt")
	if _, err := nb.Lookup("outside"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("after ExternalRemove: %v", err)
	}

	// A rename observed only on its old path: sweep drops the stale entry
	// but keeps pending ones.
	if _, err := nb.Create("pending draft", ".txt"); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "seed.txt")); err != nil {
		t.Fatal(err)
	}
	nb.Sweep()
	if _, err := nb.Lookup("seed"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("sweep should drop stale entry, got %v", err)
	}
	if _, err := nb.Lookup("pending draft"); err != nil {
		t.Errorf("sweep must keep pending entries, got %v", err)
	}
}

func titles(nb *notebook.Notebook) string {
	var b strings.Builder
	for _, n := range nb.Notes() {
		b.WriteString(n.Title)
		b.WriteString(",")
	}
	return b.String()
}
