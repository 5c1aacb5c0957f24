package finder_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/finder"
	"github.com/starford/ansuz/internal/testutil"
	"github.com/starford/ansuz/internal/watcher"
)

func newService(t *testing.T, files map[string]string) (string, *finder.Service) {
	t.Helper()
	dir, store, nb := testutil.TestNotebook(t, files)
	svc, err := finder.New(nb, store, "true", ".txt", testutil.Logger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return dir, svc
}

func TestQueryFiltersCatalog(t *testing.T) {
	_, svc := newService(t, map[string]string{
		"apple.txt":       "a\n",
		"application.txt": "b\n",
		"banana.txt":      "c\n",
	})

	r := svc.Query("app")
	if len(r.Notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(r.Notes))
	}
	if r.Notes[0].Title != "apple" || r.Notes[1].Title != "application" {
		t.Errorf("order = [%s %s]", r.Notes[0].Title, r.Notes[1].Title)
	}
	if r.Creatable == false {
		t.Error("partial match should still offer create")
	}
	if svc.Len() != 3 {
		t.Errorf("Len = %d", svc.Len())
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	dir, svc := newService(t, map[string]string{"gone.txt": "x\n"})

	if err := svc.Delete("gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Error("file should be deleted")
	}
	if len(svc.Query("").Notes) != 0 {
		t.Error("catalog should be empty")
	}
	if err := svc.Delete("gone"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestRename(t *testing.T) {
	dir, svc := newService(t, map[string]string{"draft.txt": "body\n"})

	n, err := svc.Rename("draft", "final")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if n.Title != "final" {
		t.Errorf("Title = %q", n.Title)
	}
	if _, err := os.Stat(filepath.Join(dir, "final.txt")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
}

func TestApplyExternalEvents(t *testing.T) {
	dir, svc := newService(t, map[string]string{"a.txt": "a\n"})

	// A file appears outside the application.
	testutil.WriteNote(t, dir, "b.txt", "b\n")
	svc.Apply(watcher.Event{Op: watcher.Upserted, Path: "b.txt"})
	if svc.Len() != 2 {
		t.Fatalf("Len after upsert = %d, want 2", svc.Len())
	}

	// It changes content.
	testutil.WriteNote(t, dir, "b.txt", "brand new\n")
	svc.Apply(watcher.Event{Op: watcher.Upserted, Path: "b.txt"})
	r := svc.Query("b")
	if len(r.Notes) != 1 || r.Notes[0].Snippet != "brand new" {
		t.Errorf("snippet not refreshed: %+v", r.Notes)
	}

	// It disappears.
	if err := os.Remove(filepath.Join(dir, "b.txt")); err != nil {
		t.Fatal(err)
	}
	svc.Apply(watcher.Event{Op: watcher.Removed, Path: "b.txt"})
	if svc.Len() != 1 {
		t.Errorf("Len after remove = %d, want 1", svc.Len())
	}

	// A sweep drops entries whose files vanished without a remove event.
	if err := os.Remove(filepath.Join(dir, "a.txt")); err != nil {
		t.Fatal(err)
	}
	svc.Apply(watcher.Event{Op: watcher.Swept})
	if svc.Len() != 0 {
		t.Errorf("Len after sweep = %d, want 0", svc.Len())
	}
}
