// Package finder is the caller-facing surface consumed by the TUI layer:
// query filtering, note opening and creation, deletion, and application of
// externally observed changes.
package finder

import (
	"context"
	"log/slog"
	"os/exec"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notebook"
	"github.com/starford/ansuz/internal/search"
	"github.com/starford/ansuz/internal/session"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/watcher"
)

// Service coordinates the notebook, search engine, and edit session. All
// methods must be called from the single interactive control thread.
type Service struct {
	nb       *notebook.Notebook
	sess     *session.Session
	launcher *session.ExecLauncher
	logger   *slog.Logger
}

// New builds the service and its edit session over an already scanned
// notebook.
func New(nb *notebook.Notebook, store storage.Provider, editorCommand, defaultExt string, logger *slog.Logger) (*Service, error) {
	launcher, err := session.NewExecLauncher(editorCommand)
	if err != nil {
		return nil, err
	}
	return &Service{
		nb:       nb,
		sess:     session.New(nb, store, launcher, defaultExt, logger),
		launcher: launcher,
		logger:   logger,
	}, nil
}

// Query recomputes the filtered, ranked view for the current query string.
func (s *Service) Query(q string) search.Result {
	return search.Filter(s.nb.Notes(), q)
}

// Len returns the catalog size.
func (s *Service) Len() int {
	return s.nb.Len()
}

// Resolve maps a submitted title (selection or new title) to its target
// note, registering a pending create when nothing matches.
func (s *Service) Resolve(title string) (*models.Note, bool, error) {
	return s.sess.Resolve(title)
}

// EditorCmd builds the editor command for the TUI to run via
// tea.ExecProcess.
func (s *Service) EditorCmd(path string) *exec.Cmd {
	return s.launcher.Cmd(path)
}

// Finish reconciles after the editor returned.
func (s *Service) Finish(title string, created bool) error {
	return s.sess.Finish(title, created)
}

// FailLaunch rolls back a resolve whose editor never spawned.
func (s *Service) FailLaunch(n *models.Note, created bool) {
	s.logger.Warn("editor launch failed", slog.String("title", n.Title))
	s.sess.FailLaunch(n, created)
}

// Open runs the full edit flow synchronously. Headless callers and tests
// use this; the TUI splits the steps around tea.ExecProcess.
func (s *Service) Open(ctx context.Context, title string) error {
	return s.sess.Open(ctx, title)
}

// Delete removes a note and its file. Irreversible; the TUI confirms
// destructive intent first.
func (s *Service) Delete(title string) error {
	return s.nb.Remove(title)
}

// Rename changes a note's title and filename.
func (s *Service) Rename(oldTitle, newTitle string) (*models.Note, error) {
	return s.nb.Rename(oldTitle, newTitle)
}

// Apply folds an externally observed filesystem change into the notebook.
// Called from the TUI update loop, preserving the single-writer discipline.
func (s *Service) Apply(ev watcher.Event) {
	switch ev.Op {
	case watcher.Upserted:
		s.nb.ExternalUpsert(ev.Path)
	case watcher.Removed:
		s.nb.ExternalRemove(ev.Path)
	case watcher.Swept:
		s.nb.Sweep()
	}
}
