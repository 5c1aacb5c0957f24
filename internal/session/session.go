// Package session orchestrates a single selection action: resolve the
// target note, hand the terminal to the external editor, reconcile the
// notebook when it returns.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notebook"
	"github.com/starford/ansuz/internal/storage"
)

// State identifies where a session is in its lifecycle.
type State int

const (
	Idle State = iota
	Resolving
	Editing
	Reconciling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case Editing:
		return "editing"
	case Reconciling:
		return "reconciling"
	}
	return "unknown"
}

// Launcher runs the external editor on a note file and blocks until it
// exits. The editor owns the terminal for the duration; there is no
// timeout, the user controls it.
type Launcher interface {
	Launch(ctx context.Context, path string) error
}

// Session drives the Idle → Resolving → Editing → Reconciling → Idle state
// machine over the notebook.
type Session struct {
	nb         *notebook.Notebook
	store      storage.Provider
	launcher   Launcher
	defaultExt string
	logger     *slog.Logger
	state      State
}

// New creates a session over the given notebook.
func New(nb *notebook.Notebook, store storage.Provider, launcher Launcher, defaultExt string, logger *slog.Logger) *Session {
	return &Session{
		nb:         nb,
		store:      store,
		launcher:   launcher,
		defaultExt: defaultExt,
		logger:     logger,
		state:      Idle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Resolve maps a submitted title to its target note. An existing title
// resolves to that note; an unmatched one registers a pending create with
// the default extension. created reports which branch was taken, so Finish
// can apply the abandoned-create policy. On success the session moves to
// Editing: the caller is expected to hand the terminal to the editor next.
func (s *Session) Resolve(title string) (n *models.Note, created bool, err error) {
	s.state = Resolving
	defer func() {
		if err != nil {
			s.state = Idle
		} else {
			s.state = Editing
		}
	}()

	n, err = s.nb.Lookup(title)
	if err == nil {
		return n, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}
	n, err = s.nb.Create(title, s.defaultExt)
	if err != nil {
		return nil, false, err
	}
	return n, true, nil
}

// FailLaunch aborts a session whose editor never spawned: a pending create
// is rolled back and the session returns to Idle with the notebook
// otherwise unmutated.
func (s *Session) FailLaunch(n *models.Note, created bool) {
	if created {
		_ = s.nb.Abandon(n.Title)
	}
	s.state = Idle
}

// Finish reconciles the notebook after the editor returns. A newly created
// note that was never written (missing or empty file) is pruned rather than
// left as a zero-byte file; existing notes are reconciled in place even if
// the user emptied them.
func (s *Session) Finish(title string, created bool) error {
	s.state = Reconciling
	defer func() { s.state = Idle }()

	n, err := s.nb.Lookup(title)
	if err != nil {
		return err
	}
	if created {
		rel, relErr := filepath.Rel(s.store.Root(), n.Path)
		if relErr != nil {
			rel = n.Path
		}
		_, size, statErr := s.store.Stat(rel)
		if errors.Is(statErr, os.ErrNotExist) || (statErr == nil && size == 0) {
			s.logger.Debug("edit abandoned, pruning entry", slog.String("title", title))
			return s.nb.Abandon(title)
		}
		if statErr != nil {
			return statErr
		}
	}
	return s.nb.Reconcile(title)
}

// Open runs the whole state machine synchronously: resolve, edit, finish.
// The TUI splits these steps instead so the terminal can be released to the
// editor process; Open serves headless callers and tests.
func (s *Session) Open(ctx context.Context, title string) error {
	n, created, err := s.Resolve(title)
	if err != nil {
		return fmt.Errorf("session: resolve %q: %w", title, err)
	}
	if err := s.launcher.Launch(ctx, n.Path); err != nil {
		s.FailLaunch(n, created)
		return fmt.Errorf("session: edit %q: %w", title, err)
	}
	return s.Finish(n.Title, created)
}
