// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/finder"
	"github.com/starford/ansuz/internal/notebook"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/tui"
	"github.com/starford/ansuz/internal/watcher"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// The TUI owns the terminal, so the structured JSON log goes to a file.
	logPath := cfg.App.LogFile
	if logPath == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = os.TempDir()
		}
		logPath = filepath.Join(cacheDir, "ansuz", "ansuz.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("notes_dir", cfg.Notes.Dir),
		slog.String("default_extension", cfg.Notes.DefaultExtension),
		slog.Bool("watcher", cfg.Watcher.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the notes directory exists.
	if err := os.MkdirAll(cfg.Notes.Dir, 0o755); err != nil {
		return fmt.Errorf("create notes dir: %w", err)
	}

	// Initialize storage. Anything wrong with the root itself is fatal:
	// there is nothing to index.
	store, err := storage.NewFS(cfg.Notes.Dir, cfg.Notes.Extensions, cfg.Notes.Exclude)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Build the catalog with a single full scan; everything after this is
	// incremental.
	nb := notebook.New(store, logger)
	if err := nb.Scan(); err != nil {
		return fmt.Errorf("init notebook: %w", err)
	}

	svc, err := finder.New(nb, store, cfg.Editor.Resolve(), cfg.Notes.DefaultExtension, logger)
	if err != nil {
		return fmt.Errorf("init finder: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)

	// Optional external-change watcher. It only emits events; the TUI
	// update loop applies them, keeping the notebook single-writer.
	var events chan watcher.Event
	if cfg.Watcher.Enabled {
		events = make(chan watcher.Event, 16)
		g.Go(func() error {
			return watcher.Watch(gCtx, store, logger, func(ev watcher.Event) {
				select {
				case events <- ev:
				case <-gCtx.Done():
				}
			})
		})
	}

	prog := tea.NewProgram(tui.New(svc, events, logger), tea.WithAltScreen(), tea.WithContext(gCtx))

	g.Go(func() error {
		defer cancel()
		if _, err := prog.Run(); err != nil {
			return fmt.Errorf("tui error: %w", err)
		}
		return nil
	})

	// Translate termination signals into a clean TUI shutdown.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			prog.Quit()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Session ended")
	return nil
}
