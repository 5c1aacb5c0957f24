package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Flags override file values.
	if dir := cmd.String("notes-dir"); dir != "" {
		cfg.Notes.Dir = dir
	}
	if editor := cmd.String("editor"); editor != "" {
		cfg.Editor.Command = editor
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return dir + "/ansuz/config.yaml"
}

func main() {
	cmd := &cli.Command{
		Name:   "ansuz",
		Usage:  "Find or create plain-text notes from the terminal, as fast as you can type",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   defaultConfigPath(),
				Sources: cli.EnvVars("ANSUZ_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "notes-dir",
				Aliases: []string{"n"},
				Usage:   "Notes directory (overrides config)",
				Sources: cli.EnvVars("ANSUZ_NOTES_DIR"),
			},
			&cli.StringFlag{
				Name:    "editor",
				Aliases: []string{"e"},
				Usage:   "Editor command (overrides config)",
				Sources: cli.EnvVars("ANSUZ_EDITOR"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
