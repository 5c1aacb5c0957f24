package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Notes   NotesConfig       `yaml:"notes"`
	Editor  EditorConfig      `yaml:"editor"`
	Watcher WatcherConfig     `yaml:"watcher"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	return c.Editor.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// LogFile receives the structured log; the TUI owns the terminal, so
	// logging never goes to stdout. Empty means a default under the user
	// cache directory.
	LogFile string `yaml:"log_file"`
}

// NotesConfig describes the notes directory and which files count as notes.
type NotesConfig struct {
	Dir string `yaml:"dir"`
	// Extensions is the allow-list of note file extensions; files with any
	// other extension are invisible to the index.
	Extensions []string `yaml:"extensions"`
	// DefaultExtension is used for notes created from an unmatched query.
	DefaultExtension string `yaml:"default_extension"`
	// Exclude lists directory names skipped at every level of the scan.
	Exclude []string `yaml:"exclude"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Extensions, validation.Required, validation.Each(validation.By(dotExtension))),
		validation.Field(&c.DefaultExtension, validation.Required, validation.By(dotExtension)),
	); err != nil {
		return err
	}
	for _, e := range c.Extensions {
		if e == c.DefaultExtension {
			return nil
		}
	}
	return fmt.Errorf("notes: default_extension %q is not in extensions", c.DefaultExtension)
}

func dotExtension(value interface{}) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, ".") || len(s) < 2 {
		return fmt.Errorf("must be a file extension starting with a dot")
	}
	return nil
}

// EditorConfig holds the external editor command. An empty command falls
// back to $VISUAL, then $EDITOR, then vi at runtime.
type EditorConfig struct {
	Command string `yaml:"command"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return nil
}

// Resolve returns the effective editor command.
func (c *EditorConfig) Resolve() string {
	if c.Command != "" {
		return c.Command
	}
	if v := os.Getenv("VISUAL"); v != "" {
		return v
	}
	if v := os.Getenv("EDITOR"); v != "" {
		return v
	}
	return "vi"
}

// WatcherConfig controls the optional external-change watcher.
type WatcherConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Notes: NotesConfig{
			Dir:              filepath.Join(home, "notes"),
			Extensions:       []string{".txt", ".text", ".md", ".markdown", ".rst", ".org"},
			DefaultExtension: ".txt",
			Exclude:          []string{".git"},
		},
		Watcher: WatcherConfig{
			Enabled: true,
		},
	}
}
