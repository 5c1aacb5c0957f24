package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
)

// ExecLauncher launches the configured editor command as a child process
// attached to the terminal. The command may carry arguments ("code -w");
// the note path is appended last.
type ExecLauncher struct {
	name string
	args []string
}

// NewExecLauncher splits command into executable and leading arguments.
func NewExecLauncher(command string) (*ExecLauncher, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("session: empty editor command: %w", apperr.ErrEditorLaunch)
	}
	return &ExecLauncher{name: fields[0], args: fields[1:]}, nil
}

// Cmd builds the exec.Cmd for editing path. Exposed so the TUI can run it
// through tea.ExecProcess, which releases the terminal first.
func (l *ExecLauncher) Cmd(path string) *exec.Cmd {
	return exec.Command(l.name, append(append([]string{}, l.args...), path)...)
}

// Launch runs the editor and waits for it to exit. The exit status is not
// interpreted: a non-zero exit is still a completed edit. Only a failure to
// spawn at all (missing executable, permission denied) is an error.
func (l *ExecLauncher) Launch(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, l.name, append(append([]string{}, l.args...), path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return fmt.Errorf("session: launch %s: %v: %w", l.name, err, apperr.ErrEditorLaunch)
	}
	return nil
}
