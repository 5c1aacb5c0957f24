package tui

import (
	"errors"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/ansuz/internal/models"
)

// editorFinished is sent when the external editor process exits or fails
// to spawn.
type editorFinished struct {
	note    *models.Note
	created bool
	err     error
}

// editNote suspends the TUI and hands the terminal to the editor process.
// bubbletea restores the terminal before the child starts and re-enters
// the alt screen after it exits.
func editNote(cmd *exec.Cmd, n *models.Note, created bool) tea.Cmd {
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinished{note: n, created: created, err: err}
	})
}

// launchFailed reports whether the editor never ran at all. A non-zero
// editor exit comes back as *exec.ExitError and is still a completed edit;
// only spawn failures count.
func launchFailed(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *exec.ExitError
	return !errors.As(err, &exitErr)
}
