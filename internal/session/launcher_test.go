package session

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

func TestNewExecLauncherEmpty(t *testing.T) {
	if _, err := NewExecLauncher("   "); !errors.Is(err, apperr.ErrEditorLaunch) {
		t.Fatalf("NewExecLauncher = %v, want ErrEditorLaunch", err)
	}
}

func TestExecLauncherCmd(t *testing.T) {
	l, err := NewExecLauncher("code -w")
	if err != nil {
		t.Fatalf("NewExecLauncher: %v", err)
	}
	cmd := l.Cmd("/tmp/note.txt")
	got := cmd.Args
	if len(got) != 3 || got[1] != "-w" || got[2] != "/tmp/note.txt" {
		t.Errorf("Args = %v", got)
	}
}

func TestExecLauncherNonZeroExitIsNotAnError(t *testing.T) {
	l, err := NewExecLauncher("false")
	if err != nil {
		t.Fatalf("NewExecLauncher: %v", err)
	}
	if err := l.Launch(context.Background(), "/dev/null"); err != nil {
		t.Errorf("Launch = %v, non-zero exit should not be an error", err)
	}
}

func TestExecLauncherMissingExecutable(t *testing.T) {
	l, err := NewExecLauncher("ansuz-no-such-editor-zz")
	if err != nil {
		t.Fatalf("NewExecLauncher: %v", err)
	}
	if err := l.Launch(context.Background(), "/dev/null"); !errors.Is(err, apperr.ErrEditorLaunch) {
		t.Errorf("Launch = %v, want ErrEditorLaunch", err)
	}
}
