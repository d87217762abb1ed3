package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/evanschultz/koni/internal/app"
)

// DefaultEditor runs when neither configuration nor the environment names one.
const DefaultEditor = "vim"

// ExternalEditor runs a full-screen editor on a temporary file and returns
// what the user saved.
type ExternalEditor struct {
	Command string
	Args    []string
	TempDir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	getenv func(string) string
}

// NewExternalEditor constructs an editor attached to the process stdio.
// command and args override $VISUAL and $EDITOR when set.
func NewExternalEditor(command string, args []string) *ExternalEditor {
	return &ExternalEditor{
		Command: strings.TrimSpace(command),
		Args:    append([]string(nil), args...),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		getenv:  os.Getenv,
	}
}

// Resolve returns the program and leading arguments to run.
func (e *ExternalEditor) Resolve() (string, []string) {
	if e.Command != "" {
		return e.Command, append([]string(nil), e.Args...)
	}
	getenv := e.getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, name := range []string{"VISUAL", "EDITOR"} {
		fields := strings.Fields(getenv(name))
		if len(fields) > 0 {
			return fields[0], fields[1:]
		}
	}
	return DefaultEditor, nil
}

// Edit runs the editor to completion. A single trailing newline added by
// the editor is dropped. Failures wrap app.ErrEditor.
func (e *ExternalEditor) Edit(ctx context.Context) (string, error) {
	f, err := os.CreateTemp(e.TempDir, "koni-*.md")
	if err != nil {
		return "", fmt.Errorf("create editor file: %w: %w", app.ErrEditor, err)
	}
	path := f.Name()
	defer func() {
		_ = os.Remove(path)
	}()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close editor file: %w: %w", app.ErrEditor, err)
	}

	name, args := e.Resolve()
	cmd := exec.CommandContext(ctx, name, append(args, path)...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run editor %q: %w: %w", name, app.ErrEditor, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read editor file: %w: %w", app.ErrEditor, err)
	}
	body := strings.TrimSuffix(string(data), "\n")
	body = strings.TrimSuffix(body, "\r")
	return body, nil
}
