package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const fallbackEditor = "vi"

// ExternalEditor edits text in the user's editor via a temporary file.
type ExternalEditor struct {
	command []string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// NewExternalEditor resolves the editor command from configured, then
// $VISUAL, then $EDITOR, then vi. The command may include arguments.
func NewExternalEditor(configured string) *ExternalEditor {
	command := configured
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if command != "" {
			break
		}
		command = os.Getenv(env)
	}
	if strings.TrimSpace(command) == "" {
		command = fallbackEditor
	}

	return &ExternalEditor{
		command: strings.Fields(command),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// Command returns the editor program and its arguments.
func (e *ExternalEditor) Command() []string {
	return e.command
}

// Edit writes initial to a temporary .sql file, waits for the editor to
// exit and returns the file's new content.
func (e *ExternalEditor) Edit(ctx context.Context, initial string) (string, error) {
	if len(e.command) == 0 {
		return "", errors.New("no editor command")
	}

	f, err := os.CreateTemp("", "suiteql-*.sql")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	if initial != "" && !strings.HasSuffix(initial, "\n") {
		initial += "\n"
	}
	if _, err := f.WriteString(initial); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	args := append(append([]string{}, e.command[1:]...), path)
	cmd := exec.CommandContext(ctx, e.command[0], args...)
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", e.command[0], err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited query: %w", err)
	}
	return string(content), nil
}
