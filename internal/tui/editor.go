package tui

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

// ResolveEditor picks the editor the way git does: GIT_EDITOR, then the
// configured core.editor, then EDITOR, then vi
func ResolveEditor(coreEditor string) string {
	if editor := os.Getenv("GIT_EDITOR"); editor != "" {
		return editor
	}
	if coreEditor != "" {
		return coreEditor
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "vi"
}

// OpenEditor opens editor on a temporary file holding initialContent and
// returns what the user saved
func OpenEditor(editor, initialContent, filenamePattern string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp("", filenamePattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	if _, err := tmpFile.WriteString(initialContent); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	// editor may carry its own arguments ("code --wait"), so it goes through the shell
	cmd := exec.Command("sh", "-c", editor+" "+shellquote.Join(tmpFile.Name()))
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor exited with error: %w", err)
	}

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}

	return string(content), nil
}
