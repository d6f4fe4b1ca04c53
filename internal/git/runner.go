// Package git provides a thin wrapper around the git command line and go-git
// for the operations the sync workflow needs.
package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	gserrors "gitsync.dev/gitsync/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// Runner executes git subcommands in a fixed working directory.
// Implementations must never depend on the process working directory.
type Runner interface {
	// Run executes git with args and returns trimmed stdout
	Run(ctx context.Context, args ...string) (string, error)
	// RunRaw executes git with args and returns stdout untouched
	RunRaw(ctx context.Context, args ...string) (string, error)
	// WorkingDir is the directory every command runs in
	WorkingDir() string
}

// DebugLogger receives a line per git invocation.
type DebugLogger interface {
	Debug(format string, args ...interface{})
}

// CommandRunner handles execution of git commands
type CommandRunner struct {
	workingDir string
	env        []string
	logger     DebugLogger
}

// NewCommandRunner creates a new CommandRunner rooted at workingDir
func NewCommandRunner(workingDir string) *CommandRunner {
	return &CommandRunner{
		workingDir: workingDir,
		// Messages are parsed (rerere markers, push rejections), so pin the locale.
		env: []string{"LC_ALL=C", "GIT_TERMINAL_PROMPT=0"},
	}
}

// WithLogger returns a copy of the runner that logs every invocation
func (r *CommandRunner) WithLogger(logger DebugLogger) *CommandRunner {
	clone := *r
	clone.logger = logger
	return &clone
}

// WithEnv returns a copy of the runner with extra environment variables
func (r *CommandRunner) WithEnv(env ...string) *CommandRunner {
	clone := *r
	clone.env = append(append([]string{}, r.env...), env...)
	return &clone
}

// WorkingDir returns the directory commands run in
func (r *CommandRunner) WorkingDir() string {
	return r.workingDir
}

// Run executes a git command with the given context and returns the trimmed output
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	return r.runInternal(ctx, true, args...)
}

// RunRaw executes a git command and returns the raw output (no trimming)
func (r *CommandRunner) RunRaw(ctx context.Context, args ...string) (string, error) {
	return r.runInternal(ctx, false, args...)
}

func (r *CommandRunner) runInternal(ctx context.Context, trim bool, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	if r.logger != nil {
		r.logger.Debug("git %s", strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	cmd.Env = append(os.Environ(), r.env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", gserrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), ctx.Err())
		}
		// Exit code 1 with no output is how git reports "nothing" (config --get on a
		// missing key, rev-parse --verify -q on a missing ref).
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 &&
			strings.TrimSpace(stdout.String()) == "" && strings.TrimSpace(stderr.String()) == "" {
			return "", nil
		}
		return "", gserrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), err)
	}
	if trim {
		return strings.TrimSpace(stdout.String()), nil
	}
	return stdout.String(), nil
}

// Lines splits command output into non-empty lines
func Lines(output string) []string {
	output = strings.TrimRight(output, "\n")
	if strings.TrimSpace(output) == "" {
		return []string{}
	}
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
