package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
)

// ParkingBranch is the reserved local branch that holds work started before a
// feature branch was named, and where a retired feature branch lands.
const ParkingBranch = "_parking_"

// ParkingQuarantineBranch is where an unaccounted-for parking branch is moved
// instead of being deleted.
const ParkingQuarantineBranch = "_parking_OLD_"

// Repository exposes the git operations used by the workflow, each executed
// through a Runner bound to the repository's working directory.
type Repository struct {
	runner Runner
}

// NewRepository wraps a Runner
func NewRepository(runner Runner) *Repository {
	return &Repository{runner: runner}
}

// Open finds the repository containing dir and returns a Repository whose
// commands all run at its root.
func Open(dir string, logger DebugLogger) (*Repository, error) {
	root, err := FindRepoRoot(dir)
	if err != nil {
		return nil, err
	}
	runner := NewCommandRunner(root)
	if logger != nil {
		runner = runner.WithLogger(logger)
	}
	return NewRepository(runner), nil
}

// FindRepoRoot returns the root of the worktree that contains dir
func FindRepoRoot(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	return worktree.Filesystem.Root(), nil
}

// Runner returns the underlying command runner
func (r *Repository) Runner() Runner {
	return r.runner
}

// Dir returns the working directory of the repository
func (r *Repository) Dir() string {
	return r.runner.WorkingDir()
}

// Run executes an arbitrary git subcommand
func (r *Repository) Run(ctx context.Context, args ...string) (string, error) {
	return r.runner.Run(ctx, args...)
}

// CurrentBranch returns the checked out branch, or ok=false when HEAD is detached.
func (r *Repository) CurrentBranch(ctx context.Context) (string, bool, error) {
	out, err := r.runner.Run(ctx, "symbolic-ref", "-q", "--short", "HEAD")
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if out == "" {
		return "", false, nil
	}
	return out, true, nil
}

// RevParse resolves a revision to a full sha. A missing revision yields "".
func (r *Repository) RevParse(ctx context.Context, rev string) (string, error) {
	out, err := r.runner.Run(ctx, "rev-parse", "-q", "--verify", rev+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	return out, nil
}

// RevList returns up to limit commits reachable from to but not from from.
// A limit of 0 means no limit.
func (r *Repository) RevList(ctx context.Context, from, to string, limit int) ([]string, error) {
	args := []string{"rev-list"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("--max-count=%d", limit))
	}
	args = append(args, from+".."+to, "--")
	out, err := r.runner.Run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits %s..%s: %w", from, to, err)
	}
	return Lines(out), nil
}

// CheckRefFormat validates name as a branch name
func (r *Repository) CheckRefFormat(ctx context.Context, name string) error {
	if _, err := r.runner.Run(ctx, "check-ref-format", "--branch", name); err != nil {
		return fmt.Errorf("'%s' is not a valid branch name: %w", name, err)
	}
	return nil
}

// GitDir returns the absolute path of the repository's git directory
func (r *Repository) GitDir(ctx context.Context) (string, error) {
	out, err := r.runner.Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("failed to locate git directory: %w", err)
	}
	return out, nil
}

// CommitSubject returns the first line of the message of rev
func (r *Repository) CommitSubject(ctx context.Context, rev string) (string, error) {
	out, err := r.runner.Run(ctx, "log", "-1", "--format=%s", rev, "--")
	if err != nil {
		return "", fmt.Errorf("failed to read commit message of %s: %w", rev, err)
	}
	return out, nil
}
