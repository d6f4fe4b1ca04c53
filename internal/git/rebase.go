package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gserrors "gitsync.dev/gitsync/internal/errors"
)

// Rebase rebases the current branch onto upstream. When git stops on
// conflicts the rebase is left in progress and a *RebaseConflictError
// carrying git's output is returned; the working tree is not cleaned up.
func (r *Repository) Rebase(ctx context.Context, upstream string) error {
	branch, _, _ := r.CurrentBranch(ctx)

	_, err := r.runner.Run(ctx, "rebase", upstream)
	if err == nil {
		return nil
	}
	if r.IsRebaseInProgress(ctx) {
		return gserrors.NewRebaseConflictError(branch, upstream, commandOutput(err))
	}
	return fmt.Errorf("failed to rebase %s onto %s: %w", branch, upstream, err)
}

// RebaseContinue continues an in-progress rebase
func (r *Repository) RebaseContinue(ctx context.Context) error {
	branch, _, _ := r.CurrentBranch(ctx)

	_, err := r.runner.Run(ctx, "-c", "core.editor=true", "rebase", "--continue")
	if err == nil {
		return nil
	}
	if r.IsRebaseInProgress(ctx) {
		return gserrors.NewRebaseConflictError(branch, "", commandOutput(err))
	}
	return fmt.Errorf("rebase continue failed: %w", err)
}

// IsRebaseInProgress checks if a rebase is currently in progress
func (r *Repository) IsRebaseInProgress(ctx context.Context) bool {
	// rebase-merge / rebase-apply are more reliable than REBASE_HEAD, which can linger
	gitDir, err := r.GitDir(ctx)
	if err != nil {
		return false
	}
	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, dir)); err == nil {
			return true
		}
	}
	return false
}

// commandOutput extracts git's own output from a command failure
func commandOutput(err error) string {
	var gitErr *gserrors.GitCommandError
	if errors.As(err, &gitErr) {
		return gitErr.Output()
	}
	return err.Error()
}
