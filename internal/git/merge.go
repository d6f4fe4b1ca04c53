package git

import (
	"context"
	"fmt"

	gserrors "gitsync.dev/gitsync/internal/errors"
)

// Merge merges rev into the current branch. On conflicts the merge is left
// in progress and a *MergeConflictError carrying git's output is returned.
func (r *Repository) Merge(ctx context.Context, rev string) error {
	branch, _, _ := r.CurrentBranch(ctx)

	_, err := r.runner.Run(ctx, "merge", "--no-edit", rev)
	if err == nil {
		return nil
	}
	if r.IsMergeInProgress(ctx) {
		return gserrors.NewMergeConflictError(branch, rev, commandOutput(err))
	}
	return fmt.Errorf("failed to merge %s into %s: %w", rev, branch, err)
}

// IsMergeInProgress reports whether MERGE_HEAD exists
func (r *Repository) IsMergeInProgress(ctx context.Context) bool {
	out, err := r.runner.Run(ctx, "rev-parse", "-q", "--verify", "MERGE_HEAD")
	return err == nil && out != ""
}

// MergeContinue concludes an in-progress merge whose conflicts are resolved
func (r *Repository) MergeContinue(ctx context.Context) error {
	branch, _, _ := r.CurrentBranch(ctx)

	if _, err := r.runner.Run(ctx, "commit", "--no-edit"); err != nil {
		if r.IsMergeInProgress(ctx) {
			return gserrors.NewMergeConflictError(branch, "MERGE_HEAD", commandOutput(err))
		}
		return fmt.Errorf("failed to conclude merge on %s: %w", branch, err)
	}
	return nil
}
