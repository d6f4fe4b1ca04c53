package actions

import (
	"context"

	"gitsync.dev/gitsync/internal/engine"
	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
)

// RequireFeatureBranch checks the preconditions shared by every command that
// rewrites or publishes the current branch, and returns that branch. It must
// be checked out (not detached, not the parking branch), with a clean working
// tree and no rebase or merge stopped halfway.
func RequireFeatureBranch(ctx context.Context, eng *engine.Engine) (string, error) {
	current, err := eng.CurrentBranch(ctx)
	if err != nil {
		return "", err
	}
	if current == git.ParkingBranch {
		return "", &gserrors.ParkedChangesError{BranchName: current}
	}
	if err := eng.RequireNoOperationInProgress(ctx); err != nil {
		return "", err
	}
	if err := eng.RequireCleanWorkingTree(ctx); err != nil {
		return "", err
	}
	return current, nil
}
