// Package resume finishes a rebase or merge that a sync stopped on conflicts.
package resume

import (
	"fmt"

	"gitsync.dev/gitsync/internal/conflict"
	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/runtime"
	"gitsync.dev/gitsync/internal/tui"
)

// Options contains options for the continue command
type Options struct {
	// AddAll stages every change before continuing
	AddAll bool
}

// Action continues the stopped operation. When conflicts remain they are
// diagnosed again and returned as *conflict.Error.
func Action(ctx *runtime.Context, opts Options) error {
	gctx := ctx.Context
	eng := ctx.Engine
	repo := eng.Repository()

	rebasing := repo.IsRebaseInProgress(gctx)
	merging := repo.IsMergeInProgress(gctx)
	if !rebasing && !merging {
		return fmt.Errorf("nothing to continue: no rebase or merge is in progress")
	}

	if opts.AddAll {
		if err := repo.StageAll(gctx); err != nil {
			return err
		}
	}

	status, err := repo.Status(gctx)
	if err != nil {
		return err
	}
	if len(status.Unmerged) > 0 {
		raw := "Unmerged paths remain."
		if rebasing {
			return conflict.Wrap(gctx, repo, eng.Config(), gserrors.NewRebaseConflictError("", "", raw))
		}
		return conflict.Wrap(gctx, repo, eng.Config(), gserrors.NewMergeConflictError("", "", raw))
	}

	if rebasing {
		err = repo.RebaseContinue(gctx)
	} else {
		err = repo.MergeContinue(gctx)
	}
	if err != nil {
		return conflict.Wrap(gctx, repo, eng.Config(), err)
	}

	branch, err := eng.CurrentBranch(gctx)
	if err != nil {
		return err
	}
	ctx.Splog.Info("Finished integrating %s.", tui.ColorBranchName(branch, true))
	ctx.Splog.Tip("Run 'gitsync sync' to publish it.")
	return nil
}
