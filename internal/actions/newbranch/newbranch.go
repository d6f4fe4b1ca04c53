// Package newbranch starts a feature branch.
package newbranch

import (
	"gitsync.dev/gitsync/internal/lifecycle"
	"gitsync.dev/gitsync/internal/runtime"
	"gitsync.dev/gitsync/internal/tui"
)

// Options contains options for the new-feature-branch command
type Options struct {
	// Name of the branch; prompted for when empty
	Name string
	// Local skips fetching before branching
	Local bool
}

// Action creates the feature branch and checks it out. Without a name the
// user is asked for one; a non-interactive session fails with
// tui.ErrInteractiveDisabled.
func Action(ctx *runtime.Context, opts Options) (string, error) {
	name := opts.Name
	if name == "" {
		repo := ctx.Engine.Repository()
		prompted, err := tui.PromptBranchName(func(value string) error {
			return repo.CheckRefFormat(ctx.Context, value)
		})
		if err != nil {
			return "", err
		}
		name = prompted
	}

	lc := lifecycle.New(ctx.Engine, ctx.Splog)
	if err := lc.StartFeatureBranch(ctx.Context, name, lifecycle.StartOptions{Local: opts.Local}); err != nil {
		return "", err
	}
	ctx.Splog.Info("Created and checked out %s.", tui.ColorBranchName(name, true))
	return name, nil
}
