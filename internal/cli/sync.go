package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitsync.dev/gitsync/internal/actions/sync"
	"gitsync.dev/gitsync/internal/cli/common"
	"gitsync.dev/gitsync/internal/runtime"
)

// newSyncCmd creates the sync command
func newSyncCmd() *cobra.Command {
	var (
		rebase bool
		merge  bool
		force  bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "sync [branch]",
		Short: "Bring the current branch up to date and push it",
		Long: `Bring the current branch up to date with its remote counterpart and the
integration branch, then push it.

The branch is rebased by default (see gitsync.defaultRebaseSync). If someone
pushes to the same branch while the sync runs, their commits are integrated
and the push is retried. Conflicts stop the sync and print the commands that
finish it.

With a branch name, that branch is checked out from the remote first.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: common.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rebase && merge {
				return fmt.Errorf("--rebase and --merge cannot be used together")
			}
			opts := sync.Options{Force: force, Local: local}
			switch {
			case rebase:
				opts.Strategy = sync.StrategyRebase
			case merge:
				opts.Strategy = sync.StrategyMerge
			}
			if len(args) > 0 {
				opts.BranchName = args[0]
			}

			return common.Run(cmd, func(ctx *runtime.Context) error {
				_, err := sync.Action(ctx, opts)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&rebase, "rebase", false, "Rebase onto the remote and integration branches")
	cmd.Flags().BoolVar(&merge, "merge", false, "Merge the remote and integration branches in")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite the remote branch unconditionally")
	cmd.Flags().BoolVarP(&local, "local", "l", false, "Do not fetch or push")

	return cmd
}
