package cli

import (
	"github.com/spf13/cobra"

	"gitsync.dev/gitsync/internal/actions/newbranch"
	"gitsync.dev/gitsync/internal/cli/common"
	"gitsync.dev/gitsync/internal/runtime"
)

// newNewFeatureBranchCmd creates the new-feature-branch command
func newNewFeatureBranchCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:     "new-feature-branch [name]",
		Aliases: []string{"nfb"},
		Short:   "Start a feature branch from the integration branch",
		Long: `Start a feature branch from the latest integration branch.

When on the parking branch, its commits and working tree move to the new
branch instead. The name is prompted for when omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := newbranch.Options{Local: local}
			if len(args) > 0 {
				opts.Name = args[0]
			}
			return common.Run(cmd, func(ctx *runtime.Context) error {
				_, err := newbranch.Action(ctx, opts)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&local, "local", "l", false, "Do not fetch first")

	return cmd
}
