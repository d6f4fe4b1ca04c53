package cli

import (
	"github.com/spf13/cobra"

	"gitsync.dev/gitsync/internal/actions/tomaster"
	"gitsync.dev/gitsync/internal/cli/common"
	"gitsync.dev/gitsync/internal/runtime"
)

// newToMasterCmd creates the to-master command
func newToMasterCmd() *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:     "to-master",
		Aliases: []string{"rebase-to-master"},
		Short:   "Land the current branch on the integration branch",
		Long: `Rebase the current branch onto the integration branch and push it there.

Afterwards the branch's pull request is closed, the branch is deleted locally
and on the remote, and the parking branch is checked out. Use --keep to skip
the cleanup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				_, err := tomaster.Action(ctx, tomaster.Options{Keep: keep})
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&keep, "keep", "k", false, "Keep the branch and its pull request")

	return cmd
}
