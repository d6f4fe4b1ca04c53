package cli

import (
	"github.com/spf13/cobra"

	"gitsync.dev/gitsync/internal/actions/resume"
	"gitsync.dev/gitsync/internal/cli/common"
	"gitsync.dev/gitsync/internal/runtime"
)

// newContinueCmd creates the continue command
func newContinueCmd() *cobra.Command {
	var addAll bool

	cmd := &cobra.Command{
		Use:   "continue",
		Short: "Continue a sync halted by conflicts",
		Long: `Continue the rebase or merge a sync stopped on. Resolve the conflicts
first; anything still unresolved is reported again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				return resume.Action(ctx, resume.Options{AddAll: addAll})
			})
		},
	}

	cmd.Flags().BoolVarP(&addAll, "all", "a", false, "Stage all changes before continuing")

	return cmd
}
