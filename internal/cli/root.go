// Package cli wires the gitsync workflows to cobra commands.
package cli

import (
	"github.com/spf13/cobra"

	"gitsync.dev/gitsync/internal/tui"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitsync",
		Short: "gitsync keeps feature branches in step with their remote and the integration branch",
		Long: `gitsync keeps feature branches in step with their remote and the integration branch.

Start work with new-feature-branch, publish it with sync, open a pull request
with pull-request, and land it with to-master.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			tui.ConfigureColors(cmd.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().String("cwd", "", "Run as if gitsync was started in this directory")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print errors")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newNewFeatureBranchCmd())
	rootCmd.AddCommand(newToMasterCmd())
	rootCmd.AddCommand(newPullRequestCmd())
	rootCmd.AddCommand(newContinueCmd())

	return rootCmd
}
