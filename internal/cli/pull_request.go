package cli

import (
	"github.com/spf13/cobra"

	"gitsync.dev/gitsync/internal/actions/pullrequest"
	"gitsync.dev/gitsync/internal/cli/common"
	"gitsync.dev/gitsync/internal/runtime"
)

// newPullRequestCmd creates the pull-request command
func newPullRequestCmd() *cobra.Command {
	var (
		body  string
		draft bool
		edit  bool
	)

	cmd := &cobra.Command{
		Use:     "pull-request [title]",
		Aliases: []string{"pr"},
		Short:   "Push the current branch and open a pull request for it",
		Long: `Push the current branch and open a GitHub pull request against the
integration branch.

The token is read from gitsync.github.token or GITHUB_TOKEN. Without a title
you are prompted for one, starting from the latest commit subject.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pullrequest.Options{Body: body, Draft: draft, Edit: edit}
			if len(args) > 0 {
				opts.Title = args[0]
			}
			return common.Run(cmd, func(ctx *runtime.Context) error {
				_, err := pullrequest.Action(ctx, opts)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&body, "body", "b", "", "Pull request description")
	cmd.Flags().BoolVarP(&draft, "draft", "d", false, "Open the pull request as a draft")
	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "Write the description in your editor")

	return cmd
}
