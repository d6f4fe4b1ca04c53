// Package common provides shared helper functions for CLI commands.
package common

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
	"gitsync.dev/gitsync/internal/runtime"
)

// ReportedError marks an error whose guidance was already shown to the user
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the workflow error
func (e *ReportedError) Unwrap() error {
	return e.Err
}

// Run is a helper that provides a runtime context to a command's execution function.
// Errors carrying guidance for the user are rendered to stderr (and the log
// file) before the context is closed.
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	cwd, _ := cmd.Flags().GetString("cwd")
	quiet, _ := cmd.Flags().GetBool("quiet")

	ctx, err := runtime.GetContextWithWriters(cmd.Context(), cwd, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = ctx.Close() }()
	ctx.Splog.SetQuiet(quiet)

	err = fn(ctx)
	if err == nil {
		return nil
	}

	var human gserrors.HumanError
	if errors.As(err, &human) {
		ctx.Splog.Report(gserrors.Render(human))
		return &ReportedError{Err: err}
	}
	return err
}

// CompleteBranches is a helper for cobra.ValidArgsFunction and RegisterFlagCompletionFunc
// that returns all branch names in the repository.
func CompleteBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	cwd, _ := cmd.Flags().GetString("cwd")
	repo, err := git.Open(cwd, nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	branches, err := repo.Branches(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return branches.Names(), cobra.ShellCompDirectiveNoFileComp
}
