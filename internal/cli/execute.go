package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gitsync.dev/gitsync/internal/cli/common"
)

// ExitFailure is the exit status of any failed command
const ExitFailure = 255

// Execute runs the command line in args and returns the process exit status.
// Workflow guidance has already been written by the command; any other error
// is printed here.
func Execute(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd(version)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var reported *common.ReportedError
	if !errors.As(err, &reported) {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return ExitFailure
}
