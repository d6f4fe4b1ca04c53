package conflict

import (
	"context"
	"errors"
	"fmt"

	"gitsync.dev/gitsync/internal/config"
	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
)

// Context is everything a diagnosis reads. It is passed by value; nothing
// is taken from the caller implicitly.
type Context struct {
	Repository      *git.Repository
	Config          *config.Store
	RawErrorText    string
	ContinueCommand string
}

// Diagnose reads the repository's current status and rerere settings and
// builds a Report for the conflict described by c.RawErrorText
func Diagnose(ctx context.Context, c Context) (*Report, error) {
	status, err := c.Repository.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read status for conflict report: %w", err)
	}
	enabled, err := c.Config.RerereEnabledGlobally(ctx)
	if err != nil {
		return nil, err
	}
	autoupdate, err := c.Config.RerereAutoupdate(ctx)
	if err != nil {
		return nil, err
	}
	settings := Settings{RerereEnabled: enabled, RerereAutoupdate: autoupdate}
	return Build(status, settings, c.RawErrorText, c.ContinueCommand), nil
}

// Error is a conflicted rebase or merge together with its diagnosis
type Error struct {
	Report *Report
	Err    error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the rebase or merge error that stopped
func (e *Error) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrConflict
func (e *Error) Is(target error) bool {
	return target == gserrors.ErrConflict
}

// HumanMessage implements errors.HumanError
func (e *Error) HumanMessage() string {
	return e.Report.Message()
}

// Commands implements errors.HumanError
func (e *Error) Commands() []string {
	return e.Report.Commands
}

// Wrap diagnoses err when it is a rebase or merge conflict and returns the
// resulting *Error. Any other error is returned unchanged. The conflicted
// working tree is left as git left it.
func Wrap(ctx context.Context, repo *git.Repository, store *config.Store, err error) error {
	var (
		raw          string
		continueWith string
	)
	var rebaseErr *gserrors.RebaseConflictError
	var mergeErr *gserrors.MergeConflictError
	switch {
	case errors.As(err, &rebaseErr):
		raw, continueWith = rebaseErr.Message, ContinueRebase
	case errors.As(err, &mergeErr):
		raw, continueWith = mergeErr.Message, ContinueMerge
	default:
		return err
	}

	report, diagErr := Diagnose(ctx, Context{
		Repository:      repo,
		Config:          store,
		RawErrorText:    raw,
		ContinueCommand: continueWith,
	})
	if diagErr != nil {
		return fmt.Errorf("%w (diagnosis failed: %v)", err, diagErr)
	}
	return &Error{Report: report, Err: err}
}

var _ gserrors.HumanError = (*Error)(nil)
