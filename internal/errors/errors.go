// Package errors provides sentinel errors and custom error types for gitsync.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNotOnBranch indicates that HEAD is not on a branch
	ErrNotOnBranch = errors.New("not on a branch")

	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBranchExists indicates that a branch that should be created already exists
	ErrBranchExists = errors.New("branch already exists")

	// ErrConflict indicates that a rebase or merge stopped on conflicts
	ErrConflict = errors.New("conflict")

	// ErrRebaseConflict indicates that a rebase operation encountered a conflict
	ErrRebaseConflict = errors.New("rebase conflict")

	// ErrMergeConflict indicates that a merge operation encountered a conflict
	ErrMergeConflict = errors.New("merge conflict")

	// ErrOperationInProgress indicates a rebase or merge is already underway
	ErrOperationInProgress = errors.New("rebase or merge in progress")

	// ErrUncommittedChanges indicates that the working tree is not clean
	ErrUncommittedChanges = errors.New("uncommitted changes")

	// ErrParkedChanges indicates work is sitting on the parking branch
	ErrParkedChanges = errors.New("changes on parking branch")

	// ErrDivergedBranch indicates a local branch has commits its remote counterpart lacks
	ErrDivergedBranch = errors.New("diverged branch")

	// ErrNotYetMerged indicates a branch has not been integrated yet
	ErrNotYetMerged = errors.New("branch not yet merged")

	// ErrRemoteChanged indicates the remote branch moved while we were syncing
	ErrRemoteChanged = errors.New("remote branch changed")

	// ErrIntegrationBranchOperation indicates an invalid operation on the integration branch
	ErrIntegrationBranchOperation = errors.New("invalid operation on integration branch")

	// ErrUnknownStatusCode indicates a status line with a code we do not understand
	ErrUnknownStatusCode = errors.New("unknown status code")
)

// HumanError is implemented by workflow errors that carry guidance for the user:
// a human readable explanation and the commands that get them unstuck.
type HumanError interface {
	error
	HumanMessage() string
	Commands() []string
}

// Render composes the message printed to the user for a HumanError.
func Render(err HumanError) string {
	var sb strings.Builder
	sb.WriteString(err.HumanMessage())
	if cmds := err.Commands(); len(cmds) > 0 {
		sb.WriteString("\n\nCommands:\n")
		for _, c := range cmds {
			sb.WriteString("\n  ")
			sb.WriteString(c)
		}
	}
	return sb.String()
}

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// BranchExistsError is returned when creating a branch whose name is taken
type BranchExistsError struct {
	BranchName string
}

func (e *BranchExistsError) Error() string {
	return fmt.Sprintf("branch %s already exists", e.BranchName)
}

// Is returns true if the target error is ErrBranchExists
func (e *BranchExistsError) Is(target error) bool {
	return target == ErrBranchExists
}

// RebaseConflictError represents an error when a rebase encounters a conflict
type RebaseConflictError struct {
	BranchName string
	Onto       string
	Message    string
}

func (e *RebaseConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rebase conflict on branch %s onto %s: %s", e.BranchName, e.Onto, e.Message)
	}
	return fmt.Sprintf("rebase conflict on branch %s onto %s", e.BranchName, e.Onto)
}

// Is returns true if the target error is ErrRebaseConflict or ErrConflict
func (e *RebaseConflictError) Is(target error) bool {
	return target == ErrRebaseConflict || target == ErrConflict
}

// NewRebaseConflictError creates a new RebaseConflictError
func NewRebaseConflictError(branchName, onto, message string) *RebaseConflictError {
	return &RebaseConflictError{
		BranchName: branchName,
		Onto:       onto,
		Message:    message,
	}
}

// MergeConflictError represents an error when a merge encounters a conflict
type MergeConflictError struct {
	BranchName string
	Merging    string
	Message    string
}

func (e *MergeConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("merge conflict merging %s into %s: %s", e.Merging, e.BranchName, e.Message)
	}
	return fmt.Sprintf("merge conflict merging %s into %s", e.Merging, e.BranchName)
}

// Is returns true if the target error is ErrMergeConflict or ErrConflict
func (e *MergeConflictError) Is(target error) bool {
	return target == ErrMergeConflict || target == ErrConflict
}

// NewMergeConflictError creates a new MergeConflictError
func NewMergeConflictError(branchName, merging, message string) *MergeConflictError {
	return &MergeConflictError{
		BranchName: branchName,
		Merging:    merging,
		Message:    message,
	}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// Output returns everything the command printed, stdout first.
func (e *GitCommandError) Output() string {
	switch {
	case e.Stdout == "":
		return e.Stderr
	case e.Stderr == "":
		return e.Stdout
	default:
		return e.Stdout + "\n" + e.Stderr
	}
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// UnknownStatusCodeError is returned for a porcelain status line we cannot classify
type UnknownStatusCodeError struct {
	Code string
	Line string
}

func (e *UnknownStatusCodeError) Error() string {
	return fmt.Sprintf("do not know what to do with status code %q in line %q", e.Code, e.Line)
}

// Is returns true if the target error is ErrUnknownStatusCode
func (e *UnknownStatusCodeError) Is(target error) bool {
	return target == ErrUnknownStatusCode
}

// UncommittedChangesError is returned when a workflow needs a clean working tree
type UncommittedChangesError struct{}

func (e *UncommittedChangesError) Error() string {
	return "there are uncommitted changes"
}

// Is returns true if the target error is ErrUncommittedChanges
func (e *UncommittedChangesError) Is(target error) bool {
	return target == ErrUncommittedChanges
}

// HumanMessage implements HumanError
func (e *UncommittedChangesError) HumanMessage() string {
	return "There are uncommitted changes.\nPlease either commit your changes, or use 'git stash' to save them for later."
}

// Commands implements HumanError
func (e *UncommittedChangesError) Commands() []string {
	return nil
}

// ParkedChangesError is returned when work was done on the parking branch
type ParkedChangesError struct {
	BranchName string
}

func (e *ParkedChangesError) Error() string {
	return fmt.Sprintf("changes were made on the %s branch", e.BranchName)
}

// Is returns true if the target error is ErrParkedChanges
func (e *ParkedChangesError) Is(target error) bool {
	return target == ErrParkedChanges
}

// HumanMessage implements HumanError
func (e *ParkedChangesError) HumanMessage() string {
	return fmt.Sprintf("You made your changes on the '%s' branch instead of a feature branch.\nPlease rename the branch to be a feature branch.", e.BranchName)
}

// Commands implements HumanError
func (e *ParkedChangesError) Commands() []string {
	return []string{fmt.Sprintf("git branch -m %s my_feature_branch", e.BranchName)}
}

// DivergedBranchError is returned when an explicitly named branch has local-only work
type DivergedBranchError struct {
	BranchName   string
	RemoteBranch string
}

func (e *DivergedBranchError) Error() string {
	return fmt.Sprintf("branch %s has diverged from %s", e.BranchName, e.RemoteBranch)
}

// Is returns true if the target error is ErrDivergedBranch
func (e *DivergedBranchError) Is(target error) bool {
	return target == ErrDivergedBranch
}

// HumanMessage implements HumanError
func (e *DivergedBranchError) HumanMessage() string {
	return fmt.Sprintf("Branch '%s' has commits that are not on '%s'.\nRefusing to switch to it; check it out and sync it directly instead.", e.BranchName, e.RemoteBranch)
}

// Commands implements HumanError
func (e *DivergedBranchError) Commands() []string {
	return []string{"git checkout " + e.BranchName}
}

// NotYetMergedError is returned when retiring a branch that has not landed
type NotYetMergedError struct {
	BranchName  string
	Integration string
}

func (e *NotYetMergedError) Error() string {
	return fmt.Sprintf("branch %s has not been merged into %s", e.BranchName, e.Integration)
}

// Is returns true if the target error is ErrNotYetMerged
func (e *NotYetMergedError) Is(target error) bool {
	return target == ErrNotYetMerged
}

// HumanMessage implements HumanError
func (e *NotYetMergedError) HumanMessage() string {
	return fmt.Sprintf("Branch '%s' has not been merged into '%s'.", e.BranchName, e.Integration)
}

// Commands implements HumanError
func (e *NotYetMergedError) Commands() []string {
	return nil
}

// RemoteChangedError is returned when the remote branch moved underneath a push
type RemoteChangedError struct {
	BranchName string
	Remote     string
	Message    string
}

func (e *RemoteChangedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s changed on %s: %s", e.BranchName, e.Remote, e.Message)
	}
	return fmt.Sprintf("%s changed on %s", e.BranchName, e.Remote)
}

// Is returns true if the target error is ErrRemoteChanged
func (e *RemoteChangedError) Is(target error) bool {
	return target == ErrRemoteChanged
}
