package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gserrors "gitsync.dev/gitsync/internal/errors"
)

// PushOptions describes a push of LocalRef to RemoteBranch on Remote.
type PushOptions struct {
	Remote       string
	LocalRef     string
	RemoteBranch string
	// Force overwrites the remote branch unconditionally
	Force bool
	// ForceWithLease overwrites only if the remote branch is still at
	// ExpectedSha ("" meaning the branch must not exist yet)
	ForceWithLease bool
	ExpectedSha    string
	SetUpstream    bool
}

// Push pushes a ref. A rejection because the remote moved (non-fast-forward
// or a broken lease) is reported as *RemoteChangedError.
func (r *Repository) Push(ctx context.Context, opts PushOptions) error {
	remoteBranch := opts.RemoteBranch
	if remoteBranch == "" {
		remoteBranch = opts.LocalRef
	}

	args := []string{"push", "--porcelain"}
	if opts.SetUpstream {
		args = append(args, "-u")
	}
	switch {
	case opts.Force:
		args = append(args, "--force")
	case opts.ForceWithLease:
		args = append(args, fmt.Sprintf("--force-with-lease=refs/heads/%s:%s", remoteBranch, opts.ExpectedSha))
	}
	args = append(args, opts.Remote, fmt.Sprintf("%s:refs/heads/%s", opts.LocalRef, remoteBranch))

	_, err := r.runner.Run(ctx, args...)
	if err == nil {
		return nil
	}

	var gitErr *gserrors.GitCommandError
	if errors.As(err, &gitErr) && isStaleRejection(gitErr.Output()) {
		return &gserrors.RemoteChangedError{
			BranchName: remoteBranch,
			Remote:     opts.Remote,
			Message:    strings.TrimSpace(gitErr.Output()),
		}
	}
	return fmt.Errorf("failed to push %s to %s/%s: %w", opts.LocalRef, opts.Remote, remoteBranch, err)
}

// DeleteRemoteBranch removes a branch from a remote. A branch the remote no
// longer has is reported as *BranchNotFoundError.
func (r *Repository) DeleteRemoteBranch(ctx context.Context, remote, branchName string) error {
	_, err := r.runner.Run(ctx, "push", remote, "--delete", branchName)
	if err == nil {
		return nil
	}
	var gitErr *gserrors.GitCommandError
	if errors.As(err, &gitErr) && strings.Contains(gitErr.Output(), "remote ref does not exist") {
		return gserrors.NewBranchNotFoundError(remote + "/" + branchName)
	}
	return fmt.Errorf("failed to delete %s on %s: %w", branchName, remote, err)
}

func isStaleRejection(output string) bool {
	for _, marker := range []string{"stale info", "non-fast-forward", "fetch first", "[rejected]"} {
		if strings.Contains(output, marker) {
			return true
		}
	}
	return false
}
