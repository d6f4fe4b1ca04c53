package engine

import (
	"context"
	"fmt"

	"gitsync.dev/gitsync/internal/config"
	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
)

// BranchReader provides read-only access to branch state
type BranchReader interface {
	Branches(ctx context.Context) (*git.BranchSet, error)
	CurrentBranch(ctx context.Context) (string, error)
	ResolveBranchName(ctx context.Context, name string) (string, error)
	LookupBranch(ctx context.Context, name string) (git.Branch, bool, error)
	RequireBranch(ctx context.Context, name string) (git.Branch, error)
	ContainsAllOf(ctx context.Context, branch, other string) (bool, error)
	IsAheadOf(ctx context.Context, branch, other string) (bool, error)
}

// RemoteReader resolves the remote and integration branch to work against
type RemoteReader interface {
	HasRemote(ctx context.Context) (bool, error)
	RemoteName(ctx context.Context) (string, error)
	RemoteBranchName(ctx context.Context, branch string) (string, error)
	IntegrationBranchName(ctx context.Context) (string, error)
	IntegrationBranch(ctx context.Context) (string, error)
}

// Engine combines the branch and remote read models over one repository
type Engine struct {
	repo   *git.Repository
	config *config.Store
	logger git.DebugLogger
}

var (
	_ BranchReader = (*Engine)(nil)
	_ RemoteReader = (*Engine)(nil)
)

// New creates an Engine. logger may be nil.
func New(repo *git.Repository, store *config.Store, logger git.DebugLogger) *Engine {
	return &Engine{repo: repo, config: store, logger: logger}
}

// Repository returns the underlying git repository
func (e *Engine) Repository() *git.Repository {
	return e.repo
}

// Config returns the configuration store
func (e *Engine) Config() *config.Store {
	return e.config
}

func (e *Engine) debug(format string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(format, args...)
	}
}

// Branches lists local and remote-tracking branches
func (e *Engine) Branches(ctx context.Context) (*git.BranchSet, error) {
	return e.repo.Branches(ctx)
}

// CurrentBranch returns the checked out branch. A detached HEAD is
// ErrNotOnBranch.
func (e *Engine) CurrentBranch(ctx context.Context) (string, error) {
	name, ok, err := e.repo.CurrentBranch(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", gserrors.ErrNotOnBranch
	}
	return name, nil
}

// ResolveBranchName turns "HEAD" (or "") into the current branch name and
// returns any other name unchanged
func (e *Engine) ResolveBranchName(ctx context.Context, name string) (string, error) {
	if name == "" || name == "HEAD" {
		return e.CurrentBranch(ctx)
	}
	return name, nil
}

// LookupBranch finds a branch by name. A missing branch is reported with
// ok=false, not as an error.
func (e *Engine) LookupBranch(ctx context.Context, name string) (git.Branch, bool, error) {
	resolved, err := e.ResolveBranchName(ctx, name)
	if err != nil {
		return git.Branch{}, false, err
	}
	branches, err := e.Branches(ctx)
	if err != nil {
		return git.Branch{}, false, err
	}
	branch, ok := branches.Get(resolved)
	if !ok {
		e.debug("branch %s not found", resolved)
	}
	return branch, ok, nil
}

// RequireBranch is LookupBranch for callers that cannot proceed without the
// branch; a missing branch is a *BranchNotFoundError
func (e *Engine) RequireBranch(ctx context.Context, name string) (git.Branch, error) {
	branch, ok, err := e.LookupBranch(ctx, name)
	if err != nil {
		return git.Branch{}, err
	}
	if !ok {
		return git.Branch{}, gserrors.NewBranchNotFoundError(name)
	}
	return branch, nil
}

// ContainsAllOf reports whether branch already has every commit of other
func (e *Engine) ContainsAllOf(ctx context.Context, branch, other string) (bool, error) {
	missing, err := e.repo.RevList(ctx, branch, other, 1)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

// IsAheadOf reports whether branch has at least one commit other lacks
func (e *Engine) IsAheadOf(ctx context.Context, branch, other string) (bool, error) {
	extra, err := e.repo.RevList(ctx, other, branch, 1)
	if err != nil {
		return false, err
	}
	return len(extra) > 0, nil
}

// RemoteName returns the remote to sync with: the configured override, or
// the first remote git lists. No remote at all yields "".
func (e *Engine) RemoteName(ctx context.Context) (string, error) {
	override, err := e.config.RemoteNameOverride(ctx)
	if err != nil {
		return "", err
	}
	if override != "" {
		return override, nil
	}
	remotes, err := e.repo.RemoteNames(ctx)
	if err != nil {
		return "", err
	}
	if len(remotes) == 0 {
		return "", nil
	}
	return remotes[0], nil
}

// HasRemote reports whether any remote is configured
func (e *Engine) HasRemote(ctx context.Context) (bool, error) {
	name, err := e.RemoteName(ctx)
	if err != nil {
		return false, err
	}
	return name != "", nil
}

// RemoteBranchName returns "<remote>/<branch>", or "" without a remote
func (e *Engine) RemoteBranchName(ctx context.Context, branch string) (string, error) {
	remote, err := e.RemoteName(ctx)
	if err != nil || remote == "" {
		return "", err
	}
	return remote + "/" + branch, nil
}

// IntegrationBranchName returns the configured integration branch without
// any remote prefix
func (e *Engine) IntegrationBranchName(ctx context.Context) (string, error) {
	return e.config.IntegrationBranch(ctx)
}

// IntegrationBranch returns the ref feature work integrates against:
// "<remote>/<integration>" when a remote exists, else the local branch
func (e *Engine) IntegrationBranch(ctx context.Context) (string, error) {
	name, err := e.IntegrationBranchName(ctx)
	if err != nil {
		return "", err
	}
	remoteBranch, err := e.RemoteBranchName(ctx, name)
	if err != nil {
		return "", err
	}
	if remoteBranch != "" {
		return remoteBranch, nil
	}
	return name, nil
}

// IsIntegrationBranch reports whether branch is the local integration branch
func (e *Engine) IsIntegrationBranch(ctx context.Context, branch string) (bool, error) {
	name, err := e.IntegrationBranchName(ctx)
	if err != nil {
		return false, err
	}
	return branch == name, nil
}

// RequireCleanWorkingTree fails with *UncommittedChangesError when anything
// is staged, modified, or untracked
func (e *Engine) RequireCleanWorkingTree(ctx context.Context) error {
	status, err := e.repo.Status(ctx)
	if err != nil {
		return err
	}
	if status.IsClean() {
		return nil
	}
	return &gserrors.UncommittedChangesError{}
}

// RequireNoOperationInProgress fails when a rebase or merge is already stopped
func (e *Engine) RequireNoOperationInProgress(ctx context.Context) error {
	if e.repo.IsRebaseInProgress(ctx) {
		return fmt.Errorf("%w: a rebase is in progress; finish it with 'git rebase --continue' or 'git rebase --abort'", gserrors.ErrOperationInProgress)
	}
	if e.repo.IsMergeInProgress(ctx) {
		return fmt.Errorf("%w: a merge is in progress; finish it with 'git commit' or 'git merge --abort'", gserrors.ErrOperationInProgress)
	}
	return nil
}
