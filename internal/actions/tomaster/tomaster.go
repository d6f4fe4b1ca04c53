// Package tomaster lands the current feature branch on the integration branch.
package tomaster

import (
	"errors"
	"fmt"

	"gitsync.dev/gitsync/internal/actions"
	"gitsync.dev/gitsync/internal/actions/sync"
	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
	"gitsync.dev/gitsync/internal/lifecycle"
	"gitsync.dev/gitsync/internal/runtime"
	"gitsync.dev/gitsync/internal/tui"
)

// Options contains options for the to-master command
type Options struct {
	// Keep leaves the feature branch and its pull request in place
	Keep bool
	// MaxAttempts caps sync-and-push cycles when the integration branch keeps
	// moving; 0 means no cap
	MaxAttempts int
}

// Result describes a completed to-master
type Result struct {
	Branch      string
	Integration string
	// ClosedPullRequest is the number of the pull request that was closed, or 0
	ClosedPullRequest int
	Retired           *lifecycle.RetireResult
}

// Action rebases the current branch onto the integration branch, publishes
// it there as a fast-forward, and then retires the branch.
func Action(ctx *runtime.Context, opts Options) (*Result, error) {
	gctx := ctx.Context
	eng := ctx.Engine
	repo := eng.Repository()

	current, err := actions.RequireFeatureBranch(gctx, eng)
	if err != nil {
		return nil, err
	}
	if isIntegration, err := eng.IsIntegrationBranch(gctx, current); err != nil {
		return nil, err
	} else if isIntegration {
		return nil, fmt.Errorf("%w: %s is already the integration branch", gserrors.ErrIntegrationBranchOperation, current)
	}

	integrationName, err := eng.IntegrationBranchName(gctx)
	if err != nil {
		return nil, err
	}
	remote, err := eng.RemoteName(gctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Branch: current, Integration: integrationName}

	for attempt := 1; ; attempt++ {
		if opts.MaxAttempts > 0 && attempt > opts.MaxAttempts {
			return nil, fmt.Errorf("gave up landing %s after %d attempts: %w", current, opts.MaxAttempts, gserrors.ErrRemoteChanged)
		}
		if _, err := sync.Action(ctx, sync.Options{Strategy: sync.StrategyRebase, MaxAttempts: opts.MaxAttempts}); err != nil {
			return nil, err
		}

		if remote == "" {
			// Rebased onto the local integration branch, so this is a fast-forward
			if _, err := repo.Branch(gctx, git.CreateBranch{Name: integrationName, Base: current, Force: true}); err != nil {
				return nil, err
			}
			break
		}

		err := repo.Push(gctx, git.PushOptions{Remote: remote, LocalRef: "HEAD", RemoteBranch: integrationName})
		if errors.Is(err, gserrors.ErrRemoteChanged) {
			ctx.Splog.Warn("%s/%s moved while landing %s; syncing again.", remote, integrationName, current)
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}
	ctx.Splog.Info("Landed %s on %s.", tui.ColorBranchName(current, true), integrationName)

	if opts.Keep {
		return result, nil
	}

	if remote != "" {
		result.ClosedPullRequest = closePullRequest(ctx, current)
	}

	retired, err := lifecycle.New(eng, ctx.Splog).Retire(gctx)
	if err != nil {
		return nil, err
	}
	result.Retired = retired
	return result, nil
}

// closePullRequest closes the open pull request of branch, if there is one.
// Failures only warn: the commits have already landed.
func closePullRequest(ctx *runtime.Context, branch string) int {
	client, err := ctx.GitHub()
	if err != nil {
		ctx.Splog.Debug("Not closing pull requests for %s: %v", branch, err)
		return 0
	}

	pr, err := client.FindOpenPullRequest(ctx.Context, branch)
	if err != nil {
		ctx.Splog.Warn("Could not look up the pull request for %s: %v", branch, err)
		return 0
	}
	if pr == nil {
		return 0
	}

	if err := client.ClosePullRequest(ctx.Context, pr.Number); err != nil {
		ctx.Splog.Warn("Could not close pull request #%d: %v", pr.Number, err)
		return 0
	}
	ctx.Splog.Info("Closed pull request #%d.", pr.Number)
	return pr.Number
}
