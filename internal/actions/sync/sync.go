// Package sync brings the current feature branch up to date with its remote
// counterpart and the integration branch, then publishes it.
//
// One sync is a small state machine: resolve the branch, fetch, integrate
// (rebase or merge), push. If the remote branch moves underneath us, either
// rejecting the push or replacing it right after, the cycle is re-run from
// integration against the new remote state. Conflicts are never retried;
// they stop the sync with the working tree left conflicted for the user.
package sync

import (
	"context"
	"errors"
	"fmt"

	"gitsync.dev/gitsync/internal/actions"
	"gitsync.dev/gitsync/internal/config"
	"gitsync.dev/gitsync/internal/conflict"
	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
	"gitsync.dev/gitsync/internal/runtime"
	"gitsync.dev/gitsync/internal/tui"
)

// Strategy is how the branch is brought up to date
type Strategy int

const (
	// StrategyDefault defers to gitsync.defaultRebaseSync, rebasing when unset
	StrategyDefault Strategy = iota
	// StrategyRebase rebases the branch onto the remote and integration branches
	StrategyRebase
	// StrategyMerge merges the remote and integration branches into the branch
	StrategyMerge
)

func (s Strategy) String() string {
	switch s {
	case StrategyRebase:
		return "rebase"
	case StrategyMerge:
		return "merge"
	default:
		return "default"
	}
}

// Options contains options for the sync command
type Options struct {
	Strategy Strategy
	// Force pushes unconditionally instead of with a lease
	Force bool
	// Local integrates against already-fetched refs and never pushes
	Local bool
	// BranchName switches to this branch (which must exist on the remote)
	// before syncing
	BranchName string
	// MaxAttempts caps integrate-and-push cycles; 0 retries until the push sticks
	MaxAttempts int
}

// Result describes a completed sync
type Result struct {
	Branch   string
	Strategy Strategy
	Attempts int
	Pushed   bool
	// RemoteSha is the remote tip after a successful push
	RemoteSha string
}

// session is the state of one sync invocation
type session struct {
	rctx *runtime.Context
	opts Options

	branch            string
	remote            string
	remoteBranch      string
	integrationBranch string
	onIntegration     bool
	strategy          Strategy
}

// Action performs the sync operation
func Action(ctx *runtime.Context, opts Options) (*Result, error) {
	s := &session{rctx: ctx, opts: opts}

	if err := s.resolve(); err != nil {
		return nil, err
	}
	return s.run()
}

func (s *session) resolve() error {
	gctx := s.rctx.Context
	eng := s.rctx.Engine
	repo := eng.Repository()

	current, err := actions.RequireFeatureBranch(gctx, eng)
	if err != nil {
		return err
	}

	s.strategy, err = resolveStrategy(gctx, eng.Config(), s.opts.Strategy)
	if err != nil {
		return err
	}

	s.remote, err = eng.RemoteName(gctx)
	if err != nil {
		return err
	}

	fetched := false
	if s.opts.BranchName != "" {
		if err := s.requireRemoteCounterpart(s.opts.BranchName); err != nil {
			return err
		}
		fetched = true
		if s.opts.BranchName != current {
			if err := s.switchToBranch(s.opts.BranchName); err != nil {
				return err
			}
			current = s.opts.BranchName
		}
	}
	s.branch = current

	if s.remote != "" && !s.opts.Local && !fetched {
		s.rctx.Splog.Debug("Fetching %s", s.remote)
		if err := repo.Fetch(gctx, s.remote); err != nil {
			return err
		}
	}

	if s.remote != "" {
		s.remoteBranch = s.remote + "/" + s.branch
	}
	s.integrationBranch, err = eng.IntegrationBranch(gctx)
	if err != nil {
		return err
	}
	s.onIntegration, err = eng.IsIntegrationBranch(gctx, s.branch)
	return err
}

func resolveStrategy(ctx context.Context, store *config.Store, requested Strategy) (Strategy, error) {
	if requested != StrategyDefault {
		return requested, nil
	}
	preference, err := store.DefaultRebaseSync(ctx)
	if err != nil {
		return StrategyDefault, err
	}
	if preference == config.False {
		return StrategyMerge, nil
	}
	return StrategyRebase, nil
}

// requireRemoteCounterpart fetches and fails unless name exists on the remote
func (s *session) requireRemoteCounterpart(name string) error {
	gctx := s.rctx.Context
	eng := s.rctx.Engine

	if s.remote == "" {
		return fmt.Errorf("cannot sync %s: %w", name, gserrors.NewBranchNotFoundError("<remote>/"+name))
	}
	if err := eng.Repository().Fetch(gctx, s.remote); err != nil {
		return err
	}
	_, err := eng.RequireBranch(gctx, s.remote+"/"+name)
	return err
}

// switchToBranch checks out name, whose remote counterpart is already known
// to exist. A local branch of that name is only reused when the remote
// already has all of it.
func (s *session) switchToBranch(name string) error {
	gctx := s.rctx.Context
	eng := s.rctx.Engine
	repo := eng.Repository()
	remoteBranch := s.remote + "/" + name

	_, exists, err := eng.LookupBranch(gctx, name)
	if err != nil {
		return err
	}
	if !exists {
		s.rctx.Splog.Info("Checking out %s tracking %s.", tui.ColorBranchName(name, true), remoteBranch)
		_, err := repo.Branch(gctx, git.CreateBranch{Name: name, Base: remoteBranch, Checkout: true, Track: true})
		return err
	}

	subsumed, err := eng.ContainsAllOf(gctx, remoteBranch, name)
	if err != nil {
		return err
	}
	if !subsumed {
		return &gserrors.DivergedBranchError{BranchName: name, RemoteBranch: remoteBranch}
	}
	return repo.Checkout(gctx, name)
}

func (s *session) run() (*Result, error) {
	gctx := s.rctx.Context
	splog := s.rctx.Splog
	eng := s.rctx.Engine
	repo := eng.Repository()
	store := eng.Config()

	result := &Result{Branch: s.branch, Strategy: s.strategy}
	splog.Info("Syncing %s with %s (%s).", tui.ColorBranchName(s.branch, true), s.integrationBranch, s.strategy)

	// foldRemote forces the remote branch to be integrated even when the
	// checkpoint says nothing changed; set once a push showed otherwise.
	foldRemote := false
	for attempt := 1; ; attempt++ {
		if err := gctx.Err(); err != nil {
			return nil, err
		}
		if s.opts.MaxAttempts > 0 && attempt > s.opts.MaxAttempts {
			return nil, fmt.Errorf("gave up syncing %s after %d attempts: %w", s.branch, s.opts.MaxAttempts, gserrors.ErrRemoteChanged)
		}
		result.Attempts = attempt
		if attempt > 1 {
			splog.Info("Retrying sync of %s (attempt %d).", s.branch, attempt)
		}

		prepush := ""
		if s.remoteBranch != "" {
			sha, err := repo.RevParse(gctx, s.remoteBranch)
			if err != nil {
				return nil, err
			}
			prepush = sha
		}

		rebased, err := s.integrate(prepush, foldRemote)
		if err != nil {
			return nil, conflict.Wrap(gctx, repo, store, err)
		}

		if s.remote == "" || s.opts.Local || s.onIntegration {
			splog.Debug("Not pushing %s", s.branch)
			return result, nil
		}

		err = repo.Push(gctx, git.PushOptions{
			Remote:         s.remote,
			LocalRef:       s.branch,
			RemoteBranch:   s.branch,
			Force:          s.opts.Force,
			ForceWithLease: !s.opts.Force && rebased,
			ExpectedSha:    prepush,
		})
		if errors.Is(err, gserrors.ErrRemoteChanged) {
			splog.Warn("%s changed on %s while syncing; integrating the new commits.", s.branch, s.remote)
			if err := repo.Fetch(gctx, s.remote); err != nil {
				return nil, err
			}
			foldRemote = true
			continue
		}
		if err != nil {
			return nil, err
		}

		if err := repo.Fetch(gctx, s.remote); err != nil {
			return nil, err
		}
		remoteSha, err := repo.RevParse(gctx, s.remoteBranch)
		if err != nil {
			return nil, err
		}
		localSha, err := repo.RevParse(gctx, s.branch)
		if err != nil {
			return nil, err
		}
		if remoteSha != localSha {
			splog.Warn("%s was pushed to by someone else during this sync; syncing again.", s.remoteBranch)
			foldRemote = true
			continue
		}

		if err := store.SetLastSyncedSha(gctx, s.branch, remoteSha); err != nil {
			return nil, err
		}
		result.Pushed = true
		result.RemoteSha = remoteSha
		splog.Info("Pushed %s to %s.", tui.ColorBranchName(s.branch, true), s.remote)
		return result, nil
	}
}

// integrate applies the strategy and reports whether history was rewritten
func (s *session) integrate(prepush string, foldRemote bool) (bool, error) {
	if s.strategy == StrategyMerge {
		return false, s.merge(prepush)
	}
	return s.rebase(prepush, foldRemote)
}

func (s *session) rebase(prepush string, foldRemote bool) (bool, error) {
	gctx := s.rctx.Context
	eng := s.rctx.Engine
	repo := eng.Repository()

	rebased := false
	if prepush != "" && !s.onIntegration {
		lastSynced, err := eng.Config().LastSyncedSha(gctx, s.branch)
		if err != nil {
			return false, err
		}
		if foldRemote || lastSynced != prepush {
			contains, err := eng.ContainsAllOf(gctx, s.branch, s.remoteBranch)
			if err != nil {
				return false, err
			}
			if !contains {
				s.rctx.Splog.Info("Rebasing %s onto %s.", s.branch, s.remoteBranch)
				if err := repo.Rebase(gctx, s.remoteBranch); err != nil {
					return false, err
				}
				rebased = true
			}
		}
	}

	contains, err := eng.ContainsAllOf(gctx, s.branch, s.integrationBranch)
	if err != nil {
		return false, err
	}
	if !contains {
		s.rctx.Splog.Info("Rebasing %s onto %s.", s.branch, s.integrationBranch)
		if err := repo.Rebase(gctx, s.integrationBranch); err != nil {
			return false, err
		}
		rebased = true
	}
	return rebased, nil
}

func (s *session) merge(prepush string) error {
	gctx := s.rctx.Context
	eng := s.rctx.Engine
	repo := eng.Repository()

	if prepush != "" && !s.onIntegration {
		contains, err := eng.ContainsAllOf(gctx, s.branch, s.remoteBranch)
		if err != nil {
			return err
		}
		if !contains {
			s.rctx.Splog.Info("Merging %s into %s.", s.remoteBranch, s.branch)
			if err := repo.Merge(gctx, s.remoteBranch); err != nil {
				return err
			}
		}
	}

	contains, err := eng.ContainsAllOf(gctx, s.branch, s.integrationBranch)
	if err != nil {
		return err
	}
	if !contains {
		s.rctx.Splog.Info("Merging %s into %s.", s.integrationBranch, s.branch)
		return repo.Merge(gctx, s.integrationBranch)
	}
	return nil
}
