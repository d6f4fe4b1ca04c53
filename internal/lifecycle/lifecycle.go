// Package lifecycle creates feature branches and retires them once their
// work has landed on the integration branch.
//
// Both directions go through the reserved parking branch (_parking_). Work
// started before a feature branch was named lives there, and a retired
// feature branch hands the working tree back to a fresh parking branch.
// Neither operation ever deletes commits that are not accounted for
// elsewhere; unexplained parking work is renamed instead of dropped.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"gitsync.dev/gitsync/internal/engine"
	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
	"gitsync.dev/gitsync/internal/tui"
)

// Lifecycle runs branch bootstrap and retirement against one repository
type Lifecycle struct {
	eng   *engine.Engine
	splog *tui.Splog
}

// New creates a Lifecycle
func New(eng *engine.Engine, splog *tui.Splog) *Lifecycle {
	return &Lifecycle{eng: eng, splog: splog}
}

// StartOptions controls StartFeatureBranch
type StartOptions struct {
	// Local skips fetching the remote before branching
	Local bool
}

// StartFeatureBranch creates and checks out the feature branch name.
//
// On the parking branch the new branch takes over the parking branch's
// commits and working tree, and the parking branch is deleted. Anywhere else
// it starts from the integration branch.
func (l *Lifecycle) StartFeatureBranch(ctx context.Context, name string, opts StartOptions) error {
	repo := l.eng.Repository()

	if err := repo.CheckRefFormat(ctx, name); err != nil {
		return err
	}
	if name == git.ParkingBranch {
		return fmt.Errorf("'%s' is reserved for gitsync", git.ParkingBranch)
	}
	if _, exists, err := l.eng.LookupBranch(ctx, name); err != nil {
		return err
	} else if exists {
		return &gserrors.BranchExistsError{BranchName: name}
	}

	hasRemote, err := l.eng.HasRemote(ctx)
	if err != nil {
		return err
	}
	if hasRemote && !opts.Local {
		remote, err := l.eng.RemoteName(ctx)
		if err != nil {
			return err
		}
		l.splog.Debug("Fetching %s", remote)
		if err := repo.Fetch(ctx, remote); err != nil {
			return err
		}
	}

	current, _, err := repo.CurrentBranch(ctx)
	if err != nil {
		return err
	}

	if current == git.ParkingBranch {
		if _, err := repo.Branch(ctx, git.CreateBranch{Name: name, Base: git.ParkingBranch, Checkout: true, NoTrack: true}); err != nil {
			return err
		}
		if _, err := repo.Branch(ctx, git.DeleteBranch{Name: git.ParkingBranch, Force: true}); err != nil {
			return err
		}
		l.splog.Info("Moved the work on %s to %s.", git.ParkingBranch, tui.ColorBranchName(name, true))
		return nil
	}

	integration, err := l.eng.IntegrationBranch(ctx)
	if err != nil {
		return err
	}
	if _, err := l.eng.RequireBranch(ctx, integration); err != nil {
		return err
	}
	if _, err := repo.Branch(ctx, git.CreateBranch{Name: name, Base: integration, Checkout: true, NoTrack: true}); err != nil {
		return err
	}
	l.splog.Info("Created %s from %s.", tui.ColorBranchName(name, true), integration)
	return nil
}

// RetireResult describes what Retire did
type RetireResult struct {
	Retired string
	// QuarantinedParking is the name the old parking branch was moved to,
	// or "" when it was deleted or did not exist
	QuarantinedParking string
	DeletedRemote      bool
}

// Retire removes the current feature branch once the integration branch
// contains all of its history, leaving a fresh parking branch at the
// integration tip checked out.
func (l *Lifecycle) Retire(ctx context.Context) (*RetireResult, error) {
	repo := l.eng.Repository()

	current, err := l.eng.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	if current == git.ParkingBranch {
		return nil, &gserrors.ParkedChangesError{BranchName: current}
	}
	if isIntegration, err := l.eng.IsIntegrationBranch(ctx, current); err != nil {
		return nil, err
	} else if isIntegration {
		return nil, fmt.Errorf("%w: refusing to retire %s", gserrors.ErrIntegrationBranchOperation, current)
	}
	if err := l.eng.RequireCleanWorkingTree(ctx); err != nil {
		return nil, err
	}

	integration, err := l.eng.IntegrationBranch(ctx)
	if err != nil {
		return nil, err
	}
	merged, err := l.eng.ContainsAllOf(ctx, integration, current)
	if err != nil {
		return nil, err
	}
	if !merged {
		return nil, &gserrors.NotYetMergedError{BranchName: current, Integration: integration}
	}

	result := &RetireResult{Retired: current}

	branches, err := l.eng.Branches(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := branches.Parking(); ok {
		quarantined, err := l.clearParking(ctx, branches, current, integration)
		if err != nil {
			return nil, err
		}
		result.QuarantinedParking = quarantined
	}

	if _, err := repo.Branch(ctx, git.CreateBranch{Name: git.ParkingBranch, Base: integration, Checkout: true, NoTrack: true}); err != nil {
		return nil, err
	}
	if _, err := repo.Branch(ctx, git.DeleteBranch{Name: current, Force: true}); err != nil {
		return nil, err
	}

	remoteBranch, err := l.eng.RemoteBranchName(ctx, current)
	if err != nil {
		return nil, err
	}
	if remoteBranch != "" && branches.Contains(remoteBranch) {
		remote, err := l.eng.RemoteName(ctx)
		if err != nil {
			return nil, err
		}
		err = repo.DeleteRemoteBranch(ctx, remote, current)
		switch {
		case errors.Is(err, gserrors.ErrBranchNotFound):
			l.splog.Warn("%s was already gone from %s.", current, remote)
		case err != nil:
			return nil, err
		default:
			result.DeletedRemote = true
		}
	}

	if err := l.eng.Config().ClearLastSyncedSha(ctx, current); err != nil {
		l.splog.Debug("failed to clear sync checkpoint for %s: %v", current, err)
	}

	l.splog.Info("Retired %s; now on %s.", current, tui.ColorBranchName(git.ParkingBranch, true))
	return result, nil
}

// clearParking deletes an existing parking branch, or renames it when it holds
// commits that neither the integration branch nor the retiring branch has.
func (l *Lifecycle) clearParking(ctx context.Context, branches *git.BranchSet, retiring, integration string) (string, error) {
	repo := l.eng.Repository()

	ahead, err := l.eng.IsAheadOf(ctx, git.ParkingBranch, integration)
	if err != nil {
		return "", err
	}
	subsumed, err := l.eng.ContainsAllOf(ctx, retiring, git.ParkingBranch)
	if err != nil {
		return "", err
	}

	if ahead && !subsumed {
		target := quarantineName(branches)
		if _, err := repo.Branch(ctx, git.RenameBranch{From: git.ParkingBranch, To: target}); err != nil {
			return "", err
		}
		l.splog.Warn("There were unaccounted-for commits on %s; it has been renamed to %s.", git.ParkingBranch, target)
		l.splog.Tip("Rename %s to a feature branch or delete it with 'git branch -D %s'.", target, target)
		return target, nil
	}

	if _, err := repo.Branch(ctx, git.DeleteBranch{Name: git.ParkingBranch, Force: true}); err != nil {
		return "", err
	}
	return "", nil
}

// quarantineName is _parking_OLD_, or the first free numbered variant when an
// earlier quarantine is still around
func quarantineName(branches *git.BranchSet) string {
	name := git.ParkingQuarantineBranch
	for i := 1; branches.Contains(name); i++ {
		name = fmt.Sprintf("%s%d", git.ParkingQuarantineBranch, i)
	}
	return name
}
