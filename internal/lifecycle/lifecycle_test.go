package lifecycle_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"gitsync.dev/gitsync/internal/config"
	"gitsync.dev/gitsync/internal/engine"
	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
	"gitsync.dev/gitsync/internal/lifecycle"
	"gitsync.dev/gitsync/internal/tui"
	"gitsync.dev/gitsync/testhelpers"
)

func newLifecycle(t *testing.T, scene *testhelpers.Scene) *lifecycle.Lifecycle {
	t.Helper()
	repo := git.NewRepository(scene.Runner())
	splog, err := tui.NewSplogWithWriters(io.Discard, io.Discard, "")
	require.NoError(t, err)
	return lifecycle.New(engine.New(repo, config.NewStore(repo), splog), splog)
}

func TestStartFeatureBranchFromIntegration(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	lc := newLifecycle(t, scene)
	ctx := context.Background()

	// Local-only history on master must not leak into the new branch
	require.NoError(t, scene.Repo.CreateChangeAndCommit("unpushed", "local"))

	require.NoError(t, lc.StartFeatureBranch(ctx, "feature", lifecycle.StartOptions{}))

	current, err := scene.Repo.CurrentBranchName()
	require.NoError(t, err)
	require.Equal(t, "feature", current)
	testhelpers.ExpectSameRevision(t, scene.Repo, "feature", "origin/master")

	upstream, err := scene.Repo.RunGitCommandAndGetOutput("config", "--default", "", "--get", "branch.feature.merge")
	require.NoError(t, err)
	require.Empty(t, upstream)
}

func TestStartFeatureBranchPicksUpTeammatePushes(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	lc := newLifecycle(t, scene)
	ctx := context.Background()

	teammate := scene.Teammate("teammate")
	require.NoError(t, teammate.CheckoutBranch("master"))
	require.NoError(t, teammate.CommitFile("theirs.txt", "theirs", "their change"))
	require.NoError(t, teammate.PushBranch("origin", "master"))

	require.NoError(t, lc.StartFeatureBranch(ctx, "feature", lifecycle.StartOptions{}))
	testhelpers.ExpectCommits(t, scene.Repo, "feature", []string{"their change", "1"})
}

func TestStartFeatureBranchFromParking(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	lc := newLifecycle(t, scene)
	ctx := context.Background()

	require.NoError(t, scene.Repo.CreateAndCheckoutBranch(git.ParkingBranch))
	require.NoError(t, scene.Repo.CommitFile("parked.txt", "parked", "parked work"))
	require.NoError(t, scene.Repo.CreateChange("in progress", "wip", true))

	require.NoError(t, lc.StartFeatureBranch(ctx, "feature", lifecycle.StartOptions{Local: true}))

	testhelpers.ExpectBranches(t, scene.Repo, []string{"feature", "master"})
	testhelpers.ExpectCommits(t, scene.Repo, "feature", []string{"parked work", "1"})

	status, err := scene.Repo.RunGitCommandAndGetOutput("status", "--porcelain")
	require.NoError(t, err)
	require.Equal(t, "?? wip_test.txt", status, "uncommitted work travels with the branch")
}

func TestStartFeatureBranchWithoutRemote(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	require.NoError(t, scene.Repo.SetConfig(config.KeyIntegrationBranch, "main"))
	lc := newLifecycle(t, scene)
	ctx := context.Background()

	require.NoError(t, lc.StartFeatureBranch(ctx, "feature", lifecycle.StartOptions{}))
	testhelpers.ExpectSameRevision(t, scene.Repo, "feature", "main")
}

func TestStartFeatureBranchRejectsBadNames(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	lc := newLifecycle(t, scene)
	ctx := context.Background()

	err := lc.StartFeatureBranch(ctx, "master", lifecycle.StartOptions{Local: true})
	require.ErrorIs(t, err, gserrors.ErrBranchExists)

	require.Error(t, lc.StartFeatureBranch(ctx, "bad..name", lifecycle.StartOptions{Local: true}))
	require.Error(t, lc.StartFeatureBranch(ctx, git.ParkingBranch, lifecycle.StartOptions{Local: true}))

	testhelpers.ExpectBranches(t, scene.Repo, []string{"master"})
}

// mergedFeatureScene has a pushed branch "feature" whose commit also landed
// on origin/master, with no local master branch
func mergedFeatureScene(t *testing.T) *testhelpers.Scene {
	t.Helper()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
	require.NoError(t, scene.Repo.CommitFile("feature.txt", "feature", "feature work"))
	require.NoError(t, scene.Repo.PushBranch("origin", "feature"))
	require.NoError(t, scene.Repo.RunGitCommand("push", "origin", "feature:master"))
	require.NoError(t, scene.Repo.Fetch("origin"))
	require.NoError(t, scene.Repo.DeleteBranch("master"))
	return scene
}

func TestRetireMergedBranch(t *testing.T) {
	t.Parallel()
	scene := mergedFeatureScene(t)
	lc := newLifecycle(t, scene)
	ctx := context.Background()

	result, err := lc.Retire(ctx)
	require.NoError(t, err)
	require.Equal(t, "feature", result.Retired)
	require.True(t, result.DeletedRemote)
	require.Empty(t, result.QuarantinedParking)

	testhelpers.ExpectBranches(t, scene.Repo, []string{git.ParkingBranch})
	current, err := scene.Repo.CurrentBranchName()
	require.NoError(t, err)
	require.Equal(t, git.ParkingBranch, current)
	testhelpers.ExpectSameRevision(t, scene.Repo, git.ParkingBranch, "origin/master")

	remoteHeads, err := scene.Repo.RunGitCommandAndGetOutput("ls-remote", "--heads", "origin", "feature")
	require.NoError(t, err)
	require.Empty(t, remoteHeads)

	upstream, err := scene.Repo.RunGitCommandAndGetOutput("config", "--default", "", "--get", "branch._parking_.merge")
	require.NoError(t, err)
	require.Empty(t, upstream, "the parking branch never tracks a remote")
}

func TestRetireWhenRemoteBranchIsAlreadyGone(t *testing.T) {
	t.Parallel()
	scene := mergedFeatureScene(t)
	require.NoError(t, scene.Teammate("teammate").RunGitCommand("push", "origin", "--delete", "feature"))
	lc := newLifecycle(t, scene)

	result, err := lc.Retire(context.Background())
	require.NoError(t, err)
	require.Equal(t, "feature", result.Retired)
	require.False(t, result.DeletedRemote)

	testhelpers.ExpectBranches(t, scene.Repo, []string{git.ParkingBranch})
	current, err := scene.Repo.CurrentBranchName()
	require.NoError(t, err)
	require.Equal(t, git.ParkingBranch, current)
}

func TestRetireLocalOnlyBranch(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
	lc := newLifecycle(t, scene)

	result, err := lc.Retire(context.Background())
	require.NoError(t, err)
	require.False(t, result.DeletedRemote)
	testhelpers.ExpectBranches(t, scene.Repo, []string{git.ParkingBranch, "master"})
}

func TestRetireRefusesUnmergedWork(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
	require.NoError(t, scene.Repo.CommitFile("feature.txt", "feature", "feature work"))
	lc := newLifecycle(t, scene)

	_, err := lc.Retire(context.Background())
	require.ErrorIs(t, err, gserrors.ErrNotYetMerged)

	testhelpers.ExpectBranches(t, scene.Repo, []string{"feature", "master"})
	current, err := scene.Repo.CurrentBranchName()
	require.NoError(t, err)
	require.Equal(t, "feature", current)
}

func TestRetireRefusesWrongBranches(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	lc := newLifecycle(t, scene)
	ctx := context.Background()

	_, err := lc.Retire(ctx)
	require.ErrorIs(t, err, gserrors.ErrIntegrationBranchOperation)

	require.NoError(t, scene.Repo.CreateAndCheckoutBranch(git.ParkingBranch))
	_, err = lc.Retire(ctx)
	require.ErrorIs(t, err, gserrors.ErrParkedChanges)

	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
	require.NoError(t, scene.Repo.CreateChange("dirty", "1", true))
	_, err = lc.Retire(ctx)
	require.ErrorIs(t, err, gserrors.ErrUncommittedChanges)
}

func TestRetireQuarantinesUnaccountedParkingWork(t *testing.T) {
	t.Parallel()
	scene := mergedFeatureScene(t)

	require.NoError(t, scene.Repo.CheckoutBranch("origin/master"))
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch(git.ParkingBranch))
	require.NoError(t, scene.Repo.CommitFile("stray.txt", "stray", "stray work"))
	strayTip, err := scene.Repo.GetRevision(git.ParkingBranch)
	require.NoError(t, err)
	require.NoError(t, scene.Repo.CheckoutBranch("feature"))

	lc := newLifecycle(t, scene)
	result, err := lc.Retire(context.Background())
	require.NoError(t, err)
	require.Equal(t, git.ParkingQuarantineBranch, result.QuarantinedParking)

	testhelpers.ExpectBranches(t, scene.Repo, []string{git.ParkingBranch, git.ParkingQuarantineBranch})
	testhelpers.ExpectSameRevision(t, scene.Repo, git.ParkingBranch, "origin/master")
	quarantined, err := scene.Repo.GetRevision(git.ParkingQuarantineBranch)
	require.NoError(t, err)
	require.Equal(t, strayTip, quarantined)
}

func TestRetireQuarantineDoesNotOverwriteEarlierQuarantine(t *testing.T) {
	t.Parallel()
	scene := mergedFeatureScene(t)

	require.NoError(t, scene.Repo.CheckoutBranch("origin/master"))
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch(git.ParkingBranch))
	require.NoError(t, scene.Repo.CommitFile("stray.txt", "stray", "stray work"))
	require.NoError(t, scene.Repo.CreateBranch(git.ParkingQuarantineBranch))
	require.NoError(t, scene.Repo.CheckoutBranch("feature"))

	lc := newLifecycle(t, scene)
	result, err := lc.Retire(context.Background())
	require.NoError(t, err)
	require.Equal(t, git.ParkingQuarantineBranch+"1", result.QuarantinedParking)
	testhelpers.ExpectBranches(t, scene.Repo, []string{git.ParkingBranch, git.ParkingQuarantineBranch, git.ParkingQuarantineBranch + "1"})
}

func TestRetireDeletesStaleParking(t *testing.T) {
	t.Parallel()
	scene := mergedFeatureScene(t)

	// A parking branch behind the integration branch holds nothing of value
	require.NoError(t, scene.Repo.RunGitCommand("branch", git.ParkingBranch, "origin/master~1"))

	lc := newLifecycle(t, scene)
	result, err := lc.Retire(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.QuarantinedParking)
	testhelpers.ExpectBranches(t, scene.Repo, []string{git.ParkingBranch})
	testhelpers.ExpectSameRevision(t, scene.Repo, git.ParkingBranch, "origin/master")
}

func TestRetireDeletesParkingAlreadyIntegrated(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch(git.ParkingBranch))
	require.NoError(t, scene.Repo.CommitFile("parked.txt", "parked", "parked work"))
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
	require.NoError(t, scene.Repo.RunGitCommand("push", "origin", "feature:master"))
	require.NoError(t, scene.Repo.Fetch("origin"))

	lc := newLifecycle(t, scene)
	result, err := lc.Retire(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.QuarantinedParking)
	testhelpers.ExpectBranches(t, scene.Repo, []string{git.ParkingBranch, "master"})
}
