package tomaster_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"gitsync.dev/gitsync/internal/actions/tomaster"
	"gitsync.dev/gitsync/internal/config"
	"gitsync.dev/gitsync/internal/engine"
	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
	"gitsync.dev/gitsync/internal/github"
	"gitsync.dev/gitsync/internal/runtime"
	"gitsync.dev/gitsync/internal/tui"
	"gitsync.dev/gitsync/testhelpers"
)

func newContext(t *testing.T, scene *testhelpers.Scene) *runtime.Context {
	t.Helper()
	repo := git.NewRepository(scene.Runner())
	splog, err := tui.NewSplogWithWriters(io.Discard, io.Discard, "")
	require.NoError(t, err)
	rctx := runtime.NewContext(context.Background(), engine.New(repo, config.NewStore(repo), splog), splog)
	rctx.NewGitHubClient = func(context.Context, *engine.Engine) (github.Client, error) {
		return nil, errors.New("no GitHub in tests")
	}
	return rctx
}

func withMockGitHub(rctx *runtime.Context, mock *testhelpers.MockGitHubServer) {
	rctx.NewGitHubClient = func(context.Context, *engine.Engine) (github.Client, error) {
		return github.NewClientFromGitHub(mock.Client(), mock.Owner, mock.Repo), nil
	}
}

func featureScene(t *testing.T) *testhelpers.Scene {
	t.Helper()
	return testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		if err := testhelpers.RemoteSceneSetup(s); err != nil {
			return err
		}
		if err := s.Repo.CreateAndCheckoutBranch("feature"); err != nil {
			return err
		}
		if err := s.Repo.CommitFile("ours.txt", "ours", "our change"); err != nil {
			return err
		}
		return s.Repo.PushBranch("origin", "feature")
	})
}

func TestToMaster(t *testing.T) {
	t.Parallel()
	scene := featureScene(t)

	teammate := scene.Teammate("teammate")
	require.NoError(t, teammate.CheckoutBranch("master"))
	require.NoError(t, teammate.CommitFile("theirs.txt", "theirs", "their change"))
	require.NoError(t, teammate.PushBranch("origin", "master"))

	result, err := tomaster.Action(newContext(t, scene), tomaster.Options{})
	require.NoError(t, err)
	require.Equal(t, "feature", result.Branch)
	require.Equal(t, "master", result.Integration)
	require.Zero(t, result.ClosedPullRequest)
	require.NotNil(t, result.Retired)
	require.True(t, result.Retired.DeletedRemote)

	testhelpers.ExpectCommits(t, scene.Repo, "origin/master", []string{"our change", "their change", "1"})

	current, err := scene.Repo.CurrentBranchName()
	require.NoError(t, err)
	require.Equal(t, git.ParkingBranch, current)
	testhelpers.ExpectSameRevision(t, scene.Repo, git.ParkingBranch, "origin/master")
	testhelpers.ExpectBranches(t, scene.Repo, []string{git.ParkingBranch, "master"})

	remote, err := scene.Repo.RunGitCommandAndGetOutput("ls-remote", "--heads", "origin", "feature")
	require.NoError(t, err)
	require.Empty(t, remote)
}

func TestToMasterKeep(t *testing.T) {
	t.Parallel()
	scene := featureScene(t)
	mock := testhelpers.NewMockGitHubServer(t)
	mock.AddOpenPullRequest("feature", "master", "Our change")

	rctx := newContext(t, scene)
	withMockGitHub(rctx, mock)

	result, err := tomaster.Action(rctx, tomaster.Options{Keep: true})
	require.NoError(t, err)
	require.Nil(t, result.Retired)

	testhelpers.ExpectSameRevision(t, scene.Repo, "feature", "origin/master")
	current, err := scene.Repo.CurrentBranchName()
	require.NoError(t, err)
	require.Equal(t, "feature", current)
	require.Equal(t, "open", mock.PullRequests()[0].GetState())
}

func TestToMasterClosesPullRequest(t *testing.T) {
	t.Parallel()
	scene := featureScene(t)
	mock := testhelpers.NewMockGitHubServer(t)
	mock.AddOpenPullRequest("other", "master", "Someone else")
	number := mock.AddOpenPullRequest("feature", "master", "Our change")

	rctx := newContext(t, scene)
	withMockGitHub(rctx, mock)

	result, err := tomaster.Action(rctx, tomaster.Options{})
	require.NoError(t, err)
	require.Equal(t, number, result.ClosedPullRequest)

	prs := mock.PullRequests()
	require.Len(t, prs, 2)
	require.Equal(t, "open", prs[0].GetState())
	require.Equal(t, "closed", prs[1].GetState())
}

func TestToMasterWithoutRemote(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	require.NoError(t, scene.Repo.SetConfig(config.KeyIntegrationBranch, "main"))
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
	require.NoError(t, scene.Repo.CommitFile("ours.txt", "ours", "our change"))
	require.NoError(t, scene.Repo.CheckoutBranch("main"))
	require.NoError(t, scene.Repo.CommitFile("main.txt", "main", "main change"))
	require.NoError(t, scene.Repo.CheckoutBranch("feature"))

	result, err := tomaster.Action(newContext(t, scene), tomaster.Options{})
	require.NoError(t, err)
	require.False(t, result.Retired.DeletedRemote)

	testhelpers.ExpectCommits(t, scene.Repo, "main", []string{"our change", "main change", "1"})
	testhelpers.ExpectBranches(t, scene.Repo, []string{git.ParkingBranch, "main"})
	testhelpers.ExpectSameRevision(t, scene.Repo, git.ParkingBranch, "main")
}

func TestToMasterRefusesIntegrationBranch(t *testing.T) {
	t.Parallel()
	scene := featureScene(t)
	require.NoError(t, scene.Repo.CheckoutBranch("master"))

	_, err := tomaster.Action(newContext(t, scene), tomaster.Options{})
	require.ErrorIs(t, err, gserrors.ErrIntegrationBranchOperation)
}

func TestToMasterStopsOnConflict(t *testing.T) {
	t.Parallel()
	scene := featureScene(t)
	require.NoError(t, scene.Repo.CommitFile("1_test.txt", "ours", "our edit"))

	teammate := scene.Teammate("teammate")
	require.NoError(t, teammate.CheckoutBranch("master"))
	require.NoError(t, teammate.CommitFile("1_test.txt", "theirs", "their edit"))
	require.NoError(t, teammate.PushBranch("origin", "master"))

	_, err := tomaster.Action(newContext(t, scene), tomaster.Options{})
	require.ErrorIs(t, err, gserrors.ErrConflict)
	require.True(t, scene.Repo.RebaseInProgress())

	master, err := scene.Repo.RunGitCommandAndGetOutput("ls-remote", "--heads", "origin", "master")
	require.NoError(t, err)
	require.Contains(t, master, testhelpers.Must(teammate.GetRevision("master")))
}
