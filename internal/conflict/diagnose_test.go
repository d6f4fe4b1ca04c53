package conflict_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gitsync.dev/gitsync/internal/config"
	"gitsync.dev/gitsync/internal/conflict"
	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
	"gitsync.dev/gitsync/testhelpers"
)

// conflictingScene leaves branch1 and main with different edits to conflict_test.txt,
// with branch1 checked out
func conflictingScene(t *testing.T) *testhelpers.Scene {
	t.Helper()
	scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		return s.Repo.CreateChangeAndCommit("initial content", "conflict")
	})
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("branch1"))
	require.NoError(t, scene.Repo.CreateChangeAndCommit("branch1 modification", "conflict"))
	require.NoError(t, scene.Repo.CheckoutBranch("main"))
	require.NoError(t, scene.Repo.CreateChangeAndCommit("main modification", "conflict"))
	require.NoError(t, scene.Repo.CheckoutBranch("branch1"))
	return scene
}

func TestWrapRebaseConflict(t *testing.T) {
	t.Parallel()
	scene := conflictingScene(t)
	repo := git.NewRepository(scene.Runner())
	store := config.NewStore(repo)
	ctx := context.Background()

	rebaseErr := repo.Rebase(ctx, "main")
	require.Error(t, rebaseErr)

	err := conflict.Wrap(ctx, repo, store, rebaseErr)

	var conflictErr *conflict.Error
	require.ErrorAs(t, err, &conflictErr)
	require.ErrorIs(t, err, gserrors.ErrConflict)
	require.ErrorIs(t, err, gserrors.ErrRebaseConflict)

	require.Equal(t, []string{"conflict_test.txt"}, conflictErr.Report.UnresolvedFiles)
	require.Equal(t, []string{
		"git config --global rerere.enabled true",
		"git mergetool conflict_test.txt",
		"# Verify 'conflict_test.txt' merged correctly.",
		"git add conflict_test.txt",
		"git rebase --continue",
	}, conflictErr.Commands())

	var human gserrors.HumanError
	require.True(t, errors.As(err, &human))
	require.Contains(t, gserrors.Render(human), "'conflict_test.txt' was modified in both branches.")

	require.True(t, repo.IsRebaseInProgress(ctx), "the conflicted rebase is left for the user")
}

func TestWrapMergeConflict(t *testing.T) {
	t.Parallel()
	scene := conflictingScene(t)
	repo := git.NewRepository(scene.Runner())
	store := config.NewStore(repo)
	ctx := context.Background()

	err := conflict.Wrap(ctx, repo, store, repo.Merge(ctx, "main"))

	var conflictErr *conflict.Error
	require.ErrorAs(t, err, &conflictErr)
	require.ErrorIs(t, err, gserrors.ErrMergeConflict)
	require.Equal(t, "git commit", conflictErr.Commands()[len(conflictErr.Commands())-1])
}

func TestWrapPassesOtherErrorsThrough(t *testing.T) {
	t.Parallel()
	other := errors.New("boom")
	require.Same(t, other, conflict.Wrap(context.Background(), nil, nil, other))
}

func TestDiagnoseRecognisesRerereResolution(t *testing.T) {
	t.Parallel()
	scene := conflictingScene(t)
	repo := git.NewRepository(scene.Runner())
	store := config.NewStore(repo)
	ctx := context.Background()
	require.NoError(t, store.SetGlobal(ctx, config.KeyRerereEnabled, "true"))

	original, err := scene.Repo.GetRevision("branch1")
	require.NoError(t, err)

	// Resolve the conflict once so rerere records the resolution
	require.Error(t, repo.Rebase(ctx, "main"))
	require.NoError(t, scene.Repo.WriteFile("conflict_test.txt", "resolved\n", true))
	require.NoError(t, repo.RebaseContinue(ctx))
	require.NoError(t, scene.Repo.RunGitCommand("reset", "--hard", original))

	err = conflict.Wrap(ctx, repo, store, repo.Rebase(ctx, "main"))

	var conflictErr *conflict.Error
	require.ErrorAs(t, err, &conflictErr)
	require.Equal(t, []string{"conflict_test.txt"}, conflictErr.Report.ResolvedFiles)
	require.Empty(t, conflictErr.Report.UnresolvedFiles)
	require.Equal(t, []string{
		"# Verify that 'rerere' did the right thing for 'conflict_test.txt'.",
		"git add conflict_test.txt",
		"git rebase --continue",
	}, conflictErr.Commands())
}

func TestDiagnoseSuggestsGlobalRerereWhenOnlyEnabledLocally(t *testing.T) {
	t.Parallel()
	scene := conflictingScene(t)
	require.NoError(t, scene.Repo.SetConfig("rerere.enabled", "true"))
	repo := git.NewRepository(scene.Runner())
	ctx := context.Background()

	err := conflict.Wrap(ctx, repo, config.NewStore(repo), repo.Rebase(ctx, "main"))

	var conflictErr *conflict.Error
	require.ErrorAs(t, err, &conflictErr)
	require.Equal(t, "git config --global rerere.enabled true", conflictErr.Commands()[0])
	require.Contains(t, conflictErr.HumanMessage(), "Consider turning on 'rerere'.")
}
