// Package testhelpers provides testing utilities for gitsync,
// including a scene system, Git repository helpers, and custom assertions.
package testhelpers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected local branches.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	branches, err := repo.GetLocalBranches()
	require.NoError(t, err, "Failed to list branches")

	sort.Strings(branches)
	sorted := append([]string{}, expected...)
	sort.Strings(sorted)

	require.Equal(t, sorted, branches, "Branches do not match")
}

// ExpectCommits asserts that the newest commits reachable from rev have the
// expected subjects, newest first.
func ExpectCommits(t *testing.T, repo *GitRepo, rev string, expected []string) {
	t.Helper()

	messages, err := repo.ListCommitMessages(rev)
	require.NoError(t, err, "Failed to list commits")

	if len(messages) < len(expected) {
		require.Fail(t, "Not enough commits", "Expected %d commits, got %d", len(expected), len(messages))
		return
	}
	require.Equal(t, expected, messages[:len(expected)], "Commits do not match")
}

// ExpectSameRevision asserts that two revisions resolve to the same commit.
func ExpectSameRevision(t *testing.T, repo *GitRepo, a, b string) {
	t.Helper()

	shaA, err := repo.GetRevision(a)
	require.NoError(t, err)
	shaB, err := repo.GetRevision(b)
	require.NoError(t, err)
	require.Equal(t, shaA, shaB, "%s and %s point at different commits", a, b)
}
