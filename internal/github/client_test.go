package github_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	githubpkg "gitsync.dev/gitsync/internal/github"
	"gitsync.dev/gitsync/testhelpers"
)

func TestCreatePullRequest(t *testing.T) {
	server := testhelpers.NewMockGitHubServer(t)
	client := githubpkg.NewClientFromGitHub(server.Client(), server.Owner, server.Repo)

	pr, err := client.CreatePullRequest(context.Background(), githubpkg.CreatePROptions{
		Title: "Add feature",
		Body:  "Details",
		Head:  "feature",
		Base:  "master",
		Draft: true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, pr.Number)
	require.Equal(t, "Add feature", pr.Title)
	require.Equal(t, "feature", pr.Head)
	require.Equal(t, "master", pr.Base)
	require.True(t, pr.Draft)
	require.NotEmpty(t, pr.HTMLURL)

	prs := server.PullRequests()
	require.Len(t, prs, 1)
	require.Equal(t, "Details", prs[0].GetBody())
}

func TestFindAndClosePullRequest(t *testing.T) {
	server := testhelpers.NewMockGitHubServer(t)
	server.AddOpenPullRequest("other", "master", "Other")
	number := server.AddOpenPullRequest("feature", "master", "Feature")
	client := githubpkg.NewClientFromGitHub(server.Client(), server.Owner, server.Repo)
	ctx := context.Background()

	pr, err := client.FindOpenPullRequest(ctx, "feature")
	require.NoError(t, err)
	require.NotNil(t, pr)
	require.Equal(t, number, pr.Number)

	require.NoError(t, client.ClosePullRequest(ctx, number))

	pr, err = client.FindOpenPullRequest(ctx, "feature")
	require.NoError(t, err)
	require.Nil(t, pr, "closed pull requests are not returned")

	require.Error(t, client.ClosePullRequest(ctx, 999))
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := githubpkg.NewClient(context.Background(), &githubpkg.RepoInfo{Hostname: "github.com", Owner: "o", Repo: "r"}, "")
	require.Error(t, err)

	client, err := githubpkg.NewClient(context.Background(), &githubpkg.RepoInfo{Hostname: "github.com", Owner: "o", Repo: "r"}, "token")
	require.NoError(t, err)
	owner, repo := client.OwnerRepo()
	require.Equal(t, "o", owner)
	require.Equal(t, "r", repo)
}

func TestParseGitHubRemoteURL(t *testing.T) {
	tests := []struct {
		url      string
		expected githubpkg.RepoInfo
	}{
		{"https://github.com/owner/repo.git", githubpkg.RepoInfo{Hostname: "github.com", Owner: "owner", Repo: "repo"}},
		{"https://github.com/owner/repo", githubpkg.RepoInfo{Hostname: "github.com", Owner: "owner", Repo: "repo"}},
		{"git@github.com:owner/repo.git", githubpkg.RepoInfo{Hostname: "github.com", Owner: "owner", Repo: "repo"}},
		{"ssh://git@github.company.com:22/team/service.git", githubpkg.RepoInfo{Hostname: "github.company.com", Owner: "team", Repo: "service"}},
		{"https://user@github.company.com/team/service/", githubpkg.RepoInfo{Hostname: "github.company.com", Owner: "team", Repo: "service"}},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			info, err := githubpkg.ParseGitHubRemoteURL(tt.url)
			require.NoError(t, err)
			require.Equal(t, tt.expected, *info)
		})
	}

	for _, bad := range []string{"/tmp/repo-origin.git", "https://github.com/owner", "not a url"} {
		_, err := githubpkg.ParseGitHubRemoteURL(bad)
		require.Error(t, err, bad)
	}
}
