// Package github is the small slice of the GitHub REST API gitsync uses:
// opening a pull request for a feature branch and closing it once the
// branch has been pushed straight to the integration branch.
package github

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// PullRequestInfo contains information about a pull request
// This is a simplified struct to avoid coupling to go-github library
type PullRequestInfo struct {
	Number  int
	HTMLURL string
	Title   string
	State   string
	Draft   bool
	Base    string
	Head    string
}

// CreatePROptions contains options for creating a pull request
type CreatePROptions struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// Client is an interface for GitHub API interactions
type Client interface {
	// CreatePullRequest opens a pull request
	CreatePullRequest(ctx context.Context, opts CreatePROptions) (*PullRequestInfo, error)

	// FindOpenPullRequest returns the open pull request whose head is branchName, or nil
	FindOpenPullRequest(ctx context.Context, branchName string) (*PullRequestInfo, error)

	// ClosePullRequest closes a pull request without merging it
	ClosePullRequest(ctx context.Context, number int) error

	// OwnerRepo returns the repository owner and name
	OwnerRepo() (owner, repo string)
}

// RealClient implements Client against the GitHub API
type RealClient struct {
	client *github.Client
	owner  string
	repo   string
}

var _ Client = (*RealClient)(nil)

// NewClient creates a client for the repository described by info,
// authenticating with token
func NewClient(ctx context.Context, info *RepoInfo, token string) (*RealClient, error) {
	if token == "" {
		return nil, fmt.Errorf("no GitHub token configured; set gitsync.github.token or GITHUB_TOKEN")
	}
	client, err := createGitHubClient(ctx, info.Hostname, token)
	if err != nil {
		return nil, err
	}
	return NewClientFromGitHub(client, info.Owner, info.Repo), nil
}

// NewClientFromGitHub wraps an already configured go-github client
func NewClientFromGitHub(client *github.Client, owner, repo string) *RealClient {
	return &RealClient{client: client, owner: owner, repo: repo}
}

func createGitHubClient(ctx context.Context, hostname, token string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	// GitHub Enterprise serves the REST API under /api/v3/
	if hostname != "github.com" {
		baseURL, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL for hostname %s: %w", hostname, err)
		}
		uploadURL, err := url.Parse(fmt.Sprintf("https://%s/api/uploads/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload URL for hostname %s: %w", hostname, err)
		}
		client.BaseURL = baseURL
		client.UploadURL = uploadURL
	}

	return client, nil
}

// OwnerRepo returns the repository owner and name
func (c *RealClient) OwnerRepo() (string, string) {
	return c.owner, c.repo
}

// CreatePullRequest opens a pull request
func (c *RealClient) CreatePullRequest(ctx context.Context, opts CreatePROptions) (*PullRequestInfo, error) {
	pr := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
		Draft: github.Bool(opts.Draft),
	}
	if opts.Body != "" {
		pr.Body = github.String(opts.Body)
	}

	created, _, err := c.client.PullRequests.Create(ctx, c.owner, c.repo, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	return toPullRequestInfo(created), nil
}

// FindOpenPullRequest returns the open pull request for branchName, or nil
func (c *RealClient) FindOpenPullRequest(ctx context.Context, branchName string) (*PullRequestInfo, error) {
	prs, _, err := c.client.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		State: "open",
		Head:  c.owner + ":" + branchName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests for %s: %w", branchName, err)
	}
	for _, pr := range prs {
		if pr.GetHead().GetRef() == branchName {
			return toPullRequestInfo(pr), nil
		}
	}
	return nil, nil
}

// ClosePullRequest closes a pull request without merging it
func (c *RealClient) ClosePullRequest(ctx context.Context, number int) error {
	_, _, err := c.client.PullRequests.Edit(ctx, c.owner, c.repo, number, &github.PullRequest{
		State: github.String("closed"),
	})
	if err != nil {
		return fmt.Errorf("failed to close pull request #%d: %w", number, err)
	}
	return nil
}

func toPullRequestInfo(pr *github.PullRequest) *PullRequestInfo {
	return &PullRequestInfo{
		Number:  pr.GetNumber(),
		HTMLURL: pr.GetHTMLURL(),
		Title:   pr.GetTitle(),
		State:   pr.GetState(),
		Draft:   pr.GetDraft(),
		Base:    pr.GetBase().GetRef(),
		Head:    pr.GetHead().GetRef(),
	}
}
