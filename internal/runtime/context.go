package runtime

import (
	"context"
	"fmt"
	"io"

	"gitsync.dev/gitsync/internal/config"
	"gitsync.dev/gitsync/internal/engine"
	"gitsync.dev/gitsync/internal/git"
	"gitsync.dev/gitsync/internal/github"
	"gitsync.dev/gitsync/internal/tui"
)

// GitHubClientFactory builds a GitHub client for the repository behind eng
type GitHubClientFactory func(ctx context.Context, eng *engine.Engine) (github.Client, error)

// Context provides access to engine and output for commands
type Context struct {
	Context  context.Context
	Engine   *engine.Engine
	Splog    *tui.Splog
	RepoRoot string

	// NewGitHubClient is called the first time GitHub is needed
	NewGitHubClient GitHubClientFactory
	githubClient    github.Client
}

// NewContext creates a context around an existing engine
func NewContext(ctx context.Context, eng *engine.Engine, splog *tui.Splog) *Context {
	return &Context{
		Context:         ctx,
		Engine:          eng,
		Splog:           splog,
		RepoRoot:        eng.Repository().Dir(),
		NewGitHubClient: DefaultGitHubClient,
	}
}

// GetContext opens the repository containing dir ("" meaning the process
// working directory) and wires up logging and configuration
func GetContext(ctx context.Context, dir string) (*Context, error) {
	splog, err := tui.NewSplogWithConfig(tui.GetLogFilePath())
	if err != nil {
		return nil, err
	}
	return newContextWithSplog(ctx, dir, splog)
}

// GetContextWithWriters is GetContext with console output sent to stdout and
// failure reports to stderr
func GetContextWithWriters(ctx context.Context, dir string, stdout, stderr io.Writer) (*Context, error) {
	splog, err := tui.NewSplogWithWriters(stdout, stderr, tui.GetLogFilePath())
	if err != nil {
		return nil, err
	}
	return newContextWithSplog(ctx, dir, splog)
}

func newContextWithSplog(ctx context.Context, dir string, splog *tui.Splog) (*Context, error) {
	repo, err := git.Open(dir, splog)
	if err != nil {
		_ = splog.Close()
		return nil, err
	}

	eng := engine.New(repo, config.NewStore(repo), splog)
	return NewContext(ctx, eng, splog), nil
}

// GitHub returns the GitHub client, creating it on first use
func (c *Context) GitHub() (github.Client, error) {
	if c.githubClient != nil {
		return c.githubClient, nil
	}
	if c.NewGitHubClient == nil {
		return nil, fmt.Errorf("no GitHub client available")
	}
	client, err := c.NewGitHubClient(c.Context, c.Engine)
	if err != nil {
		return nil, err
	}
	c.githubClient = client
	return client, nil
}

// Close releases the log file
func (c *Context) Close() error {
	return c.Splog.Close()
}

// DefaultGitHubClient derives owner/repo from the sync remote's URL and
// authenticates with the configured token
func DefaultGitHubClient(ctx context.Context, eng *engine.Engine) (github.Client, error) {
	remote, err := eng.RemoteName(ctx)
	if err != nil {
		return nil, err
	}
	if remote == "" {
		return nil, fmt.Errorf("no remote configured")
	}
	remoteURL, err := eng.Repository().RemoteURL(ctx, remote)
	if err != nil {
		return nil, err
	}
	info, err := github.ParseGitHubRemoteURL(remoteURL)
	if err != nil {
		return nil, err
	}
	token, err := eng.Config().GitHubToken(ctx)
	if err != nil {
		return nil, err
	}
	client, err := github.NewClient(ctx, info, token)
	if err != nil {
		return nil, err
	}
	return client, nil
}
