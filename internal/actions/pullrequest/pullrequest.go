// Package pullrequest opens a GitHub pull request for the current branch.
package pullrequest

import (
	"errors"
	"fmt"
	"strings"

	"gitsync.dev/gitsync/internal/actions"
	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
	"gitsync.dev/gitsync/internal/github"
	"gitsync.dev/gitsync/internal/runtime"
	"gitsync.dev/gitsync/internal/tui"
)

// Options contains options for the pull-request command
type Options struct {
	// Title defaults to a prompt seeded with the latest commit subject
	Title string
	Body  string
	Draft bool
	// Edit opens the user's editor to write the body
	Edit bool
}

// Result is the pull request for the branch and whether this call opened it
type Result struct {
	PullRequest *github.PullRequestInfo
	Created     bool
}

const bodyTemplate = `
# Describe the change above. Lines starting with '#' are ignored.
`

// Action pushes the current branch and opens a pull request for it against
// the integration branch. An already open pull request is returned as is.
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
		return nil, fmt.Errorf("%w: cannot open a pull request from %s", gserrors.ErrIntegrationBranchOperation, current)
	}

	remote, err := eng.RemoteName(gctx)
	if err != nil {
		return nil, err
	}
	if remote == "" {
		return nil, fmt.Errorf("cannot open a pull request for %s: no remote configured", current)
	}

	client, err := ctx.GitHub()
	if err != nil {
		return nil, err
	}

	if err := repo.Push(gctx, git.PushOptions{Remote: remote, LocalRef: current, SetUpstream: true}); err != nil {
		return nil, err
	}

	existing, err := client.FindOpenPullRequest(gctx, current)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		ctx.Splog.Info("Pull request #%d is already open for %s: %s", existing.Number, current, existing.HTMLURL)
		return &Result{PullRequest: existing}, nil
	}

	title, err := resolveTitle(ctx, current, opts.Title)
	if err != nil {
		return nil, err
	}
	body, err := resolveBody(ctx, opts)
	if err != nil {
		return nil, err
	}
	base, err := eng.IntegrationBranchName(gctx)
	if err != nil {
		return nil, err
	}

	pr, err := client.CreatePullRequest(gctx, github.CreatePROptions{
		Title: title,
		Body:  body,
		Head:  current,
		Base:  base,
		Draft: opts.Draft,
	})
	if err != nil {
		return nil, err
	}
	ctx.Splog.Info("Opened pull request #%d: %s", pr.Number, pr.HTMLURL)
	return &Result{PullRequest: pr, Created: true}, nil
}

func resolveTitle(ctx *runtime.Context, branch, title string) (string, error) {
	if title = strings.TrimSpace(title); title != "" {
		return title, nil
	}

	subject, err := ctx.Engine.Repository().CommitSubject(ctx.Context, branch)
	if err != nil {
		return "", err
	}
	prompted, err := tui.PromptTextInput("Pull request title:", subject)
	if errors.Is(err, tui.ErrInteractiveDisabled) {
		ctx.Splog.Debug("Using the latest commit subject as the pull request title")
		prompted = subject
	} else if err != nil {
		return "", err
	}
	if prompted == "" {
		return "", fmt.Errorf("a pull request title is required")
	}
	return prompted, nil
}

func resolveBody(ctx *runtime.Context, opts Options) (string, error) {
	if !opts.Edit {
		return opts.Body, nil
	}

	coreEditor, err := ctx.Engine.Config().Get(ctx.Context, "core.editor")
	if err != nil {
		return "", err
	}
	edited, err := tui.OpenEditor(tui.ResolveEditor(coreEditor), opts.Body+bodyTemplate, "PULL_REQUEST_*.md")
	if err != nil {
		return "", err
	}
	return stripComments(edited), nil
}

// stripComments drops '#' lines the way git does for commit messages
func stripComments(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
