package git

import (
	"context"
	"fmt"
)

// RemoteNames returns configured remotes in the order git lists them
func (r *Repository) RemoteNames(ctx context.Context) ([]string, error) {
	out, err := r.runner.Run(ctx, "remote")
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}
	return Lines(out), nil
}

// RemoteURL returns the fetch URL of a remote
func (r *Repository) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := r.runner.Run(ctx, "config", "--get", "remote."+remote+".url")
	if err != nil {
		return "", fmt.Errorf("failed to read url of remote %s: %w", remote, err)
	}
	if out == "" {
		return "", fmt.Errorf("remote %s has no url", remote)
	}
	return out, nil
}

// Fetch updates remote-tracking refs, pruning branches deleted on the remote
func (r *Repository) Fetch(ctx context.Context, remote string) error {
	if _, err := r.runner.Run(ctx, "fetch", "--prune", remote); err != nil {
		return fmt.Errorf("failed to fetch from %s: %w", remote, err)
	}
	return nil
}
