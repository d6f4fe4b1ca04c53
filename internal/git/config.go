package git

import (
	"context"
	"fmt"
)

// ConfigScope selects which configuration file a config command reads or writes
type ConfigScope int

const (
	// ScopeEffective reads the merged value git would use; writes go to the repository
	ScopeEffective ConfigScope = iota
	// ScopeLocal is the repository's .git/config
	ScopeLocal
	// ScopeGlobal is the user's ~/.gitconfig
	ScopeGlobal
)

func (s ConfigScope) flags() []string {
	switch s {
	case ScopeLocal:
		return []string{"--local"}
	case ScopeGlobal:
		return []string{"--global"}
	default:
		return nil
	}
}

// ConfigGet reads a config value; a missing key yields ""
func (r *Repository) ConfigGet(ctx context.Context, key string, scope ConfigScope) (string, error) {
	args := append([]string{"config"}, scope.flags()...)
	args = append(args, "--get", key)
	out, err := r.runner.Run(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("failed to read config %s: %w", key, err)
	}
	return out, nil
}

// ConfigSet writes a config value
func (r *Repository) ConfigSet(ctx context.Context, key, value string, scope ConfigScope) error {
	args := append([]string{"config"}, scope.flags()...)
	args = append(args, key, value)
	if _, err := r.runner.Run(ctx, args...); err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

// ConfigUnset removes a config value; removing a missing key is not an error
func (r *Repository) ConfigUnset(ctx context.Context, key string, scope ConfigScope) error {
	current, err := r.ConfigGet(ctx, key, scope)
	if err != nil {
		return err
	}
	if current == "" {
		return nil
	}
	args := append([]string{"config"}, scope.flags()...)
	args = append(args, "--unset", key)
	if _, err := r.runner.Run(ctx, args...); err != nil {
		return fmt.Errorf("failed to unset config %s: %w", key, err)
	}
	return nil
}
