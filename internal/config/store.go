// Package config reads and writes gitsync settings stored in git config.
//
// Values are read lazily and cached for the life of the process. Writes go
// straight to git and update the cache, so a Store is always consistent with
// what it has written itself. Changes made by other processes are not seen.
package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"

	"gitsync.dev/gitsync/internal/git"
)

// Well-known configuration keys
const (
	KeyIntegrationBranch = "gitsync.integrationBranch"
	KeyDefaultRebaseSync = "gitsync.defaultRebaseSync"
	KeyRemoteName        = "gitsync.remoteName"
	KeyGitHubToken       = "gitsync.github.token"
	KeyRerereEnabled     = "rerere.enabled"
	KeyRerereAutoupdate  = "rerere.autoupdate"
)

// globalCachePrefix keeps global-only reads apart from effective values in the cache
const globalCachePrefix = "global:"

// DefaultIntegrationBranch is used when gitsync.integrationBranch is unset
const DefaultIntegrationBranch = "master"

// TriBool is a boolean setting that may also be absent
type TriBool int

const (
	// Unset means the key is not configured
	Unset TriBool = iota
	// True means the key is configured to a true value
	True
	// False means the key is configured to a false value
	False
)

// IsTrue reports whether the setting is explicitly true
func (b TriBool) IsTrue() bool { return b == True }

// Backend is the subset of git.Repository the store needs
type Backend interface {
	ConfigGet(ctx context.Context, key string, scope git.ConfigScope) (string, error)
	ConfigSet(ctx context.Context, key, value string, scope git.ConfigScope) error
	ConfigUnset(ctx context.Context, key string, scope git.ConfigScope) error
}

// Store is a cached view over git config
type Store struct {
	backend Backend

	mu    sync.Mutex
	cache map[string]string
}

// NewStore creates a Store backed by the given repository
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		cache:   make(map[string]string),
	}
}

// Get returns the effective value of key, or "" when it is not set
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.cache[key]; ok {
		return value, nil
	}
	value, err := s.backend.ConfigGet(ctx, key, git.ScopeEffective)
	if err != nil {
		return "", err
	}
	s.cache[key] = value
	return value, nil
}

// GetGlobal returns key from the user's global config only, or "" when it is
// not set there
func (s *Store) GetGlobal(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cacheKey := globalCachePrefix + key
	if value, ok := s.cache[cacheKey]; ok {
		return value, nil
	}
	value, err := s.backend.ConfigGet(ctx, key, git.ScopeGlobal)
	if err != nil {
		return "", err
	}
	s.cache[cacheKey] = value
	return value, nil
}

// GetBool reads key as a git boolean
func (s *Store) GetBool(ctx context.Context, key string) (TriBool, error) {
	value, err := s.Get(ctx, key)
	if err != nil {
		return Unset, err
	}
	return parseBool(value), nil
}

// Set writes key to the repository config and updates the cache
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.ConfigSet(ctx, key, value, git.ScopeLocal); err != nil {
		return err
	}
	s.cache[key] = value
	return nil
}

// SetGlobal writes key to the user's global config. The cached value is
// dropped because a repository-level value may still take precedence.
func (s *Store) SetGlobal(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.ConfigSet(ctx, key, value, git.ScopeGlobal); err != nil {
		return err
	}
	delete(s.cache, key)
	s.cache[globalCachePrefix+key] = value
	return nil
}

// Unset removes key from the repository config
func (s *Store) Unset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.ConfigUnset(ctx, key, git.ScopeLocal); err != nil {
		return err
	}
	delete(s.cache, key)
	return nil
}

// IntegrationBranch returns the configured integration branch name
func (s *Store) IntegrationBranch(ctx context.Context) (string, error) {
	value, err := s.Get(ctx, KeyIntegrationBranch)
	if err != nil {
		return "", err
	}
	if value == "" {
		return DefaultIntegrationBranch, nil
	}
	return value, nil
}

// DefaultRebaseSync reports whether sync should rebase when no strategy is given
func (s *Store) DefaultRebaseSync(ctx context.Context) (TriBool, error) {
	return s.GetBool(ctx, KeyDefaultRebaseSync)
}

// RemoteNameOverride returns the explicitly configured remote, if any
func (s *Store) RemoteNameOverride(ctx context.Context) (string, error) {
	return s.Get(ctx, KeyRemoteName)
}

// RerereEnabledGlobally reports whether git's conflict-reuse feature is on in
// the user's global config. A repository-only setting does not count.
func (s *Store) RerereEnabledGlobally(ctx context.Context) (bool, error) {
	value, err := s.GetGlobal(ctx, KeyRerereEnabled)
	if err != nil {
		return false, err
	}
	return parseBool(value).IsTrue(), nil
}

// RerereAutoupdate reports whether rerere stages the files it resolves
func (s *Store) RerereAutoupdate(ctx context.Context) (bool, error) {
	value, err := s.GetBool(ctx, KeyRerereAutoupdate)
	return value.IsTrue(), err
}

// GitHubToken returns the API token from config, falling back to GITHUB_TOKEN
func (s *Store) GitHubToken(ctx context.Context) (string, error) {
	value, err := s.Get(ctx, KeyGitHubToken)
	if err != nil {
		return "", err
	}
	if value != "" {
		return value, nil
	}
	return os.Getenv("GITHUB_TOKEN"), nil
}

// LastSyncedSha returns the remote sha recorded by the last successful sync of branch
func (s *Store) LastSyncedSha(ctx context.Context, branch string) (string, error) {
	return s.Get(ctx, lastShaKey(branch))
}

// SetLastSyncedSha records sha as the last synced remote tip of branch
func (s *Store) SetLastSyncedSha(ctx context.Context, branch, sha string) error {
	return s.Set(ctx, lastShaKey(branch), sha)
}

// ClearLastSyncedSha forgets the sync checkpoint of branch
func (s *Store) ClearLastSyncedSha(ctx context.Context, branch string) error {
	return s.Unset(ctx, lastShaKey(branch))
}

func lastShaKey(branch string) string {
	return "sync." + branch + ".lastSha"
}

// parseBool follows git's boolean spellings
func parseBool(value string) TriBool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return Unset
	case "yes", "on", "true":
		return True
	case "no", "off", "false":
		return False
	}
	if n, err := strconv.Atoi(value); err == nil {
		if n != 0 {
			return True
		}
		return False
	}
	return Unset
}
