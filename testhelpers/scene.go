package testhelpers

import (
	"path/filepath"
	"testing"

	"gitsync.dev/gitsync/internal/git"
)

// Scene represents a test scene with a temporary directory and Git repository.
// Scenes never change the process working directory, so tests using them can
// run in parallel.
type Scene struct {
	Dir  string
	Repo *GitRepo
	// GlobalConfigPath stands in for ~/.gitconfig for commands run through Runner
	GlobalConfigPath string
	t                *testing.T
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene with a temporary directory and Git repository.
// Cleanup is handled by t.TempDir().
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	tmpDir := filepath.Join(t.TempDir(), "repo")

	repo, err := NewGitRepo(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{
		Dir:              tmpDir,
		Repo:             repo,
		GlobalConfigPath: filepath.Join(filepath.Dir(tmpDir), "gitconfig"),
		t:                t,
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	return scene
}

// Runner returns a command runner for the scene's repository that is
// isolated from the developer's own git configuration.
func (s *Scene) Runner() *git.CommandRunner {
	return git.NewCommandRunner(s.Dir).WithEnv("GIT_CONFIG_GLOBAL="+s.GlobalConfigPath, "GIT_CONFIG_NOSYSTEM=1")
}

// Teammate clones the scene's "origin" remote into a second working copy,
// standing in for someone else pushing to the shared remote.
func (s *Scene) Teammate(name string) *GitRepo {
	s.t.Helper()

	clone, err := CloneGitRepo(s.Dir+"-origin.git", filepath.Join(filepath.Dir(s.Dir), name))
	if err != nil {
		s.t.Fatalf("Failed to clone teammate repo: %v", err)
	}
	return clone
}

// BasicSceneSetup is a setup function that creates a basic scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// RemoteSceneSetup creates a scene whose integration branch "master" exists
// both locally and on a bare "origin" remote.
func RemoteSceneSetup(scene *Scene) error {
	if err := scene.Repo.CreateChangeAndCommit("1", "1"); err != nil {
		return err
	}
	if err := scene.Repo.RunGitCommand("branch", "-m", "main", "master"); err != nil {
		return err
	}
	if _, err := scene.Repo.CreateBareRemote("origin"); err != nil {
		return err
	}
	return scene.Repo.PushBranch("origin", "master")
}
