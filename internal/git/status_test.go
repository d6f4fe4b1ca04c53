package git_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	gserrors "gitsync.dev/gitsync/internal/errors"
	"gitsync.dev/gitsync/internal/git"
	"gitsync.dev/gitsync/testhelpers"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected git.Status
	}{
		{
			name:  "unmerged variants",
			lines: []string{"U  a", " U b", "UU c"},
			expected: git.Status{
				Unmerged: []string{"a", "b", "c"},
				Modified: []string{"c"},
			},
		},
		{
			name:  "modified in index and worktree",
			lines: []string{"M  a", " M b", "MM c"},
			expected: git.Status{
				Modified: []string{"a", "b", "c"},
			},
		},
		{
			name:  "deleted and deleted-unmerged",
			lines: []string{"D  a", " D b", "DU c", "UD d"},
			expected: git.Status{
				Deleted:  []string{"a", "b", "c", "d"},
				Unmerged: []string{"c", "d"},
			},
		},
		{
			name:  "added and added in both",
			lines: []string{"A  a", " A b", "AA c"},
			expected: git.Status{
				Added:    []string{"a", "b", "c"},
				Unmerged: []string{"c"},
			},
		},
		{
			name:  "untracked",
			lines: []string{"?? new.txt"},
			expected: git.Status{
				Unknown: []string{"new.txt"},
			},
		},
		{
			name:  "rename",
			lines: []string{"R  old.txt -> new.txt"},
			expected: git.Status{
				Deleted: []string{"old.txt"},
				Added:   []string{"new.txt"},
			},
		},
		{
			name:  "copy",
			lines: []string{"C  orig.txt -> copy.txt"},
			expected: git.Status{
				Added: []string{"copy.txt", "orig.txt"},
			},
		},
		{
			name:  "every unmerged code",
			lines: []string{"DD a", "AU b", "UD c", "UA d", "DU e", "AA f", "UU g"},
			expected: git.Status{
				Unmerged: []string{"a", "b", "c", "d", "e", "f", "g"},
				Modified: []string{"g"},
				Added:    []string{"b", "d", "f"},
				Deleted:  []string{"a", "c", "e"},
			},
		},
		{
			name:  "index and worktree columns read separately",
			lines: []string{"MD a", "AD b", "AM c", "T  d", " T e", "MT f"},
			expected: git.Status{
				Modified: []string{"a", "d", "e", "f"},
				Added:    []string{"b", "c"},
				Deleted:  []string{"a", "b"},
			},
		},
		{
			name:  "rename then edited or deleted in worktree",
			lines: []string{"RM old.txt -> new.txt", "RD gone.txt -> moved.txt", "CM orig.txt -> copy.txt"},
			expected: git.Status{
				Deleted: []string{"gone.txt", "moved.txt", "old.txt"},
				Added:   []string{"copy.txt", "moved.txt", "new.txt", "orig.txt"},
			},
		},
		{
			name:  "quoted paths",
			lines: []string{`UU "b c"`, `R  "with space" -> "other \"q\""`, `?? "caf\303\251"`},
			expected: git.Status{
				Unmerged: []string{"b c"},
				Modified: []string{"b c"},
				Deleted:  []string{"with space"},
				Added:    []string{`other "q"`},
				Unknown:  []string{"café"},
			},
		},
		{
			name:  "duplicates collapse",
			lines: []string{"UU a", "UU a", " M a"},
			expected: git.Status{
				Unmerged: []string{"a"},
				Modified: []string{"a"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := git.ClassifyStatus(tt.lines)
			require.NoError(t, err)
			require.Equal(t, normalize(tt.expected), *status)
		})
	}
}

// normalize turns nil slices into empty ones so table entries can omit them.
func normalize(s git.Status) git.Status {
	fix := func(v []string) []string {
		if v == nil {
			return []string{}
		}
		return v
	}
	return git.Status{
		Unmerged: fix(s.Unmerged),
		Modified: fix(s.Modified),
		Added:    fix(s.Added),
		Deleted:  fix(s.Deleted),
		Unknown:  fix(s.Unknown),
	}
}

func TestClassifyStatusRejectsUnknownCodes(t *testing.T) {
	for _, line := range []string{"XY weird", "!! ignored", "Q", "  blank", "RX a -> b", "ZM z"} {
		_, err := git.ClassifyStatus([]string{line})
		require.ErrorIs(t, err, gserrors.ErrUnknownStatusCode, line)
	}
}

func TestClassifyStatusIsOrderIndependent(t *testing.T) {
	lines := []string{
		"UU z", "M  y", " M x", "A  w", "D  v", "?? u", "R  t -> s", "AA r", "DU q", "C  p -> o",
	}
	expected, err := git.ClassifyStatus(lines)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]string{}, lines...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := git.ClassifyStatus(shuffled)
		require.NoError(t, err)
		require.Equal(t, expected, got)

		again, err := git.ClassifyStatus(shuffled)
		require.NoError(t, err)
		require.Equal(t, got, again)
	}
}

func TestClassifyStatusRenameNeverLandsInOneSet(t *testing.T) {
	status, err := git.ClassifyStatus([]string{"R  lib/old.go -> lib/new.go"})
	require.NoError(t, err)
	require.Equal(t, []string{"lib/old.go"}, status.Deleted)
	require.Equal(t, []string{"lib/new.go"}, status.Added)
	require.NotContains(t, status.Added, "lib/old.go")
	require.NotContains(t, status.Deleted, "lib/new.go")
}

func TestRepositoryStatus(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	repo := git.NewRepository(scene.Runner())
	ctx := context.Background()

	status, err := repo.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.IsClean())

	require.NoError(t, scene.Repo.CreateChange("modified", "1", true))
	require.NoError(t, scene.Repo.CreateChange("brand new", "2", true))

	status, err = repo.Status(ctx)
	require.NoError(t, err)
	require.False(t, status.IsClean())
	require.Equal(t, []string{"1_test.txt"}, status.Modified)
	require.Equal(t, []string{"2_test.txt"}, status.Unknown)
}
