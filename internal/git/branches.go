package git

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Branch is a local or remote-tracking branch. Remote branches are named
// "<remote>/<branch>". A Branch is a snapshot: any mutating git command makes
// it stale and the listing has to be read again.
type Branch struct {
	Name      string
	IsRemote  bool
	IsCurrent bool
}

// String returns the branch name
func (b Branch) String() string {
	return b.Name
}

// BranchSet is an ordered, de-duplicated collection of branches.
// At most one branch in a set is current.
type BranchSet struct {
	branches []Branch
	byName   map[string]int
	current  int
}

// NewBranchSet builds a BranchSet sorted by name. Duplicate names keep the
// first occurrence, merging the current marker.
func NewBranchSet(branches ...Branch) (*BranchSet, error) {
	byName := make(map[string]Branch, len(branches))
	currentName := ""
	for _, b := range branches {
		if b.IsCurrent {
			if currentName != "" && currentName != b.Name {
				return nil, fmt.Errorf("both %s and %s are marked as the current branch", currentName, b.Name)
			}
			currentName = b.Name
		}
		if existing, ok := byName[b.Name]; ok {
			existing.IsCurrent = existing.IsCurrent || b.IsCurrent
			byName[b.Name] = existing
			continue
		}
		byName[b.Name] = b
	}

	set := &BranchSet{
		branches: make([]Branch, 0, len(byName)),
		byName:   make(map[string]int, len(byName)),
		current:  -1,
	}
	for _, b := range byName {
		set.branches = append(set.branches, b)
	}
	sort.Slice(set.branches, func(i, j int) bool {
		return set.branches[i].Name < set.branches[j].Name
	})
	for i, b := range set.branches {
		set.byName[b.Name] = i
		if b.IsCurrent {
			set.current = i
		}
	}
	return set, nil
}

// Names returns every branch name in order
func (s *BranchSet) Names() []string {
	names := make([]string, len(s.branches))
	for i, b := range s.branches {
		names[i] = b.Name
	}
	return names
}

// Local returns only local branches
func (s *BranchSet) Local() []Branch {
	var out []Branch
	for _, b := range s.branches {
		if !b.IsRemote {
			out = append(out, b)
		}
	}
	return out
}

// Remote returns only remote-tracking branches
func (s *BranchSet) Remote() []Branch {
	var out []Branch
	for _, b := range s.branches {
		if b.IsRemote {
			out = append(out, b)
		}
	}
	return out
}

// Get looks a branch up by its fully qualified name
func (s *BranchSet) Get(name string) (Branch, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Branch{}, false
	}
	return s.branches[i], true
}

// Contains reports whether a branch with this name exists
func (s *BranchSet) Contains(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Current returns the checked out branch, if any
func (s *BranchSet) Current() (Branch, bool) {
	if s.current < 0 {
		return Branch{}, false
	}
	return s.branches[s.current], true
}

// Parking returns the parking branch, if it exists
func (s *BranchSet) Parking() (Branch, bool) {
	return s.Get(ParkingBranch)
}

// ParseBranchList parses `git branch -a --no-color` output.
func ParseBranchList(output string) (*BranchSet, error) {
	var branches []Branch
	for _, line := range Lines(output) {
		if len(line) < 3 {
			continue
		}
		marker := line[:2]
		name := strings.TrimSpace(line[2:])

		// Symbolic refs such as "remotes/origin/HEAD -> origin/master"
		if strings.Contains(name, " -> ") {
			continue
		}
		// Detached HEAD, rebases in progress: "(HEAD detached at 1234abc)"
		if strings.HasPrefix(name, "(") {
			continue
		}

		b := Branch{Name: name, IsCurrent: marker == "* "}
		if rest, ok := strings.CutPrefix(name, "remotes/"); ok {
			b.Name = rest
			b.IsRemote = true
			b.IsCurrent = false
		}
		branches = append(branches, b)
	}
	return NewBranchSet(branches...)
}

// Branches lists local and remote-tracking branches
func (r *Repository) Branches(ctx context.Context) (*BranchSet, error) {
	out, err := r.Branch(ctx, ListBranches{All: true, NoColor: true})
	if err != nil {
		return nil, err
	}
	return ParseBranchList(out)
}
