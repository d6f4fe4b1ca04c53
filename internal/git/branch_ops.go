package git

import (
	"context"
	"fmt"
)

// BranchCommand is one of the explicit `git branch`/`git checkout` operations:
// CreateBranch, RenameBranch, DeleteBranch or ListBranches.
type BranchCommand interface {
	args() []string
	describe() string
}

// CreateBranch creates Name at Base. With Checkout the new branch is also
// checked out, carrying the working tree along.
type CreateBranch struct {
	Name     string
	Base     string
	Checkout bool
	// Track sets up Base as upstream; NoTrack forbids it even when
	// branch.autoSetupMerge would add it.
	Track   bool
	NoTrack bool
	// Force resets an existing Name to Base
	Force bool
}

func (c CreateBranch) args() []string {
	var args []string
	if c.Checkout {
		flag := "-b"
		if c.Force {
			flag = "-B"
		}
		args = []string{"checkout", flag, c.Name}
	} else {
		args = []string{"branch"}
		if c.Force {
			args = append(args, "--force")
		}
		args = append(args, c.Name)
	}
	switch {
	case c.Track:
		args = append(args, "--track")
	case c.NoTrack:
		args = append(args, "--no-track")
	}
	if c.Base != "" {
		args = append(args, c.Base)
	}
	return args
}

func (c CreateBranch) describe() string {
	return fmt.Sprintf("create branch %s from %s", c.Name, c.Base)
}

// RenameBranch renames From to To
type RenameBranch struct {
	From string
	To   string
}

func (c RenameBranch) args() []string {
	return []string{"branch", "-m", c.From, c.To}
}

func (c RenameBranch) describe() string {
	return fmt.Sprintf("rename branch %s to %s", c.From, c.To)
}

// DeleteBranch deletes a local branch; Force deletes it even when unmerged
type DeleteBranch struct {
	Name  string
	Force bool
}

func (c DeleteBranch) args() []string {
	flag := "-d"
	if c.Force {
		flag = "-D"
	}
	return []string{"branch", flag, c.Name}
}

func (c DeleteBranch) describe() string {
	return "delete branch " + c.Name
}

// ListBranches lists branches, including remote-tracking ones when All is set
type ListBranches struct {
	All     bool
	NoColor bool
}

func (c ListBranches) args() []string {
	args := []string{"branch"}
	if c.All {
		args = append(args, "-a")
	}
	if c.NoColor {
		args = append(args, "--no-color")
	}
	return args
}

func (c ListBranches) describe() string {
	return "list branches"
}

// Branch runs a branch command and returns its output
func (r *Repository) Branch(ctx context.Context, cmd BranchCommand) (string, error) {
	out, err := r.runner.RunRaw(ctx, cmd.args()...)
	if err != nil {
		return "", fmt.Errorf("failed to %s: %w", cmd.describe(), err)
	}
	return out, nil
}

// Checkout checks out an existing local branch
func (r *Repository) Checkout(ctx context.Context, branchName string) error {
	if _, err := r.runner.Run(ctx, "checkout", branchName, "--"); err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branchName, err)
	}
	return nil
}
