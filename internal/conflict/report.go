// Package conflict turns a stopped rebase or merge into a report the user can
// act on: which files rerere already resolved, which still need a merge, and
// the commands to run, in order, to finish the operation.
package conflict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"

	"gitsync.dev/gitsync/internal/git"
)

// Continue commands for the operations that can stop on conflicts
const (
	ContinueRebase = "git rebase --continue"
	ContinueMerge  = "git commit"
)

// Settings are the rerere switches that shape the remediation plan
type Settings struct {
	// RerereEnabled is the global setting; a repository-only value does not count
	RerereEnabled    bool
	RerereAutoupdate bool
}

// Report is the diagnosis of a conflicted working tree.
// ResolvedFiles and UnresolvedFiles partition the unmerged paths.
type Report struct {
	ResolvedFiles   []string
	UnresolvedFiles []string
	Commands        []string
	message         string
}

// Message is the human readable explanation of the conflict
func (r *Report) Message() string {
	return r.message
}

// Build diagnoses a conflict from a status snapshot and the raw text git
// printed when it stopped. continueCommand is appended last when non-empty.
func Build(status *git.Status, settings Settings, rawErrorText, continueCommand string) *Report {
	modified := toSet(status.Modified)
	added := toSet(status.Added)

	var resolved, unresolved []string
	for _, path := range sortedCopy(status.Unmerged) {
		if resolvedByRerere(rawErrorText, path) {
			resolved = append(resolved, path)
		} else {
			unresolved = append(unresolved, path)
		}
	}

	var mergeable, addedInBoth []string
	for _, path := range unresolved {
		switch {
		case modified[path]:
			mergeable = append(mergeable, path)
		case added[path]:
			addedInBoth = append(addedInBoth, path)
		}
	}

	var commands []string
	if !settings.RerereEnabled {
		commands = append(commands, "git config --global rerere.enabled true")
	}
	for _, path := range resolved {
		commands = append(commands, fmt.Sprintf("# Verify that 'rerere' did the right thing for '%s'.", path))
	}
	if len(resolved) > 0 && !settings.RerereAutoupdate {
		commands = append(commands, "git add "+shellquote.Join(resolved...))
	}
	if len(unresolved) > 0 {
		if len(mergeable) > 0 {
			commands = append(commands, "git mergetool "+shellquote.Join(mergeable...))
			for _, path := range mergeable {
				commands = append(commands, fmt.Sprintf("# Verify '%s' merged correctly.", path))
			}
		}
		for _, path := range addedInBoth {
			commands = append(commands, fmt.Sprintf("# '%s' was added in both branches; Fix the conflict.", path))
		}
		commands = append(commands, "git add "+shellquote.Join(unresolved...))
	}
	if continueCommand != "" {
		commands = append(commands, continueCommand)
	}

	return &Report{
		ResolvedFiles:   emptyIfNil(resolved),
		UnresolvedFiles: emptyIfNil(unresolved),
		Commands:        emptyIfNil(commands),
		message:         composeMessage(resolved, unresolved, modified, settings),
	}
}

func composeMessage(resolved, unresolved []string, modified map[string]bool, settings Settings) string {
	var sb strings.Builder
	sb.WriteString("There was a problem merging.")
	for _, path := range resolved {
		if modified[path] {
			fmt.Fprintf(&sb, "\n'%s' was modified in both branches, and 'rerere' automatically resolved it.", path)
		}
	}
	if !settings.RerereEnabled {
		sb.WriteString("\n\nConsider turning on 'rerere'.\nSee http://git-scm.com/2010/03/08/rerere.html for more information.")
	}
	for _, path := range unresolved {
		if modified[path] {
			fmt.Fprintf(&sb, "\n'%s' was modified in both branches.", path)
		}
	}
	return sb.String()
}

// resolvedByRerere looks for the per-file line rerere prints when it replays
// a recorded resolution
func resolvedByRerere(rawErrorText, path string) bool {
	for _, verb := range []string{"Resolved", "Staged"} {
		if strings.Contains(rawErrorText, fmt.Sprintf("%s '%s' using previous resolution.", verb, path)) {
			return true
		}
	}
	return false
}

func toSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}

func sortedCopy(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
