package git

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	gserrors "gitsync.dev/gitsync/internal/errors"
)

// Status is an immutable snapshot of the working tree, as reported by
// `git status --porcelain`. Every list is sorted and free of duplicates.
type Status struct {
	Unmerged []string
	Modified []string
	Added    []string
	Deleted  []string
	Unknown  []string
}

// IsClean reports whether nothing at all is pending in the working tree
func (s *Status) IsClean() bool {
	return len(s.Unmerged) == 0 && len(s.Modified) == 0 && len(s.Added) == 0 &&
		len(s.Deleted) == 0 && len(s.Unknown) == 0
}

// Status runs `git status --porcelain` and classifies the result
func (r *Repository) Status(ctx context.Context) (*Status, error) {
	// Raw output: the leading space of " M file" is significant.
	out, err := r.runner.RunRaw(ctx, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return ClassifyStatus(Lines(out))
}

type pathSet map[string]struct{}

func (s pathSet) add(p string) {
	s[p] = struct{}{}
}

func (s pathSet) sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ClassifyStatus sorts porcelain status lines ("XY path") into categories.
//
// A U in either column, AA or DD is unmerged; the path is also filed as
// modified (UU), added (AA, AU, UA) or deleted (DD, DU, UD). Otherwise each
// column is read on its own: M and T are modified, A added, D deleted.
// Renames mark the old path deleted and the new one added; copies mark both
// added. Any code outside the known set is rejected with UnknownStatusCodeError.
func ClassifyStatus(lines []string) (*Status, error) {
	unmerged, modified, added, deleted, unknown := pathSet{}, pathSet{}, pathSet{}, pathSet{}, pathSet{}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) < 4 || line[2] != ' ' {
			return nil, &gserrors.UnknownStatusCodeError{Code: line[:min(2, len(line))], Line: line}
		}
		code := line[:2]
		path := line[3:]
		x, y := code[0], code[1]

		switch {
		case code == "??":
			unknown.add(unquotePath(path))
		case x == 'U' || y == 'U' || code == "AA" || code == "DD":
			f := unquotePath(path)
			unmerged.add(f)
			switch code {
			case "UU":
				modified.add(f)
			case "AA", "AU", "UA":
				added.add(f)
			case "DD", "DU", "UD":
				deleted.add(f)
			}
		case x == 'R' || x == 'C':
			if !statusColumn(y) {
				return nil, &gserrors.UnknownStatusCodeError{Code: code, Line: line}
			}
			oldPath, newPath, err := splitRename(line, path)
			if err != nil {
				return nil, err
			}
			if x == 'R' {
				deleted.add(oldPath)
			} else {
				added.add(oldPath)
			}
			added.add(newPath)
			if y == 'D' {
				deleted.add(newPath)
			}
		case code != "  " && statusColumn(x) && statusColumn(y):
			f := unquotePath(path)
			switch x {
			case 'M', 'T':
				modified.add(f)
			case 'A':
				added.add(f)
			case 'D':
				deleted.add(f)
			}
			switch y {
			case 'M', 'T':
				// a new file edited after staging is still just added
				if x != 'A' {
					modified.add(f)
				}
			case 'A':
				added.add(f)
			case 'D':
				deleted.add(f)
			}
		default:
			return nil, &gserrors.UnknownStatusCodeError{Code: code, Line: line}
		}
	}

	return &Status{
		Unmerged: unmerged.sorted(),
		Modified: modified.sorted(),
		Added:    added.sorted(),
		Deleted:  deleted.sorted(),
		Unknown:  unknown.sorted(),
	}, nil
}

// statusColumn reports whether c is a code allowed outside a merge conflict
func statusColumn(c byte) bool {
	switch c {
	case ' ', 'M', 'T', 'A', 'D':
		return true
	}
	return false
}

// splitRename splits `old -> new`, where either side may be C-quoted.
func splitRename(line, path string) (string, string, error) {
	const arrow = " -> "

	var oldPart, rest string
	if strings.HasPrefix(path, `"`) {
		end := closingQuote(path)
		if end < 0 {
			return "", "", &gserrors.UnknownStatusCodeError{Code: line[:2], Line: line}
		}
		oldPart, rest = path[:end+1], path[end+1:]
		if !strings.HasPrefix(rest, arrow) {
			return "", "", &gserrors.UnknownStatusCodeError{Code: line[:2], Line: line}
		}
		rest = rest[len(arrow):]
	} else {
		idx := strings.Index(path, arrow)
		if idx < 0 {
			return "", "", &gserrors.UnknownStatusCodeError{Code: line[:2], Line: line}
		}
		oldPart, rest = path[:idx], path[idx+len(arrow):]
	}
	return unquotePath(oldPart), unquotePath(rest), nil
}

// closingQuote returns the index of the quote that closes s[0], skipping escapes.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// unquotePath undoes git's C-style quoting of paths with special characters.
func unquotePath(p string) string {
	if len(p) >= 2 && strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) {
		if unquoted, err := strconv.Unquote(p); err == nil {
			return unquoted
		}
		return p[1 : len(p)-1]
	}
	return p
}

// StageAll stages every change in the working tree, including deletions and
// untracked files
func (r *Repository) StageAll(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, "add", "--all"); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}
