// Package engine is the read model over a repository's branches.
//
// It answers the questions the sync workflow keeps asking:
//   - which branch is checked out, and which branches exist locally and remotely
//   - whether one branch already contains another's history
//   - which remote and which integration branch to work against
//
// Branch listings are snapshots. Anything that mutates refs invalidates them,
// so callers re-read Branches after every mutating git command.
package engine
