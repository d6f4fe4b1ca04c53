// Package actions provides high-level business logic for CLI commands.
//
// Each command lives in its own subpackage (sync, tomaster, newbranch,
// pullrequest) and orchestrates operations across the engine, git, lifecycle,
// and github packages. This package holds what they share.
//
// Key patterns:
//   - Actions accept runtime.Context which provides Engine, Splog, and other dependencies
//   - Actions are stateless; every decision is made from fresh git state
//   - Actions handle user interaction through the tui package
package actions
