// Package runtime provides the execution context for gitsync commands.
//
// It encapsulates shared dependencies needed by actions, such as the
// engine, the logger, the repository root, and the GitHub client.
package runtime
