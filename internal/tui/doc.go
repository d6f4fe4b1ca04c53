// Package tui provides the terminal side of gitsync.
//
// It handles:
//   - Structured logging and status reporting (Splog)
//   - Terminal styling and colors (using lipgloss and termenv)
//   - Interactive prompts (using survey and bubbletea)
//   - Opening the user's editor
package tui
