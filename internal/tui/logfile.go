package tui

import (
	"os"
)

// GetLogFilePath returns the path of the debug log file, taken from
// GITSYNC_LOG_FILE. An empty result means file logging is off.
func GetLogFilePath() string {
	return os.Getenv("GITSYNC_LOG_FILE")
}
