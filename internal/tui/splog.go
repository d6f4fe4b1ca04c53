package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Message prefixes for the console
const (
	warnPrefix = "⚠️  "
	tipPrefix  = "💡 "
)

// Splog is gitsync's output: bare messages on the console for the user, and
// every message, debug included, in a rotating log file when one is configured
type Splog struct {
	out       io.Writer
	errOut    io.Writer
	debug     bool
	quiet     bool
	file      *slog.Logger
	logWriter io.Closer
}

// NewSplogWithConfig creates a Splog on stdout/stderr, logging to
// logFilePath as well when it is non-empty
func NewSplogWithConfig(logFilePath string) (*Splog, error) {
	return NewSplogWithWriters(os.Stdout, os.Stderr, logFilePath)
}

// NewSplogWithWriters creates a Splog that writes console output to out and
// failure reports to errOut
func NewSplogWithWriters(out, errOut io.Writer, logFilePath string) (*Splog, error) {
	s := &Splog{
		out:    out,
		errOut: errOut,
		debug:  os.Getenv("DEBUG") != "",
	}
	if logFilePath == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	rotating := rotatingLogFile(logFilePath)
	s.logWriter = rotating
	s.file = slog.New(slog.NewTextHandler(rotating, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(a.Key, a.Value.Time().Format("2006-01-02 15:04:05.000"))
			}
			return a
		},
	}))
	return s, nil
}

// rotatingLogFile sizes the log file from GITSYNC_LOG_MAX_SIZE (megabytes),
// GITSYNC_LOG_MAX_BACKUPS and GITSYNC_LOG_MAX_AGE (days)
func rotatingLogFile(path string) *lumberjack.Logger {
	logger := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1,
		MaxBackups: 2,
		MaxAge:     30,
	}
	if n, ok := envInt("GITSYNC_LOG_MAX_SIZE"); ok && n > 0 {
		logger.MaxSize = n
	}
	if n, ok := envInt("GITSYNC_LOG_MAX_BACKUPS"); ok && n >= 0 {
		logger.MaxBackups = n
	}
	if n, ok := envInt("GITSYNC_LOG_MAX_AGE"); ok && n > 0 {
		logger.MaxAge = n
	}
	return logger
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// SetQuiet suppresses console output. The log file still receives everything.
func (s *Splog) SetQuiet(quiet bool) {
	s.quiet = quiet
}

// Info writes a message for the user
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Info(format string, args ...interface{}) {
	s.emit(slog.LevelInfo, "", format, args)
}

// Warn writes a warning
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Warn(format string, args ...interface{}) {
	s.emit(slog.LevelWarn, warnPrefix, format, args)
}

// Tip writes a suggestion for what to do next
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Tip(format string, args ...interface{}) {
	s.emit(slog.LevelInfo, tipPrefix, format, args)
}

// Debug writes to the log file, and to the console only when DEBUG is set
// nolint // format string validation is handled internally via fmt.Sprintf
func (s *Splog) Debug(format string, args ...interface{}) {
	s.emit(slog.LevelDebug, "", format, args)
}

// Report writes a multi-line failure report to the error stream. Quiet mode
// does not apply.
func (s *Splog) Report(content string) {
	if s.file != nil {
		s.file.Error(content)
	}
	_, _ = fmt.Fprintln(s.errOut, content)
}

func (s *Splog) emit(level slog.Level, prefix, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if s.file != nil {
		s.file.Log(context.Background(), level, msg)
	}
	if s.quiet || (level == slog.LevelDebug && !s.debug) {
		return
	}
	_, _ = fmt.Fprintln(s.out, prefix+msg)
}

// Close closes the log file if one was opened
func (s *Splog) Close() error {
	if s.logWriter != nil {
		return s.logWriter.Close()
	}
	return nil
}
