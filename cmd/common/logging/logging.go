// Package logging sets up slog for patviz commands.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// ToFile configures slog to append to path. The TUI owns the terminal, so
// interactive sessions log here instead of stderr. The returned function
// closes the file. If the file cannot be opened, logging is discarded.
func ToFile(path string, level slog.Level) (close func()) {
	if path == "" {
		Discard()
		return func() {}
	}

	// Ensure the log directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		Discard()
		return func() {}
	}

	logFile, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		Discard()
		return func() {}
	}

	setDefault(logFile, level)
	return func() { _ = logFile.Close() }
}

// ToStderr configures slog to write to stderr, for headless commands.
func ToStderr(level slog.Level) {
	setDefault(os.Stderr, level)
}

// Discard drops all log output.
func Discard() {
	slog.SetDefault(slog.New(slog.DiscardHandler))
}

func setDefault(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
