// Package logger builds taskdesk's structured logger. The TUI owns the
// terminal, so log records go to a file.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/taskdesk/internal/config"
)

// ParseLevel maps a configured level name to a slog.Level, defaulting to
// info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New returns a JSON logger writing to w at the given level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Setup opens cfg.File for appending and installs a JSON logger on it as
// the slog default. The returned closer releases the file. An empty path
// discards all records.
func Setup(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	if cfg.File == "" {
		l := Discard()
		slog.SetDefault(l)
		return l, io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	l := New(f, cfg.Level)
	slog.SetDefault(l)
	return l, f, nil
}
