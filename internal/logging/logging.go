// Package logging builds the process logger for the sandbox server.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"

	"github.com/jamesprial/discordmock/internal/config"
)

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a level.
// The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("logging: unknown level %q", s)
}

// New returns a logger writing to w in cfg.Format. When cfg.File is set the
// same records are also appended to that file as JSON. Extra handlers receive
// every record as well. The returned closer releases the file, if any.
func New(cfg config.LoggingConfig, w io.Writer, extra ...slog.Handler) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var primary slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		primary = slog.NewTextHandler(w, opts)
	case "json":
		primary = slog.NewJSONHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	handlers := append([]slog.Handler{primary}, extra...)
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
		closer = f
	}

	if len(handlers) == 1 {
		return slog.New(primary), closer, nil
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
