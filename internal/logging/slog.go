// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// Options configures New.
type Options struct {
	// Writer is where log lines go. Defaults to os.Stderr so they never mix
	// with rendered tables on stdout.
	Writer io.Writer
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// JSON switches to slog's JSON handler, e.g. when output is piped.
	JSON bool
	// NoColor disables ANSI colors in the text handler.
	NoColor bool
}

// New builds the client logger: tint's colored handler for terminals,
// slog's JSON handler when requested.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := ParseLevel(opts.Level)

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
			NoColor:    opts.NoColor,
		})
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything. Used as the default
// dependency of library packages.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
