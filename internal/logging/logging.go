// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Setup installs the default logger writing to w (stderr when nil). See New.
func Setup(w io.Writer, verbose bool, format string) error {
	if w == nil {
		w = os.Stderr
	}
	l, err := New(w, verbose, format)
	if err != nil {
		return err
	}
	slog.SetDefault(l)
	return nil
}

// New builds a logger for w. verbose lowers the level to debug; format is
// "text" (or empty) or "json".
func New(w io.Writer, verbose bool, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
