// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text-format slog logger writing to w. The verbosity
// count maps 0 to warn, 1 to info, and 2 or more to debug.
func New(w io.Writer, verbosity int) *slog.Logger {
	lvl := slog.LevelWarn
	switch {
	case verbosity >= 2:
		lvl = slog.LevelDebug
	case verbosity == 1:
		lvl = slog.LevelInfo
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}
