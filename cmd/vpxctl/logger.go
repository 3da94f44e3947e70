package main

import (
	"io"
	"log/slog"
	"os"
)

// logger receives library diagnostics. It discards everything until
// initLogger runs.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// initLogger sends warnings (and with verbose, debug events) to stderr.
func initLogger(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
