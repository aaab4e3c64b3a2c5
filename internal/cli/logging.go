package cli

import (
	"log/slog"
	"os"
)

// Logger is the process-wide structured logger, grounded directly on the
// teacher's cmd/root.go setupLogger: a slog.TextHandler writing to stderr,
// switching to debug verbosity (with source locations) under -v. Every
// package built for this tool takes a *slog.Logger rather than reaching
// for the global default, but the CLI layer still needs one shared
// instance to hand out.
var Logger *slog.Logger

// setupLogger configures the global logger based on the verbose flag.
func setupLogger(verbose bool) *slog.Logger {
	var opts *slog.HandlerOptions
	if verbose {
		opts = &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}
	} else {
		opts = &slog.HandlerOptions{Level: slog.LevelWarn}
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	if verbose {
		Logger.Debug("verbose logging enabled", "level", slog.LevelDebug.String(), "pid", os.Getpid())
	}
	return Logger
}
