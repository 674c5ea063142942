// Package logging provides structured logging for flowc.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON, text, and console formats
//   - Configurable log levels (debug, info, warn, error)
//   - Run-scoped fields (run ID, command, file, trace ID) carried in a context
//
// Logs go to stderr by default so that compiled graphs written to stdout can
// be piped.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "console",
//	})
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.WithContext(ctx).Info("compiled", "nodes", 12)
//
// Library packages take a *slog.Logger; pass logger.Slog().
package logging
