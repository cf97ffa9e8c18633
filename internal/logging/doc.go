// Package logging assembles the structured slog loggers used by actled.
//
// It owns the console and JSON handlers, level and output plumbing, the
// standard field keys, and the retention sweep for per-run log files written
// while the daemon is detached. A no-op logger is provided for tests.
package logging
