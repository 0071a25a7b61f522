// Package logging assembles structured slog loggers and formatting helpers used
// across rewatch.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so reconciliation code can tag
// log lines with run ids, entry ids, and stages. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
