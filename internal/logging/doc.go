// Package logging assembles structured slog loggers and formatting helpers used
// across celldump.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so workflow code can tag log
// lines with correlation IDs, plugin paths and fingerprints. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// CLI data goes to stdout, so loggers write to stderr by default. When a log
// directory is configured, records are additionally written as JSON to
// celldump.log in that directory.
package logging
