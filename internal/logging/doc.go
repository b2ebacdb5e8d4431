// Package logging assembles structured slog loggers and formatting helpers used
// across talkclip.
//
// It owns the configurable console/JSON handlers, mirrors every record to a
// JSON log file, and exposes context-aware helpers so pipeline code can tag
// log lines with run IDs, video names, and track/segment indices. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
