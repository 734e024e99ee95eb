// Package logging assembles structured slog loggers and formatting helpers used
// across kashi.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so batch code can tag log lines with
// the run identifier. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
