// Package logging assembles the slog loggers used by streamcheck.
//
// It owns the console and JSON handlers, maps configured level names onto
// slog levels, and exposes context helpers so the checker can tag every line
// with the run identifier, the contestant being analyzed, and the pipeline
// stage. A no-op logger is provided for tests and for wiring code that cannot
// fail.
package logging
