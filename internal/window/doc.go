// Package window resolves the analysis interval for a stream check.
//
// Resolve combines explicit start/end literals, event bounds (explicit or the
// calendar defaults for a year), and a day-count fallback into one
// AnalysisWindow. Narrow then clamps that window for a single contestant,
// truncating it at the end of the day they were eliminated. A narrowed window
// that collapses is reported as a skip, not an error.
package window
