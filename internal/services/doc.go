// Package services defines shared utilities consumed by the backend clients
// and the analysis pipeline.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, contestant names, and stage names
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that let callers decide
//     whether a failure aborts the run or skips a single contestant.
//
// Use these helpers when wiring new client or pipeline logic so operational
// behaviour (error handling, observability, skips) stays uniform.
package services
