// Package services defines shared utilities consumed by every packaging stage
// and by the command-line shell.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so fatal failures (bad
//     input root, bad profile, unresolvable plan, held locks) can be told apart
//     with errors.Is no matter how deeply they were wrapped.
//   - Context helpers that stamp run identifiers and stage names for logging.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error classification, observability) stays uniform across the pipeline.
package services
