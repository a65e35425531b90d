// Package logging assembles structured slog loggers and formatting helpers used
// across studiodrop.
//
// It owns the console/JSON handlers, splits terminal and file output so each
// can run at its own level, and stamps records logged with a context carrying a
// run identifier or stage name. The package also provides a no-op logger for
// tests and wiring code that cannot fail, log retention, and a progress sampler
// for the copy stage.
package logging
