// Package workflow drives a delivery through scan, validation, planning,
// packaging and emission.
//
// The Engine binds configuration, logging and the optional run history store
// to the stage packages. Stages run sequentially on the caller's goroutine,
// except packaging: Start runs the executor on its own goroutine and returns
// a Job whose progress channel flows one way back to the caller. Cancellation
// is a single atomic flag the executor polls between entries.
package workflow
