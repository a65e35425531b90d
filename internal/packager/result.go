package packager

import (
	"fmt"
	"time"

	"studiodrop/internal/planner"
	"studiodrop/internal/services"
)

// CopyResult is the outcome of one plan entry.
type CopyResult struct {
	Entry   planner.Entry
	Success bool
	// Hash is the SHA-1 hex digest of the destination content. Skipped
	// entries carry the hash the plan already computed, if any.
	Hash  string
	Error string
	Bytes int64
}

// Outcome is everything the executor produced for one run.
type Outcome struct {
	Results   []CopyResult
	Cancelled bool
	Started   time.Time
	Finished  time.Time
	// BytesCopied totals bytes written by successful copies.
	BytesCopied int64
}

// Failed counts unsuccessful results.
func (o *Outcome) Failed() int {
	n := 0
	for _, r := range o.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// Copied counts entries that were written successfully.
func (o *Outcome) Copied() int {
	n := 0
	for _, r := range o.Results {
		if r.Success && r.Entry.Writes() {
			n++
		}
	}
	return n
}

// CopyError describes a failed entry. It matches services.ErrCopy with
// errors.Is and unwraps to the underlying I/O error.
type CopyError struct {
	Source      string
	Destination string
	Err         error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s -> %s: %v", e.Source, e.Destination, e.Err)
}

func (e *CopyError) Unwrap() []error {
	return []error{services.ErrCopy, e.Err}
}
