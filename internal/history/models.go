package history

import (
	"time"

	"studiodrop/internal/finding"
)

// Run is one recorded package run.
type Run struct {
	ID          string
	Started     time.Time
	Finished    time.Time
	ToolVersion string
	Profile     string
	InputRoot   string
	OutputRoot  string
	DropRoot    string
	Project     string
	Asset       string
	Version     string
	Status      finding.Status
	Planned     int
	Copied      int
	Overwritten int
	Skipped     int
	Failed      int
	NotRun      int
	BytesCopied int64
	Errors      int
	Warnings    int
}

// Duration returns the wall time the run took.
func (r Run) Duration() time.Duration {
	if r.Finished.Before(r.Started) {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Result is one recorded copy result.
type Result struct {
	Seq         int
	Source      string
	Destination string
	Action      string
	Success     bool
	Hash        string
	Error       string
	Bytes       int64
}
