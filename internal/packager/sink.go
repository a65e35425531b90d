package packager

// Progress is reported after each entry.
type Progress struct {
	Completed int
	Total     int
	// Bytes counts bytes written so far; skipped entries add nothing.
	Bytes int64
	// Current is the relative path of the entry just finished.
	Current string
}

// Percent returns completion in the range 0-100.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Completed) * 100 / float64(p.Total)
}

// ProgressSink receives progress updates from the executing goroutine.
type ProgressSink interface {
	Progress(Progress)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(Progress)

func (f ProgressFunc) Progress(p Progress) { f(p) }

// CancelPoller is asked before each entry whether to stop.
type CancelPoller interface {
	Cancelled() bool
}

// PollFunc adapts a function to CancelPoller.
type PollFunc func() bool

func (f PollFunc) Cancelled() bool { return f() }
