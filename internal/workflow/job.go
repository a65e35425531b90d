package workflow

import (
	"context"
	"sync/atomic"

	"studiodrop/internal/packager"
	"studiodrop/internal/planner"
	"studiodrop/internal/services"
)

const progressBuffer = 64

// Job is a package run executing on its own goroutine.
type Job struct {
	progress  chan packager.Progress
	cancelled atomic.Bool
	done      chan struct{}
	outcome   *packager.Outcome
	err       error
}

// Start runs preflight on the caller's goroutine, then executes plan on a new
// goroutine. Preflight and lock failures surface from Wait.
func (e *Engine) Start(ctx context.Context, plan *planner.Plan) *Job {
	job := &Job{
		progress: make(chan packager.Progress, progressBuffer),
		done:     make(chan struct{}),
	}
	if err := e.Preflight(ctx, plan); err != nil {
		job.err = err
		close(job.progress)
		close(job.done)
		return job
	}
	go func() {
		defer close(job.done)
		defer close(job.progress)
		job.outcome, job.err = e.runPackage(ctx, plan, job)
	}()
	return job
}

func (e *Engine) runPackage(ctx context.Context, plan *planner.Plan, job *Job) (*packager.Outcome, error) {
	sink := packager.ProgressFunc(job.publish)
	return packager.Execute(services.WithStage(ctx, "package"), plan, sink, job, e.executorOptions())
}

// publish never blocks the executor; a slow reader misses intermediate
// updates.
func (j *Job) publish(p packager.Progress) {
	select {
	case j.progress <- p:
	default:
	}
}

// Progress returns the update channel. It is closed when the job ends.
func (j *Job) Progress() <-chan packager.Progress {
	return j.progress
}

// Cancel asks the job to stop before its next entry. The entry in flight
// completes. Safe to call from any goroutine, any number of times.
func (j *Job) Cancel() {
	j.cancelled.Store(true)
}

// Cancelled implements packager.CancelPoller.
func (j *Job) Cancelled() bool {
	return j.cancelled.Load()
}

// Done is closed when the job ends.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job ends and returns its outcome.
func (j *Job) Wait() (*packager.Outcome, error) {
	<-j.done
	return j.outcome, j.err
}
