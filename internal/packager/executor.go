package packager

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"studiodrop/internal/fileutil"
	"studiodrop/internal/logging"
	"studiodrop/internal/planner"
)

// Options tunes execution.
type Options struct {
	PreserveModTime bool
	// LockDir enables the per-output-root lock when non-empty.
	LockDir string
	Logger  *slog.Logger
}

// Execute runs plan entries in order. Cancellation, through poller or ctx, is
// checked before each entry and never interrupts a file copy in flight; a
// cancelled run returns the results produced so far. sink and poller may be
// nil. The returned error is non-nil only when execution could not start.
func Execute(ctx context.Context, plan *planner.Plan, sink ProgressSink, poller CancelPoller, opts Options) (*Outcome, error) {
	logger := logging.NewComponentLogger(opts.Logger, "packager")

	if opts.LockDir != "" {
		release, err := acquireLock(opts.LockDir, plan.OutputRoot)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(); err != nil {
				logging.WarnWithContext(ctx, logger, "failed to release package lock", "lock_release_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "the lock file stays until the process exits"),
				)
			}
		}()
	}

	outcome := &Outcome{
		Results: make([]CopyResult, 0, len(plan.Entries)),
		Started: time.Now().UTC(),
	}
	total := len(plan.Entries)
	sampler := logging.NewProgressSampler(10)

	for i, entry := range plan.Entries {
		if stopRequested(ctx, poller) {
			outcome.Cancelled = true
			logger.InfoContext(ctx, "package cancelled",
				logging.String(logging.FieldEventType, "package_cancelled"),
				logging.Int("completed", i),
				logging.Int("total", total),
			)
			break
		}

		result := executeEntry(entry, opts)
		if !result.Success {
			logging.WarnWithContext(ctx, logger, "copy failed; continuing with next entry", "copy_failed",
				logging.String("source", entry.Source),
				logging.String("destination", entry.Destination),
				logging.String("error", result.Error),
				logging.String(logging.FieldErrorHint, "check the source still exists and the output volume is writable"),
				logging.String(logging.FieldImpact, "file missing from the drop; run status is ERROR"),
			)
		}
		outcome.BytesCopied += result.Bytes
		outcome.Results = append(outcome.Results, result)

		progress := Progress{Completed: i + 1, Total: total, Bytes: outcome.BytesCopied, Current: entry.RelPath}
		if sink != nil {
			sink.Progress(progress)
		}
		if sampler.ShouldLog(progress.Percent(), "copy") {
			logger.DebugContext(ctx, "package progress",
				logging.Int("completed", progress.Completed),
				logging.Int("total", total),
				logging.Int64("bytes", progress.Bytes),
			)
		}
	}

	outcome.Finished = time.Now().UTC()
	logger.InfoContext(ctx, "package finished",
		logging.String(logging.FieldEventType, "package_finished"),
		logging.Int("results", len(outcome.Results)),
		logging.Int("copied", outcome.Copied()),
		logging.Int("failed", outcome.Failed()),
		logging.Bool("cancelled", outcome.Cancelled),
		logging.Int64("bytes", outcome.BytesCopied),
		logging.Duration("elapsed", outcome.Finished.Sub(outcome.Started)),
	)
	return outcome, nil
}

func stopRequested(ctx context.Context, poller CancelPoller) bool {
	if ctx.Err() != nil {
		return true
	}
	return poller != nil && poller.Cancelled()
}

func executeEntry(entry planner.Entry, opts Options) CopyResult {
	if !entry.Writes() {
		return CopyResult{Entry: entry, Success: true, Hash: entry.KnownHash}
	}

	fail := func(err error) CopyResult {
		copyErr := &CopyError{Source: entry.Source, Destination: entry.Destination, Err: err}
		return CopyResult{Entry: entry, Error: copyErr.Error()}
	}
	if err := os.MkdirAll(filepath.Dir(entry.Destination), 0o755); err != nil {
		return fail(err)
	}
	stats, err := fileutil.CopyFileVerified(entry.Source, entry.Destination, fileutil.CopyOptions{
		PreserveModTime: opts.PreserveModTime,
	})
	if err != nil {
		return fail(err)
	}
	return CopyResult{Entry: entry, Success: true, Hash: stats.Hash, Bytes: stats.Bytes}
}
