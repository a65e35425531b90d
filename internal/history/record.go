package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studiodrop/internal/manifest"
)

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	if t, err := time.Parse(timeLayout, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	return time.Time{}
}

// Record stores the run described by m, replacing any earlier record with
// the same run ID, then prunes runs beyond the configured retention.
func (s *Store) Record(ctx context.Context, m *manifest.Manifest) error {
	if m == nil {
		return errors.New("record run: manifest is nil")
	}
	if m.Run.ID == "" {
		return errors.New("record run: run id is empty")
	}
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := insertRun(ctx, tx, m); err != nil {
			return err
		}
		if err := pruneRuns(ctx, tx, s.keep); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run %s: %w", m.Run.ID, err)
		}
		return nil
	})
}

func insertRun(ctx context.Context, tx *sql.Tx, m *manifest.Manifest) error {
	run, sum := m.Run, m.Summary
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_results WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("clear results for %s: %w", run.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
		return fmt.Errorf("clear run %s: %w", run.ID, err)
	}

	_, err := tx.ExecContext(ctx, `INSERT INTO runs (
		id, started_at, finished_at, tool_version, profile, input_root, output_root, drop_root,
		project, asset, version, status, planned, copied, overwritten, skipped, failed, not_run,
		bytes_copied, errors, warnings
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.Timestamp), formatTime(run.Finished), run.ToolVersion, run.Profile,
		run.InputRoot, run.OutputRoot, run.DropRoot, run.Project, run.Asset, run.Version,
		string(run.Status), sum.Planned, sum.Copied, sum.Overwritten, sum.Skipped, sum.Failed,
		sum.NotRun, sum.BytesCopied, sum.Errors, sum.Warnings,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_results (
		run_id, seq, source, destination, action, success, hash, error, bytes
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range m.Results {
		success := 0
		if r.Success {
			success = 1
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.Source, r.Destination, r.Action, success, r.Hash, r.Error, r.Bytes); err != nil {
			return fmt.Errorf("insert result %d for %s: %w", i, run.ID, err)
		}
	}
	return nil
}

// pruneRuns keeps the newest keep runs. keep <= 0 keeps everything.
func pruneRuns(ctx context.Context, tx *sql.Tx, keep int) error {
	if keep <= 0 {
		return nil
	}
	const stale = `SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT -1 OFFSET ?`
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_results WHERE run_id IN (`+stale+`)`, keep); err != nil {
		return fmt.Errorf("prune results: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+stale+`)`, keep); err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return nil
}
