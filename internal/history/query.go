package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studiodrop/internal/finding"
)

const runColumns = `id, started_at, finished_at, tool_version, profile, input_root, output_root,
	drop_root, project, asset, version, status, planned, copied, overwritten, skipped, failed,
	not_run, bytes_copied, errors, warnings`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run                  Run
		startedRaw, finished string
		status               string
	)
	if err := row.Scan(
		&run.ID, &startedRaw, &finished, &run.ToolVersion, &run.Profile, &run.InputRoot,
		&run.OutputRoot, &run.DropRoot, &run.Project, &run.Asset, &run.Version, &status,
		&run.Planned, &run.Copied, &run.Overwritten, &run.Skipped, &run.Failed, &run.NotRun,
		&run.BytesCopied, &run.Errors, &run.Warnings,
	); err != nil {
		return nil, err
	}
	run.Started = parseTime(startedRaw)
	run.Finished = parseTime(finished)
	run.Status = finding.Status(status)
	return &run, nil
}

// List returns recorded runs, newest first. limit <= 0 returns all of them.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns the run with the given ID, or nil when it is not recorded. A
// unique ID prefix is accepted.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	if id == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	defer rows.Close()
	var matches []*Run
	for rows.Next() {
		match, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// Results returns the copy results recorded for a run in plan order.
func (s *Store) Results(ctx context.Context, runID string) ([]Result, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT seq, source, destination, action, success, hash, error, bytes
		FROM run_results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list results for %s: %w", runID, err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r       Result
			success int
		)
		if err := rows.Scan(&r.Seq, &r.Source, &r.Destination, &r.Action, &success, &r.Hash, &r.Error, &r.Bytes); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Success = success != 0
		results = append(results, r)
	}
	return results, rows.Err()
}

func escapeLike(value string) string {
	out := make([]rune, 0, len(value))
	for _, r := range value {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
