package history_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"studiodrop/internal/finding"
	"studiodrop/internal/history"
	"studiodrop/internal/manifest"
	"studiodrop/internal/services"
	"studiodrop/internal/testsupport"
)

func sampleManifest(id string, started time.Time) *manifest.Manifest {
	return &manifest.Manifest{
		Run: manifest.Run{
			ID:         id,
			Timestamp:  started,
			Finished:   started.Add(2 * time.Second),
			Tool:       manifest.Tool,
			Profile:    "VFX",
			InputRoot:  "/in/Drop",
			OutputRoot: "/out",
			DropRoot:   "/out/Drop/Hero/v001",
			Project:    "Drop",
			Asset:      "Hero",
			Version:    "v001",
			Status:     finding.StatusError,
		},
		Results: []manifest.ResultItem{
			{Source: "/in/Drop/a.fbx", Destination: "/out/Drop/Hero/v001/export/a.fbx", Action: "COPY", Success: true, Hash: "aa", Bytes: 10},
			{Source: "/in/Drop/b.fbx", Destination: "/out/Drop/Hero/v001/export/b.fbx", Action: "COPY", Error: "permission denied"},
		},
		Summary: manifest.Summary{Planned: 3, Executed: 2, NotRun: 1, Copied: 1, Failed: 1, BytesCopied: 10, Errors: 1},
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	if _, err := os.Stat(store.Path()); err != nil {
		t.Fatalf("expected database at %s: %v", store.Path(), err)
	}
	if got := testsupport.CountRuns(t, store); got != 0 {
		t.Fatalf("expected empty history, got %d", got)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	version, applied, err := reopened.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != 1 || applied.IsZero() {
		t.Fatalf("expected schema 1 with an applied time, got %d at %v", version, applied)
	}
}

func TestOpenRefusesNewerSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.HistoryPath())
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_migrations (version, name, applied_at) VALUES (99, 'future', '')"); err != nil {
		t.Fatalf("insert future migration: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	_, err = history.Open(cfg)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "schema 99") {
		t.Fatalf("error should name the schema found, got %v", err)
	}
}

func TestRecordAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := store.Record(ctx, sampleManifest("0f3c9a10-run", started)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	run, err := store.Get(ctx, "0f3c9a10-run")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run == nil {
		t.Fatal("expected run")
	}
	if run.Status != finding.StatusError || run.Failed != 1 || run.NotRun != 1 || run.BytesCopied != 10 {
		t.Fatalf("unexpected run %+v", run)
	}
	if !run.Started.Equal(started) || run.Duration() != 2*time.Second {
		t.Fatalf("unexpected times %v / %v", run.Started, run.Duration())
	}

	byPrefix, err := store.Get(ctx, "0f3c")
	if err != nil || byPrefix == nil || byPrefix.ID != run.ID {
		t.Fatalf("prefix lookup failed: %+v, %v", byPrefix, err)
	}

	missing, err := store.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v, %v", missing, err)
	}

	results, err := store.Results(ctx, run.ID)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(results) != 2 || !results[0].Success || results[1].Success || results[1].Error != "permission denied" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestRecordReplacesSameRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	m := sampleManifest("same", time.Now())
	if err := store.Record(ctx, m); err != nil {
		t.Fatalf("Record: %v", err)
	}
	m.Results = m.Results[:1]
	m.Run.Status = finding.StatusOK
	if err := store.Record(ctx, m); err != nil {
		t.Fatalf("Record again: %v", err)
	}
	if got := testsupport.CountRuns(t, store); got != 1 {
		t.Fatalf("expected 1 run, got %d", got)
	}
	results, err := store.Results(ctx, "same")
	if err != nil || len(results) != 1 {
		t.Fatalf("expected replaced results, got %+v, %v", results, err)
	}
}

func TestRecordPrunesOldRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryKeep(3))
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		if err := store.Record(ctx, sampleManifest(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs after pruning, got %d", len(runs))
	}
	if runs[0].ID != "run-4" || runs[2].ID != "run-2" {
		t.Fatalf("expected newest first, got %s..%s", runs[0].ID, runs[2].ID)
	}
	if results, err := store.Results(ctx, "run-0"); err != nil || len(results) != 0 {
		t.Fatalf("expected pruned results, got %+v, %v", results, err)
	}

	limited, err := store.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d, %v", len(limited), err)
	}
}

func TestRecordRejectsMissingID(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	if err := store.Record(context.Background(), sampleManifest("", time.Now())); err == nil {
		t.Fatal("expected error for empty run id")
	}
}
