package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"studiodrop/internal/config"
	"studiodrop/internal/services"
)

func TestConsoleHandlerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger = NewComponentLogger(logger, "packager")
	logger.Info("copy complete", String("dest", "out dir/a.png"), Int("files", 3))

	line := buf.String()
	for _, want := range []string{" INFO packager: copy complete", `dest="out dir/a.png"`, "files=3"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix, got %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("info record should be filtered: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "WARN shown") {
		t.Fatalf("warn record missing: %q", buf.String())
	}
}

func TestJSONHandlerRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Error("boom", Error(errors.New("disk full")))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record["level"] != "error" {
		t.Fatalf("unexpected level: %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
	if record["error"] != "disk full" {
		t.Fatalf("unexpected error field: %v", record["error"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestContextHandlerStampsRunAndStage(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := services.WithStage(services.WithRunID(context.Background(), "run-1"), "package")
	logger.InfoContext(ctx, "started")

	line := buf.String()
	if !strings.Contains(line, "run_id=run-1") || !strings.Contains(line, "stage=package") {
		t.Fatalf("expected context fields in %q", line)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	WarnWithContext(context.Background(), logger, "copy failed", "copy_failed", String(FieldImpact, "file missing from delivery"))

	line := buf.String()
	for _, want := range []string{"event_type=copy_failed", "error_hint=", `impact="file missing from delivery"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestTeeHandlerDispatchesByLevel(t *testing.T) {
	var low, high bytes.Buffer
	lowHandler, _ := newHandler(Options{Level: "debug", Writer: &low})
	highHandler, _ := newHandler(Options{Level: "error", Writer: &high})
	logger := slog.New(TeeHandler(lowHandler, nil, highHandler))

	logger.Info("info line")
	logger.Error("error line")

	if !strings.Contains(low.String(), "info line") || !strings.Contains(low.String(), "error line") {
		t.Fatalf("debug handler should see both records: %q", low.String())
	}
	if strings.Contains(high.String(), "info line") || !strings.Contains(high.String(), "error line") {
		t.Fatalf("error handler should only see errors: %q", high.String())
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "debug"

	logger, sink, err := NewFromConfig(&cfg, false)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer sink.Close()
	logger.Debug("file only")

	data, err := os.ReadFile(sink.Path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "file only") {
		t.Fatalf("expected record in log file, got %q", data)
	}
	if matched, _ := filepath.Match(LogFilePattern, filepath.Base(sink.Path)); !matched {
		t.Fatalf("log file %q does not match %q", sink.Path, LogFilePattern)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "studiodrop-20200101.log")
	active := filepath.Join(dir, "studiodrop-20200102.log")
	recent := filepath.Join(dir, "studiodrop-20991231.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, active, recent, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -40)
	for _, path := range []string{old, active, other} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed := CleanupOldLogs(NewNop(), dir, LogFilePattern, active, 30)
	if len(removed) != 1 || filepath.Base(removed[0]) != filepath.Base(old) {
		t.Fatalf("unexpected removals: %v", removed)
	}
	for _, path := range []string{active, recent, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to remain: %v", path, err)
		}
	}
	if got := CleanupOldLogs(nil, dir, LogFilePattern, "", 0); got != nil {
		t.Fatalf("retention 0 should disable pruning, got %v", got)
	}
}

func TestProgressSampler(t *testing.T) {
	sampler := NewProgressSampler(25)
	steps := []struct {
		percent float64
		phase   string
		want    bool
	}{
		{0, "copy", true},
		{10, "copy", false},
		{26, "copy", true},
		{30, "copy", false},
		{30, "verify", true},
		{-1, "verify", false},
		{100, "verify", true},
		{120, "verify", false},
	}
	for i, step := range steps {
		if got := sampler.ShouldLog(step.percent, step.phase); got != step.want {
			t.Fatalf("step %d (%v,%q): got %v want %v", i, step.percent, step.phase, got, step.want)
		}
	}
	if !sampler.ShouldLog(0, "copy") {
		t.Fatal("expected emit when returning to an earlier phase")
	}
}
