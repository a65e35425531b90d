package testsupport

import (
	"context"
	"testing"

	"studiodrop/internal/config"
	"studiodrop/internal/history"
)

// MustOpenHistory opens a history.Store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// CountRuns returns the number of recorded runs.
func CountRuns(t testing.TB, store *history.Store) int {
	t.Helper()

	runs, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("history.List: %v", err)
	}
	return len(runs)
}
