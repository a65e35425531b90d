// Package history persists a summary of every package run in a SQLite
// database below the state directory.
//
// Each recorded run keeps its run block, summary counts and per-entry copy
// results so "studiodrop history" can list past deliveries and show the
// failures of a given run without the drop folder being present. The store
// keeps the most recent runs only; older rows are pruned on every Record.
package history
