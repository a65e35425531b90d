package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"studiodrop/internal/history"
	"studiodrop/internal/manifest"
)

type historyRunView struct {
	ID          string    `json:"id"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished"`
	Status      string    `json:"status"`
	Profile     string    `json:"profile"`
	Project     string    `json:"project"`
	Asset       string    `json:"asset"`
	Version     string    `json:"version"`
	DropRoot    string    `json:"drop_root"`
	Planned     int       `json:"planned"`
	Copied      int       `json:"copied"`
	Overwritten int       `json:"overwritten"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	NotRun      int       `json:"not_run"`
	BytesCopied int64     `json:"bytes_copied"`
}

func newHistoryRunView(run history.Run) historyRunView {
	return historyRunView{
		ID:          run.ID,
		Started:     run.Started,
		Finished:    run.Finished,
		Status:      string(run.Status),
		Profile:     run.Profile,
		Project:     run.Project,
		Asset:       run.Asset,
		Version:     run.Version,
		DropRoot:    run.DropRoot,
		Planned:     run.Planned,
		Copied:      run.Copied,
		Overwritten: run.Overwritten,
		Skipped:     run.Skipped,
		Failed:      run.Failed,
		NotRun:      run.NotRun,
		BytesCopied: run.BytesCopied,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded package runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			views := make([]historyRunView, 0, len(runs))
			for _, run := range runs {
				views = append(views, newHistoryRunView(run))
			}
			if jsonOut {
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			color := shouldColorize(out)
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.Started.Local().Format("2006-01-02 15:04"),
					renderStatus(run.Status, color),
					run.Project + "/" + run.Asset + "/" + run.Version,
					run.Profile,
					strconv.Itoa(run.Copied + run.Overwritten),
					strconv.Itoa(run.Failed),
					formatBytes(run.BytesCopied),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Started", "Status", "Delivery", "Profile", "Written", "Failed", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	addJSONFlag(cmd, &jsonOut)
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var showAll bool
	var showManifest bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run and its failed copies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %q not found", args[0])
			}
			if showManifest {
				m, err := loadRunManifest(*run)
				if err != nil {
					return err
				}
				return writeJSON(cmd, m)
			}
			results, err := store.Results(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if !showAll {
				failed := results[:0]
				for _, r := range results {
					if !r.Success {
						failed = append(failed, r)
					}
				}
				results = failed
			}

			if jsonOut {
				return writeJSON(cmd, struct {
					Run     historyRunView   `json:"run"`
					Results []history.Result `json:"results"`
				}{newHistoryRunView(*run), results})
			}

			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			fmt.Fprintf(out, "Run:      %s\n", run.ID)
			fmt.Fprintf(out, "Status:   %s\n", renderStatus(run.Status, color))
			fmt.Fprintf(out, "Started:  %s (%s)\n", run.Started.Local().Format(time.RFC3339), run.Duration().Round(time.Millisecond))
			fmt.Fprintf(out, "Profile:  %s\n", run.Profile)
			fmt.Fprintf(out, "Input:    %s\n", run.InputRoot)
			fmt.Fprintf(out, "Drop:     %s\n", run.DropRoot)
			fmt.Fprintf(out, "Entries:  %d planned, %d copied, %d overwritten, %d skipped, %d failed, %d not run\n",
				run.Planned, run.Copied, run.Overwritten, run.Skipped, run.Failed, run.NotRun)

			if len(results) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				state := colorize("ok", ansiGreen, color)
				if !r.Success {
					state = colorize("failed", ansiRed, color)
				}
				rows = append(rows, []string{relToDrop(run.DropRoot, r.Destination), r.Action, state, shortHash(r.Hash), r.Error})
			}
			fmt.Fprintln(out, renderTable([]string{"Destination", "Action", "Result", "SHA-1", "Error"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showAll, "all", false, "List every result, not only failures")
	cmd.Flags().BoolVar(&showManifest, "manifest", false, "Print the manifest written to the drop folder")
	addJSONFlag(cmd, &jsonOut)
	return cmd
}

// loadRunManifest reads the manifest in the run's drop folder. A later run
// into the same drop replaces it, so the run ID must match.
func loadRunManifest(run history.Run) (*manifest.Manifest, error) {
	path := manifest.PathsFor(run.DropRoot).Manifest
	m, err := manifest.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest for run %s: %w", shortID(run.ID), err)
	}
	if m.Run.ID != run.ID {
		return nil, fmt.Errorf("manifest %s was overwritten by run %s", path, shortID(m.Run.ID))
	}
	return m, nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
