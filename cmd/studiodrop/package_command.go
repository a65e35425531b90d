package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"studiodrop/internal/finding"
	"studiodrop/internal/manifest"
	"studiodrop/internal/packager"
	"studiodrop/internal/workflow"
)

type packageView struct {
	RunID    string                `json:"run_id"`
	Status   finding.Status        `json:"status"`
	Manifest string                `json:"manifest"`
	Report   string                `json:"report"`
	Summary  manifest.Summary      `json:"summary"`
	Failed   []manifest.ResultItem `json:"failed"`
}

func newPackageCommand(ctx *commandContext) *cobra.Command {
	var flags deliveryFlags
	var assumeYes bool
	var force bool

	cmd := &cobra.Command{
		Use:   "package <delivery-dir>",
		Short: "Validate, plan and copy a delivery into the versioned output layout",
		Long: "Validate, plan and copy a delivery into the versioned output layout.\n\n" +
			"The plan is shown and confirmed before anything is written. Ctrl-C stops\n" +
			"after the file being copied; the manifest and report are still written.\n" +
			"Exits 2 when the run ends with status ERROR and 3 when it is cancelled.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.engine()
			if err != nil {
				return err
			}
			baseCtx := cmd.Context()
			if baseCtx == nil {
				baseCtx = context.Background()
			}
			prep, err := engine.Prepare(baseCtx, flags.request(args[0], false))
			if err != nil {
				return err
			}
			runCtx := prep.Context(baseCtx)

			out := cmd.OutOrStdout()
			if flags.json {
				out = cmd.ErrOrStderr()
			}
			color := shouldColorize(out)
			view := newPlanView(prep.Profile.Name(), prep.Status(), prep.Findings, prep.Plan)
			renderPlan(out, view, color)
			if shown := nonInfo(view.Findings); len(shown) > 0 {
				printSection(out, "Findings", color)
				renderFindings(out, shown, color)
			}

			if view.Status.Blocking() && !force {
				return &statusError{status: view.Status, detail: "validation failed; fix the findings or pass --force"}
			}
			if !assumeYes {
				ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Package %d files (%s) into %s? [y/N] ",
					len(prep.Plan.Entries), formatBytes(prep.Plan.WriteBytes), prep.Plan.DropRoot))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted; nothing was written.")
					return nil
				}
			}

			job := engine.Start(runCtx, prep.Plan)
			stopSignals := cancelOnInterrupt(job, cmd.ErrOrStderr())
			followProgress(job, cmd.ErrOrStderr(), len(prep.Plan.Entries))
			outcome, err := job.Wait()
			stopSignals()
			if err != nil {
				return err
			}

			m, paths, err := engine.Emit(runCtx, workflow.EmitRequest{
				RunID:    prep.RunID,
				Profile:  prep.Profile.Name(),
				Started:  prep.Started,
				Findings: prep.Findings,
				Plan:     prep.Plan,
				Outcome:  outcome,
			})
			if err != nil {
				return err
			}

			result := packageView{
				RunID:    m.Run.ID,
				Status:   m.Run.Status,
				Manifest: paths.Manifest,
				Report:   paths.Report,
				Summary:  m.Summary,
				Failed:   m.FailedResults(),
			}
			if result.Failed == nil {
				result.Failed = []manifest.ResultItem{}
			}
			if flags.json {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				renderPackageResult(out, result, color)
			}

			switch m.Run.Status {
			case finding.StatusError:
				return &statusError{status: m.Run.Status, detail: errorDetail(m)}
			case finding.StatusCancelled:
				return &statusError{status: m.Run.Status, detail: fmt.Sprintf("%d of %d entries not run", m.Summary.NotRun, m.Summary.Planned)}
			}
			return nil
		},
	}
	flags.bindPlan(cmd)
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&force, "force", false, "Package even when validation reports errors")
	return cmd
}

func errorDetail(m *manifest.Manifest) string {
	if m.Summary.Failed > 0 {
		return fmt.Sprintf("%d copies failed", m.Summary.Failed)
	}
	return fmt.Sprintf("packaged with %d validation errors", finding.Count(m.Findings, finding.Error))
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// cancelOnInterrupt maps SIGINT/SIGTERM to job.Cancel until the returned
// stop function is called.
func cancelOnInterrupt(job *workflow.Job, errOut io.Writer) func() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-signals:
			job.Cancel()
			fmt.Fprintln(errOut, "\nCancelling after the current file...")
		case <-done:
		}
	}()
	return func() {
		signal.Stop(signals)
		close(done)
	}
}

// followProgress drains the job's progress channel, drawing a bar when errOut
// is a terminal.
func followProgress(job *workflow.Job, errOut io.Writer, total int) {
	if !shouldColorize(errOut) {
		for range job.Progress() {
		}
		return
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(errOut),
		progressbar.OptionSetDescription("packaging"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	var last packager.Progress
	for p := range job.Progress() {
		last = p
		bar.Describe(truncate(p.Current, 40))
		_ = bar.Set(p.Completed)
	}
	if last.Completed == total {
		_ = bar.Finish()
	}
	_ = bar.Exit()
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return "..." + string(runes[len(runes)-limit+3:])
}

func renderPackageResult(w io.Writer, result packageView, color bool) {
	s := result.Summary
	printSection(w, "Result", color)
	fmt.Fprintf(w, "Status: %s\n", renderStatus(result.Status, color))
	fmt.Fprintln(w, renderTable(
		[]string{"Copied", "Overwritten", "Skipped", "Failed", "Not run", "Written"},
		[][]string{{
			fmt.Sprint(s.Copied), fmt.Sprint(s.Overwritten), fmt.Sprint(s.Skipped),
			fmt.Sprint(s.Failed), fmt.Sprint(s.NotRun), formatBytes(s.BytesCopied),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	if len(result.Failed) > 0 {
		rows := make([][]string, 0, len(result.Failed))
		for _, r := range result.Failed {
			rows = append(rows, []string{r.Destination, r.Error})
		}
		fmt.Fprintln(w, renderTable([]string{"Failed destination", "Error"}, rows, nil))
	}
	fmt.Fprintf(w, "Manifest: %s\nReport:   %s\nRun ID:   %s\n", result.Manifest, result.Report, result.RunID)
}
