package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"studiodrop/internal/finding"
	"studiodrop/internal/planner"
)

type planEntryView struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Category    string `json:"category"`
	Action      string `json:"action"`
	Collision   bool   `json:"collision"`
	Size        int64  `json:"size"`
	Reason      string `json:"reason,omitempty"`
}

type planView struct {
	Profile    string            `json:"profile"`
	Status     finding.Status    `json:"status"`
	Project    string            `json:"project"`
	Asset      string            `json:"asset"`
	Version    string            `json:"version"`
	InputRoot  string            `json:"input_root"`
	DropRoot   string            `json:"drop_root"`
	TotalBytes int64             `json:"total_bytes"`
	WriteBytes int64             `json:"write_bytes"`
	Counts     map[string]int    `json:"counts"`
	Entries    []planEntryView   `json:"entries"`
	Findings   []finding.Finding `json:"findings"`
}

func newPlanView(profileName string, status finding.Status, findings []finding.Finding, plan *planner.Plan) planView {
	view := planView{
		Profile:    profileName,
		Status:     status,
		Project:    plan.Identity.Project,
		Asset:      plan.Identity.Asset,
		Version:    plan.Identity.Version,
		InputRoot:  plan.InputRoot,
		DropRoot:   plan.DropRoot,
		TotalBytes: plan.TotalBytes,
		WriteBytes: plan.WriteBytes,
		Counts:     map[string]int{},
		Entries:    make([]planEntryView, 0, len(plan.Entries)),
		Findings:   append(append([]finding.Finding{}, findings...), plan.Findings...),
	}
	finding.Sort(view.Findings)
	for action, n := range plan.Counts() {
		view.Counts[string(action)] = n
	}
	for _, e := range plan.Entries {
		view.Entries = append(view.Entries, planEntryView{
			Source:      e.RelPath,
			Destination: e.Destination,
			Category:    string(e.Category),
			Action:      string(e.Action),
			Collision:   e.Collision,
			Size:        e.Size,
			Reason:      e.Reason,
		})
	}
	return view
}

func relToDrop(dropRoot, path string) string {
	if rel, err := filepath.Rel(dropRoot, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func renderPlan(w io.Writer, view planView, color bool) {
	fmt.Fprintf(w, "Drop: %s\n", view.DropRoot)
	fmt.Fprintf(w, "Identity: %s / %s / %s (profile %s)\n", view.Project, view.Asset, view.Version, view.Profile)

	rows := make([][]string, 0, len(view.Entries))
	for _, e := range view.Entries {
		action := e.Action
		if e.Collision {
			action = colorize(action+" (collision)", ansiYellow, color)
		}
		rows = append(rows, []string{e.Source, relToDrop(view.DropRoot, e.Destination), e.Category, action, formatBytes(e.Size)})
	}
	fmt.Fprintln(w, tableSpec{
		Headers: []string{"Source", "Destination", "Category", "Action", "Size"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
		Footer: []string{
			strconv.Itoa(len(view.Entries)) + " entries",
			fmt.Sprintf("copy %d, overwrite %d, skip %d", view.Counts["COPY"], view.Counts["OVERWRITE"], view.Counts["SKIP"]),
			"",
			"to write",
			formatBytes(view.WriteBytes),
		},
	}.render())
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags deliveryFlags

	cmd := &cobra.Command{
		Use:   "plan <delivery-dir>",
		Short: "Preview where each file of a delivery would be packaged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.engine()
			if err != nil {
				return err
			}
			prep, err := engine.Prepare(cmd.Context(), flags.request(args[0], false))
			if err != nil {
				return err
			}

			view := newPlanView(prep.Profile.Name(), prep.Status(), prep.Findings, prep.Plan)
			if flags.json {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			renderPlan(out, view, color)
			if blocking := nonInfo(view.Findings); len(blocking) > 0 {
				printSection(out, "Findings", color)
				renderFindings(out, blocking, color)
			}
			fmt.Fprintf(out, "Status: %s\n", renderStatus(view.Status, color))
			return nil
		},
	}
	flags.bindPlan(cmd)
	return cmd
}

func nonInfo(findings []finding.Finding) []finding.Finding {
	var out []finding.Finding
	for _, f := range findings {
		if f.Severity > finding.Info {
			out = append(out, f)
		}
	}
	return out
}
