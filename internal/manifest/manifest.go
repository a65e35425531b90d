// Package manifest assembles the authoritative record of a package run and
// writes it, with a rendered HTML report, below the drop folder.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"studiodrop/internal/finding"
	"studiodrop/internal/packager"
	"studiodrop/internal/planner"
)

// Tool is the name recorded in every manifest.
const Tool = "studiodrop"

// Run is the run metadata block.
type Run struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Finished    time.Time      `json:"finished"`
	Tool        string         `json:"tool"`
	ToolVersion string         `json:"tool_version"`
	Profile     string         `json:"profile"`
	InputRoot   string         `json:"input_root"`
	OutputRoot  string         `json:"output_root"`
	DropRoot    string         `json:"drop_root"`
	Project     string         `json:"project"`
	Asset       string         `json:"asset"`
	Version     string         `json:"version"`
	Status      finding.Status `json:"status"`
}

// PlanItem is one plan entry as recorded in the manifest.
type PlanItem struct {
	Source      string `json:"source"`
	RelPath     string `json:"rel_path"`
	Destination string `json:"destination"`
	Category    string `json:"category"`
	Action      string `json:"action"`
	Collision   bool   `json:"collision"`
	Size        int64  `json:"size"`
	Reason      string `json:"reason,omitempty"`
}

// ResultItem is one copy result as recorded in the manifest.
type ResultItem struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Action      string `json:"action"`
	Success     bool   `json:"success"`
	Hash        string `json:"hash"`
	Error       string `json:"error"`
	Bytes       int64  `json:"bytes"`
}

// Summary holds the counts shown at the top of the report.
type Summary struct {
	Planned     int   `json:"planned"`
	Executed    int   `json:"executed"`
	NotRun      int   `json:"not_run"`
	Copied      int   `json:"copied"`
	Overwritten int   `json:"overwritten"`
	Skipped     int   `json:"skipped"`
	Failed      int   `json:"failed"`
	Collisions  int   `json:"collisions"`
	BytesCopied int64 `json:"bytes_copied"`
	Errors      int   `json:"errors"`
	Warnings    int   `json:"warnings"`
	Infos       int   `json:"infos"`
}

// Manifest is the full record of one run.
type Manifest struct {
	Run      Run               `json:"run"`
	Findings []finding.Finding `json:"findings"`
	Plan     []PlanItem        `json:"plan"`
	Results  []ResultItem      `json:"results"`
	Summary  Summary           `json:"summary"`
}

// Meta is the caller-supplied part of the run block.
type Meta struct {
	RunID       string
	ToolVersion string
	Profile     string
	Started     time.Time
}

// Build assembles a manifest. findings are the validation findings; plan
// findings are merged in. outcome may be nil when nothing was executed, which
// leaves every entry counted as not run.
func Build(meta Meta, findings []finding.Finding, plan *planner.Plan, outcome *packager.Outcome) *Manifest {
	all := make([]finding.Finding, 0, len(findings)+len(plan.Findings))
	all = append(all, findings...)
	all = append(all, plan.Findings...)
	finding.Sort(all)

	m := &Manifest{
		Run: Run{
			ID:          meta.RunID,
			Timestamp:   meta.Started.UTC(),
			Tool:        Tool,
			ToolVersion: meta.ToolVersion,
			Profile:     meta.Profile,
			InputRoot:   plan.InputRoot,
			OutputRoot:  plan.OutputRoot,
			DropRoot:    plan.DropRoot,
			Project:     plan.Identity.Project,
			Asset:       plan.Identity.Asset,
			Version:     plan.Identity.Version,
		},
		Findings: all,
		Plan:     make([]PlanItem, 0, len(plan.Entries)),
		Results:  []ResultItem{},
	}

	for _, e := range plan.Entries {
		m.Plan = append(m.Plan, PlanItem{
			Source:      e.Source,
			RelPath:     e.RelPath,
			Destination: e.Destination,
			Category:    string(e.Category),
			Action:      string(e.Action),
			Collision:   e.Collision,
			Size:        e.Size,
			Reason:      e.Reason,
		})
		if e.Collision {
			m.Summary.Collisions++
		}
	}
	m.Summary.Planned = len(plan.Entries)

	cancelled := false
	if outcome != nil {
		cancelled = outcome.Cancelled
		m.Run.Finished = outcome.Finished.UTC()
		for _, r := range outcome.Results {
			m.Results = append(m.Results, ResultItem{
				Source:      r.Entry.Source,
				Destination: r.Entry.Destination,
				Action:      string(r.Entry.Action),
				Success:     r.Success,
				Hash:        r.Hash,
				Error:       r.Error,
				Bytes:       r.Bytes,
			})
			switch {
			case !r.Success:
				m.Summary.Failed++
			case r.Entry.Action == planner.ActionCopy:
				m.Summary.Copied++
			case r.Entry.Action == planner.ActionOverwrite:
				m.Summary.Overwritten++
			default:
				m.Summary.Skipped++
			}
			m.Summary.BytesCopied += r.Bytes
		}
	}
	if m.Run.Finished.IsZero() {
		m.Run.Finished = time.Now().UTC()
	}
	m.Summary.Executed = len(m.Results)
	m.Summary.NotRun = m.Summary.Planned - m.Summary.Executed
	m.Summary.Errors = finding.Count(all, finding.Error)
	m.Summary.Warnings = finding.Count(all, finding.Warning)
	m.Summary.Infos = finding.Count(all, finding.Info)
	m.Run.Status = finding.RunStatus(all, m.Summary.Failed, cancelled)
	return m
}

// FailedResults returns the results that did not succeed.
func (m *Manifest) FailedResults() []ResultItem {
	var failed []ResultItem
	for _, r := range m.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// Encode returns the indented JSON form.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ReadFile loads a manifest written by Emit.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return &m, nil
}
