package workflow

import (
	"context"
	"errors"
	"time"

	"studiodrop/internal/finding"
	"studiodrop/internal/logging"
	"studiodrop/internal/planner"
	"studiodrop/internal/profile"
	"studiodrop/internal/scanner"
	"studiodrop/internal/services"
)

// Request names a delivery and how to package it.
type Request struct {
	InputRoot string
	Profile   string
	Plan      PlanRequest
	// SkipPlan stops after validation.
	SkipPlan bool
}

// Prepared is the result of the read-only stages of a run.
type Prepared struct {
	RunID    string
	Started  time.Time
	Profile  *profile.Profile
	Tree     *scanner.Tree
	Findings []finding.Finding
	// Plan is nil when the request skipped planning.
	Plan *planner.Plan
}

// Status is the validation status folded with plan findings.
func (p *Prepared) Status() finding.Status {
	all := append([]finding.Finding{}, p.Findings...)
	if p.Plan != nil {
		all = append(all, p.Plan.Findings...)
	}
	return finding.Aggregate(all)
}

// Prepare loads the profile, scans, validates and, unless skipped, plans.
// Nothing on disk is modified.
func (e *Engine) Prepare(ctx context.Context, req Request) (*Prepared, error) {
	prep := &Prepared{RunID: NewRunID(), Started: time.Now().UTC()}
	ctx = services.WithRunID(ctx, prep.RunID)

	p, err := e.LoadProfile(req.Profile)
	if err != nil {
		return nil, e.abort(ctx, "profile", err)
	}
	prep.Profile = p

	if prep.Tree, err = e.Scan(ctx, req.InputRoot, p); err != nil {
		return nil, e.abort(ctx, "scan", err)
	}
	prep.Findings = e.Validate(ctx, prep.Tree, p)
	if req.SkipPlan {
		return prep, nil
	}
	if prep.Plan, err = e.BuildPlan(ctx, prep.Tree, p, req.Plan); err != nil {
		return nil, e.abort(ctx, "plan", err)
	}
	return prep, nil
}

func (e *Engine) abort(ctx context.Context, stage string, err error) error {
	if !services.IsFatal(err) || errors.Is(err, services.ErrCancelled) {
		return err
	}
	logging.ErrorWithContext(services.WithStage(ctx, stage), e.logger, "run aborted", services.Kind(err),
		logging.Error(err),
		logging.String(logging.FieldImpact, "nothing is packaged"),
	)
	return err
}

// Context returns ctx carrying the run ID, for stage calls after Prepare.
func (p *Prepared) Context(ctx context.Context) context.Context {
	return services.WithRunID(ctx, p.RunID)
}
