package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"studiodrop/internal/config"
	"studiodrop/internal/finding"
	"studiodrop/internal/history"
	"studiodrop/internal/logging"
	"studiodrop/internal/manifest"
	"studiodrop/internal/packager"
	"studiodrop/internal/planner"
	"studiodrop/internal/preflight"
	"studiodrop/internal/profile"
	"studiodrop/internal/scanner"
	"studiodrop/internal/services"
	"studiodrop/internal/validator"
)

// Engine coordinates one packaging run at a time.
type Engine struct {
	cfg     *config.Config
	logger  *slog.Logger
	history *history.Store
	version string
}

// Option configures optional Engine behavior.
type Option func(*Engine)

// WithHistory records emitted runs in store.
func WithHistory(store *history.Store) Option {
	return func(e *Engine) { e.history = store }
}

// WithToolVersion sets the tool version written to manifests.
func WithToolVersion(version string) Option {
	return func(e *Engine) { e.version = version }
}

// NewEngine constructs an engine. A nil logger discards output.
func NewEngine(cfg *config.Config, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Engine{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "workflow"),
		version: "dev",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// LoadProfile resolves ref, or the configured default profile when ref is
// empty.
func (e *Engine) LoadProfile(ref string) (*profile.Profile, error) {
	if strings.TrimSpace(ref) == "" {
		ref = e.cfg.Defaults.Profile
	}
	p, err := profile.Resolve(ref, e.cfg.Paths.ProfilesDir)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("profile loaded",
		logging.String("profile", p.Name()),
		logging.String("source", p.Source()),
	)
	return p, nil
}

// Scan walks root with the configured ignore rules plus those of p, which
// may be nil.
func (e *Engine) Scan(ctx context.Context, root string, p *profile.Profile) (*scanner.Tree, error) {
	ctx = services.WithStage(ctx, "scan")
	patterns := append([]string{}, e.cfg.Scan.IgnorePatterns...)
	if p != nil {
		patterns = append(patterns, p.IgnorePatterns()...)
	}
	tree, err := scanner.Scan(ctx, root, scanner.Options{
		IgnoreHidden:   e.cfg.Scan.IgnoreHidden,
		IgnorePatterns: patterns,
		Logger:         e.logger,
	})
	if err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "scan complete",
		logging.String(logging.FieldEventType, "scan_complete"),
		logging.String("root", tree.Root),
		logging.Int("files", tree.Files),
		logging.Int("dirs", tree.Dirs),
		logging.Int("ignored", tree.Ignored),
		logging.Int("issues", len(tree.Issues)),
		logging.Int64("bytes", tree.Bytes),
	)
	return tree, nil
}

// Validate evaluates every rule of p against tree.
func (e *Engine) Validate(ctx context.Context, tree *scanner.Tree, p *profile.Profile) []finding.Finding {
	ctx = services.WithStage(ctx, "validate")
	findings := validator.Validate(tree, p)
	e.logger.InfoContext(ctx, "validation complete",
		logging.String(logging.FieldEventType, "validation_complete"),
		logging.String("status", string(validator.Status(findings))),
		logging.Int("errors", finding.Count(findings, finding.Error)),
		logging.Int("warnings", finding.Count(findings, finding.Warning)),
	)
	return findings
}

// PlanRequest carries the output root and identity overrides for BuildPlan.
type PlanRequest struct {
	OutputRoot string
	Project    string
	Asset      string
	Version    string
}

// BuildPlan computes the copy plan. An empty output root falls back to the
// configured default.
func (e *Engine) BuildPlan(ctx context.Context, tree *scanner.Tree, p *profile.Profile, req PlanRequest) (*planner.Plan, error) {
	ctx = services.WithStage(ctx, "plan")
	outputRoot := strings.TrimSpace(req.OutputRoot)
	if outputRoot == "" {
		outputRoot = e.cfg.Defaults.OutputRoot
	}
	if outputRoot != "" {
		expanded, err := config.ExpandPath(outputRoot)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "plan", "expand output root", outputRoot, err)
		}
		outputRoot = expanded
	}
	return planner.Build(ctx, tree, p, outputRoot, planner.Options{
		Project: req.Project,
		Asset:   req.Asset,
		Version: req.Version,
		Logger:  e.logger,
	})
}

// Preflight checks that the plan's output root is writable and has room for
// the bytes the plan will write.
func (e *Engine) Preflight(ctx context.Context, plan *planner.Plan) error {
	ctx = services.WithStage(ctx, "preflight")
	results := preflight.CheckOutput(plan.OutputRoot, plan.WriteBytes, int64(e.cfg.MinFreeBytes()))
	for _, r := range results {
		if r.Passed {
			e.logger.DebugContext(ctx, "preflight passed", logging.String("check", r.Name), logging.String("detail", r.Detail))
			continue
		}
		logging.WarnWithContext(ctx, e.logger, "preflight failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldErrorHint, "free space on the output volume or choose another output root"),
			logging.String(logging.FieldImpact, "nothing is copied"),
		)
	}
	return preflight.Err(results)
}

func (e *Engine) executorOptions() packager.Options {
	opts := packager.Options{
		PreserveModTime: e.cfg.Package.PreserveModTime,
		Logger:          e.logger,
	}
	if e.cfg.Package.LockOutputRoot {
		opts.LockDir = e.cfg.LockDir()
	}
	return opts
}

// Execute runs the plan on the calling goroutine after preflight. sink and
// poller may be nil.
func (e *Engine) Execute(ctx context.Context, plan *planner.Plan, sink packager.ProgressSink, poller packager.CancelPoller) (*packager.Outcome, error) {
	if err := e.Preflight(ctx, plan); err != nil {
		return nil, err
	}
	return packager.Execute(services.WithStage(ctx, "package"), plan, sink, poller, e.executorOptions())
}

// EmitRequest describes a finished run.
type EmitRequest struct {
	RunID    string
	Profile  string
	Started  time.Time
	Findings []finding.Finding
	Plan     *planner.Plan
	// Outcome is nil when nothing was executed.
	Outcome *packager.Outcome
}

// Emit builds the manifest, writes it with the report below the drop root
// and records the run in history when a store is attached. A history failure
// is logged and does not fail the emit.
func (e *Engine) Emit(ctx context.Context, req EmitRequest) (*manifest.Manifest, manifest.Paths, error) {
	ctx = services.WithStage(ctx, "emit")
	if req.RunID == "" {
		req.RunID = NewRunID()
	}
	if req.Started.IsZero() {
		req.Started = time.Now()
	}
	m := manifest.Build(manifest.Meta{
		RunID:       req.RunID,
		ToolVersion: e.version,
		Profile:     req.Profile,
		Started:     req.Started,
	}, req.Findings, req.Plan, req.Outcome)

	paths, err := manifest.Emit(m, req.Plan.DropRoot)
	if err != nil {
		return m, manifest.Paths{}, err
	}
	e.logger.InfoContext(ctx, "manifest written",
		logging.String(logging.FieldEventType, "manifest_written"),
		logging.String("manifest", paths.Manifest),
		logging.String("report", paths.Report),
		logging.String("status", string(m.Run.Status)),
	)

	if e.history != nil {
		if err := e.history.Record(ctx, m); err != nil {
			logging.WarnWithContext(ctx, e.logger, "failed to record run history", "history_record_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the state directory is writable"),
				logging.String(logging.FieldImpact, "run missing from studiodrop history; the manifest is unaffected"),
			)
		}
	}
	return m, paths, nil
}
