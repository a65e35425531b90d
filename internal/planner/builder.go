package planner

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"studiodrop/internal/fileutil"
	"studiodrop/internal/finding"
	"studiodrop/internal/logging"
	"studiodrop/internal/profile"
	"studiodrop/internal/scanner"
	"studiodrop/internal/services"
	"studiodrop/internal/textutil"
)

// Options carries identity overrides. Empty fields are derived from the tree.
type Options struct {
	Project string
	Asset   string
	Version string
	Logger  *slog.Logger
}

// Build computes the plan for tree under outputRoot. It fails with an
// UnresolvedError when the identity cannot be derived or the output root is
// unusable.
func Build(ctx context.Context, tree *scanner.Tree, p *profile.Profile, outputRoot string, opts Options) (*Plan, error) {
	logger := logging.NewComponentLogger(opts.Logger, "planner")

	if strings.TrimSpace(outputRoot) == "" {
		return nil, &UnresolvedError{Field: "output_root", Reason: "no output root given"}
	}
	absOutput, err := filepath.Abs(outputRoot)
	if err != nil {
		return nil, &UnresolvedError{Field: "output_root", Reason: err.Error()}
	}
	id, err := resolveIdentity(tree, p, opts)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Identity:   id,
		InputRoot:  tree.Root,
		OutputRoot: absOutput,
		DropRoot:   filepath.Join(absOutput, id.Project, id.Asset, id.Version),
	}
	if within(plan.DropRoot, tree.Root) {
		return nil, &UnresolvedError{Field: "output_root", Reason: "drop folder " + plan.DropRoot + " is inside the input root"}
	}

	reserved := map[string]string{
		textutil.FoldKey(plan.ManifestPath()): "run manifest",
		textutil.FoldKey(plan.ReportPath()):   "run report",
	}
	claimed := make(map[string]string)

	for _, e := range tree.Entries {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrCancelled, "plan", "build", "plan interrupted", err)
		}
		if e.Kind == scanner.KindLink {
			plan.Findings = append(plan.Findings, finding.New(finding.Info, RuleLinkSkipped, e.RelPath,
				"symbolic link %q is not followed or packaged", e.RelPath))
			continue
		}
		if e.Kind != scanner.KindFile {
			continue
		}

		category, inner := categorize(e, p)
		entry := Entry{
			Source:      e.AbsPath,
			RelPath:     e.RelPath,
			Destination: filepath.Join(plan.DropRoot, string(category), filepath.FromSlash(inner)),
			Category:    category,
			Size:        e.Size,
		}
		key := textutil.FoldKey(entry.Destination)

		switch {
		case reserved[key] != "":
			entry.Action = ActionSkip
			entry.Collision = true
			entry.Reason = "destination reserved for the " + reserved[key]
			plan.Findings = append(plan.Findings, finding.New(finding.Error, RuleDestReserved, e.RelPath,
				"%q would overwrite the %s at %s", e.RelPath, reserved[key], entry.Destination))
		case claimed[key] != "":
			entry.Action = ActionSkip
			entry.Collision = true
			entry.Reason = "destination already claimed by " + claimed[key]
			plan.Findings = append(plan.Findings, finding.New(finding.Error, RuleDestCollision, e.RelPath,
				"%q and %q map to the same destination %s", claimed[key], e.RelPath, entry.Destination))
		default:
			claimed[key] = e.RelPath
			compareExisting(&entry, plan, logger)
		}

		plan.TotalBytes += entry.Size
		if entry.Writes() {
			plan.WriteBytes += entry.Size
		}
		plan.Entries = append(plan.Entries, entry)
	}

	finding.Sort(plan.Findings)
	counts := plan.Counts()
	logger.InfoContext(ctx, "plan built",
		logging.String(logging.FieldEventType, "plan_built"),
		logging.String("drop_root", plan.DropRoot),
		logging.Int("copy", counts[ActionCopy]),
		logging.Int("overwrite", counts[ActionOverwrite]),
		logging.Int("skip", counts[ActionSkip]),
		logging.Int("collisions", plan.Collisions()),
		logging.Int64("write_bytes", plan.WriteBytes),
	)
	return plan, nil
}

// compareExisting sets the action from what already sits at the destination.
// Identical content is skipped; anything else that exists is an overwrite.
func compareExisting(entry *Entry, plan *Plan, logger *slog.Logger) {
	info, err := os.Lstat(entry.Destination)
	if errors.Is(err, fs.ErrNotExist) {
		entry.Action = ActionCopy
		return
	}
	if err != nil {
		entry.Action = ActionOverwrite
		entry.Collision = true
		entry.Reason = "destination could not be inspected: " + err.Error()
		return
	}
	if !info.Mode().IsRegular() {
		entry.Action = ActionSkip
		entry.Collision = true
		entry.Reason = "destination exists and is not a regular file"
		plan.Findings = append(plan.Findings, finding.New(finding.Error, RuleDestNotFile, entry.RelPath,
			"destination %s exists and is not a regular file", entry.Destination))
		return
	}

	entry.Action = ActionOverwrite
	entry.Collision = true
	if info.Size() != entry.Size {
		entry.Reason = "destination exists with different size"
		return
	}
	destHash, err := fileutil.HashFile(entry.Destination)
	if err != nil {
		entry.Reason = "destination could not be hashed: " + err.Error()
		return
	}
	srcHash, err := fileutil.HashFile(entry.Source)
	if err != nil {
		logging.WarnWithContext(context.Background(), logger, "source hash failed during planning", "plan_hash_failed",
			logging.String("path", entry.Source),
			logging.Error(err),
			logging.String(logging.FieldImpact, "entry kept as overwrite; the copy will report the failure"),
		)
		entry.Reason = "source could not be hashed: " + err.Error()
		return
	}
	if srcHash == destHash {
		entry.Action = ActionSkip
		entry.Collision = false
		entry.KnownHash = destHash
		entry.Reason = "identical file already at destination"
		return
	}
	entry.Reason = "destination content differs"
}

func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
