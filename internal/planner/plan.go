// Package planner maps a scanned delivery onto the studio drop layout
// (Project/Asset/vNNN/<category>/...) and decides, per file, whether packaging
// copies it, overwrites an existing destination, or skips it.
//
// Building a plan only reads the filesystem: destinations that already exist
// are hashed so the preview shows the real overwrite risk, but nothing is
// created or modified.
package planner

import (
	"path/filepath"

	"studiodrop/internal/finding"
	"studiodrop/internal/profile"
)

// Action is what the executor does with one entry.
type Action string

const (
	ActionCopy      Action = "COPY"
	ActionOverwrite Action = "OVERWRITE"
	ActionSkip      Action = "SKIP"
)

// Plan finding rules.
const (
	RuleDestCollision = "DEST_COLLISION"
	RuleDestReserved  = "DEST_RESERVED"
	RuleDestNotFile   = "DEST_NOT_FILE"
	RuleLinkSkipped   = "LINK_NOT_PACKAGED"
)

// Fixed locations of the run manifest and report below the drop root.
const (
	ManifestRelPath = "docs/manifest.json"
	ReportRelPath   = "docs/report.html"
)

// Identity names the drop folder.
type Identity struct {
	Project string `json:"project"`
	Asset   string `json:"asset"`
	Version string `json:"version"`
}

// Entry is one proposed file operation.
type Entry struct {
	Source      string           `json:"source"`
	RelPath     string           `json:"rel_path"`
	Destination string           `json:"destination"`
	Category    profile.Category `json:"category"`
	Action      Action           `json:"action"`
	Collision   bool             `json:"collision"`
	Size        int64            `json:"size"`
	// KnownHash is the SHA-1 of the content already at Destination when the
	// plan proved it identical to the source.
	KnownHash string `json:"known_hash,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Writes reports whether executing the entry writes to the destination.
func (e Entry) Writes() bool {
	return e.Action == ActionCopy || e.Action == ActionOverwrite
}

// Plan is the previewable set of operations for one run. It is read-only once
// built.
type Plan struct {
	Identity   Identity
	InputRoot  string
	OutputRoot string
	// DropRoot is OutputRoot/Project/Asset/Version.
	DropRoot string
	Entries  []Entry
	Findings []finding.Finding
	// TotalBytes is the size of every planned source file; WriteBytes counts
	// only entries that will be written.
	TotalBytes int64
	WriteBytes int64
}

// ManifestPath returns the absolute manifest location for this plan.
func (p *Plan) ManifestPath() string {
	return filepath.Join(p.DropRoot, filepath.FromSlash(ManifestRelPath))
}

// ReportPath returns the absolute report location for this plan.
func (p *Plan) ReportPath() string {
	return filepath.Join(p.DropRoot, filepath.FromSlash(ReportRelPath))
}

// Counts tallies entries per action.
func (p *Plan) Counts() map[Action]int {
	counts := map[Action]int{ActionCopy: 0, ActionOverwrite: 0, ActionSkip: 0}
	for _, e := range p.Entries {
		counts[e.Action]++
	}
	return counts
}

// CategoryCounts tallies entries per category.
func (p *Plan) CategoryCounts() map[profile.Category]int {
	counts := make(map[profile.Category]int)
	for _, e := range p.Entries {
		counts[e.Category]++
	}
	return counts
}

// Collisions returns how many entries are flagged as colliding.
func (p *Plan) Collisions() int {
	n := 0
	for _, e := range p.Entries {
		if e.Collision {
			n++
		}
	}
	return n
}
