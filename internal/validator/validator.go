// Package validator evaluates a delivery profile against a scanned tree.
//
// Every rule runs independently over the whole tree and the combined findings
// are sorted by rule identifier, then path, so repeated validation of an
// unchanged folder yields the same sequence.
package validator

import (
	"strings"

	"studiodrop/internal/finding"
	"studiodrop/internal/profile"
	"studiodrop/internal/scanner"
)

// Rule identifiers written to findings.
const (
	RuleRequiredFolder   = "REQ_FOLDER_MISSING"
	RuleDisallowedChar   = "NAMING_DISALLOWED_CHAR"
	RuleVersionMissing   = "VERSION_TOKEN_MISSING"
	RuleVersionAmbiguous = "VERSION_AMBIGUOUS"
	RuleExtension        = "EXTENSION_NOT_ALLOWED"
	RuleDuplicateName    = "DUPLICATE_FILENAME"
	RuleScanUnreadable   = "SCAN_UNREADABLE"
	RuleProfileActive    = "PROFILE_ACTIVE"
)

type rule func(tree *scanner.Tree, p *profile.Profile) []finding.Finding

var rules = []rule{
	requiredFolders,
	namingPolicy,
	versionTokens,
	extensionPolicy,
	duplicateNames,
	scanIssues,
	activeProfile,
}

// Validate runs every rule and returns the sorted findings. An empty result
// is a valid outcome.
func Validate(tree *scanner.Tree, p *profile.Profile) []finding.Finding {
	var findings []finding.Finding
	for _, r := range rules {
		findings = append(findings, r(tree, p)...)
	}
	finding.Sort(findings)
	return findings
}

// Status aggregates findings into the overall validation status.
func Status(findings []finding.Finding) finding.Status {
	return finding.Aggregate(findings)
}

func requiredFolders(tree *scanner.Tree, p *profile.Profile) []finding.Finding {
	present := make(map[string]struct{})
	for _, dir := range tree.TopLevelDirs() {
		present[dir] = struct{}{}
	}
	var out []finding.Finding
	for _, required := range p.RequiredFolders() {
		if _, ok := present[required]; ok {
			continue
		}
		out = append(out, finding.New(finding.Error, RuleRequiredFolder, required,
			"required folder %q missing for profile %s", required+"/", p.Name()))
	}
	return out
}

func scanIssues(tree *scanner.Tree, _ *profile.Profile) []finding.Finding {
	out := make([]finding.Finding, 0, len(tree.Issues))
	for _, issue := range tree.Issues {
		out = append(out, finding.New(finding.Warning, RuleScanUnreadable, issue.RelPath,
			"could not read %q; its contents were skipped: %v", issue.RelPath, issue.Err))
	}
	return out
}

func activeProfile(_ *scanner.Tree, p *profile.Profile) []finding.Finding {
	return []finding.Finding{
		finding.New(finding.Info, RuleProfileActive, "", "validation profile active: %s", p.Name()),
	}
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ", ")
}
