package validator

import (
	"fmt"
	"slices"
	"strings"

	"studiodrop/internal/finding"
	"studiodrop/internal/profile"
	"studiodrop/internal/scanner"
	"studiodrop/internal/textutil"
)

// versionTokens requires at least one version token somewhere in the tree and
// warns when one asset carries more than one distinct version. The asset a
// token belongs to is the segment text before it, so "v001" folders share the
// empty asset key and "Hero_v001.fbx" belongs to "hero". A folder named
// exactly after a version sets the version for the whole delivery, so a
// tokenized name that disagrees with it also warns.
func versionTokens(tree *scanner.Tree, p *profile.Profile) []finding.Finding {
	type asset struct {
		label  string
		tokens []string
		path   string
		paths  map[string]string
	}
	var order []string
	var folderVersions []string
	assets := make(map[string]*asset)
	for _, e := range tree.Entries {
		tok, ok := p.MatchVersion(e.Name())
		if !ok {
			continue
		}
		if tok.Whole && e.Kind == scanner.KindDir && !slices.Contains(folderVersions, tok.Key()) {
			folderVersions = append(folderVersions, tok.Key())
		}
		key := textutil.FoldKey(tok.Prefix)
		a, seen := assets[key]
		if !seen {
			a = &asset{label: tok.Prefix, path: e.RelPath, paths: make(map[string]string)}
			assets[key] = a
			order = append(order, key)
		}
		if !slices.Contains(a.tokens, tok.Key()) {
			a.tokens = append(a.tokens, tok.Key())
			a.paths[tok.Key()] = e.RelPath
		}
	}

	if len(assets) == 0 {
		return []finding.Finding{
			finding.New(finding.Error, RuleVersionMissing, "",
				"no file or folder name carries a version token matching %q", p.VersionPattern()),
		}
	}

	var out []finding.Finding
	for _, key := range order {
		a := assets[key]
		subject := "the delivery"
		if a.label != "" {
			subject = fmt.Sprintf("asset %q", a.label)
		}
		if len(a.tokens) >= 2 {
			out = append(out, finding.New(finding.Warning, RuleVersionAmbiguous, a.path,
				"%s carries %d distinct versions: %s", subject, len(a.tokens), strings.Join(a.tokens, ", ")))
			continue
		}
		if key == "" || len(folderVersions) == 0 {
			continue
		}
		if tok := a.tokens[0]; !slices.Contains(folderVersions, tok) {
			out = append(out, finding.New(finding.Warning, RuleVersionAmbiguous, a.paths[tok],
				"%s is versioned %s but the version folder says %s", subject, tok, strings.Join(folderVersions, ", ")))
		}
	}
	return out
}
