package validator

import (
	"strings"

	"studiodrop/internal/finding"
	"studiodrop/internal/profile"
	"studiodrop/internal/scanner"
	"studiodrop/internal/textutil"
)

// namingPolicy reports each entry whose own name breaks the character policy.
// Checking only the final segment reports a bad folder once, at the folder,
// instead of once per descendant.
func namingPolicy(tree *scanner.Tree, p *profile.Profile) []finding.Finding {
	var out []finding.Finding
	for _, e := range tree.Entries {
		bad := textutil.OffendingChars(e.Name(), p.DisallowedChars(), p.AllowSpaces())
		if len(bad) == 0 {
			continue
		}
		labels := make([]string, len(bad))
		for i, r := range bad {
			if r == ' ' {
				labels[i] = "space"
				continue
			}
			labels[i] = string(r)
		}
		kind := "file"
		if e.Kind == scanner.KindDir {
			kind = "folder"
		}
		out = append(out, finding.New(finding.Error, RuleDisallowedChar, e.RelPath,
			"%s name %q contains disallowed characters: %s", kind, e.Name(), quoteList(labels)))
	}
	return out
}

// extensionPolicy reports each file whose extension is outside a non-empty
// allow-list.
func extensionPolicy(tree *scanner.Tree, p *profile.Profile) []finding.Finding {
	if len(p.AllowedExtensions()) == 0 {
		return nil
	}
	var out []finding.Finding
	for _, e := range tree.Entries {
		if e.Kind != scanner.KindFile || p.ExtensionAllowed(e.Ext) {
			continue
		}
		out = append(out, finding.New(finding.Error, RuleExtension, e.RelPath,
			"extension %q is not in the %s allow-list", e.Ext, p.Name()))
	}
	return out
}

// duplicateNames groups files by case-insensitive name and reports each name
// found in more than one directory.
func duplicateNames(tree *scanner.Tree, p *profile.Profile) []finding.Finding {
	if !p.DetectDuplicates() {
		return nil
	}
	type group struct {
		name  string
		paths []string
		dirs  map[string]struct{}
	}
	var order []string
	groups := make(map[string]*group)
	for _, e := range tree.Entries {
		if e.Kind != scanner.KindFile {
			continue
		}
		key := textutil.FoldKey(e.Name())
		g, ok := groups[key]
		if !ok {
			g = &group{name: e.Name(), dirs: make(map[string]struct{})}
			groups[key] = g
			order = append(order, key)
		}
		g.paths = append(g.paths, e.RelPath)
		g.dirs[textutil.FoldKey(e.Dir())] = struct{}{}
	}

	var out []finding.Finding
	for _, key := range order {
		g := groups[key]
		if len(g.dirs) < 2 {
			continue
		}
		out = append(out, finding.New(finding.Warning, RuleDuplicateName, g.paths[0],
			"filename %q appears %d times: %s", g.name, len(g.paths), strings.Join(g.paths, ", ")))
	}
	return out
}
