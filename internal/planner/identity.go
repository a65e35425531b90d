package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"studiodrop/internal/profile"
	"studiodrop/internal/scanner"
	"studiodrop/internal/textutil"
)

// resolveIdentity derives project, asset and version. Overrides win. The
// version otherwise comes from the first folder named exactly like a token,
// then from the first tokenized file name; the asset from the text before the
// first file name token; the project from the input folder name.
func resolveIdentity(tree *scanner.Tree, p *profile.Profile, opts Options) (Identity, error) {
	var id Identity
	rootName := filepath.Base(tree.Root)

	if v := strings.TrimSpace(opts.Version); v != "" {
		tok, ok := p.MatchVersion(v)
		if !ok || !tok.Whole {
			return Identity{}, &UnresolvedError{Field: "version", Reason: fmt.Sprintf("%q does not match the version pattern %q", v, p.VersionPattern())}
		}
		id.Version = strings.ToLower(tok.Token)
	}

	var fileToken, filePrefix string
	for _, e := range tree.Entries {
		tok, ok := p.MatchVersion(e.Name())
		if !ok {
			continue
		}
		if e.Kind == scanner.KindDir && tok.Whole && id.Version == "" {
			id.Version = strings.ToLower(tok.Token)
		}
		if e.Kind == scanner.KindFile {
			if fileToken == "" {
				fileToken = strings.ToLower(tok.Token)
			}
			if filePrefix == "" && tok.Prefix != "" {
				filePrefix = tok.Prefix
			}
		}
	}
	if id.Version == "" {
		id.Version = fileToken
	}
	if id.Version == "" {
		return Identity{}, &UnresolvedError{Field: "version", Reason: "no version token found in the delivery; pass a version explicitly"}
	}

	id.Asset = firstNonEmpty(opts.Asset, filePrefix, rootName)
	id.Project = firstNonEmpty(opts.Project, rootName)

	id.Project = textutil.SanitizeSegment(id.Project)
	if id.Project == "" {
		return Identity{}, &UnresolvedError{Field: "project", Reason: "project name is empty after sanitizing"}
	}
	id.Asset = textutil.SanitizeSegment(id.Asset)
	if id.Asset == "" {
		return Identity{}, &UnresolvedError{Field: "asset", Reason: "asset name is empty after sanitizing"}
	}
	return id, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
