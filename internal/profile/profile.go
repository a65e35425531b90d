// Package profile implements delivery profiles: the named, immutable rule sets
// that drive validation and category routing. Profiles come from the built-in
// set (Game, VFX, Mobile) or from JSON/YAML files and are validated completely
// when loaded; a Profile value never changes afterwards.
package profile

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Category is one of the fixed buckets under a versioned drop folder.
type Category string

const (
	CategorySource   Category = "source"
	CategoryExport   Category = "export"
	CategoryTextures Category = "textures"
	CategoryDocs     Category = "docs"
	CategoryLogs     Category = "logs"
)

// Categories lists every valid category in layout order.
var Categories = []Category{CategorySource, CategoryExport, CategoryTextures, CategoryDocs, CategoryLogs}

// ParseCategory validates a category name.
func ParseCategory(value string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(Categories, c) {
		return c, true
	}
	return "", false
}

// Profile is a validated delivery rule set. Accessors return copies.
type Profile struct {
	name              string
	requiredFolders   []string
	disallowedChars   string
	allowSpaces       bool
	versionPattern    string
	versionRE         *regexp.Regexp
	allowedExtensions map[string]struct{}
	detectDuplicates  bool
	categoryMap       map[string]Category
	ignorePatterns    []string
	source            string
}

func (p *Profile) Name() string { return p.name }

// Source is the file the profile was loaded from, or "builtin".
func (p *Profile) Source() string { return p.source }

func (p *Profile) RequiredFolders() []string { return slices.Clone(p.requiredFolders) }

func (p *Profile) DisallowedChars() string { return p.disallowedChars }

func (p *Profile) AllowSpaces() bool { return p.allowSpaces }

func (p *Profile) VersionPattern() string { return p.versionPattern }

func (p *Profile) DetectDuplicates() bool { return p.detectDuplicates }

func (p *Profile) IgnorePatterns() []string { return slices.Clone(p.ignorePatterns) }

// AllowedExtensions returns the allowed extensions sorted, each lowercased with
// a leading dot. An empty result means every extension is allowed.
func (p *Profile) AllowedExtensions() []string {
	return slices.Sorted(maps.Keys(p.allowedExtensions))
}

// ExtensionAllowed reports whether ext (lowercased, leading dot) passes the
// extension policy. Empty extensions and empty allow-lists always pass.
func (p *Profile) ExtensionAllowed(ext string) bool {
	if ext == "" || len(p.allowedExtensions) == 0 {
		return true
	}
	_, ok := p.allowedExtensions[strings.ToLower(ext)]
	return ok
}

// CategoryFor returns the category mapped to a top-level folder name. Folder
// names compare case-insensitively.
func (p *Profile) CategoryFor(folder string) (Category, bool) {
	c, ok := p.categoryMap[strings.ToLower(folder)]
	return c, ok
}

// CategoryMap returns a copy of the folder to category mapping.
func (p *Profile) CategoryMap() map[string]Category {
	return maps.Clone(p.categoryMap)
}
