package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"studiodrop/internal/fileutil"
)

// Format selects the profile file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the encoding from a file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Document is the on-disk shape of a profile. Pointer fields are required;
// nil means the key was absent.
type Document struct {
	Name              *string            `json:"name" yaml:"name"`
	RequiredFolders   *[]string          `json:"required_folders" yaml:"required_folders"`
	VersionPattern    *string            `json:"version_pattern" yaml:"version_pattern"`
	AllowedExtensions *[]string          `json:"allowed_extensions" yaml:"allowed_extensions"`
	CategoryMap       *map[string]string `json:"category_map" yaml:"category_map"`
	DisallowedChars   string             `json:"disallowed_chars,omitempty" yaml:"disallowed_chars,omitempty"`
	AllowSpaces       bool               `json:"allow_spaces,omitempty" yaml:"allow_spaces,omitempty"`
	DetectDuplicates  *bool              `json:"detect_duplicates,omitempty" yaml:"detect_duplicates,omitempty"`
	IgnorePatterns    []string           `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty"`
}

// New validates doc and builds a Profile. source labels errors and is
// reported by Profile.Source.
func New(doc Document, source string) (*Profile, error) {
	if doc.Name == nil {
		return nil, loadErrorf(source, nil, "missing required key %q", "name")
	}
	name := strings.TrimSpace(*doc.Name)
	if name == "" {
		return nil, loadErrorf(source, nil, "name is empty")
	}
	if doc.RequiredFolders == nil {
		return nil, loadErrorf(source, nil, "missing required key %q", "required_folders")
	}
	if doc.VersionPattern == nil {
		return nil, loadErrorf(source, nil, "missing required key %q", "version_pattern")
	}
	if doc.AllowedExtensions == nil {
		return nil, loadErrorf(source, nil, "missing required key %q", "allowed_extensions")
	}
	if doc.CategoryMap == nil {
		return nil, loadErrorf(source, nil, "missing required key %q", "category_map")
	}

	p := &Profile{
		name:              name,
		disallowedChars:   doc.DisallowedChars,
		allowSpaces:       doc.AllowSpaces,
		versionPattern:    *doc.VersionPattern,
		allowedExtensions: make(map[string]struct{}, len(*doc.AllowedExtensions)),
		detectDuplicates:  true,
		categoryMap:       make(map[string]Category, len(*doc.CategoryMap)),
		source:            source,
	}
	if doc.DetectDuplicates != nil {
		p.detectDuplicates = *doc.DetectDuplicates
	}

	seen := make(map[string]struct{}, len(*doc.RequiredFolders))
	for _, folder := range *doc.RequiredFolders {
		folder = strings.TrimSpace(folder)
		if folder == "" || strings.ContainsAny(folder, `/\`) {
			return nil, loadErrorf(source, nil, "required_folders: invalid folder name %q", folder)
		}
		if _, dup := seen[folder]; dup {
			continue
		}
		seen[folder] = struct{}{}
		p.requiredFolders = append(p.requiredFolders, folder)
	}

	re, err := compileVersionPattern(p.versionPattern)
	if err != nil {
		return nil, loadErrorf(source, err, "invalid version pattern")
	}
	p.versionRE = re

	for _, ext := range *doc.AllowedExtensions {
		normalized, ok := normalizeExtension(ext)
		if !ok {
			return nil, loadErrorf(source, nil, "allowed_extensions: invalid extension %q", ext)
		}
		p.allowedExtensions[normalized] = struct{}{}
	}

	for folder, value := range *doc.CategoryMap {
		key := strings.ToLower(strings.TrimSpace(folder))
		if key == "" || strings.ContainsAny(key, `/\`) {
			return nil, loadErrorf(source, nil, "category_map: invalid folder name %q", folder)
		}
		category, ok := ParseCategory(value)
		if !ok {
			return nil, loadErrorf(source, nil, "category_map: folder %q maps to unknown category %q", folder, value)
		}
		if existing, dup := p.categoryMap[key]; dup && existing != category {
			return nil, loadErrorf(source, nil, "category_map: folder %q mapped twice", folder)
		}
		p.categoryMap[key] = category
	}

	for _, pattern := range doc.IgnorePatterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !validGlob(pattern) {
			return nil, loadErrorf(source, nil, "ignore_patterns: invalid glob %q", pattern)
		}
		p.ignorePatterns = append(p.ignorePatterns, pattern)
	}

	return p, nil
}

func normalizeExtension(ext string) (string, bool) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" || strings.ContainsAny(ext, "./\\ \t") {
		return "", false
	}
	return "." + ext, true
}

// Parse decodes and validates a profile document. Unknown keys are rejected.
func Parse(data []byte, format Format, source string) (*Profile, error) {
	var doc Document
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&doc); err != nil {
			return nil, loadErrorf(source, err, "malformed JSON")
		}
		if decoder.More() {
			return nil, loadErrorf(source, nil, "malformed JSON: trailing data")
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, loadErrorf(source, nil, "empty document")
			}
			return nil, loadErrorf(source, err, "malformed YAML")
		}
	default:
		return nil, loadErrorf(source, nil, "unsupported profile format %q", format)
	}
	return New(doc, source)
}

// LoadFile reads a .json, .yaml or .yml profile.
func LoadFile(path string) (*Profile, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return nil, loadErrorf(path, nil, "unsupported file extension %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErrorf(path, err, "read profile")
	}
	return Parse(data, format, path)
}

// Document returns the profile in its serializable form.
func (p *Profile) Document() Document {
	name := p.name
	required := slices.Clone(p.requiredFolders)
	if required == nil {
		required = []string{}
	}
	pattern := p.versionPattern
	extensions := p.AllowedExtensions()
	if extensions == nil {
		extensions = []string{}
	}
	categories := make(map[string]string, len(p.categoryMap))
	for folder, category := range p.categoryMap {
		categories[folder] = string(category)
	}
	detect := p.detectDuplicates
	return Document{
		Name:              &name,
		RequiredFolders:   &required,
		VersionPattern:    &pattern,
		AllowedExtensions: &extensions,
		CategoryMap:       &categories,
		DisallowedChars:   p.disallowedChars,
		AllowSpaces:       p.allowSpaces,
		DetectDuplicates:  &detect,
		IgnorePatterns:    p.IgnorePatterns(),
	}
}

// Encode serializes the profile in the given format.
func (p *Profile) Encode(format Format) ([]byte, error) {
	doc := p.Document()
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported profile format %q", format)
	}
}

// Save writes the profile to path, choosing the encoding from the extension.
func Save(p *Profile, path string) error {
	format, ok := FormatForPath(path)
	if !ok {
		return fmt.Errorf("save profile: unsupported file extension %q", filepath.Ext(path))
	}
	data, err := p.Encode(format)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}
