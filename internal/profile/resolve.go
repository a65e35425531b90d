package profile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var fileExtensions = []string{".json", ".yaml", ".yml"}

// Resolve loads a profile by reference. A reference with a profile file
// extension or a path separator is read as a file. Otherwise user profiles in
// profilesDir (<name>.json, <name>.yaml, <name>.yml) take precedence over the
// built-in profile of the same name.
func Resolve(ref, profilesDir string) (*Profile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, loadErrorf("", nil, "no profile selected")
	}
	if _, ok := FormatForPath(ref); ok || strings.ContainsAny(ref, `/\`) {
		return LoadFile(ref)
	}
	if profilesDir != "" {
		for _, ext := range fileExtensions {
			candidate := filepath.Join(profilesDir, ref+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return LoadFile(candidate)
			}
		}
	}
	if p, ok := Builtin(ref); ok {
		return p, nil
	}
	return nil, loadErrorf(ref, nil, "unknown profile (built-in: %s)", strings.Join(BuiltinNames(), ", "))
}

// Summary describes one available profile for listings.
type Summary struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	// Error is set when a user profile file failed to load.
	Error string `json:"error,omitempty"`
}

// List returns the built-in profiles followed by the user profiles found in
// profilesDir, sorted by file name. A missing directory is not an error.
func List(profilesDir string) ([]Summary, error) {
	summaries := make([]Summary, 0, len(builtinDocuments))
	for _, name := range BuiltinNames() {
		summaries = append(summaries, Summary{Name: name, Source: "builtin"})
	}
	if strings.TrimSpace(profilesDir) == "" {
		return summaries, nil
	}

	entries, err := os.ReadDir(profilesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return summaries, nil
		}
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := FormatForPath(entry.Name()); !ok {
			continue
		}
		path := filepath.Join(profilesDir, entry.Name())
		p, err := LoadFile(path)
		if err != nil {
			summaries = append(summaries, Summary{
				Name:   strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
				Source: path,
				Error:  err.Error(),
			})
			continue
		}
		summaries = append(summaries, Summary{Name: p.Name(), Source: path})
	}
	return summaries, nil
}
