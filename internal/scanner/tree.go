package scanner

import (
	"path"
	"strings"
	"time"
)

// Kind classifies an AssetEntry.
type Kind string

const (
	KindFile Kind = "file"
	KindDir  Kind = "dir"
	KindLink Kind = "link"
)

// AssetEntry is one file, directory, or link found under the input root.
type AssetEntry struct {
	// RelPath is slash separated and relative to the input root.
	RelPath string
	AbsPath string
	Kind    Kind
	// Size is zero for directories and links.
	Size int64
	// Ext is lowercased with a leading dot, or empty.
	Ext     string
	ModTime time.Time
}

// Name returns the entry's own path segment.
func (e AssetEntry) Name() string {
	return path.Base(e.RelPath)
}

// Dir returns the slash separated parent directory, "" for root-level entries.
func (e AssetEntry) Dir() string {
	dir := path.Dir(e.RelPath)
	if dir == "." {
		return ""
	}
	return dir
}

// Segments splits RelPath into its path segments.
func (e AssetEntry) Segments() []string {
	return strings.Split(e.RelPath, "/")
}

// Depth is the number of segments; root-level entries have depth 1.
func (e AssetEntry) Depth() int {
	return strings.Count(e.RelPath, "/") + 1
}

// Issue records a subtree that could not be read. The wrapped error matches
// fs.ErrPermission for permission failures.
type Issue struct {
	RelPath string
	Err     error
}

// Tree is the result of one scan.
type Tree struct {
	Root    string
	Entries []AssetEntry
	Issues  []Issue

	Files   int
	Dirs    int
	Links   int
	Ignored int
	// Bytes totals regular file sizes; links are excluded.
	Bytes int64
	// Extensions counts files per extension; "" counts files without one.
	Extensions map[string]int
}

// FileEntries returns the regular files in scan order.
func (t *Tree) FileEntries() []AssetEntry {
	files := make([]AssetEntry, 0, t.Files)
	for _, e := range t.Entries {
		if e.Kind == KindFile {
			files = append(files, e)
		}
	}
	return files
}

// TopLevelDirs returns the names of directories directly under the root.
func (t *Tree) TopLevelDirs() []string {
	var dirs []string
	for _, e := range t.Entries {
		if e.Kind == KindDir && e.Depth() == 1 {
			dirs = append(dirs, e.RelPath)
		}
	}
	return dirs
}

func (t *Tree) add(e AssetEntry) {
	t.Entries = append(t.Entries, e)
	switch e.Kind {
	case KindFile:
		t.Files++
		t.Bytes += e.Size
		t.Extensions[e.Ext]++
	case KindDir:
		t.Dirs++
	case KindLink:
		t.Links++
	}
}
