package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"studiodrop/internal/logging"
	"studiodrop/internal/services"
)

// Options tunes a scan.
type Options struct {
	// IgnoreHidden skips dot-prefixed files and directories.
	IgnoreHidden bool
	// IgnorePatterns are doublestar globs matched against the slash separated
	// relative path. A matching directory is skipped with its contents.
	IgnorePatterns []string
	Logger         *slog.Logger
}

// DefaultOptions hides dot files and ignores nothing else.
func DefaultOptions() Options {
	return Options{IgnoreHidden: true}
}

// Scan walks root and returns its tree.
func Scan(ctx context.Context, root string, opts Options) (*Tree, error) {
	logger := logging.NewComponentLogger(opts.Logger, "scanner")

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &PathNotFoundError{Path: root, Err: err}
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, &PathNotFoundError{Path: absRoot, Err: err}
	}
	if !info.IsDir() {
		return nil, &PathNotFoundError{Path: absRoot}
	}
	// WalkDir does not descend into a symlinked root; links below it stay unfollowed.
	walkRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, &PathNotFoundError{Path: absRoot, Err: err}
	}

	tree := &Tree{Root: absRoot, Extensions: make(map[string]int)}
	walkErr := filepath.WalkDir(walkRoot, func(current string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return services.Wrap(services.ErrCancelled, "scan", "walk", "scan interrupted", ctxErr)
		}
		if current == walkRoot {
			if err != nil {
				return &PathNotFoundError{Path: absRoot, Err: services.Wrap(services.ErrPermission, "scan", "read root", absRoot, err)}
			}
			return nil
		}

		rel, relErr := filepath.Rel(walkRoot, current)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if err != nil {
			tree.Issues = append(tree.Issues, Issue{
				RelPath: rel,
				Err:     services.Wrap(services.ErrPermission, "scan", "read", rel, err),
			})
			logging.WarnWithContext(ctx, logger, "subtree unreadable; skipped", "scan_unreadable",
				logging.String("path", rel),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the delivery folder"),
				logging.String(logging.FieldImpact, "files below this folder are not validated or packaged"),
			)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if skip := ignored(d.Name(), rel, opts); skip {
			tree.Ignored++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		entry, entryErr := newEntry(current, rel, d)
		if entryErr != nil {
			tree.Issues = append(tree.Issues, Issue{
				RelPath: rel,
				Err:     services.Wrap(services.ErrPermission, "scan", "stat", rel, entryErr),
			})
			return nil
		}
		tree.add(entry)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	logger.DebugContext(ctx, "scan complete",
		logging.String("root", absRoot),
		logging.Int("files", tree.Files),
		logging.Int("dirs", tree.Dirs),
		logging.Int("links", tree.Links),
		logging.Int("ignored", tree.Ignored),
		logging.Int("issues", len(tree.Issues)),
		logging.Int64("bytes", tree.Bytes),
	)
	return tree, nil
}

func ignored(name, rel string, opts Options) bool {
	if opts.IgnoreHidden && strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range opts.IgnorePatterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func newEntry(abs, rel string, d fs.DirEntry) (AssetEntry, error) {
	info, err := d.Info()
	if err != nil {
		return AssetEntry{}, err
	}
	entry := AssetEntry{
		RelPath: rel,
		AbsPath: abs,
		ModTime: info.ModTime(),
	}
	switch {
	case d.Type()&fs.ModeSymlink != 0:
		entry.Kind = KindLink
	case d.IsDir():
		entry.Kind = KindDir
	default:
		entry.Kind = KindFile
		entry.Size = info.Size()
		entry.Ext = extension(d.Name())
	}
	return entry, nil
}

func extension(name string) string {
	ext := filepath.Ext(name)
	if ext == name || ext == "." {
		return ""
	}
	return strings.ToLower(ext)
}
