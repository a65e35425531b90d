package planner

import (
	"path"

	"studiodrop/internal/profile"
	"studiodrop/internal/scanner"
)

var extensionCategories = map[string]profile.Category{}

func init() {
	groups := map[profile.Category][]string{
		profile.CategoryTextures: {".png", ".jpg", ".jpeg", ".tga", ".tif", ".tiff", ".exr", ".hdr", ".bmp"},
		profile.CategoryDocs:     {".md", ".txt", ".pdf", ".csv", ".json", ".xml", ".yml", ".yaml"},
		profile.CategoryExport:   {".fbx", ".abc", ".usd", ".usda", ".usdc", ".obj", ".gltf", ".glb"},
		profile.CategoryLogs:     {".log"},
	}
	for category, exts := range groups {
		for _, ext := range exts {
			extensionCategories[ext] = category
		}
	}
}

// categorize returns the category of a file and its path inside that category.
// A leading version folder is skipped first. A mapped top-level folder is
// stripped from the path; otherwise the extension picks the category and the
// relative path is kept whole. Unknown extensions land in source.
func categorize(e scanner.AssetEntry, p *profile.Profile) (profile.Category, string) {
	segments := e.Segments()
	if len(segments) > 1 {
		if tok, ok := p.MatchVersion(segments[0]); ok && tok.Whole {
			segments = segments[1:]
		}
	}
	if len(segments) > 1 {
		if category, ok := p.CategoryFor(segments[0]); ok {
			return category, path.Join(segments[1:]...)
		}
	}
	if category, ok := extensionCategories[e.Ext]; ok {
		return category, path.Join(segments...)
	}
	return profile.CategorySource, path.Join(segments...)
}
