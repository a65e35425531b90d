package profile

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	defaultVersionPattern  = `v\d{3,4}`
	defaultDisallowedChars = `<>:"|?*\`
)

var builtinDocuments = []struct {
	name       string
	required   []string
	extensions []string
	categories map[string]string
}{
	{
		name:     "Game",
		required: []string{"geo", "tex", "export", "source"},
		extensions: []string{
			"fbx", "obj", "gltf", "glb", "usd", "usda", "usdc",
			"png", "jpg", "jpeg", "tga", "tif", "tiff", "exr",
			"json", "txt", "md", "pdf", "log",
			"zip", "7z",
		},
		categories: map[string]string{
			"geo": "export", "tex": "textures", "export": "export",
			"source": "source", "docs": "docs", "logs": "logs",
		},
	},
	{
		name:     "VFX",
		required: []string{"geo", "tex", "rig", "cache", "export", "source", "docs"},
		extensions: []string{
			"ma", "mb", "max", "blend",
			"abc", "fbx", "usd", "usda", "usdc", "obj",
			"png", "jpg", "jpeg", "tga", "tif", "tiff", "exr", "hdr",
			"json", "xml", "txt", "md", "pdf", "csv", "log",
			"mtl",
			"zip", "7z", "rar",
		},
		categories: map[string]string{
			"geo": "export", "tex": "textures", "rig": "source", "cache": "export",
			"export": "export", "source": "source", "docs": "docs", "logs": "logs",
		},
	},
	{
		name:     "Mobile",
		required: []string{"geo", "tex", "export", "docs"},
		extensions: []string{
			"fbx", "gltf", "glb",
			"png", "jpg", "jpeg",
			"json", "txt", "md", "pdf", "log",
			"zip",
		},
		categories: map[string]string{
			"geo": "export", "tex": "textures", "export": "export",
			"source": "source", "docs": "docs", "logs": "logs",
		},
	},
}

// BuiltinNames lists the built-in profiles in display order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinDocuments))
	for _, b := range builtinDocuments {
		names = append(names, b.name)
	}
	return names
}

// Builtin returns the built-in profile with the given name, compared
// case-insensitively.
func Builtin(name string) (*Profile, bool) {
	for _, b := range builtinDocuments {
		if !strings.EqualFold(b.name, strings.TrimSpace(name)) {
			continue
		}
		docName := b.name
		required := slices.Clone(b.required)
		pattern := defaultVersionPattern
		extensions := slices.Clone(b.extensions)
		categories := make(map[string]string, len(b.categories))
		for k, v := range b.categories {
			categories[k] = v
		}
		p, err := New(Document{
			Name:              &docName,
			RequiredFolders:   &required,
			VersionPattern:    &pattern,
			AllowedExtensions: &extensions,
			CategoryMap:       &categories,
			DisallowedChars:   defaultDisallowedChars,
		}, "builtin")
		if err != nil {
			panic("builtin profile " + b.name + ": " + err.Error())
		}
		return p, true
	}
	return nil, false
}

func validGlob(pattern string) bool {
	return doublestar.ValidatePattern(pattern)
}
