package profile_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"studiodrop/internal/profile"
	"studiodrop/internal/services"
)

const validJSON = `{
  "name": "Custom",
  "required_folders": ["source", "export"],
  "version_pattern": "v\\d{3}",
  "allowed_extensions": [".PNG", "exr"],
  "category_map": {"source": "source", "Export": "export", "maps": "textures"}
}`

func TestParseValidProfile(t *testing.T) {
	p, err := profile.Parse([]byte(validJSON), profile.FormatJSON, "custom.json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Name() != "Custom" {
		t.Fatalf("unexpected name %q", p.Name())
	}
	if got := p.AllowedExtensions(); !slices.Equal(got, []string{".exr", ".png"}) {
		t.Fatalf("extensions not normalized: %v", got)
	}
	if !p.DetectDuplicates() {
		t.Fatal("duplicate detection should default on")
	}
	if c, ok := p.CategoryFor("EXPORT"); !ok || c != profile.CategoryExport {
		t.Fatalf("category lookup failed: %v %v", c, ok)
	}
	if !p.ExtensionAllowed(".png") || p.ExtensionAllowed(".tga") || !p.ExtensionAllowed("") {
		t.Fatal("unexpected extension policy")
	}
}

func TestProfileAccessorsReturnCopies(t *testing.T) {
	p, err := profile.Parse([]byte(validJSON), profile.FormatJSON, "custom.json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	folders := p.RequiredFolders()
	folders[0] = "mutated"
	categories := p.CategoryMap()
	categories["source"] = profile.CategoryDocs

	if p.RequiredFolders()[0] != "source" {
		t.Fatal("required folders leaked internal slice")
	}
	if c, _ := p.CategoryFor("source"); c != profile.CategorySource {
		t.Fatal("category map leaked internal map")
	}
}

func TestParseRejectsInvalidProfiles(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "malformed", body: `{"name": `, want: "malformed JSON"},
		{name: "missing key", body: `{"name":"x","required_folders":[],"version_pattern":"v\\d{3}","allowed_extensions":[]}`, want: "category_map"},
		{name: "unknown key", body: `{"name":"x","required_folders":[],"version_pattern":"v\\d{3}","allowed_extensions":[],"category_map":{},"colour":"red"}`, want: "colour"},
		{name: "bad regex", body: `{"name":"x","required_folders":[],"version_pattern":"v(\\d{3}","allowed_extensions":[],"category_map":{}}`, want: "version pattern"},
		{name: "empty match", body: `{"name":"x","required_folders":[],"version_pattern":"v?","allowed_extensions":[],"category_map":{}}`, want: "empty string"},
		{name: "bad category", body: `{"name":"x","required_folders":[],"version_pattern":"v\\d{3}","allowed_extensions":[],"category_map":{"geo":"meshes"}}`, want: "unknown category"},
		{name: "blank name", body: `{"name":"  ","required_folders":[],"version_pattern":"v\\d{3}","allowed_extensions":[],"category_map":{}}`, want: "name is empty"},
		{name: "nested folder", body: `{"name":"x","required_folders":["a/b"],"version_pattern":"v\\d{3}","allowed_extensions":[],"category_map":{}}`, want: "required_folders"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := profile.Parse([]byte(tt.body), profile.FormatJSON, "p.json")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, services.ErrProfileLoad) {
				t.Fatalf("expected ErrProfileLoad, got %v", err)
			}
			var loadErr *profile.LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected *LoadError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestParseYAML(t *testing.T) {
	body := `
name: Yaml
required_folders: [source]
version_pattern: 'v\d{3}'
allowed_extensions: []
category_map:
  source: source
allow_spaces: true
detect_duplicates: false
ignore_patterns: ["**/*.bak"]
`
	p, err := profile.Parse([]byte(body), profile.FormatYAML, "p.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.AllowSpaces() || p.DetectDuplicates() {
		t.Fatalf("optional fields not applied: spaces=%v dup=%v", p.AllowSpaces(), p.DetectDuplicates())
	}
	if got := p.IgnorePatterns(); len(got) != 1 || got[0] != "**/*.bak" {
		t.Fatalf("unexpected ignore patterns %v", got)
	}

	_, err = profile.Parse([]byte(body+"extra: 1\n"), profile.FormatYAML, "p.yaml")
	if !errors.Is(err, services.ErrProfileLoad) {
		t.Fatalf("expected unknown YAML key to fail, got %v", err)
	}
}

func TestMatchVersion(t *testing.T) {
	p, ok := profile.Builtin("vfx")
	if !ok {
		t.Fatal("VFX builtin missing")
	}
	tests := []struct {
		segment string
		token   string
		prefix  string
		whole   bool
		ok      bool
	}{
		{segment: "v001", token: "v001", whole: true, ok: true},
		{segment: "Asset_v001_final.png", token: "v001", prefix: "Asset", ok: true},
		{segment: "Hero.V0002.fbx", token: "V0002", prefix: "Hero", ok: true},
		{segment: "rock-v010", token: "v010", prefix: "rock", ok: true},
		{segment: "Asset_nover.png", ok: false},
		{segment: "dev001.png", ok: false},
		{segment: "v01.png", ok: false},
	}
	for _, tt := range tests {
		got, ok := p.MatchVersion(tt.segment)
		if ok != tt.ok {
			t.Fatalf("%s: ok=%v want %v", tt.segment, ok, tt.ok)
		}
		if !ok {
			continue
		}
		if got.Token != tt.token || got.Prefix != tt.prefix || got.Whole != tt.whole {
			t.Fatalf("%s: got %+v", tt.segment, got)
		}
	}
}

func TestBuiltins(t *testing.T) {
	for _, name := range profile.BuiltinNames() {
		p, ok := profile.Builtin(strings.ToUpper(name))
		if !ok {
			t.Fatalf("builtin %s missing", name)
		}
		if p.Source() != "builtin" || p.Name() != name {
			t.Fatalf("unexpected builtin %s: %s", name, p.Source())
		}
		if len(p.RequiredFolders()) == 0 {
			t.Fatalf("builtin %s has no required folders", name)
		}
	}
	if _, ok := profile.Builtin("Film"); ok {
		t.Fatal("unexpected builtin Film")
	}
}

func TestResolvePrefersUserProfile(t *testing.T) {
	dir := t.TempDir()
	body := strings.Replace(validJSON, `"Custom"`, `"VFX"`, 1)
	if err := os.WriteFile(filepath.Join(dir, "VFX.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := profile.Resolve("VFX", dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Source() != filepath.Join(dir, "VFX.json") {
		t.Fatalf("expected user profile, got %s", p.Source())
	}

	p, err = profile.Resolve("Game", dir)
	if err != nil || p.Source() != "builtin" {
		t.Fatalf("expected builtin Game, got %v %v", p, err)
	}

	_, err = profile.Resolve("Unknown", dir)
	if !errors.Is(err, services.ErrProfileLoad) {
		t.Fatalf("expected ErrProfileLoad, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	src, _ := profile.Builtin("Mobile")
	for _, name := range []string{"mobile.json", "mobile.yaml"} {
		path := filepath.Join(t.TempDir(), "nested", name)
		if err := profile.Save(src, path); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
		loaded, err := profile.LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile %s: %v", name, err)
		}
		if loaded.Name() != src.Name() ||
			!slices.Equal(loaded.RequiredFolders(), src.RequiredFolders()) ||
			!slices.Equal(loaded.AllowedExtensions(), src.AllowedExtensions()) ||
			loaded.VersionPattern() != src.VersionPattern() ||
			loaded.DisallowedChars() != src.DisallowedChars() {
			t.Fatalf("%s: round trip mismatch", name)
		}
	}
}

func TestListIncludesBrokenUserProfiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	list, err := profile.List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != len(profile.BuiltinNames())+1 {
		t.Fatalf("unexpected listing %+v", list)
	}
	last := list[len(list)-1]
	if last.Name != "broken" || last.Error == "" {
		t.Fatalf("expected broken profile with error, got %+v", last)
	}

	list, err = profile.List(filepath.Join(dir, "missing"))
	if err != nil || len(list) != len(profile.BuiltinNames()) {
		t.Fatalf("missing dir should list builtins only: %v %v", list, err)
	}
}
