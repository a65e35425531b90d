package planner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"studiodrop/internal/fileutil"
	"studiodrop/internal/planner"
	"studiodrop/internal/profile"
	"studiodrop/internal/scanner"
	"studiodrop/internal/services"
	"studiodrop/internal/testsupport"
)

const testProfile = `{
	"name": "Test",
	"required_folders": [],
	"version_pattern": "v\\d{3}",
	"allowed_extensions": [],
	"category_map": {"source": "source", "export": "export", "maps": "textures", "tex": "textures", "docs": "docs"}
}`

type fixture struct {
	root   string
	output string
	prof   *profile.Profile
}

func newFixture(t *testing.T, files map[string]string) fixture {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "HeroDrop")
	testsupport.WriteTree(t, root, files)
	p, err := profile.Parse([]byte(testProfile), profile.FormatJSON, "test.json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return fixture{root: root, output: filepath.Join(base, "out"), prof: p}
}

func (f fixture) build(t *testing.T, opts planner.Options) (*planner.Plan, error) {
	t.Helper()
	tree, err := scanner.Scan(context.Background(), f.root, scanner.DefaultOptions())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return planner.Build(context.Background(), tree, f.prof, f.output, opts)
}

func (f fixture) mustBuild(t *testing.T, opts planner.Options) *planner.Plan {
	t.Helper()
	plan, err := f.build(t, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return plan
}

func entryFor(t *testing.T, plan *planner.Plan, rel string) planner.Entry {
	t.Helper()
	for _, e := range plan.Entries {
		if e.RelPath == rel {
			return e
		}
	}
	t.Fatalf("no plan entry for %s", rel)
	return planner.Entry{}
}

func TestBuildRoutesCategories(t *testing.T) {
	f := newFixture(t, map[string]string{
		"v001/source/Hero_v001.ma": "ma",
		"export/fbx/Hero_v001.fbx": "fbx",
		"notes.txt":                "n",
		"misc/wood.png":            "png",
		"run.log":                  "log",
		"blob.bin":                 "bin",
		"docs/brief.pdf":           "pdf",
	})
	plan := f.mustBuild(t, planner.Options{})

	want := planner.Identity{Project: "HeroDrop", Asset: "Hero", Version: "v001"}
	if plan.Identity != want {
		t.Fatalf("unexpected identity %+v", plan.Identity)
	}
	drop := filepath.Join(f.output, "HeroDrop", "Hero", "v001")
	if plan.DropRoot != drop {
		t.Fatalf("unexpected drop root %s", plan.DropRoot)
	}

	cases := map[string]string{
		"v001/source/Hero_v001.ma": "source/Hero_v001.ma",
		"export/fbx/Hero_v001.fbx": "export/fbx/Hero_v001.fbx",
		"notes.txt":                "docs/notes.txt",
		"misc/wood.png":            "textures/misc/wood.png",
		"run.log":                  "logs/run.log",
		"blob.bin":                 "source/blob.bin",
		"docs/brief.pdf":           "docs/brief.pdf",
	}
	for rel, dest := range cases {
		e := entryFor(t, plan, rel)
		if e.Destination != filepath.Join(drop, filepath.FromSlash(dest)) {
			t.Fatalf("%s: got %s want %s", rel, e.Destination, dest)
		}
		if e.Action != planner.ActionCopy || e.Collision {
			t.Fatalf("%s: expected clean COPY, got %+v", rel, e)
		}
	}
	if len(plan.Entries) != len(cases) {
		t.Fatalf("expected %d entries, got %d", len(cases), len(plan.Entries))
	}
	if plan.TotalBytes != plan.WriteBytes || plan.TotalBytes != int64(2+3+1+3+3+3+3) {
		t.Fatalf("unexpected byte totals total=%d write=%d", plan.TotalBytes, plan.WriteBytes)
	}
	if _, err := os.Stat(f.output); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("building a plan must not create the output root: %v", err)
	}
}

func TestBuildIdentityOverridesAreSanitized(t *testing.T) {
	f := newFixture(t, map[string]string{"Prop_v003.fbx": "x"})
	plan := f.mustBuild(t, planner.Options{Project: "Big Show", Asset: " hero:prop ", Version: "V002"})

	want := planner.Identity{Project: "Big_Show", Asset: "hero-prop", Version: "v002"}
	if plan.Identity != want {
		t.Fatalf("got %+v want %+v", plan.Identity, want)
	}
}

func TestBuildUnresolved(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		opts  planner.Options
		field string
	}{
		{name: "no version", files: map[string]string{"Hero.fbx": "x"}, field: "version"},
		{name: "bad override", files: map[string]string{"Hero_v001.fbx": "x"}, opts: planner.Options{Version: "final"}, field: "version"},
		{name: "empty asset", files: map[string]string{"Hero_v001.fbx": "x"}, opts: planner.Options{Asset: "..."}, field: "asset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.files)
			_, err := f.build(t, tt.opts)
			if !errors.Is(err, services.ErrPlanUnresolved) {
				t.Fatalf("expected ErrPlanUnresolved, got %v", err)
			}
			var unresolved *planner.UnresolvedError
			if !errors.As(err, &unresolved) || unresolved.Field != tt.field {
				t.Fatalf("expected unresolved %s, got %v", tt.field, err)
			}
		})
	}
}

func TestBuildRejectsOutputInsideInput(t *testing.T) {
	f := newFixture(t, map[string]string{"Hero_v001.fbx": "x"})
	f.output = filepath.Join(f.root, "out")
	if _, err := f.build(t, planner.Options{}); !errors.Is(err, services.ErrPlanUnresolved) {
		t.Fatalf("expected ErrPlanUnresolved, got %v", err)
	}
}

func TestBuildDetectsExistingDestinations(t *testing.T) {
	f := newFixture(t, map[string]string{
		"export/same_v001.fbx":    "identical",
		"export/changed_v001.fbx": "new content",
		"export/resized_v001.fbx": "short",
	})
	drop := filepath.Join(f.output, "HeroDrop", "same", "v001", "export")
	testsupport.WriteTree(t, drop, map[string]string{
		"same_v001.fbx":    "identical",
		"changed_v001.fbx": "old content",
		"resized_v001.fbx": "much longer content",
	})

	plan := f.mustBuild(t, planner.Options{Asset: "same"})

	same := entryFor(t, plan, "export/same_v001.fbx")
	wantHash, err := fileutil.HashFile(filepath.Join(drop, "same_v001.fbx"))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if same.Action != planner.ActionSkip || same.Collision || same.KnownHash != wantHash {
		t.Fatalf("identical file should SKIP without collision: %+v", same)
	}
	for _, rel := range []string{"export/changed_v001.fbx", "export/resized_v001.fbx"} {
		e := entryFor(t, plan, rel)
		if e.Action != planner.ActionOverwrite || !e.Collision || e.KnownHash != "" {
			t.Fatalf("%s: differing file should OVERWRITE with collision: %+v", rel, e)
		}
	}
	if plan.WriteBytes != int64(len("new content")+len("short")) {
		t.Fatalf("unexpected write bytes %d", plan.WriteBytes)
	}
	if got := testsupport.ReadFile(t, filepath.Join(drop, "changed_v001.fbx")); got != "old content" {
		t.Fatalf("planning modified an existing destination: %q", got)
	}
}

func TestBuildFlagsIntraPlanCollisions(t *testing.T) {
	f := newFixture(t, map[string]string{
		"maps/Wood_v001.png": "a",
		"tex/wood_v001.PNG":  "b",
	})
	plan := f.mustBuild(t, planner.Options{})

	first := entryFor(t, plan, "maps/Wood_v001.png")
	second := entryFor(t, plan, "tex/wood_v001.PNG")
	if first.Action != planner.ActionCopy || first.Collision {
		t.Fatalf("first claimant should copy: %+v", first)
	}
	if second.Action != planner.ActionSkip || !second.Collision {
		t.Fatalf("second claimant should be skipped with collision: %+v", second)
	}
	if len(plan.Findings) != 1 || plan.Findings[0].Rule != planner.RuleDestCollision || plan.Findings[0].Path != "tex/wood_v001.PNG" {
		t.Fatalf("expected one DEST_COLLISION finding, got %+v", plan.Findings)
	}
}

func TestBuildProtectsManifestLocation(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Hero_v001.fbx":      "x",
		"docs/manifest.json": "{}",
	})
	plan := f.mustBuild(t, planner.Options{})

	e := entryFor(t, plan, "docs/manifest.json")
	if e.Action != planner.ActionSkip || !e.Collision || e.Destination != plan.ManifestPath() {
		t.Fatalf("manifest path must be reserved: %+v", e)
	}
	if len(plan.Findings) != 1 || plan.Findings[0].Rule != planner.RuleDestReserved {
		t.Fatalf("expected DEST_RESERVED finding, got %+v", plan.Findings)
	}
}

func TestBuildSkipsLinks(t *testing.T) {
	f := newFixture(t, map[string]string{"Hero_v001.fbx": "x"})
	if err := os.Symlink(filepath.Join(f.root, "Hero_v001.fbx"), filepath.Join(f.root, "alias.fbx")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	plan := f.mustBuild(t, planner.Options{})
	if len(plan.Entries) != 1 {
		t.Fatalf("links must not be planned: %+v", plan.Entries)
	}
	if len(plan.Findings) != 1 || plan.Findings[0].Rule != planner.RuleLinkSkipped {
		t.Fatalf("expected link finding, got %+v", plan.Findings)
	}
}
