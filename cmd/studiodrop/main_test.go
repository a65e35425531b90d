package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"studiodrop/internal/config"
	"studiodrop/internal/finding"
	"studiodrop/internal/manifest"
	"studiodrop/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	delivery   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("STUDIODROP_PROFILE", "")
	t.Setenv("STUDIODROP_OUTPUT_ROOT", "")

	configPath := filepath.Join(base, "studiodrop.toml")
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	delivery := filepath.Join(base, "incoming", "Orbital")
	testsupport.WriteTree(t, delivery, map[string]string{
		"geo/Probe_v002_geo.abc":   "geo",
		"tex/Probe_v002.png":       "tex",
		"rig/Probe_rig_v002.ma":    "rig",
		"cache/Probe_v002_sim.abc": "cache",
		"export/Probe_v002.fbx":    "export",
		"source/Probe_v002.ma":     "source",
		"docs/Probe_v002.pdf":      "docs",
	})
	return &cliTestEnv{cfg: cfg, configPath: configPath, delivery: delivery}
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Run history: yes")
	requireContains(t, out, "schema 1")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite without --overwrite")
	}
}

func TestScanJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "scan", env.delivery, "--json")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var view scanView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode scan output: %v\n%s", err, out)
	}
	if view.Files != 7 || view.Dirs != 7 || view.Extensions[".abc"] != 2 {
		t.Fatalf("unexpected scan view %+v", view)
	}
}

func TestValidateExitStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "validate", env.delivery)
	if err != nil {
		t.Fatalf("validate with VFX: %v", err)
	}
	requireContains(t, out, "Status: OK")

	out, _, err = runCLI(t, env, "", "validate", env.delivery, "--profile", "Game")
	if exitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %d (%v)", exitCode(err), err)
	}
	requireContains(t, out, "EXTENSION_NOT_ALLOWED")
}

func TestPlanJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "plan", env.delivery, "--json", "--asset", "Probe Hero")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	var view planView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode plan output: %v\n%s", err, out)
	}
	if view.Version != "v002" || view.Project != "Orbital" || len(view.Entries) != 7 {
		t.Fatalf("unexpected plan %+v", view)
	}
	if view.Counts["COPY"] != 7 {
		t.Fatalf("expected 7 copies, got %v", view.Counts)
	}
	for _, e := range view.Entries {
		if !strings.HasPrefix(e.Destination, view.DropRoot) {
			t.Fatalf("destination %s outside drop root %s", e.Destination, view.DropRoot)
		}
	}
	if _, err := os.Stat(view.DropRoot); !os.IsNotExist(err) {
		t.Fatalf("plan must not create the drop root, stat err %v", err)
	}
}

func TestPackageAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "package", env.delivery, "--yes")
	if err != nil {
		t.Fatalf("package: %v\n%s", err, out)
	}
	requireContains(t, out, "Status: OK")
	requireContains(t, out, "manifest.json")

	dropRoot := filepath.Join(env.cfg.Defaults.OutputRoot, "Orbital", "Probe", "v002")
	for _, rel := range []string{"docs/manifest.json", "docs/report.html", "textures/Probe_v002.png"} {
		if _, err := os.Stat(filepath.Join(dropRoot, filepath.FromSlash(rel))); err != nil {
			t.Fatalf("expected %s in drop: %v", rel, err)
		}
	}

	out, _, err = runCLI(t, env, "", "history", "--json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []historyRunView
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].Status != string(finding.StatusOK) || runs[0].Copied != 7 {
		t.Fatalf("unexpected history %+v", runs)
	}

	out, _, err = runCLI(t, env, "", "history", "show", runs[0].ID[:8], "--all")
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, runs[0].ID)
	requireContains(t, out, "export/Probe_v002.fbx")

	out, _, err = runCLI(t, env, "", "history", "show", runs[0].ID, "--manifest")
	if err != nil {
		t.Fatalf("history show --manifest: %v", err)
	}
	var m manifest.Manifest
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("decode manifest: %v\n%s", err, out)
	}
	if m.Run.ID != runs[0].ID || m.Summary.Copied != 7 {
		t.Fatalf("unexpected manifest run %+v summary %+v", m.Run, m.Summary)
	}

	out, _, err = runCLI(t, env, "", "package", env.delivery, "--yes", "--json")
	if err != nil {
		t.Fatalf("re-run package: %v", err)
	}
	var result packageView
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode package output: %v\n%s", err, out)
	}
	if result.Summary.Skipped != 7 || result.Summary.BytesCopied != 0 {
		t.Fatalf("expected identical re-run to skip everything, got %+v", result.Summary)
	}

	_, _, err = runCLI(t, env, "", "history", "show", runs[0].ID, "--manifest")
	if err == nil || !strings.Contains(err.Error(), "overwritten by run "+result.RunID[:8]) {
		t.Fatalf("expected overwritten manifest error, got %v", err)
	}
}

func TestPackageDeclined(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "n\n", "package", env.delivery)
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	requireContains(t, out, "Aborted")
	if _, err := os.Stat(env.cfg.Defaults.OutputRoot); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written when declined, stat err %v", err)
	}
}

func TestPackageBlockedByValidation(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "", "package", env.delivery, "--yes", "--profile", "Mobile")
	var se *statusError
	if !errors.As(err, &se) || se.status != finding.StatusError {
		t.Fatalf("expected blocking status error, got %v", err)
	}
	if _, err := os.Stat(env.cfg.Defaults.OutputRoot); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written when validation blocks, stat err %v", err)
	}
}

func TestPackageForcedPastValidation(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "", "package", env.delivery, "--yes", "--force", "--profile", "Mobile")
	var se *statusError
	if !errors.As(err, &se) || se.status != finding.StatusError {
		t.Fatalf("expected ERROR status, got %v", err)
	}
	if strings.Contains(se.detail, "copies failed") || !strings.Contains(se.detail, "validation errors") {
		t.Fatalf("detail should blame validation, got %q", se.detail)
	}
	if exitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %d", exitCode(err))
	}
}

func TestProfileCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "profile", "export", "vfx")
	if err != nil {
		t.Fatalf("profile export: %v", err)
	}
	requireContains(t, out, filepath.Join(env.cfg.Paths.ProfilesDir, "VFX.json"))

	out, _, err = runCLI(t, env, "", "profile", "list", "--json")
	if err != nil {
		t.Fatalf("profile list: %v", err)
	}
	requireContains(t, out, `"source": "`+filepath.Join(env.cfg.Paths.ProfilesDir, "VFX.json")+`"`)

	out, _, err = runCLI(t, env, "", "profile", "show", "Game", "--format", "yaml")
	if err != nil {
		t.Fatalf("profile show: %v", err)
	}
	requireContains(t, out, "required_folders:")

	if _, _, err := runCLI(t, env, "", "profile", "show", "Broadcast"); err == nil {
		t.Fatal("expected unknown profile error")
	}
}

func TestErrorHints(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "", "scan", filepath.Join(env.delivery, "missing"))
	if err == nil {
		t.Fatal("expected missing path error")
	}
	requireContains(t, formatError(err), "Hint: check the delivery folder path")
	if exitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %d", exitCode(err))
	}
}
