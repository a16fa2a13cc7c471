package workspace

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/fbkclanna/monows/internal/config"
	"github.com/fbkclanna/monows/internal/lock"
	"github.com/fbkclanna/monows/internal/pkgjson"
	"github.com/fbkclanna/monows/internal/reconcile"
	"github.com/fbkclanna/monows/internal/testutil"
	"github.com/fbkclanna/monows/internal/version"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input string
		want  Strategy
		err   bool
	}{
		{"skip", StrategySkip, false},
		{"replace", StrategyReplace, false},
		{"", StrategySkip, false},
		{"unknown", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if (err != nil) != tt.err {
				t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.input, err, tt.err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// writeConfig is a test helper that writes a monows.yaml to the given dir.
func writeConfig(t *testing.T, dir string, ws *config.Workspace) {
	t.Helper()
	data, err := yaml.Marshal(ws)
	if err != nil {
		t.Fatalf("marshaling config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, config.FileName), data, 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
}

func newWorkspace(t *testing.T, ws *config.Workspace) (string, *Context) {
	t.Helper()
	dir := t.TempDir()
	if ws == nil {
		ws = &config.Workspace{Version: 1, Name: "cns"}
	}
	writeConfig(t, dir, ws)
	ctx, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return dir, ctx
}

func TestLoad(t *testing.T) {
	_, ctx := newWorkspace(t, &config.Workspace{
		Version: 1,
		Name:    "cns",
		Repos: []config.Repo{
			{ID: "cns-crypto", URL: "https://example.com/cns-crypto"},
		},
	})

	if ctx.Config.Name != "cns" {
		t.Errorf("Config.Name = %q, want %q", ctx.Config.Name, "cns")
	}
	if ctx.Lock != nil {
		t.Error("Lock should be nil when no lock file exists")
	}
	if ctx.ConfigPath != filepath.Join(ctx.Root, "monows.yaml") {
		t.Errorf("ConfigPath = %q, unexpected", ctx.ConfigPath)
	}
	if ctx.LockPath != filepath.Join(ctx.Root, "monows.lock.yaml") {
		t.Errorf("LockPath = %q, unexpected", ctx.LockPath)
	}
	if ctx.Log == nil {
		t.Error("Log should default to a no-op logger")
	}
}

func TestLoad_withLock(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, &config.Workspace{Version: 1, Name: "cns"})

	lockData := []byte(`version: 1
name: cns
generated_at: "2026-02-15T00:00:00Z"
tool_version: "0.1.0"
repos:
  cns-crypto:
    url: https://example.com/cns-crypto
    ref: main
    commit: "abc1234"
dev_dependencies:
  typescript: ^5.1.2
`)
	if err := os.WriteFile(filepath.Join(dir, "monows.lock.yaml"), lockData, 0600); err != nil {
		t.Fatal(err)
	}

	ctx, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if ctx.Lock == nil {
		t.Fatal("Lock should not be nil when lock file exists")
	}
	if ctx.Lock.Repos["cns-crypto"].Commit != "abc1234" {
		t.Errorf("commit = %q", ctx.Lock.Repos["cns-crypto"].Commit)
	}
	if ctx.Lock.DevDependencies["typescript"] != "^5.1.2" {
		t.Errorf("dev_dependencies = %v", ctx.Lock.DevDependencies)
	}
}

func TestLoad_missingConfig(t *testing.T) {
	if _, err := Load(t.TempDir(), nil); err == nil {
		t.Fatal("Load() should fail when monows.yaml is missing")
	}
}

func TestLoad_invalidConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "monows.yaml"), []byte("version: [1"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, nil); err == nil {
		t.Fatal("Load() should fail with invalid YAML")
	}
}

func TestRepoDir(t *testing.T) {
	_, ctx := newWorkspace(t, &config.Workspace{
		Version:      1,
		Name:         "cns",
		PackagesRoot: "libs",
		Repos: []config.Repo{
			{ID: "cns-crypto", URL: "https://example.com/cns-crypto"},
			{ID: "tools", URL: "https://example.com/tools", Path: "tooling/tools"},
		},
	})

	if got, want := ctx.RepoDir(ctx.Config.Repos[0]), filepath.Join(ctx.Root, "libs", "cns-crypto"); got != want {
		t.Errorf("RepoDir() = %q, want %q", got, want)
	}
	if got, want := ctx.RepoDir(ctx.Config.Repos[1]), filepath.Join(ctx.Root, "tooling", "tools"); got != want {
		t.Errorf("RepoDir() = %q, want %q", got, want)
	}
	if got, want := ctx.PackagesDir(), filepath.Join(ctx.Root, "libs"); got != want {
		t.Errorf("PackagesDir() = %q, want %q", got, want)
	}
}

func TestPackageManifests_missingRoot(t *testing.T) {
	_, ctx := newWorkspace(t, nil)
	paths, err := ctx.PackageManifests()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Errorf("paths = %v, want none", paths)
	}
}

func TestPackageID(t *testing.T) {
	_, ctx := newWorkspace(t, nil)
	p := filepath.Join(ctx.PackagesDir(), "cns-crypto", "package.json")
	if got := ctx.PackageID(p); got != "packages/cns-crypto" {
		t.Errorf("PackageID() = %q", got)
	}
}

const (
	cryptoJSON = `{
  "name": "@nmshd/crypto",
  "version": "2.0.4",
  "dependencies": {
    "libsodium-wrappers-sumo": "0.7.11"
  },
  "devDependencies": {
    "typescript": "^5.0.0",
    "mocha": "^10.2.0"
  }
}
`
	transportJSON = `{
  "name": "@nmshd/transport",
  "version": "2.1.0",
  "scripts": {
    "build": "tsc"
  },
  "dependencies": {
    "@nmshd/crypto": "2.0.1",
    "axios": "^1.2.0"
  },
  "devDependencies": {
    "typescript": "~5.0.3"
  }
}
`
)

func TestSetup(t *testing.T) {
	_, ctx := newWorkspace(t, nil)
	crypto := testutil.WritePackage(t, ctx.PackagesDir(), "cns-crypto", cryptoJSON)
	transport := testutil.WritePackage(t, ctx.PackagesDir(), "cns-transport", transportJSON)

	plan, err := ctx.Setup(context.Background(), ctx.Config.Options())
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}

	// Nothing is on disk before Write.
	if _, err := os.Stat(ctx.RootManifestPath()); !os.IsNotExist(err) {
		t.Fatal("root package.json should not exist before Write")
	}
	if err := plan.Write(); err != nil {
		t.Fatal(err)
	}

	root, err := pkgjson.Load(ctx.RootManifestPath())
	if err != nil {
		t.Fatal(err)
	}
	if root.Name != "cns" {
		t.Errorf("root name = %q", root.Name)
	}
	if root.DevDependencies["typescript"] != "^5.0.0" {
		t.Errorf("root devDependencies = %v", root.DevDependencies)
	}
	if _, ok := root.DevDependencies["mocha"]; ok {
		t.Error("mocha is not in every package and should not be hoisted")
	}

	tr, err := pkgjson.Load(transport)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Dependencies["@nmshd/crypto"] != "2.0.1" {
		t.Errorf("internal dependency = %q", tr.Dependencies["@nmshd/crypto"])
	}
	if tr.Dependencies["axios"] != "^1.2.0" {
		t.Errorf("external dependency should be untouched, got %q", tr.Dependencies["axios"])
	}
	if _, ok := tr.DevDependencies["typescript"]; ok {
		t.Error("typescript should be hoisted out of the package")
	}
	if !strings.Contains(string(tr.Data), `"build": "tsc"`) {
		t.Errorf("scripts lost:\n%s", tr.Data)
	}

	cr, err := pkgjson.Load(crypto)
	if err != nil {
		t.Fatal(err)
	}
	if cr.DevDependencies["mocha"] != "^10.2.0" {
		t.Errorf("mocha = %q", cr.DevDependencies["mocha"])
	}

	pw, err := os.ReadFile(ctx.PnpmWorkspacePath())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(pw), "packages/*") {
		t.Errorf("pnpm-workspace.yaml = %s", pw)
	}

	lf, err := lock.Load(ctx.LockPath)
	if err != nil {
		t.Fatal(err)
	}
	if lf.DevDependencies["typescript"] != "^5.0.0" {
		t.Errorf("lock dev_dependencies = %v", lf.DevDependencies)
	}
}

func TestSetup_hoistedVersion(t *testing.T) {
	_, ctx := newWorkspace(t, nil)
	testutil.WritePackage(t, ctx.PackagesDir(), "a", `{"name":"a","devDependencies":{"typescript":"^5.0.0"}}`)
	testutil.WritePackage(t, ctx.PackagesDir(), "b", `{"name":"b","devDependencies":{"typescript":"^5.1.2"}}`)
	testutil.WritePackage(t, ctx.PackagesDir(), "c", `{"name":"c","devDependencies":{"typescript":"~5.0.3"}}`)

	plan, err := ctx.Setup(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := plan.Result.Root.DevDependencies["typescript"]; got != "^5.1.2" {
		t.Errorf("hoisted typescript = %q, want ^5.1.2", got)
	}
	if len(plan.Outputs) != 5 {
		t.Errorf("outputs = %v", plan.Paths())
	}
}

func TestSetup_keepsRootDevDependencies(t *testing.T) {
	_, ctx := newWorkspace(t, nil)
	testutil.WritePackage(t, ctx.PackagesDir(), "a", `{"name":"a","devDependencies":{"typescript":"^5.1.2"}}`)
	rootJSON := `{"name":"cns","private":true,"devDependencies":{"prettier":"^3.0.0"}}`
	if err := os.WriteFile(ctx.RootManifestPath(), []byte(rootJSON), 0600); err != nil {
		t.Fatal(err)
	}

	plan, err := ctx.Setup(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := plan.Write(); err != nil {
		t.Fatal(err)
	}
	root, err := pkgjson.Load(ctx.RootManifestPath())
	if err != nil {
		t.Fatal(err)
	}
	if root.DevDependencies["prettier"] != "^3.0.0" || root.DevDependencies["typescript"] != "^5.1.2" {
		t.Errorf("root devDependencies = %v", root.DevDependencies)
	}
}

func TestSetup_rerunKeepsLockedVersions(t *testing.T) {
	_, ctx := newWorkspace(t, nil)
	testutil.WritePackage(t, ctx.PackagesDir(), "a", `{"name":"a","devDependencies":{"typescript":"^5.1.2"}}`)
	testutil.WritePackage(t, ctx.PackagesDir(), "b", `{"name":"b","devDependencies":{"typescript":"^5.0.0"}}`)

	for i := 0; i < 2; i++ {
		plan, err := ctx.Setup(context.Background(), reconcile.Options{})
		if err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
		if err := plan.Write(); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	lf, err := lock.Load(ctx.LockPath)
	if err != nil {
		t.Fatal(err)
	}
	if lf.DevDependencies["typescript"] != "^5.1.2" {
		t.Errorf("lock dev_dependencies after rerun = %v", lf.DevDependencies)
	}
	root, err := pkgjson.Load(ctx.RootManifestPath())
	if err != nil {
		t.Fatal(err)
	}
	if root.DevDependencies["typescript"] != "^5.1.2" {
		t.Errorf("root devDependencies after rerun = %v", root.DevDependencies)
	}
}

func TestSetup_parseErrorWritesNothing(t *testing.T) {
	_, ctx := newWorkspace(t, nil)
	good := testutil.WritePackage(t, ctx.PackagesDir(), "a", cryptoJSON)
	testutil.WritePackage(t, ctx.PackagesDir(), "b", `{"name":"b","dependencies":{"left-pad":"abc"}}`)
	before, err := os.ReadFile(good)
	if err != nil {
		t.Fatal(err)
	}

	_, err = ctx.Setup(context.Background(), reconcile.Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rerr *reconcile.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("error should be a *reconcile.Error, got %T", err)
	}
	if rerr.Manifest != "packages/b" || rerr.Dependency != "left-pad" {
		t.Errorf("error = %+v", rerr)
	}
	if !errors.Is(err, version.ErrInvalidFormat) {
		t.Errorf("error should match ErrInvalidFormat: %v", err)
	}

	after, err := os.ReadFile(good)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("manifest changed after a failed setup")
	}
	if _, err := os.Stat(ctx.RootManifestPath()); !os.IsNotExist(err) {
		t.Error("root package.json should not be created")
	}
}

func TestSetup_pnpmWorkspaceKeepsGlobs(t *testing.T) {
	_, ctx := newWorkspace(t, nil)
	testutil.WritePackage(t, ctx.PackagesDir(), "a", `{"name":"a"}`)
	if err := os.WriteFile(ctx.PnpmWorkspacePath(), []byte("packages:\n  - apps/*\n"), 0600); err != nil {
		t.Fatal(err)
	}

	plan, err := ctx.Setup(context.Background(), reconcile.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := plan.Write(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(ctx.PnpmWorkspacePath())
	if err != nil {
		t.Fatal(err)
	}
	var pw pnpmWorkspace
	if err := yaml.Unmarshal(data, &pw); err != nil {
		t.Fatal(err)
	}
	if len(pw.Packages) != 2 || pw.Packages[0] != "apps/*" || pw.Packages[1] != "packages/*" {
		t.Errorf("packages = %v", pw.Packages)
	}
}
