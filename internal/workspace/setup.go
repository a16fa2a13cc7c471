package workspace

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fbkclanna/monows/internal/lock"
	"github.com/fbkclanna/monows/internal/pkgjson"
	"github.com/fbkclanna/monows/internal/reconcile"
)

const pnpmWorkspaceFile = "pnpm-workspace.yaml"

// pnpmWorkspace mirrors the fields of pnpm-workspace.yaml that setup manages.
type pnpmWorkspace struct {
	Packages []string `yaml:"packages"`
}

// Output is one file setup will write.
type Output struct {
	Path string
	Data []byte
}

// Plan is the full in-memory result of a setup run. Nothing is written to disk
// until Write is called.
type Plan struct {
	Result  *reconcile.Result
	Outputs []Output
	Lock    *lock.File

	lockPath string
}

// Setup loads every package manifest, reconciles their dependencies and
// renders the new content of each manifest, the root package.json and
// pnpm-workspace.yaml. Any error leaves the workspace untouched.
func (c *Context) Setup(ctx context.Context, opts reconcile.Options) (*Plan, error) {
	paths, err := c.PackageManifests()
	if err != nil {
		return nil, err
	}
	files, err := pkgjson.LoadAll(ctx, paths, c.Config.EffectiveJobs())
	if err != nil {
		return nil, err
	}

	manifests := make([]reconcile.Manifest, len(files))
	for i, f := range files {
		manifests[i] = f.Manifest(c.PackageID(f.Path))
	}
	res, err := reconcile.Reconcile(manifests, opts)
	if err != nil {
		return nil, err
	}
	c.Log.Info("reconciled",
		zap.Int("manifests", res.Total),
		zap.Int("dependencies", len(res.Dependencies)),
		zap.Int("devDependencies", len(res.DevDependencies)),
		zap.Int("hoisted", len(res.Root.DevDependencies)+len(res.Root.Dependencies)))

	plan := &Plan{Result: res}
	for i, f := range files {
		u := res.Manifests[i]
		if len(u.Changes) == 0 {
			continue
		}
		data, err := f.Apply(u)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		c.Log.Debug("manifest rewritten", zap.String("package", u.ID), zap.Int("changes", len(u.Changes)))
		plan.Outputs = append(plan.Outputs, Output{Path: f.Path, Data: data})
	}

	root, err := c.renderRoot(res.Root)
	if err != nil {
		return nil, err
	}
	plan.Outputs = append(plan.Outputs, Output{Path: c.RootManifestPath(), Data: root})

	pnpm, err := c.renderPnpmWorkspace()
	if err != nil {
		return nil, err
	}
	plan.Outputs = append(plan.Outputs, Output{Path: c.PnpmWorkspacePath(), Data: pnpm})

	lf, err := lock.LoadOrNew(c.LockPath, c.Config.Name)
	if err != nil {
		return nil, err
	}
	lf.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	lf.ToolVersion = c.ToolVersion
	// Earlier hoisted entries stay, as they do in the root manifest.
	lf.Dependencies = overlay(lf.Dependencies, res.Root.Dependencies)
	lf.DevDependencies = overlay(lf.DevDependencies, res.Root.DevDependencies)
	plan.Lock = lf
	plan.lockPath = c.LockPath
	return plan, nil
}

// renderRoot overlays the hoisted maps onto the existing root package.json,
// creating a private one named after the workspace when it is missing.
func (c *Context) renderRoot(root reconcile.Root) ([]byte, error) {
	data, err := os.ReadFile(c.RootManifestPath())
	switch {
	case os.IsNotExist(err):
		data = pkgjson.NewRoot(c.Config.Name)
	case err != nil:
		return nil, fmt.Errorf("reading root manifest: %w", err)
	default:
		if _, err := pkgjson.Parse(data); err != nil {
			return nil, fmt.Errorf("root manifest: %w", err)
		}
	}

	if data, err = pkgjson.MergeBlock(data, reconcile.SectionDevDependencies, root.DevDependencies); err != nil {
		return nil, err
	}
	if len(root.Dependencies) > 0 {
		if data, err = pkgjson.MergeBlock(data, reconcile.SectionDependencies, root.Dependencies); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// renderPnpmWorkspace makes sure the packages root glob is listed in
// pnpm-workspace.yaml, keeping any other globs already there.
func (c *Context) renderPnpmWorkspace() ([]byte, error) {
	glob := path.Join(c.Config.EffectivePackagesRoot(), "*")

	var pw pnpmWorkspace
	data, err := os.ReadFile(c.PnpmWorkspacePath())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", pnpmWorkspaceFile, err)
	default:
		if err := yaml.Unmarshal(data, &pw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", pnpmWorkspaceFile, err)
		}
	}

	found := false
	for _, p := range pw.Packages {
		if p == glob {
			found = true
			break
		}
	}
	if !found {
		pw.Packages = append(pw.Packages, glob)
		sort.Strings(pw.Packages)
	}

	out, err := yaml.Marshal(&pw)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", pnpmWorkspaceFile, err)
	}
	return out, nil
}

func overlay(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Write writes every output of the plan, then the lock.
func (p *Plan) Write() error {
	for _, o := range p.Outputs {
		if err := os.WriteFile(o.Path, o.Data, 0644); err != nil { //nolint:gosec // manifests need to be readable
			return fmt.Errorf("writing %s: %w", o.Path, err)
		}
	}
	if p.Lock != nil {
		return lock.Save(p.lockPath, p.Lock)
	}
	return nil
}

// Paths returns the paths the plan would write.
func (p *Plan) Paths() []string {
	out := make([]string, len(p.Outputs))
	for i, o := range p.Outputs {
		out[i] = o.Path
	}
	return out
}
