package config

import (
	"path"

	"github.com/fbkclanna/monows/internal/reconcile"
)

const (
	// FileName is the workspace configuration file at the workspace root.
	FileName = "monows.yaml"

	defaultPackagesRoot = "packages"
	defaultJobs         = 4
)

// Workspace represents the top-level monows.yaml configuration.
type Workspace struct {
	Version           int      `yaml:"version"`
	Name              string   `yaml:"name"`
	Description       string   `yaml:"description,omitempty"`
	PackagesRoot      string   `yaml:"packages_root,omitempty"`
	InternalScopes    []string `yaml:"internal_scopes,omitempty"`
	Merge             bool     `yaml:"merge,omitempty"`
	HoistDependencies bool     `yaml:"hoist_dependencies,omitempty"`
	Jobs              int      `yaml:"jobs,omitempty"`
	Install           *Command `yaml:"install,omitempty"`
	Build             *Command `yaml:"build,omitempty"`
	Repos             []Repo   `yaml:"repos"`
}

// Command is an argv run from the workspace root, without a shell.
type Command struct {
	Cmd []string `yaml:"cmd"`
}

// Repo is one package repository cloned into the workspace.
type Repo struct {
	ID       string `yaml:"id"`
	URL      string `yaml:"url"`
	Path     string `yaml:"path,omitempty"`
	Ref      string `yaml:"ref,omitempty"`
	Depth    *int   `yaml:"depth,omitempty"`
	KeepGit  bool   `yaml:"keep_git,omitempty"`
	Required *bool  `yaml:"required,omitempty"`
}

// EffectivePackagesRoot returns packages_root, defaulting to "packages".
func (w *Workspace) EffectivePackagesRoot() string {
	if w.PackagesRoot != "" {
		return w.PackagesRoot
	}
	return defaultPackagesRoot
}

// EffectiveJobs returns the number of parallel workers, defaulting to 4.
func (w *Workspace) EffectiveJobs() int {
	if w.Jobs > 0 {
		return w.Jobs
	}
	return defaultJobs
}

// InstallCmd returns the install argv, defaulting to "pnpm i".
func (w *Workspace) InstallCmd() []string {
	if w.Install != nil && len(w.Install.Cmd) > 0 {
		return w.Install.Cmd
	}
	return []string{"pnpm", "i"}
}

// BuildCmd returns the build argv, defaulting to an nx run-many build.
func (w *Workspace) BuildCmd() []string {
	if w.Build != nil && len(w.Build.Cmd) > 0 {
		return w.Build.Cmd
	}
	return []string{"npx", "nx", "run-many", "-t", "build:node"}
}

// Options returns the reconciliation options configured for the workspace.
func (w *Workspace) Options() reconcile.Options {
	return reconcile.Options{
		Merge:             w.Merge,
		HoistDependencies: w.HoistDependencies,
		InternalScopes:    w.InternalScopes,
	}
}

// EffectivePath returns the repo path, defaulting to <packages_root>/<id>.
func (r *Repo) EffectivePath(w *Workspace) string {
	if r.Path != "" {
		return r.Path
	}
	return path.Join(w.EffectivePackagesRoot(), r.ID)
}

// IsRequired returns whether this repo is required (default true).
func (r *Repo) IsRequired() bool {
	if r.Required != nil {
		return *r.Required
	}
	return true
}
