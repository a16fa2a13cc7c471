package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validate checks the workspace configuration for errors.
func Validate(ws *Workspace) error { return validate(ws) }

// Save validates and writes a workspace configuration to disk.
func Save(path string, ws *Workspace) error {
	if err := validate(ws); err != nil {
		return err
	}
	data, err := yaml.Marshal(ws)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // config needs to be readable
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Load reads and validates a monows.yaml file.
func Load(path string) (*Workspace, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the workspace config path
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates monows.yaml content.
func Parse(data []byte) (*Workspace, error) {
	var ws Workspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := validate(&ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

func validate(ws *Workspace) error {
	if ws.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", ws.Version)
	}
	if ws.Name == "" {
		return fmt.Errorf("config: name is required")
	}
	if ws.Jobs < 0 {
		return fmt.Errorf("config: jobs must be >= 1 (got %d)", ws.Jobs)
	}
	if ws.PackagesRoot != "" {
		if err := validatePath(ws.PackagesRoot, "packages_root"); err != nil {
			return err
		}
	}
	for i, s := range ws.InternalScopes {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("config: internal_scopes[%d] is empty", i)
		}
	}
	if ws.Install != nil && len(ws.Install.Cmd) == 0 {
		return fmt.Errorf("config: install.cmd is required when install is set")
	}
	if ws.Build != nil && len(ws.Build.Cmd) == 0 {
		return fmt.Errorf("config: build.cmd is required when build is set")
	}

	seen := make(map[string]bool, len(ws.Repos))
	for i, r := range ws.Repos {
		if err := validateRepo(i, r, seen); err != nil {
			return err
		}
		seen[r.ID] = true
	}
	return nil
}

func validateRepo(i int, r Repo, seen map[string]bool) error {
	if r.ID == "" {
		return fmt.Errorf("config: repos[%d].id is required", i)
	}
	if strings.ContainsAny(r.ID, `/\`) || r.ID == "." || r.ID == ".." {
		return fmt.Errorf("config: repos[%d].id %q must be a simple name", i, r.ID)
	}
	if r.URL == "" {
		return fmt.Errorf("config: repos[%d] (%s).url is required", i, r.ID)
	}
	if r.Path != "" {
		if err := validatePath(r.Path, r.ID); err != nil {
			return err
		}
	}
	if r.Depth != nil && *r.Depth < 0 {
		return fmt.Errorf("config: repos[%d] (%s).depth must not be negative", i, r.ID)
	}
	if seen[r.ID] {
		return fmt.Errorf("config: duplicate repo id %q", r.ID)
	}
	return nil
}

// validatePath ensures a path is relative, below the workspace root and not
// the root itself.
func validatePath(p, label string) error {
	if filepath.IsAbs(p) {
		return fmt.Errorf("config: %s: absolute path is not allowed: %s", label, p)
	}
	cleaned := filepath.Clean(p)
	if cleaned == "." {
		return fmt.Errorf("config: %s: path must not be the workspace root: %s", label, p)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("config: %s: path must not escape workspace (contains ..): %s", label, p)
	}
	return nil
}

// FilterByIDs returns repos matching --only / --skip flags.
func FilterByIDs(repos []Repo, only, skip []string) []Repo {
	if len(only) == 0 && len(skip) == 0 {
		return repos
	}
	onlySet := toSet(only)
	skipSet := toSet(skip)

	var result []Repo
	for _, r := range repos {
		if len(onlySet) > 0 && !onlySet[r.ID] {
			continue
		}
		if skipSet[r.ID] {
			continue
		}
		result = append(result, r)
	}
	return result
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
