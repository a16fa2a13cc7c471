package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fbkclanna/monows/internal/config"
	"github.com/fbkclanna/monows/internal/lock"
	"github.com/fbkclanna/monows/internal/pkgjson"
)

// Context holds the resolved paths and loaded config for a workspace.
type Context struct {
	Root       string
	ConfigPath string
	LockPath   string
	Config     *config.Workspace
	Lock       *lock.File // may be nil
	Log        *zap.Logger

	// ToolVersion is recorded in lock files written by this context.
	ToolVersion string
}

// Load resolves workspace paths and loads the config (and lock if present).
// A nil logger is replaced by a no-op logger.
func Load(root string, log *zap.Logger) (*Context, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	configPath := filepath.Join(root, config.FileName)
	lockPath := filepath.Join(root, lock.FileName)

	ws, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Root:       root,
		ConfigPath: configPath,
		LockPath:   lockPath,
		Config:     ws,
		Log:        log,
	}

	if _, statErr := os.Stat(lockPath); statErr == nil {
		lf, err := lock.Load(lockPath)
		if err != nil {
			return nil, err
		}
		ctx.Lock = lf
	}

	log.Debug("workspace loaded",
		zap.String("root", root),
		zap.Int("repos", len(ws.Repos)),
		zap.Bool("lock", ctx.Lock != nil))
	return ctx, nil
}

// RepoDir returns the absolute path for a repo within the workspace.
func (c *Context) RepoDir(repo config.Repo) string {
	return filepath.Join(c.Root, repo.EffectivePath(c.Config))
}

// PackagesDir returns the absolute directory holding the package checkouts.
func (c *Context) PackagesDir() string {
	return filepath.Join(c.Root, c.Config.EffectivePackagesRoot())
}

// RootManifestPath returns the path of the workspace root package.json.
func (c *Context) RootManifestPath() string {
	return filepath.Join(c.Root, pkgjson.FileName)
}

// PnpmWorkspacePath returns the path of pnpm-workspace.yaml.
func (c *Context) PnpmWorkspacePath() string {
	return filepath.Join(c.Root, pnpmWorkspaceFile)
}

// PackageManifests returns the package.json paths under the packages root.
// A missing packages root yields no packages.
func (c *Context) PackageManifests() ([]string, error) {
	dir := c.PackagesDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return pkgjson.Discover(dir)
}

// PackageID returns the identifier used for a package.json path in reports:
// its directory relative to the workspace root.
func (c *Context) PackageID(manifestPath string) string {
	rel, err := filepath.Rel(c.Root, filepath.Dir(manifestPath))
	if err != nil {
		return filepath.Dir(manifestPath)
	}
	return filepath.ToSlash(rel)
}

// Strategy decides what init does with a package directory that already exists.
type Strategy string

const (
	StrategySkip    Strategy = "skip"
	StrategyReplace Strategy = "replace"
)

// ParseStrategy parses a strategy string, defaulting to "skip".
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategySkip, "":
		return StrategySkip, nil
	case StrategyReplace:
		return StrategyReplace, nil
	default:
		return "", fmt.Errorf("unknown strategy: %q (must be skip or replace)", s)
	}
}
