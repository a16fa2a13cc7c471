package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cleanFiles are the install artifacts removed from the workspace root.
var cleanFiles = []string{"node_modules", "pnpm-lock.yaml", "package-lock.json"}

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cloned packages and install artifacts (destructive, requires --force)",
		Args:  cobra.NoArgs,
		RunE:  runClean,
	}
	cmd.Flags().Bool("force", false, "Required to confirm destructive operation")
	return cmd
}

func runClean(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")
	if !force {
		return fmt.Errorf("clean is destructive; pass --force to confirm")
	}

	// Loading fails outside a workspace, so clean never runs on a stray directory.
	ctx, err := loadWorkspace(cmd)
	if err != nil {
		return fmt.Errorf("refusing to clean: %w", err)
	}

	var targets []string
	entries, err := os.ReadDir(ctx.PackagesDir())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("listing packages: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			targets = append(targets, filepath.Join(ctx.PackagesDir(), e.Name()))
		}
	}
	for _, r := range ctx.Config.Repos {
		if r.Path != "" {
			targets = append(targets, ctx.RepoDir(r))
		}
	}
	for _, f := range cleanFiles {
		targets = append(targets, filepath.Join(ctx.Root, f))
	}

	removed := 0
	for _, p := range targets {
		if protectedPath(ctx.Root, ctx.ConfigPath, p) {
			ctx.Log.Warn("skipping protected path", zap.String("path", p))
			continue
		}
		if _, err := os.Lstat(p); err != nil {
			continue
		}
		ctx.Log.Debug("remove", zap.String("path", p))
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("removing %s: %w", p, err)
		}
		removed++
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d paths from %s\n", removed, ctx.Root)
	return nil
}

// protectedPath reports whether removing p would take the workspace root or
// its config with it.
func protectedPath(root, configPath, p string) bool {
	p = filepath.Clean(p)
	if p == filepath.Clean(root) {
		return true
	}
	rel, err := filepath.Rel(p, configPath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
