package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fbkclanna/monows/internal/config"
	"github.com/fbkclanna/monows/internal/git"
	"github.com/fbkclanna/monows/internal/lock"
	"github.com/fbkclanna/monows/internal/ui"
	"github.com/fbkclanna/monows/internal/workspace"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Clone the package repositories and set up the monorepo",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
	cmd.Flags().StringSlice("only", nil, "Clone only these repo IDs")
	cmd.Flags().StringSlice("skip", nil, "Skip these repo IDs")
	cmd.Flags().Int("jobs", 0, "Number of parallel clone workers (default: jobs from monows.yaml)")
	cmd.Flags().String("strategy", "skip", "Existing package directory strategy: skip, replace")
	cmd.Flags().Bool("force", false, "Allow destructive operations")
	cmd.Flags().Bool("no-setup", false, "Only clone; do not run setup afterwards")
	addSetupFlags(cmd)
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	only, _ := cmd.Flags().GetStringSlice("only")
	skip, _ := cmd.Flags().GetStringSlice("skip")
	jobs, _ := cmd.Flags().GetInt("jobs")
	strategyStr, _ := cmd.Flags().GetString("strategy")
	force, _ := cmd.Flags().GetBool("force")
	noSetup, _ := cmd.Flags().GetBool("no-setup")

	strategy, err := workspace.ParseStrategy(strategyStr)
	if err != nil {
		return err
	}
	if strategy == workspace.StrategyReplace && !force {
		return fmt.Errorf("--strategy replace requires --force")
	}
	if cmd.Flags().Changed("jobs") && jobs < 1 {
		return fmt.Errorf("--jobs must be >= 1 (got %d)", jobs)
	}

	ctx, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	if jobs == 0 {
		jobs = ctx.Config.EffectiveJobs()
	}

	repos := config.FilterByIDs(ctx.Config.Repos, only, skip)
	if err := os.MkdirAll(ctx.PackagesDir(), 0755); err != nil { //nolint:gosec // packages dir needs to be world-readable
		return fmt.Errorf("creating packages directory: %w", err)
	}

	progress := ui.NewProgress(cmd.ErrOrStderr(), len(repos))
	cloned, err := runParallelClone(ctx, repos, strategy, jobs, progress)
	if err != nil {
		return err
	}
	ctx.Log.Info("clone finished", zap.String("summary", progress.Summary()))

	if err := updateLockRepos(ctx, cloned); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if noSetup {
		_, _ = fmt.Fprintln(out, "Init complete.")
		return nil
	}
	return setupWorkspace(cmd, ctx, setupOptions(cmd, ctx), false, false)
}

// runParallelClone clones repos with at most jobs workers. It returns the lock
// entries of the repos that were cloned. A failing required repo fails the
// run; a failing optional repo only logs a warning.
func runParallelClone(ctx *workspace.Context, repos []config.Repo, strategy workspace.Strategy, jobs int, progress *ui.Progress) (map[string]*lock.Repo, error) {
	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	errCh := make(chan error, len(repos))

	var mu sync.Mutex
	cloned := make(map[string]*lock.Repo, len(repos))

	for _, r := range repos {
		wg.Add(1)
		go func(r config.Repo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			lr, err := cloneRepo(ctx, r, strategy, progress)
			if err != nil {
				progress.Fail(r.ID, err)
				if r.IsRequired() {
					errCh <- fmt.Errorf("repo %s: %w", r.ID, err)
				} else {
					progress.Log("Warning: optional repo %s: %v", r.ID, err)
				}
				return
			}
			if lr != nil {
				mu.Lock()
				cloned[r.ID] = lr
				mu.Unlock()
			}
		}(r)
	}

	wg.Wait()
	close(errCh)

	for e := range errCh {
		return nil, e
	}
	return cloned, nil
}

// cloneRepo materializes one repo under the packages root. It returns nil
// when an existing directory was kept.
func cloneRepo(ctx *workspace.Context, r config.Repo, strategy workspace.Strategy, progress *ui.Progress) (*lock.Repo, error) {
	dir := ctx.RepoDir(r)
	log := ctx.Log.With(zap.String("repo", r.ID))

	if _, err := os.Stat(dir); err == nil {
		switch strategy {
		case workspace.StrategySkip:
			progress.Done(fmt.Sprintf("%s skipped (exists)", r.ID))
			return nil, nil
		case workspace.StrategyReplace:
			log.Debug("removing existing directory", zap.String("dir", dir))
			if err := os.RemoveAll(dir); err != nil {
				return nil, fmt.Errorf("removing %s: %w", dir, err)
			}
		}
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil { //nolint:gosec // packages dir needs to be world-readable
		return nil, fmt.Errorf("creating parent directory: %w", err)
	}

	progress.Log("Cloning %s ...", r.ID)
	log.Debug("clone", zap.String("url", r.URL), zap.String("ref", r.Ref))
	if err := git.Clone(r.URL, dir, git.CloneOpts{Depth: r.Depth, Ref: r.Ref}); err != nil {
		return nil, err
	}

	commit, err := git.HeadCommitFull(dir)
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}
	ref := r.Ref
	if ref == "" {
		ref, _ = git.CurrentBranch(dir)
	}

	if !r.KeepGit {
		if err := git.Detach(dir); err != nil {
			return nil, err
		}
	}

	progress.Done(fmt.Sprintf("%s cloned @ %s", r.ID, shortSHA(commit)))
	return &lock.Repo{URL: r.URL, Ref: ref, Commit: commit}, nil
}

// updateLockRepos records the cloned commits, keeping entries of repos that
// were not cloned in this run.
func updateLockRepos(ctx *workspace.Context, cloned map[string]*lock.Repo) error {
	lf, err := lock.LoadOrNew(ctx.LockPath, ctx.Config.Name)
	if err != nil {
		return err
	}
	for id, lr := range cloned {
		lf.Repos[id] = lr
	}
	lf.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	lf.ToolVersion = version
	return lock.Save(ctx.LockPath, lf)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
