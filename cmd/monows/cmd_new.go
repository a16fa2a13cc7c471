package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fbkclanna/monows/internal/config"
	"github.com/fbkclanna/monows/internal/git"
)

// Overridden in tests.
var (
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	newPrompter     = func() prompter { return teaPrompter{} }
)

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new workspace interactively or from a config file",
		Args:  cobra.ExactArgs(1),
		RunE:  runNew,
	}
	cmd.Flags().String("from", "", "Import monows.yaml from local path or repo#path")
	cmd.Flags().Bool("force", false, "Overwrite existing workspace")
	cmd.Flags().Bool("no-git", false, "Skip git repository initialization")
	return cmd
}

func runNew(cmd *cobra.Command, args []string) error {
	name := args[0]
	root, _ := cmd.Flags().GetString("root")
	from, _ := cmd.Flags().GetString("from")
	force, _ := cmd.Flags().GetBool("force")
	noGit, _ := cmd.Flags().GetBool("no-git")

	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid workspace name %q: must be a simple directory name", name)
	}

	wsDir := filepath.Join(root, name)
	if _, err := os.Stat(wsDir); err == nil && !force {
		return fmt.Errorf("workspace %q already exists (use --force to overwrite)", name)
	}

	// Build the config before creating the directory to avoid leaving empty dirs on error.
	var ws *config.Workspace
	switch {
	case from != "":
		src, err := fetchFrom(from)
		if err != nil {
			return fmt.Errorf("reading --from source: %w", err)
		}
		if ws, err = config.Parse(src); err != nil {
			return fmt.Errorf("invalid config from %s: %w", from, err)
		}
		ws.Name = name
	default:
		if !stdinIsTerminal() {
			return fmt.Errorf("interactive new requires a TTY; use --from to specify a config")
		}
		var err error
		if ws, err = interactiveConfig(newPrompter(), cmd.OutOrStdout(), name); err != nil {
			return fmt.Errorf("interactive setup: %w", err)
		}
	}

	if err := os.MkdirAll(wsDir, 0755); err != nil { //nolint:gosec // workspace dir needs to be world-readable
		return fmt.Errorf("creating workspace directory: %w", err)
	}
	if err := config.Save(filepath.Join(wsDir, config.FileName), ws); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(wsDir, ".gitignore"), []byte(generateGitignore()), 0644); err != nil { //nolint:gosec // .gitignore needs to be readable
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if !noGit {
		initGitRepo(cmd, wsDir)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Workspace %q created at %s with %d repos\n", name, wsDir, len(ws.Repos))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Next: monows --root %s init\n", wsDir)
	return nil
}

// initGitRepo initializes a git repository in the workspace directory.
// Errors are reported as warnings and do not prevent workspace creation.
func initGitRepo(cmd *cobra.Command, wsDir string) {
	warn := func(format string, args ...any) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: "+format+"\n", args...)
	}
	if !git.IsGitInstalled() {
		warn("git is not installed; skipping git initialization")
		return
	}
	if git.IsCloned(wsDir) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Git repository already exists in %s; skipping git init\n", wsDir)
		return
	}
	if err := git.Init(wsDir); err != nil {
		warn("git init failed: %v", err)
		return
	}
	if err := git.Add(wsDir, config.FileName, ".gitignore"); err != nil {
		warn("git add failed: %v", err)
		return
	}
	if err := git.Commit(wsDir, "Initialize workspace"); err != nil {
		warn("git commit failed: %v", err)
	}
}

// generateGitignore returns the .gitignore of a new workspace. Package
// sources are committed once init has detached them from their own history.
func generateGitignore() string {
	return "node_modules/\ndist/\n*.tsbuildinfo\n"
}

// fetchFrom reads config content from a local path or repo#path format.
func fetchFrom(src string) ([]byte, error) {
	repo, file, ok := strings.Cut(src, "#")
	if !ok {
		return os.ReadFile(src) //nolint:gosec // user-provided --from path
	}

	// A shallow clone works with every host, unlike git archive --remote.
	tmpDir, err := os.MkdirTemp("", "monows-from-*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	clone := exec.Command("git", "clone", "--depth", "1", "--no-checkout", repo, tmpDir) //nolint:gosec // repo URL from user-provided --from flag
	clone.Stderr = os.Stderr
	if err := clone.Run(); err != nil {
		return nil, fmt.Errorf("cloning %s: %w", repo, err)
	}

	checkout := exec.Command("git", "checkout", "HEAD", "--", file) //nolint:gosec // path from user-provided --from flag
	checkout.Dir = tmpDir
	checkout.Stderr = os.Stderr
	if err := checkout.Run(); err != nil {
		return nil, fmt.Errorf("checking out %s from %s: %w", file, repo, err)
	}

	return os.ReadFile(filepath.Join(tmpDir, file)) //nolint:gosec // path from user-provided --from flag
}
