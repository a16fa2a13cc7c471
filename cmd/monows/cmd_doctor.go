package main

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

// tool is an executable the workspace commands rely on.
type tool struct {
	name string
	hint string
}

var doctorTools = []tool{
	{"git", "git is required by init. Install it from https://git-scm.com/"},
	{"node", "node is required by install and build. Install it from https://nodejs.org/"},
	{"pnpm", "pnpm is the default install command. Run: npm i -g pnpm"},
	{"npx", "npx ships with npm and runs the default build command"},
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment for common issues",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	ok := true

	for _, t := range doctorTools {
		if !checkTool(out, t) {
			ok = false
		}
	}

	ctx, loadErr := loadWorkspace(cmd)
	if loadErr == nil {
		_, _ = fmt.Fprintf(out, "Workspace: %s (%d repos)\n", ctx.Config.Name, len(ctx.Config.Repos))
		if paths, err := ctx.PackageManifests(); err == nil {
			_, _ = fmt.Fprintf(out, "Packages: %d under %s\n", len(paths), ctx.Config.EffectivePackagesRoot())
		}
		if ctx.Lock == nil {
			_, _ = fmt.Fprintln(out, "Lock: not written yet (run monows init)")
		}
	} else {
		_, _ = fmt.Fprintf(out, "No workspace found (%v)\n", loadErr)
	}

	if ok {
		_, _ = fmt.Fprintln(out, "\nAll checks passed.")
		return nil
	}
	_, _ = fmt.Fprintln(out, "\nSome checks failed. See above for details.")
	return fmt.Errorf("doctor checks failed")
}

// checkTool reports whether t is on PATH along with its version.
func checkTool(out io.Writer, t tool) bool {
	_, _ = fmt.Fprintf(out, "Checking %s... ", t.name)
	p, err := exec.LookPath(t.name)
	if err != nil {
		_, _ = fmt.Fprintln(out, "NOT FOUND")
		_, _ = fmt.Fprintf(out, "  %s\n", t.hint)
		return false
	}
	ver, err := exec.Command(p, "--version").Output() //nolint:gosec // p is resolved from a fixed tool name
	if err != nil {
		_, _ = fmt.Fprintf(out, "found at %s\n", p)
		return true
	}
	_, _ = fmt.Fprintf(out, "%s (%s)\n", strings.TrimSpace(firstLine(string(ver))), p)
	return true
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
