package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/monows/internal/reconcile"
	"github.com/fbkclanna/monows/internal/ui"
	"github.com/fbkclanna/monows/internal/workspace"
)

func newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Reconcile package dependencies and write the monorepo manifests",
		Args:  cobra.NoArgs,
		RunE:  runSetup,
	}
	addSetupFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "Show the changes without writing any file")
	cmd.Flags().Bool("json", false, "Output changes as JSON")
	return cmd
}

// addSetupFlags registers the reconciliation policy flags shared by setup and init.
func addSetupFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("merge", false, "Align every dependency, not only internal packages")
	cmd.Flags().Bool("hoist-deps", false, "Hoist regular dependencies shared by every package too")
}

// setupOptions returns the configured policy overridden by explicitly set flags.
func setupOptions(cmd *cobra.Command, ctx *workspace.Context) reconcile.Options {
	opts := ctx.Config.Options()
	if cmd.Flags().Changed("merge") {
		opts.Merge, _ = cmd.Flags().GetBool("merge")
	}
	if cmd.Flags().Changed("hoist-deps") {
		opts.HoistDependencies, _ = cmd.Flags().GetBool("hoist-deps")
	}
	return opts
}

type setupReport struct {
	Packages    int                `json:"packages"`
	Hoisted     map[string]string  `json:"hoisted"`
	HoistedDeps map[string]string  `json:"hoisted_dependencies,omitempty"`
	Changes     []reconcile.Change `json:"changes"`
	Written     []string           `json:"written,omitempty"`
	DryRun      bool               `json:"dry_run,omitempty"`
}

func runSetup(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	return setupWorkspace(cmd, ctx, setupOptions(cmd, ctx), dryRun, asJSON)
}

func setupWorkspace(cmd *cobra.Command, ctx *workspace.Context, opts reconcile.Options, dryRun, asJSON bool) error {
	plan, err := ctx.Setup(cmd.Context(), opts)
	if err != nil {
		return err
	}

	report := setupReport{
		Packages:    plan.Result.Total,
		Hoisted:     plan.Result.Root.DevDependencies,
		HoistedDeps: plan.Result.Root.Dependencies,
		Changes:     plan.Result.Changes(),
		DryRun:      dryRun,
	}
	if report.Changes == nil {
		report.Changes = []reconcile.Change{}
	}
	if !dryRun {
		if err := plan.Write(); err != nil {
			return err
		}
		report.Written = append(plan.Paths(), ctx.LockPath)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printSetupReport(out, report)
}

func printSetupReport(out io.Writer, r setupReport) error {
	if len(r.Changes) > 0 {
		tbl := ui.NewTable(out, "PACKAGE", "SECTION", "NAME", "FROM", "TO", "NOTE")
		for _, c := range r.Changes {
			var notes []string
			if c.Hoisted {
				notes = append(notes, "hoisted")
			}
			if c.Outside {
				notes = append(notes, "outside declared range")
			}
			note := strings.Join(notes, ", ")
			tbl.Row(c.Manifest, string(c.Section), c.Name, c.From, c.To, note)
		}
		if err := tbl.Flush(); err != nil {
			return err
		}
	}

	verb := "Updated"
	if r.DryRun {
		verb = "Would update"
	}
	hoisted := fmt.Sprintf("%d dev dependencies", len(r.Hoisted))
	if len(r.HoistedDeps) > 0 {
		hoisted += fmt.Sprintf(" and %d dependencies", len(r.HoistedDeps))
	}
	_, _ = fmt.Fprintf(out, "%s %d packages: %d changes, %s hoisted.\n",
		verb, r.Packages, len(r.Changes), hoisted)
	return nil
}
