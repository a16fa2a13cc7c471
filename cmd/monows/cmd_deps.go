package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/monows/internal/reconcile"
	"github.com/fbkclanna/monows/internal/ui"
)

func newDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Show reconciled dependency versions across packages",
		Args:  cobra.NoArgs,
		RunE:  runDeps,
	}
	addSetupFlags(cmd)
	cmd.Flags().Bool("dev", false, "Show devDependencies instead of dependencies")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

type depStatus struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Version string `json:"version"`
	Hoisted bool   `json:"hoisted"`
}

func runDeps(cmd *cobra.Command, _ []string) error {
	dev, _ := cmd.Flags().GetBool("dev")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	plan, err := ctx.Setup(cmd.Context(), setupOptions(cmd, ctx))
	if err != nil {
		return err
	}

	section, tally := reconcile.SectionDependencies, plan.Result.Dependencies
	if dev {
		section, tally = reconcile.SectionDevDependencies, plan.Result.DevDependencies
	}

	statuses := make([]depStatus, 0, len(tally))
	for _, e := range tally.Entries() {
		statuses = append(statuses, depStatus{
			Name:    e.Name,
			Count:   e.Count,
			Version: e.Best.String(),
			Hoisted: plan.Result.Hoisted(section, e.Name),
		})
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	tbl := ui.NewTable(out, "NAME", "COUNT", "VERSION", "HOISTED")
	for _, s := range statuses {
		tbl.Row(s.Name, s.Count, s.Version, s.Hoisted)
	}
	return tbl.Flush()
}
