package main

import (
	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install workspace dependencies (install.cmd, default: pnpm i)",
		Args:  cobra.NoArgs,
		RunE:  runInstall,
	}
}

func runInstall(cmd *cobra.Command, _ []string) error {
	ctx, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	return execCmd(ctx.Log, ctx.Root, ctx.Config.InstallCmd(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build all packages (build.cmd, default: npx nx run-many -t build:node)",
		Args:  cobra.NoArgs,
		RunE:  runBuild,
	}
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	return execCmd(ctx.Log, ctx.Root, ctx.Config.BuildCmd(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}
