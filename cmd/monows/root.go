package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fbkclanna/monows/internal/logging"
	"github.com/fbkclanna/monows/internal/workspace"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "monows",
		Short:         "Assemble package repositories into one pnpm monorepo",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("root", ".", "Workspace root directory")
	cmd.PersistentFlags().String("log-level", logging.DefaultLevel, "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newNewCmd(),
		newInitCmd(),
		newSetupCmd(),
		newDepsCmd(),
		newInstallCmd(),
		newBuildCmd(),
		newCleanCmd(),
		newDoctorCmd(),
	)

	return cmd
}

// newLogger builds the logger selected by --log-level, writing to the
// command's stderr.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.New(level, cmd.ErrOrStderr())
}

// loadWorkspace loads the workspace at --root.
func loadWorkspace(cmd *cobra.Command) (*workspace.Context, error) {
	root, _ := cmd.Flags().GetString("root")
	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	ctx, err := workspace.Load(root, log)
	if err != nil {
		return nil, err
	}
	ctx.ToolVersion = version
	return ctx, nil
}
