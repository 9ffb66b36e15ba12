package main

import (
	"context"
	"nerisdash/internal/deploy"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func deployCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy <app_path> <de_app_name>",
		Short: "Packages a dashboard app with the shared library and deploys it",
		Args:  cobra.ExactArgs(2), //nolint: mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			// Usage is only printed for argument errors.
			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			library, _ := cmd.Flags().GetString("library")
			opts := deploy.DefaultOptions(library)
			if build, _ := cmd.Flags().GetStringSlice("build-command"); len(build) > 0 {
				opts.BuildCommand = build
			}
			if export, _ := cmd.Flags().GetStringSlice("export-command"); len(export) > 0 {
				opts.ExportCommand = export
			}
			if deployCmd, _ := cmd.Flags().GetStringSlice("deploy-command"); len(deployCmd) > 0 {
				opts.DeployCommand = deployCmd
			}

			return deploy.New(deploy.NewExecRunner(), opts).Deploy(ctx, args[0], args[1]) //nolint: wrapcheck
		},
	}

	cmd.Flags().String("library", "libs/neris-dash-common", "Shared dashboard library path")
	cmd.Flags().StringSlice("build-command", nil, "Wheel build command, {app} and {lib} are expanded")
	cmd.Flags().StringSlice("export-command", nil, "Requirements export command, run in the app directory")
	cmd.Flags().StringSlice("deploy-command", nil, "Deploy command, {name} is expanded")

	return cmd
}
