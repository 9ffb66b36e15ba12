package main

import (
	"context"
	"nerisdash/internal/deploy"
	"nerisdash/internal/entrypoint"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func entrypointCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entrypoint",
		Short: "Prepares the development container and waits for shutdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			wd, err := os.Getwd()
			if err != nil {
				return err //nolint: wrapcheck
			}
			opts := entrypoint.Options{Workdir: wd}
			if skip, _ := cmd.Flags().GetBool("skip-hooks"); !skip {
				opts.PreCommit = []string{"pre-commit", "install"}
			}

			return entrypoint.Run(ctx, deploy.NewExecRunner(), opts) //nolint: wrapcheck
		},
	}

	cmd.Flags().Bool("skip-hooks", false, "Do not install pre-commit hooks")

	return cmd
}
