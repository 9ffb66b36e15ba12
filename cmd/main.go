// Package main provides the CLI entrypoint for the NERIS dashboard service.
// It wires subcommands (serve, query, deploy, entrypoint, jwt), loads
// configuration, and initializes logging.
package main

import (
	"context"
	"flag"
	"log"
	"nerisdash/internal/config"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/secrets"
	"nerisdash/pkg/storage/postgres"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// getSecrets creates a Secrets Manager backed store for the configured region.
func getSecrets(ctx context.Context, cfg *config.Config) *secrets.Store {
	store, err := secrets.NewFromRegion(ctx, cfg.AWS.Region)
	if err != nil {
		logger.Fatal(ctx, "could not create secrets store", zap.Error(err))
	}

	return store
}

// getPostgres connects to the analytics database and returns it along with a
// cleanup function to close the connection pool. Without a configured
// username the credentials come from Secrets Manager.
func getPostgres(ctx context.Context, cfg *config.Config) (*postgres.PgSQL, func()) {
	opts := postgres.Options{
		Username:           cfg.Database.Username,
		Password:           cfg.Database.Password,
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		Database:           cfg.Database.DatabaseName,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:    cfg.Database.ConnMaxIdleTime,
		MaxOpenConnections: cfg.Database.MaxOpenConnections,
		MaxIdleConnections: cfg.Database.MaxIdleConnections,
		SslMode:            cfg.Database.SslMode,
	}
	if opts.Username == "" {
		name := postgres.CredentialsName(cfg.DashboardContext)
		creds, err := getSecrets(ctx, cfg).Credentials(ctx, name)
		if err != nil {
			logger.Fatal(ctx, "could not read analytics database credentials", zap.String("secret", name), zap.Error(err))
		}
		if opts, err = postgres.OptionsFromCredentials(opts, creds, cfg.DashboardContext); err != nil {
			logger.Fatal(ctx, "invalid analytics database credentials", zap.Error(err))
		}
	}

	pgsql, err := postgres.New(ctx, opts)
	if err != nil {
		logger.Fatal(ctx, "could not create postgres storage", zap.Error(err))
	}

	return pgsql, func() {
		logger.Info(ctx, "closing postgres client...")
		if err = pgsql.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres connection", zap.Error(err))
		}
	}
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use: "nerisdash",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	fs := flag.NewFlagSet("nerisdash", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("c", "config.yml", "The config file path")
	_ = fs.Parse(configArgs(os.Args[1:]))

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file", err)
	}

	environment := cfg.Environment
	if environment == "" {
		environment = logger.EnvironmentFor(cfg.DashboardContext)
	}
	logger.Setup(environment)

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		queryCommand(cfg),
		deployCommand(),
		entrypointCommand(),
		JWTCommand(cfg),
	)

	err = rootCmd.Execute()
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}

// configArgs picks the -c/--config flag out of args so the standard flag
// package does not stop at subcommand names.
func configArgs(args []string) []string {
	for i, a := range args {
		switch a {
		case "-c", "--config", "-config":
			if i+1 < len(args) {
				return []string{"-c", args[i+1]}
			}
		}
	}

	return nil
}
