package main

import (
	"context"
	"errors"
	"fmt"
	"nerisdash/internal/api"
	"nerisdash/internal/config"
	"nerisdash/internal/cornsacks"
	"nerisdash/internal/dashboard"
	"nerisdash/pkg/auth"
	"nerisdash/pkg/cache"
	"nerisdash/pkg/cache/memcache"
	"nerisdash/pkg/cache/valkeycache"
	"nerisdash/pkg/geo/arcgis"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/neris/nerisapi"
	"nerisdash/pkg/relation"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// memoPrefix namespaces memoized dashboard results in the shared cache.
const memoPrefix = "neris:memo"

// memoCapacity bounds the in-process cache when no Valkey URL is configured.
const memoCapacity = 10_000

// getSource opens the DuckDB source over the parquet exports. S3 keys not
// set in the config are read from Secrets Manager.
func getSource(ctx context.Context, cfg *config.Config) (*relation.Source, func()) {
	opts := relation.Options{
		Storage:            relation.Storage(cfg.Data.Storage),
		Root:               cfg.Data.Root,
		BucketPrefix:       cfg.Data.BucketPrefix,
		Context:            cfg.DashboardContext,
		MaxOpenConnections: cfg.Data.MaxOpenConnections,
		MetadataCache:      cfg.Data.MetadataCache,
		S3: relation.S3Credentials{
			AccessKeyID:     cfg.Data.AccessKeyID,
			SecretAccessKey: cfg.Data.SecretAccessKey,
			Region:          cfg.AWS.Region,
		},
	}
	if opts.Storage == relation.StorageS3 && opts.S3.AccessKeyID == "" {
		name := cfg.S3SecretName()
		creds, err := getSecrets(ctx, cfg).Credentials(ctx, name)
		if err != nil {
			logger.Fatal(ctx, "could not read s3 credentials", zap.String("secret", name), zap.Error(err))
		}
		opts.S3.AccessKeyID = creds["access_key_id"]
		opts.S3.SecretAccessKey = creds["secret_access_key"]
		if region := creds["region"]; region != "" {
			opts.S3.Region = region
		}
	}

	src, err := relation.New(ctx, opts)
	if err != nil {
		logger.Fatal(ctx, "could not open duckdb source", zap.Error(err))
	}

	return src, func() {
		logger.Info(ctx, "closing duckdb source...")
		if err := src.Close(); err != nil {
			logger.Warn(ctx, "could not close duckdb source", zap.Error(err))
		}
	}
}

// getCache connects to Valkey when a URL is configured and falls back to an
// in-process cache otherwise. The returned check pings the server.
func getCache(ctx context.Context, cfg *config.Config) (cache.Cache, func(context.Context) error, func()) {
	if cfg.Redis.URL == "" {
		logger.Info(ctx, "using in-process cache")
		c := memcache.New(memcache.Options{Capacity: memoCapacity, Cleanup: true})

		return c, func(context.Context) error { return nil }, c.Close
	}

	c, err := valkeycache.New(cfg.Redis.URL)
	if err != nil {
		logger.Fatal(ctx, "could not create valkey cache", zap.Error(err))
	}

	return c, c.Ping, func() {
		logger.Info(ctx, "closing valkey client...")
		c.Close()
	}
}

func setupServer(ctx context.Context, deps api.Deps, cfg *config.Config) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the dashboard API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			src, closeSrc := getSource(ctx, cfg)
			defer closeSrc()

			c, pingCache, closeCache := getCache(ctx, cfg)
			defer closeCache()

			baseURL := cfg.Auth.APIBaseURL
			if baseURL == "" {
				baseURL = nerisapi.BaseURL(cfg.DashboardContext)
			}
			manager := auth.New(c,
				nerisapi.New(&http.Client{Timeout: cfg.Auth.APITimeout}, baseURL, cfg.Auth.PathTemplate),
				auth.Options{
					CacheKey:  cornsacks.AuthorizedNerisIDs,
					TTL:       cfg.Auth.TTL,
					Context:   cfg.DashboardContext,
					SecretKey: cfg.Auth.SecretKey,
					MockIDs:   cfg.Auth.MockIDs,
				})

			svc := dashboard.New(
				cornsacks.New(src),
				cache.NewMemoizer(c, cfg.Cache.Timeout, memoPrefix),
				arcgis.New(&http.Client{Timeout: cfg.ArcGIS.Timeout},
					cfg.ArcGIS.APIKey, cfg.ArcGIS.FeatureServerURL, cfg.ArcGIS.GeocoderURL),
				dashboard.Options{
					MaxPoints:  cfg.Map.MaxPoints,
					BasemapURL: cfg.Map.BasemapURL,
					Timezone:   cfg.Map.Timezone,
				})

			stopWebserver := setupServer(ctx, api.Deps{
				Dashboard: svc,
				Auth:      manager,
				Sessions:  auth.NewSessions(cfg.Auth.SecretKey, cfg.Auth.CookieName, cfg.Auth.TTL),
				Health: func(ctx context.Context) error {
					if err := src.DB.PingContext(ctx); err != nil {
						return fmt.Errorf("duckdb: %w", err)
					}
					if err := pingCache(ctx); err != nil {
						return fmt.Errorf("cache: %w", err)
					}

					return nil
				},
			}, cfg)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
