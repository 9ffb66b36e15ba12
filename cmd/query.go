package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"nerisdash/internal/config"
	"nerisdash/pkg/export"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/relation"
	"nerisdash/pkg/storage"
	"nerisdash/pkg/storage/postgres"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// queryCommand constructs the 'query' subcommand that loads rows from the
// analytics database, either a dbt model or a raw query, and writes them as
// CSV to stdout or as an export file.
func queryCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Loads analytics database rows and writes them as csv, zip or xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			flags := cmd.Flags()
			query, _ := flags.GetString("sql")
			schema, _ := flags.GetString("schema")
			table, _ := flags.GetString("table")
			format, _ := flags.GetString("format")
			out, _ := flags.GetString("out")
			dates, _ := flags.GetStringSlice("parse-dates")
			jsonCols, _ := flags.GetStringSlice("json-columns")

			if (query == "") == (table == "") {
				return errors.New("exactly one of --sql and --table is required")
			}

			pgsql, closePg := getPostgres(ctx, cfg)
			defer closePg()

			align := storage.Align{ParseDates: dates, JSONColumns: jsonCols}
			frame, err := loadFrame(ctx, pgsql, query, postgres.SchemaPrefix(cfg.HostUser)+schema, table, align)
			if err != nil {
				return err
			}
			logger.Info(ctx, "loaded rows", zap.Int("rows", frame.Len()))

			name := table
			if name == "" {
				name = "query"
			}

			return writeFrame(frame, name, format, out)
		},
	}

	cmd.Flags().String("sql", "", "Raw SQL query")
	cmd.Flags().String("schema", "marts", "dbt schema, prefixed with the host user's schema prefix")
	cmd.Flags().String("table", "", "Table or dbt model to load")
	cmd.Flags().String("format", "csv", "Output format: csv (stdout), zip or xlsx")
	cmd.Flags().String("out", ".", "Directory zip and xlsx files are written to")
	cmd.Flags().StringSlice("parse-dates", nil, "Columns parsed as timestamps")
	cmd.Flags().StringSlice("json-columns", nil, "Columns holding JSON text")

	return cmd
}

// loadFrame runs query, or loads schema.table when query is empty, inside a
// read only transaction so raw SQL cannot write.
func loadFrame(ctx context.Context, st storage.Storage, query, schema, table string, align storage.Align) (*relation.Frame, error) {
	var frame *relation.Frame
	err := st.WithTx(ctx, func(tx storage.AllStorage) (err error) {
		if query != "" {
			frame, err = tx.LoadDataFromSQL(ctx, query, align)
		} else {
			frame, err = tx.LoadTable(ctx, schema, table, nil, align)
		}

		return err //nolint: wrapcheck
	})
	if err != nil {
		return nil, fmt.Errorf("could not load rows: %w", err)
	}

	return frame, nil
}

func writeFrame(frame *relation.Frame, name, format, out string) error {
	var (
		dl  *export.Download
		err error
	)
	files := []export.File{{Name: name + ".csv", Frame: frame}}
	switch format {
	case "csv":
		return export.WriteCSV(os.Stdout, frame) //nolint: wrapcheck
	case "zip":
		dl, err = export.ZipCSV(files, name, time.Now())
	case "xlsx":
		dl, err = export.XLSX(files, name, time.Now())
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err //nolint: wrapcheck
	}

	content, err := base64.StdEncoding.DecodeString(dl.Content)
	if err != nil {
		return fmt.Errorf("could not decode export: %w", err)
	}
	path := filepath.Join(out, dl.Filename)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	fmt.Println(path) //nolint: forbidigo

	return nil
}
