package postgres

import (
	"context"
	"fmt"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/relation"
	"nerisdash/pkg/storage"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

// DefaultHostUser owns the dbt schemas in deployed contexts.
const DefaultHostUser = "root"

// SchemaPrefix returns the dbt schema prefix of hostUser, "_{hostUser}__".
func SchemaPrefix(hostUser string) string {
	if hostUser == "" {
		hostUser = DefaultHostUser
	}

	return "_" + hostUser + "__"
}

// LoadDataFromSQL runs query and aligns the resulting frame.
func (p *PgSQL) LoadDataFromSQL(ctx context.Context, query string, align storage.Align, args ...any) (*relation.Frame, error) {
	defer logger.Timed(ctx, "load data from sql")()

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query analytics db: %w", err)
	}

	frame, err := relation.ScanFrame(rows)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}
	if err := storage.AlignFrame(frame, align); err != nil {
		return nil, err //nolint: wrapcheck
	}
	logger.Debug(ctx, "loaded analytics rows", zap.Int("rows", frame.Len()))

	return frame, nil
}

// LoadTable selects columns (all when empty) of schema.table.
func (p *PgSQL) LoadTable(ctx context.Context, schema, table string, columns []string, align storage.Align) (*relation.Frame, error) {
	ds := p.Builder.From(goqu.S(schema).Table(table))
	if len(columns) > 0 {
		cols := make([]any, len(columns))
		for i, c := range columns {
			cols[i] = goqu.C(c)
		}
		ds = ds.Select(cols...)
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("could not build table query: %w", err)
	}

	return p.LoadDataFromSQL(ctx, query, align, args...)
}

// LocalHost is where the analytics database is tunnelled to in the local
// context.
const LocalHost = "0.0.0.0"

// OptionsFromCredentials fills the connection fields of base from a
// credentials secret (username, password, host, port, database). In the
// local context the host is LocalHost.
func OptionsFromCredentials(base Options, creds map[string]string, dashboardContext string) (Options, error) {
	out := base
	out.Username = creds["username"]
	out.Password = creds["password"]
	out.Host = creds["host"]
	if dashboardContext == "local" {
		out.Host = LocalHost
	}
	if db := creds["database"]; db != "" {
		out.Database = db
	} else if db := creds["dbname"]; db != "" {
		out.Database = db
	}
	if port := strings.TrimSpace(creds["port"]); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return Options{}, fmt.Errorf("could not parse port %q: %w", port, err)
		}
		out.Port = n
	}

	return out, nil
}

// CredentialsName is the secret holding the analytics database
// credentials of a context. The local context reads the dev database.
func CredentialsName(dashboardContext string) string {
	if dashboardContext == "local" || dashboardContext == "" {
		dashboardContext = "dev"
	}

	return dashboardContext + "_analytics"
}
