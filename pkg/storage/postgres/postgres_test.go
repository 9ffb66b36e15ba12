package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/storage/postgres"
	"os"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testUser     = "postgres"
	testPassword = "postgres"
	testDB       = "testdb"
)

func TestMain(m *testing.M) {
	logger.Setup("development")
	os.Exit(m.Run())
}

type postgresContainer struct {
	Container testcontainers.Container
	Host      string
	Port      int
}

func startPostgresContainer(ctx context.Context) (*postgresContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:17",
		ExposedPorts: []string{"5432"},
		Env: map[string]string{
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
			"POSTGRES_DB":       testDB,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("could not get mapped port: %w", err)
	}

	return &postgresContainer{
		Container: container,
		Host:      host,
		Port:      mappedPort.Int(),
	}, nil
}

func runFixtures(db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set dialect: %w", err)
	}

	if err := goose.Up(db, "testdata/migrations"); err != nil {
		return fmt.Errorf("could not run fixtures: %w", err)
	}

	return nil
}

func setupTestDB(t *testing.T) *postgres.PgSQL {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := startPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Container.Terminate(ctx) })

	pgSQL, err := postgres.New(ctx, postgres.Options{
		Username:           testUser,
		Password:           testPassword,
		Host:               pgContainer.Host,
		Port:               pgContainer.Port,
		Database:           testDB,
		SslMode:            "disable",
		ConnMaxLifetime:    time.Minute,
		ConnMaxIdleTime:    time.Minute,
		MaxOpenConnections: 5,
		MaxIdleConnections: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgSQL.Close() })

	require.NoError(t, runFixtures(pgSQL.DB.(*sql.DB)))

	return pgSQL
}

func TestSchemaPrefix(t *testing.T) {
	require.Equal(t, "_root__", postgres.SchemaPrefix(""))
	require.Equal(t, "_jane_doe__", postgres.SchemaPrefix("jane_doe"))
}

func TestOptionsFromCredentials(t *testing.T) {
	base := postgres.Options{SslMode: "require", Database: "analytics"}
	creds := map[string]string{"username": "dash", "password": "pw", "host": "db.internal", "port": "6543"}

	opts, err := postgres.OptionsFromCredentials(base, creds, "prod")
	require.NoError(t, err)
	require.Equal(t, postgres.Options{
		Username: "dash", Password: "pw", Host: "db.internal", Port: 6543,
		Database: "analytics", SslMode: "require",
	}, opts)

	opts, err = postgres.OptionsFromCredentials(base, creds, "local")
	require.NoError(t, err)
	require.Equal(t, postgres.LocalHost, opts.Host)

	creds["port"] = "x"
	_, err = postgres.OptionsFromCredentials(base, creds, "prod")
	require.Error(t, err)

	require.Equal(t, "dev_analytics", postgres.CredentialsName("local"))
	require.Equal(t, "prod_analytics", postgres.CredentialsName("prod"))
}
