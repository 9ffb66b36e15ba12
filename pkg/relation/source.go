// Package relation builds lazy queries over parquet files with an embedded
// DuckDB engine. A Relation accumulates filters, joins and a projection and
// only runs SQL when a terminal method (Rows, Count, Aggregate, ...) is called.
package relation

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"nerisdash/pkg/filters"
	"nerisdash/pkg/logger"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"
)

// Storage tells where parquet files live.
type Storage string

const (
	StorageS3         Storage = "s3"
	StorageFilesystem Storage = "filesystem"
)

// LastUpdatedLayout is the format of Relation.LastUpdated.
const LastUpdatedLayout = "2006-01-02 15:04:05 UTC"

// dialect renders DuckDB compatible SQL: double quoted identifiers and
// single quoted strings with doubled quotes.
var dialect = goqu.Dialect("postgres") //nolint: gochecknoglobals

// S3Credentials are the static credentials DuckDB and the S3 client use.
type S3Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// Options configures a Source.
type Options struct {
	// Storage selects S3 or the local filesystem.
	Storage Storage
	// Root is prepended to relative paths on the filesystem.
	Root string
	// BucketPrefix and Context form the bucket name "{prefix}-{context}".
	BucketPrefix string
	Context      string
	// S3 holds the credentials used when Storage is S3.
	S3 S3Credentials
	// MaxOpenConnections bounds the DuckDB connection pool.
	MaxOpenConnections int
	// MetadataCache enables DuckDB's parquet metadata cache on every connection.
	MetadataCache bool
	// ObjectStat overrides the S3 client used for LastUpdated.
	ObjectStat ObjectStat
}

// Table describes a parquet file and the filters that apply to it.
type Table struct {
	Name         string
	Path         string
	Filters      []filters.Config
	ExportFields []string
}

// Source owns the DuckDB connection pool and resolves table paths.
type Source struct {
	DB      *sql.DB
	Builder *goqu.Database

	opts Options
	stat ObjectStat
}

// InitStatements returns the statements run on every new DuckDB connection.
func InitStatements(opts Options) []string {
	var stmts []string
	if opts.MetadataCache {
		stmts = append(stmts, "SET parquet_metadata_cache=true")
	}
	if opts.Storage == StorageS3 {
		stmts = append(stmts,
			"INSTALL httpfs",
			"LOAD httpfs",
			fmt.Sprintf("SET s3_access_key_id=%s", quote(opts.S3.AccessKeyID)),
			fmt.Sprintf("SET s3_secret_access_key=%s", quote(opts.S3.SecretAccessKey)),
			fmt.Sprintf("SET s3_region=%s", quote(opts.S3.Region)),
		)
	}

	return stmts
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// New opens an in-memory DuckDB database. Each pooled connection is
// initialised with InitStatements, so queries may run concurrently.
func New(ctx context.Context, opts Options) (*Source, error) {
	stmts := InitStatements(opts)
	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		for _, stmt := range stmts {
			if _, err := execer.ExecContext(context.Background(), stmt, nil); err != nil {
				return fmt.Errorf("could not run %q: %w", strings.SplitN(stmt, "=", 2)[0], err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not create duckdb connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if opts.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConnections)
	}

	stat := opts.ObjectStat
	if stat == nil && opts.Storage == StorageS3 {
		cfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(opts.S3.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				opts.S3.AccessKeyID, opts.S3.SecretAccessKey, "")),
		)
		if err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("could not load aws config: %w", err)
		}
		stat = s3.NewFromConfig(cfg)
	}

	logger.Info(ctx, "duckdb source ready", zap.String("storage", string(opts.Storage)))

	return NewWithDB(db, opts, stat), nil
}

// NewWithDB wraps an already opened database.
func NewWithDB(db *sql.DB, opts Options, stat ObjectStat) *Source {
	return &Source{
		DB:      db,
		Builder: dialect.DB(db),
		opts:    opts,
		stat:    stat,
	}
}

// Close closes the connection pool.
func (s *Source) Close() error {
	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("could not close duckdb: %w", err)
	}

	return nil
}

// Bucket returns the bucket parquet files are read from.
func (s *Source) Bucket() string {
	return s.opts.BucketPrefix + "-" + s.opts.Context
}

// Path resolves a table path to what read_parquet expects.
func (s *Source) Path(path string) string {
	switch s.opts.Storage {
	case StorageS3:
		if strings.HasPrefix(path, "s3://") {
			return path
		}

		return fmt.Sprintf("s3://%s/%s", s.Bucket(), strings.TrimPrefix(path, "/"))
	default:
		if filepath.IsAbs(path) || s.opts.Root == "" {
			return path
		}

		return filepath.Join(s.opts.Root, path)
	}
}

// Relation starts a query over table with the table's filters applied to
// values. Cache sourced filters read their value from lookup.
func (s *Source) Relation(table Table, values filters.Values, lookup filters.CacheLookup) *Relation {
	r := &Relation{src: s, table: table, path: s.Path(table.Path)}
	if values != nil || lookup != nil {
		r.conds = filters.Conditions(table.Filters, values, lookup)
	}

	return r
}

// LastUpdated returns the modification time of table's parquet file, or an
// empty string when it cannot be read.
func (s *Source) LastUpdated(ctx context.Context, table Table) string {
	modified, err := s.modified(ctx, table)
	if err != nil {
		logger.Warn(ctx, "could not read last updated time",
			zap.String("table", table.Name), zap.Error(err))

		return ""
	}

	return modified.UTC().Format(LastUpdatedLayout)
}

func (s *Source) modified(ctx context.Context, table Table) (time.Time, error) {
	if s.opts.Storage != StorageS3 {
		info, err := os.Stat(s.Path(table.Path))
		if err != nil {
			return time.Time{}, fmt.Errorf("could not stat parquet file: %w", err)
		}

		return info.ModTime(), nil
	}

	if s.stat == nil {
		return time.Time{}, errors.New("no s3 client configured")
	}

	bucket, key := s.Bucket(), table.Path
	if rest, ok := strings.CutPrefix(table.Path, "s3://"); ok {
		bucket, key, _ = strings.Cut(rest, "/")
	}
	out, err := s.stat.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("could not head s3 object: %w", err)
	}
	if out.LastModified == nil {
		return time.Time{}, errors.New("s3 object has no last modified time")
	}

	return *out.LastModified, nil
}
