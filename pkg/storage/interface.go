// Package storage defines read access to the analytics database. The
// dashboards never write to it; transactions exist to read several queries
// from one consistent snapshot.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"context"
	"nerisdash/pkg/relation"
)

// AnalyticsStorage runs ad hoc SQL against the analytics database.
type AnalyticsStorage interface {
	// LoadDataFromSQL runs query and returns its rows aligned with align.
	LoadDataFromSQL(ctx context.Context, query string, align Align, args ...any) (*relation.Frame, error)
	// LoadTable selects columns, or all of them when empty, of schema.table.
	LoadTable(ctx context.Context, schema, table string, columns []string, align Align) (*relation.Frame, error)
}

// AllStorage is every capability available both inside and outside a
// transaction.
type AllStorage interface {
	AnalyticsStorage
}

// TxStorage is a storage handle bound to a read only transaction.
type TxStorage interface {
	AllStorage

	Commit() error
	Rollback() error
}

// Storage is the top level handle owning the connection pool.
type Storage interface {
	AllStorage

	// Close releases the connection pool.
	Close() error

	// Begin starts a read only snapshot transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx runs cb inside Begin and commits when cb succeeds.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}
