package storage

import "errors"

var (
	// ErrAlreadyInTx is returned by Begin on a handle that is already a
	// transaction. Snapshots do not nest.
	ErrAlreadyInTx = errors.New("already in tx")
	// ErrNotInTx is returned by Commit and Rollback on the pool handle.
	ErrNotInTx = errors.New("not in tx")
)
