package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"nerisdash/pkg/storage"
	"nerisdash/pkg/storage/postgres"

	"github.com/stretchr/testify/require"
)

func TestPgSQL_Begin_ReadOnlySnapshot(t *testing.T) {
	pg := setupTestDB(t)
	ctx := context.Background()

	txStorage, err := pg.Begin(ctx)
	require.NoError(t, err)

	inner, ok := txStorage.(*postgres.PgSQL)
	require.True(t, ok)
	_, isTx := inner.DB.(*sql.Tx)
	require.True(t, isTx)

	_, err = inner.Begin(ctx)
	require.ErrorIs(t, err, storage.ErrAlreadyInTx)

	before, err := inner.LoadDataFromSQL(ctx, "SELECT COUNT(*) AS n FROM _root__marts.departments", storage.Align{})
	require.NoError(t, err)

	_, err = pg.DB.ExecContext(ctx, `INSERT INTO _root__marts.departments (neris_id_dept, name) VALUES ('FD99', 'New')`)
	require.NoError(t, err)

	after, err := inner.LoadDataFromSQL(ctx, "SELECT COUNT(*) AS n FROM _root__marts.departments", storage.Align{})
	require.NoError(t, err)
	require.Equal(t, before.Rows, after.Rows)

	_, err = inner.DB.ExecContext(ctx, `DELETE FROM _root__marts.departments`)
	require.Error(t, err)

	require.NoError(t, inner.Rollback())
}

func TestPgSQL_CommitRollback_NotInTx(t *testing.T) {
	pg := setupTestDB(t)

	require.ErrorIs(t, pg.Commit(), storage.ErrNotInTx)
	require.ErrorIs(t, pg.Rollback(), storage.ErrNotInTx)
}

func TestPgSQL_WithTx(t *testing.T) {
	pg := setupTestDB(t)
	ctx := context.Background()

	var rows int
	err := pg.WithTx(ctx, func(s storage.AllStorage) error {
		frame, err := s.LoadDataFromSQL(ctx, "SELECT * FROM _root__marts.departments", storage.Align{})
		if err != nil {
			return err //nolint: wrapcheck
		}
		rows = frame.Len()

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, rows)

	boom := errors.New("boom")
	err = pg.WithTx(ctx, func(storage.AllStorage) error { return boom })
	require.ErrorIs(t, err, boom)
}
