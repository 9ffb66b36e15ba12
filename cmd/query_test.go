package main

import (
	"context"
	"errors"
	"nerisdash/pkg/relation"
	"nerisdash/pkg/storage"
	"os"
	"path/filepath"
	"testing"

	mockstorage "nerisdash/pkg/storage/mock"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// expectWithTx runs the WithTx callback against tx.
func expectWithTx(st *mockstorage.MockStorage, tx storage.AllStorage) {
	st.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cb func(storage.AllStorage) error) error {
			return cb(tx)
		},
	)
}

func TestLoadFrame(t *testing.T) {
	ctx := context.Background()
	frame := &relation.Frame{Columns: []string{"n"}, Rows: [][]any{{int64(1)}}}
	align := storage.Align{ParseDates: []string{"call_create"}}

	t.Run("sql", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		st := mockstorage.NewMockStorage(ctrl)
		tx := mockstorage.NewMockAllStorage(ctrl)
		expectWithTx(st, tx)
		tx.EXPECT().LoadDataFromSQL(gomock.Any(), "SELECT 1 AS n", align).Return(frame, nil)

		got, err := loadFrame(ctx, st, "SELECT 1 AS n", "_root__marts", "", align)
		require.NoError(t, err)
		require.Same(t, frame, got)
	})

	t.Run("table", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		st := mockstorage.NewMockStorage(ctrl)
		tx := mockstorage.NewMockAllStorage(ctrl)
		expectWithTx(st, tx)
		tx.EXPECT().LoadTable(gomock.Any(), "_root__marts", "departments", gomock.Nil(), align).Return(frame, nil)

		got, err := loadFrame(ctx, st, "", "_root__marts", "departments", align)
		require.NoError(t, err)
		require.Same(t, frame, got)
	})

	t.Run("error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		st := mockstorage.NewMockStorage(ctrl)
		tx := mockstorage.NewMockAllStorage(ctrl)
		expectWithTx(st, tx)
		boom := errors.New("boom")
		tx.EXPECT().LoadDataFromSQL(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)

		_, err := loadFrame(ctx, st, "SELECT 1", "", "", align)
		require.ErrorIs(t, err, boom)
	})
}

func TestWriteFrame(t *testing.T) {
	frame := &relation.Frame{Columns: []string{"n"}, Rows: [][]any{{int64(1)}}}
	dir := t.TempDir()

	require.NoError(t, writeFrame(frame, "departments", "zip", dir))
	matches, err := filepath.Glob(filepath.Join(dir, "departments*.zip"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	info, err := os.Stat(matches[0])
	require.NoError(t, err)
	require.Positive(t, info.Size())

	require.Error(t, writeFrame(frame, "departments", "parquet", dir))
}
