package export_test

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"io"
	"nerisdash/pkg/export"
	"nerisdash/pkg/relation"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var at = time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC) //nolint: gochecknoglobals

func incidents() *relation.Frame {
	return &relation.Frame{
		Columns: []string{"neris_id_incident", "state", "units", "call_create"},
		Rows: [][]any{
			{"FD1|1", "CA", int64(3), at},
			{"FD1|2", nil, 2.5, nil},
		},
	}
}

func TestFilename(t *testing.T) {
	require.Equal(t, "incidents_20240501_130405.zip", export.Filename("incidents", ".zip", at))
	require.Equal(t, "incidents.zip", export.Filename("incidents", ".zip", time.Time{}))
	require.Equal(t, "export.xlsx", export.Filename("", ".xlsx", time.Time{}))
}

func TestZipCSV(t *testing.T) {
	dl, err := export.ZipCSV([]export.File{
		{Name: "incidents.csv", Frame: incidents()},
		{Name: "empty.csv", Frame: &relation.Frame{Columns: []string{"a"}}},
	}, "cornsacks", at)
	require.NoError(t, err)
	require.Equal(t, "cornsacks_20240501_130405.zip", dl.Filename)
	require.Equal(t, export.ZipType, dl.Type)
	require.True(t, dl.Base64)

	raw, err := base64.StdEncoding.DecodeString(dl.Content)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	require.Equal(t, zip.Deflate, zr.File[0].Method)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "neris_id_incident,state,units,call_create\n"+
		"FD1|1,CA,3,2024-05-01 13:04:05\n"+
		"FD1|2,,2.5,\n", string(content))

	rc, err = zr.File[1].Open()
	require.NoError(t, err)
	content, err = io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "a\n", string(content))
}

func TestXLSX(t *testing.T) {
	dl, err := export.XLSX([]export.File{
		{Name: "incidents.csv", Frame: incidents()},
		{Name: "aids", Frame: &relation.Frame{Columns: []string{"aid_type"}, Rows: [][]any{{"MUTUAL"}}}},
	}, "cornsacks", at)
	require.NoError(t, err)
	require.Equal(t, "cornsacks_20240501_130405.xlsx", dl.Filename)
	require.Equal(t, export.XLSXType, dl.Type)

	raw, err := base64.StdEncoding.DecodeString(dl.Content)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	require.Equal(t, []string{"incidents", "aids"}, f.GetSheetList())

	rows, err := f.GetRows("incidents")
	require.NoError(t, err)
	require.Equal(t, []string{"neris_id_incident", "state", "units", "call_create"}, rows[0])
	require.Equal(t, "FD1|1", rows[1][0])
	require.Equal(t, "3", rows[1][2])

	value, err := f.GetCellValue("aids", "A2")
	require.NoError(t, err)
	require.Equal(t, "MUTUAL", value)
}

func TestSheetName(t *testing.T) {
	require.Equal(t, "incidents", export.SheetName("incidents.csv", 0))
	require.Equal(t, "ab", export.SheetName("a/b", 0))
	require.Equal(t, "Sheet3", export.SheetName("[]", 2))
	require.Len(t, export.SheetName("a_very_long_name_that_goes_past_the_limit", 0), 31)
}

func TestCell(t *testing.T) {
	require.Equal(t, "", export.Cell(nil))
	require.Equal(t, "True", export.Cell(true))
	require.Equal(t, "12", export.Cell(12.0))
	require.Equal(t, "2024-05-01 13:04:05", export.Cell(at))
}
