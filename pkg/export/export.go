// Package export turns query results into downloadable files.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"nerisdash/pkg/format"
	"nerisdash/pkg/relation"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	ZipType  = "application/zip"
	XLSXType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// DefaultName is used when no file name is given.
	DefaultName = "export"

	timestampLayout = "20060102_150405"
	timeLayout      = "2006-01-02 15:04:05"
)

// File is one table of an export.
type File struct {
	Name  string
	Frame *relation.Frame
}

// Download is what the browser needs to save a file.
type Download struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
	Type     string `json:"type"`
	Base64   bool   `json:"base64"`
}

// Filename builds "{name}_{YYYYmmdd_HHMMSS}{ext}", leaving out the
// timestamp when at is zero.
func Filename(name, ext string, at time.Time) string {
	if name == "" {
		name = DefaultName
	}
	if at.IsZero() {
		return name + ext
	}

	return fmt.Sprintf("%s_%s%s", name, at.Format(timestampLayout), ext)
}

// ZipCSV writes every file as a UTF-8 CSV with a header into a deflated zip.
func ZipCSV(files []File, name string, at time.Time) (*Download, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: at})
		if err != nil {
			return nil, fmt.Errorf("could not add %s to zip: %w", f.Name, err)
		}
		if err := WriteCSV(w, f.Frame); err != nil {
			return nil, fmt.Errorf("could not write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("could not close zip: %w", err)
	}

	return &Download{
		Content:  base64.StdEncoding.EncodeToString(buf.Bytes()),
		Filename: Filename(name, ".zip", at),
		Type:     ZipType,
		Base64:   true,
	}, nil
}

// WriteCSV writes frame as CSV, nil values as empty cells.
func WriteCSV(w io.Writer, frame *relation.Frame) error {
	cw := csv.NewWriter(w)
	if frame == nil {
		frame = &relation.Frame{}
	}
	if err := cw.Write(frame.Columns); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	record := make([]string, len(frame.Columns))
	for _, row := range frame.Rows {
		for i, v := range row {
			record[i] = Cell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("could not write row: %w", err)
		}
	}
	cw.Flush()

	return cw.Error() //nolint: wrapcheck
}

// Cell renders a value for a text cell.
func Cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format(timeLayout)
	case bool:
		if val {
			return "True"
		}

		return "False"
	}

	return format.Scalar(v)
}

// XLSX writes one sheet per file, in order, with a header row.
func XLSX(files []File, name string, at time.Time) (*Download, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, file := range files {
		sheet := SheetName(file.Name, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("could not rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("could not create sheet %s: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, file.Frame); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not write workbook: %w", err)
	}

	return &Download{
		Content:  base64.StdEncoding.EncodeToString(buf.Bytes()),
		Filename: Filename(name, ".xlsx", at),
		Type:     XLSXType,
		Base64:   true,
	}, nil
}

func writeSheet(f *excelize.File, sheet string, frame *relation.Frame) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("could not open stream writer: %w", err)
	}
	if frame == nil {
		frame = &relation.Frame{}
	}

	header := make([]any, len(frame.Columns))
	for i, c := range frame.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	for i, row := range frame.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("could not address row %d: %w", i, err)
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = sheetValue(v)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("could not write row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("could not flush sheet: %w", err)
	}

	return nil
}

// sheetValue keeps numbers, booleans and times typed and renders the rest as text.
func sheetValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool, time.Time, int, int32, int64, float32, float64:
		return val
	}
	if f, ok := format.AsFloat(v); ok {
		return f
	}

	return Cell(v)
}

// SheetName derives a valid sheet name: no more than 31 characters and none
// of : \ / ? * [ ].
func SheetName(name string, index int) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
	}
	if ext := []rune(".csv"); len(out) > len(ext) && string(out[len(out)-len(ext):]) == string(ext) {
		out = out[:len(out)-len(ext)]
	}
	if len(out) > 31 {
		out = out[:31]
	}
	if len(out) == 0 {
		return fmt.Sprintf("Sheet%d", index+1)
	}

	return string(out)
}
