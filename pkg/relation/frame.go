package relation

import (
	"database/sql"
	"fmt"
)

// Frame is a materialised query result: column names and row values in
// column order.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}

	return len(f.Rows)
}

// Index returns the position of column, -1 when absent.
func (f *Frame) Index(column string) int {
	for i, c := range f.Columns {
		if c == column {
			return i
		}
	}

	return -1
}

// Column returns all values of column, nil when absent.
func (f *Frame) Column(column string) []any {
	idx := f.Index(column)
	if idx < 0 {
		return nil
	}

	out := make([]any, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}

	return out
}

// Value returns the value of column in row i.
func (f *Frame) Value(i int, column string) (any, bool) {
	idx := f.Index(column)
	if idx < 0 || i < 0 || i >= len(f.Rows) {
		return nil, false
	}

	return f.Rows[i][idx], true
}

// Record returns row i keyed by column name.
func (f *Frame) Record(i int) map[string]any {
	rec := make(map[string]any, len(f.Columns))
	for j, c := range f.Columns {
		rec[c] = f.Rows[i][j]
	}

	return rec
}

// Records returns every row keyed by column name.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, 0, f.Len())
	for i := range f.Rows {
		out = append(out, f.Record(i))
	}

	return out
}

// ScanFrame reads all of rows into a Frame and closes rows.
func ScanFrame(rows *sql.Rows) (*Frame, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("could not read columns: %w", err)
	}

	frame := &Frame{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		for i, v := range values {
			// drivers hand out text columns as []byte
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		frame.Rows = append(frame.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate rows: %w", err)
	}

	return frame, nil
}
