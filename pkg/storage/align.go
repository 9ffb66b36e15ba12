package storage

import (
	"encoding/json"
	"fmt"
	"nerisdash/pkg/format"
	"nerisdash/pkg/relation"
	"nerisdash/pkg/serrors"
	"strconv"
	"strings"
	"time"
)

// Column types understood by Align.Types.
const (
	TypeBool     = "boolean"
	TypeInt      = "int64"
	TypeFloat    = "float64"
	TypeString   = "string"
	TypeCategory = "category"
)

// Align describes conversions applied to query results after loading.
type Align struct {
	// ParseDates lists columns parsed as times. Unparseable values become nil
	// and zoned times are converted to UTC.
	ParseDates []string
	// Types maps columns to one of the Type constants.
	Types map[string]string
	// JSONColumns lists columns holding JSON text to decode.
	JSONColumns []string
}

var dateLayouts = []string{ //nolint: gochecknoglobals
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// AlignFrame applies a to frame in place. Columns missing from frame are
// ignored.
func AlignFrame(frame *relation.Frame, a Align) error {
	for _, col := range a.ParseDates {
		mapColumn(frame, col, func(v any) (any, error) { return parseDate(v), nil })
	}

	for col, typ := range a.Types {
		convert, err := converter(typ)
		if err != nil {
			return err
		}
		var convErr error
		mapColumn(frame, col, func(v any) (any, error) {
			out, err := convert(v)
			if err != nil && convErr == nil {
				convErr = serrors.Wrap(serrors.ErrBadRequest, err, "could not convert column %s to %s", col, typ)
			}

			return out, err
		})
		if convErr != nil {
			return convErr
		}
	}

	for _, col := range a.JSONColumns {
		var jsonErr error
		mapColumn(frame, col, func(v any) (any, error) {
			out, err := decodeJSON(v)
			if err != nil && jsonErr == nil {
				jsonErr = fmt.Errorf("could not decode json column %s: %w", col, err)
			}

			return out, err
		})
		if jsonErr != nil {
			return jsonErr
		}
	}

	return nil
}

func mapColumn(frame *relation.Frame, col string, fn func(any) (any, error)) {
	idx := frame.Index(col)
	if idx < 0 {
		return
	}
	for _, row := range frame.Rows {
		if out, err := fn(row[idx]); err == nil {
			row[idx] = out
		}
	}
}

func parseDate(v any) any {
	switch val := v.(type) {
	case time.Time:
		if val.Location() == time.UTC {
			return val
		}

		return val.UTC()
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(val)); err == nil {
				return t.UTC()
			}
		}
	}

	return nil
}

func converter(typ string) (func(any) (any, error), error) {
	switch typ {
	case TypeBool, "bool":
		return toBool, nil
	case TypeInt, "int", "Int64":
		return toInt, nil
	case TypeFloat, "float":
		return toFloat, nil
	case TypeString, TypeCategory, "str":
		return func(v any) (any, error) {
			if v == nil {
				return nil, nil
			}

			return format.Scalar(v), nil
		}, nil
	}

	return nil, serrors.With(serrors.ErrBadRequest, "unknown column type %q", typ)
}

func toBool(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("could not parse bool: %w", err)
		}

		return b, nil
	}
	if n, ok := format.AsFloat(v); ok {
		return n != 0, nil
	}

	return nil, fmt.Errorf("unsupported bool value %v", v)
}

func toInt(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.(bool); ok {
		if b {
			return int64(1), nil
		}

		return int64(0), nil
	}
	if n, ok := format.AsInt(v); ok {
		return n, nil
	}

	return nil, fmt.Errorf("unsupported int value %v", v)
}

func toFloat(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if f, ok := format.AsFloat(v); ok {
		return f, nil
	}

	return nil, fmt.Errorf("unsupported float value %v", v)
}

func decodeJSON(v any) (any, error) {
	var raw []byte
	switch val := v.(type) {
	case string:
		raw = []byte(val)
	case []byte:
		raw = val
	default:
		return v, nil
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err //nolint: wrapcheck
	}

	return out, nil
}
