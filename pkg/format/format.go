// Package format holds the small text helpers used to render filter values,
// chart labels and summary statistics.
package format

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.English) //nolint: gochecknoglobals
	titler  = cases.Title(language.English)        //nolint: gochecknoglobals
)

// EnumText converts CAPS_UNDERSCORE_CASE to Reader Friendly Case.
func EnumText(text string) string {
	return TitleCase(text)
}

// EnumValue is EnumText as a Formatter.
func EnumValue(v any) string {
	return EnumText(fmt.Sprint(v))
}

// TitleCase converts snake_case to Title Case.
func TitleCase(text string) string {
	return titler.String(strings.ReplaceAll(text, "_", " "))
}

// Hour renders an hour of day as 12a, 1a ... 11a, 12p, 1p ... 11p. Values that
// are not an hour in [0, 24) are rendered as-is.
func Hour(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	hour, ok := AsInt(v)
	if !ok || hour < 0 || hour >= 24 {
		return fmt.Sprint(v)
	}

	switch {
	case hour == 0:
		return "12a"
	case hour < 12:
		return fmt.Sprintf("%da", hour)
	case hour == 12:
		return "12p"
	default:
		return fmt.Sprintf("%dp", hour-12)
	}
}

// SecondsToMinutesSeconds renders a number of seconds as "Xm Ys". nil yields
// def, values that are not numeric yield def as well.
func SecondsToMinutesSeconds(v any, def string) string {
	if v == nil {
		return def
	}

	f, ok := AsFloat(v)
	if !ok {
		return def
	}
	total := int64(f)

	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

// Int renders n with thousands separators.
func Int(n int64) string {
	return printer.Sprintf("%d", n)
}

// Percent renders p with one decimal.
func Percent(p float64) string {
	return printer.Sprintf("%.1f%%", p)
}

// AsInt converts JSON-ish numeric values (ints, floats with no fraction and
// digit strings) to int64.
func AsInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true //nolint: gosec
	case float32:
		if float64(n) == math.Trunc(float64(n)) {
			return int64(n), true
		}
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)

		return i, err == nil
	}

	return 0, false
}

// AsFloat converts numeric values and numeric strings to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)

		return f, err == nil
	case interface{ Float64() float64 }: // e.g. DuckDB DECIMAL
		return n.Float64(), true
	}
	if i, ok := AsInt(v); ok {
		return float64(i), true
	}

	return 0, false
}

// Formatter renders a single filter value.
type Formatter func(v any) string

// Default is the fallback display formatter for filter values.
func Default(v any) string {
	switch val := v.(type) {
	case nil:
		return "All"
	case string:
		if val == "all" {
			return "All"
		}

		return val
	case bool:
		if val {
			return "Yes"
		}

		return "No"
	case []any:
		if len(val) == 0 {
			return "None"
		}
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, Scalar(item))
		}

		return strings.Join(parts, ", ")
	case []string:
		if len(val) == 0 {
			return "None"
		}

		return strings.Join(val, ", ")
	}

	return Scalar(v)
}

// Scalar renders a scalar value, printing integral floats without a fraction.
func Scalar(v any) string {
	if f, ok := v.(float64); ok {
		if i, ok := AsInt(f); ok {
			return strconv.FormatInt(i, 10)
		}

		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	return fmt.Sprint(v)
}

// RangeFormatter returns a formatter that collapses a list of values forming a
// consecutive run in order into "first - last". Other lists are rendered in
// order, values not present in order going last. item formats each value; nil
// means Scalar.
func RangeFormatter(order []any, item Formatter) Formatter {
	if item == nil {
		item = Scalar
	}

	index := func(v any) int {
		for i, o := range order {
			if equalValues(o, v) {
				return i
			}
		}

		return -1
	}

	return func(v any) string {
		if v == nil {
			return "All"
		}
		if s, ok := v.(string); ok && s == "all" {
			return "All"
		}

		values, ok := v.([]any)
		if !ok {
			return item(v)
		}
		if len(values) == 0 {
			return "None"
		}

		sorted := make([]any, len(values))
		copy(sorted, values)
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := index(sorted[i]), index(sorted[j])
			if a < 0 {
				return false
			}
			if b < 0 {
				return true
			}

			return a < b
		})

		if isConsecutive(sorted, index) {
			return item(sorted[0]) + " - " + item(sorted[len(sorted)-1])
		}

		parts := make([]string, 0, len(sorted))
		for _, s := range sorted {
			parts = append(parts, item(s))
		}

		return strings.Join(parts, ", ")
	}
}

// isConsecutive expects values already sorted by index.
func isConsecutive(values []any, index func(any) int) bool {
	if len(values) < 2 {
		return false
	}
	prev := index(values[0])
	if prev < 0 {
		return false
	}
	for _, v := range values[1:] {
		i := index(v)
		if i < 0 || i-prev != 1 {
			return false
		}
		prev = i
	}

	return true
}

// Equal compares JSON-ish values: numbers of any type by value, lists
// element by element, anything else deeply.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := number(a); ok {
		fb, ok := number(b)

		return ok && fa == fb
	}

	la, aok := list(a)
	lb, bok := list(b)
	if aok || bok {
		if !aok || !bok || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !Equal(la[i], lb[i]) {
				return false
			}
		}

		return true
	}

	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch v.(type) {
	case string, bool:
		return 0, false
	}

	return AsFloat(v)
}

func list(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}

// equalValues compares values decoded from JSON with values declared in Go,
// so that 3.0 matches 3.
func equalValues(a, b any) bool {
	if ai, ok := AsInt(a); ok {
		if _, isString := a.(string); !isString {
			if bi, ok := AsInt(b); ok {
				if _, isString := b.(string); !isString {
					return ai == bi
				}
			}
		}
	}

	return reflect.DeepEqual(a, b)
}
