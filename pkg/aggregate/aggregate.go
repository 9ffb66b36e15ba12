// Package aggregate describes groups of summary statistics computed in a
// single aggregate query.
package aggregate

import (
	"fmt"
	"math"
	"math/big"
	"nerisdash/pkg/format"

	"github.com/doug-martin/goqu/v9"
)

// Extractor turns a raw aggregate value into its display form.
type Extractor func(value, def any) any

// Stat is one aggregate expression, e.g. COUNT(*) AS total.
type Stat struct {
	Expr    string
	Alias   string
	Default any
	Extract Extractor
}

// DefaultExtractor renders integers with thousands separators, falls back to
// the string form and uses def for missing values.
func DefaultExtractor(value, def any) any {
	if value == nil {
		return fmt.Sprint(def)
	}
	if f, ok := value.(float64); ok && math.IsNaN(f) {
		return fmt.Sprint(def)
	}
	if i, ok := truncInt(value); ok {
		return format.Int(i)
	}

	return fmt.Sprint(value)
}

func truncInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	case *big.Int: // DuckDB HUGEINT, e.g. SUM over integers
		return n.Int64(), n.IsInt64()
	case interface{ Float64() float64 }: // DuckDB DECIMAL
		return int64(n.Float64()), true
	}

	return format.AsInt(v)
}

// Group is a set of stats read from one row.
type Group struct {
	Stats []Stat
}

// NewGroup builds a group.
func NewGroup(stats ...Stat) Group {
	return Group{Stats: stats}
}

// Defaults returns the values used when no rows match.
func (g Group) Defaults() map[string]any {
	out := make(map[string]any, len(g.Stats))
	for _, s := range g.Stats {
		out[s.Alias] = s.Default
	}

	return out
}

// Expressions returns the aliased select expressions of the group.
func (g Group) Expressions() []any {
	out := make([]any, 0, len(g.Stats))
	for _, s := range g.Stats {
		out = append(out, goqu.L(s.Expr).As(s.Alias))
	}

	return out
}

// Extract applies each stat's extractor to row.
func (g Group) Extract(row map[string]any) map[string]any {
	out := make(map[string]any, len(g.Stats))
	for _, s := range g.Stats {
		extract := s.Extract
		if extract == nil {
			extract = DefaultExtractor
		}
		out[s.Alias] = extract(row[s.Alias], s.Default)
	}

	return out
}
