package filters

import (
	"fmt"
	"nerisdash/pkg/format"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Names of the built-in filter types.
const (
	BooleanName         = "boolean"
	CategoricalName     = "categorical"
	DateGTEName         = "date_gte"
	DateLTEName         = "date_lte"
	CategoricalListName = "categorical_list"
	PrefixName          = "prefix"
)

// AllValue is the "no filter" sentinel used by categorical style filters.
const AllValue = "all"

// BuildFunc turns a field expression and a filter value into a WHERE
// condition. It returns nil when the value does not restrict anything.
type BuildFunc func(field string, value any) exp.Expression

// Type describes how values of one kind of filter become SQL.
type Type struct {
	Name    string
	Default any
	Build   BuildFunc
}

var (
	// Boolean restricts to rows where field is true when the value is truthy.
	Boolean = &Type{Name: BooleanName, Default: false, Build: booleanCondition} //nolint: gochecknoglobals
	// Categorical matches a single value.
	Categorical = &Type{Name: CategoricalName, Default: AllValue, Build: categoricalCondition} //nolint: gochecknoglobals
	// DateGTE keeps rows on or after a date.
	DateGTE = &Type{Name: DateGTEName, Default: nil, Build: dateCondition(true)} //nolint: gochecknoglobals
	// DateLTE keeps rows on or before a date.
	DateLTE = &Type{Name: DateLTEName, Default: nil, Build: dateCondition(false)} //nolint: gochecknoglobals
	// CategoricalList matches any of a list of values.
	CategoricalList = &Type{Name: CategoricalListName, Default: AllValue, Build: categoricalListCondition} //nolint: gochecknoglobals
	// Prefix matches hierarchical paths starting with any of the values.
	Prefix = &Type{Name: PrefixName, Default: AllValue, Build: prefixCondition} //nolint: gochecknoglobals

	builtin = map[string]*Type{ //nolint: gochecknoglobals
		BooleanName:         Boolean,
		CategoricalName:     Categorical,
		DateGTEName:         DateGTE,
		DateLTEName:         DateLTE,
		CategoricalListName: CategoricalList,
		PrefixName:          Prefix,
	}
)

// Lookup returns the built-in type registered under name.
func Lookup(name string) (*Type, error) {
	t, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("unknown filter type %q", name)
	}

	return t, nil
}

func booleanCondition(field string, value any) exp.Expression {
	if !truthy(value) {
		return nil
	}

	return goqu.L(field).Eq(true)
}

func categoricalCondition(field string, value any) exp.Expression {
	if !truthy(value) || isAll(value) {
		return nil
	}

	return goqu.L(field).Eq(sqlValue(value))
}

func dateCondition(gte bool) BuildFunc {
	return func(field string, value any) exp.Expression {
		if !truthy(value) {
			return nil
		}
		date := fmt.Sprint(value)
		if gte {
			return goqu.L(field).Gte(date)
		}

		return goqu.L(field).Lte(date)
	}
}

func categoricalListCondition(field string, value any) exp.Expression {
	if !truthy(value) || isAll(value) {
		return nil
	}

	list, ok := asList(value)
	if !ok {
		return goqu.L(field).Eq(sqlValue(value))
	}

	values := make([]any, 0, len(list))
	for _, v := range list {
		values = append(values, sqlValue(v))
	}

	return goqu.L(field).In(values)
}

func prefixCondition(field string, value any) exp.Expression {
	if !truthy(value) || isAll(value) {
		return nil
	}

	list, ok := asList(value)
	if !ok {
		return goqu.L(field).Like(fmt.Sprint(value) + "%")
	}

	likes := make([]exp.Expression, 0, len(list))
	for _, v := range list {
		likes = append(likes, goqu.L(field).Like(format.Scalar(v)+"%"))
	}

	return goqu.Or(likes...)
}

// truthy mirrors the loose truthiness the filter store relies on: nil, false,
// zero, empty strings and empty lists mean "unset".
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	}
	if f, ok := format.AsFloat(v); ok {
		return f != 0
	}

	return true
}

func isAll(v any) bool {
	s, ok := v.(string)

	return ok && s == AllValue
}

func asList(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}

		return out, true
	}

	return nil, false
}

// sqlValue keeps numbers numeric (so they render unquoted) and turns
// integral JSON numbers into integers.
func sqlValue(v any) any {
	switch v.(type) {
	case string, bool:
		return v
	}
	if i, ok := format.AsInt(v); ok {
		return i
	}
	if f, ok := format.AsFloat(v); ok {
		return f
	}

	return fmt.Sprint(v)
}
