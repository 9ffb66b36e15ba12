package charts

import (
	"fmt"
	"nerisdash/pkg/format"
)

// Option is a dropdown entry.
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Options builds dropdown options for values. A non-empty allLabel prepends
// an option with allValue. formatLabel defaults to the plain value.
func Options(values []any, allLabel, allValue string, formatLabel format.Formatter) []Option {
	out := make([]Option, 0, len(values)+1)
	if allLabel != "" {
		out = append(out, Option{Label: allLabel, Value: allValue})
	}
	for _, v := range values {
		label := fmt.Sprint(v)
		if formatLabel != nil {
			label = formatLabel(v)
		}
		out = append(out, Option{Label: label, Value: v})
	}

	return out
}
