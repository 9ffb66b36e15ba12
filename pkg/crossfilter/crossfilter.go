// Package crossfilter keeps chart selections and the shared filter store in
// sync. Charts both read from and write to the store, so an update has to
// tell real selections apart from the echo of a figure being redrawn.
package crossfilter

import (
	"fmt"
	"math"
	"nerisdash/pkg/filters"
	"nerisdash/pkg/format"
	"sort"
	"strconv"
	"strings"
)

// Selection is the selectedData or clickData of a chart.
type Selection struct {
	Points []map[string]any `json:"points,omitempty"`
	Range  map[string][]any `json:"range,omitempty"`
}

func (s *Selection) empty() bool {
	return s == nil || (len(s.Points) == 0 && len(s.Range) == 0)
}

// Mapping maps point attributes ("x", "y", "id", ...) to filter keys. Two
// keys map a continuous range to its minimum and maximum.
type Mapping map[string][]string

func (m Mapping) keys() []string {
	seen := map[string]bool{}
	var out []string
	for _, keys := range m {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)

	return out
}

// Input describes one crossfilter callback.
type Input struct {
	// TriggerID is the component that fired; ComponentID is this chart.
	TriggerID   string
	ComponentID string
	Selected    *Selection
	Click       *Selection
	Filters     filters.Values
	Mapping     Mapping
	// XOrder and YOrder map numeric axis positions back to labels.
	XOrder []any
	YOrder []any
	// Default is the value of a cleared filter, filters.AllValue when nil.
	Default any
	// Hierarchical enables zoom-out handling of sunburst clicks.
	Hierarchical bool
	// ClearButtonID is a button that clears this chart's filters.
	ClearButtonID string
}

// Result of Update. When Suppress is set nothing must be updated. Otherwise
// Store, when non-nil, replaces the filter store, and Component holds the
// filters the chart is redrawn with, which never include its own keys.
type Result struct {
	Suppress  bool
	Store     filters.Values
	Component filters.Values
}

// Update resolves a crossfilter callback.
func Update(in Input) Result {
	def := in.Default
	if def == nil {
		def = filters.AllValue
	}
	if in.Filters == nil {
		in.Filters = filters.Values{}
	}

	selfTriggered := in.TriggerID == in.ComponentID
	clearTriggered := in.ClearButtonID != "" && in.TriggerID == in.ClearButtonID
	isClick := in.Click != nil && in.Selected == nil

	click := in.Click
	if selfTriggered && isClick && in.Hierarchical {
		click = zoomOut(click, def)
	}
	data := in.Selected
	if data.empty() {
		data = click
	}
	keys := in.Mapping.keys()

	if !selfTriggered && !clearTriggered {
		return Result{Component: exclude(in.Filters, keys)}
	}

	var store filters.Values
	if clearTriggered || data.empty() {
		if !clearTriggered && !isClick && active(in.Filters, keys, def) {
			// a redraw cleared the selection while filters are active
			return Result{Suppress: true}
		}
		store = withDefaults(in.Filters, keys, def)
	} else {
		store = process(data, in, def)
	}

	if unchanged(store, in.Filters, keys) {
		return Result{Suppress: true}
	}

	return Result{Store: store, Component: exclude(store, keys)}
}

// zoomOut replaces the ID of a clicked center node (percentEntry 1) with its
// parent, or def for top level nodes.
func zoomOut(s *Selection, def any) *Selection {
	if s == nil || len(s.Points) == 0 {
		return s
	}

	out := &Selection{Range: s.Range, Points: make([]map[string]any, 0, len(s.Points))}
	for _, p := range s.Points {
		id, isString := p["id"].(string)
		pe, _ := format.AsFloat(p["percentEntry"])
		if pe != 1 || !isString || format.Equal(id, def) {
			out.Points = append(out.Points, p)

			continue
		}

		cp := make(map[string]any, len(p))
		for k, v := range p {
			cp[k] = v
		}
		if i := strings.LastIndex(id, "||"); i >= 0 {
			cp["id"] = id[:i]
		} else {
			cp["id"] = def
		}
		out.Points = append(out.Points, cp)
	}

	return out
}

func exclude(values filters.Values, keys []string) filters.Values {
	out := make(filters.Values, len(values))
	for k, v := range values {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}

	return out
}

func active(values filters.Values, keys []string, def any) bool {
	for _, k := range keys {
		if !format.Equal(values[k], def) {
			return true
		}
	}

	return false
}

func withDefaults(values filters.Values, keys []string, def any) filters.Values {
	out := exclude(values, nil)
	for _, k := range keys {
		out[k] = def
	}

	return out
}

func unchanged(a, b filters.Values, keys []string) bool {
	for _, k := range keys {
		if !format.Equal(a[k], b[k]) {
			return false
		}
	}

	return true
}

func process(data *Selection, in Input, def any) filters.Values {
	points := parsePoints(data, in.XOrder, in.YOrder)
	rangeX, rangeY := parseRange(data, in.XOrder, in.YOrder)

	selections := map[string]*set{
		"x": points.get("x").union(rangeX),
		"y": points.get("y").union(rangeY),
	}
	for attr, values := range points {
		if attr != "x" && attr != "y" {
			selections[attr] = values
		}
	}

	out := exclude(in.Filters, nil)
	attrs := make([]string, 0, len(selections))
	for attr := range selections {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	for _, attr := range attrs {
		if keys := in.Mapping[attr]; len(keys) > 0 {
			applySelection(out, keys, selections[attr], def)
		}
	}

	return out
}

type attributes map[string]*set

func (a attributes) get(k string) *set {
	if s, ok := a[k]; ok {
		return s
	}

	return newSet()
}

func parsePoints(data *Selection, xOrder, yOrder []any) attributes {
	out := attributes{}
	for _, p := range data.Points {
		for k, raw := range p {
			if _, ok := out[k]; !ok {
				out[k] = newSet()
			}

			var (
				v  any
				ok bool
			)
			switch k {
			case "x":
				v, ok = resolvePoint(raw, xOrder, false)
			case "y":
				v, ok = resolvePoint(raw, yOrder, true)
			default:
				v, ok = raw, true
			}
			if ok {
				out[k].add(v)
			}
		}
	}

	return out
}

// resolvePoint maps a point coordinate to its label. Numeric positions are
// rounded to the nearest index; out of range positions are dropped.
func resolvePoint(v any, order []any, digitStrings bool) (any, bool) {
	if order == nil {
		return v, true
	}

	if _, isString := v.(string); !isString {
		if f, ok := format.AsFloat(v); ok {
			idx := int(math.RoundToEven(f))
			if idx < 0 || idx >= len(order) {
				return nil, false
			}

			return order[idx], true
		}
	}

	if s, ok := v.(string); ok && digitStrings && isDigits(s) {
		n, err := strconv.Atoi(s)
		if err == nil && contains(order, n) {
			return n, true
		}
	}

	return v, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func contains(order []any, v any) bool {
	for _, o := range order {
		if format.Equal(o, v) {
			return true
		}
	}

	return false
}

func parseRange(data *Selection, xOrder, yOrder []any) (*set, *set) {
	return resolveRange(data.Range["x"], xOrder), resolveRange(data.Range["y"], yOrder)
}

// resolveRange maps a [min, max] axis range to the labels it covers, or
// keeps the raw pair for continuous axes.
func resolveRange(pair []any, order []any) *set {
	s := newSet()
	if len(pair) != 2 {
		return s
	}
	if order == nil {
		s.add(pair[0])
		s.add(pair[1])

		return s
	}

	lo, ok1 := format.AsFloat(pair[0])
	hi, ok2 := format.AsFloat(pair[1])
	if !ok1 || !ok2 {
		return s
	}
	for idx := int(math.RoundToEven(lo)); idx <= int(math.RoundToEven(hi)); idx++ {
		if idx >= 0 && idx < len(order) {
			s.add(order[idx])
		}
	}

	return s
}

func applySelection(values filters.Values, keys []string, selected *set, def any) {
	items := selected.items()
	if len(items) == 0 || (len(items) == 1 && format.Equal(items[0], def)) {
		for _, k := range keys {
			values[k] = def
		}

		return
	}

	if len(keys) == 2 {
		sortValues(items)
		values[keys[0]] = items[0]
		values[keys[1]] = items[len(items)-1]

		return
	}

	if ints, ok := asInts(items); ok {
		sort.Slice(ints, func(i, j int) bool { return ints[i] < ints[j] })
		list := make([]any, len(ints))
		for i, n := range ints {
			list[i] = n
		}
		values[keys[0]] = list

		return
	}

	sortValues(items)
	values[keys[0]] = items
}

// asInts converts every value to an int, as for hours sent as strings.
func asInts(values []any) ([]int64, bool) {
	out := make([]int64, 0, len(values))
	for _, v := range values {
		if _, isBool := v.(bool); isBool {
			return nil, false
		}
		n, ok := format.AsInt(v)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}

	return out, true
}

func sortValues(values []any) {
	sort.SliceStable(values, func(i, j int) bool { return less(values[i], values[j]) })
}

func less(a, b any) bool {
	_, as := a.(string)
	_, bs := b.(string)
	if !as && !bs {
		fa, aok := format.AsFloat(a)
		fb, bok := format.AsFloat(b)
		if aok && bok {
			return fa < fb
		}
	}

	return fmt.Sprint(a) < fmt.Sprint(b)
}

// set keeps unique values in insertion order; numbers are unique by value.
type set struct {
	index map[string]bool
	vals  []any
}

func newSet() *set {
	return &set{index: map[string]bool{}}
}

func (s *set) key(v any) string {
	if _, isString := v.(string); !isString {
		if f, ok := format.AsFloat(v); ok {
			return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
		}
	}

	return fmt.Sprintf("%T:%v", v, v)
}

func (s *set) add(v any) {
	k := s.key(v)
	if s.index[k] {
		return
	}
	s.index[k] = true
	s.vals = append(s.vals, v)
}

func (s *set) union(o *set) *set {
	out := newSet()
	for _, v := range s.vals {
		out.add(v)
	}
	for _, v := range o.vals {
		out.add(v)
	}

	return out
}

func (s *set) items() []any {
	return append([]any(nil), s.vals...)
}
