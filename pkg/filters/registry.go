// Package filters maps dashboard filter state to SQL WHERE conditions.
//
// A Registry groups filter configs by the table they apply to. Each config
// names the UI key, the SQL field (any DuckDB expression) and a Type that
// knows how to turn a value into a goqu expression.
package filters

import (
	"nerisdash/pkg/format"
	"sort"

	"github.com/doug-martin/goqu/v9/exp"
)

// Source tells where a filter value comes from.
type Source string

const (
	// SourceUI values are sent by the browser.
	SourceUI Source = "ui"
	// SourceCache values are looked up server side (e.g. permitted department IDs).
	SourceCache Source = "cache"
)

// DefaultDisplayMessage is returned by FormatDisplay when no filter is active.
const DefaultDisplayMessage = "All filters at default"

// Values is the filter state as stored by the dashboard.
type Values map[string]any

// CacheLookup returns the server side value for a cache sourced filter.
type CacheLookup func(key string) (any, bool)

// Config describes one filter.
type Config struct {
	Key                string
	Field              string
	Type               *Type
	DisplayName        string
	Formatter          format.Formatter
	ExcludeFromDisplay bool
	Clearable          bool
	Source             Source
}

// Option customises a Config.
type Option func(*Config)

// WithDisplayName sets the label used in the filter display.
func WithDisplayName(name string) Option {
	return func(c *Config) { c.DisplayName = name }
}

// WithFormatter sets the formatter used in the filter display.
func WithFormatter(f format.Formatter) Option {
	return func(c *Config) { c.Formatter = f }
}

// ExcludeFromDisplay hides the filter from the filter display.
func ExcludeFromDisplay() Option {
	return func(c *Config) { c.ExcludeFromDisplay = true }
}

// NotClearable keeps the filter when "clear all" is used.
func NotClearable() Option {
	return func(c *Config) { c.Clearable = false }
}

// FromCache makes the filter read its value from the server side cache.
func FromCache() Option {
	return func(c *Config) { c.Source = SourceCache }
}

// NewConfig builds a clearable, UI sourced config.
func NewConfig(key, field string, typ *Type, opts ...Option) Config {
	c := Config{
		Key:       key,
		Field:     field,
		Type:      typ,
		Clearable: true,
		Source:    SourceUI,
	}
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// Default returns the type default of the filter.
func (c Config) Default() any {
	if c.Type == nil {
		return nil
	}

	return c.Type.Default
}

// Condition builds the SQL condition for value, nil when there is nothing to filter.
func (c Config) Condition(value any) exp.Expression {
	if c.Type == nil || c.Type.Build == nil {
		return nil
	}

	return c.Type.Build(c.Field, value)
}

// DisplayItem is one active filter in the filter display.
type DisplayItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Display is the rendered filter display: either items, or a single message.
type Display struct {
	Items   []DisplayItem `json:"items,omitempty"`
	Message string        `json:"message,omitempty"`
}

type group struct {
	name    string
	configs []Config
}

// Registry holds named groups of filter configs in insertion order.
type Registry struct {
	groups []group
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddGroup appends a group, replacing an existing group with the same name.
func (r *Registry) AddGroup(name string, configs ...Config) *Registry {
	for i := range r.groups {
		if r.groups[i].name == name {
			r.groups[i].configs = configs

			return r
		}
	}
	r.groups = append(r.groups, group{name: name, configs: configs})

	return r
}

// Group returns the configs of a group, nil when unknown.
func (r *Registry) Group(name string) []Config {
	for _, g := range r.groups {
		if g.name == name {
			return g.configs
		}
	}

	return nil
}

// All returns every config across all groups, in insertion order.
func (r *Registry) All() []Config {
	var all []Config
	for _, g := range r.groups {
		all = append(all, g.configs...)
	}

	return all
}

func (r *Registry) config(key string) (Config, bool) {
	for _, g := range r.groups {
		for _, c := range g.configs {
			if c.Key == key {
				return c, true
			}
		}
	}

	return Config{}, false
}

// Defaults returns the default value of every filter.
func (r *Registry) Defaults() Values {
	out := Values{}
	for _, c := range r.All() {
		out[c.Key] = c.Default()
	}

	return out
}

// ClearableDefaults returns the default value of every clearable filter.
func (r *Registry) ClearableDefaults() Values {
	out := Values{}
	for _, c := range r.All() {
		if c.Clearable {
			out[c.Key] = c.Default()
		}
	}

	return out
}

// UIDefaults returns the defaults of UI sourced filters in the form the UI
// components expect (checklists for booleans).
func (r *Registry) UIDefaults() Values {
	out := Values{}
	for _, c := range r.All() {
		if c.Source != SourceUI {
			continue
		}
		out[c.Key] = uiValue(c, c.Default())
	}

	return out
}

// CacheKeys returns the keys of cache sourced filters.
func (r *Registry) CacheKeys() []string {
	var keys []string
	for _, c := range r.All() {
		if c.Source == SourceCache {
			keys = append(keys, c.Key)
		}
	}

	return keys
}

// ClearableUIValues returns the UI component values for keys, in order, taken
// from values (defaults when values is nil). Booleans become checklist values.
func (r *Registry) ClearableUIValues(values Values, keys []string) []any {
	if values == nil {
		values = r.Defaults()
	}

	out := make([]any, 0, len(keys))
	for _, key := range keys {
		c, ok := r.config(key)
		if !ok || !c.Clearable {
			out = append(out, nil)

			continue
		}
		v, ok := values[key]
		if !ok {
			v = c.Default()
		}
		out = append(out, uiValue(c, v))
	}

	return out
}

func uiValue(c Config, v any) any {
	if c.Type != nil && c.Type.Name == BooleanName {
		if truthy(v) {
			return []string{c.Key}
		}

		return []string{}
	}

	return v
}

// FormatDisplay renders the active (non default) filters sorted by key.
func (r *Registry) FormatDisplay(values Values) Display {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var items []DisplayItem
	for _, key := range keys {
		value := values[key]
		c, known := r.config(key)
		if known && c.ExcludeFromDisplay {
			continue
		}
		if sameValue(value, c.Default()) {
			continue
		}

		name := c.DisplayName
		if name == "" {
			name = format.TitleCase(key)
		}
		formatter := c.Formatter
		if formatter == nil {
			formatter = format.Default
		}
		items = append(items, DisplayItem{Name: name, Value: formatter(value)})
	}

	if len(items) == 0 {
		return Display{Message: DefaultDisplayMessage}
	}

	return Display{Items: items}
}

func sameValue(a, b any) bool {
	return format.Equal(a, b)
}

// Conditions builds the WHERE conditions of configs for values. Cache sourced
// filters ignore values and use lookup instead, so clients cannot widen them.
func Conditions(configs []Config, values Values, lookup CacheLookup) []exp.Expression {
	var conds []exp.Expression
	for _, c := range configs {
		var (
			value any
			ok    bool
		)
		if c.Source == SourceCache {
			if lookup != nil {
				value, ok = lookup(c.Key)
			}
		} else {
			value, ok = values[c.Key]
		}
		if !ok || value == nil {
			continue
		}
		if cond := c.Condition(value); cond != nil {
			conds = append(conds, cond)
		}
	}

	return conds
}
