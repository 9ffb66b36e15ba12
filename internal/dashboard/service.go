// Package dashboard implements the operations behind the cornsacks dashboard
// panels. Every operation is stateless: it takes the filter store and the
// caller's authorized departments and returns what the panel renders.
package dashboard

import (
	"context"
	"nerisdash/internal/cornsacks"
	"nerisdash/pkg/cache"
	"nerisdash/pkg/filters"
	"nerisdash/pkg/geo"
	"nerisdash/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// Component IDs of the dashboard, as sent back in trigger IDs.
const (
	TrendlineChart       = "trendline-chart"
	ClearTrendlineButton = "clear-trendline-filter"
	HeatmapChart         = "day-hour-heatmap"
	ClearHeatmapButton   = "clear-heatmap-filter"
	IncidentTypesChart   = "incident-types-categorical-chart"
	LocationUseChart     = "location-use-categorical-chart"
	ZoomToPointsButton   = "zoom-to-points-button"
	AddressDropdown      = "address-dropdown"
	FiltersStore         = "filters"
)

// DefaultMaxPoints caps the sampled incident points of the map.
const DefaultMaxPoints = 10000

// Options configures a Service.
type Options struct {
	// MaxPoints caps the sampled incident points of the map.
	MaxPoints int
	// BasemapURL is the tile URL template handed to the map.
	BasemapURL string
	// Timezone labels the hour of day axis.
	Timezone string
	// Now overrides the clock of export timestamps.
	Now func() time.Time
}

// Service runs the dashboard operations.
type Service struct {
	tables *cornsacks.Tables
	memo   *cache.Memoizer
	arcgis geo.ArcGIS
	opts   Options
	now    func() time.Time
}

// New builds a Service. memo may be nil to disable memoization.
func New(tables *cornsacks.Tables, memo *cache.Memoizer, arcgis geo.ArcGIS, opts Options) *Service {
	if opts.MaxPoints <= 0 {
		opts.MaxPoints = DefaultMaxPoints
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{tables: tables, memo: memo, arcgis: arcgis, opts: opts, now: now}
}

// Scope is the filter store of a request and the departments its session may
// read. Authorized is resolved server side and never decoded from requests.
type Scope struct {
	Filters    filters.Values `json:"filters"`
	Authorized []any          `json:"-"`
}

// WithFilters returns a copy of s using values.
func (s Scope) WithFilters(values filters.Values) Scope {
	return Scope{Filters: values, Authorized: s.Authorized}
}

func (s Scope) lookup() filters.CacheLookup {
	return func(key string) (any, bool) {
		if key != cornsacks.AuthorizedNerisIDs || len(s.Authorized) == 0 {
			return nil, false
		}

		return s.Authorized, true
	}
}

func (s Scope) values() filters.Values {
	if s.Filters == nil {
		return filters.Values{}
	}

	return s.Filters
}

func (s *Service) incidents(scope Scope) *cornsacks.Incidents {
	return s.tables.Incidents(scope.values(), scope.lookup())
}

// memoArgs keys memoized results. Authorized is part of the key so sessions
// with different permissions never share results.
type memoArgs struct {
	Filters    filters.Values `json:"filters"`
	Authorized []any          `json:"authorized"`
	Extra      any            `json:"extra,omitempty"`
}

func memoize[T any](ctx context.Context, s *Service, name string, scope Scope, extra any,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	stop := logger.Timed(ctx, name)
	defer stop()

	var (
		v   T
		err error
	)
	if s.memo == nil {
		v, err = fn(ctx)
	} else {
		args := memoArgs{Filters: scope.values(), Authorized: scope.Authorized, Extra: extra}
		v, err = cache.Memoize(ctx, s.memo, name, args, fn)
	}
	if err != nil {
		logger.Error(ctx, "dashboard operation failed", zap.String("operation", name), zap.Error(err))
	}

	return v, err //nolint: wrapcheck
}

func isActive(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != "" && val != filters.AllValue
	case []any:
		return len(val) > 0
	}

	return true
}

// Department returns the department filter, "" when none is active.
func Department(values filters.Values) string {
	v, ok := values[cornsacks.NerisIDDept].(string)
	if !ok || !isActive(v) {
		return ""
	}

	return v
}

func copyValues(values filters.Values) filters.Values {
	out := make(filters.Values, len(values))
	for k, v := range values {
		out[k] = v
	}

	return out
}

func without(values filters.Values, key string) filters.Values {
	out := copyValues(values)
	delete(out, key)

	return out
}
