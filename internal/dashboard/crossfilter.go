package dashboard

import (
	"context"
	"fmt"
	"nerisdash/internal/cornsacks"
	"nerisdash/pkg/charts"
	"nerisdash/pkg/colors"
	"nerisdash/pkg/crossfilter"
	"nerisdash/pkg/filters"
	"nerisdash/pkg/format"
	"nerisdash/pkg/relation"
	"nerisdash/pkg/timeseries"
	"sort"
	"time"
)

// ChartEvent is what fired a crossfilter controller: the filter store itself
// or a selection on the chart.
type ChartEvent struct {
	TriggerID string                 `json:"trigger_id"`
	Selected  *crossfilter.Selection `json:"selected_data,omitempty"`
	Click     *crossfilter.Selection `json:"click_data,omitempty"`
}

// ControllerResult is the outcome of a crossfilter controller. Store is set
// when the chart changed the filter store; the figure is then redrawn by the
// next store update, so Figure is only set when Store is nil.
type ControllerResult[F any] struct {
	Suppressed bool           `json:"suppressed"`
	Store      filters.Values `json:"store,omitempty"`
	Figure     *F             `json:"figure,omitempty"`
}

func runController[F any](ctx context.Context, in crossfilter.Input,
	store func(filters.Values) filters.Values,
	figure func(ctx context.Context, component filters.Values) (*F, error),
) (ControllerResult[F], error) {
	res := crossfilter.Update(in)
	if res.Suppress {
		return ControllerResult[F]{Suppressed: true}, nil
	}
	if res.Store != nil {
		if store != nil {
			res.Store = store(res.Store)
		}

		return ControllerResult[F]{Store: res.Store}, nil
	}

	fig, err := figure(ctx, res.Component)
	if err != nil {
		return ControllerResult[F]{}, err
	}

	return ControllerResult[F]{Figure: fig}, nil
}

// TrendPoint is one day of the trendline.
type TrendPoint struct {
	Date       string   `json:"date"`
	Count      int64    `json:"count"`
	RollingAvg *float64 `json:"rolling_window_avg"`
}

// TrendlineFigure is the daily incident count chart.
type TrendlineFigure struct {
	Points       []TrendPoint        `json:"points"`
	Interval     timeseries.Interval `json:"interval"`
	Style        timeseries.Style    `json:"style"`
	Title        string              `json:"title"`
	YAxisTitle   string              `json:"y_axis_title"`
	RollingLabel string              `json:"rolling_window_label"`
	Description  string              `json:"description"`
}

var trendWindow = timeseries.RollingWindow{Window: 7, IncludeCurrent: false} //nolint: gochecknoglobals

func dateString(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.DateOnly)
	}

	return format.Scalar(v)
}

func trendPoints(frame *relation.Frame) []TrendPoint {
	out := make([]TrendPoint, 0, frame.Len())
	for i := 0; i < frame.Len(); i++ {
		rec := frame.Record(i)
		p := TrendPoint{Date: dateString(rec["date"])}
		p.Count, _ = format.AsInt(rec["count"])
		if avg, ok := format.AsFloat(rec["rolling_window_avg"]); ok && rec["rolling_window_avg"] != nil {
			p.RollingAvg = &avg
		}
		out = append(out, p)
	}

	return out
}

// trendlineDates cuts selected datetimes to dates, and turns a cleared range
// back into the date filter default.
func trendlineDates(store filters.Values) filters.Values {
	for _, k := range []string{cornsacks.StartDate, cornsacks.EndDate} {
		v, ok := store[k]
		if !ok || v == nil {
			continue
		}
		if v == filters.AllValue {
			store[k] = nil

			continue
		}
		if s := fmt.Sprint(v); len(s) > len(time.DateOnly) {
			store[k] = s[:len(time.DateOnly)]
		}
	}

	return store
}

// Trendline runs the trendline controller. Unlike the other charts the
// trendline is drawn with its own date range applied.
func (s *Service) Trendline(ctx context.Context, scope Scope, ev ChartEvent) (ControllerResult[TrendlineFigure], error) {
	in := crossfilter.Input{
		TriggerID:     ev.TriggerID,
		ComponentID:   TrendlineChart,
		Selected:      ev.Selected,
		Filters:       scope.values(),
		Mapping:       crossfilter.Mapping{"x": {cornsacks.StartDate, cornsacks.EndDate}},
		ClearButtonID: ClearTrendlineButton,
	}

	return runController(ctx, in, trendlineDates, func(ctx context.Context, _ filters.Values) (*TrendlineFigure, error) {
		return memoize(ctx, s, "trendline", scope, nil, func(ctx context.Context) (*TrendlineFigure, error) {
			frame, err := s.incidents(scope).TimeSeriesCounts(ctx, "call_create", timeseries.Daily, &trendWindow)
			if err != nil {
				return nil, err
			}

			fig := &TrendlineFigure{
				Points:       trendPoints(frame),
				Interval:     timeseries.Daily,
				Style:        timeseries.Daily.Style(),
				YAxisTitle:   "Incident Count",
				RollingLabel: trendWindow.Label(),
				Description:  cornsacks.DescribeRollingAverage(trendWindow),
			}
			if n := len(fig.Points); n > 0 {
				lo, errLo := time.Parse(time.DateOnly, fig.Points[0].Date)
				hi, errHi := time.Parse(time.DateOnly, fig.Points[n-1].Date)
				if errLo == nil && errHi == nil {
					fig.Title = timeseries.Daily.Title(lo, hi)
				}
			}

			return fig, nil
		})
	})
}

// HeatmapFigure is the day of week by hour of day chart.
type HeatmapFigure struct {
	Grid        charts.Grid `json:"grid"`
	Colorscale  string      `json:"colorscale"`
	Description string      `json:"description"`
}

// Heatmap runs the day by hour heatmap controller.
func (s *Service) Heatmap(ctx context.Context, scope Scope, ev ChartEvent) (ControllerResult[HeatmapFigure], error) {
	in := crossfilter.Input{
		TriggerID:     ev.TriggerID,
		ComponentID:   HeatmapChart,
		Selected:      ev.Selected,
		Filters:       scope.values(),
		Mapping:       crossfilter.Mapping{"x": {cornsacks.DayOfWeek}, "y": {cornsacks.Hour}},
		XOrder:        cornsacks.DayOrder,
		YOrder:        cornsacks.HeatmapHourOrder,
		ClearButtonID: ClearHeatmapButton,
	}

	return runController(ctx, in, nil, func(ctx context.Context, component filters.Values) (*HeatmapFigure, error) {
		scope := scope.WithFilters(component)

		return memoize(ctx, s, "heatmap", scope, nil, func(ctx context.Context) (*HeatmapFigure, error) {
			cells, err := s.incidents(scope).DayHourCounts(ctx)
			if err != nil {
				return nil, err
			}

			return &HeatmapFigure{
				Grid: charts.Heatmap(cells, cornsacks.DayOrder, cornsacks.HeatmapHourOrder,
					format.EnumValue, format.Hour),
				Colorscale:  "Burg",
				Description: cornsacks.DescribeDayHour(s.opts.Timezone),
			}, nil
		})
	})
}

// HierarchyFigure is a treemap or sunburst of hierarchical paths.
type HierarchyFigure struct {
	Type         string            `json:"type"`
	Nodes        []charts.Node     `json:"nodes"`
	Colors       map[string]string `json:"colors"`
	InitialLevel string            `json:"initial_level,omitempty"`
	MaxDepth     int               `json:"maxdepth,omitempty"`
	UIRevision   string            `json:"uirevision,omitempty"`
}

func hierarchyFigure(kind string, counts []charts.PathCount, rootLabel string, base map[string]string) *HierarchyFigure {
	nodes := charts.BuildTieredTypeNodes(counts, rootLabel)
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	if base == nil {
		base = sequenceColors(nodes)
	}

	return &HierarchyFigure{
		Type:   kind,
		Nodes:  nodes,
		Colors: colors.Hierarchical(ids, base, colors.Hierarchy, colors.HierarchyIncrement),
	}
}

// sequenceColors assigns the general color sequence to the top level nodes
// in the order they are drawn.
func sequenceColors(nodes []charts.Node) map[string]string {
	var top []string
	for _, n := range nodes {
		if n.ID != charts.RootID && (n.Parent == "" || n.Parent == charts.RootID) {
			top = append(top, n.ID)
		}
	}
	sort.Strings(top)

	out := make(map[string]string, len(top))
	for i, id := range top {
		out[id] = colors.Sequence[i%len(colors.Sequence)]
	}

	return out
}

// drillLevel is the path a hierarchical chart opens on: the first value of a
// list filter, the value itself, or the root.
func drillLevel(v any) string {
	switch val := v.(type) {
	case nil:
		return filters.AllValue
	case []any:
		if len(val) == 0 {
			return filters.AllValue
		}

		return fmt.Sprint(val[0])
	case []string:
		if len(val) == 0 {
			return filters.AllValue
		}

		return val[0]
	}

	return fmt.Sprint(v)
}

type hierarchyChart struct {
	component string
	key       string
	rootLabel string
	base      map[string]string
	maxDepth  int
	counts    func(ctx context.Context, scope Scope) ([]charts.PathCount, error)
}

func (s *Service) hierarchyController(ctx context.Context, scope Scope, ev ChartEvent,
	h hierarchyChart,
) (ControllerResult[HierarchyFigure], error) {
	in := crossfilter.Input{
		TriggerID:    ev.TriggerID,
		ComponentID:  h.component,
		Click:        ev.Click,
		Filters:      scope.values(),
		Mapping:      crossfilter.Mapping{"id": {h.key}},
		Hierarchical: true,
	}
	level := drillLevel(scope.values()[h.key])

	return runController(ctx, in, nil, func(ctx context.Context, component filters.Values) (*HierarchyFigure, error) {
		scope := scope.WithFilters(component)

		return memoize(ctx, s, h.component, scope, level, func(ctx context.Context) (*HierarchyFigure, error) {
			counts, err := h.counts(ctx, scope)
			if err != nil {
				return nil, err
			}

			fig := hierarchyFigure("treemap", counts, h.rootLabel, h.base)
			fig.InitialLevel = level
			fig.MaxDepth = h.maxDepth
			fig.UIRevision = level

			return fig, nil
		})
	})
}

// IncidentTypes runs the incident types treemap controller.
func (s *Service) IncidentTypes(ctx context.Context, scope Scope, ev ChartEvent) (ControllerResult[HierarchyFigure], error) {
	return s.hierarchyController(ctx, scope, ev, hierarchyChart{
		component: IncidentTypesChart,
		key:       cornsacks.TypeIncident,
		rootLabel: "Total Incidents",
		base:      colors.IncidentTypes,
		maxDepth:  3,
		counts: func(ctx context.Context, scope Scope) ([]charts.PathCount, error) {
			primaryOnly, _ := scope.values()[cornsacks.PrimaryOnly].(bool)

			return cornsacks.IncidentTypePathCounts(ctx, s.incidents(scope).IncidentTypes(primaryOnly))
		},
	})
}

// LocationUse runs the location use treemap controller.
func (s *Service) LocationUse(ctx context.Context, scope Scope, ev ChartEvent) (ControllerResult[HierarchyFigure], error) {
	return s.hierarchyController(ctx, scope, ev, hierarchyChart{
		component: LocationUseChart,
		key:       cornsacks.LocationUsePath,
		rootLabel: "All Locations",
		base:      colors.LocationUses,
		counts: func(ctx context.Context, scope Scope) ([]charts.PathCount, error) {
			return s.incidents(scope).LocationUsePathCounts(ctx)
		},
	})
}
