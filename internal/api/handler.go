package api

import (
	"context"
	"fmt"
	"nerisdash/internal/cornsacks"
	"nerisdash/internal/dashboard"
	"nerisdash/pkg/charts"
	"nerisdash/pkg/export"
	"nerisdash/pkg/filters"
	"nerisdash/pkg/geo"
	"nerisdash/pkg/serrors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instruments count and time the v1 operations.
type instruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	requests, err := meter.Int64Counter("nerisdash.api.requests",
		metric.WithDescription("Dashboard API requests by operation and status."))
	if err != nil {
		return nil, fmt.Errorf("could not create request counter: %w", err)
	}
	duration, err := meter.Float64Histogram("nerisdash.api.duration",
		metric.WithDescription("Dashboard API latency by operation."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("could not create duration histogram: %w", err)
	}

	return &instruments{requests: requests, duration: duration}, nil
}

func (in *instruments) record(ctx context.Context, operation string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("operation", operation), attribute.Int("status", status))
	in.requests.Add(ctx, 1, attrs)
	in.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// operation adapts a dashboard operation to a JSON handler: the body decodes
// into Req and the result encodes as the response. A nil result, which only
// operations returning an interface can produce, is 204 No Content.
func operation[Req, Resp any](in *instruments, name string, fn func(ctx context.Context, req Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()
		status := http.StatusOK
		defer func() { in.record(ctx, name, status, time.Since(start)) }()

		var req Req
		if err := decode(w, r, &req); err != nil {
			status, _ = StatusFor(err)
			writeError(ctx, w, err)

			return
		}

		resp, err := fn(ctx, req)
		if err != nil {
			status, _ = StatusFor(err)
			writeError(ctx, w, err)

			return
		}
		if any(resp) == nil {
			status = http.StatusNoContent
			w.WriteHeader(status)

			return
		}

		writeJSON(ctx, w, status, resp)
	}
}

// scope attaches the permissions of the session to a decoded filter store.
func scope(ctx context.Context, s dashboard.Scope) dashboard.Scope {
	s.Authorized = authorized(ctx)

	return s
}

type storeRequest struct {
	dashboard.Scope

	Inputs dashboard.SidebarInputs `json:"inputs"`
}

type storeResponse struct {
	Filters filters.Values `json:"filters"`
}

type syncResponse struct {
	Values []any `json:"values"`
}

type lastUpdatedResponse struct {
	LastUpdated string `json:"last_updated"`
}

type overviewRequest struct {
	dashboard.Scope

	CasualtyFF   string `json:"casualty_ff"`
	ShowStations bool   `json:"show_stations"`
}

type chartRequest struct {
	dashboard.Scope
	dashboard.ChartEvent
}

type casualtyRequest struct {
	dashboard.Scope

	CasualtyFF string `json:"casualty_ff"`
}

type mapRequest struct {
	dashboard.Scope
	dashboard.MapInput
}

type legendRequest struct {
	dashboard.Scope

	ShowStations bool `json:"show_stations"`
}

type legendResponse struct {
	Legend             geo.Legend `json:"legend"`
	DeptToggleDisabled bool       `json:"dept_toggle_disabled"`
}

type toggleRequest struct {
	Showing bool `json:"showing"`
}

type viewportRequest struct {
	dashboard.Scope
	dashboard.ViewportInput
}

type suggestionsRequest struct {
	Search string `json:"search"`
}

// feature is a GeoJSON point feature as the map hands it back.
type feature struct {
	Geometry struct {
		Coordinates [2]float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

func (f feature) toGeo() geo.Feature {
	return geo.Feature{Coordinates: f.Geometry.Coordinates, Properties: f.Properties}
}

type popupRequest struct {
	Kind    string  `json:"kind"`
	Feature feature `json:"feature"`
}

type popupResponse struct {
	HTML string `json:"html"`
	Show bool   `json:"show"`
}

type markerRequest struct {
	Feature feature     `json:"feature"`
	Hideout geo.Hideout `json:"hideout"`
}

type exportRequest struct {
	dashboard.Scope

	Format string `json:"format"`
}

// NewHandler builds the v1 routes over the dashboard service. Every route
// runs behind the session middleware, so cache sourced filters always see
// the caller's permissions.
func NewHandler(deps Deps, meter metric.Meter) (http.Handler, error) {
	in, err := newInstruments(meter)
	if err != nil {
		return nil, err
	}
	svc := deps.Dashboard

	mux := http.NewServeMux()

	// filter store
	mux.Handle("POST /v1/filters/store", operation(in, "update_store",
		func(_ context.Context, req storeRequest) (storeResponse, error) {
			return storeResponse{Filters: dashboard.UpdateStore(req.Filters, req.Inputs)}, nil
		}))
	mux.Handle("POST /v1/filters/display", operation(in, "filter_display",
		func(_ context.Context, req dashboard.Scope) (filters.Display, error) {
			return dashboard.FilterDisplay(req.Filters), nil
		}))
	mux.Handle("POST /v1/filters/sync", operation(in, "sync_ui",
		func(_ context.Context, req dashboard.Scope) (syncResponse, error) {
			return syncResponse{Values: dashboard.SyncUI(req.Filters)}, nil
		}))
	mux.Handle("POST /v1/filters/clear-trendline", operation(in, "clear_trendline",
		func(_ context.Context, req dashboard.Scope) (storeResponse, error) {
			return storeResponse{Filters: dashboard.ClearTrendline(req.Filters)}, nil
		}))
	mux.Handle("POST /v1/filters/clear-all", operation(in, "clear_all",
		func(_ context.Context, req dashboard.Scope) (dashboard.Cleared, error) {
			return dashboard.ClearAll(req.Filters), nil
		}))

	// store driven panels
	mux.Handle("POST /v1/overview", operation(in, "overview",
		func(ctx context.Context, req overviewRequest) (*dashboard.Overview, error) {
			return svc.Overview(ctx, scope(ctx, req.Scope), req.CasualtyFF, req.ShowStations)
		}))
	mux.Handle("POST /v1/last-updated", operation(in, "last_updated",
		func(ctx context.Context, req dashboard.Scope) (lastUpdatedResponse, error) {
			s, err := svc.LastUpdated(ctx, scope(ctx, req))

			return lastUpdatedResponse{LastUpdated: s}, err
		}))
	mux.Handle("POST /v1/options/states", operation(in, "state_options",
		func(ctx context.Context, req dashboard.Scope) ([]charts.Option, error) {
			return svc.StateOptions(ctx, scope(ctx, req))
		}))
	mux.Handle("POST /v1/options/departments", operation(in, "department_options",
		func(ctx context.Context, req dashboard.Scope) ([]dashboard.DepartmentOption, error) {
			return svc.DepartmentOptions(ctx, scope(ctx, req))
		}))

	// crossfilter charts
	mux.Handle("POST /v1/charts/trendline", operation(in, "trendline",
		func(ctx context.Context, req chartRequest) (dashboard.ControllerResult[dashboard.TrendlineFigure], error) {
			return svc.Trendline(ctx, scope(ctx, req.Scope), req.ChartEvent)
		}))
	mux.Handle("POST /v1/charts/heatmap", operation(in, "heatmap",
		func(ctx context.Context, req chartRequest) (dashboard.ControllerResult[dashboard.HeatmapFigure], error) {
			return svc.Heatmap(ctx, scope(ctx, req.Scope), req.ChartEvent)
		}))
	mux.Handle("POST /v1/charts/incident-types", operation(in, "incident_types",
		func(ctx context.Context, req chartRequest) (dashboard.ControllerResult[dashboard.HierarchyFigure], error) {
			return svc.IncidentTypes(ctx, scope(ctx, req.Scope), req.ChartEvent)
		}))
	mux.Handle("POST /v1/charts/location-use", operation(in, "location_use",
		func(ctx context.Context, req chartRequest) (dashboard.ControllerResult[dashboard.HierarchyFigure], error) {
			return svc.LocationUse(ctx, scope(ctx, req.Scope), req.ChartEvent)
		}))

	// other charts
	mux.Handle("POST /v1/charts/aid", operation(in, "aid_sunburst",
		func(ctx context.Context, req dashboard.Scope) (*dashboard.HierarchyFigure, error) {
			return svc.AidSunburst(ctx, scope(ctx, req))
		}))
	mux.Handle("POST /v1/charts/casualty", operation(in, "casualty_bubble",
		func(ctx context.Context, req casualtyRequest) (*dashboard.BubbleFigure, error) {
			return svc.CasualtyBubble(ctx, scope(ctx, req.Scope), req.CasualtyFF)
		}))
	mux.Handle("POST /v1/charts/summary", operation(in, "summary_cards",
		func(ctx context.Context, req dashboard.Scope) (cornsacks.SummaryCards, error) {
			return svc.SummaryCards(ctx, scope(ctx, req))
		}))
	mux.Handle("POST /v1/charts/demographics", operation(in, "demographics",
		func(ctx context.Context, req dashboard.Scope) ([]cornsacks.Demographic, error) {
			return svc.Demographics(ctx, scope(ctx, req))
		}))

	// map
	mux.Handle("POST /v1/map/layers", operation(in, "map_layers",
		func(ctx context.Context, req mapRequest) (*dashboard.MapLayers, error) {
			return svc.Map(ctx, scope(ctx, req.Scope), req.MapInput)
		}))
	mux.Handle("POST /v1/map/legend", operation(in, "map_legend",
		func(_ context.Context, req legendRequest) (legendResponse, error) {
			return legendResponse{
				Legend:             dashboard.Legend(req.Filters, req.ShowStations),
				DeptToggleDisabled: dashboard.DeptToggleDisabled(req.Filters),
			}, nil
		}))
	mux.Handle("POST /v1/map/toggle", operation(in, "toggle_stations",
		func(_ context.Context, req toggleRequest) (dashboard.StationToggle, error) {
			return dashboard.ToggleStations(req.Showing), nil
		}))
	mux.Handle("POST /v1/map/viewport", operation(in, "viewport",
		func(ctx context.Context, req viewportRequest) (any, error) {
			res, err := svc.Viewport(ctx, scope(ctx, req.Scope), req.ViewportInput)
			if err != nil || res == nil {
				return nil, err
			}

			return res, nil
		}))
	mux.Handle("POST /v1/map/address-suggestions", operation(in, "address_suggestions",
		func(ctx context.Context, req suggestionsRequest) ([]geo.AddressOption, error) {
			return svc.AddressSuggestions(ctx, req.Search)
		}))
	mux.Handle("POST /v1/map/popup", operation(in, "popup",
		func(_ context.Context, req popupRequest) (popupResponse, error) {
			html, ok, err := dashboard.Popup(req.Kind, req.Feature.toGeo())

			return popupResponse{HTML: html, Show: ok}, err
		}))
	mux.Handle("POST /v1/map/marker", operation(in, "marker",
		func(_ context.Context, req markerRequest) (geo.Marker, error) {
			return dashboard.Marker(req.Feature.toGeo(), req.Hideout), nil
		}))

	mux.Handle("POST /v1/export", operation(in, "export",
		func(ctx context.Context, req exportRequest) (*export.Download, error) {
			return svc.Export(ctx, scope(ctx, req.Scope), req.Format)
		}))

	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, serrors.With(serrors.ErrNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})

	return withSession(deps.Auth, deps.Sessions, mux), nil
}
