package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"nerisdash/internal/cornsacks"
	"nerisdash/pkg/colors"
	"nerisdash/pkg/filters"
	"nerisdash/pkg/format"
	"nerisdash/pkg/geo"
	"nerisdash/pkg/relation"
	"nerisdash/pkg/serrors"
	"sort"
)

// Map layer kinds, bottom to top.
const (
	BoundaryLayer  = "boundary"
	HQLayer        = "hq"
	StationsLayer  = "stations"
	IncidentsLayer = "incidents"
)

const (
	symbolOpacity     = 0.8
	mapStationSize    = 25
	legendStationSize = 18
	geocodeIconSize   = 30
)

// incidentProperties are copied onto every incident point.
var incidentProperties = []geo.Property{ //nolint: gochecknoglobals
	{Name: "neris_id_incident", Default: geo.UnknownIncident},
	{Name: "civic_location", Default: geo.NoLocation},
	{Name: "incident_type", Default: geo.NoIncidentType},
	{Name: "call_create", Default: geo.NoCallCreate},
	{Name: "department_name", Default: geo.NoDepartment},
}

// MapInput is the map state a layer update depends on.
type MapInput struct {
	TriggerID    string           `json:"trigger_id"`
	Bounds       *relation.Bounds `json:"bounds,omitempty"`
	ShowStations bool             `json:"show_stations"`
}

// MapLayer is one GeoJSON layer of the map.
type MapLayer struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	Data         json.RawMessage `json:"data"`
	ZoomToBounds bool            `json:"zoom_to_bounds,omitempty"`
	Hideout      *geo.Hideout    `json:"hideout,omitempty"`
}

// MapLayers are the layers of the incident map.
type MapLayers struct {
	Layers      []MapLayer `json:"layers"`
	Basemap     string     `json:"basemap,omitempty"`
	Description []string   `json:"description"`
}

func hqSymbol() geo.HQ {
	hq := geo.DefaultHQ()
	hq.FillOpacity = symbolOpacity

	return hq
}

func stationSymbol(size int) geo.Station {
	st := geo.DefaultStation()
	st.Size = size
	st.FillOpacity = symbolOpacity

	return st
}

// departmentLayers queries the boundary, headquarters and, when toggled, the
// stations of dept. Layers that fail or come back empty are left out.
func (s *Service) departmentLayers(ctx context.Context, dept string, showStations, zoom bool) []MapLayer {
	var layers []MapLayer
	if raw := geo.Layer(ctx, s.arcgis, geo.LayerQuery{
		Layer:     cornsacks.BoundaryLayer,
		Where:     geo.Eq("neris_id", dept),
		OutFields: "name",
	}); raw != nil {
		layers = append(layers, MapLayer{
			ID: "dept-boundary-" + dept, Kind: BoundaryLayer, Data: raw, ZoomToBounds: zoom,
		})
	}

	if raw := geo.Layer(ctx, s.arcgis, geo.LayerQuery{
		Layer:     cornsacks.HQLayer,
		Where:     geo.Eq("neris_id", dept),
		OutFields: "neris_id,name,state,address_line_1,address_line_2,city,zip_code",
	}); raw != nil {
		layers = append(layers, MapLayer{
			ID: "dept-hq-" + dept, Kind: HQLayer, Data: raw,
			Hideout: &geo.Hideout{HQSVG: hqSymbol().SVG()},
		})
	}

	if !showStations {
		return layers
	}
	if raw := geo.Layer(ctx, s.arcgis, geo.LayerQuery{
		Layer:     cornsacks.StationLayer,
		Where:     geo.Eq("department_neris_id", dept),
		OutFields: "neris_id,station_name,address_line_1,address_line_2,city,state,zip_code",
	}); raw != nil {
		layers = append(layers, MapLayer{
			ID: "dept-stations-" + dept, Kind: StationsLayer, Data: raw,
			Hideout: &geo.Hideout{StationSVG: stationSymbol(mapStationSize).SVG()},
		})
	}

	return layers
}

// Map builds the map layers. The map only zooms to the new data when the
// filter store changed, so panning does not snap it back.
func (s *Service) Map(ctx context.Context, scope Scope, in MapInput) (*MapLayers, error) {
	zoom := in.TriggerID == FiltersStore
	extra := struct {
		Bounds       *relation.Bounds `json:"bounds"`
		ShowStations bool             `json:"show_stations"`
		Zoom         bool             `json:"zoom"`
	}{in.Bounds, in.ShowStations, zoom}

	return memoize(ctx, s, "map", scope, extra, func(ctx context.Context) (*MapLayers, error) {
		points, err := s.incidents(scope).SampledPoints(ctx, s.opts.MaxPoints, in.Bounds, "x", "y")
		if err != nil {
			return nil, err
		}

		out := &MapLayers{
			Layers:      []MapLayer{},
			Basemap:     s.opts.BasemapURL,
			Description: cornsacks.DescribeSampledPoints(s.opts.MaxPoints),
		}
		if dept := Department(scope.values()); dept != "" {
			out.Layers = append(out.Layers, s.departmentLayers(ctx, dept, in.ShowStations, zoom)...)
		}

		if points.Len() > 0 {
			data, err := geo.FromFrame(points, incidentProperties).MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("could not encode incident points: %w", err)
			}
			out.Layers = append(out.Layers, MapLayer{
				ID:           "incident-geojson",
				Kind:         IncidentsLayer,
				Data:         data,
				ZoomToBounds: zoom,
				Hideout:      &geo.Hideout{Colors: colors.IncidentTypes, DefaultColor: colors.Marker},
			})
		}

		return out, nil
	})
}

// Legend builds the map legend: incident types, and the department symbols
// once a department is selected.
func Legend(values filters.Values, showStations bool) geo.Legend {
	types := make([]string, 0, len(colors.IncidentTypes))
	for t := range colors.IncidentTypes {
		types = append(types, t)
	}
	sort.Strings(types)

	items := make([]geo.LegendItem, 0, len(types)+1)
	for _, t := range types {
		items = append(items, geo.NewLegendItem(format.EnumText(t), colors.IncidentTypes[t], ""))
	}
	items = append(items, geo.NewLegendItem("Multiple Types", colors.Marker, ""))
	sections := []geo.LegendSection{{Title: "Incident Type", Items: items}}

	if Department(values) != "" {
		dept := []geo.LegendItem{geo.NewLegendItem("Department HQ", "", hqSymbol().SVG())}
		if showStations {
			dept = append(dept, geo.NewLegendItem("Fire Station", "", stationSymbol(legendStationSize).SVG()))
		}
		sections = append(sections, geo.LegendSection{Items: dept})
	}

	return geo.NewLegend(sections...)
}

// DeptToggleDisabled reports whether the station toggle is disabled, which
// it is until a department is selected.
func DeptToggleDisabled(values filters.Values) bool {
	return Department(values) == ""
}

// StationToggle is the state of the station toggle button.
type StationToggle struct {
	Showing bool   `json:"showing"`
	Text    string `json:"text"`
}

// ToggleStations flips the station layer.
func ToggleStations(showing bool) StationToggle {
	if !showing {
		return StationToggle{Showing: true, Text: "Hide stations"}
	}

	return StationToggle{Showing: false, Text: "Show stations"}
}

// ViewportInput is a viewport change request, from the zoom button or the
// address search.
type ViewportInput struct {
	TriggerID string `json:"trigger_id"`
	Address   string `json:"address,omitempty"`
}

// ViewportResult moves the map, and places a marker for a geocoded address.
type ViewportResult struct {
	Viewport geo.Viewport      `json:"viewport"`
	Marker   *geo.PlacedMarker `json:"marker,omitempty"`
}

// Viewport resolves a viewport change. A nil result leaves the map as is.
func (s *Service) Viewport(ctx context.Context, scope Scope, in ViewportInput) (*ViewportResult, error) {
	switch in.TriggerID {
	case ZoomToPointsButton:
		bounds, err := s.incidents(scope).Bounds(ctx, "x", "y")
		if err != nil {
			return nil, err
		}
		if bounds == nil {
			return nil, nil //nolint: nilnil
		}

		return &ViewportResult{Viewport: geo.Viewport{Bounds: bounds}}, nil
	case AddressDropdown:
		mark := geo.DefaultGeocodeMark()
		mark.Size = geocodeIconSize
		g := geo.GeocodeAddress(ctx, s.arcgis, in.Address, mark.Icon(), geo.DefaultZoom)
		if g == nil {
			return nil, nil //nolint: nilnil
		}

		return &ViewportResult{Viewport: g.Viewport, Marker: &g.Marker}, nil
	}

	return nil, nil //nolint: nilnil
}

// AddressSuggestions returns address dropdown options for a partial address.
func (s *Service) AddressSuggestions(ctx context.Context, search string) ([]geo.AddressOption, error) {
	return memoize(ctx, s, "address_suggestions", Scope{}, search, func(ctx context.Context) ([]geo.AddressOption, error) {
		return geo.AddressSuggestions(ctx, s.arcgis, search), nil
	})
}

// Popup kinds.
const (
	IncidentPopup = "incident"
	HQPopup       = "hq"
	StationPopup  = "station"
)

// Popup renders the popup of a map feature. ok is false when the feature
// gets no popup.
func Popup(kind string, f geo.Feature) (html string, ok bool, err error) {
	switch kind {
	case IncidentPopup:
		html, ok = geo.IncidentPopup(f)
	case HQPopup:
		html, ok = geo.DeptHQPopup(f)
	case StationPopup:
		html, ok = geo.StationPopup(f)
	default:
		return "", false, serrors.With(serrors.ErrBadRequest, "unknown popup kind %q", kind)
	}

	return html, ok, nil
}

// Marker styles an incident point.
func Marker(f geo.Feature, h geo.Hideout) geo.Marker {
	return geo.MarkerStyle(f, h)
}
