package geo_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"nerisdash/pkg/colors"
	"nerisdash/pkg/geo"
	mockgeo "nerisdash/pkg/geo/mock"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/relation"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	logger.Setup("development")
	os.Exit(m.Run())
}

func TestFromFrameSkipsNonFiniteCoordinates(t *testing.T) {
	frame := &relation.Frame{
		Columns: []string{"x", "y", "neris_id_incident"},
		Rows: [][]any{
			{math.NaN(), 38.5, "FD1|1"},
			{-120.5, math.Inf(1), "FD1|2"},
			{-120.5, 38.5, "FD1|3"},
		},
	}

	fc := geo.FromFrame(frame, []geo.Property{{Name: "neris_id_incident"}})
	require.Len(t, fc.Features, 1)
	require.Equal(t, "FD1|3", fc.Features[0].Prop("neris_id_incident"))

	b, err := fc.MarshalJSON()
	require.NoError(t, err)
	require.True(t, json.Valid(b))
}

func TestFromFrame(t *testing.T) {
	frame := &relation.Frame{
		Columns: []string{"x", "y", "neris_id_incident", "incident_type"},
		Rows: [][]any{
			{-120.5, 38.5, "FD1|1", "FIRE"},
			{nil, 40.0, "FD1|2", nil},
		},
	}
	props := []geo.Property{
		{Name: "neris_id_incident", Default: "Unknown"},
		{Name: "incident_type", Default: "No Incident Type Provided"},
		{Name: "department_name", Default: "No Department Provided"},
	}

	fc := geo.FromFrame(frame, props)
	require.Len(t, fc.Features, 2)
	require.Equal(t, [2]float64{-120.5, 38.5}, fc.Features[0].Coordinates)
	require.Equal(t, [2]float64{0, 40}, fc.Features[1].Coordinates)
	require.Equal(t, "FIRE", fc.Features[0].Properties["incident_type"])
	require.Equal(t, "No Incident Type Provided", fc.Features[1].Properties["incident_type"])
	require.Equal(t, "No Department Provided", fc.Features[1].Properties["department_name"])

	b, err := json.Marshal(fc)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[-120.5,38.5]},
		 "properties":{"department_name":"No Department Provided","incident_type":"FIRE","neris_id_incident":"FD1|1"}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[0,40]},
		 "properties":{"department_name":"No Department Provided","incident_type":"No Incident Type Provided","neris_id_incident":"FD1|2"}}
	]}`, string(b))

	var buf bytes.Buffer
	n, err := fc.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), n)
	require.JSONEq(t, string(b), buf.String())
}

func TestEmptyCollection(t *testing.T) {
	b, err := json.Marshal(geo.FromFrame(&relation.Frame{}, nil))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(b))
}

func TestHasFeatures(t *testing.T) {
	ok, err := geo.HasFeatures([]byte(`{"type":"FeatureCollection","features":[{"type":"Feature"}]}`))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = geo.HasFeatures([]byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = geo.HasFeatures([]byte(`{"error":{"code":400}}`))
	require.NoError(t, err)
	require.False(t, ok)

	_, err = geo.HasFeatures([]byte(`not json`))
	require.Error(t, err)
}

func incident(props map[string]any) geo.Feature {
	return geo.Feature{Properties: props}
}

func TestMarkerStyle(t *testing.T) {
	h := geo.Hideout{Colors: colors.IncidentTypes, DefaultColor: "#123456", IconSize: 10}

	require.Equal(t, "#c42b47", geo.MarkerStyle(incident(map[string]any{"incident_type": "FIRE"}), h).Color)
	require.Equal(t, "#123456", geo.MarkerStyle(incident(map[string]any{"incident_type": "FIRE, MEDICAL"}), h).Color)
	require.Equal(t, "#123456", geo.MarkerStyle(geo.Feature{}, h).Color)
	require.Equal(t, 10, geo.MarkerStyle(geo.Feature{}, h).IconSize)

	h.DefaultColor = ""
	require.Equal(t, "#808080", geo.MarkerStyle(incident(map[string]any{"incident_type": "UNKNOWN"}), h).Color)
}

func TestIncidentURL(t *testing.T) {
	require.Equal(t,
		"https://neris.fsri.org/departments/FD0601/incidents/FD0601%7C2024%7C1",
		geo.IncidentURL("FD0601|2024|1"))
	require.Equal(t,
		"https://neris.fsri.org/departments/FD0601/incidents/FD0601",
		geo.IncidentURL("FD0601"))
}

func TestIncidentPopup(t *testing.T) {
	_, ok := geo.IncidentPopup(geo.Feature{})
	require.False(t, ok)

	html, ok := geo.IncidentPopup(incident(map[string]any{
		"neris_id_incident": "FD1|7",
		"incident_type":     "FIRE",
		"civic_location":    "<script>alert(1)</script>",
		"department_name":   nil,
	}))
	require.True(t, ok)
	require.Contains(t, html, `href="https://neris.fsri.org/departments/FD1/incidents/FD1%7C7"`)
	require.Contains(t, html, ">FD1|7</a>")
	require.Contains(t, html, "&lt;script&gt;")
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, geo.NoDepartment)
	require.Contains(t, html, geo.NoCallCreate)

	html, ok = geo.IncidentPopup(incident(map[string]any{}))
	require.True(t, ok)
	require.Contains(t, html, geo.UnknownIncident)
	require.NotContains(t, html, "href")
}

func TestDeptPopups(t *testing.T) {
	_, ok := geo.DeptHQPopup(geo.Feature{})
	require.False(t, ok)
	_, ok = geo.StationPopup(geo.Feature{})
	require.False(t, ok)

	hq := incident(map[string]any{
		"name": "Springfield FD", "neris_id": "FD1", "address_line_1": "1 Main St",
		"city": "Springfield", "state": "IL", "zip_code": "62701",
	})
	html, ok := geo.DeptHQPopup(hq)
	require.True(t, ok)
	require.Contains(t, html, "<b>Springfield FD</b>")
	require.Contains(t, html, "1 Main St, Springfield, IL 62701")

	html, ok = geo.StationPopup(incident(map[string]any{"neris_id": "FS1"}))
	require.True(t, ok)
	require.Contains(t, html, geo.NoStationName)
	require.Contains(t, html, geo.NoAddress)
}

func TestSymbols(t *testing.T) {
	station := geo.DefaultStation()
	station.Size = 18
	station.FillOpacity = 0.8
	svg := station.SVG()
	require.True(t, strings.HasPrefix(svg, `<svg width="12" height="18" viewBox="0 0 100 150"`))
	require.Contains(t, svg, `fill-opacity="0.8"`)

	require.Contains(t, geo.DefaultHQ().SVG(), `stroke="#3020a8" stroke-width="15"`)

	mark := geo.GeocodeMark{Color: "#7A76F7", Size: 30}
	icon := mark.Icon()
	require.Equal(t, [2]int{30, 30}, icon.Size)
	require.Equal(t, [2]int{15, 15}, icon.Anchor)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(icon.URL, "data:image/svg+xml;base64,"))
	require.NoError(t, err)
	require.Equal(t, mark.SVG(), string(raw))
}

func TestLegend(t *testing.T) {
	item := geo.NewLegendItem("Department HQ", "#fff", `<svg a="b"></svg>`)
	require.Empty(t, item.Color)
	require.Equal(t, "data:image/svg+xml,%3Csvg%20a=%22b%22%3E%3C%2Fsvg%3E", item.Image)

	l := geo.NewLegend(
		geo.LegendSection{Title: "Incident Type", Items: []geo.LegendItem{geo.NewLegendItem("Fire", "#c42b47", "")}},
		geo.LegendSection{},
	)
	require.Len(t, l.Sections, 1)
	require.Equal(t, "#c42b47", l.Sections[0].Items[0].Color)
}

func TestAddressSuggestions(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mockgeo.NewMockArcGIS(ctrl)

	require.Empty(t, geo.AddressSuggestions(ctx, client, "12 "))

	client.EXPECT().Suggest(gomock.Any(), "123 Main", geo.AddressCategory).
		Return([]geo.Suggestion{{Text: "123 Main St", MagicKey: "mk"}}, nil)
	got := geo.AddressSuggestions(ctx, client, "123 Main")
	require.Equal(t, []geo.AddressOption{{Label: "123 Main St", Value: `{"address":"123 Main St","magic_key":"mk"}`}}, got)

	client.EXPECT().Suggest(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("down"))
	require.Empty(t, geo.AddressSuggestions(ctx, client, "123 Main"))
}

func TestGeocodeAddress(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mockgeo.NewMockArcGIS(ctrl)
	icon := geo.DefaultGeocodeMark().Icon()

	require.Nil(t, geo.GeocodeAddress(ctx, client, "", icon, geo.DefaultZoom))
	require.Nil(t, geo.GeocodeAddress(ctx, client, "{", icon, geo.DefaultZoom))

	client.EXPECT().FindAddress(gomock.Any(), "123 Main St", "mk").Return(&geo.Location{X: -89.6, Y: 39.8}, nil)
	got := geo.GeocodeAddress(ctx, client, `{"address":"123 Main St","magic_key":"mk"}`, icon, geo.DefaultZoom)
	require.NotNil(t, got)
	require.Equal(t, &[2]float64{39.8, -89.6}, got.Viewport.Center)
	require.Equal(t, 15, got.Viewport.Zoom)
	require.Equal(t, "Geocoded Address: 123 Main St", got.Marker.Tooltip)

	client.EXPECT().FindAddress(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	require.Nil(t, geo.GeocodeAddress(ctx, client, `{"address":"x"}`, icon, geo.DefaultZoom))
}

func TestLayer(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mockgeo.NewMockArcGIS(ctrl)
	q := geo.LayerQuery{Layer: 0, Where: geo.Eq("neris_id", "O'Brien"), OutFields: "name"}
	require.Equal(t, "neris_id = 'O''Brien'", q.Where)

	client.EXPECT().QueryLayer(gomock.Any(), q).Return(json.RawMessage(`{"features":[{}]}`), nil)
	require.JSONEq(t, `{"features":[{}]}`, string(geo.Layer(ctx, client, q)))

	client.EXPECT().QueryLayer(gomock.Any(), q).Return(json.RawMessage(`{"features":[]}`), nil)
	require.Nil(t, geo.Layer(ctx, client, q))

	client.EXPECT().QueryLayer(gomock.Any(), q).Return(nil, errors.New("timeout"))
	require.Nil(t, geo.Layer(ctx, client, q))
}
