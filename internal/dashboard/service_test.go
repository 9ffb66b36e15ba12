package dashboard_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"nerisdash/internal/cornsacks"
	"nerisdash/internal/dashboard"
	"nerisdash/pkg/cache"
	"nerisdash/pkg/cache/memcache"
	"nerisdash/pkg/charts"
	"nerisdash/pkg/colors"
	"nerisdash/pkg/export"
	"nerisdash/pkg/filters"
	"nerisdash/pkg/geo"
	"nerisdash/pkg/relation"
	"os"
	"path/filepath"
	"testing"
	"time"

	mockgeo "nerisdash/pkg/geo/mock"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func writeParquet(t *testing.T, src *relation.Source, dir, name, query string) {
	t.Helper()

	path := filepath.Join(dir, "dash", "incident_basics", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	_, err := src.DB.ExecContext(context.Background(), fmt.Sprintf("COPY (%s) TO '%s' (FORMAT PARQUET)", query, path))
	require.NoError(t, err)
}

func newDuckDBService(t *testing.T) (*dashboard.Service, *mockgeo.MockArcGIS) {
	t.Helper()

	ctx := context.Background()
	dir := t.TempDir()
	src, err := relation.New(ctx, relation.Options{Storage: relation.StorageFilesystem, Root: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	writeParquet(t, src, dir, "incidents.parquet", `SELECT * FROM (VALUES
		('FD1|1', 'FD1', 'Alpha FD', 'CA', 'FIRE', TIMESTAMP '2024-01-01 10:00:00', 'Monday', 10, 600,
		 'RESIDENTIAL||HOME', 1, 0, 0, 0, 'GIVEN', 2, 0, 1, 0, NULL, 'POINT', -77.0::DOUBLE, 38.9::DOUBLE),
		('FD1|2', 'FD1', 'Alpha FD', 'CA', 'MEDICAL', TIMESTAMP '2024-01-01 10:30:00', 'Monday', 10, 1200,
		 NULL, 0, 1, 0, 1, 'NONE', 1, 1, 2, 0, '1 Main St', 'POINT', 0.0::DOUBLE, 0.0::DOUBLE),
		('FD2|1', 'FD2', 'Beta FD', 'NY', 'FIRE', TIMESTAMP '2024-01-02 09:00:00', 'Tuesday', 9, 300,
		 'COMMERCIAL', 0, 0, 1, 0, 'RECEIVED', 3, 0, 0, 0, '2 Main St', 'POINT', -74.0::DOUBLE, 40.7::DOUBLE)
	) t(neris_id_incident, neris_id_dept, department_name, department_state, incident_type, call_create,
		call_create_day_of_week, call_create_hour, duration, type_location_use, csst_hazard_flag,
		electric_hazard_flag, powergen_hazard_flag, medical_oxygen_hazard_flag, aid_direction,
		unit_response_count, displacement_count, rescue_animal, exposure_count, civic_location,
		point_origin, x, y)`)
	writeParquet(t, src, dir, "incident_types.parquet", `SELECT * FROM (VALUES
		('FD1|1', 'FIRE||STRUCTURE_FIRE', true),
		('FD1|1', 'MEDICAL||INJURY', false),
		('FD1|2', 'MEDICAL||ILLNESS', true),
		('FD2|1', 'FIRE||OUTSIDE_FIRE', true)
	) t(neris_id_incident, type_incident, primary_type)`)
	writeParquet(t, src, dir, "casualty_rescues.parquet", `SELECT * FROM (VALUES
		('FD1|1', 'FF', '30-39', 'INJURED', 'RESCUED', 'WHITE', 'MALE'),
		('FD1|1', 'NONFF', '60-69', 'INJURED', NULL, NULL, 'FEMALE'),
		('FD2|1', 'NONFF', '60-69', 'FATAL', 'RESCUED', NULL, 'FEMALE')
	) t(neris_id_incident, type_ff_nonff, age_bin, type_casualty, type_rescue, type_race, type_gender)`)
	writeParquet(t, src, dir, "aids.parquet", `SELECT * FROM (VALUES
		('FD1|1', 'GIVEN||MUTUAL||FD9'),
		('FD2|1', 'RECEIVED||AUTOMATIC||FD8')
	) t(neris_id_incident, aid_concat)`)

	ctrl := gomock.NewController(t)
	arcgis := mockgeo.NewMockArcGIS(ctrl)

	mc := memcache.New(memcache.Options{})
	t.Cleanup(mc.Close)

	s := dashboard.New(cornsacks.New(src), cache.NewMemoizer(mc, time.Minute, "test"), arcgis, dashboard.Options{
		MaxPoints: 100,
		Timezone:  "America/New_York",
		Now:       func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	})

	return s, arcgis
}

func TestService(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping duckdb test in short mode")
	}

	s, arcgis := newDuckDBService(t)
	ctx := context.Background()
	scope := dashboard.Scope{Filters: cornsacks.Registry.Defaults()}
	fromStore := dashboard.ChartEvent{TriggerID: dashboard.FiltersStore}

	t.Run("trendline", func(t *testing.T) {
		res, err := s.Trendline(ctx, scope, fromStore)
		require.NoError(t, err)
		require.Nil(t, res.Store)
		require.NotNil(t, res.Figure)
		require.Len(t, res.Figure.Points, 2)
		require.Equal(t, "2024-01-01", res.Figure.Points[0].Date)
		require.EqualValues(t, 2, res.Figure.Points[0].Count)
		require.Nil(t, res.Figure.Points[0].RollingAvg)
		require.NotNil(t, res.Figure.Points[1].RollingAvg)
		require.InDelta(t, 2.0, *res.Figure.Points[1].RollingAvg, 1e-9)
		require.Equal(t, "2024-01-01 to 2024-01-02", res.Figure.Title)
		require.Equal(t, "previous 7-day", res.Figure.RollingLabel)
	})

	t.Run("heatmap", func(t *testing.T) {
		res, err := s.Heatmap(ctx, scope, fromStore)
		require.NoError(t, err)
		grid := res.Figure.Grid
		require.Equal(t, "Monday", grid.X[0])
		require.Equal(t, "11p", grid.Y[0])
		require.EqualValues(t, 2, grid.Z[13][0])
		require.EqualValues(t, 1, grid.Z[14][1])
		require.Contains(t, res.Figure.Description, "America/New_York")
	})

	t.Run("incident types", func(t *testing.T) {
		res, err := s.IncidentTypes(ctx, scope, fromStore)
		require.NoError(t, err)
		fig := res.Figure
		require.Equal(t, "treemap", fig.Type)
		require.Equal(t, filters.AllValue, fig.InitialLevel)
		require.Equal(t, 3, fig.MaxDepth)
		require.Equal(t, charts.RootID, fig.Nodes[0].ID)
		require.Equal(t, "Total Incidents", fig.Nodes[0].Label)
		require.EqualValues(t, 4, fig.Nodes[0].CumulativeCount)
		require.Equal(t, colors.IncidentTypes["FIRE"], fig.Colors["FIRE"])
	})

	t.Run("location use excludes its own filter", func(t *testing.T) {
		values := scope.WithFilters(filters.Values{cornsacks.LocationUsePath: "COMMERCIAL"})
		res, err := s.LocationUse(ctx, values, fromStore)
		require.NoError(t, err)
		require.Equal(t, "COMMERCIAL", res.Figure.InitialLevel)
		ids := map[string]bool{}
		for _, n := range res.Figure.Nodes {
			ids[n.ID] = true
		}
		require.True(t, ids["No Location Use Provided"])
		require.True(t, ids["RESIDENTIAL||HOME"])
	})

	t.Run("aid sunburst", func(t *testing.T) {
		fig, err := s.AidSunburst(ctx, scope)
		require.NoError(t, err)
		require.Equal(t, "sunburst", fig.Type)
		ids := map[string]bool{}
		for _, n := range fig.Nodes {
			ids[n.ID] = true
		}
		require.True(t, ids["GIVEN||MUTUAL"])
		require.False(t, ids["GIVEN||MUTUAL||FD9"])
		require.Equal(t, colors.Sequence[0], fig.Colors["GIVEN"])
		require.Equal(t, colors.Sequence[1], fig.Colors["RECEIVED"])

		dept, err := s.AidSunburst(ctx, scope.WithFilters(filters.Values{cornsacks.NerisIDDept: "FD1"}))
		require.NoError(t, err)
		ids = map[string]bool{}
		for _, n := range dept.Nodes {
			ids[n.ID] = true
		}
		require.True(t, ids["GIVEN||MUTUAL||FD9"])
	})

	t.Run("casualty bubble", func(t *testing.T) {
		fig, err := s.CasualtyBubble(ctx, scope, "FF")
		require.NoError(t, err)
		require.Equal(t, colors.FF, fig.Color)
		require.Equal(t, []charts.Bubble{{Row: "INJURED", Col: "RESCUED", Count: 1}}, fig.Bubbles)

		fig, err = s.CasualtyBubble(ctx, scope, "NONFF")
		require.NoError(t, err)
		require.Equal(t, colors.NonFF, fig.Color)
		require.Equal(t, []string{"RESCUED", charts.NotReported}, fig.Cols)
	})

	t.Run("demographics", func(t *testing.T) {
		rows, err := s.Demographics(ctx, scope)
		require.NoError(t, err)
		var total int64
		for _, r := range rows {
			total += r.Count
		}
		require.EqualValues(t, 3, total)
	})

	t.Run("overview", func(t *testing.T) {
		o, err := s.Overview(ctx, scope, "NONFF", false)
		require.NoError(t, err)
		require.Equal(t, "3", o.Summary.TotalCount)
		require.Equal(t, []charts.Option{
			{Label: "All States", Value: filters.AllValue},
			{Label: "CA", Value: "CA"},
			{Label: "NY", Value: "NY"},
		}, o.States)
		require.Equal(t, dashboard.DepartmentOption{
			Label: "Alpha FD - CA (FD1)", Value: "FD1", Title: "Alpha FD - CA (FD1)",
		}, o.Departments[0])
		require.NotEmpty(t, o.LastUpdated)
		require.True(t, o.DeptToggle)
		require.NotNil(t, o.Aid)
		require.NotNil(t, o.Casualty)
	})

	t.Run("options exclude their own filter", func(t *testing.T) {
		states, err := s.StateOptions(ctx, scope.WithFilters(filters.Values{cornsacks.DepartmentState: "CA"}))
		require.NoError(t, err)
		require.Len(t, states, 3)

		departments, err := s.DepartmentOptions(ctx, scope.WithFilters(filters.Values{cornsacks.DepartmentState: "NY"}))
		require.NoError(t, err)
		require.Len(t, departments, 1)
		require.Equal(t, "FD2", departments[0].Value)
	})

	t.Run("authorized departments scope results", func(t *testing.T) {
		cards, err := s.SummaryCards(ctx, dashboard.Scope{Filters: scope.Filters, Authorized: []any{"FD2"}})
		require.NoError(t, err)
		require.Equal(t, "1", cards.TotalCount)

		cards, err = s.SummaryCards(ctx, scope)
		require.NoError(t, err)
		require.Equal(t, "3", cards.TotalCount)
	})

	t.Run("map", func(t *testing.T) {
		boundary := json.RawMessage(`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":null,"properties":{"name":"Alpha FD"}}]}`)
		arcgis.EXPECT().QueryLayer(gomock.Any(), geo.LayerQuery{
			Layer: cornsacks.BoundaryLayer, Where: "neris_id = 'FD1'", OutFields: "name",
		}).Return(boundary, nil)
		arcgis.EXPECT().QueryLayer(gomock.Any(), gomock.Any()).Return(nil, errors.New("unavailable"))

		layers, err := s.Map(ctx, scope.WithFilters(filters.Values{cornsacks.NerisIDDept: "FD1"}),
			dashboard.MapInput{TriggerID: dashboard.FiltersStore})
		require.NoError(t, err)
		require.Len(t, layers.Layers, 2)
		require.Equal(t, dashboard.BoundaryLayer, layers.Layers[0].Kind)
		require.True(t, layers.Layers[0].ZoomToBounds)

		points := layers.Layers[1]
		require.Equal(t, dashboard.IncidentsLayer, points.Kind)
		require.Equal(t, colors.Marker, points.Hideout.DefaultColor)

		var fc struct {
			Features []struct {
				Properties map[string]any `json:"properties"`
			} `json:"features"`
		}
		require.NoError(t, json.Unmarshal(points.Data, &fc))
		require.Len(t, fc.Features, 1)
		require.Equal(t, "FD1|1", fc.Features[0].Properties["neris_id_incident"])
		require.Equal(t, geo.NoLocation, fc.Features[0].Properties["civic_location"])
	})

	t.Run("zoom to points", func(t *testing.T) {
		res, err := s.Viewport(ctx, scope, dashboard.ViewportInput{TriggerID: dashboard.ZoomToPointsButton})
		require.NoError(t, err)
		require.Equal(t, &relation.Bounds{{38.9, -77}, {40.7, -74}}, res.Viewport.Bounds)

		res, err = s.Viewport(ctx, scope.WithFilters(filters.Values{cornsacks.DepartmentState: "TX"}),
			dashboard.ViewportInput{TriggerID: dashboard.ZoomToPointsButton})
		require.NoError(t, err)
		require.Nil(t, res)
	})

	t.Run("export", func(t *testing.T) {
		dl, err := s.Export(ctx, scope, dashboard.FormatZip)
		require.NoError(t, err)
		require.Equal(t, "neris_incidents_20240301_120000.zip", dl.Filename)
		require.Equal(t, export.ZipType, dl.Type)

		raw, err := base64.StdEncoding.DecodeString(dl.Content)
		require.NoError(t, err)
		zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
		require.NoError(t, err)
		var names []string
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		require.Equal(t, []string{"incidents.csv", "casualty_rescues.csv", "incident_types.csv", "aids.csv"}, names)

		dl, err = s.Export(ctx, scope, dashboard.FormatXLSX)
		require.NoError(t, err)
		require.Equal(t, export.XLSXType, dl.Type)
		require.Equal(t, "neris_incidents_20240301_120000.xlsx", dl.Filename)
	})
}
