package cornsacks_test

import (
	"context"
	"fmt"
	"nerisdash/internal/cornsacks"
	"nerisdash/pkg/charts"
	"nerisdash/pkg/filters"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/relation"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup("development")
	os.Exit(m.Run())
}

func s3Tables() *cornsacks.Tables {
	return cornsacks.New(relation.NewWithDB(nil, relation.Options{
		Storage:      relation.StorageS3,
		BucketPrefix: "neris-analytics-exports",
		Context:      "dev",
	}, nil))
}

func TestRegistry(t *testing.T) {
	defaults := cornsacks.Registry.Defaults()
	require.Equal(t, false, defaults[cornsacks.CSSTHazardOnly])
	require.Equal(t, filters.AllValue, defaults[cornsacks.TypeIncident])
	require.Nil(t, defaults[cornsacks.StartDate])

	clearable := cornsacks.Registry.ClearableDefaults()
	require.NotContains(t, clearable, cornsacks.AuthorizedNerisIDs)
	require.Contains(t, clearable, cornsacks.NerisIDDept)

	require.Equal(t, []string{cornsacks.AuthorizedNerisIDs}, cornsacks.Registry.CacheKeys())

	display := cornsacks.Registry.FormatDisplay(filters.Values{
		cornsacks.AuthorizedNerisIDs: []any{"FD1"},
		cornsacks.NerisIDDept:        "FD24027240",
		cornsacks.DayOfWeek:          []any{"Wednesday", "Monday", "Tuesday"},
		cornsacks.Hour:               []any{float64(13), float64(9)},
		cornsacks.PrimaryOnly:        true,
	})
	require.Equal(t, []filters.DisplayItem{
		{Name: "Day Of Week", Value: "Monday - Wednesday"},
		{Name: "Hour", Value: "9a, 1p"},
		{Name: "Department NERIS ID", Value: "FD24027240"},
	}, display.Items)

	ui := cornsacks.Registry.ClearableUIValues(filters.Values{cornsacks.CSSTHazardOnly: true}, cornsacks.SidebarKeys)
	require.Len(t, ui, len(cornsacks.SidebarKeys))
	require.Equal(t, []string{cornsacks.CSSTHazardOnly}, ui[0])
	require.Equal(t, []string{}, ui[1])
	require.Equal(t, filters.AllValue, ui[4])
}

func TestHourOrders(t *testing.T) {
	require.Len(t, cornsacks.HourOrder, 24)
	require.Equal(t, 0, cornsacks.HourOrder[0])
	require.Equal(t, 23, cornsacks.HeatmapHourOrder[0])
	require.Equal(t, 0, cornsacks.HeatmapHourOrder[23])
}

func TestIncidentsSQL(t *testing.T) {
	tables := s3Tables()

	plain, err := tables.Incidents(filters.Values{cornsacks.TypeIncident: filters.AllValue}, nil).SQL()
	require.NoError(t, err)
	require.NotContains(t, plain, "JOIN")

	lookup := func(key string) (any, bool) { return []any{"FD1", "FD2"}, key == cornsacks.AuthorizedNerisIDs }
	rel := tables.Incidents(filters.Values{
		cornsacks.TypeIncident:    "FIRE||STRUCTURE_FIRE",
		cornsacks.DepartmentState: "CA",
		cornsacks.LocationUsePath: "RESIDENTIAL",
	}, lookup)
	sql, err := rel.SQL()
	require.NoError(t, err)
	require.Contains(t, sql, "read_parquet('s3://neris-analytics-exports-dev/dash/incident_basics/incidents.parquet')")
	require.Contains(t, sql, "(neris_id_dept IN ('FD1', 'FD2'))")
	require.Contains(t, sql, "(department_state = 'CA')")
	require.Contains(t, sql, "(COALESCE(type_location_use, 'No Location Use Provided') LIKE 'RESIDENTIAL%')")
	require.Contains(t, sql, "INNER JOIN (SELECT DISTINCT neris_id_incident FROM read_parquet(")
	require.Contains(t, sql, "(type_incident LIKE 'FIRE||STRUCTURE_FIRE%')")

	types, err := rel.IncidentTypes(true).SQL()
	require.NoError(t, err)
	require.Contains(t, types, "incident_types.parquet')")
	require.Contains(t, types, "(primary_type IS TRUE)")
	require.Contains(t, types, "SELECT neris_id_incident FROM")

	casualty, err := rel.CasualtyRescues(filters.Values{cornsacks.TypeFFNonFF: "FF"}).SQL()
	require.NoError(t, err)
	require.Contains(t, casualty, "(type_ff_nonff = 'FF')")

	aid, err := rel.Aid().SQL()
	require.NoError(t, err)
	require.Contains(t, aid, "aids.parquet')")
}

func TestAidPathExpr(t *testing.T) {
	require.Equal(t, "aid_concat", cornsacks.AidPathExpr(0))
	require.Equal(t,
		"array_to_string(list_slice(string_split(aid_concat, '||'), 1, 2), '||')",
		cornsacks.AidPathExpr(2))
}

func TestDescriptions(t *testing.T) {
	require.Equal(t, "A subset of up to 10,000 incident point for the incident reports matching the current filter settings.",
		cornsacks.DescribeSampledPoints(10000)[0])
	require.Contains(t, cornsacks.DescribeDayHour(""), "(UTC)")
	require.Len(t, cornsacks.Metrics, 11)
}

func writeParquet(t *testing.T, src *relation.Source, dir, name, query string) {
	t.Helper()

	path := filepath.Join(dir, "dash", "incident_basics", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	_, err := src.DB.ExecContext(context.Background(), fmt.Sprintf("COPY (%s) TO '%s' (FORMAT PARQUET)", query, path))
	require.NoError(t, err)
}

func TestQueries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping duckdb test in short mode")
	}

	ctx := context.Background()
	dir := t.TempDir()
	src, err := relation.New(ctx, relation.Options{Storage: relation.StorageFilesystem, Root: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	writeParquet(t, src, dir, "incidents.parquet", `SELECT * FROM (VALUES
		('FD1|1', 'FD1', 'Alpha FD', 'CA', 'Monday', 10, 600, 'RESIDENTIAL||HOME', 1, 0, 0, 0, 2, 0, 0, 1, TIMESTAMP '2024-01-01 10:00:00'),
		('FD1|2', 'FD1', 'Alpha FD', 'CA', 'Monday', 10, 1200, NULL, 0, 1, 0, 1, 1, 1, 2, 0, TIMESTAMP '2024-01-01 10:30:00'),
		('FD2|1', 'FD2', 'Beta FD', 'NY', 'Tuesday', 9, 300, 'COMMERCIAL', 0, 0, 1, 0, 3, 0, 0, 0, TIMESTAMP '2024-01-02 09:00:00')
	) t(neris_id_incident, neris_id_dept, department_name, department_state, call_create_day_of_week,
		call_create_hour, duration, type_location_use, csst_hazard_flag, electric_hazard_flag,
		powergen_hazard_flag, medical_oxygen_hazard_flag, unit_response_count, displacement_count,
		rescue_animal, exposure_count, call_create)`)
	writeParquet(t, src, dir, "incident_types.parquet", `SELECT * FROM (VALUES
		('FD1|1', 'FIRE||STRUCTURE_FIRE', true),
		('FD1|1', 'MEDICAL||INJURY', false),
		('FD1|2', 'MEDICAL||ILLNESS', true),
		('FD2|1', 'FIRE||OUTSIDE_FIRE', true)
	) t(neris_id_incident, type_incident, primary_type)`)
	writeParquet(t, src, dir, "casualty_rescues.parquet", `SELECT * FROM (VALUES
		('FD1|1', 'FF', 'INJURED', 'RESCUED'),
		('FD1|1', 'NONFF', 'INJURED', NULL),
		('FD2|1', 'NONFF', 'FATAL', 'RESCUED')
	) t(neris_id_incident, type_ff_nonff, type_casualty, type_rescue)`)
	writeParquet(t, src, dir, "aids.parquet", `SELECT * FROM (VALUES
		('FD1|1', 'GIVEN||MUTUAL||FD9'),
		('FD2|1', 'RECEIVED||AUTOMATIC||FD8')
	) t(neris_id_incident, aid_concat)`)

	tables := cornsacks.New(src)
	all := tables.Incidents(filters.Values{}, nil)

	n, err := tables.Incidents(filters.Values{cornsacks.TypeIncident: "FIRE"}, nil).Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	types, err := cornsacks.IncidentTypePathCounts(ctx, all.IncidentTypes(true))
	require.NoError(t, err)
	require.ElementsMatch(t, []charts.PathCount{
		{Path: "FIRE||STRUCTURE_FIRE", Count: 1},
		{Path: "MEDICAL||ILLNESS", Count: 1},
		{Path: "FIRE||OUTSIDE_FIRE", Count: 1},
	}, types)

	aid, err := cornsacks.AidPathCounts(ctx, all.Aid(), 2)
	require.NoError(t, err)
	require.ElementsMatch(t, []charts.PathCount{
		{Path: "GIVEN||MUTUAL", Count: 1},
		{Path: "RECEIVED||AUTOMATIC", Count: 1},
	}, aid)

	locations, err := all.LocationUsePathCounts(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []charts.PathCount{
		{Path: "RESIDENTIAL||HOME", Count: 1},
		{Path: "No Location Use Provided", Count: 1},
		{Path: "COMMERCIAL", Count: 1},
	}, locations)

	pairs, err := cornsacks.ContingencyCounts(ctx, all.CasualtyRescues(filters.Values{cornsacks.TypeFFNonFF: "NONFF"}))
	require.NoError(t, err)
	require.ElementsMatch(t, []charts.Pair{
		{Row: "INJURED", Col: charts.NotReported, Count: 1},
		{Row: "FATAL", Col: "RESCUED", Count: 1},
	}, pairs)

	cells, err := all.DayHourCounts(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []charts.Cell{
		{X: "Monday", Y: int64(10), Count: 2},
		{X: "Tuesday", Y: int64(9), Count: 1},
	}, cells)

	states, err := all.UniqueDepartmentStates(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"CA", "NY"}, states)

	departments, err := all.UniqueDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, departments, 2)
	require.Equal(t, "Alpha FD - CA (FD1)", departments[0].Label())

	cards, err := all.SummaryCards(ctx)
	require.NoError(t, err)
	require.Equal(t, "3", cards.TotalCount)
	require.Equal(t, "6", cards.TotalUnitResponses)
	require.Equal(t, "3", cards.CasualtyRescueCount)
	require.Equal(t, "1", cards.CSSTCount)
	require.Equal(t, "2", cards.TotalRescueAnimals)
	require.Equal(t, "18m 0s", cards.P90Duration)

	empty, err := tables.Incidents(filters.Values{cornsacks.DepartmentState: "TX"}, nil).SummaryCards(ctx)
	require.NoError(t, err)
	require.Equal(t, "0", empty.TotalCount)
	require.Equal(t, "0m 0s", empty.P90Duration)
	require.Equal(t, "0", empty.CasualtyRescueCount)

	require.NotEmpty(t, all.LastUpdated(ctx))
}
