package charts_test

import (
	"nerisdash/pkg/charts"
	"nerisdash/pkg/format"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSplitHierarchyPath(t *testing.T) {
	require.Equal(t, []string{"FIRE", "STRUCTURE_FIRE", "CHIMNEY"}, charts.SplitHierarchyPath("FIRE||STRUCTURE_FIRE||CHIMNEY"))
	require.Equal(t, []string{"MEDICAL"}, charts.SplitHierarchyPath("MEDICAL"))
}

func TestTruncatePath(t *testing.T) {
	require.Equal(t, "A||B", charts.TruncatePath("A||B||C", 2))
	require.Equal(t, "A||B", charts.TruncatePath("A||B", 3))
	require.Equal(t, "A||B||C", charts.TruncatePath("A||B||C", 0))
}

func TestBuildTieredTypeNodes(t *testing.T) {
	counts := []charts.PathCount{
		{Path: "FIRE||STRUCTURE_FIRE", Count: 3},
		{Path: "MEDICAL", Count: 1},
		{Path: "FIRE", Count: 1},
		{Path: "FIRE||STRUCTURE_FIRE", Count: 1},
	}

	got := charts.BuildTieredTypeNodes(counts, "All Incidents")
	want := []charts.Node{
		{
			ID: "all", Label: "All Incidents", CumulativeCount: 6,
			LabelWithCount: "All Incidents<br>6 (100.0%)", HoverText: "All Incidents: 6 (100.0%)",
		},
		{
			ID: "FIRE", Label: "Fire", Parent: "all", Value: 1, CumulativeCount: 5,
			LabelWithCount: "Fire<br>5 (83.3%)", HoverText: "Fire: 5 (83.3%)<br>Parent: all",
		},
		{
			ID: "FIRE||STRUCTURE_FIRE", Label: "Structure Fire", Parent: "FIRE", Value: 4, CumulativeCount: 4,
			LabelWithCount: "Structure Fire<br>4 (66.7%)", HoverText: "Structure Fire: 4 (66.7%)<br>Parent: FIRE",
		},
		{
			ID: "MEDICAL", Label: "Medical", Parent: "all", Value: 1, CumulativeCount: 1,
			LabelWithCount: "Medical<br>1 (16.7%)", HoverText: "Medical: 1 (16.7%)<br>Parent: all",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTieredTypeNodesWithoutRoot(t *testing.T) {
	got := charts.BuildTieredTypeNodes([]charts.PathCount{
		{Path: "A||B", Count: 1000},
		{Path: "C", Count: 1000},
	}, "")

	require.Len(t, got, 3)
	require.Equal(t, "A", got[0].ID)
	require.Empty(t, got[0].Parent)
	require.Equal(t, "A<br>1,000 (50.0%)", got[0].LabelWithCount)
	require.Equal(t, "A||B", got[1].ID)
	require.Equal(t, "A", got[1].Parent)
	require.Equal(t, "C: 1,000 (50.0%)", got[2].HoverText)

	require.Empty(t, charts.BuildTieredTypeNodes(nil, ""))
}

func TestSortNotReportedLast(t *testing.T) {
	in := []string{"NOT_REPORTED", "b", "a"}
	require.Equal(t, []string{"a", "b", "NOT_REPORTED"}, charts.SortNotReportedLast(in))
	require.Equal(t, []string{"NOT_REPORTED", "b", "a"}, in)
}

func TestContingency(t *testing.T) {
	table := charts.ContingencyTable([]charts.Pair{
		{Row: "INJURED", Col: "RESCUED", Count: 2},
		{Row: "DECEASED", Col: "NONE", Count: 1},
		{Row: "INJURED", Col: "RESCUED", Count: 1},
	})
	require.Equal(t, []string{"DECEASED", "INJURED"}, table.Rows)
	require.Equal(t, []string{"NONE", "RESCUED"}, table.Cols)
	require.EqualValues(t, 3, table.At("INJURED", "RESCUED"))
	require.Zero(t, table.At("DECEASED", "RESCUED"))

	require.Equal(t, []charts.Bubble{
		{Row: "DECEASED", Col: "NONE", Count: 1},
		{Row: "INJURED", Col: "RESCUED", Count: 3},
	}, charts.ContingencyToBubble(table))

	empty := charts.ContingencyTable(nil)
	require.True(t, empty.Empty())
	require.Empty(t, charts.ContingencyToBubble(empty))
}

func TestHeatmap(t *testing.T) {
	days := []any{"MONDAY", "TUESDAY"}
	hours := []any{1, 0}

	g := charts.Heatmap([]charts.Cell{
		{X: "MONDAY", Y: int64(0), Count: 4},
		{X: "TUESDAY", Y: int32(1), Count: 2},
		{X: "SUNDAY", Y: int64(1), Count: 9},
		{X: "MONDAY", Y: int64(5), Count: 9},
	}, days, hours, format.EnumValue, format.Hour)

	require.Equal(t, []string{"Monday", "Tuesday"}, g.X)
	require.Equal(t, []string{"1a", "12a"}, g.Y)
	require.Equal(t, [][]int64{{0, 2}, {4, 0}}, g.Z)
}

func TestOptions(t *testing.T) {
	got := charts.Options([]any{"CA", "NY"}, "All States", "all", nil)
	require.Equal(t, []charts.Option{
		{Label: "All States", Value: "all"},
		{Label: "CA", Value: "CA"},
		{Label: "NY", Value: "NY"},
	}, got)

	got = charts.Options([]any{"FD1"}, "", "", func(v any) string { return "Dept " + v.(string) })
	require.Equal(t, []charts.Option{{Label: "Dept FD1", Value: "FD1"}}, got)
}
