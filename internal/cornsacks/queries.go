package cornsacks

import (
	"context"
	"fmt"
	"nerisdash/pkg/charts"
	"nerisdash/pkg/format"
	"nerisdash/pkg/relation"
	"sort"

	"github.com/doug-martin/goqu/v9"
)

func pathCounts(ctx context.Context, rel *relation.Relation, pathExpr string) ([]charts.PathCount, error) {
	var out []charts.PathCount
	err := rel.WhereSQL(pathExpr+" IS NOT NULL").ScanAggregate(ctx, &out,
		[]any{goqu.L(pathExpr).As("path"), goqu.L("COUNT(*)").As("count")},
		pathExpr,
	)
	if err != nil {
		return nil, fmt.Errorf("could not count paths: %w", err)
	}

	return out, nil
}

// IncidentTypePathCounts counts the rows of an incident types relation by
// type path.
func IncidentTypePathCounts(ctx context.Context, types *relation.Relation) ([]charts.PathCount, error) {
	return pathCounts(ctx, types, "type_incident")
}

// AidPathExpr is the aid path cut to its first maxTiers tiers. maxTiers <= 0
// keeps the whole path.
func AidPathExpr(maxTiers int) string {
	if maxTiers <= 0 {
		return "aid_concat"
	}

	return fmt.Sprintf("array_to_string(list_slice(string_split(aid_concat, '%s'), 1, %d), '%s')",
		charts.Separator, maxTiers, charts.Separator)
}

// AidPathCounts counts the rows of an aid relation by aid path truncated to
// maxTiers tiers.
func AidPathCounts(ctx context.Context, aid *relation.Relation, maxTiers int) ([]charts.PathCount, error) {
	return pathCounts(ctx, aid, AidPathExpr(maxTiers))
}

// LocationUsePathCounts counts incidents by location use path.
func (i *Incidents) LocationUsePathCounts(ctx context.Context) ([]charts.PathCount, error) {
	return pathCounts(ctx, i.Relation, LocationUseExpr)
}

func notReported(column string) string {
	return fmt.Sprintf("COALESCE(%s, '%s')", column, charts.NotReported)
}

// ContingencyCounts counts casualty rescue rows by casualty type (row) and
// rescue type (column).
func ContingencyCounts(ctx context.Context, casualtyRescues *relation.Relation) ([]charts.Pair, error) {
	row, col := notReported("type_casualty"), notReported("type_rescue")

	var out []charts.Pair
	err := casualtyRescues.ScanAggregate(ctx, &out,
		[]any{goqu.L(row).As("row"), goqu.L(col).As("col"), goqu.L("COUNT(*)").As("count")},
		row, col,
	)
	if err != nil {
		return nil, fmt.Errorf("could not count casualty rescue types: %w", err)
	}

	return out, nil
}

// Demographic is the number of people with a combination of demographic fields.
type Demographic struct {
	Race   string `db:"type_race" json:"type_race"`
	Gender string `db:"type_gender" json:"type_gender"`
	FFType string `db:"type_ff_nonff" json:"type_ff_nonff"`
	AgeBin string `db:"age_bin" json:"age_bin"`
	Count  int64  `db:"count" json:"count"`
}

// DemographicCounts counts casualty rescue rows by race, gender, firefighter
// status and age bin.
func DemographicCounts(ctx context.Context, casualtyRescues *relation.Relation) ([]Demographic, error) {
	columns := []string{"type_race", "type_gender", "type_ff_nonff", "age_bin"}
	exprs := make([]any, 0, len(columns)+1)
	groupBy := make([]string, 0, len(columns))
	for _, c := range columns {
		exprs = append(exprs, goqu.L(notReported(c)).As(c))
		groupBy = append(groupBy, notReported(c))
	}
	exprs = append(exprs, goqu.L("COUNT(*)").As("count"))

	var out []Demographic
	if err := casualtyRescues.ScanAggregate(ctx, &out, exprs, groupBy...); err != nil {
		return nil, fmt.Errorf("could not count demographics: %w", err)
	}

	return out, nil
}

type dayHourCount struct {
	Day   string `db:"day"`
	Hour  int64  `db:"hour"`
	Count int64  `db:"count"`
}

// DayHourCounts counts incidents by day of week (x) and hour of day (y) of
// call creation.
func (i *Incidents) DayHourCounts(ctx context.Context) ([]charts.Cell, error) {
	var rows []dayHourCount
	err := i.WhereSQL("call_create_day_of_week IS NOT NULL AND call_create_hour IS NOT NULL").
		ScanAggregate(ctx, &rows, []any{
			goqu.L("call_create_day_of_week").As("day"),
			goqu.L("call_create_hour").As("hour"),
			goqu.L("COUNT(*)").As("count"),
		}, "call_create_day_of_week", "call_create_hour")
	if err != nil {
		return nil, fmt.Errorf("could not count day hours: %w", err)
	}

	cells := make([]charts.Cell, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, charts.Cell{X: r.Day, Y: r.Hour, Count: r.Count})
	}

	return cells, nil
}

// UniqueDepartmentStates returns the sorted department states.
func (i *Incidents) UniqueDepartmentStates(ctx context.Context) ([]string, error) {
	values, err := i.Distinct(ctx, "department_state")
	if err != nil {
		return nil, err
	}

	states := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		states = append(states, fmt.Sprint(v))
	}
	sort.Strings(states)

	return states, nil
}

// Department is one department present in the incidents.
type Department struct {
	Name    string `db:"department_name" json:"department_name"`
	State   string `db:"department_state" json:"department_state"`
	NerisID string `db:"neris_id_dept" json:"neris_id_dept"`
}

// Label renders "Name - ST (ID)".
func (d Department) Label() string {
	return fmt.Sprintf("%s - %s (%s)", d.Name, d.State, d.NerisID)
}

// UniqueDepartments returns the departments sorted by name.
func (i *Incidents) UniqueDepartments(ctx context.Context) ([]Department, error) {
	var out []Department
	err := i.WhereSQL("neris_id_dept IS NOT NULL").ScanAggregate(ctx, &out, []any{
		goqu.L("COALESCE(department_name, '')").As("department_name"),
		goqu.L("COALESCE(department_state, '')").As("department_state"),
		goqu.L("neris_id_dept").As("neris_id_dept"),
	}, "department_name", "department_state", "neris_id_dept")
	if err != nil {
		return nil, fmt.Errorf("could not list departments: %w", err)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Name != out[b].Name {
			return out[a].Name < out[b].Name
		}

		return out[a].NerisID < out[b].NerisID
	})

	return out, nil
}

// SummaryCards are the values of the summary cards, already formatted.
type SummaryCards struct {
	TotalCount          string `json:"total_count"`
	TotalUnitResponses  string `json:"total_unit_responses"`
	P90Duration         string `json:"p90_duration"`
	CSSTCount           string `json:"csst_count"`
	ElectricCount       string `json:"electric_count"`
	PowergenCount       string `json:"powergen_count"`
	MedicalOxygenCount  string `json:"medical_oxygen_count"`
	CasualtyRescueCount string `json:"casualty_rescue_count"`
	TotalDisplacements  string `json:"total_displacements"`
	TotalRescueAnimals  string `json:"total_rescue_animals"`
	TotalExposures      string `json:"total_exposures"`
}

// SummaryCards computes the summary card statistics, counting casualty
// rescues of the filtered incidents regardless of firefighter status.
func (i *Incidents) SummaryCards(ctx context.Context) (SummaryCards, error) {
	stats, err := i.AggregateStats(ctx, SummaryStats)
	if err != nil {
		return SummaryCards{}, err
	}
	casualtyRescues, err := i.CasualtyRescues(nil).Count(ctx)
	if err != nil {
		return SummaryCards{}, err
	}

	str := func(alias string) string {
		if v, ok := stats[alias]; ok && v != nil {
			return fmt.Sprint(v)
		}

		return fmt.Sprint(SummaryStats.Defaults()[alias])
	}

	return SummaryCards{
		TotalCount:          str("total_count"),
		TotalUnitResponses:  str("total_unit_responses"),
		P90Duration:         str("p90_duration"),
		CSSTCount:           str("csst_count"),
		ElectricCount:       str("electric_count"),
		PowergenCount:       str("powergen_count"),
		MedicalOxygenCount:  str("medical_oxygen_count"),
		CasualtyRescueCount: format.Int(casualtyRescues),
		TotalDisplacements:  str("total_displacements"),
		TotalRescueAnimals:  str("total_rescue_animals"),
		TotalExposures:      str("total_exposures"),
	}, nil
}
