// Package cornsacks describes the cornsacks incident dashboard: its filter
// registry, parquet tables and the typed queries its panels run.
package cornsacks

import (
	"nerisdash/pkg/aggregate"
	"nerisdash/pkg/filters"
	"nerisdash/pkg/format"
)

// Filter keys.
const (
	AuthorizedNerisIDs      = "authorized_neris_ids"
	CSSTHazardOnly          = "csst_hazard_only"
	ElectricHazardOnly      = "electric_hazard_only"
	PowergenHazardOnly      = "powergen_hazard_only"
	MedicalOxygenHazardOnly = "medical_oxygen_hazard_only"
	AidDirection            = "aid_direction"
	DepartmentState         = "department_state"
	NerisIDDept             = "neris_id_dept"
	StartDate               = "start_date"
	EndDate                 = "end_date"
	DayOfWeek               = "day_of_week"
	Hour                    = "hour"
	LocationUsePath         = "location_use_path"
	PrimaryOnly             = "primary_only"
	TypeIncident            = "type_incident"
	TypeFFNonFF             = "type_ff_nonff"
)

// LocationUseExpr is the location use path with a placeholder for incidents
// that did not report one.
const LocationUseExpr = "COALESCE(type_location_use, 'No Location Use Provided')"

// DayOrder is the order of the day of week axis.
var DayOrder = []any{ //nolint: gochecknoglobals
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// HourOrder lists the hours of a day, 0 to 23.
var HourOrder = hours(false) //nolint: gochecknoglobals

// HeatmapHourOrder lists the hours top down as the heatmap shows them.
var HeatmapHourOrder = hours(true) //nolint: gochecknoglobals

func hours(reverse bool) []any {
	out := make([]any, 24)
	for i := range out {
		if reverse {
			out[i] = 23 - i
		} else {
			out[i] = i
		}
	}

	return out
}

var (
	dayOfWeekFormatter = format.RangeFormatter(DayOrder, nil)          //nolint: gochecknoglobals
	hourFormatter      = format.RangeFormatter(HourOrder, format.Hour) //nolint: gochecknoglobals
)

// Registry holds the cornsacks filters, grouped by the table they apply to.
var Registry = newRegistry() //nolint: gochecknoglobals

func newRegistry() *filters.Registry {
	r := filters.NewRegistry()
	r.AddGroup("incidents",
		filters.NewConfig(AuthorizedNerisIDs, "neris_id_dept", filters.CategoricalList,
			filters.FromCache(), filters.ExcludeFromDisplay(), filters.NotClearable()),
		filters.NewConfig(CSSTHazardOnly, "csst_hazard_flag", filters.Boolean),
		filters.NewConfig(ElectricHazardOnly, "electric_hazard_flag", filters.Boolean),
		filters.NewConfig(PowergenHazardOnly, "powergen_hazard_flag", filters.Boolean),
		filters.NewConfig(MedicalOxygenHazardOnly, "medical_oxygen_hazard_flag", filters.Boolean),
		filters.NewConfig(AidDirection, "aid_direction", filters.Categorical),
		filters.NewConfig(DepartmentState, "department_state", filters.Categorical),
		filters.NewConfig(NerisIDDept, "neris_id_dept", filters.Categorical,
			filters.WithDisplayName("Department NERIS ID")),
		filters.NewConfig(StartDate, "call_create", filters.DateGTE),
		filters.NewConfig(EndDate, "call_create", filters.DateLTE),
		filters.NewConfig(DayOfWeek, "call_create_day_of_week", filters.CategoricalList,
			filters.WithFormatter(dayOfWeekFormatter)),
		filters.NewConfig(Hour, "call_create_hour", filters.CategoricalList,
			filters.WithFormatter(hourFormatter)),
		filters.NewConfig(LocationUsePath, LocationUseExpr, filters.Prefix),
	)
	r.AddGroup("incident_types",
		filters.NewConfig(PrimaryOnly, "primary_type", filters.Boolean, filters.ExcludeFromDisplay()),
		filters.NewConfig(TypeIncident, "type_incident", filters.Prefix),
	)
	r.AddGroup("casualty_rescues",
		filters.NewConfig(TypeFFNonFF, "type_ff_nonff", filters.Categorical),
	)

	return r
}

// SidebarKeys are the filters with a sidebar control, in the order the
// sidebar lists them.
var SidebarKeys = []string{ //nolint: gochecknoglobals
	CSSTHazardOnly,
	ElectricHazardOnly,
	PowergenHazardOnly,
	MedicalOxygenHazardOnly,
	AidDirection,
	DepartmentState,
	NerisIDDept,
	StartDate,
	EndDate,
}

// SummaryStats are the summary card statistics computed over incidents.
var SummaryStats = aggregate.NewGroup( //nolint: gochecknoglobals
	aggregate.Stat{Expr: "COUNT(*)", Alias: "total_count", Default: "0"},
	aggregate.Stat{Expr: "SUM(unit_response_count)", Alias: "total_unit_responses", Default: "0"},
	aggregate.Stat{
		Expr:    "CAST(COALESCE(QUANTILE_CONT(duration, 0.9), 0) AS BIGINT)",
		Alias:   "p90_duration",
		Default: "0m 0s",
		Extract: func(value, def any) any { return format.SecondsToMinutesSeconds(value, def.(string)) }, //nolint: forcetypeassert
	},
	aggregate.Stat{Expr: "SUM(csst_hazard_flag)", Alias: "csst_count", Default: "0"},
	aggregate.Stat{Expr: "SUM(electric_hazard_flag)", Alias: "electric_count", Default: "0"},
	aggregate.Stat{Expr: "SUM(powergen_hazard_flag)", Alias: "powergen_count", Default: "0"},
	aggregate.Stat{Expr: "SUM(medical_oxygen_hazard_flag)", Alias: "medical_oxygen_count", Default: "0"},
	aggregate.Stat{Expr: "SUM(displacement_count)", Alias: "total_displacements", Default: "0"},
	aggregate.Stat{Expr: "SUM(rescue_animal)", Alias: "total_rescue_animals", Default: "0"},
	aggregate.Stat{Expr: "SUM(exposure_count)", Alias: "total_exposures", Default: "0"},
)
