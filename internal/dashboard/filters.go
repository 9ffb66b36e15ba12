package dashboard

import (
	"context"
	"nerisdash/internal/cornsacks"
	"nerisdash/pkg/charts"
	"nerisdash/pkg/filters"
	"slices"
)

// DefaultCasualtyFF is the casualty radio value after the filters are cleared.
const DefaultCasualtyFF = "NONFF"

// SidebarInputs are the values of the sidebar filter controls. Hazard
// checklists hold their filter key when checked.
type SidebarInputs struct {
	CSSTHazard          []string `json:"csst_hazard"`
	ElectricHazard      []string `json:"electric_hazard"`
	PowergenHazard      []string `json:"powergen_hazard"`
	MedicalOxygenHazard []string `json:"medical_oxygen_hazard"`
	AidDirection        string   `json:"aid_direction"`
	DepartmentState     string   `json:"department_state"`
	NerisIDDept         string   `json:"neris_id_dept"`
	StartDate           string   `json:"start_date"`
	EndDate             string   `json:"end_date"`
}

func orAll(v string) string {
	if v == "" {
		return filters.AllValue
	}

	return v
}

func orNil(v string) any {
	if v == "" {
		return nil
	}

	return v
}

func startFrom(current filters.Values) filters.Values {
	if current == nil {
		return cornsacks.Registry.Defaults()
	}

	return copyValues(current)
}

// UpdateStore applies the sidebar inputs to the filter store. Chart
// selections are left to the crossfilter controllers.
func UpdateStore(current filters.Values, in SidebarInputs) filters.Values {
	out := startFrom(current)
	out[cornsacks.CSSTHazardOnly] = slices.Contains(in.CSSTHazard, cornsacks.CSSTHazardOnly)
	out[cornsacks.ElectricHazardOnly] = slices.Contains(in.ElectricHazard, cornsacks.ElectricHazardOnly)
	out[cornsacks.PowergenHazardOnly] = slices.Contains(in.PowergenHazard, cornsacks.PowergenHazardOnly)
	out[cornsacks.MedicalOxygenHazardOnly] = slices.Contains(in.MedicalOxygenHazard, cornsacks.MedicalOxygenHazardOnly)
	out[cornsacks.AidDirection] = orAll(in.AidDirection)
	out[cornsacks.DepartmentState] = orAll(in.DepartmentState)
	out[cornsacks.NerisIDDept] = orAll(in.NerisIDDept)
	out[cornsacks.StartDate] = orNil(in.StartDate)
	out[cornsacks.EndDate] = orNil(in.EndDate)

	return out
}

// FilterDisplay renders the active filters.
func FilterDisplay(values filters.Values) filters.Display {
	if values == nil {
		values = filters.Values{}
	}

	return cornsacks.Registry.FormatDisplay(values)
}

// SyncUI returns the sidebar control values for the store, in
// cornsacks.SidebarKeys order.
func SyncUI(values filters.Values) []any {
	return cornsacks.Registry.ClearableUIValues(values, cornsacks.SidebarKeys)
}

// ClearTrendline resets the date range set by the trendline chart.
func ClearTrendline(current filters.Values) filters.Values {
	out := startFrom(current)
	defaults := cornsacks.Registry.Defaults()
	out[cornsacks.StartDate] = defaults[cornsacks.StartDate]
	out[cornsacks.EndDate] = defaults[cornsacks.EndDate]

	return out
}

// Cleared is the dashboard state after "Clear all filters".
type Cleared struct {
	Filters    filters.Values `json:"filters"`
	CasualtyFF string         `json:"casualty_ff"`
}

// ClearAll resets every clearable filter, keeping the permission filter.
func ClearAll(current filters.Values) Cleared {
	out := startFrom(current)
	for k, v := range cornsacks.Registry.ClearableDefaults() {
		out[k] = v
	}

	return Cleared{Filters: out, CasualtyFF: DefaultCasualtyFF}
}

// LastUpdated returns when the incidents data was last written.
func (s *Service) LastUpdated(ctx context.Context, scope Scope) (string, error) {
	return memoize(ctx, s, "last_updated", scope, nil, func(ctx context.Context) (string, error) {
		return s.incidents(scope).LastUpdated(ctx), nil
	})
}

// StateOptions lists the department states matching every filter but the
// state filter itself.
func (s *Service) StateOptions(ctx context.Context, scope Scope) ([]charts.Option, error) {
	scope = scope.WithFilters(without(scope.values(), cornsacks.DepartmentState))

	return memoize(ctx, s, "state_options", scope, nil, func(ctx context.Context) ([]charts.Option, error) {
		states, err := s.incidents(scope).UniqueDepartmentStates(ctx)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(states))
		for i, st := range states {
			values[i] = st
		}

		return charts.Options(values, "All States", filters.AllValue, nil), nil
	})
}

// DepartmentOption is a department dropdown entry.
type DepartmentOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Title string `json:"title"`
}

// DepartmentOptions lists the departments matching every filter but the
// department filter itself.
func (s *Service) DepartmentOptions(ctx context.Context, scope Scope) ([]DepartmentOption, error) {
	scope = scope.WithFilters(without(scope.values(), cornsacks.NerisIDDept))

	return memoize(ctx, s, "department_options", scope, nil, func(ctx context.Context) ([]DepartmentOption, error) {
		departments, err := s.incidents(scope).UniqueDepartments(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]DepartmentOption, 0, len(departments))
		for _, d := range departments {
			label := d.Label()
			out = append(out, DepartmentOption{Label: label, Value: d.NerisID, Title: label})
		}

		return out, nil
	})
}
