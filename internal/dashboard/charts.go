package dashboard

import (
	"context"
	"nerisdash/internal/cornsacks"
	"nerisdash/pkg/charts"
	"nerisdash/pkg/colors"
	"nerisdash/pkg/filters"
	"nerisdash/pkg/geo"

	"golang.org/x/sync/errgroup"
)

// AidTiers returns how deep the aid sunburst goes: departments only show up
// once a single department is selected.
func AidTiers(values filters.Values) int {
	if Department(values) != "" {
		return 3
	}

	return 2
}

// AidSunburst builds the mutual aid sunburst.
func (s *Service) AidSunburst(ctx context.Context, scope Scope) (*HierarchyFigure, error) {
	return memoize(ctx, s, "aid_sunburst", scope, nil, func(ctx context.Context) (*HierarchyFigure, error) {
		counts, err := cornsacks.AidPathCounts(ctx, s.incidents(scope).Aid(), AidTiers(scope.values()))
		if err != nil {
			return nil, err
		}

		return hierarchyFigure("sunburst", counts, "", nil), nil
	})
}

// BubbleFigure is the casualty type by rescue type bubble chart.
type BubbleFigure struct {
	Bubbles []charts.Bubble `json:"bubbles"`
	Rows    []string        `json:"rows"`
	Cols    []string        `json:"cols"`
	Color   string          `json:"color"`
	XTitle  string          `json:"x_title"`
	YTitle  string          `json:"y_title"`
	Height  int             `json:"height"`
}

// CasualtyBubble builds the casualty rescue bubble chart for civilians or,
// with ff set to "FF", firefighters. The radio filter only applies here.
func (s *Service) CasualtyBubble(ctx context.Context, scope Scope, ff string) (*BubbleFigure, error) {
	values := copyValues(scope.values())
	if ff != "" {
		values[cornsacks.TypeFFNonFF] = ff
	}
	scope = scope.WithFilters(values)

	return memoize(ctx, s, "casualty_bubble", scope, nil, func(ctx context.Context) (*BubbleFigure, error) {
		pairs, err := cornsacks.ContingencyCounts(ctx, s.incidents(scope).CasualtyRescues(values))
		if err != nil {
			return nil, err
		}

		table := charts.ContingencyTable(pairs)
		color := colors.NonFF
		if ff == "FF" {
			color = colors.FF
		}

		return &BubbleFigure{
			Bubbles: charts.ContingencyToBubble(table),
			Rows:    charts.SortNotReportedLast(table.Rows),
			Cols:    charts.SortNotReportedLast(table.Cols),
			Color:   color,
			XTitle:  "Rescue Type",
			YTitle:  "Casualty Type",
			Height:  600,
		}, nil
	})
}

// Demographics counts the people involved in casualties and rescues by
// demographic fields.
func (s *Service) Demographics(ctx context.Context, scope Scope) ([]cornsacks.Demographic, error) {
	return memoize(ctx, s, "demographics", scope, nil, func(ctx context.Context) ([]cornsacks.Demographic, error) {
		return cornsacks.DemographicCounts(ctx, s.incidents(scope).CasualtyRescues(scope.values()))
	})
}

// SummaryCards computes the summary cards.
func (s *Service) SummaryCards(ctx context.Context, scope Scope) (cornsacks.SummaryCards, error) {
	return memoize(ctx, s, "summary_cards", scope, nil, func(ctx context.Context) (cornsacks.SummaryCards, error) {
		return s.incidents(scope).SummaryCards(ctx)
	})
}

// Overview holds every panel that only depends on the filter store.
type Overview struct {
	Display     filters.Display        `json:"display"`
	LastUpdated string                 `json:"last_updated"`
	States      []charts.Option        `json:"state_options"`
	Departments []DepartmentOption     `json:"department_options"`
	Summary     cornsacks.SummaryCards `json:"summary"`
	Aid         *HierarchyFigure       `json:"aid_sunburst"`
	Casualty    *BubbleFigure          `json:"casualty_bubble"`
	Legend      geo.Legend             `json:"legend"`
	DeptToggle  bool                   `json:"dept_toggle_disabled"`
}

// Overview loads the store driven panels in parallel. ff is the casualty
// radio value and showStations the station toggle.
func (s *Service) Overview(ctx context.Context, scope Scope, ff string, showStations bool) (*Overview, error) {
	out := &Overview{
		Display:    FilterDisplay(scope.values()),
		Legend:     Legend(scope.values(), showStations),
		DeptToggle: DeptToggleDisabled(scope.values()),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.LastUpdated, err = s.LastUpdated(ctx, scope)

		return err
	})
	g.Go(func() (err error) {
		out.States, err = s.StateOptions(ctx, scope)

		return err
	})
	g.Go(func() (err error) {
		out.Departments, err = s.DepartmentOptions(ctx, scope)

		return err
	})
	g.Go(func() (err error) {
		out.Summary, err = s.SummaryCards(ctx, scope)

		return err
	})
	g.Go(func() (err error) {
		out.Aid, err = s.AidSunburst(ctx, scope)

		return err
	})
	g.Go(func() (err error) {
		out.Casualty, err = s.CasualtyBubble(ctx, scope, ff)

		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint: wrapcheck
	}

	return out, nil
}
