package cornsacks

import (
	"fmt"
	"nerisdash/pkg/format"
	"nerisdash/pkg/timeseries"
)

// Chart guidance.
const (
	GuidanceDrillDown = "Clicking a value in this chart will focus the chart on that selection, " +
		"and will filter the data in the rest of the dashboard to just that selection."
	GuidanceBoxSelect       = "Drag a box on the chart to select a range to filter the data."
	GuidanceVisualDrillDown = "Clicking a value in this chart will focus the chart on that selection, " +
		"but will not filter the data in the rest of the dashboard."
	GuidanceAdjustHierarchical = "Adjust the filter using the hierarchical bar at the top of the chart, " +
		"or click the 'Clear all filters' button to reset all filters."
	GuidanceAdjustBoxSelect = "Adjust the filter by dragging a box around a different range, " +
		"or click the 'Clear all filters' button to reset all filters."
	GuidanceAdjustTrendline = "Adjust the filter by dragging a box around a different range, " +
		"using the date pickers to modify the range, clicking the 'Clear filter' button to clear " +
		"this chart's filter, or clicking the 'Clear all filters' button to reset all filters."
	GuidanceFFRadio = "Click the radio buttons at the top of the chart to toggle between civilian and " +
		"firefighter casualty and rescue types. Defaults to civilian."
)

// Data descriptions.
const (
	DescribeIncidentTypes = "All incident types for the incident reports matching the current filter settings. " +
		"Note that these are not 1:1 with the incident reports, as an incident may have up to three different types."
	DescribeDepartmentAid = "Mutual aid by direction and type for the incident reports matching the current filter settings. " +
		"Note that these are not 1:1 with the incident reports, as an incident may have multiple aid instances."
	DescribeCallCreateByDay = "Count of incidents reports by date of call creation for the incident reports " +
		"matching the current filter settings."
	DescribeLocationUse = "All primary location use types for the incident reports matching the current filter settings. " +
		"Note this is an optional field in NERIS: those for which it was not provided have a value of 'No Location Use Provided'."
	DescribeCasualtyRescue = "Distribution of casualty types and rescue types for the incident reports " +
		"matching the current filter settings."
)

// DescribeRollingAverage explains the rolling average line of the trendline.
func DescribeRollingAverage(w timeseries.RollingWindow) string {
	return fmt.Sprintf("The dashed grey line represents the %s rolling average of incident counts, "+
		"helping identify unusually high or low-volume days.", w.Label())
}

// DescribeDayHour explains the day by hour heatmap. An empty timezone is UTC.
func DescribeDayHour(timezone string) string {
	if timezone == "" {
		timezone = "UTC"
	}

	return fmt.Sprintf("The day of week and hour of day (%s) of call creation time for the incident "+
		"reports matching the current filter settings.", timezone)
}

// DescribeSampledPoints explains the sampled incident map points.
func DescribeSampledPoints(maxPoints int) []string {
	return []string{
		fmt.Sprintf("A subset of up to %s incident point for the incident reports matching the current filter settings.",
			format.Int(int64(maxPoints))),
		"These are taken from the incident point, geocoded incident location, dispatch point, " +
			"and geocoded dispatch location (in that order of priority).",
	}
}

// Metrics describes each summary card, keyed like SummaryCards.
var Metrics = map[string]string{ //nolint: gochecknoglobals
	"total_count":           "Count of all distinct incident reports in NERIS matching the current filter settings.",
	"total_unit_responses":  "Count of all incident unit responses for the incident reports matching the current filter settings.",
	"p90_duration":          "90th percentile duration (time from call creation to incident clearance) for the incident reports matching the current filter settings.", //nolint: lll
	"casualty_rescue_count": "Total count of individuals involved in a casualty and/or rescue for the incident reports matching the current filter settings.",          //nolint: lll
	"total_displacements":   "Total count of people or businesses displaced for the incident reports matching the current filter settings.",
	"total_rescue_animals":  "Total count of animals rescued for the incident reports matching the current filter settings.",
	"total_exposures":       "Total count of exposures for the incident reports matching the current filter settings.",
	"csst_count":            "Total count of incidents identified as involving Corrugated Stainless Steel Tubing for the incident reports matching the current filter settings.", //nolint: lll
	"electric_count":        "Total count of incidents identified as involving electrical hazards for the incident reports matching the current filter settings.",                //nolint: lll
	"powergen_count":        "Total count of incidents identified as involving power generation equipment for the incident reports matching the current filter settings.",        //nolint: lll
	"medical_oxygen_count":  "Total count of incidents identified as involving medical oxygen for the incident reports matching the current filter settings.",                    //nolint: lll
}
