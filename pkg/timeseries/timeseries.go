// Package timeseries describes the date intervals and rolling windows used by
// trendline charts.
package timeseries

import (
	"fmt"
	"time"
)

// Interval is the bucket size of a time series.
type Interval string

const (
	Daily     Interval = "daily"
	Weekly    Interval = "weekly"
	Monthly   Interval = "monthly"
	Quarterly Interval = "quarterly"
)

// Style holds the chart formatting of an interval. Formats use strftime
// directives since they are handed to the browser charting library.
type Style struct {
	TickFormat      string `json:"x_tickformat"`
	HoverDateFormat string `json:"hover_date_format"`
}

type config struct {
	sqlTemplate string
	style       Style
	title       func(lo, hi time.Time) string
}

var intervals = map[Interval]config{ //nolint: gochecknoglobals
	Daily: {
		sqlTemplate: "CAST(%s AS DATE)",
		style:       Style{TickFormat: "%Y-%m-%d", HoverDateFormat: "%Y-%m-%d"},
		title: func(lo, hi time.Time) string {
			return span(lo, hi, func(t time.Time) string { return t.Format(time.DateOnly) })
		},
	},
	Weekly: {
		sqlTemplate: "DATE_TRUNC('week', %s)",
		style:       Style{TickFormat: "%Y-%m-%d", HoverDateFormat: "Week of %Y-%m-%d"},
		title: func(lo, hi time.Time) string {
			return span(lo, hi, func(t time.Time) string { return "Week of " + t.Format(time.DateOnly) })
		},
	},
	Monthly: {
		sqlTemplate: "DATE_TRUNC('month', %s)",
		style:       Style{TickFormat: "%b %Y", HoverDateFormat: "%B %Y"},
		title: func(lo, hi time.Time) string {
			return span(lo, hi, func(t time.Time) string { return t.Format("January 2006") })
		},
	},
	Quarterly: {
		sqlTemplate: "DATE_TRUNC('quarter', %s)",
		// the charting library has no quarter directive
		style: Style{TickFormat: "%Y", HoverDateFormat: "%B %Y"},
		title: func(lo, hi time.Time) string {
			return span(lo, hi, func(t time.Time) string {
				return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
			})
		},
	},
}

func span(lo, hi time.Time, f func(time.Time) string) string {
	if lo.Equal(hi) {
		return f(lo)
	}

	return f(lo) + " to " + f(hi)
}

// Parse validates s as an interval name.
func Parse(s string) (Interval, error) {
	if _, ok := intervals[Interval(s)]; !ok {
		return "", fmt.Errorf("unknown time series interval %q", s)
	}

	return Interval(s), nil
}

func (i Interval) config() config {
	if c, ok := intervals[i]; ok {
		return c
	}

	return intervals[Daily]
}

// SQL returns the grouping expression of the interval over column.
func (i Interval) SQL(column string) string {
	return fmt.Sprintf(i.config().sqlTemplate, column)
}

// Style returns the chart formatting of the interval.
func (i Interval) Style() Style {
	return i.config().style
}

// Title renders the chart title for the date range [lo, hi].
func (i Interval) Title(lo, hi time.Time) string {
	return i.config().title(lo, hi)
}

// RollingWindow is the trailing average drawn over a trendline.
type RollingWindow struct {
	Window         int
	IncludeCurrent bool
}

// Frame returns the SQL window frame of the rolling average.
func (w RollingWindow) Frame() string {
	if w.IncludeCurrent {
		return fmt.Sprintf("ROWS BETWEEN %d PRECEDING AND CURRENT ROW", w.Window-1)
	}

	return fmt.Sprintf("ROWS BETWEEN %d PRECEDING AND 1 PRECEDING", w.Window)
}

// Expression returns the rolling average of COUNT(*) ordered by orderBy.
func (w RollingWindow) Expression(orderBy string) string {
	return fmt.Sprintf("AVG(COUNT(*)) OVER (ORDER BY %s %s)", orderBy, w.Frame())
}

// Label describes the window, e.g. "7-day" or "previous 7-day".
func (w RollingWindow) Label() string {
	if w.IncludeCurrent {
		return fmt.Sprintf("%d-day", w.Window)
	}

	return fmt.Sprintf("previous %d-day", w.Window)
}
