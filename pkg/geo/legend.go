package geo

import "net/url"

// LegendItem is a legend row: a color dot or an SVG icon, and a label.
type LegendItem struct {
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
	// Image is a data URL of the SVG icon, if any.
	Image string `json:"image,omitempty"`
}

// NewLegendItem builds an item. svg takes precedence over color.
func NewLegendItem(label, color, svg string) LegendItem {
	item := LegendItem{Label: label}
	if svg != "" {
		item.Image = "data:image/svg+xml," + url.PathEscape(svg)

		return item
	}
	item.Color = color

	return item
}

// LegendSection is a group of items with an optional title.
type LegendSection struct {
	Title string       `json:"title,omitempty"`
	Items []LegendItem `json:"items"`
}

// Legend is the map legend; sections are separated by a rule when rendered.
type Legend struct {
	Sections []LegendSection `json:"sections"`
}

// NewLegend drops empty sections.
func NewLegend(sections ...LegendSection) Legend {
	l := Legend{Sections: []LegendSection{}}
	for _, s := range sections {
		if s.Title == "" && len(s.Items) == 0 {
			continue
		}
		l.Sections = append(l.Sections, s)
	}

	return l
}
