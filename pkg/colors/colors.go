// Package colors holds the dashboard palettes and helpers to derive shades
// for hierarchical charts.
package colors

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// FF marks firefighter casualties.
	FF = "#c95d26"
	// NonFF marks civilian casualties.
	NonFF = "#21b8a4"
	// Marker is used for map markers with no category color.
	Marker = "#808080"
	// Hierarchy is used for hierarchy nodes without a base color.
	Hierarchy = "#D3D3D3"
	// HierarchyIncrement lightens each tier below the top level.
	HierarchyIncrement = 0.15

	separator = "||"
)

// Sequence is the qualitative color sequence of general charts.
var Sequence = []string{ //nolint: gochecknoglobals
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A",
	"#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E2",
}

// IncidentTypes colors top level incident types.
var IncidentTypes = map[string]string{ //nolint: gochecknoglobals
	"FIRE":       "#c42b47",
	"MEDICAL":    "#997b02",
	"HAZSIT":     "#4ECDC4",
	"RESCUE":     "#9302a6",
	"NOEMERG":    "#038c6a",
	"LAWENFORCE": "#047a94",
	"PUBSERV":    "#BF6717",
}

// LocationUses colors top level location uses.
var LocationUses = map[string]string{ //nolint: gochecknoglobals
	"AGRICULTURE_STRUCT": "#8d6e63",
	"ASSEMBLY":           "#ec407a",
	"COMMERCIAL":         "#5c6bc0",
	"EDUCATION":          "#ffa726",
	"GOVERNMENT":         "#26a69a",
	"INDUSTRIAL":         "#78909c",
	"HEALTH_CARE":        "#66bb6a",
	"RESIDENTIAL":        "#42a5f5",
	"UNCLASSIFIED":       "#bdbdbd",
	"UTILITY_MISC":       "#26c6da",
	"STORAGE":            "#7e57c2",
	"ROADWAY_ACCESS":     "#607d8b",
	"OUTDOOR":            "#9ccc65",
	"OUTDOOR_INDUSTRIAL": "#546e7a",
}

// RGB is a color with channels in [0, 1].
type RGB struct {
	R, G, B float64
}

// HexToRGB parses "#RRGGBB" (the leading # is optional).
func HexToRGB(hex string) (RGB, error) {
	c, err := colorful.Hex("#" + strings.TrimPrefix(hex, "#"))
	if err != nil {
		return RGB{}, err //nolint: wrapcheck
	}

	return RGB{R: c.R, G: c.G, B: c.B}, nil
}

// Hex renders c as lower case "#rrggbb".
func (c RGB) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}

// Lighten raises the HLS lightness of hex by amount of the remaining
// headroom, capped at white. Unparseable colors are returned unchanged.
func Lighten(hex string, amount float64) string {
	c, err := colorful.Hex("#" + strings.TrimPrefix(hex, "#"))
	if err != nil {
		return hex
	}

	h, s, l := c.Hsl()
	l = math.Min(1, l+amount*(1-l))

	return colorful.Hsl(h, s, l).Clamped().Hex()
}

// Hierarchical assigns a color to every "||" separated hierarchy ID: top
// level IDs take their base color, deeper tiers are lightened by increment
// per level. Empty and "all" IDs, and IDs without a base color, use def.
func Hierarchical(ids []string, base map[string]string, def string, increment float64) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if id == "" || id == "all" {
			out[id] = def

			continue
		}

		tiers := strings.Split(id, separator)
		color, ok := base[tiers[0]]
		if !ok {
			color = def
		}
		if len(tiers) == 1 {
			out[id] = color

			continue
		}
		out[id] = Lighten(color, float64(len(tiers)-1)*increment)
	}

	return out
}
