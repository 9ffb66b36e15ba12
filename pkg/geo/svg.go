package geo

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// Station is the fire station symbol: a diamond with a 2:3 aspect ratio,
// Size being its height.
type Station struct {
	Fill        string
	Stroke      string
	StrokeWidth int
	FillOpacity float64
	Size        int
}

// DefaultStation is the station symbol used on the map.
func DefaultStation() Station {
	return Station{Fill: "#800000", Stroke: "#b00202", StrokeWidth: 4, FillOpacity: 1, Size: 30}
}

// SVG renders the symbol.
func (s Station) SVG() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" viewBox="0 0 100 150" xmlns="http://www.w3.org/2000/svg">`+
		`<path d="M50 0 L100 75 L50 150 L0 75 Z" fill="%s" fill-opacity="%s" stroke="%s" stroke-width="%d"/></svg>`,
		s.Size*2/3, s.Size, s.Fill, opacity(s.FillOpacity), s.Stroke, s.StrokeWidth)
}

// HQ is the department headquarters symbol, a ring.
type HQ struct {
	Stroke      string
	StrokeWidth int
	FillOpacity float64
	Size        int
}

// DefaultHQ is the headquarters symbol used on the map.
func DefaultHQ() HQ {
	return HQ{Stroke: "#3020a8", StrokeWidth: 15, FillOpacity: 0, Size: 24}
}

// SVG renders the symbol.
func (h HQ) SVG() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg">`+
		`<circle cx="50" cy="50" r="35" stroke="%s" stroke-width="%d" fill="white" fill-opacity="%s" /></svg>`,
		h.Size, h.Size, h.Stroke, h.StrokeWidth, opacity(h.FillOpacity))
}

// GeocodeMark marks a geocoded address: a dashed square with a cross.
type GeocodeMark struct {
	Color string
	Size  int
}

// DefaultGeocodeMark is the mark used for address search results.
func DefaultGeocodeMark() GeocodeMark {
	return GeocodeMark{Color: "#7A76F7", Size: 24}
}

// SVG renders the mark.
func (g GeocodeMark) SVG() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" viewBox="0 0 24 24" fill="none" xmlns="http://www.w3.org/2000/svg">`+
		`<rect x="2" y="2" width="20" height="20" stroke="gray" stroke-width="1.5" stroke-dasharray="3,3" fill="none" opacity="0.6" />`+
		`<path d="M18 6L6 18M6 6l12 12" stroke="%s" stroke-width="3" opacity="0.7" stroke-linecap="round" /></svg>`,
		g.Size, g.Size, g.Color)
}

// Icon is a Leaflet marker icon.
type Icon struct {
	URL    string `json:"iconUrl"`
	Size   [2]int `json:"iconSize"`
	Anchor [2]int `json:"iconAnchor"`
}

// Icon renders the mark as a base64 data URL icon anchored at its center.
func (g GeocodeMark) Icon() Icon {
	return Icon{
		URL:    "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(g.SVG())),
		Size:   [2]int{g.Size, g.Size},
		Anchor: [2]int{g.Size / 2, g.Size / 2},
	}
}

func opacity(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
