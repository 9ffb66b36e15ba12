package geo

import (
	"fmt"
	"html/template"
	"nerisdash/pkg/colors"
	"net/url"
	"strings"
)

// Hideout carries the styling context of a point layer, as passed to the
// client side marker factory.
type Hideout struct {
	Colors       map[string]string `json:"colors,omitempty"`
	DefaultColor string            `json:"defaultColor,omitempty"`
	IconSVG      string            `json:"iconSvg,omitempty"`
	IconSize     int               `json:"iconSize,omitempty"`
	HQSVG        string            `json:"hqSvg,omitempty"`
	StationSVG   string            `json:"stationSvg,omitempty"`
}

// Marker is the rendering directive of a point feature.
type Marker struct {
	Color    string `json:"color"`
	IconSVG  string `json:"iconSvg,omitempty"`
	IconSize int    `json:"iconSize,omitempty"`
}

// MarkerStyle picks the marker of an incident feature: the hideout color of
// its incident_type, else the hideout default color, else colors.Marker.
func MarkerStyle(f Feature, h Hideout) Marker {
	m := Marker{IconSVG: h.IconSVG, IconSize: h.IconSize}
	if c, ok := h.Colors[f.Prop("incident_type")]; ok && c != "" {
		m.Color = c

		return m
	}

	m.Color = h.DefaultColor
	if m.Color == "" {
		m.Color = colors.Marker
	}

	return m
}

const incidentsURL = "https://neris.fsri.org/departments/%s/incidents/%s"

// IncidentURL links an incident in the NERIS web app. The department is the
// part of id before the first "|"; id is path escaped, so "|" becomes %7C.
func IncidentURL(id string) string {
	dept, _, _ := strings.Cut(id, "|")

	return fmt.Sprintf(incidentsURL, url.PathEscape(dept), url.PathEscape(id))
}

// popup placeholders
const (
	UnknownIncident  = "Unknown"
	NoLocation       = "No Localization Provided"
	NoIncidentType   = "No Incident Type Provided"
	NoCallCreate     = "No Call Created Provided"
	NoDepartment     = "No Department Provided"
	NoDepartmentName = "No Department Name Provided"
	NoStationName    = "No Station Name Provided"
	NoAddress        = "No Address Provided"
	NoNerisID        = "No NERIS ID Provided"
)

var popups = template.Must(template.New("popups").Parse(popupTemplates)) //nolint: gochecknoglobals

const popupTemplates = `
{{- define "incident" -}}
<div class="map-popup">
<b>Incident:</b> {{if .URL}}<a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.ID}}</a>{{else}}{{.ID}}{{end}}<br>
<b>Type:</b> {{.Type}}<br>
<b>Location:</b> {{.Location}}<br>
<b>Call Created:</b> {{.CallCreate}}<br>
<b>Department:</b> {{.Department}}
</div>
{{- end -}}
{{- define "hq" -}}
<div class="map-popup">
<b>{{.Name}}</b><br>
<b>NERIS ID:</b> {{.NerisID}}<br>
<b>Address:</b> {{.Address}}
</div>
{{- end -}}
{{- define "station" -}}
<div class="map-popup">
<b>{{.Name}}</b><br>
<b>NERIS ID:</b> {{.NerisID}}<br>
<b>Address:</b> {{.Address}}
</div>
{{- end -}}`

func prop(f Feature, name, placeholder string) string {
	if v := strings.TrimSpace(f.Prop(name)); v != "" {
		return v
	}

	return placeholder
}

func render(name string, data any) string {
	var b strings.Builder
	if err := popups.ExecuteTemplate(&b, name, data); err != nil {
		return ""
	}

	return b.String()
}

// IncidentPopup renders the popup of an incident point. ok is false when the
// feature has no properties, in which case no popup is attached.
func IncidentPopup(f Feature) (string, bool) {
	if f.Properties == nil {
		return "", false
	}

	id := prop(f, "neris_id_incident", UnknownIncident)
	data := struct {
		ID, URL, Type, Location, CallCreate, Department string
	}{
		ID:         id,
		Type:       prop(f, "incident_type", NoIncidentType),
		Location:   prop(f, "civic_location", NoLocation),
		CallCreate: prop(f, "call_create", NoCallCreate),
		Department: prop(f, "department_name", NoDepartment),
	}
	if id != UnknownIncident {
		data.URL = IncidentURL(id)
	}

	return render("incident", data), true
}

// Address joins the address properties of a department or station feature.
func Address(f Feature) string {
	var lines []string
	for _, k := range []string{"address_line_1", "address_line_2"} {
		if v := strings.TrimSpace(f.Prop(k)); v != "" {
			lines = append(lines, v)
		}
	}

	locality := strings.TrimSpace(f.Prop("city"))
	if st := strings.TrimSpace(f.Prop("state")); st != "" {
		if locality != "" {
			locality += ", "
		}
		locality += st
	}
	if zip := strings.TrimSpace(f.Prop("zip_code")); zip != "" {
		locality = strings.TrimSpace(locality + " " + zip)
	}
	if locality != "" {
		lines = append(lines, locality)
	}

	if len(lines) == 0 {
		return NoAddress
	}

	return strings.Join(lines, ", ")
}

// DeptHQPopup renders the popup of a department headquarters feature.
func DeptHQPopup(f Feature) (string, bool) {
	if f.Properties == nil {
		return "", false
	}

	return render("hq", struct{ Name, NerisID, Address string }{
		Name:    prop(f, "name", NoDepartmentName),
		NerisID: prop(f, "neris_id", NoNerisID),
		Address: Address(f),
	}), true
}

// StationPopup renders the popup of a fire station feature.
func StationPopup(f Feature) (string, bool) {
	if f.Properties == nil {
		return "", false
	}

	return render("station", struct{ Name, NerisID, Address string }{
		Name:    prop(f, "station_name", NoStationName),
		NerisID: prop(f, "neris_id", NoNerisID),
		Address: Address(f),
	}), true
}
