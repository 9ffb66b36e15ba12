package cornsacks

import (
	"nerisdash/pkg/filters"
	"nerisdash/pkg/relation"
)

const basePath = "dash/incident_basics/"

// FeatureServerURL is the public ArcGIS feature server of NERIS departments.
const FeatureServerURL = "https://services5.arcgis.com/lPbcyJOcoLyZmvo6/ArcGIS/rest/services/" +
	"NERIS%20Public%20Fire%20Departments/FeatureServer"

// Layers of the department feature server.
const (
	HQLayer       = 0
	StationLayer  = 1
	BoundaryLayer = 2
)

var (
	// IncidentsTable has one row per incident report.
	IncidentsTable = relation.Table{ //nolint: gochecknoglobals
		Name:    "incidents",
		Path:    basePath + "incidents.parquet",
		Filters: Registry.Group("incidents"),
		ExportFields: []string{
			"neris_id_incident",
			"neris_id_dept",
			"department_name",
			"department_state",
			"incident_type",
			"call_create",
			"call_create_day_of_week",
			"call_create_hour",
			"duration",
			"type_location_use",
			"csst_hazard_flag",
			"electric_hazard_flag",
			"powergen_hazard_flag",
			"medical_oxygen_hazard_flag",
			"aid_direction",
			"unit_response_count",
			"displacement_count",
			"rescue_animal",
			"exposure_count",
			"civic_location",
			"point_origin",
			"x",
			"y",
		},
	}

	// IncidentTypesTable has up to three rows per incident, one per type.
	IncidentTypesTable = relation.Table{ //nolint: gochecknoglobals
		Name:         "incident_types",
		Path:         basePath + "incident_types.parquet",
		Filters:      Registry.Group("incident_types"),
		ExportFields: []string{"neris_id_incident", "type_incident", "primary_type"},
	}

	// CasualtyRescuesTable has one row per person involved in a casualty or rescue.
	CasualtyRescuesTable = relation.Table{ //nolint: gochecknoglobals
		Name:    "casualty_rescues",
		Path:    basePath + "casualty_rescues.parquet",
		Filters: Registry.Group("casualty_rescues"),
		ExportFields: []string{
			"neris_id_incident",
			"type_ff_nonff",
			"age_bin",
			"type_casualty",
			"type_rescue",
		},
	}

	// AidsTable has one row per aid given or received.
	AidsTable = relation.Table{ //nolint: gochecknoglobals
		Name:         "aids",
		Path:         basePath + "aids.parquet",
		ExportFields: []string{"neris_id_incident", "aid_concat"},
	}
)

// Tables opens the cornsacks relations over a source.
type Tables struct {
	src *relation.Source
}

// New returns the cornsacks tables read from src.
func New(src *relation.Source) *Tables {
	return &Tables{src: src}
}

// Source returns the underlying relation source.
func (t *Tables) Source() *relation.Source {
	return t.src
}

// Incidents is the incidents relation with its cross table helpers.
type Incidents struct {
	*relation.Relation

	src *relation.Source
}

// Incidents starts an incidents relation filtered by values. An active
// type_incident filter keeps only incidents with a matching type.
func (t *Tables) Incidents(values filters.Values, lookup filters.CacheLookup) *Incidents {
	rel := t.src.Relation(IncidentsTable, values, lookup)
	if active(values[TypeIncident]) {
		types := t.src.Relation(IncidentTypesTable, values, nil).Select("DISTINCT neris_id_incident")
		rel = rel.Join(types, "neris_id_incident", relation.InnerJoin)
	}

	return &Incidents{Relation: rel, src: t.src}
}

func active(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != "" && val != filters.AllValue
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	}

	return true
}

func (i *Incidents) ids() *relation.Relation {
	return i.Select("neris_id_incident")
}

// IncidentTypes returns the types of the filtered incidents.
func (i *Incidents) IncidentTypes(primaryOnly bool) *relation.Relation {
	return i.src.Relation(IncidentTypesTable, filters.Values{PrimaryOnly: primaryOnly}, nil).
		Join(i.ids(), "neris_id_incident", relation.InnerJoin)
}

// Aid returns the aid rows of the filtered incidents.
func (i *Incidents) Aid() *relation.Relation {
	return i.src.Relation(AidsTable, filters.Values{}, nil).
		Join(i.ids(), "neris_id_incident", relation.InnerJoin)
}

// CasualtyRescues returns the casualty and rescue rows of the filtered
// incidents, filtered by values.
func (i *Incidents) CasualtyRescues(values filters.Values) *relation.Relation {
	if values == nil {
		values = filters.Values{}
	}

	return i.src.Relation(CasualtyRescuesTable, values, nil).
		Join(i.ids(), "neris_id_incident", relation.InnerJoin)
}
