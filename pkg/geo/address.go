package geo

import (
	"context"
	"encoding/json"
	"nerisdash/pkg/logger"
	"nerisdash/pkg/relation"
	"strings"

	"go.uber.org/zap"
)

const (
	// MinAddressLength is the shortest search text sent to the geocoder.
	MinAddressLength = 5
	// AddressCategory restricts suggestions to street addresses.
	AddressCategory = "Address"
	// DefaultZoom is the zoom level of a geocoded viewport.
	DefaultZoom = 15
)

// AddressChoice is the value of an address option. Dropdown values must be
// primitive, so options carry it JSON encoded.
type AddressChoice struct {
	Address  string `json:"address"`
	MagicKey string `json:"magic_key"`
}

// AddressOption is an address dropdown entry.
type AddressOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AddressSuggestions returns dropdown options for search. Short searches and
// geocoder failures yield no options.
func AddressSuggestions(ctx context.Context, c ArcGIS, search string) []AddressOption {
	out := []AddressOption{}
	if len(strings.TrimSpace(search)) < MinAddressLength {
		return out
	}

	suggestions, err := c.Suggest(ctx, search, AddressCategory)
	if err != nil {
		logger.Warn(ctx, "could not get address suggestions", zap.Error(err))

		return out
	}

	for _, s := range suggestions {
		value, err := json.Marshal(AddressChoice{Address: s.Text, MagicKey: s.MagicKey})
		if err != nil {
			continue
		}
		out = append(out, AddressOption{Label: s.Text, Value: string(value)})
	}

	return out
}

// Viewport positions the map: either a center and zoom, or bounds.
type Viewport struct {
	Center *[2]float64      `json:"center,omitempty"`
	Zoom   int              `json:"zoom,omitempty"`
	Bounds *relation.Bounds `json:"bounds,omitempty"`
}

// PlacedMarker is a marker at a fixed position.
type PlacedMarker struct {
	Position [2]float64 `json:"position"`
	Icon     Icon       `json:"icon"`
	Tooltip  string     `json:"tooltip"`
}

// Geocoded is the viewport and marker of a geocoded address.
type Geocoded struct {
	Viewport Viewport     `json:"viewport"`
	Marker   PlacedMarker `json:"marker"`
}

// GeocodeAddress geocodes the JSON encoded AddressChoice selected. It returns
// nil when nothing is selected, nothing matches or the geocoder fails.
func GeocodeAddress(ctx context.Context, c ArcGIS, selected string, icon Icon, zoom int) *Geocoded {
	if selected == "" {
		return nil
	}

	var choice AddressChoice
	if err := json.Unmarshal([]byte(selected), &choice); err != nil {
		logger.Warn(ctx, "could not decode selected address", zap.Error(err))

		return nil
	}

	loc, err := c.FindAddress(ctx, choice.Address, choice.MagicKey)
	if err != nil {
		logger.Warn(ctx, "could not geocode address", zap.Error(err))

		return nil
	}
	if loc == nil {
		return nil
	}

	center := [2]float64{loc.Y, loc.X}

	return &Geocoded{
		Viewport: Viewport{Center: &center, Zoom: zoom},
		Marker: PlacedMarker{
			Position: center,
			Icon:     icon,
			Tooltip:  "Geocoded Address: " + choice.Address,
		},
	}
}

// Layer fetches the features of q. It returns nil when the query fails or
// matches nothing, so that the layer is simply left off the map.
func Layer(ctx context.Context, c ArcGIS, q LayerQuery) json.RawMessage {
	raw, err := c.QueryLayer(ctx, q)
	if err != nil {
		logger.Warn(ctx, "could not query feature layer", zap.Int("layer", q.Layer), zap.Error(err))

		return nil
	}

	ok, err := HasFeatures(raw)
	if err != nil || !ok {
		return nil
	}

	return raw
}

// Eq renders an ArcGIS where clause comparing field to a string value.
func Eq(field, value string) string {
	return field + " = '" + strings.ReplaceAll(value, "'", "''") + "'"
}
