package geo

import (
	"context"
	"encoding/json"
)

// LayerQuery selects features of one layer of a feature server.
type LayerQuery struct {
	Layer     int
	Where     string
	OutFields string
}

// Suggestion is an address autocomplete result.
type Suggestion struct {
	Text     string
	MagicKey string
}

// Location is a geocoded address.
type Location struct {
	Address string
	X       float64
	Y       float64
}

// ArcGIS is the subset of the ArcGIS REST API the map uses.
//
//go:generate mockgen -package mockgeo -source=interface.go -destination=mock/mockgeo.go *
type ArcGIS interface {
	// QueryLayer returns the matching features as a GeoJSON FeatureCollection.
	QueryLayer(ctx context.Context, q LayerQuery) (json.RawMessage, error)
	// Suggest returns address suggestions for a partial address.
	Suggest(ctx context.Context, text, category string) ([]Suggestion, error)
	// FindAddress geocodes a suggestion. It returns nil when nothing matches.
	FindAddress(ctx context.Context, address, magicKey string) (*Location, error)
}
