package poi

import (
	"context"

	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
)

// Source identifies where a candidate came from.
type Source string

// SourceOverpass marks candidates from the Overpass API.
const SourceOverpass Source = "overpass"

// Candidate is one nearby eating place.
type Candidate struct {
	Name           string         `json:"name"`
	DistanceMeters float64        `json:"distance_meters"`
	Coordinate     geo.Coordinate `json:"coordinate"`
	IsRamen        bool           `json:"is_ramen"`
	Cuisine        string         `json:"cuisine,omitempty"`
	Source         Source         `json:"source"`
}

// Finder searches for candidates within radius meters of a point.
type Finder interface {
	Search(ctx context.Context, center geo.Coordinate, radius int) ([]Candidate, error)
}
