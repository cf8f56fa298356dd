// Package dto holds the wire shapes of the Overpass and Nominatim APIs.
package dto

// OverpassResponse is the body of an Overpass `[out:json]` query.
type OverpassResponse struct {
	Elements []OverpassElement `json:"elements"`
	Remark   string            `json:"remark,omitempty"`
}

// OverpassElement is a node or way. Nodes carry Lat/Lon; ways queried with
// `out center` carry Center.
type OverpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *OverpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

// OverpassCenter is the centroid Overpass computes for a way.
type OverpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NominatimReverse is the subset of a `/reverse?format=jsonv2` response
// used for shop hints.
type NominatimReverse struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Category    string            `json:"category"`
	Type        string            `json:"type"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error,omitempty"`
}
