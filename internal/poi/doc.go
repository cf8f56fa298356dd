// Package poi finds eating places near a coordinate.
//
// Client queries an Overpass API endpoint for nodes and ways carrying a
// cuisine tag. Every element becomes a Candidate unless it has no name or
// its name matches the chain denylist. Candidates are classified as ramen
// shops by cuisine tag or by name.
//
// Searcher widens the radius from 500 m to 2 km to 5 km while fewer than
// three candidates have been found, keeping the first occurrence of each
// name.
//
// ReverseGeocoder asks Nominatim for the restaurant at a point. Its answer
// is only ever used as a hint.
package poi
