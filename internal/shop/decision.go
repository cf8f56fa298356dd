package shop

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
	"github.com/ironsheep/ramen-tools-mcp/internal/ocr"
	"github.com/ironsheep/ramen-tools-mcp/internal/poi"
)

// Method names how a Decision was reached.
type Method string

// Decision methods.
const (
	MethodRamenWithin50m     Method = "ramen_within_50m"
	MethodOtherWithin50m     Method = "other_restaurant_within_50m"
	MethodRamenBeyond50m     Method = "ramen_beyond_50m"
	MethodNeedsUserSelection Method = "needs_user_selection"
	MethodNotFound           Method = "not_found"
	MethodOCRFallback        Method = "ocr_fallback"
	MethodOCROnly            Method = "ocr_only"
	MethodOCRDirect          Method = "ocr_direct"
)

// Ranking limits.
const (
	NearThresholdMeters = 50.0
	MaxCandidates       = 5
)

// Decision is the outcome for one photo.
type Decision struct {
	ShopName       *string         `json:"shop_name"`
	Method         Method          `json:"method"`
	DistanceMeters *float64        `json:"distance_meters,omitempty"`
	Candidates     []poi.Candidate `json:"candidates"`
	DebugTrail     string          `json:"debug_trail"`

	Coordinate *geo.Coordinate `json:"coordinate,omitempty"`
	OCRText    string          `json:"ocr_text,omitempty"`
}

// HasName reports whether a shop name was decided.
func (d Decision) HasName() bool { return d.ShopName != nil }

// Name returns the shop name or "".
func (d Decision) Name() string {
	if d.ShopName == nil {
		return ""
	}
	return *d.ShopName
}

// Tier is a candidate's priority bucket, 1 (best) to 4.
type Tier int

// Tiers in priority order.
const (
	TierRamenNear Tier = iota + 1
	TierOtherNear
	TierRamenFar
	TierOtherFar
)

// TierOf places c in its bucket.
func TierOf(c poi.Candidate) Tier {
	near := c.DistanceMeters <= NearThresholdMeters
	switch {
	case near && c.IsRamen:
		return TierRamenNear
	case near:
		return TierOtherNear
	case c.IsRamen:
		return TierRamenFar
	default:
		return TierOtherFar
	}
}

// Partition splits candidates into the four tiers, each sorted by
// ascending distance. Index 0 holds tier 1.
func Partition(candidates []poi.Candidate) [4][]poi.Candidate {
	var tiers [4][]poi.Candidate
	for _, c := range candidates {
		t := TierOf(c) - 1
		tiers[t] = append(tiers[t], c)
	}
	for i := range tiers {
		slices.SortStableFunc(tiers[i], func(a, b poi.Candidate) int {
			return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
		})
	}
	return tiers
}

// Rank concatenates the tiers in priority order. Nothing is dropped.
func Rank(candidates []poi.Candidate) []poi.Candidate {
	tiers := Partition(candidates)
	ranked := make([]poi.Candidate, 0, len(candidates))
	for _, t := range tiers {
		ranked = append(ranked, t...)
	}
	return ranked
}

// DecideFromCandidates runs the tier state machine for a photo taken at
// coord.
func DecideFromCandidates(coord geo.Coordinate, candidates []poi.Candidate) Decision {
	tiers := Partition(candidates)
	ranked := Rank(candidates)
	if len(ranked) > MaxCandidates {
		ranked = ranked[:MaxCandidates]
	}

	c := coord
	d := Decision{
		Coordinate: &c,
		Candidates: ranked,
	}
	trail := "GPS: " + coord.String()

	pick := func(best poi.Candidate, m Method, note string) Decision {
		name, dist := best.Name, best.DistanceMeters
		d.ShopName = &name
		d.DistanceMeters = &dist
		d.Method = m
		d.DebugTrail = fmt.Sprintf("%s | %s (%.0fm)%s", trail, name, dist, note)
		return d
	}

	switch {
	case len(tiers[0]) > 0:
		return pick(tiers[0][0], MethodRamenWithin50m, "")
	case len(tiers[1]) > 0:
		return pick(tiers[1][0], MethodOtherWithin50m, " [not a ramen shop, needs confirmation]")
	case len(tiers[2]) > 0:
		return pick(tiers[2][0], MethodRamenBeyond50m, "")
	case len(tiers[3]) > 0:
		d.Method = MethodNeedsUserSelection
		d.DebugTrail = trail + " | no ramen shop nearby, choose from candidates"
	default:
		d.Method = MethodNotFound
		d.DebugTrail = trail + " | no restaurant found nearby"
	}
	return d
}

// DecideFromText is the no-coordinate branch: the first line of 2 to 25
// characters containing one of keywords becomes the shop name.
func DecideFromText(text string, keywords []string) Decision {
	d := Decision{
		Method:     MethodOCROnly,
		Candidates: []poi.Candidate{},
		OCRText:    text,
		DebugTrail: "GPS not found",
	}
	if strings.TrimSpace(text) == "" {
		return d
	}

	line, ok := ocr.FirstKeywordLine(text, keywords)
	if !ok {
		d.DebugTrail += " | OCR: no keyword line"
		return d
	}
	d.ShopName = &line
	d.Method = MethodOCRFallback
	d.DebugTrail += " | OCR: " + line
	return d
}
