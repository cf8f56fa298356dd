package detection

import (
	"image"
	"math"
)

// Method names the strategy that produced a BowlRegion.
type Method string

const (
	MethodHough     Method = "hough"
	MethodContour   Method = "contour"
	MethodHeuristic Method = "heuristic"
)

// Radius ratio bounds for detected regions, exclusive on both ends.
const (
	MinRadiusRatio = 0.15
	MaxRadiusRatio = 0.50
)

// BowlRegion is a resolution-independent circle.
type BowlRegion struct {
	// CenterXRatio is the centre X divided by the image width.
	CenterXRatio float64 `json:"center_x_ratio"`

	// CenterYRatio is the centre Y divided by the image height.
	CenterYRatio float64 `json:"center_y_ratio"`

	// RadiusRatio is the radius divided by the shorter image side.
	RadiusRatio float64 `json:"radius_ratio"`

	// Method is the strategy that produced the region.
	Method Method `json:"method"`
}

// HeuristicRegion is the fixed fallback region.
func HeuristicRegion() BowlRegion {
	return BowlRegion{
		CenterXRatio: 0.50,
		CenterYRatio: 0.45,
		RadiusRatio:  0.42,
		Method:       MethodHeuristic,
	}
}

// Circle is a detected circle in frame pixel coordinates.
type Circle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Contour is an external boundary found by a Frame.
type Contour struct {
	Points    []image.Point
	Area      float64
	Perimeter float64
}

// Circularity returns 4π·area/perimeter², 1.0 for a perfect circle and 0
// for a degenerate contour.
func (c Contour) Circularity() float64 {
	if c.Perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * c.Area / (c.Perimeter * c.Perimeter)
}

// HoughPreset is one parameter set of the circle transform.
type HoughPreset struct {
	Name string
	// DP is the inverse accumulator resolution.
	DP float64
	// Param1 is the upper Canny threshold; the lower one is half of it.
	Param1 float64
	// Param2 is the accumulator vote threshold for a centre.
	Param2 float64
}

// DefaultPresets lists the Hough presets from strict to permissive. The
// order is part of the contract: the first preset that yields a circle wins.
var DefaultPresets = []HoughPreset{
	{Name: "strict", DP: 1.2, Param1: 100, Param2: 50},
	{Name: "fine", DP: 1.0, Param1: 100, Param2: 40},
	{Name: "balanced", DP: 1.3, Param1: 80, Param2: 35},
	{Name: "relaxed", DP: 1.5, Param1: 60, Param2: 30},
	{Name: "loose", DP: 1.5, Param1: 50, Param2: 25},
	{Name: "permissive", DP: 1.8, Param1: 40, Param2: 20},
}

// Vision is a pixel-processing backend.
type Vision interface {
	// Name identifies the backend in logs.
	Name() string

	// Prepare converts img into a Frame: grayscale, contrast enhanced and
	// blurred, ready for both detection strategies.
	Prepare(img image.Image) (Frame, error)
}

// Frame is a prepared image owned by one Locate call.
type Frame interface {
	// Size returns the frame dimensions, which may be smaller than the
	// source image.
	Size() (width, height int)

	// HoughCircles runs the circle transform with one preset.
	HoughCircles(p HoughPreset, minDist float64, minRadius, maxRadius int) []Circle

	// ExternalContours runs Canny with the given thresholds, closes the edge
	// map and returns the outermost contours.
	ExternalContours(low, high float64) []Contour

	// MinEnclosingCircle fits the smallest circle containing the contour.
	MinEnclosingCircle(c Contour) Circle

	// Close releases backend resources.
	Close() error
}
