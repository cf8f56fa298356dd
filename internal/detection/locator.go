package detection

import (
	"context"
	"image"
	"log/slog"
	"math"

	"github.com/ironsheep/ramen-tools-mcp/internal/cascade"
)

// Contour stage constants.
const (
	contourCannyLow       = 30
	contourCannyHigh      = 100
	minContourAreaRatio   = 0.05
	minContourCircularity = 0.3
)

// Locator finds the bowl with the strategy cascade.
type Locator struct {
	vision  Vision
	presets []HoughPreset
	logger  *slog.Logger
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithPresets replaces DefaultPresets.
func WithPresets(p []HoughPreset) LocatorOption {
	return func(l *Locator) { l.presets = p }
}

// WithLogger sets the logger used for stage reporting.
func WithLogger(logger *slog.Logger) LocatorOption {
	return func(l *Locator) { l.logger = logger }
}

// NewLocator returns a Locator backed by vision. A nil vision always yields
// the heuristic region.
func NewLocator(vision Vision, opts ...LocatorOption) *Locator {
	l := &Locator{
		vision:  vision,
		presets: DefaultPresets,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the bowl region of img. It never fails: when detection is
// unavailable or finds nothing, the heuristic region is returned.
func (l *Locator) Locate(ctx context.Context, img image.Image) BowlRegion {
	if l.vision == nil {
		l.logger.Debug("no vision backend, using heuristic region")
		return HeuristicRegion()
	}

	frame, err := l.vision.Prepare(img)
	if err != nil {
		l.logger.Warn("failed to prepare image", "backend", l.vision.Name(), "error", err)
		return HeuristicRegion()
	}
	defer frame.Close()

	region, stage, ok := cascade.First(ctx, l.logger, "bowl", []cascade.Strategy[BowlRegion]{
		{Name: string(MethodHough), Run: func(context.Context) (BowlRegion, bool, error) {
			r, ok := l.houghStage(frame)
			return r, ok, nil
		}},
		{Name: string(MethodContour), Run: func(context.Context) (BowlRegion, bool, error) {
			r, ok := l.contourStage(frame)
			return r, ok, nil
		}},
	})
	if !ok {
		return HeuristicRegion()
	}

	l.logger.Info("bowl located",
		"method", stage,
		"cx", region.CenterXRatio,
		"cy", region.CenterYRatio,
		"r", region.RadiusRatio)
	return region
}

// houghStage tries each preset in order and stops at the first one that
// yields a circle inside the radius bounds.
func (l *Locator) houghStage(f Frame) (BowlRegion, bool) {
	w, h := f.Size()
	short := shortSide(w, h)
	if short == 0 {
		return BowlRegion{}, false
	}

	minDist := float64(short) / 3
	minR := int(math.Ceil(MinRadiusRatio * float64(short)))
	maxR := int(MaxRadiusRatio * float64(short))

	for _, p := range l.presets {
		var best *Circle
		for _, c := range f.HoughCircles(p, minDist, minR, maxR) {
			if !withinBounds(c.Radius / float64(short)) {
				continue
			}
			if best == nil || c.Radius > best.Radius {
				best = &c
			}
		}
		if best != nil {
			l.logger.Debug("hough preset matched", "preset", p.Name, "radius", best.Radius)
			return toRegion(*best, w, h, MethodHough), true
		}
		l.logger.Debug("hough preset found nothing", "preset", p.Name)
	}
	return BowlRegion{}, false
}

// contourStage scores external contours by circularity × area and fits the
// best one with its minimum enclosing circle.
func (l *Locator) contourStage(f Frame) (BowlRegion, bool) {
	w, h := f.Size()
	short := shortSide(w, h)
	if short == 0 {
		return BowlRegion{}, false
	}

	minArea := minContourAreaRatio * float64(w*h)

	var best *Contour
	bestScore := 0.0
	for _, c := range f.ExternalContours(contourCannyLow, contourCannyHigh) {
		if c.Area < minArea {
			continue
		}
		circ := c.Circularity()
		if circ <= minContourCircularity {
			continue
		}
		if score := circ * c.Area; score > bestScore {
			best, bestScore = &c, score
		}
	}
	if best == nil {
		return BowlRegion{}, false
	}

	circle := f.MinEnclosingCircle(*best)
	ratio := circle.Radius / float64(short)
	if !withinBounds(ratio) {
		l.logger.Debug("contour circle out of bounds", "radius_ratio", ratio)
		return BowlRegion{}, false
	}
	return toRegion(circle, w, h, MethodContour), true
}

func withinBounds(ratio float64) bool {
	return ratio > MinRadiusRatio && ratio < MaxRadiusRatio
}

func toRegion(c Circle, w, h int, m Method) BowlRegion {
	return BowlRegion{
		CenterXRatio: clampRatio(c.X / float64(w)),
		CenterYRatio: clampRatio(c.Y / float64(h)),
		RadiusRatio:  c.Radius / float64(shortSide(w, h)),
		Method:       m,
	}
}

func clampRatio(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func shortSide(w, h int) int {
	if w < h {
		return w
	}
	return h
}
