package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/ramen-tools-mcp/internal/imaging"
)

// maxHoughCenters caps how many accumulator peaks get a radius estimate.
const maxHoughCenters = 32

// houghGradient finds circles with the two-stage gradient Hough transform.
//
// # Algorithm
//
//  1. Edge detection: Canny with thresholds param1/2 and param1
//  2. Centre voting: every edge pixel votes along its gradient line, both
//     directions, for distances minRadius..maxRadius. The accumulator has
//     1/dp the resolution of the image.
//  3. Peak detection: local maxima above param2, strongest first
//  4. Radius estimation: for each peak, a histogram of distances to all edge
//     pixels; the best-supported radius wins if it has at least param2 hits
//  5. Duplicate removal: peaks closer than minDist to an accepted circle are
//     dropped
//
// Circles are returned strongest first.
func houghGradient(grad *imaging.Gradient, p HoughPreset, minDist float64, minRadius, maxRadius int) []Circle {
	w, h := grad.Width, grad.Height
	if w == 0 || h == 0 || maxRadius < minRadius || minRadius < 1 {
		return nil
	}
	dp := p.DP
	if dp < 1 {
		dp = 1
	}

	edges := imaging.CannyFromGradient(grad, p.Param1/2, p.Param1)

	var edgePts []image.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges.Pix[y*edges.Stride+x] != 0 {
				edgePts = append(edgePts, image.Point{X: x, Y: y})
			}
		}
	}
	if len(edgePts) == 0 {
		return nil
	}

	aw := int(math.Ceil(float64(w)/dp)) + 1
	ah := int(math.Ceil(float64(h)/dp)) + 1
	acc := make([]int, aw*ah)

	for _, pt := range edgePts {
		gx, gy, mag := grad.At(pt.X, pt.Y)
		if mag == 0 {
			continue
		}
		ux, uy := gx/mag, gy/mag
		for _, sign := range [2]float64{1, -1} {
			last := -1
			for r := minRadius; r <= maxRadius; r++ {
				cx := float64(pt.X) + sign*float64(r)*ux
				cy := float64(pt.Y) + sign*float64(r)*uy
				ax := int(cx / dp)
				ay := int(cy / dp)
				if cx < 0 || cy < 0 || ax >= aw || ay >= ah {
					break
				}
				cell := ay*aw + ax
				if cell == last {
					continue
				}
				acc[cell]++
				last = cell
			}
		}
	}

	type peak struct {
		x, y  int
		votes int
	}
	var peaks []peak
	threshold := int(p.Param2)
	for y := 1; y < ah-1; y++ {
		for x := 1; x < aw-1; x++ {
			v := acc[y*aw+x]
			if v <= threshold {
				continue
			}
			// Plateau ties are broken towards the top-left cell.
			if v > acc[y*aw+x-1] && v >= acc[y*aw+x+1] &&
				v > acc[(y-1)*aw+x] && v >= acc[(y+1)*aw+x] {
				peaks = append(peaks, peak{x: x, y: y, votes: v})
			}
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].votes > peaks[j].votes })
	if len(peaks) > maxHoughCenters {
		peaks = peaks[:maxHoughCenters]
	}

	var circles []Circle
	hist := make([]int, maxRadius+2)
	for _, pk := range peaks {
		cx := (float64(pk.x) + 0.5) * dp
		cy := (float64(pk.y) + 0.5) * dp

		if tooClose(circles, cx, cy, minDist) {
			continue
		}

		for i := range hist {
			hist[i] = 0
		}
		for _, pt := range edgePts {
			dx := float64(pt.X) - cx
			dy := float64(pt.Y) - cy
			d := int(math.Round(math.Sqrt(dx*dx + dy*dy)))
			if d >= minRadius && d <= maxRadius {
				hist[d]++
			}
		}

		// Smooth over ±1 px so a slightly elliptical rim still collects
		// its support in one bin.
		bestR, bestCount := 0, 0
		for r := minRadius; r <= maxRadius; r++ {
			count := hist[r]
			if r > 0 {
				count += hist[r-1]
			}
			count += hist[r+1]
			if count > bestCount {
				bestR, bestCount = r, count
			}
		}
		if bestCount < threshold {
			continue
		}

		circles = append(circles, Circle{X: cx, Y: cy, Radius: float64(bestR)})
	}

	return circles
}

// tooClose reports whether (x, y) lies within minDist of an accepted centre.
func tooClose(circles []Circle, x, y, minDist float64) bool {
	for _, c := range circles {
		if math.Hypot(c.X-x, c.Y-y) < minDist {
			return true
		}
	}
	return false
}
