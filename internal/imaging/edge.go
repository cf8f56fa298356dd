package imaging

import (
	"image"
	"math"
)

// Gradient holds per-pixel Sobel derivatives of a grayscale image, stored
// row-major with index y*Width+x. Values are in 0-255 intensity units.
type Gradient struct {
	Width  int
	Height int
	Gx     []float64
	Gy     []float64
	Mag    []float64
}

// At returns the derivatives and magnitude at (x, y).
func (g *Gradient) At(x, y int) (gx, gy, mag float64) {
	i := y*g.Width + x
	return g.Gx[i], g.Gy[i], g.Mag[i]
}

// Sobel computes 3x3 Sobel gradients. Border pixels use clamped (replicated)
// neighbours.
func Sobel(gray *image.Gray) *Gradient {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	g := &Gradient{
		Width:  w,
		Height: h,
		Gx:     make([]float64, w*h),
		Gy:     make([]float64, w*h),
		Mag:    make([]float64, w*h),
	}

	px := func(x, y int) float64 {
		x = clamp(x, 0, w-1) + b.Min.X
		y = clamp(y, 0, h-1) + b.Min.Y
		return float64(gray.Pix[gray.PixOffset(x, y)])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -px(x-1, y-1) + px(x+1, y-1) -
				2*px(x-1, y) + 2*px(x+1, y) -
				px(x-1, y+1) + px(x+1, y+1)
			gy := -px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1) +
				px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1)

			i := y*w + x
			g.Gx[i] = gx
			g.Gy[i] = gy
			g.Mag[i] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return g
}

// Canny performs Canny edge detection on an already smoothed grayscale
// image and returns a binary image where edges are 255.
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators, magnitude = sqrt(Gx² + Gy²)
//
//  2. Non-maximum suppression: thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction
//
//  3. Hysteresis thresholding:
//     - Pixels at or above high are strong edges (always kept)
//     - Pixels between low and high are weak edges, kept only when
//     connected (8-neighbourhood, transitively) to a strong edge
//     - Pixels below low are discarded
//
// Thresholds are in Sobel magnitude units of a 0-255 image, the same scale
// OpenCV uses, so Canny(img, 30, 100) here and there pick similar edges.
func Canny(gray *image.Gray, low, high float64) *image.Gray {
	return CannyFromGradient(Sobel(gray), low, high)
}

// CannyFromGradient runs suppression and hysteresis on a precomputed
// gradient, letting callers reuse one Sobel pass for several purposes.
func CannyFromGradient(g *Gradient, low, high float64) *image.Gray {
	w, h := g.Width, g.Height
	suppressed := nonMaxSuppress(g)

	result := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return result
	}

	// Breadth-first growth from strong pixels through weak ones.
	queue := make([]int, 0, w)
	for i, v := range suppressed {
		if v >= high {
			result.Pix[i] = 255
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if result.Pix[j] == 0 && suppressed[j] >= low {
					result.Pix[j] = 255
					queue = append(queue, j)
				}
			}
		}
	}

	return result
}

// nonMaxSuppress keeps a magnitude only when it is a local maximum along the
// quantised gradient direction. Image borders are zeroed. Gy grows downward,
// so a 45° gradient points to the lower-right neighbour.
func nonMaxSuppress(g *Gradient) []float64 {
	w, h := g.Width, g.Height
	out := make([]float64, w*h)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			mag := g.Mag[i]
			if mag == 0 {
				continue
			}
			angle := math.Atan2(g.Gy[i], g.Gx[i])

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = g.Mag[i-1]
				n2 = g.Mag[i+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = g.Mag[i-w-1]
				n2 = g.Mag[i+w+1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = g.Mag[i-w]
				n2 = g.Mag[i+w]
			} else {
				n1 = g.Mag[i-w+1]
				n2 = g.Mag[i+w-1]
			}

			if mag >= n1 && mag >= n2 {
				out[i] = mag
			}
		}
	}
	return out
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
