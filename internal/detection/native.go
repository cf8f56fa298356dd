package detection

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/ramen-tools-mcp/internal/imaging"
)

// DefaultMaxSide is the longest side the native backend works at. Ratios
// are resolution independent, so detection on a small copy is enough.
const DefaultMaxSide = 320

// Preprocessing constants shared by both backends.
const (
	claheClipLimit = 3.0
	claheTiles     = 8
	blurKernelSize = 9
	blurSigma      = 2.0
	closeRadius    = 2 // 5×5 structuring element
)

// Native is the pure-Go vision backend.
type Native struct {
	maxSide int
}

// NewNative returns the pure-Go backend. maxSide <= 0 disables downscaling.
func NewNative(maxSide int) *Native {
	return &Native{maxSide: maxSide}
}

func (n *Native) Name() string { return "native" }

// Prepare downscales, converts to grayscale, applies CLAHE and a 9×9 σ=2
// Gaussian blur.
func (n *Native) Prepare(img image.Image) (Frame, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("failed to prepare frame: empty image")
	}

	small := imaging.Downscale(img, n.maxSide)
	gray := effect.Grayscale(small)
	enhanced := imaging.CLAHE(redToGray(gray), claheClipLimit, claheTiles, claheTiles)
	blurred := redToGray(convolution.Convolve(enhanced, gaussianKernel(blurKernelSize, blurSigma), &convolution.Options{}))

	return &nativeFrame{
		blurred: blurred,
		grad:    imaging.Sobel(blurred),
	}, nil
}

type nativeFrame struct {
	blurred *image.Gray
	grad    *imaging.Gradient
}

func (f *nativeFrame) Size() (int, int) {
	return f.grad.Width, f.grad.Height
}

func (f *nativeFrame) HoughCircles(p HoughPreset, minDist float64, minRadius, maxRadius int) []Circle {
	return houghGradient(f.grad, p, minDist, minRadius, maxRadius)
}

// ExternalContours closes the Canny edge map with one dilate and one erode
// pass before tracing.
func (f *nativeFrame) ExternalContours(low, high float64) []Contour {
	edges := imaging.CannyFromGradient(f.grad, low, high)
	closed := effect.Erode(effect.Dilate(edges, closeRadius), closeRadius)
	return externalContours(newBinaryMask(redToGray(closed)))
}

func (f *nativeFrame) MinEnclosingCircle(c Contour) Circle {
	return minEnclosingCircle(c.Points)
}

func (f *nativeFrame) Close() error { return nil }

// gaussianKernel builds a normalised size×size Gaussian kernel.
func gaussianKernel(size int, sigma float64) *convolution.Kernel {
	k := convolution.NewKernel(size, size)
	half := size / 2
	sum := 0.0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x-half), float64(y-half)
			v := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			k.Matrix[y*size+x] = v
			sum += v
		}
	}
	for i := range k.Matrix {
		k.Matrix[i] /= sum
	}
	return k
}

// redToGray keeps the red channel of a grayscale-valued RGBA image.
func redToGray(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Pix[y*out.Stride+x] = src.Pix[src.PixOffset(x+b.Min.X, y+b.Min.Y)]
		}
	}
	return out
}
