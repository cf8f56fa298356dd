package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultJPEGQuality is the quality used for cropped output.
const DefaultJPEGQuality = 95

// CenterCropFraction is the share of the short side kept by CropCenterCircle.
const CenterCropFraction = 0.95

// SquareRect computes the crop square for a ratio-based region.
//
// The centre is (cx·W, cy·H) and the half side is r·min(W,H). The square is
// clamped to the image; when clamping shortens one axis more than the other,
// both sides are compressed to the shorter clamped length so the result stays
// square. The returned rectangle is in img coordinates.
func SquareRect(bounds image.Rectangle, cx, cy, r float64) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	short := w
	if h < short {
		short = h
	}

	centerX := cx * float64(w)
	centerY := cy * float64(h)
	half := r * float64(short)

	left := clamp(int(math.Round(centerX-half)), 0, w)
	right := clamp(int(math.Round(centerX+half)), 0, w)
	top := clamp(int(math.Round(centerY-half)), 0, h)
	bottom := clamp(int(math.Round(centerY+half)), 0, h)

	side := right - left
	if bottom-top < side {
		side = bottom - top
	}
	if side < 1 {
		side = 1
	}
	if left+side > w {
		left = w - side
	}
	if top+side > h {
		top = h - side
	}

	return image.Rect(left, top, left+side, top+side).Add(bounds.Min)
}

// CropSquare crops the square described by a ratio-based region.
func CropSquare(img image.Image, cx, cy, r float64) *image.NRGBA {
	return imaging.Crop(img, SquareRect(img.Bounds(), cx, cy, r))
}

// CropCenterCircle takes a centered square of 95% of the short side and sets
// every pixel outside the inscribed circle to fill. It needs no detection.
func CropCenterCircle(img image.Image, fill color.Color) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	short := w
	if h < short {
		short = h
	}
	side := int(float64(short) * CenterCropFraction)
	if side < 1 {
		side = 1
	}

	square := imaging.CropCenter(img, side, side)
	out := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)

	radius := float64(side) / 2
	r2 := radius * radius
	for y := 0; y < side; y++ {
		dy := float64(y) + 0.5 - radius
		for x := 0; x < side; x++ {
			dx := float64(x) + 0.5 - radius
			if dx*dx+dy*dy > r2 {
				continue
			}
			i := out.PixOffset(x, y)
			copy(out.Pix[i:i+4], square.Pix[square.PixOffset(x, y):square.PixOffset(x, y)+4])
		}
	}
	return out
}

// ParseFillColor parses a hex colour such as "#ffffff" for the circle mask.
func ParseFillColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fill color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// EncodeJPEG encodes img as JPEG. Quality outside 1..100 falls back to
// DefaultJPEGQuality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
