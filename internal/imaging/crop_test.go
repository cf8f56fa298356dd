package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSquareRect(t *testing.T) {
	tests := []struct {
		name      string
		w, h      int
		cx, cy, r float64
		want      image.Rectangle
	}{
		{"centered fits", 200, 100, 0.5, 0.5, 0.4, image.Rect(60, 10, 140, 90)},
		{"heuristic region", 100, 100, 0.5, 0.45, 0.42, image.Rect(8, 3, 92, 87)},
		{"clamped left", 200, 100, 0.05, 0.5, 0.3, image.Rect(0, 20, 40, 60)},
		{"clamped both", 100, 100, 0.0, 0.0, 0.5, image.Rect(0, 0, 50, 50)},
		{"radius larger than image", 100, 80, 0.5, 0.5, 1.0, image.Rect(0, 0, 80, 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SquareRect(image.Rect(0, 0, tt.w, tt.h), tt.cx, tt.cy, tt.r)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if got.Dx() != got.Dy() {
				t.Errorf("not square: %dx%d", got.Dx(), got.Dy())
			}
			if !got.In(image.Rect(0, 0, tt.w, tt.h)) {
				t.Errorf("%v outside image bounds", got)
			}
		})
	}
}

func TestSquareRect_AlwaysInside(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)
	for _, cx := range []float64{0, 0.1, 0.5, 0.9, 1} {
		for _, cy := range []float64{0, 0.3, 0.5, 1} {
			for _, r := range []float64{0.16, 0.3, 0.42, 0.49, 1} {
				got := SquareRect(bounds, cx, cy, r)
				if !got.In(bounds) || got.Dx() != got.Dy() || got.Empty() {
					t.Errorf("cx=%v cy=%v r=%v: got %v", cx, cy, r, got)
				}
			}
		}
	}
}

func TestCropSquare(t *testing.T) {
	img := createInMemoryImage(300, 200, color.RGBA{200, 100, 50, 255})

	result := CropSquare(img, 0.5, 0.45, 0.42)

	if result.Bounds().Dx() != result.Bounds().Dy() {
		t.Errorf("dimensions: got %dx%d, want square", result.Bounds().Dx(), result.Bounds().Dy())
	}
	if result.Bounds().Dx() != 168 {
		t.Errorf("side: got %d, want 168", result.Bounds().Dx())
	}
}

func TestCropCenterCircle(t *testing.T) {
	img := createInMemoryImage(200, 100, color.RGBA{255, 0, 0, 255})
	fill := color.NRGBA{255, 255, 255, 255}

	result := CropCenterCircle(img, fill)

	if result.Bounds().Dx() != 95 || result.Bounds().Dy() != 95 {
		t.Fatalf("dimensions: got %dx%d, want 95x95", result.Bounds().Dx(), result.Bounds().Dy())
	}

	corner := result.NRGBAAt(0, 0)
	if corner != fill {
		t.Errorf("corner: got %v, want fill %v", corner, fill)
	}

	center := result.NRGBAAt(47, 47)
	if center.R != 255 || center.G != 0 || center.B != 0 {
		t.Errorf("center: got %v, want red", center)
	}
}

func TestParseFillColor(t *testing.T) {
	c, err := ParseFillColor("#ff8000")
	if err != nil {
		t.Fatalf("ParseFillColor failed: %v", err)
	}
	got := c.(color.NRGBA)
	if got.R != 255 || got.G != 128 || got.B != 0 || got.A != 255 {
		t.Errorf("got %v, want {255 128 0 255}", got)
	}

	if _, err := ParseFillColor("white"); err == nil {
		t.Error("ParseFillColor should fail for non-hex input")
	}
}

func TestEncodeJPEG(t *testing.T) {
	img := createInMemoryImage(40, 30, color.RGBA{10, 20, 30, 255})

	for _, q := range []int{95, 0, 500} {
		data, err := EncodeJPEG(img, q)
		if err != nil {
			t.Fatalf("EncodeJPEG(%d) failed: %v", q, err)
		}
		decoded, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("output is not a JPEG: %v", err)
		}
		if decoded.Bounds().Dx() != 40 || decoded.Bounds().Dy() != 30 {
			t.Errorf("decoded dimensions: got %v, want 40x30", decoded.Bounds())
		}
	}
}
