package imaging

import (
	"image"
	"testing"
)

func TestCLAHE_UniformStaysUniform(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	for i := range img.Pix {
		img.Pix[i] = 90
	}

	out := CLAHE(img, 3.0, 8, 8)

	if out.Bounds() != img.Bounds() {
		t.Fatalf("bounds: got %v, want %v", out.Bounds(), img.Bounds())
	}
	first := out.Pix[0]
	for i, v := range out.Pix {
		if v != first {
			t.Fatalf("pixel %d: got %d, want %d (uniform output)", i, v, first)
		}
	}
}

func TestCLAHE_SingleTileEqualises(t *testing.T) {
	// Horizontal ramp between 100 and 131: only 32 grey levels. One tile with
	// a clip limit that never triggers is plain histogram equalisation.
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Pix[y*img.Stride+x] = uint8(100 + x/2)
		}
	}

	out := CLAHE(img, 1000, 1, 1)

	lo, hi := uint8(255), uint8(0)
	for _, v := range out.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo != 8 || hi != 255 {
		t.Errorf("output range: got %d..%d, want 8..255", lo, hi)
	}
}

func TestCLAHE_MoreTilesThanPixels(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 40)
	}

	out := CLAHE(img, 3.0, 8, 8)
	if out.Bounds().Dx() != 3 || out.Bounds().Dy() != 2 {
		t.Errorf("dimensions: got %v, want 3x2", out.Bounds())
	}
}

func TestEqualizeTile_Monotonic(t *testing.T) {
	var hist [256]int
	hist[10] = 50
	hist[200] = 14

	lut := equalizeTile(hist, 64, 3.0)
	for i := 1; i < 256; i++ {
		if lut[i] < lut[i-1] {
			t.Fatalf("lut not monotonic at %d: %d < %d", i, lut[i], lut[i-1])
		}
	}
	if lut[255] != 255 {
		t.Errorf("lut[255]: got %d, want 255", lut[255])
	}
}
