package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/ramen-tools-mcp/internal/exiftest"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// createMarkerImage creates a 2x3 image whose top-left pixel is red and the
// rest blue, so orientation transforms can be traced.
func createMarkerImage() *image.RGBA {
	img := createInMemoryImage(2, 3, color.RGBA{0, 0, 255, 255})
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	return img
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 == 255 && g>>8 == 0 && b>>8 == 0
}

func TestApplyOrientation(t *testing.T) {
	tests := []struct {
		tag        int
		w, h       int
		redX, redY int
	}{
		{1, 2, 3, 0, 0},
		{2, 2, 3, 1, 0},
		{3, 2, 3, 1, 2},
		{4, 2, 3, 0, 2},
		{5, 3, 2, 0, 0},
		{6, 3, 2, 2, 0},
		{7, 3, 2, 2, 1},
		{8, 3, 2, 0, 1},
		{0, 2, 3, 0, 0},
		{9, 2, 3, 0, 0},
	}

	for _, tt := range tests {
		out := ApplyOrientation(createMarkerImage(), tt.tag)
		b := out.Bounds()
		if b.Dx() != tt.w || b.Dy() != tt.h {
			t.Errorf("tag %d: dimensions got %dx%d, want %dx%d", tt.tag, b.Dx(), b.Dy(), tt.w, tt.h)
			continue
		}
		if !isRed(out.At(b.Min.X+tt.redX, b.Min.Y+tt.redY)) {
			t.Errorf("tag %d: marker not at (%d,%d)", tt.tag, tt.redX, tt.redY)
		}
	}
}

func TestReadOrientation_NoExif(t *testing.T) {
	data := encodePNG(t, createMarkerImage())
	if got := ReadOrientation(data); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	if got := ReadOrientation([]byte("not an image")); got != 1 {
		t.Errorf("garbage: got %d, want 1", got)
	}
}

func TestNormalize_ExifOrientation(t *testing.T) {
	data, err := exiftest.JPEG(createInMemoryImage(40, 20, color.RGBA{200, 200, 200, 255}), exiftest.TIFF(6, nil))
	if err != nil {
		t.Fatalf("failed to build fixture: %v", err)
	}

	if got := ReadOrientation(data); got != 6 {
		t.Fatalf("orientation: got %d, want 6", got)
	}

	photo, err := Normalize(FromBytes(data))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if photo.Orientation != 6 {
		t.Errorf("photo orientation: got %d, want 6", photo.Orientation)
	}
	if photo.Bounds().Dx() != 20 || photo.Bounds().Dy() != 40 {
		t.Errorf("dimensions: got %v, want 20x40 after rotation", photo.Bounds())
	}
}

func TestNormalize_Bytes(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(30, 20, color.RGBA{1, 2, 3, 255}))

	photo, err := Normalize(FromBytes(data))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if photo.Bounds().Dx() != 30 || photo.Bounds().Dy() != 20 {
		t.Errorf("dimensions: got %v, want 30x20", photo.Bounds())
	}
	if !bytes.Equal(photo.Original, data) {
		t.Error("original bytes not preserved")
	}
	if photo.Orientation != 1 {
		t.Errorf("orientation: got %d, want 1", photo.Orientation)
	}
	if photo.Path != "" {
		t.Errorf("path: got %q, want empty", photo.Path)
	}
}

func TestNormalize_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bowl.png")
	data := encodePNG(t, createInMemoryImage(12, 8, color.RGBA{9, 9, 9, 255}))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	photo, err := Normalize(FromPath(path))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if photo.Path != path {
		t.Errorf("path: got %q, want %q", photo.Path, path)
	}
	if !bytes.Equal(photo.Original, data) {
		t.Error("original bytes not preserved")
	}
}

func TestNormalize_Image(t *testing.T) {
	img := createInMemoryImage(5, 5, color.White)

	photo, err := Normalize(FromImage(img))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if photo.Image != image.Image(img) {
		t.Error("decoded image should be passed through")
	}
	if photo.Original != nil {
		t.Error("decoded source has no original bytes")
	}
}

func TestNormalize_Errors(t *testing.T) {
	if _, err := Normalize(Source{}); !errors.Is(err, ErrEmptySource) {
		t.Errorf("empty source: got %v, want ErrEmptySource", err)
	}
	if _, err := Normalize(FromBytes([]byte("definitely not an image"))); err == nil {
		t.Error("Normalize should fail for undecodable bytes")
	}
	if _, err := Normalize(FromPath(filepath.Join(t.TempDir(), "missing.jpg"))); err == nil {
		t.Error("Normalize should fail for a missing file")
	}
}

func TestDownscale(t *testing.T) {
	img := createInMemoryImage(800, 400, color.White)

	small := Downscale(img, 320)
	if small.Bounds().Dx() != 320 || small.Bounds().Dy() != 160 {
		t.Errorf("dimensions: got %v, want 320x160", small.Bounds())
	}

	if same := Downscale(img, 0); same != image.Image(img) {
		t.Error("maxSide 0 should return the input")
	}
	if same := Downscale(img, 1000); same != image.Image(img) {
		t.Error("image already within maxSide should be returned as is")
	}
}
