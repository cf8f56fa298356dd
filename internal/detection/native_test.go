package detection

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createBowlImage draws a filled dark disk on a light background, a crude
// top-down bowl.
func createBowlImage(width, height, cx, cy, radius int) *image.RGBA {
	img := createTestImage(width, height, color.RGBA{240, 235, 225, 255})
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, color.RGBA{60, 40, 30, 255})
			}
		}
	}
	return img
}

func maskFrom(rows []string) *binaryMask {
	m := &binaryMask{w: len(rows[0]), h: len(rows), on: make([]bool, len(rows)*len(rows[0]))}
	for y, row := range rows {
		for x, ch := range row {
			m.on[y*m.w+x] = ch == '#'
		}
	}
	return m
}

func TestNative_LocatesBowl(t *testing.T) {
	img := createBowlImage(320, 240, 170, 110, 90)

	got := NewLocator(NewNative(DefaultMaxSide)).Locate(context.Background(), img)

	if got.Method == MethodHeuristic {
		t.Fatalf("method: got heuristic, want a detection")
	}
	if math.Abs(got.RadiusRatio-0.375) > 0.04 {
		t.Errorf("radius ratio: got %v, want ~0.375", got.RadiusRatio)
	}
	if math.Abs(got.CenterXRatio-170.0/320) > 0.03 || math.Abs(got.CenterYRatio-110.0/240) > 0.03 {
		t.Errorf("centre: got (%v, %v), want ~(0.531, 0.458)", got.CenterXRatio, got.CenterYRatio)
	}
}

func TestNative_ContourStageAlone(t *testing.T) {
	img := createBowlImage(320, 240, 160, 120, 90)

	got := NewLocator(NewNative(DefaultMaxSide), WithPresets(nil)).Locate(context.Background(), img)

	if got.Method != MethodContour {
		t.Fatalf("method: got %s, want contour", got.Method)
	}
	if math.Abs(got.RadiusRatio-0.375) > 0.04 {
		t.Errorf("radius ratio: got %v, want ~0.375", got.RadiusRatio)
	}
}

func TestNative_UniformImageIsHeuristic(t *testing.T) {
	img := createTestImage(200, 150, color.RGBA{128, 128, 128, 255})

	got := NewLocator(NewNative(DefaultMaxSide)).Locate(context.Background(), img)
	if got != HeuristicRegion() {
		t.Errorf("got %+v, want heuristic", got)
	}
}

func TestNative_Downscales(t *testing.T) {
	frame, err := NewNative(100).Prepare(createTestImage(400, 200, color.White))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	defer frame.Close()

	w, h := frame.Size()
	if w != 100 || h != 50 {
		t.Errorf("frame size: got %dx%d, want 100x50", w, h)
	}
}

func TestNative_PrepareColorImage(t *testing.T) {
	img := createTestImage(64, 64, color.RGBA{200, 30, 30, 255})
	for y := 0; y < 64; y++ {
		for x := 32; x < 64; x++ {
			img.Set(x, y, color.RGBA{20, 20, 220, 255})
		}
	}

	frame, err := NewNative(320).Prepare(img)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	defer frame.Close()

	nf, ok := frame.(*nativeFrame)
	if !ok {
		t.Fatalf("frame type: got %T", frame)
	}
	if nf.blurred.Bounds().Dx() != 64 || nf.blurred.Bounds().Dy() != 64 {
		t.Errorf("blurred size: got %v", nf.blurred.Bounds())
	}
}

func TestRedToGray(t *testing.T) {
	src := image.NewRGBA(image.Rect(2, 3, 4, 5))
	src.Set(2, 3, color.RGBA{10, 0, 0, 255})
	src.Set(3, 4, color.RGBA{250, 0, 0, 255})

	g := redToGray(src)
	if g.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds: got %v", g.Bounds())
	}
	if g.GrayAt(0, 0).Y != 10 || g.GrayAt(1, 1).Y != 250 {
		t.Errorf("values: got %d, %d", g.GrayAt(0, 0).Y, g.GrayAt(1, 1).Y)
	}
}

func TestNative_EmptyImage(t *testing.T) {
	if _, err := NewNative(100).Prepare(image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("Prepare should fail for an empty image")
	}
}

func TestTraceBoundary_Square(t *testing.T) {
	m := maskFrom([]string{
		".....",
		".###.",
		".###.",
		".###.",
		".....",
	})

	pts := traceBoundary(m, image.Point{X: 1, Y: 1})

	want := []image.Point{{1, 1}, {2, 1}, {3, 1}, {3, 2}, {3, 3}, {2, 3}, {1, 3}, {1, 2}}
	if len(pts) != len(want) {
		t.Fatalf("points: got %v, want %v", pts, want)
	}
	for i := range want {
		if pts[i] != want[i] {
			t.Errorf("point %d: got %v, want %v", i, pts[i], want[i])
		}
	}
	if a := polygonArea(pts); a != 4 {
		t.Errorf("area: got %v, want 4", a)
	}
	if p := polygonPerimeter(pts); p != 8 {
		t.Errorf("perimeter: got %v, want 8", p)
	}
}

func TestTraceBoundary_SinglePixel(t *testing.T) {
	m := maskFrom([]string{
		"...",
		".#.",
		"...",
	})

	pts := traceBoundary(m, image.Point{X: 1, Y: 1})
	if len(pts) != 1 {
		t.Errorf("points: got %v, want one", pts)
	}
	if polygonArea(pts) != 0 || polygonPerimeter(pts) != 0 {
		t.Error("single pixel should have no area or perimeter")
	}
}

func TestExternalContours_SkipsNested(t *testing.T) {
	m := maskFrom([]string{
		".........",
		".#######.",
		".#.....#.",
		".#.....#.",
		".#..#..#.",
		".#.....#.",
		".#.....#.",
		".#######.",
		".........",
	})

	contours := externalContours(m)

	if len(contours) != 1 {
		t.Fatalf("contours: got %d, want 1 (inner dot is nested)", len(contours))
	}
	if contours[0].Area != 36 {
		t.Errorf("area: got %v, want 36", contours[0].Area)
	}
	if contours[0].Perimeter != 24 {
		t.Errorf("perimeter: got %v, want 24", contours[0].Perimeter)
	}
}

func TestExternalContours_Separate(t *testing.T) {
	m := maskFrom([]string{
		"##....",
		"##..##",
		"....##",
	})

	if got := len(externalContours(m)); got != 2 {
		t.Errorf("contours: got %d, want 2", got)
	}
}

func TestContour_Circularity(t *testing.T) {
	r := 50.0
	circle := Contour{Area: math.Pi * r * r, Perimeter: 2 * math.Pi * r}
	if got := circle.Circularity(); math.Abs(got-1) > 1e-9 {
		t.Errorf("circle: got %v, want 1", got)
	}

	square := Contour{Area: 100, Perimeter: 40}
	if got := square.Circularity(); math.Abs(got-math.Pi/4) > 1e-9 {
		t.Errorf("square: got %v, want π/4", got)
	}

	if got := (Contour{Area: 10}).Circularity(); got != 0 {
		t.Errorf("zero perimeter: got %v, want 0", got)
	}
}

func TestMinEnclosingCircle(t *testing.T) {
	pts := []image.Point{{0, 0}, {10, 0}, {5, 5}, {5, -5}, {3, 1}, {7, -2}}

	c := minEnclosingCircle(pts)

	if math.Abs(c.X-5) > 1e-9 || math.Abs(c.Y) > 1e-9 || math.Abs(c.Radius-5) > 1e-9 {
		t.Errorf("got %+v, want centre (5,0) radius 5", c)
	}
	for _, p := range pts {
		if math.Hypot(float64(p.X)-c.X, float64(p.Y)-c.Y) > c.Radius+1e-6 {
			t.Errorf("point %v outside circle %+v", p, c)
		}
	}
}

func TestMinEnclosingCircle_Degenerate(t *testing.T) {
	if c := minEnclosingCircle(nil); c != (Circle{}) {
		t.Errorf("empty: got %+v", c)
	}
	if c := minEnclosingCircle([]image.Point{{3, 4}}); c.X != 3 || c.Y != 4 || c.Radius != 0 {
		t.Errorf("single point: got %+v", c)
	}

	c := minEnclosingCircle([]image.Point{{0, 0}, {2, 0}, {4, 0}})
	if math.Abs(c.X-2) > 1e-9 || math.Abs(c.Radius-2) > 1e-9 {
		t.Errorf("collinear: got %+v, want centre (2,0) radius 2", c)
	}
}

func TestTooClose(t *testing.T) {
	accepted := []Circle{{X: 100, Y: 100, Radius: 50}}

	if !tooClose(accepted, 110, 100, 20) {
		t.Error("point 10px away should be too close for minDist 20")
	}
	if tooClose(accepted, 150, 100, 20) {
		t.Error("point 50px away should not be too close for minDist 20")
	}
	if tooClose(nil, 0, 0, 1000) {
		t.Error("no accepted circles means nothing is too close")
	}
}
