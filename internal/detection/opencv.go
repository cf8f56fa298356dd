//go:build gocv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/ramen-tools-mcp/internal/imaging"
)

// OpenCVAvailable reports whether the binary was built with the gocv tag.
const OpenCVAvailable = true

// OpenCV is the gocv-backed vision backend.
type OpenCV struct {
	maxSide int
}

// NewOpenCV returns the OpenCV backend.
func NewOpenCV(maxSide int) (Vision, error) {
	return &OpenCV{maxSide: maxSide}, nil
}

func (o *OpenCV) Name() string { return "opencv" }

func (o *OpenCV) Prepare(img image.Image) (Frame, error) {
	src, err := gocv.ImageToMatRGB(imaging.Downscale(img, o.maxSide))
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	clahe := gocv.NewCLAHEWithParams(claheClipLimit, image.Pt(claheTiles, claheTiles))
	defer clahe.Close()
	enhanced := gocv.NewMat()
	defer enhanced.Close()
	clahe.Apply(gray, &enhanced)

	blurred := gocv.NewMat()
	gocv.GaussianBlur(enhanced, &blurred, image.Pt(blurKernelSize, blurKernelSize), blurSigma, blurSigma, gocv.BorderDefault)

	return &openCVFrame{blurred: blurred}, nil
}

type openCVFrame struct {
	blurred gocv.Mat
}

func (f *openCVFrame) Size() (int, int) {
	return f.blurred.Cols(), f.blurred.Rows()
}

func (f *openCVFrame) HoughCircles(p HoughPreset, minDist float64, minRadius, maxRadius int) []Circle {
	circles := gocv.NewMat()
	defer circles.Close()

	gocv.HoughCirclesWithParams(f.blurred, &circles, gocv.HoughGradient,
		p.DP, minDist, p.Param1, p.Param2, minRadius, maxRadius)

	if circles.Empty() || circles.Cols() == 0 {
		return nil
	}

	out := make([]Circle, 0, circles.Cols())
	for i := 0; i < circles.Cols(); i++ {
		out = append(out, Circle{
			X:      float64(circles.GetFloatAt(0, i*3)),
			Y:      float64(circles.GetFloatAt(0, i*3+1)),
			Radius: float64(circles.GetFloatAt(0, i*3+2)),
		})
	}
	return out
}

func (f *openCVFrame) ExternalContours(low, high float64) []Contour {
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(f.blurred, &edges, float32(low), float32(high))

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(2*closeRadius+1, 2*closeRadius+1))
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(edges, &dilated, kernel)

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.Erode(dilated, &closed, kernel)

	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	out := make([]Contour, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		out = append(out, Contour{
			Points:    c.ToPoints(),
			Area:      gocv.ContourArea(c),
			Perimeter: gocv.ArcLength(c, true),
		})
	}
	return out
}

func (f *openCVFrame) MinEnclosingCircle(c Contour) Circle {
	pv := gocv.NewPointVectorFromPoints(c.Points)
	defer pv.Close()

	x, y, r := gocv.MinEnclosingCircle(pv)
	return Circle{X: float64(x), Y: float64(y), Radius: float64(r)}
}

func (f *openCVFrame) Close() error {
	return f.blurred.Close()
}
