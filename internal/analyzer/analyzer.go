package analyzer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/ironsheep/ramen-tools-mcp/internal/detection"
	"github.com/ironsheep/ramen-tools-mcp/internal/imaging"
	"github.com/ironsheep/ramen-tools-mcp/internal/ocr"
	"github.com/ironsheep/ramen-tools-mcp/internal/shop"
)

// Placeholder is the shop name used when nothing could be determined.
const Placeholder = "店舗名：判定不能"

// MaxAlternates is how many candidates are listed in Result.Alternates.
const MaxAlternates = 3

// CropMode selects how the bowl is cropped.
type CropMode string

// Crop modes.
const (
	CropDetect CropMode = "detect"
	CropCenter CropMode = "center"
)

// ParseCropMode validates a mode name. Empty means CropDetect.
func ParseCropMode(s string) (CropMode, error) {
	switch CropMode(s) {
	case "", CropDetect:
		return CropDetect, nil
	case CropCenter:
		return CropCenter, nil
	}
	return "", fmt.Errorf("unknown crop mode: %s", s)
}

// Decider produces a shop decision for a photo.
type Decider interface {
	Decide(ctx context.Context, photo *imaging.Photo) shop.Decision
}

// BowlLocator finds the bowl in an image.
type BowlLocator interface {
	Locate(ctx context.Context, img image.Image) detection.BowlRegion
}

// Labeler renders the shop name onto the cropped image. original carries
// the source bytes so metadata can be re-embedded.
type Labeler interface {
	Label(ctx context.Context, cropped image.Image, shopName string, original []byte) ([]byte, error)
}

// Alternate is a simplified candidate for display.
type Alternate struct {
	Name           string  `json:"name"`
	DistanceMeters float64 `json:"distance_meters"`
}

// Result is the outcome of Analyze.
type Result struct {
	ShopName string `json:"shop_name"`

	// Method is the final method after the name fallbacks. The decision's
	// own method is kept in Decision.Method.
	Method   shop.Method   `json:"method"`
	Decision shop.Decision `json:"decision"`

	// NeedsSelection is set when nearby places were found but none could
	// be chosen; Alternates should be offered to the user.
	NeedsSelection bool        `json:"needs_selection"`
	Alternates     []Alternate `json:"alternates"`

	CropMode CropMode              `json:"crop_mode"`
	Region   *detection.BowlRegion `json:"region,omitempty"`
	Cropped  bool                  `json:"cropped"`
	Width    int                   `json:"width"`
	Height   int                   `json:"height"`

	// Image is the cropped image, or the oriented original when cropping
	// was not possible.
	Image image.Image `json:"-"`

	// Output is the cropped JPEG, or the original bytes when cropping was
	// not possible.
	Output []byte `json:"-"`

	// Labeled is the labeler's output when a Labeler is configured.
	Labeled []byte `json:"-"`
}

// Analyzer wires the pipeline together.
type Analyzer struct {
	decider     Decider
	locator     BowlLocator
	labeler     Labeler
	mode        CropMode
	fill        color.Color
	jpegQuality int
	logger      *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCropMode sets the crop mode.
func WithCropMode(m CropMode) Option {
	return func(a *Analyzer) { a.mode = m }
}

// WithFillColor sets the colour outside the circle in center mode.
func WithFillColor(c color.Color) Option {
	return func(a *Analyzer) { a.fill = c }
}

// WithJPEGQuality sets the output quality.
func WithJPEGQuality(q int) Option {
	return func(a *Analyzer) { a.jpegQuality = q }
}

// WithLabeler sets the labeling step.
func WithLabeler(l Labeler) Option {
	return func(a *Analyzer) { a.labeler = l }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// New returns an Analyzer. A nil locator crops with the heuristic region.
func New(decider Decider, locator BowlLocator, opts ...Option) *Analyzer {
	a := &Analyzer{
		decider:     decider,
		locator:     locator,
		mode:        CropDetect,
		fill:        color.White,
		jpegQuality: imaging.DefaultJPEGQuality,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithMode returns a copy of a that crops in mode m.
func (a *Analyzer) WithMode(m CropMode) *Analyzer {
	c := *a
	c.mode = m
	return &c
}

// Analyze runs the pipeline. Only an undecodable image is an error.
func (a *Analyzer) Analyze(ctx context.Context, src imaging.Source) (*Result, error) {
	photo, err := imaging.Normalize(src)
	if err != nil {
		return nil, err
	}

	var d shop.Decision
	if a.decider != nil {
		d = a.decider.Decide(ctx, photo)
	} else {
		d = shop.Decision{Method: shop.MethodNotFound}
	}

	name, method := FinalName(d)
	res := &Result{
		ShopName:       name,
		Method:         method,
		Decision:       d,
		NeedsSelection: d.Method == shop.MethodNeedsUserSelection,
		Alternates:     Alternates(d),
	}
	a.crop(ctx, photo, res)

	if a.labeler != nil {
		a.label(ctx, photo, res)
	}

	a.logger.Info("photo analyzed",
		"shop", res.ShopName,
		"method", res.Method,
		"crop_mode", res.CropMode,
		"cropped", res.Cropped)
	return res, nil
}

// Relabel crops src again and labels it with a user-chosen name.
func (a *Analyzer) Relabel(ctx context.Context, src imaging.Source, shopName string) (*Result, error) {
	photo, err := imaging.Normalize(src)
	if err != nil {
		return nil, err
	}
	if shopName == "" {
		return nil, fmt.Errorf("shop name is required")
	}

	res := &Result{ShopName: shopName, Alternates: []Alternate{}}
	a.crop(ctx, photo, res)
	if a.labeler != nil {
		a.label(ctx, photo, res)
	}
	return res, nil
}

// Crop crops a normalized photo without running the decision.
func (a *Analyzer) Crop(ctx context.Context, src imaging.Source) (*Result, error) {
	photo, err := imaging.Normalize(src)
	if err != nil {
		return nil, err
	}
	res := &Result{Alternates: []Alternate{}}
	a.crop(ctx, photo, res)
	return res, nil
}

func (a *Analyzer) crop(ctx context.Context, photo *imaging.Photo, res *Result) {
	res.CropMode = a.mode

	var cropped image.Image
	switch a.mode {
	case CropCenter:
		cropped = imaging.CropCenterCircle(photo.Image, a.fill)
	default:
		region := detection.HeuristicRegion()
		if a.locator != nil {
			region = a.locator.Locate(ctx, photo.Image)
		}
		res.Region = &region
		cropped = imaging.CropSquare(photo.Image, region.CenterXRatio, region.CenterYRatio, region.RadiusRatio)
	}

	out, err := imaging.EncodeJPEG(cropped, a.jpegQuality)
	if err != nil {
		a.logger.Warn("crop failed, returning original", "error", err)
		res.Image = photo.Image
		res.Output = photo.Original
		res.Width, res.Height = photo.Bounds().Dx(), photo.Bounds().Dy()
		return
	}

	res.Cropped = true
	res.Image = cropped
	res.Output = out
	res.Width, res.Height = cropped.Bounds().Dx(), cropped.Bounds().Dy()
}

func (a *Analyzer) label(ctx context.Context, photo *imaging.Photo, res *Result) {
	labeled, err := a.labeler.Label(ctx, res.Image, res.ShopName, photo.Original)
	if err != nil {
		a.logger.Warn("labeling failed", "error", err)
		return
	}
	res.Labeled = labeled
}

// FinalName applies the last-resort fallbacks to a decision: a name found
// directly in the recognized text, then the placeholder.
func FinalName(d shop.Decision) (string, shop.Method) {
	if d.HasName() {
		return d.Name(), d.Method
	}
	if name, ok := ocr.FindShopName(d.OCRText); ok {
		return name, shop.MethodOCRDirect
	}
	return Placeholder, shop.MethodNotFound
}

// Alternates lists the first MaxAlternates ranked candidates.
func Alternates(d shop.Decision) []Alternate {
	n := min(len(d.Candidates), MaxAlternates)
	out := make([]Alternate, 0, n)
	for _, c := range d.Candidates[:n] {
		out = append(out, Alternate{Name: c.Name, DistanceMeters: c.DistanceMeters})
	}
	return out
}
