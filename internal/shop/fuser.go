package shop

import (
	"context"
	"image"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
	"github.com/ironsheep/ramen-tools-mcp/internal/imaging"
	"github.com/ironsheep/ramen-tools-mcp/internal/poi"
	"github.com/ironsheep/ramen-tools-mcp/internal/vocab"
)

// TextExtractor recognizes text in an image.
type TextExtractor interface {
	ExtractText(ctx context.Context, img image.Image) (string, bool)
}

// CoordinateExtractor reads the GPS coordinate of a photo.
type CoordinateExtractor interface {
	Extract(ctx context.Context, photo *imaging.Photo) (geo.Coordinate, bool)
}

// CandidateCollector gathers nearby candidates with radius escalation.
type CandidateCollector interface {
	Collect(ctx context.Context, center geo.Coordinate) []poi.Candidate
}

// Hinter names the eating place at a coordinate, if it knows one.
type Hinter interface {
	ShopAt(ctx context.Context, c geo.Coordinate) (string, bool, error)
}

// Fuser combines text, coordinate and candidates into a Decision.
type Fuser struct {
	text       TextExtractor
	coords     CoordinateExtractor
	candidates CandidateCollector
	hinter     Hinter
	vocab      vocab.Vocabulary
	logger     *slog.Logger
}

// Option configures a Fuser.
type Option func(*Fuser)

// WithHinter adds a reverse-geocoding hint for undecided GPS results.
func WithHinter(h Hinter) Option {
	return func(f *Fuser) { f.hinter = h }
}

// WithVocabulary replaces the default keyword tables.
func WithVocabulary(v vocab.Vocabulary) Option {
	return func(f *Fuser) { f.vocab = v }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fuser) { f.logger = logger }
}

// NewFuser returns a Fuser. Any of the collaborators may be nil, in which
// case that signal is treated as absent.
func NewFuser(text TextExtractor, coords CoordinateExtractor, candidates CandidateCollector, opts ...Option) *Fuser {
	f := &Fuser{
		text:       text,
		coords:     coords,
		candidates: candidates,
		vocab:      vocab.Default(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Decide produces the Decision for photo. It never fails; every missing
// signal moves the state machine to its next branch.
func (f *Fuser) Decide(ctx context.Context, photo *imaging.Photo) Decision {
	var (
		text     string
		hasText  bool
		coord    geo.Coordinate
		hasCoord bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if f.text != nil && photo != nil {
			text, hasText = f.text.ExtractText(gctx, photo.Image)
		}
		return nil
	})
	g.Go(func() error {
		if f.coords != nil && photo != nil {
			coord, hasCoord = f.coords.Extract(gctx, photo)
		}
		return nil
	})
	_ = g.Wait()

	f.logger.Debug("signals extracted", "has_text", hasText, "has_gps", hasCoord)

	if !hasCoord {
		d := DecideFromText(text, f.vocab.FallbackKeywords)
		f.logger.Info("shop decided", "method", d.Method, "shop", d.Name())
		return d
	}

	var candidates []poi.Candidate
	if f.candidates != nil {
		candidates = f.candidates.Collect(ctx, coord)
	}

	d := DecideFromCandidates(coord, candidates)
	d.OCRText = text

	if !d.HasName() && f.hinter != nil {
		f.addHint(ctx, &d, coord)
	}

	f.logger.Info("shop decided", "method", d.Method, "shop", d.Name(), "candidates", len(d.Candidates))
	return d
}

func (f *Fuser) addHint(ctx context.Context, d *Decision, coord geo.Coordinate) {
	name, ok, err := f.hinter.ShopAt(ctx, coord)
	if err != nil {
		f.logger.Warn("reverse geocode failed", "error", err)
		return
	}
	if ok {
		d.DebugTrail += " | reverse geocode hint: " + name
	}
}
