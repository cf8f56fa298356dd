package location

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ironsheep/ramen-tools-mcp/internal/cascade"
	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
	"github.com/ironsheep/ramen-tools-mcp/internal/imaging"
)

// Stage names, reported by ExtractWithStage.
const (
	StageExif       = "exif"
	StageExifLegacy = "exif_legacy"
	StageSips       = "sips"
	StageMdls       = "mdls"
)

// Extractor reads a coordinate from a photo.
type Extractor struct {
	runner ToolRunner
	tools  bool
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithToolRunner replaces the default ExecRunner.
func WithToolRunner(r ToolRunner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithPlatformTools enables or disables the sips and mdls stages.
func WithPlatformTools(enabled bool) Option {
	return func(e *Extractor) { e.tools = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// NewExtractor returns an Extractor with platform tools enabled.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		runner: ExecRunner{Timeout: DefaultToolTimeout},
		tools:  true,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the photo's coordinate, or ok=false when none of the
// stages found one.
func (e *Extractor) Extract(ctx context.Context, photo *imaging.Photo) (geo.Coordinate, bool) {
	c, _, ok := e.ExtractWithStage(ctx, photo)
	return c, ok
}

// ExtractWithStage is Extract that also names the stage that succeeded.
func (e *Extractor) ExtractWithStage(ctx context.Context, photo *imaging.Photo) (geo.Coordinate, string, bool) {
	if photo == nil {
		return geo.Coordinate{}, "", false
	}

	x, err := decodeExif(photo.Original)
	if err != nil {
		e.logger.Debug("no exif block", "error", err)
	}

	files := &toolInput{photo: photo}
	defer files.cleanup()

	strategies := []cascade.Strategy[geo.Coordinate]{
		{Name: StageExif, Run: func(context.Context) (geo.Coordinate, bool, error) {
			if x == nil {
				return geo.Coordinate{}, false, nil
			}
			return structuredGPS(x)
		}},
		{Name: StageExifLegacy, Run: func(context.Context) (geo.Coordinate, bool, error) {
			if x == nil {
				return geo.Coordinate{}, false, nil
			}
			return legacyGPS(x)
		}},
	}
	if e.tools && e.runner != nil {
		strategies = append(strategies,
			cascade.Strategy[geo.Coordinate]{Name: StageSips, Run: func(ctx context.Context) (geo.Coordinate, bool, error) {
				return e.runTool(ctx, files, parseSips, "sips", "-g", "allxml")
			}},
			cascade.Strategy[geo.Coordinate]{Name: StageMdls, Run: func(ctx context.Context) (geo.Coordinate, bool, error) {
				return e.runTool(ctx, files, parseMdls, "mdls", "-name", "kMDItemLatitude", "-name", "kMDItemLongitude")
			}},
		)
	}

	c, stage, ok := cascade.First(ctx, e.logger, "gps", strategies)
	if ok {
		e.logger.Debug("gps found", "stage", stage, "coordinate", c.String())
	}
	return c, stage, ok
}

func (e *Extractor) runTool(ctx context.Context, files *toolInput, parse func([]byte) (geo.Coordinate, bool), name string, args ...string) (geo.Coordinate, bool, error) {
	path, err := files.path()
	if err != nil {
		return geo.Coordinate{}, false, err
	}
	if path == "" {
		return geo.Coordinate{}, false, fmt.Errorf("%s: no file to inspect: %w", name, cascade.ErrUnavailable)
	}

	out, err := e.runner.Run(ctx, name, append(args, path)...)
	if err != nil {
		return geo.Coordinate{}, false, err
	}
	c, ok := parse(out)
	return c, ok, nil
}

// toolInput provides a file path for the platform tools, writing the
// original bytes to a temporary file at most once when the photo has no
// path of its own.
type toolInput struct {
	photo   *imaging.Photo
	tmp     string
	written bool
}

func (t *toolInput) path() (string, error) {
	if t.photo.Path != "" {
		return t.photo.Path, nil
	}
	if t.written {
		return t.tmp, nil
	}
	t.written = true
	if len(t.photo.Original) == 0 {
		return "", nil
	}

	f, err := os.CreateTemp("", "ramen-gps-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(t.photo.Original); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	t.tmp = f.Name()
	return t.tmp, nil
}

func (t *toolInput) cleanup() {
	if t.tmp != "" {
		os.Remove(t.tmp)
	}
}
