package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"
)

// DefaultLanguages are the Tesseract language codes used for ramen photos.
var DefaultLanguages = []string{"jpn", "eng"}

// ErrEngineUnavailable is returned by engines that cannot run in this build
// or environment.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// Engine recognizes text in an image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image, languages []string) (string, error)
}

// Extractor wraps an Engine and turns its failures into absence.
type Extractor struct {
	engine    Engine
	languages []string
	logger    *slog.Logger
}

// NewExtractor returns an Extractor. A nil engine yields no text.
func NewExtractor(engine Engine, languages []string, logger *slog.Logger) *Extractor {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, languages: languages, logger: logger}
}

// ExtractText returns the trimmed recognized text, or ("", false) when the
// engine is missing, fails or finds nothing.
func (e *Extractor) ExtractText(ctx context.Context, img image.Image) (string, bool) {
	if e == nil || e.engine == nil {
		return "", false
	}

	text, err := e.engine.Recognize(ctx, img, e.languages)
	switch {
	case errors.Is(err, ErrEngineUnavailable):
		e.logger.Debug("ocr engine unavailable", "engine", e.engine.Name(), "error", err)
		return "", false
	case err != nil:
		e.logger.Warn("ocr failed", "engine", e.engine.Name(), "error", err)
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		e.logger.Debug("ocr found no text", "engine", e.engine.Name())
		return "", false
	}
	e.logger.Debug("ocr text extracted", "engine", e.engine.Name(), "chars", len([]rune(text)))
	return text, true
}

// encodePNG serialises img for engines that take encoded bytes.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Engine names accepted by NewEngine.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
	EngineNone      = "none"
)

// EngineOptions carries engine-specific settings.
type EngineOptions struct {
	TessdataPrefix    string
	VisionCredentials string
}

// NewEngine builds the named engine. "none" and "" return a nil Engine,
// which an Extractor treats as no text.
func NewEngine(ctx context.Context, name string, opts EngineOptions) (Engine, error) {
	switch name {
	case "", EngineNone:
		return nil, nil
	case EngineTesseract:
		return NewTesseract(opts.TessdataPrefix)
	case EngineVision:
		v, err := NewVision(ctx, opts.VisionCredentials)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown ocr engine: %s", name)
	}
}
