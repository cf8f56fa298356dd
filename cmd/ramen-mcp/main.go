package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/ramen-tools-mcp/internal/analyzer"
	"github.com/ironsheep/ramen-tools-mcp/internal/config"
	"github.com/ironsheep/ramen-tools-mcp/internal/detection"
	"github.com/ironsheep/ramen-tools-mcp/internal/imaging"
	"github.com/ironsheep/ramen-tools-mcp/internal/location"
	"github.com/ironsheep/ramen-tools-mcp/internal/ocr"
	"github.com/ironsheep/ramen-tools-mcp/internal/poi"
	"github.com/ironsheep/ramen-tools-mcp/internal/server"
	"github.com/ironsheep/ramen-tools-mcp/internal/shop"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("ramen-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("ramen-tools-mcp - MCP server that identifies ramen shops from bowl photos")
			fmt.Println()
			fmt.Println("Usage: ramen-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Configuration is read from ./config.yaml (or $RAMEN_MCP_CONFIG), ./.env")
			fmt.Println("and RAMEN_MCP_* environment variables, for example:")
			fmt.Println("  RAMEN_MCP_LOG_LEVEL=debug            Enable debug logging")
			fmt.Println("  RAMEN_MCP_OCR_ENGINE=vision          tesseract, vision or none")
			fmt.Println("  RAMEN_MCP_BOWL_BACKEND=native        auto, opencv, native or none")
			fmt.Println("  RAMEN_MCP_CROP_MODE=center           detect or center")
			fmt.Println("  RAMEN_MCP_REVERSE_GEOCODE_ENABLED=1  Add a Nominatim hint to the debug trail")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	if err := run(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Log to stderr (stdout is for MCP protocol)
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, closers, err := wire(ctx, cfg, logger)
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Warn("close failed", "error", err)
			}
		}
	}()
	if err != nil {
		return err
	}

	srv := server.New(deps)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// wire builds every pipeline component from cfg. The returned closers
// must be closed even when err is non-nil.
func wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (server.Deps, []io.Closer, error) {
	var closers []io.Closer

	vision, err := detection.NewVision(cfg.Bowl.Backend, cfg.Bowl.MaxSide)
	if err != nil {
		return server.Deps{}, closers, err
	}
	locator := detection.NewLocator(vision, detection.WithLogger(logger))

	engine, err := ocr.NewEngine(ctx, cfg.OCR.Engine, ocr.EngineOptions{
		TessdataPrefix:    cfg.OCR.TessdataPrefix,
		VisionCredentials: cfg.OCR.VisionCredentials,
	})
	if errors.Is(err, ocr.ErrEngineUnavailable) {
		logger.Warn("ocr disabled", "engine", cfg.OCR.Engine, "error", err)
		engine, err = nil, nil
	}
	if err != nil {
		return server.Deps{}, closers, err
	}
	if c, ok := engine.(io.Closer); ok {
		closers = append(closers, c)
	}
	text := ocr.NewExtractor(engine, cfg.OCR.Languages, logger)

	coords := location.NewExtractor(
		location.WithToolRunner(location.ExecRunner{Timeout: cfg.GPS.ToolTimeout}),
		location.WithPlatformTools(cfg.GPS.PlatformTools),
		location.WithLogger(logger),
	)

	httpClient := poi.NewHTTPClient(cfg.Overpass.Timeout)
	finder := poi.NewClient(poi.Config{
		URL:          cfg.Overpass.URL,
		QueryTimeout: cfg.Overpass.QueryTimeout,
		Cuisine:      cfg.Overpass.Cuisine,
		UserAgent:    cfg.Overpass.UserAgent,
	}, httpClient, poi.WithClientLogger(logger))
	searcher := poi.NewSearcher(finder, poi.WithSearcherLogger(logger))

	fuserOpts := []shop.Option{shop.WithLogger(logger)}
	if cfg.ReverseGeocode.Enabled {
		hinter := poi.NewReverseGeocoder(cfg.ReverseGeocode.URL, cfg.Overpass.UserAgent, httpClient, logger)
		fuserOpts = append(fuserOpts, shop.WithHinter(hinter))
	}
	fuser := shop.NewFuser(text, coords, searcher, fuserOpts...)

	mode, err := analyzer.ParseCropMode(cfg.Crop.Mode)
	if err != nil {
		return server.Deps{}, closers, err
	}
	fill, err := imaging.ParseFillColor(cfg.Crop.FillColor)
	if err != nil {
		return server.Deps{}, closers, err
	}
	az := analyzer.New(fuser, locator,
		analyzer.WithCropMode(mode),
		analyzer.WithFillColor(fill),
		analyzer.WithJPEGQuality(cfg.Crop.JPEGQuality),
		analyzer.WithLogger(logger),
	)

	logger.Info("pipeline ready",
		"ocr_engine", cfg.OCR.Engine,
		"bowl_backend", cfg.Bowl.Backend,
		"crop_mode", mode,
		"platform_tools", cfg.GPS.PlatformTools,
		"reverse_geocode", cfg.ReverseGeocode.Enabled)

	return server.Deps{
		Analyzer: az,
		Locator:  locator,
		Text:     text,
		Coords:   coords,
		Finder:   finder,
		Searcher: searcher,
		Version:  Version,
		Logger:   logger,
	}, closers, nil
}
