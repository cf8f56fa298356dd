package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ironsheep/ramen-tools-mcp/internal/analyzer"
	"github.com/ironsheep/ramen-tools-mcp/internal/detection"
	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
	"github.com/ironsheep/ramen-tools-mcp/internal/imaging"
	"github.com/ironsheep/ramen-tools-mcp/internal/ocr"
	"github.com/ironsheep/ramen-tools-mcp/internal/poi"
	"github.com/ironsheep/ramen-tools-mcp/internal/shop"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "ramen_analyze", "ramen_gps").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errNotConfigured is returned by tools whose component was not wired.
var errNotConfigured = errors.New("tool is not configured on this server")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Full pipeline
	case ToolAnalyze:
		return s.handleAnalyze(ctx, args)
	case ToolRelabel:
		return s.handleRelabel(ctx, args)

	// Bowl geometry
	case ToolLocateBowl:
		return s.handleLocateBowl(ctx, args)
	case ToolCrop:
		return s.handleCrop(ctx, args)

	// Individual signals
	case ToolOCR:
		return s.handleOCR(ctx, args)
	case ToolGPS:
		return s.handleGPS(ctx, args)
	case ToolSearchShops:
		return s.handleSearchShops(ctx, args)
	case ToolDecideCandidates:
		return s.handleDecideCandidates(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON renders a tool result for the text content block.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. A missing arguments object is
// treated as empty so required-field checks report the real problem.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

type pathArgs struct {
	Path string `json:"path"`
}

func (a pathArgs) source() (imaging.Source, error) {
	if a.Path == "" {
		return imaging.Source{}, errors.New("path is required")
	}
	return imaging.FromPath(a.Path), nil
}

// writeOutput writes data to path when one is given.
func writeOutput(path string, data []byte) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(data) == 0 {
		return "", errors.New("no image data to write")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write output: %w", err)
	}
	return path, nil
}

// === Full Pipeline Handlers ===

type analyzeArgs struct {
	pathArgs
	OutputPath string `json:"output_path"`
	CropMode   string `json:"crop_mode"`
}

// AnalyzeResult is the ramen_analyze and ramen_relabel payload.
type AnalyzeResult struct {
	*analyzer.Result
	OutputPath string `json:"output_path,omitempty"`
}

func (s *Server) handleAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a analyzeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	if s.analyzer == nil {
		return nil, errNotConfigured
	}

	az := s.analyzer
	if a.CropMode != "" {
		mode, err := analyzer.ParseCropMode(a.CropMode)
		if err != nil {
			return nil, err
		}
		az = az.WithMode(mode)
	}

	res, err := az.Analyze(ctx, src)
	if err != nil {
		return nil, err
	}
	out, err := writeOutput(a.OutputPath, outputBytes(res))
	if err != nil {
		return nil, err
	}
	return AnalyzeResult{Result: res, OutputPath: out}, nil
}

type relabelArgs struct {
	pathArgs
	ShopName   string `json:"shop_name"`
	OutputPath string `json:"output_path"`
}

func (s *Server) handleRelabel(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a relabelArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	if s.analyzer == nil {
		return nil, errNotConfigured
	}

	res, err := s.analyzer.Relabel(ctx, src, a.ShopName)
	if err != nil {
		return nil, err
	}
	out, err := writeOutput(a.OutputPath, outputBytes(res))
	if err != nil {
		return nil, err
	}
	return AnalyzeResult{Result: res, OutputPath: out}, nil
}

// outputBytes prefers the labeled image over the plain crop.
func outputBytes(res *analyzer.Result) []byte {
	if len(res.Labeled) > 0 {
		return res.Labeled
	}
	return res.Output
}

// === Bowl Geometry Handlers ===

// LocateResult is the ramen_locate_bowl payload.
type LocateResult struct {
	Region  detection.BowlRegion `json:"region"`
	Width   int                  `json:"width"`
	Height  int                  `json:"height"`
	CenterX int                  `json:"center_x"`
	CenterY int                  `json:"center_y"`
	Radius  int                  `json:"radius"`
}

func (s *Server) handleLocateBowl(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	photo, err := imaging.Normalize(src)
	if err != nil {
		return nil, err
	}

	region := detection.HeuristicRegion()
	if s.locator != nil {
		region = s.locator.Locate(ctx, photo.Image)
	}

	w, h := photo.Bounds().Dx(), photo.Bounds().Dy()
	return LocateResult{
		Region:  region,
		Width:   w,
		Height:  h,
		CenterX: int(region.CenterXRatio * float64(w)),
		CenterY: int(region.CenterYRatio * float64(h)),
		Radius:  int(region.RadiusRatio * float64(min(w, h))),
	}, nil
}

type cropArgs struct {
	pathArgs
	Mode       string `json:"mode"`
	OutputPath string `json:"output_path"`
}

// CropResult is the ramen_crop payload. ImageBase64 is set only when no
// output path was given.
type CropResult struct {
	Mode        analyzer.CropMode     `json:"mode"`
	Region      *detection.BowlRegion `json:"region,omitempty"`
	Cropped     bool                  `json:"cropped"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	OutputPath  string                `json:"output_path,omitempty"`
	ImageBase64 string                `json:"image_base64,omitempty"`
}

func (s *Server) handleCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a cropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	mode, err := analyzer.ParseCropMode(a.Mode)
	if err != nil {
		return nil, err
	}
	if s.analyzer == nil {
		return nil, errNotConfigured
	}

	res, err := s.analyzer.WithMode(mode).Crop(ctx, src)
	if err != nil {
		return nil, err
	}

	out := CropResult{
		Mode:    res.CropMode,
		Region:  res.Region,
		Cropped: res.Cropped,
		Width:   res.Width,
		Height:  res.Height,
	}
	if a.OutputPath == "" {
		out.ImageBase64 = base64.StdEncoding.EncodeToString(res.Output)
		return out, nil
	}
	if out.OutputPath, err = writeOutput(a.OutputPath, res.Output); err != nil {
		return nil, err
	}
	return out, nil
}

// === Signal Handlers ===

// OCRResult is the ramen_ocr payload.
type OCRResult struct {
	Found    bool   `json:"found"`
	Text     string `json:"text"`
	ShopName string `json:"shop_name,omitempty"`
}

func (s *Server) handleOCR(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	if s.text == nil {
		return nil, errNotConfigured
	}
	photo, err := imaging.Normalize(src)
	if err != nil {
		return nil, err
	}

	text, ok := s.text.ExtractText(ctx, photo.Image)
	if !ok {
		return OCRResult{}, nil
	}
	name, _ := ocr.FindShopName(text)
	return OCRResult{Found: true, Text: text, ShopName: name}, nil
}

// GPSResult is the ramen_gps payload.
type GPSResult struct {
	Found      bool            `json:"found"`
	Coordinate *geo.Coordinate `json:"coordinate,omitempty"`
	Stage      string          `json:"stage,omitempty"`
}

// stagedExtractor is implemented by coordinate extractors that report
// which stage produced the result.
type stagedExtractor interface {
	ExtractWithStage(ctx context.Context, photo *imaging.Photo) (geo.Coordinate, string, bool)
}

func (s *Server) handleGPS(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	if s.coords == nil {
		return nil, errNotConfigured
	}
	photo, err := imaging.Normalize(src)
	if err != nil {
		return nil, err
	}

	var (
		coord geo.Coordinate
		stage string
		ok    bool
	)
	if se, isStaged := s.coords.(stagedExtractor); isStaged {
		coord, stage, ok = se.ExtractWithStage(ctx, photo)
	} else {
		coord, ok = s.coords.Extract(ctx, photo)
	}
	if !ok {
		return GPSResult{}, nil
	}
	return GPSResult{Found: true, Coordinate: &coord, Stage: stage}, nil
}

type coordinateArgs struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (a coordinateArgs) coordinate() (geo.Coordinate, error) {
	if a.Lat == nil || a.Lon == nil {
		return geo.Coordinate{}, errors.New("lat and lon are required")
	}
	if *a.Lat < -90 || *a.Lat > 90 || *a.Lon < -180 || *a.Lon > 180 {
		return geo.Coordinate{}, fmt.Errorf("coordinate out of range: %.6f, %.6f", *a.Lat, *a.Lon)
	}
	return geo.Coordinate{Lat: *a.Lat, Lon: *a.Lon}, nil
}

type searchArgs struct {
	coordinateArgs
	Radius int `json:"radius"`
}

// SearchResult is the ramen_search_shops payload.
type SearchResult struct {
	Center     geo.Coordinate  `json:"center"`
	Radius     int             `json:"radius,omitempty"`
	Count      int             `json:"count"`
	Candidates []poi.Candidate `json:"candidates"`
}

func (s *Server) handleSearchShops(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a searchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	center, err := a.coordinate()
	if err != nil {
		return nil, err
	}
	if a.Radius < 0 {
		return nil, fmt.Errorf("radius must be positive: %d", a.Radius)
	}

	var found []poi.Candidate
	switch {
	case a.Radius > 0 && s.finder != nil:
		if found, err = s.finder.Search(ctx, center, a.Radius); err != nil {
			return nil, err
		}
	case a.Radius == 0 && s.searcher != nil:
		found = s.searcher.Collect(ctx, center)
	default:
		return nil, errNotConfigured
	}

	ranked := shop.Rank(found)
	return SearchResult{Center: center, Radius: a.Radius, Count: len(ranked), Candidates: ranked}, nil
}

type decideArgs struct {
	coordinateArgs
	Candidates []poi.Candidate `json:"candidates"`
}

func (s *Server) handleDecideCandidates(args json.RawMessage) (interface{}, error) {
	var a decideArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	coord, err := a.coordinate()
	if err != nil {
		return nil, err
	}
	return shop.DecideFromCandidates(coord, a.Candidates), nil
}
