package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/ramen-tools-mcp/internal/analyzer"
	"github.com/ironsheep/ramen-tools-mcp/internal/poi"
	"github.com/ironsheep/ramen-tools-mcp/internal/shop"
)

// ProtocolVersion is the MCP protocol revision the server speaks.
const ProtocolVersion = "2024-11-05"

// Server answers MCP requests by dispatching ramen tool calls to the
// photo pipeline.
type Server struct {
	analyzer *analyzer.Analyzer
	locator  analyzer.BowlLocator
	text     shop.TextExtractor
	coords   shop.CoordinateExtractor
	finder   poi.Finder
	searcher shop.CandidateCollector
	version  string
	logger   *slog.Logger
}

// Deps holds the pipeline components the tools dispatch to. Nil
// components make the tools that need them fail with an error.
type Deps struct {
	Analyzer *analyzer.Analyzer
	Locator  analyzer.BowlLocator
	Text     shop.TextExtractor
	Coords   shop.CoordinateExtractor
	Finder   poi.Finder
	Searcher shop.CandidateCollector
	Version  string
	Logger   *slog.Logger
}

// MCPRequest is one line read from the MCP client.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse carries either a tool result or an MCPError.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError uses -32601 for unknown methods, -32602 for bad tool arguments
// and -32000 when a ramen tool fails.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New builds a Server over the given pipeline components.
func New(d Deps) *Server {
	if d.Version == "" {
		d.Version = "dev"
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Server{
		analyzer: d.Analyzer,
		locator:  d.Locator,
		text:     d.Text,
		coords:   d.Coords,
		finder:   d.Finder,
		searcher: d.Searcher,
		version:  d.Version,
		logger:   d.Logger,
	}
}

// Run serves stdin and stdout until EOF or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads newline-delimited requests from r and writes responses to w
// until r is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes a request by method; notifications get nil.
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Debug("request received", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize reports ramen-tools-mcp and its tool capability.
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "ramen-tools-mcp",
				"version": s.version,
			},
		},
	}
}
