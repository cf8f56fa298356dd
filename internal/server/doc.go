// Package server implements the MCP (Model Context Protocol) server for the
// ramen photo tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the ramen photo
// pipeline through the MCP protocol, so an MCP client can ask which shop a
// bowl was photographed at and get the bowl cropped out.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Full pipeline:
//   - ramen_analyze: Decide the shop and crop the bowl
//   - ramen_relabel: Crop again for a shop name picked by the user
//
// Bowl geometry:
//   - ramen_locate_bowl: Find the bowl circle
//   - ramen_crop: Crop the bowl (detect or center mode)
//
// Individual signals:
//   - ramen_ocr: Recognize text and pick a shop name
//   - ramen_gps: Read the photo's GPS position
//   - ramen_search_shops: List nearby eating places
//   - ramen_decide_candidates: Apply the decision rules offline
//
// # Response Format
//
// Tool results are JSON documents wrapped in a single text content block:
//
//	{
//	  "content": [{"type": "text", "text": "{\"shop_name\": \"...\", ...}"}]
//	}
//
// A photo without GPS, text or nearby shops is not an error: ramen_analyze
// still answers, with the placeholder name and method "not_found". Tool
// errors (unreadable file, bad arguments) use JSON-RPC code -32000.
//
// # Usage
//
// Build a Server from the pipeline components and run it:
//
//	srv := server.New(server.Deps{Analyzer: a, Locator: loc, ...})
//	if err := srv.Run(ctx); err != nil {
//	    slog.Error("server stopped", "error", err)
//	}
package server
