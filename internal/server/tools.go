package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Tool names.
const (
	ToolAnalyze          = "ramen_analyze"
	ToolRelabel          = "ramen_relabel"
	ToolLocateBowl       = "ramen_locate_bowl"
	ToolCrop             = "ramen_crop"
	ToolOCR              = "ramen_ocr"
	ToolGPS              = "ramen_gps"
	ToolSearchShops      = "ramen_search_shops"
	ToolDecideCandidates = "ramen_decide_candidates"
)

const (
	pathPropDescription   = "Absolute path to the photo (JPEG, PNG or GIF)"
	outputPropDescription = "Optional path to write the cropped JPEG to"
)

func pathProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": pathPropDescription,
	}
}

func outputProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": outputPropDescription,
	}
}

func latProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Latitude in decimal degrees (-90 to 90)",
	}
}

func lonProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Longitude in decimal degrees (-180 to 180)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Full pipeline
		{
			Name: ToolAnalyze,
			Description: "Identify the ramen shop a photo was taken at and crop the bowl. " +
				"Combines EXIF GPS with a nearby shop search, falls back to text recognized in the photo, " +
				"and returns the shop name, the decision method, up to three alternates and the debug trail.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProp(),
					"output_path": outputProp(),
					"crop_mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"detect", "center"},
						"description": "detect finds the bowl; center cuts a centred circle (default: server setting)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolRelabel,
			Description: "Crop a photo again for a shop name the user picked from the alternates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
					"shop_name": map[string]interface{}{
						"type":        "string",
						"description": "Shop name chosen by the user",
					},
					"output_path": outputProp(),
				},
				"required": []string{"path", "shop_name"},
			},
		},

		// Bowl geometry
		{
			Name: ToolLocateBowl,
			Description: "Find the bowl in a photo. Returns the circle as ratios of the image size " +
				"and in pixels, plus the strategy that found it (hough, contour or heuristic).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolCrop,
			Description: "Crop the bowl out of a photo as a JPEG. Without output_path the image is returned base64-encoded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"detect", "center"},
						"description": "Crop mode (default: detect)",
					},
					"output_path": outputProp(),
				},
				"required": []string{"path"},
			},
		},

		// Individual signals
		{
			Name:        ToolOCR,
			Description: "Recognize Japanese and English text in a photo and pick the most likely shop name from it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name: ToolGPS,
			Description: "Read the GPS position a photo was taken at. Tries EXIF GPS, the legacy GPS pointer, " +
				"then platform tools (sips, mdls) where available.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name: ToolSearchShops,
			Description: "List eating places near a coordinate from OpenStreetMap, ranked nearest first within each tier. " +
				"Without radius the search widens from 500 m to 2 km to 5 km until enough shops are found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"lat": latProp(),
					"lon": lonProp(),
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Search radius in meters (optional)",
						"minimum":     1,
					},
				},
				"required": []string{"lat", "lon"},
			},
		},
		{
			Name:        ToolDecideCandidates,
			Description: "Apply the shop decision rules to a coordinate and a list of candidates without any network access.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"lat": latProp(),
					"lon": lonProp(),
					"candidates": map[string]interface{}{
						"type":        "array",
						"description": "Candidates as returned by ramen_search_shops",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"name":            map[string]interface{}{"type": "string"},
								"distance_meters": map[string]interface{}{"type": "number"},
								"is_ramen":        map[string]interface{}{"type": "boolean"},
							},
							"required": []string{"name", "distance_meters", "is_ramen"},
						},
					},
				},
				"required": []string{"lat", "lon", "candidates"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
