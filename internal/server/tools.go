package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// segmentProperties are the arguments shared by segment_image and
// segment_render.
func segmentProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image or video file",
		},
		"video": map[string]interface{}{
			"type":        "boolean",
			"description": "Treat path as a video and grab one frame with ffmpeg. Default false",
			"default":     false,
		},
		"offset_seconds": map[string]interface{}{
			"type":        "number",
			"description": "Video position of the frame in seconds. Default 0",
			"default":     0,
		},
		"params": map[string]interface{}{
			"type":        "string",
			"description": "Optional path to an XML parameter file. Without it the server's parameters, or full-frame gray defaults, are used",
		},
		"set": map[string]interface{}{
			"type":        "string",
			"description": "Parameter set name, e.g. red, lab-a or an hsv entry. Default: first name in the file",
		},
		"strategy": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"distance", "erosion"},
			"description": "Override the foreground estimation strategy",
		},
		"backend": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"native", "opencv"},
			"description": "Override the stage backend. opencv needs a server built with -tags gocv",
		},
		"peak_cutoff": map[string]interface{}{
			"type":        "integer",
			"description": "Override the distance-transform seed cutoff (0-255)",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	render := segmentProperties()
	render["mode"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"labels", "boundaries", "annotated"},
		"description": "labels: one color per region; boundaries: white watershed lines on black; annotated: ROI with boundaries and region numbers. Default labels",
		"default":     "labels",
	}
	render["seed"] = map[string]interface{}{
		"type":        "integer",
		"description": "Palette seed for labels mode. Default 12345",
		"default":     12345,
	}
	render["mark_color"] = map[string]interface{}{
		"type":        "string",
		"description": "Hex color for annotated mode. Default #FF0000",
		"default":     "#FF0000",
	}

	return []Tool{
		// Input Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "video_probe",
			Description: "Probe a video file with ffprobe and return its frame size, duration and frame rate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the video file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Segmentation
		{
			Name:        "segment_image",
			Description: "Segment touching objects in a frame with a marker-based watershed and return the recognition status and the accepted regions (area, centroid, bounds, elongation), largest first.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": segmentProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "segment_render",
			Description: "Segment a frame and return a rendering of the label map as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": render,
				"required":   []string{"path"},
			},
		},

		// Configuration
		{
			Name:        "describe_params",
			Description: "Parse an XML parameter file and list its parameter sets with the resolved settings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"params": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the XML parameter file",
					},
				},
				"required": []string{"params"},
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
