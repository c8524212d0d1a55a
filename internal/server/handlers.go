package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/piece-segmenter/internal/config"
	"github.com/ironsheep/piece-segmenter/internal/imaging"
	"github.com/ironsheep/piece-segmenter/internal/logger"
	"github.com/ironsheep/piece-segmenter/internal/recognition"
	"github.com/ironsheep/piece-segmenter/internal/segment"
	"github.com/ironsheep/piece-segmenter/internal/source"
	"github.com/ironsheep/piece-segmenter/internal/visualize"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "segment_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

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
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Obtains the frame from the file cache or ffmpeg
//  4. Runs the recognizer or visualizer
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Input Information
	case "image_load":
		return s.handleImageLoad(args)
	case "video_probe":
		return s.handleVideoProbe(args)

	// Segmentation
	case "segment_image":
		return s.handleSegmentImage(ctx, args)
	case "segment_render":
		return s.handleSegmentRender(ctx, args)

	// Configuration
	case "describe_params":
		return s.handleDescribeParams(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Input Information Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return source.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleVideoProbe(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return source.ProbeVideo(a.Path)
}

// === Segmentation Handlers ===

type segmentArgs struct {
	Path          string  `json:"path"`
	Video         bool    `json:"video"`
	OffsetSeconds float64 `json:"offset_seconds"`
	Params        string  `json:"params"`
	Set           string  `json:"set"`
	Strategy      string  `json:"strategy"`
	Backend       string  `json:"backend"`
	PeakCutoff    *int    `json:"peak_cutoff"`
}

// segmentation is one recognizer run together with its inputs.
type segmentation struct {
	settings recognition.Settings
	frame    source.Frame
	result   recognition.Result
}

func (s *Server) frameSource(a segmentArgs) source.Source {
	if a.Video {
		return &source.Video{
			Path:   a.Path,
			Offset: time.Duration(a.OffsetSeconds * float64(time.Second)),
			Log:    logger.Component(s.log, "video"),
		}
	}
	return source.NewFile(a.Path, s.cache)
}

// parameters picks the parameter file for a call: the one named in the
// arguments, then the server's, then full-frame defaults for bounds.
func (s *Server) parameters(path string, bounds image.Rectangle) (*config.Parameters, error) {
	if path != "" {
		return config.Load(path)
	}
	if s.params != nil {
		return s.params, nil
	}
	return config.Default(bounds.Dx(), bounds.Dy()), nil
}

func (s *Server) segment(ctx context.Context, a segmentArgs) (*segmentation, error) {
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	frame, err := s.frameSource(a).Frame(ctx)
	if err != nil {
		return &segmentation{result: recognition.Result{Status: recognition.InternalError, Cause: err}}, nil
	}

	params, err := s.parameters(a.Params, frame.Image.Bounds())
	if err != nil {
		return nil, err
	}
	if a.Set == "" {
		a.Set = params.Names()[0]
	}
	settings, err := params.Settings(a.Set)
	if err != nil {
		return nil, err
	}
	if a.Strategy != "" {
		if settings.Strategy, err = segment.ParseStrategy(a.Strategy); err != nil {
			return nil, err
		}
	}
	if a.Backend != "" {
		if settings.Backend, err = recognition.ParseBackend(a.Backend); err != nil {
			return nil, err
		}
	}
	if a.PeakCutoff != nil {
		settings.PeakCutoff = *a.PeakCutoff
	}

	opts := []recognition.Option{recognition.WithLogger(logger.Component(s.log, "recognition"))}
	if s.sink != nil {
		opts = append(opts, recognition.WithDiagnostics(s.sink))
	}
	rec, err := recognition.New(settings, opts...)
	if err != nil {
		return nil, err
	}

	result, err := rec.RecognizeImage(frame.Image, frame.Captured)
	if err != nil {
		return nil, err
	}
	return &segmentation{settings: settings, frame: frame, result: result}, nil
}

// SegmentResult is the segment_image response.
type SegmentResult struct {
	Status         recognition.Status `json:"status"`
	Set            string             `json:"set,omitempty"`
	Path           string             `json:"recognition_path,omitempty"`
	Strategy       string             `json:"strategy,omitempty"`
	Width          int                `json:"width,omitempty"`
	Height         int                `json:"height,omitempty"`
	Count          int                `json:"count"`
	Regions        []segment.Region   `json:"regions"`
	BoundaryPixels int                `json:"boundary_pixels"`
	Captured       *time.Time         `json:"captured,omitempty"`
	Error          string             `json:"error,omitempty"`
}

func (s *Server) handleSegmentImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a segmentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	seg, err := s.segment(ctx, a)
	if err != nil {
		return nil, err
	}

	r := seg.result
	out := &SegmentResult{
		Status:  r.Status,
		Count:   len(r.Regions),
		Regions: r.Regions,
	}
	if out.Regions == nil {
		out.Regions = []segment.Region{}
	}
	if r.Cause != nil {
		out.Error = r.Cause.Error()
		return out, nil
	}

	out.Set = seg.settings.Name
	out.Path = seg.settings.Path.String()
	out.Strategy = seg.settings.Strategy.String()
	out.Width = seg.settings.Image.ROI.Width
	out.Height = seg.settings.Image.ROI.Height
	if !r.Captured.IsZero() {
		captured := r.Captured
		out.Captured = &captured
	}
	if r.Labels != nil {
		out.BoundaryPixels = r.Labels.Histogram()[segment.LabelBoundary]
	}
	return out, nil
}

type segmentRenderArgs struct {
	segmentArgs
	Mode      string `json:"mode"`
	Seed      *int64 `json:"seed"`
	MarkColor string `json:"mark_color"`
}

func (s *Server) handleSegmentRender(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a segmentRenderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Mode == "" {
		a.Mode = "labels"
	}
	seed := int64(visualize.DefaultSeed)
	if a.Seed != nil {
		seed = *a.Seed
	}
	if a.MarkColor == "" {
		a.MarkColor = visualize.DefaultMarkColor
	}

	seg, err := s.segment(ctx, a.segmentArgs)
	if err != nil {
		return nil, err
	}
	if seg.result.Cause != nil {
		return nil, seg.result.Cause
	}
	labels := seg.result.Labels
	if labels == nil {
		return nil, fmt.Errorf("nothing to render: %s", seg.result.Status)
	}

	switch a.Mode {
	case "labels":
		colored, err := visualize.Colorize(labels, seed)
		if err != nil {
			return nil, err
		}
		return visualize.Encode(colored)
	case "boundaries":
		lines, err := visualize.Boundaries(labels)
		if err != nil {
			return nil, err
		}
		return visualize.Encode(lines)
	case "annotated":
		st := seg.settings
		crop, err := imaging.Preprocess(seg.frame.Image, imaging.PreprocessOptions{
			ExpectedWidth:  st.Image.Width,
			ExpectedHeight: st.Image.Height,
			ROI:            st.Image.ROI,
			Sharpen:        st.Sharpen,
		})
		if err != nil {
			return nil, err
		}
		annotated, err := visualize.Annotate(crop, labels, seg.result.Regions, a.MarkColor)
		if err != nil {
			return nil, err
		}
		return visualize.Encode(annotated)
	default:
		return nil, fmt.Errorf("unknown render mode: %s", a.Mode)
	}
}

// === Configuration Handlers ===

type describeParamsArgs struct {
	Params string `json:"params"`
}

// ParameterSet is one entry of the describe_params response.
type ParameterSet struct {
	Name     string               `json:"name"`
	Path     string               `json:"recognition_path"`
	Strategy string               `json:"strategy"`
	Backend  string               `json:"backend"`
	Settings recognition.Settings `json:"settings"`
}

func (s *Server) handleDescribeParams(args json.RawMessage) (interface{}, error) {
	var a describeParamsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	params, err := config.Load(a.Params)
	if err != nil {
		return nil, err
	}

	sets := make([]ParameterSet, 0, len(params.Names()))
	for _, name := range params.Names() {
		st, err := params.Settings(name)
		if err != nil {
			return nil, err
		}
		sets = append(sets, ParameterSet{
			Name:     name,
			Path:     st.Path.String(),
			Strategy: st.Strategy.String(),
			Backend:  st.Backend.String(),
			Settings: st,
		})
	}
	return map[string]interface{}{
		"source": params.Image.Source,
		"sets":   sets,
		"count":  len(sets),
	}, nil
}
