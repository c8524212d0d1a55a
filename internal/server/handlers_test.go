package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// createTestImageFile writes a black PNG with white rectangles and returns its
// path.
func createTestImageFile(t *testing.T, width, height int, rects ...image.Rectangle) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Black)
			for _, r := range rects {
				if (image.Point{X: x, Y: y}).In(r) {
					img.Set(x, y, color.White)
				}
			}
		}
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func writeParams(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.xml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// callTool runs a tools/call request and returns the decoded text content.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) (map[string]interface{}, *MCPError) {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	text := content[0]["text"].(string)

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("failed to decode tool result %q: %v", text, err)
	}
	return decoded, nil
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 100, 80)

	got, mcpErr := callTool(t, s, "image_load", map[string]interface{}{"path": path})
	if mcpErr != nil {
		t.Fatalf("Unexpected error: %+v", mcpErr)
	}
	if got["width"] != float64(100) || got["height"] != float64(80) || got["format"] != "png" {
		t.Errorf("unexpected info %v", got)
	}
}

func TestHandleToolsCall_SegmentImage(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 60, 30, image.Rect(5, 5, 25, 25), image.Rect(35, 5, 55, 25))

	got, mcpErr := callTool(t, s, "segment_image", map[string]interface{}{"path": path})
	if mcpErr != nil {
		t.Fatalf("Unexpected error: %+v", mcpErr)
	}

	if got["status"] != "RECOGNITION_SUCCESSFUL" {
		t.Errorf("status: got %v", got["status"])
	}
	if got["count"] != float64(2) {
		t.Errorf("count: got %v, want 2", got["count"])
	}
	if got["set"] != "gray" || got["strategy"] != "distance" {
		t.Errorf("set/strategy: got %v/%v", got["set"], got["strategy"])
	}
	if got["width"] != float64(60) || got["height"] != float64(30) {
		t.Errorf("size: got %vx%v", got["width"], got["height"])
	}
	regions := got["regions"].([]interface{})
	if len(regions) != 2 {
		t.Fatalf("regions: got %d", len(regions))
	}
}

func TestHandleToolsCall_SegmentImageEmptyScene(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 40, 40)

	got, mcpErr := callTool(t, s, "segment_image", map[string]interface{}{"path": path, "strategy": "erosion"})
	if mcpErr != nil {
		t.Fatalf("Unexpected error: %+v", mcpErr)
	}
	if got["status"] != "RECOGNITION_UNSUCCESSFUL" {
		t.Errorf("status: got %v", got["status"])
	}
	if got["count"] != float64(0) {
		t.Errorf("count: got %v", got["count"])
	}
}

func TestHandleToolsCall_SegmentImageMissingFile(t *testing.T) {
	s := newTestServer()

	got, mcpErr := callTool(t, s, "segment_image", map[string]interface{}{
		"path": filepath.Join(t.TempDir(), "missing.png"),
	})
	if mcpErr != nil {
		t.Fatalf("missing frame should not be a tool error: %+v", mcpErr)
	}
	if got["status"] != "RECOGNITION_INTERNAL_ERROR" {
		t.Errorf("status: got %v", got["status"])
	}
	if msg, _ := got["error"].(string); !strings.Contains(msg, "frame unavailable") {
		t.Errorf("error: got %q", msg)
	}
}

func TestHandleToolsCall_SegmentImageConfigErrors(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 40, 40, image.Rect(10, 10, 30, 30))
	wrongSize := writeParams(t, `<parameters>
  <image width="640" height="480"><roi width="100" height="100"/></image>
  <gray name="gray" medianTarget="128" thresholdLow="160"/>
</parameters>`)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"no path", map[string]interface{}{}},
		{"bad strategy", map[string]interface{}{"path": path, "strategy": "magic"}},
		{"bad backend", map[string]interface{}{"path": path, "backend": "cuda"}},
		{"bad cutoff", map[string]interface{}{"path": path, "peak_cutoff": 300}},
		{"unknown set", map[string]interface{}{"path": path, "set": "blue"}},
		{"frame size", map[string]interface{}{"path": path, "params": wrongSize}},
		{"missing params", map[string]interface{}{"path": path, "params": "/nonexistent/params.xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mcpErr := callTool(t, s, "segment_image", tt.args)
			if mcpErr == nil {
				t.Fatal("expected tool error")
			}
			if mcpErr.Code != -32000 {
				t.Errorf("code: got %d, want -32000", mcpErr.Code)
			}
		})
	}
}

func TestHandleToolsCall_SegmentRender(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 60, 30, image.Rect(5, 5, 25, 25), image.Rect(35, 5, 55, 25))

	for _, mode := range []string{"labels", "boundaries", "annotated"} {
		t.Run(mode, func(t *testing.T) {
			got, mcpErr := callTool(t, s, "segment_render", map[string]interface{}{"path": path, "mode": mode})
			if mcpErr != nil {
				t.Fatalf("Unexpected error: %+v", mcpErr)
			}
			if got["width"] != float64(60) || got["height"] != float64(30) {
				t.Errorf("size: got %vx%v", got["width"], got["height"])
			}
			if got["mime_type"] != "image/png" {
				t.Errorf("mime_type: got %v", got["mime_type"])
			}

			data, err := base64.StdEncoding.DecodeString(got["image_base64"].(string))
			if err != nil {
				t.Fatalf("invalid base64: %v", err)
			}
			img, err := png.Decode(strings.NewReader(string(data)))
			if err != nil {
				t.Fatalf("invalid png: %v", err)
			}
			if img.Bounds().Dx() != 60 {
				t.Errorf("decoded width %d", img.Bounds().Dx())
			}
		})
	}

	if _, mcpErr := callTool(t, s, "segment_render", map[string]interface{}{"path": path, "mode": "sketch"}); mcpErr == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestHandleToolsCall_SegmentRenderEmptyScene(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 40, 40)

	if _, mcpErr := callTool(t, s, "segment_render", map[string]interface{}{"path": path}); mcpErr == nil {
		t.Error("expected error when there is no label map")
	}
}

func TestHandleToolsCall_DescribeParams(t *testing.T) {
	s := newTestServer()
	params := writeParams(t, `<parameters>
  <image source="cam1" width="64" height="48"><roi width="64" height="48"/></image>
  <segmentation strategy="erosion"/>
  <gray name="red" medianTarget="100" thresholdLow="-128"/>
  <hsv name="green" hueLow="40" hueHigh="80"/>
</parameters>`)

	got, mcpErr := callTool(t, s, "describe_params", map[string]interface{}{"params": params})
	if mcpErr != nil {
		t.Fatalf("Unexpected error: %+v", mcpErr)
	}
	if got["source"] != "cam1" || got["count"] != float64(2) {
		t.Errorf("unexpected result %v", got)
	}

	sets := got["sets"].([]interface{})
	first := sets[0].(map[string]interface{})
	if first["name"] != "green" || first["recognition_path"] != "hsv-mask" || first["strategy"] != "erosion" || first["backend"] != "native" {
		t.Errorf("first set: %v", first)
	}
	second := sets[1].(map[string]interface{})
	if second["name"] != "red" || second["recognition_path"] != "red" {
		t.Errorf("second set: %v", second)
	}
}

func TestHandleToolsCall_SegmentWithServerParameters(t *testing.T) {
	path := createTestImageFile(t, 60, 30, image.Rect(5, 5, 25, 25), image.Rect(35, 5, 55, 25))
	paramsPath := writeParams(t, `<parameters>
  <image width="60" height="30"><roi x="30" y="0" width="30" height="30"/></image>
  <gray name="gray" medianTarget="0" thresholdLow="128"/>
</parameters>`)

	sink := &countingSink{}
	s := newTestServer()
	s.params = mustLoad(t, paramsPath)
	s.sink = sink

	got, mcpErr := callTool(t, s, "segment_image", map[string]interface{}{"path": path})
	if mcpErr != nil {
		t.Fatalf("Unexpected error: %+v", mcpErr)
	}
	if got["count"] != float64(1) {
		t.Errorf("count: got %v, want 1 inside the ROI", got["count"])
	}
	if sink.n == 0 {
		t.Error("expected diagnostic images")
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer()
	_, mcpErr := callTool(t, s, "image_ocr_full", map[string]interface{}{})
	if mcpErr == nil || mcpErr.Code != -32000 {
		t.Errorf("expected -32000 error, got %+v", mcpErr)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`[1,2]`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected -32602, got %+v", resp.Error)
	}
}
