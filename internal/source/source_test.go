package source

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"
	"time"
)

func TestFile_Frame(t *testing.T) {
	path := createTestImage(t, t.TempDir(), 40, 30, color.RGBA{10, 20, 30, 255})
	src := NewFile(path, nil)

	frame, err := src.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if frame.Image.Bounds().Dx() != 40 || frame.Image.Bounds().Dy() != 30 {
		t.Errorf("dimensions: got %v", frame.Image.Bounds())
	}
	if frame.Captured.IsZero() {
		t.Error("capture time should be the file modification time")
	}
}

func TestFile_Frame_Missing(t *testing.T) {
	src := NewFile("/nonexistent/frame.png", NewImageCache())
	if _, err := src.Frame(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestFile_Frame_Cancelled(t *testing.T) {
	path := createTestImage(t, t.TempDir(), 4, 4, color.White)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFile(path, nil).Frame(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestVideo_Frame_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := &Video{Path: "clip.mp4", Offset: time.Second}
	if _, err := v.Frame(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestDecodeFrame_Empty(t *testing.T) {
	if _, err := decodeFrame(bytes.NewReader(nil)); err == nil {
		t.Error("decoding an empty stream should fail")
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.000"},
		{1500 * time.Millisecond, "1.500"},
		{2 * time.Minute, "120.000"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.d); got != tt.want {
			t.Errorf("formatSeconds(%v): got %s, want %s", tt.d, got, tt.want)
		}
	}
}

func TestLastLine(t *testing.T) {
	if got := lastLine([]byte("a\nb\nInvalid data found\n\n")); got != "Invalid data found" {
		t.Errorf("got %q", got)
	}
	if got := lastLine(nil); got != "" {
		t.Errorf("empty input: got %q", got)
	}
}

func TestParseProbe(t *testing.T) {
	raw := `{
		"streams": [
			{"codec_type": "audio", "duration": "9.0"},
			{"codec_type": "video", "width": 640, "height": 480, "avg_frame_rate": "30/1", "duration": "12.500"}
		],
		"format": {"duration": "12.6"}
	}`

	info, err := parseProbe(raw)
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if info.Width != 640 || info.Height != 480 || info.FrameRate != "30/1" {
		t.Errorf("got %+v", info)
	}
	if info.Duration != 12500*time.Millisecond {
		t.Errorf("Duration: got %v, want 12.5s", info.Duration)
	}
}

func TestParseProbe_ContainerDuration(t *testing.T) {
	raw := `{"streams": [{"codec_type": "video", "width": 8, "height": 8}], "format": {"duration": "3"}}`

	info, err := parseProbe(raw)
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if info.Duration != 3*time.Second {
		t.Errorf("Duration: got %v, want 3s", info.Duration)
	}
}

func TestParseProbe_NoVideo(t *testing.T) {
	if _, err := parseProbe(`{"streams": [{"codec_type": "audio"}]}`); err == nil {
		t.Error("expected an error without a video stream")
	}
	if _, err := parseProbe(`not json`); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}
