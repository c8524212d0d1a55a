package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Video is a Source that grabs one frame from a video file or stream with
// ffmpeg.
//
// Each call decodes the frame at Offset from the start of the input. The
// ffmpeg binary must be on PATH.
type Video struct {
	Path   string
	Offset time.Duration
	Log    zerolog.Logger
}

// Frame runs ffmpeg to extract a single PNG frame and decodes it.
//
// The ffmpeg process is killed when ctx is cancelled. Errors wrap
// ErrUnavailable. The capture time is the moment the frame was decoded.
func (v *Video) Frame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var out, stderr bytes.Buffer
	cmd := ffmpeg.Input(v.Path, ffmpeg.KwArgs{"ss": formatSeconds(v.Offset)}).
		Output("pipe:1", ffmpeg.KwArgs{
			"format":  "image2pipe",
			"vcodec":  "png",
			"vframes": 1,
		}).
		WithOutput(&out).
		WithErrorOutput(&stderr).
		Silent(true)
	cmd.Context = ctx

	v.Log.Debug().Str("path", v.Path).Dur("offset", v.Offset).Msg("extracting frame")
	if err := cmd.Run(); err != nil {
		v.Log.Debug().Str("stderr", lastLine(stderr.Bytes())).Msg("ffmpeg failed")
		return Frame{}, fmt.Errorf("%w: ffmpeg %s: %v", ErrUnavailable, v.Path, err)
	}

	img, err := decodeFrame(&out)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, v.Path, err)
	}
	return Frame{Image: img, Captured: time.Now()}, nil
}

// decodeFrame decodes the single image ffmpeg wrote to r.
func decodeFrame(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("no frame at requested offset")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}

// formatSeconds renders d as fractional seconds for ffmpeg's -ss option.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// lastLine returns the last non-empty line of ffmpeg's stderr.
func lastLine(b []byte) string {
	lines := bytes.Split(bytes.TrimSpace(b), []byte("\n"))
	return string(lines[len(lines)-1])
}

// VideoInfo describes the first video stream of an input.
type VideoInfo struct {
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Duration  time.Duration `json:"duration"`
	FrameRate string        `json:"frame_rate"`
}

// ProbeVideo runs ffprobe on path and returns the first video stream's size,
// duration and average frame rate.
func ProbeVideo(path string) (*VideoInfo, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe %s: %v", ErrUnavailable, path, err)
	}
	return parseProbe(raw)
}

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// parseProbe extracts VideoInfo from ffprobe's JSON output. The stream
// duration is preferred; the container duration is the fallback.
func parseProbe(raw string) (*VideoInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	for _, s := range probe.Streams {
		if s.CodecType != "video" {
			continue
		}
		info := &VideoInfo{Width: s.Width, Height: s.Height, FrameRate: s.AvgFrameRate}
		for _, d := range []string{s.Duration, probe.Format.Duration} {
			if secs, err := strconv.ParseFloat(d, 64); err == nil {
				info.Duration = time.Duration(secs * float64(time.Second))
				break
			}
		}
		return info, nil
	}
	return nil, fmt.Errorf("no video stream found")
}
