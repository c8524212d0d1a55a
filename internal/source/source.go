// Package source supplies frames to the recognizer.
//
// A Source returns one frame per call together with its capture time. File
// decodes still images through a shared ImageCache; Video grabs a single frame
// at a fixed offset with ffmpeg. Any failure to produce a frame wraps
// ErrUnavailable so callers can treat it as a missing input rather than a
// configuration mistake.
package source

import (
	"context"
	"errors"
	"image"
	"time"
)

// ErrUnavailable is wrapped by every error a Source returns.
var ErrUnavailable = errors.New("frame unavailable")

// Frame is a captured image and the time it was taken.
type Frame struct {
	Image    image.Image
	Captured time.Time
}

// Source produces frames.
type Source interface {
	Frame(ctx context.Context) (Frame, error)
}
