// Package opencv runs the segmentation primitives through OpenCV.
//
// Operators mirrors the pure Go stages of package segment (3x3 erosion and
// dilation, the Euclidean distance transform and the marker watershed) and
// can replace segment.Native in a recognizer. OpenCV's watershed uses 8-bit
// color guides and its own flood order, so label maps agree on regions but
// not necessarily on every boundary pixel.
//
// The implementation needs cgo and an OpenCV installation and is only built
// with the gocv tag. Without it New returns ErrUnavailable:
//
//	go build -tags gocv ./cmd/segmenter
//	go test -tags gocv ./internal/opencv
package opencv

import "errors"

// ErrUnavailable is returned by New when the binary was built without OpenCV.
var ErrUnavailable = errors.New("opencv backend not built in (rebuild with -tags gocv)")
