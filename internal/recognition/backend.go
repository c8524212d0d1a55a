package recognition

import (
	"errors"
	"fmt"

	"github.com/ironsheep/piece-segmenter/internal/opencv"
	"github.com/ironsheep/piece-segmenter/internal/segment"
)

// ErrUnknownBackend is returned for a backend name that does not exist.
var ErrUnknownBackend = errors.New("unknown backend")

// Backend selects the implementation of the morphology, distance transform
// and watershed stages.
type Backend int

const (
	// BackendNative runs every stage in pure Go.
	BackendNative Backend = iota

	// BackendOpenCV runs them through OpenCV. It is only available in
	// binaries built with the gocv tag.
	BackendOpenCV
)

var backendNames = map[Backend]string{
	BackendNative: "native",
	BackendOpenCV: "opencv",
}

func (b Backend) String() string {
	if name, ok := backendNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// ParseBackend maps "native" or "opencv" to a Backend. An empty name is
// BackendNative.
func ParseBackend(name string) (Backend, error) {
	if name == "" {
		return BackendNative, nil
	}
	for b, n := range backendNames {
		if n == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

func (b Backend) operators() (segment.Operators, error) {
	switch b {
	case BackendNative:
		return segment.Native{}, nil
	case BackendOpenCV:
		return opencv.New()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, b)
	}
}
