//go:build !gocv

package opencv

import "github.com/ironsheep/piece-segmenter/internal/segment"

// New reports ErrUnavailable: this binary was built without the gocv tag.
func New() (segment.Operators, error) {
	return nil, ErrUnavailable
}
