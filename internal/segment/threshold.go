package segment

import (
	"fmt"
	"image"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
)

// Threshold converts a single-channel image to a binary mask.
//
// The magnitude of thresholdLow is the cutoff and its sign picks the mode:
//   - thresholdLow >= 0 (binary): pixels strictly above the cutoff become 255,
//     all others 0
//   - thresholdLow < 0 (inverted binary): pixels strictly above the cutoff
//     become 0, all others 255
//
// A thresholdLow of zero is binary with cutoff 0. Values outside [-255, 255]
// fail with ErrInvalidThreshold.
func Threshold(ch *image.Gray, thresholdLow int) (*image.Gray, error) {
	if thresholdLow < -255 || thresholdLow > 255 {
		return nil, fmt.Errorf("%w: threshold %d outside [-255,255]", ErrInvalidThreshold, thresholdLow)
	}

	cutoff := thresholdLow
	var above, below uint8 = 255, 0
	if thresholdLow < 0 {
		cutoff = -thresholdLow
		above, below = 0, 255
	}

	dst := imaging.CloneGray(ch)
	for i, v := range dst.Pix {
		if int(v) > cutoff {
			dst.Pix[i] = above
		} else {
			dst.Pix[i] = below
		}
	}
	return dst, nil
}
