package imaging

import (
	"fmt"
	"image"
)

// GrayParams holds the per-channel parameters used by the normalizer and the
// threshold stage.
type GrayParams struct {
	// MedianTarget is the value the channel median is shifted to (0-255).
	MedianTarget int `json:"median_target"`

	// ThresholdLow selects the threshold: its magnitude is the cutoff and its
	// sign picks binary (>= 0) or inverted-binary (< 0) thresholding.
	ThresholdLow int `json:"threshold_low"`
}

// Validate checks MedianTarget is in [0, 255] and |ThresholdLow| <= 255.
func (p GrayParams) Validate() error {
	if p.MedianTarget < 0 || p.MedianTarget > 255 {
		return fmt.Errorf("%w: median target %d outside [0,255]", ErrInvalidThreshold, p.MedianTarget)
	}
	if p.ThresholdLow < -255 || p.ThresholdLow > 255 {
		return fmt.Errorf("%w: threshold %d outside [-255,255]", ErrInvalidThreshold, p.ThresholdLow)
	}
	return nil
}

// Median returns the exact median of all samples in img.
//
// Samples are ordered with a 256-bucket counting sort. For an even pixel count
// the result is the average of the two central values, truncated toward zero.
// An empty image has median 0.
func Median(img *image.Gray) int {
	var hist [256]int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y) : img.PixOffset(b.Min.X, y)+b.Dx()]
		for _, v := range row {
			hist[v]++
		}
	}

	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return nthValue(&hist, n/2)
	}
	return (nthValue(&hist, n/2-1) + nthValue(&hist, n/2)) / 2
}

// nthValue returns the k-th smallest sample (0-based) described by hist.
func nthValue(hist *[256]int, k int) int {
	seen := 0
	for v, count := range hist {
		seen += count
		if seen > k {
			return v
		}
	}
	return 255
}

// Normalize shifts every sample so that the channel median becomes target.
//
// The adjustment target - Median(img) is added to every pixel with saturation
// to [0, 255]. A new image with origin (0, 0) is returned; img is not modified.
//
// Running Normalize on its own output with the same target changes pixels by at
// most 1 in practice; the residual comes from truncating even-count medians.
func Normalize(img *image.Gray, target int) (*image.Gray, error) {
	if target < 0 || target > 255 {
		return nil, fmt.Errorf("%w: median target %d outside [0,255]", ErrInvalidThreshold, target)
	}

	adjustment := target - Median(img)
	out := CloneGray(img)
	if adjustment == 0 {
		return out, nil
	}
	for i, v := range out.Pix {
		out.Pix[i] = AddSaturate(v, adjustment)
	}
	return out, nil
}
