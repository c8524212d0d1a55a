package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ROI is a region of interest in pixel coordinates.
//
// (X, Y) is the top-left corner (inclusive); the region spans Width columns and
// Height rows, so its exclusive bottom-right corner is (X+Width, Y+Height).
type ROI struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the ROI to an image.Rectangle.
func (r ROI) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Validate checks that the ROI is non-empty and lies within bounds.
//
// The returned error wraps ErrInvalidROI.
func (r ROI) Validate(bounds image.Rectangle) error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %dx%d must have positive width and height", ErrInvalidROI, r.Width, r.Height)
	}
	if !r.Rect().In(bounds) {
		return fmt.Errorf("%w: (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			ErrInvalidROI, r.X, r.Y, r.X+r.Width, r.Y+r.Height,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	return nil
}

// PreprocessOptions controls the region-of-interest preprocessor.
type PreprocessOptions struct {
	// ExpectedWidth and ExpectedHeight are the frame dimensions the ROI was
	// configured against.
	ExpectedWidth  int
	ExpectedHeight int

	// ROI is the rectangle to keep, in frame coordinates.
	ROI ROI

	// Sharpen applies the fixed 3x3 sharpening kernel after cropping.
	Sharpen bool
}

// Preprocess validates a captured frame and crops it to the configured ROI.
//
// Parameters:
//   - img: The captured frame. Its bounds need not start at (0, 0); the ROI is
//     interpreted relative to the frame's top-left corner.
//   - opts: Expected frame size, ROI and sharpening switch.
//
// Returns:
//   - *image.NRGBA: A new image of exactly ROI.Width x ROI.Height with origin
//     (0, 0). The input is never modified.
//   - error: Wraps ErrDimensionMismatch when the frame size differs from the
//     expected size, or ErrInvalidROI when the ROI is empty or out of bounds.
//
// # Sharpening
//
// When opts.Sharpen is set the crop is convolved with
//
//	 0 -1  0
//	-1  5 -1
//	 0 -1  0
//
// See Sharpen for border handling and rounding.
func Preprocess(img image.Image, opts PreprocessOptions) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if bounds.Dx() != opts.ExpectedWidth || bounds.Dy() != opts.ExpectedHeight {
		return nil, fmt.Errorf("%w: frame is %dx%d, expected %dx%d",
			ErrDimensionMismatch, bounds.Dx(), bounds.Dy(), opts.ExpectedWidth, opts.ExpectedHeight)
	}

	local := image.Rect(0, 0, bounds.Dx(), bounds.Dy())
	if err := opts.ROI.Validate(local); err != nil {
		return nil, err
	}

	cropped := imaging.Crop(img, opts.ROI.Rect().Add(bounds.Min))
	if opts.Sharpen {
		cropped = Sharpen(cropped)
	}
	return cropped, nil
}
