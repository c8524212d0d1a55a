package imaging

import "errors"

// Configuration errors. These describe caller mistakes and are never defaulted
// away; callers should compare with errors.Is.
var (
	// ErrDimensionMismatch is returned when an image does not have the size a
	// stage expects, or when two inputs that must align differ in size.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidROI is returned for an empty ROI or one that leaves the image.
	ErrInvalidROI = errors.New("invalid region of interest")

	// ErrInvalidThreshold is returned for threshold or median parameters outside
	// their documented ranges.
	ErrInvalidThreshold = errors.New("invalid threshold parameters")
)
