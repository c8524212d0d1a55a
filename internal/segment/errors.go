package segment

import (
	"errors"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
)

var (
	// ErrDimensionMismatch is returned when two inputs that must align differ
	// in size. It is the same value as imaging.ErrDimensionMismatch.
	ErrDimensionMismatch = imaging.ErrDimensionMismatch

	// ErrInvalidThreshold is returned for a threshold or peak cutoff outside
	// its range. It is the same value as imaging.ErrInvalidThreshold.
	ErrInvalidThreshold = imaging.ErrInvalidThreshold

	// ErrUnknownStrategy is returned by NewEstimator and ParseStrategy for a
	// strategy that does not exist.
	ErrUnknownStrategy = errors.New("unknown estimation strategy")

	// ErrInvalidMarker is returned by Watershed when the input label map
	// contains a negative label.
	ErrInvalidMarker = errors.New("invalid marker label")

	// ErrNoRegions is returned by BuildMarkers when the sure-foreground mask has
	// no connected components. It describes an empty scene, not a mistake.
	ErrNoRegions = errors.New("no foreground regions found")
)
