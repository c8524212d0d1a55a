package segment

import (
	"fmt"
	"image"

	"github.com/ironsheep/piece-segmenter/internal/imaging"
)

// Strategy selects how the sure-foreground and sure-background masks are
// derived from a binary mask.
type Strategy int

const (
	// DistanceTransform opens the mask, extracts the peaks of its distance
	// transform as seeds and dilates the opened mask for the background.
	DistanceTransform Strategy = iota

	// ErosionDilation erodes the mask four times for the foreground and
	// dilates it four times for the background.
	ErosionDilation
)

// DefaultPeakCutoff is the rescaled distance above which a pixel is a seed.
const DefaultPeakCutoff = 100

const (
	openIterations       = 2
	seedDilations        = 1
	backgroundDilations  = 3
	erosionStrategySteps = 4
)

// BackgroundSentinel is the value SentinelMarkers writes for pixels that lie
// outside the sure background.
const BackgroundSentinel = 128

var strategyNames = map[Strategy]string{
	DistanceTransform: "distance",
	ErosionDilation:   "erosion",
}

// String returns the strategy name used in parameter files.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy maps a strategy name ("distance" or "erosion") to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Options tunes an Estimator.
type Options struct {
	// PeakCutoff is the strict threshold applied to the rescaled distance map
	// by the DistanceTransform strategy (0-255). Ignored by ErosionDilation.
	PeakCutoff int

	// Operators runs morphology and the distance transform. Nil selects
	// Native.
	Operators Operators
}

// DefaultOptions returns Options with PeakCutoff set to DefaultPeakCutoff.
func DefaultOptions() Options {
	return Options{PeakCutoff: DefaultPeakCutoff}
}

// Estimate is the output of an Estimator.
//
// SureForeground and SureBackground are binary masks (0 or 255) with the size
// of the input. SureForeground is not required to be a subset of
// SureBackground.
type Estimate struct {
	SureForeground *image.Gray
	SureBackground *image.Gray

	// Distance is the rescaled distance map the seeds were cut from. It is nil
	// for the ErosionDilation strategy.
	Distance *image.Gray
}

// Unknown returns SureBackground minus SureForeground, floored at 0.
// A pixel set in SureForeground is never unknown.
func (e Estimate) Unknown() *image.Gray {
	return imaging.SubtractGray(e.SureBackground, e.SureForeground)
}

// Estimator derives sure-foreground and sure-background masks from a binary
// mask. Implementations are stateless and safe for concurrent use.
type Estimator interface {
	Estimate(binary *image.Gray) (Estimate, error)
	Strategy() Strategy
}

// NewEstimator returns the Estimator for strategy.
//
// It fails with ErrUnknownStrategy for an unknown strategy and with
// ErrInvalidThreshold when opts.PeakCutoff is outside [0, 255].
func NewEstimator(strategy Strategy, opts Options) (Estimator, error) {
	ops := opts.Operators
	if ops == nil {
		ops = Native{}
	}
	switch strategy {
	case DistanceTransform:
		if opts.PeakCutoff < 0 || opts.PeakCutoff > 255 {
			return nil, fmt.Errorf("%w: peak cutoff %d outside [0,255]", ErrInvalidThreshold, opts.PeakCutoff)
		}
		return distanceEstimator{ops: ops, cutoff: opts.PeakCutoff}, nil
	case ErosionDilation:
		return erosionEstimator{ops: ops}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
}

type distanceEstimator struct {
	ops    Operators
	cutoff int
}

func (distanceEstimator) Strategy() Strategy { return DistanceTransform }

// Estimate opens the mask, thresholds its rescaled distance transform strictly
// above the cutoff and dilates the result once. The background is the opened
// mask dilated three times.
func (e distanceEstimator) Estimate(binary *image.Gray) (Estimate, error) {
	eroded, err := e.ops.Erode(binary, openIterations)
	if err != nil {
		return Estimate{}, err
	}
	opened, err := e.ops.Dilate(eroded, openIterations)
	if err != nil {
		return Estimate{}, err
	}
	raw, err := e.ops.EuclideanDistance(opened)
	if err != nil {
		return Estimate{}, err
	}
	dist := Rescale(raw)

	peaks, err := Threshold(dist, e.cutoff)
	if err != nil {
		return Estimate{}, err
	}
	fg, err := e.ops.Dilate(peaks, seedDilations)
	if err != nil {
		return Estimate{}, err
	}
	bg, err := e.ops.Dilate(opened, backgroundDilations)
	if err != nil {
		return Estimate{}, err
	}

	return Estimate{
		SureForeground: fg,
		SureBackground: bg,
		Distance:       dist,
	}, nil
}

type erosionEstimator struct {
	ops Operators
}

func (erosionEstimator) Strategy() Strategy { return ErosionDilation }

func (e erosionEstimator) Estimate(binary *image.Gray) (Estimate, error) {
	fg, err := e.ops.Erode(binary, erosionStrategySteps)
	if err != nil {
		return Estimate{}, err
	}
	bg, err := e.ops.Dilate(binary, erosionStrategySteps)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{SureForeground: fg, SureBackground: bg}, nil
}

// SentinelMarkers renders an Estimate as a single gray marker image for
// diagnostics: 255 for sure foreground, BackgroundSentinel for pixels outside
// the sure background and 0 for the unknown band in between.
//
// This is the inverted, re-thresholded background form of the erosion
// strategy. The engine itself always works with the binary masks.
func SentinelMarkers(e Estimate) *image.Gray {
	fg := imaging.CloneGray(e.SureForeground)
	bg := imaging.CloneGray(e.SureBackground)
	for i := range fg.Pix {
		switch {
		case fg.Pix[i] != 0:
			fg.Pix[i] = 255
		case bg.Pix[i] == 0:
			fg.Pix[i] = BackgroundSentinel
		}
	}
	return fg
}
