// Package segment implements the marker-based watershed engine that splits
// touching objects in a single frame into labeled regions.
//
// A binary mask produced by Threshold is handed to an Estimator, which derives
// a sure-foreground and a sure-background mask. BuildMarkers turns the
// foreground into numbered seeds and marks the band between the two masks as
// unknown. Watershed then floods the unknown band from the seeds, following
// the guide image, and marks pixels where two regions meet as boundaries.
// Regions summarizes the result.
//
// # Label Values
//
//   - -1: boundary (Watershed output only)
//   - 0: unknown (BuildMarkers output only)
//   - 1: background
//   - 2..N+1: the N regions, in discovery order
//
// # Strategies
//
// DistanceTransform opens the mask twice, thresholds its rescaled Euclidean
// distance transform at a peak cutoff and dilates the peaks once; the
// background is the opened mask dilated three times. ErosionDilation erodes
// the mask four times for the foreground and dilates it four times for the
// background. Both return binary masks.
//
// # Operators
//
// Estimators run their morphology and distance transform through Operators.
// Native uses the functions of this package; package opencv supplies an
// OpenCV implementation.
//
// # Structuring Element
//
// Erosion and dilation use a 3x3 square. Neighbors that fall outside the image
// are ignored.
//
// # Thread Safety
//
// Every function allocates its own output and never modifies its inputs.
// Estimators are stateless. Independent frames can be processed concurrently.
//
// # Error Handling
//
// Configuration mistakes are wrapped sentinel errors (ErrDimensionMismatch,
// ErrInvalidThreshold, ErrUnknownStrategy, ErrInvalidMarker). An empty scene is
// reported as ErrNoRegions, which callers treat as a normal outcome.
package segment
