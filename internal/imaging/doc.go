// Package imaging provides the pixel-level stages that run before segmentation.
//
// This package implements the region-of-interest preprocessor, the fixed 3x3
// sharpening filter, the intensity normalizer, channel extraction for the
// recognition paths (gray, RGB, HSV, Lab) and the typed buffers shared with the
// segmentation engine. All operations work with standard Go image types and use
// a coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Buffers
//
// Single-channel 8-bit data (intensity channels and binary masks) is carried in
// *image.Gray. Masks are binary: 0 for "off" and 255 for "on". Values that do
// not fit 8 bits, such as distances, use FloatImage. Every function returns a
// new buffer with origin (0,0); inputs are never modified.
//
// Arithmetic on 8-bit samples goes through Saturate, AddSaturate and
// SubSaturate so that results always stay within [0, 255].
//
// # Thread Safety
//
// All functions are stateless and can be called concurrently on different
// images.
//
// # Error Handling
//
// Configuration mistakes are reported through wrapped sentinel errors:
//   - ErrDimensionMismatch: frame or mask sizes disagree
//   - ErrInvalidROI: empty ROI or ROI outside the frame
//   - ErrInvalidThreshold: median target or threshold out of range
package imaging
