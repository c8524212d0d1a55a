// Package visualize renders label maps for diagnostics.
//
// Colorize paints every region in a color derived deterministically from its
// label, Boundaries extracts the watershed lines as a mask and Annotate draws
// boundaries, centroids and label numbers over the analyzed image. Encode
// packs any rendering as base64 PNG for transport.
//
// Nothing here feeds back into segmentation; the functions only read their
// inputs.
package visualize
