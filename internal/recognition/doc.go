// Package recognition turns captured frames into segmented candidate regions.
//
// A Recognizer is built from Settings: the expected frame size and ROI, the
// recognition path that picks a channel (gray, red, green, blue, HSV, Lab or
// an HSV band mask), its threshold parameters, the estimation strategy and the
// region criteria. Each call runs the full engine on one frame and reports one
// of three statuses:
//
//   - RECOGNITION_SUCCESSFUL: at least one region passed the criteria
//   - RECOGNITION_UNSUCCESSFUL: no region found or none accepted
//   - RECOGNITION_INTERNAL_ERROR: the source could not supply a frame
//
// Configuration mistakes are returned as errors instead of statuses.
//
// Intermediate images go to an optional DiagnosticSink. Submitting never
// blocks the pipeline.
package recognition
