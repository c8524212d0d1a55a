// Package server implements the MCP (Model Context Protocol) server for the
// piece segmenter.
//
// This package provides a JSON-RPC 2.0 server that exposes the segmentation
// pipeline through the MCP protocol, so that an MCP client can segment frames
// and inspect the result without the CLI.
//
// # Protocol
//
// The server reads newline-delimited JSON-RPC 2.0 requests and writes one
// response per line:
//   - Input: JSON-RPC requests (stdin when started by the CLI)
//   - Output: JSON-RPC responses (stdout)
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Input Information:
//   - image_load: Load image and get metadata
//   - video_probe: Frame size, duration and rate of a video
//
// Segmentation:
//   - segment_image: Status and accepted regions of one frame
//   - segment_render: Label colors, boundaries or annotated ROI as PNG
//
// Configuration:
//   - describe_params: Parameter sets of an XML file
//
// # Status Versus Errors
//
// A frame that cannot be read is not a tool failure: segment_image answers
// with status RECOGNITION_INTERNAL_ERROR and the cause in "error". An empty
// scene answers RECOGNITION_UNSUCCESSFUL. Configuration mistakes (bad
// parameter file, ROI outside the frame, unknown strategy) are returned as
// JSON-RPC errors with code -32000.
//
// # Image Caching
//
// Still images are cached by path for the lifetime of the server. Video
// frames are extracted on every call.
//
// # Usage
//
//	srv := server.New(log, server.WithParameters(params))
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal().Err(err).Msg("server error")
//	}
package server
