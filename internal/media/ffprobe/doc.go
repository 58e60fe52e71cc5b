// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
//
// Helper methods on Result cover the two questions stitch asks: does a clip
// carry audio, and how long is it.
package ffprobe
