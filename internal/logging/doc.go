// Package logging assembles structured slog loggers and formatting helpers
// used across stitch components.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so stage code automatically tags log
// lines with run ids, stages, and clip indexes. The package also provides a
// no-op logger for tests and a progress sampler that keeps engine progress
// from flooding output.
package logging
