// Package engine wraps the ffmpeg binary as the pipeline's media engine.
//
// The engine is stateful in two ways the rest of the system relies on: it is
// initialized lazily exactly once per process, and command execution is
// serialized with a mutex because all commands share one execution context
// and one artifact namespace. Progress events are parsed from ffmpeg's
// machine-readable progress stream and delivered on a side channel; they are
// advisory only.
package engine
