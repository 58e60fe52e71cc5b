// Package names derives every artifact name used during a pipeline run from
// the (run id, stage, clip index) triple, so names are deterministic,
// collision-free across stages, and safe to regenerate on a rerun.
package names

import (
	"fmt"
	"path"
	"strings"
)

// Scheme generates artifact names for a single pipeline run.
type Scheme struct {
	RunID string
}

// NewScheme builds a scheme for the provided run identifier.
func NewScheme(runID string) Scheme {
	return Scheme{RunID: strings.TrimSpace(runID)}
}

// Source names the raw downloaded artifact for one clip. The extension from
// the original address is preserved when it looks like a media extension so
// ffmpeg can sniff the container from the name.
func (s Scheme) Source(index int, sourceAddr string) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(path.Base(sourceAddr), "?", 2)[0]))
	switch ext {
	case ".mp4", ".mov", ".mkv", ".webm", ".avi", ".ts", ".m4v":
	default:
		ext = ".mp4"
	}
	return fmt.Sprintf("clip_%s_%03d%s", s.RunID, index, ext)
}

// ProbeScratch names the disposable artifact the audio probe extracts into.
// NUT is used because it accepts a single stream-copied frame of any codec.
func (s Scheme) ProbeScratch(index int) string {
	return fmt.Sprintf("probe_%s_%03d.nut", s.RunID, index)
}

// Normalized names the per-clip output of the audio normalizer.
func (s Scheme) Normalized(index int) string {
	return fmt.Sprintf("norm_%s_%03d.mp4", s.RunID, index)
}

// Manifest names the concat demuxer playlist.
func (s Scheme) Manifest() string {
	return fmt.Sprintf("concat_%s.txt", s.RunID)
}

// Output names the stitched deliverable inside the workspace.
func (s Scheme) Output() string {
	return fmt.Sprintf("stitched_%s.mp4", s.RunID)
}
