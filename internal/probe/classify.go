package probe

import "strings"

// Verdict classifies an engine failure during probing.
type Verdict int

const (
	// VerdictNoAudio means the failure is the engine's way of saying the
	// clip has no usable audio stream. Expected, not an error.
	VerdictNoAudio Verdict = iota
	// VerdictUnknown means the failure message matched nothing we know.
	// Policy: treated as no audio, but logged so new messages surface.
	VerdictUnknown
)

// noAudioMarkers is the enumerated set of engine messages that mean "this
// clip carries no audio stream". Matching is case-insensitive substring
// matching over the retained stderr tail.
var noAudioMarkers = []string{
	"matches no streams",
	"does not contain any stream",
	"output file is empty",
	"stream specifier ':a' in filtergraph",
}

// Classify maps an engine failure message to a probe verdict.
func Classify(output string) Verdict {
	lowered := strings.ToLower(output)
	for _, marker := range noAudioMarkers {
		if strings.Contains(lowered, marker) {
			return VerdictNoAudio
		}
	}
	return VerdictUnknown
}
