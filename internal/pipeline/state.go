package pipeline

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// State identifies the orchestrator's position in a run.
type State string

const (
	StateIdle          State = "idle"
	StateEngineLoading State = "engine-loading"
	StateDownloading   State = "downloading"
	StateNormalizing   State = "normalizing"
	StateConcatenating State = "concatenating"
	StatePresenting    State = "presenting"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

var titleCaser = cases.Title(language.English)

// Label renders the state for status lines.
func (s State) Label() string {
	switch s {
	case StateEngineLoading:
		return "Loading engine"
	case StateDownloading:
		return "Downloading clips"
	case StateConcatenating:
		return "Concatenating"
	default:
		return titleCaser.String(string(s))
	}
}

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
