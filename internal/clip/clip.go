// Package clip defines the handle each pipeline stage passes forward: the
// clip's position in the input sequence plus its current artifact name.
// Handles are immutable; each transformation returns a new handle rather
// than mutating the old one.
package clip

import "fmt"

// Handle identifies one clip at a specific pipeline stage.
type Handle struct {
	Index int
	Name  string
}

// WithName returns a new handle for the same clip position pointing at a
// different artifact, superseding the receiver.
func (h Handle) WithName(name string) Handle {
	return Handle{Index: h.Index, Name: name}
}

// Label returns a short human-readable identifier for status output.
func (h Handle) Label() string {
	return fmt.Sprintf("clip %d", h.Index+1)
}
