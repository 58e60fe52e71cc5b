package pipeline

import "sync"

// StatusSink receives human-readable status lines as the run advances. One
// line per state transition plus sampled progress lines during the engine
// heavy stages. Sinks must tolerate being called from the engine's progress
// goroutine.
type StatusSink interface {
	Update(state State, message string)
}

// StatusFunc adapts a function to the StatusSink interface.
type StatusFunc func(state State, message string)

// Update implements StatusSink.
func (f StatusFunc) Update(state State, message string) {
	if f != nil {
		f(state, message)
	}
}

// StatusRecorder is a StatusSink that remembers everything it saw. Used by
// tests and by the status command's last-line display.
type StatusRecorder struct {
	mu       sync.Mutex
	messages []string
	states   []State
}

// Update implements StatusSink.
func (r *StatusRecorder) Update(state State, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	r.messages = append(r.messages, message)
}

// Messages returns every recorded status line in order.
func (r *StatusRecorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

// States returns every recorded state in order.
func (r *StatusRecorder) States() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.states))
	copy(out, r.states)
	return out
}

// Last returns the most recent state and message.
func (r *StatusRecorder) Last() (State, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return StateIdle, ""
	}
	return r.states[len(r.states)-1], r.messages[len(r.messages)-1]
}
