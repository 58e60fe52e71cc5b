// Package ledger tracks every intermediate artifact created during a pipeline
// run and drives best-effort cleanup once the run finishes, successfully or
// not. The deliverable is never tracked; everything else is.
package ledger

import (
	"log/slog"
	"sync"

	"stitch/internal/logging"
)

// Deleter is the slice of the artifact store the ledger needs for draining.
type Deleter interface {
	DeleteIgnoreMissing(name string) error
}

// Ledger accumulates artifact names for one pipeline run.
type Ledger struct {
	mu      sync.Mutex
	names   []string
	seen    map[string]struct{}
	drained bool
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// Track records an artifact name for later cleanup. Duplicate names are
// collapsed; tracking after a drain re-arms the ledger for the next drain.
func (l *Ledger) Track(name string) {
	if name == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[name]; ok {
		return
	}
	l.seen[name] = struct{}{}
	l.names = append(l.names, name)
}

// Names returns a copy of the tracked names in tracking order.
func (l *Ledger) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// DrainAll deletes every tracked artifact, ignoring files that are already
// gone and logging (never propagating) unexpected deletion errors. Draining
// an empty or already-drained ledger is a no-op. Cleanup failures must never
// mask the primary error of a failed run, so this function returns nothing.
func (l *Ledger) DrainAll(store Deleter, logger *slog.Logger) {
	l.mu.Lock()
	if l.drained && len(l.names) == 0 {
		l.mu.Unlock()
		return
	}
	names := l.names
	l.names = nil
	l.seen = make(map[string]struct{})
	l.drained = true
	l.mu.Unlock()

	if logger == nil {
		logger = logging.NewNop()
	}
	for _, name := range names {
		if err := store.DeleteIgnoreMissing(name); err != nil {
			logger.Debug("artifact cleanup failed", logging.String("artifact", name), logging.Error(err))
		}
	}
	if len(names) > 0 {
		logger.Debug("artifact ledger drained", logging.Int("artifacts", len(names)))
	}
}
