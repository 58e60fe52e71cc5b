// Package probe answers one question per clip: does it carry a usable audio
// stream? It extracts a single stream-copied audio frame into a disposable
// scratch artifact and inspects the result, so the check is cheap and never
// touches the clip itself.
package probe

import (
	"context"
	"log/slog"

	"stitch/internal/clip"
	"stitch/internal/engine"
	"stitch/internal/ledger"
	"stitch/internal/logging"
	"stitch/internal/names"
	"stitch/internal/store"
)

// Outcome reports the audio classification for one clip. It is computed
// fresh per clip and consumed immediately by the normalizer.
type Outcome struct {
	HasAudio bool
}

// Prober checks clips for audio presence.
type Prober struct {
	engine engine.Runner
	store  *store.Store
	ledger *ledger.Ledger
	scheme names.Scheme
	logger *slog.Logger
}

// New constructs a prober.
func New(eng engine.Runner, st *store.Store, led *ledger.Ledger, scheme names.Scheme, logger *slog.Logger) *Prober {
	return &Prober{
		engine: eng,
		store:  st,
		ledger: led,
		scheme: scheme,
		logger: logging.NewComponentLogger(logger, "probe"),
	}
}

// Probe extracts one audio frame from the clip's first audio stream via
// stream copy. The clip has audio iff the scratch artifact comes out
// non-empty. Engine failures are classified rather than escalated: a
// no-audio failure is the expected negative result, and anything
// unrecognized is logged and conservatively treated as no audio so the
// pipeline synthesizes silence instead of aborting. The scratch artifact is
// deleted before returning regardless of outcome.
func (p *Prober) Probe(ctx context.Context, c clip.Handle) (Outcome, error) {
	scratch := p.scheme.ProbeScratch(c.Index)
	p.ledger.Track(scratch)
	defer func() {
		_ = p.store.DeleteIgnoreMissing(scratch)
	}()

	args := []string{
		"-i", p.store.Path(c.Name),
		"-map", "0:a:0",
		"-c", "copy",
		"-frames:a", "1",
		"-f", "nut",
		p.store.Path(scratch),
	}

	logger := logging.WithContext(ctx, p.logger)
	if err := p.engine.Run(ctx, args); err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		output := engine.Output(err)
		switch Classify(output) {
		case VerdictNoAudio:
			logger.Debug("no audio stream detected", logging.Int("clip", c.Index))
		default:
			logger.Warn("unrecognized probe failure, assuming no audio",
				logging.Int("clip", c.Index),
				logging.Error(err),
			)
		}
		return Outcome{HasAudio: false}, nil
	}

	size, err := p.store.Size(scratch)
	if err != nil || size == 0 {
		logger.Debug("probe produced empty scratch artifact", logging.Int("clip", c.Index))
		return Outcome{HasAudio: false}, nil
	}
	return Outcome{HasAudio: true}, nil
}
