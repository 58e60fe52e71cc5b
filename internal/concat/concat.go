// Package concat joins normalized clips into a single deliverable using the
// engine's concat demuxer in stream-copy mode. Because every input has been
// normalized to one shared audio profile, the join itself never re-encodes.
package concat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stitch/internal/clip"
	"stitch/internal/engine"
	"stitch/internal/ledger"
	"stitch/internal/logging"
	"stitch/internal/names"
	"stitch/internal/services"
	"stitch/internal/store"
)

// Joiner assembles the concat manifest and runs the copy-mode join.
type Joiner struct {
	engine engine.Runner
	store  *store.Store
	ledger *ledger.Ledger
	scheme names.Scheme
	logger *slog.Logger
}

// New constructs a joiner.
func New(eng engine.Runner, st *store.Store, led *ledger.Ledger, scheme names.Scheme, logger *slog.Logger) *Joiner {
	return &Joiner{
		engine: eng,
		store:  st,
		ledger: led,
		scheme: scheme,
		logger: logging.NewComponentLogger(logger, "concat"),
	}
}

// Manifest renders the concat demuxer playlist for the given clips,
// preserving their order exactly. Clip names come from the run's naming
// scheme and never contain quotes or separators, so no escaping is needed.
func Manifest(clips []clip.Handle) string {
	var b strings.Builder
	for _, c := range clips {
		fmt.Fprintf(&b, "file '%s'\n", c.Name)
	}
	return b.String()
}

// Join writes the manifest next to the clips, tracks it for cleanup, and
// runs the stream-copy concatenation. The joined artifact is not tracked
// here: it still has to survive presentation, and the orchestrator tracks it
// once the exported copy has been verified.
func (j *Joiner) Join(ctx context.Context, clips []clip.Handle, total time.Duration, onProgress func(engine.ProgressUpdate)) (string, error) {
	if len(clips) == 0 {
		return "", services.Wrap(services.ErrValidation, "concat", "build manifest", "no clips to join", nil)
	}

	manifest := j.scheme.Manifest()
	j.ledger.Track(manifest)
	if err := j.store.Write(manifest, []byte(Manifest(clips))); err != nil {
		return "", services.Wrap(services.ErrValidation, "concat", "write manifest", manifest, err)
	}

	output := j.scheme.Output()
	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", j.store.Path(manifest),
		"-c", "copy",
		"-movflags", "+faststart",
		j.store.Path(output),
	}

	opts := []engine.RunOption{engine.WithTotalDuration(total)}
	if onProgress != nil {
		opts = append(opts, engine.WithProgress(onProgress))
	}

	logger := logging.WithContext(ctx, j.logger)
	logger.Debug("joining clips", logging.Int("count", len(clips)), logging.String("output", output))

	if err := j.engine.Run(ctx, args, opts...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "concat", "join clips",
			fmt.Sprintf("%d clips", len(clips)), err)
	}
	return output, nil
}
