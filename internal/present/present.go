// Package present moves the finished deliverable out of the workspace and
// reads back its final duration. Presentation is the last stage that can
// fail a run: an unreadable deliverable is treated as a broken one.
package present

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"stitch/internal/fileutil"
	"stitch/internal/logging"
	"stitch/internal/media/ffprobe"
	"stitch/internal/services"
	"stitch/internal/store"
)

// Inspector reads container metadata from a media file.
type Inspector func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Result describes the presented deliverable.
type Result struct {
	Path     string
	Duration time.Duration
}

// Presenter exports deliverables to the output directory.
type Presenter struct {
	store         *store.Store
	outputDir     string
	ffprobeBinary string
	inspect       Inspector
	logger        *slog.Logger
}

// Option configures a presenter.
type Option func(*Presenter)

// WithInspector overrides the metadata reader. Tests use this to avoid
// spawning a real ffprobe.
func WithInspector(fn Inspector) Option {
	return func(p *Presenter) {
		if fn != nil {
			p.inspect = fn
		}
	}
}

// New constructs a presenter.
func New(st *store.Store, outputDir, ffprobeBinary string, logger *slog.Logger, opts ...Option) *Presenter {
	p := &Presenter{
		store:         st,
		outputDir:     outputDir,
		ffprobeBinary: ffprobeBinary,
		inspect:       ffprobe.Inspect,
		logger:        logging.NewComponentLogger(logger, "present"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Present copies the named workspace artifact into the output directory with
// checksum verification, then reads the container duration back from the
// exported copy. The workspace original is untouched here; the caller drains
// it once the export is verified.
func (p *Presenter) Present(ctx context.Context, name string) (Result, error) {
	src := p.store.Path(name)
	dst := filepath.Join(p.outputDir, name)

	logger := logging.WithContext(ctx, p.logger)
	logger.Debug("exporting deliverable", logging.String("from", src), logging.String("to", dst))

	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "present", "export deliverable", dst, err)
	}

	probed, err := p.inspect(ctx, p.ffprobeBinary, dst)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "present", "read duration", dst, err)
	}
	duration := probed.Duration()
	if duration <= 0 {
		return Result{}, services.Wrap(services.ErrValidation, "present", "read duration",
			fmt.Sprintf("%s reports no duration", dst), nil)
	}

	logger.Info("deliverable ready",
		logging.String("path", dst),
		logging.Duration("duration", duration),
	)
	return Result{Path: dst, Duration: duration}, nil
}
