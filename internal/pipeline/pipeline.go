// Package pipeline orchestrates a full stitching run: engine warmup, clip
// download, per-clip audio probing and normalization, copy-mode
// concatenation, and presentation of the deliverable. Runs are strictly
// sequential; a workspace lock rejects concurrent runs because the engine
// and artifact namespace are shared.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"stitch/internal/clip"
	"stitch/internal/concat"
	"stitch/internal/config"
	"stitch/internal/engine"
	"stitch/internal/fetch"
	"stitch/internal/history"
	"stitch/internal/ledger"
	"stitch/internal/logging"
	"stitch/internal/media/ffprobe"
	"stitch/internal/names"
	"stitch/internal/normalize"
	"stitch/internal/present"
	"stitch/internal/probe"
	"stitch/internal/services"
	"stitch/internal/store"
)

// Result describes a completed run.
type Result struct {
	RunID      string
	OutputPath string
	Duration   time.Duration
	ClipCount  int
}

// Pipeline executes stitching runs against one workspace.
type Pipeline struct {
	cfg     *config.Config
	engine  engine.Runner
	history *history.Store
	status  StatusSink
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	inspect present.Inspector
}

// Option configures a pipeline.
type Option func(*Pipeline)

// WithStatusSink directs status lines to the provided sink.
func WithStatusSink(sink StatusSink) Option {
	return func(p *Pipeline) {
		if sink != nil {
			p.status = sink
		}
	}
}

// WithHistory persists run records to the provided store.
func WithHistory(store *history.Store) Option {
	return func(p *Pipeline) { p.history = store }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logging.NewComponentLogger(logger, "pipeline")
		}
	}
}

// WithInspector overrides the metadata reader used for clip durations and
// deliverable readback. Tests use this to avoid spawning a real ffprobe.
func WithInspector(fn present.Inspector) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.inspect = fn
		}
	}
}

// New constructs a pipeline around the given engine.
func New(cfg *config.Config, eng engine.Runner, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		engine:  eng,
		status:  StatusFunc(nil),
		logger:  logging.NewNop(),
		sampler: logging.NewProgressSampler(0),
		inspect: ffprobe.Inspect,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run stitches the ordered sources into one deliverable. Exactly one failure
// message reaches the status sink on error, and the artifact ledger is
// drained before that message surfaces, so a failed run never leaks
// workspace artifacts.
func (p *Pipeline) Run(ctx context.Context, sources []string) (*Result, error) {
	if len(sources) == 0 {
		err := services.Wrap(services.ErrValidation, "pipeline", "start", "no clip sources provided", nil)
		p.fail(err)
		return nil, err
	}

	runID := newRunID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)

	lock := flock.New(filepath.Join(p.cfg.Paths.WorkspaceDir, ".stitch.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		err = services.Wrap(services.ErrConfiguration, "pipeline", "lock workspace", p.cfg.Paths.WorkspaceDir, err)
		p.fail(err)
		return nil, err
	}
	if !locked {
		err = services.Wrap(services.ErrConfiguration, "pipeline", "lock workspace",
			"another run is already active in this workspace", nil)
		p.fail(err)
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	st, err := store.NewDisk(p.cfg.Paths.WorkspaceDir)
	if err != nil {
		err = services.Wrap(services.ErrConfiguration, "pipeline", "open workspace", p.cfg.Paths.WorkspaceDir, err)
		p.fail(err)
		return nil, err
	}
	led := ledger.New()

	if p.history != nil {
		if _, histErr := p.history.Create(ctx, runID, len(sources)); histErr != nil {
			logger.Warn("run history unavailable", logging.Error(histErr))
		}
	}

	started := time.Now()
	result, runErr := p.run(ctx, runID, sources, st, led, logger)

	// Drain happens exactly once per run, after the deliverable has been
	// exported, and always before a failure is surfaced.
	led.DrainAll(st, logger)

	if runErr != nil {
		logger.Error("run failed", logging.Error(runErr))
		p.fail(runErr)
		p.recordFinish(runID, history.OutcomeFailed, "", 0, services.Details(runErr).Message)
		return nil, runErr
	}

	p.transition(StateDone, fmt.Sprintf("Done: %s (%s)", result.OutputPath, result.Duration.Round(time.Millisecond)))
	logger.Info("run complete",
		logging.String("output", result.OutputPath),
		logging.Duration("duration", result.Duration),
		logging.Duration("elapsed", time.Since(started)),
	)
	p.recordFinish(runID, history.OutcomeSucceeded, result.OutputPath, result.Duration, "")
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, runID string, sources []string, st *store.Store, led *ledger.Ledger, logger *slog.Logger) (*Result, error) {
	scheme := names.NewScheme(runID)

	p.transition(StateEngineLoading, "Loading media engine")
	if err := p.engine.Init(services.WithStage(ctx, string(StateEngineLoading))); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "load engine", "", err)
	}

	p.transition(StateDownloading, fmt.Sprintf("Downloading %d clips", len(sources)))
	fetcher := fetch.New(fetch.Options{
		Timeout:   time.Duration(p.cfg.Fetch.TimeoutSeconds) * time.Second,
		UserAgent: p.cfg.Fetch.UserAgent,
	}, st, led, scheme, logger)

	clips := make([]clip.Handle, 0, len(sources))
	for i, source := range sources {
		fetchCtx := services.WithClipIndex(services.WithStage(ctx, string(StateDownloading)), i)
		handle, err := fetcher.Fetch(fetchCtx, i, source)
		if err != nil {
			return nil, err
		}
		clips = append(clips, handle)
		p.emit(StateDownloading, fmt.Sprintf("Downloaded clip %d/%d", i+1, len(sources)))
	}

	durations := p.clipDurations(ctx, st, clips, logger)

	prober := probe.New(p.engine, st, led, scheme, logger)
	normalizer := normalize.New(p.engine, st, led, scheme, normalize.Profile{
		SampleRate: p.cfg.Audio.SampleRate,
		Channels:   p.cfg.Audio.Channels,
		Bitrate:    p.cfg.Audio.Bitrate,
	}, logger)

	normalized := make([]clip.Handle, 0, len(clips))
	var total time.Duration
	for i, handle := range clips {
		clipCtx := services.WithClipIndex(services.WithStage(ctx, string(StateNormalizing)), i)
		p.sampler.Reset()
		p.transition(StateNormalizing, fmt.Sprintf("Normalizing clip %d/%d", i+1, len(clips)))

		outcome, err := prober.Probe(clipCtx, handle)
		if err != nil {
			return nil, err
		}

		stage := fmt.Sprintf("normalize-%d", i)
		out, err := normalizer.Normalize(clipCtx, handle, outcome.HasAudio, durations[i], func(update engine.ProgressUpdate) {
			p.progress(StateNormalizing, stage, fmt.Sprintf("Normalizing clip %d/%d", i+1, len(clips)), update)
		})
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, out)
		total += durations[i]
	}

	p.sampler.Reset()
	p.transition(StateConcatenating, fmt.Sprintf("Concatenating %d clips", len(normalized)))
	joiner := concat.New(p.engine, st, led, scheme, logger)
	concatCtx := services.WithStage(ctx, string(StateConcatenating))
	output, err := joiner.Join(concatCtx, normalized, total, func(update engine.ProgressUpdate) {
		p.progress(StateConcatenating, "concat", "Concatenating", update)
	})
	if err != nil {
		return nil, err
	}

	p.transition(StatePresenting, "Presenting deliverable")
	presenter := present.New(st, p.cfg.Paths.OutputDir, p.cfg.FFprobeBinary(), logger, present.WithInspector(p.inspect))
	presented, err := presenter.Present(services.WithStage(ctx, string(StatePresenting)), output)
	if err != nil {
		return nil, err
	}

	// The exported copy is the deliverable. The workspace original has now
	// been fully consumed, so it joins the drain like any other intermediate.
	led.Track(output)

	return &Result{
		RunID:      runID,
		OutputPath: presented.Path,
		Duration:   presented.Duration,
		ClipCount:  len(sources),
	}, nil
}

// clipDurations reads each downloaded clip's duration for progress fractions.
// The reads are advisory: a clip whose duration cannot be determined simply
// gets indeterminate progress, never a failed run.
func (p *Pipeline) clipDurations(ctx context.Context, st *store.Store, clips []clip.Handle, logger *slog.Logger) []time.Duration {
	durations := make([]time.Duration, len(clips))
	for i, handle := range clips {
		probed, err := p.inspect(ctx, p.cfg.FFprobeBinary(), st.Path(handle.Name))
		if err != nil {
			logger.Debug("clip duration unavailable", logging.Int("clip", i), logging.Error(err))
			continue
		}
		durations[i] = probed.Duration()
	}
	return durations
}

func (p *Pipeline) transition(state State, message string) {
	p.emit(state, message)
}

func (p *Pipeline) emit(state State, message string) {
	if p.status != nil {
		p.status.Update(state, message)
	}
}

func (p *Pipeline) progress(state State, stage, prefix string, update engine.ProgressUpdate) {
	if !p.sampler.ShouldEmit(update.Percent, stage) {
		return
	}
	if update.Percent < 0 {
		p.emit(state, fmt.Sprintf("%s (%s elapsed)", prefix, update.OutTime.Round(time.Second)))
		return
	}
	p.emit(state, fmt.Sprintf("%s: %.0f%%", prefix, update.Percent))
}

func (p *Pipeline) fail(err error) {
	p.emit(StateFailed, "Failed: "+services.Details(err).Message)
}

func (p *Pipeline) recordFinish(runID string, outcome history.Outcome, output string, duration time.Duration, message string) {
	if p.history == nil {
		return
	}
	// Recording runs against a background context so a canceled run still
	// gets its terminal record.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.history.Finish(ctx, runID, outcome, output, duration, message); err != nil {
		p.logger.Warn("record run outcome", logging.Error(err))
	}
}

func newRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
