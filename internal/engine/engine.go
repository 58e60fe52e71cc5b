package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"stitch/internal/logging"
)

var (
	commandContext = exec.CommandContext
	lookPath       = exec.LookPath
)

// stderrTailLimit bounds how much engine output is retained for error
// classification and reporting.
const stderrTailLimit = 8 * 1024

// ProgressUpdate captures one engine progress event. Percent is -1 when the
// total duration is unknown and a fraction cannot be derived.
type ProgressUpdate struct {
	Percent float64
	OutTime time.Duration
	Speed   string
}

// Runner defines the media engine behaviour pipeline stages depend on.
// Commands are executed strictly sequentially; implementations must never
// interleave two commands.
type Runner interface {
	Init(ctx context.Context) error
	Run(ctx context.Context, args []string, opts ...RunOption) error
}

// RunOption configures a single command execution.
type RunOption func(*runConfig)

type runConfig struct {
	progress func(ProgressUpdate)
	total    time.Duration
}

// WithProgress registers a callback for engine progress events. Events are
// advisory: they update status display and never gate execution.
func WithProgress(fn func(ProgressUpdate)) RunOption {
	return func(rc *runConfig) { rc.progress = fn }
}

// WithTotalDuration supplies the expected output duration so progress events
// can carry a fraction instead of a bare timestamp.
func WithTotalDuration(d time.Duration) RunOption {
	return func(rc *runConfig) { rc.total = d }
}

// ProgressSink resolves the progress callback configured by opts, or nil.
// Runner fakes use it to honor the progress contract.
func ProgressSink(opts ...RunOption) func(ProgressUpdate) {
	var rc runConfig
	for _, opt := range opts {
		opt(&rc)
	}
	return rc.progress
}

// Option configures the FFmpeg engine.
type Option func(*FFmpeg)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(f *FFmpeg) {
		if strings.TrimSpace(binary) != "" {
			f.binary = binary
		}
	}
}

// WithLogger attaches a logger for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(f *FFmpeg) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// FFmpeg wraps the ffmpeg command-line engine. One instance is shared
// process-wide: initialization happens lazily exactly once, and a mutex
// serializes command execution because the engine owns a single shared
// execution context.
type FFmpeg struct {
	binary string
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
	version  string

	mu sync.Mutex
}

// New constructs an FFmpeg engine using defaults.
func New(opts ...Option) *FFmpeg {
	f := &FFmpeg{binary: "ffmpeg", logger: logging.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Init resolves and verifies the binary. Safe to call repeatedly; the check
// runs once and later calls return the memoized result.
func (f *FFmpeg) Init(ctx context.Context) error {
	f.initOnce.Do(func() {
		if _, err := lookPath(f.binary); err != nil {
			f.initErr = fmt.Errorf("ffmpeg binary %q not found: %w", f.binary, err)
			return
		}
		out, err := commandContext(ctx, f.binary, "-version").CombinedOutput()
		if err != nil {
			f.initErr = fmt.Errorf("ffmpeg version check failed: %w", err)
			return
		}
		if line, _, _ := strings.Cut(string(out), "\n"); line != "" {
			f.version = strings.TrimSpace(line)
		}
		f.logger.Debug("engine initialized", logging.String("binary", f.binary), logging.String("version", f.version))
	})
	return f.initErr
}

// Version returns the version line captured during Init, if any.
func (f *FFmpeg) Version() string {
	return f.version
}

// Run executes one ffmpeg command to completion. Progress, when requested,
// is parsed from the machine-readable `-progress` stream on stdout; stderr
// is retained (tail only) so failures can be classified by their message.
func (f *FFmpeg) Run(ctx context.Context, args []string, opts ...RunOption) error {
	if err := f.Init(ctx); err != nil {
		return err
	}

	var rc runConfig
	for _, opt := range opts {
		opt(&rc)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	full := make([]string, 0, len(args)+6)
	full = append(full, "-hide_banner", "-nostdin", "-y")
	if rc.progress != nil {
		full = append(full, "-progress", "pipe:1", "-nostats")
	}
	full = append(full, args...)

	cmd := commandContext(ctx, f.binary, full...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	tail := newTailBuffer(stderrTailLimit)
	cmd.Stderr = tail

	f.logger.Debug("engine command", logging.String("args", strings.Join(full, " ")))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	var current ProgressUpdate
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
				current.OutTime = time.Duration(us) * time.Microsecond
			}
		case "speed":
			current.Speed = strings.TrimSpace(value)
		case "progress":
			current.Percent = fraction(current.OutTime, rc.total)
			if value == "end" {
				current.Percent = 100
			}
			if rc.progress != nil {
				rc.progress(current)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return fmt.Errorf("read ffmpeg progress: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		return &CommandError{Args: full, Output: tail.String(), Err: err}
	}
	return nil
}

func fraction(out, total time.Duration) float64 {
	if total <= 0 {
		return -1
	}
	pct := float64(out) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// CommandError reports a failed engine command together with the retained
// tail of its diagnostic output.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Output)
	if msg == "" {
		return fmt.Sprintf("ffmpeg failed: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg failed: %v: %s", e.Err, lastLine(msg))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Output extracts the retained engine output from an error chain, or "".
func Output(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Output
	}
	return ""
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

var _ Runner = (*FFmpeg)(nil)
