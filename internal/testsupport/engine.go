package testsupport

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"stitch/internal/engine"
)

// FakeEngine is a scripted engine.Runner for tests. By default every command
// succeeds and writes placeholder bytes to its output path (the last
// argument), which keeps downstream size checks and copies working without a
// real ffmpeg.
type FakeEngine struct {
	mu       sync.Mutex
	Commands [][]string

	// InitErr, when set, is returned by Init.
	InitErr error
	// FailWhen, when set, is consulted per command; a non-nil return fails
	// the command with that error.
	FailWhen func(args []string) error
	// OutputBytes overrides the placeholder content written to outputs.
	OutputBytes []byte
	// Progress, when set, is emitted to any registered progress callback.
	Progress []engine.ProgressUpdate
}

// Init implements engine.Runner.
func (f *FakeEngine) Init(ctx context.Context) error {
	return f.InitErr
}

// Run implements engine.Runner. The command is recorded, optionally failed,
// and otherwise "executed" by writing bytes at the output path.
func (f *FakeEngine) Run(ctx context.Context, args []string, opts ...engine.RunOption) error {
	f.mu.Lock()
	f.Commands = append(f.Commands, append([]string(nil), args...))
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if f.FailWhen != nil {
		if err := f.FailWhen(args); err != nil {
			return err
		}
	}

	if len(args) > 0 {
		out := args[len(args)-1]
		if !strings.HasPrefix(out, "-") {
			content := f.OutputBytes
			if content == nil {
				content = []byte("fake-engine-output")
			}
			if err := os.WriteFile(out, content, 0o644); err != nil {
				return err
			}
		}
	}

	if sink := engine.ProgressSink(opts...); sink != nil {
		updates := f.Progress
		if len(updates) == 0 {
			updates = []engine.ProgressUpdate{{Percent: 100, Speed: "1x"}}
		}
		for _, update := range updates {
			sink(update)
		}
	}
	return nil
}

// CommandCount returns the number of executed commands.
func (f *FakeEngine) CommandCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Commands)
}

// CommandMatching returns the first recorded command containing all the
// provided argument substrings, or nil.
func (f *FakeEngine) CommandMatching(substrings ...string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cmd := range f.Commands {
		joined := strings.Join(cmd, " ")
		all := true
		for _, want := range substrings {
			if !strings.Contains(joined, want) {
				all = false
				break
			}
		}
		if all {
			return cmd
		}
	}
	return nil
}

// NoStreamError builds the engine failure ffmpeg produces when a stream map
// matches nothing.
func NoStreamError() error {
	return &engine.CommandError{
		Output: "Stream map '0:a:0' matches no streams.\nTo ignore this, add a trailing '?' to the map.",
		Err:    errors.New("exit status 1"),
	}
}

// AmbiguousError builds an engine failure with a message the probe
// classifier does not recognize.
func AmbiguousError() error {
	return &engine.CommandError{
		Output: "Error while decoding stream #0:1: Invalid data found when processing input",
		Err:    errors.New("exit status 69"),
	}
}

var _ engine.Runner = (*FakeEngine)(nil)
