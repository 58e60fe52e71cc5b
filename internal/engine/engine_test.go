package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func stubEngine(t *testing.T, mode string) (*FFmpeg, *[][]string) {
	t.Helper()
	var captured [][]string
	originalCommand := commandContext
	originalLook := lookPath
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		captured = append(captured, append([]string(nil), args...))
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("FFMPEG_HELPER_MODE=%s", mode))
		return cmd
	}
	lookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	t.Cleanup(func() {
		commandContext = originalCommand
		lookPath = originalLook
	})
	return New(), &captured
}

func TestNewWithBinary(t *testing.T) {
	f := New(WithBinary("/opt/ffmpeg/bin/ffmpeg"))
	if f.binary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected binary override, got %q", f.binary)
	}
}

func TestInitRunsOnce(t *testing.T) {
	f, captured := stubEngine(t, "version")
	if err := f.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := f.Init(context.Background()); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if len(*captured) != 1 {
		t.Fatalf("expected single version check, got %d commands", len(*captured))
	}
	if !strings.HasPrefix(f.Version(), "ffmpeg version") {
		t.Fatalf("unexpected version %q", f.Version())
	}
}

func TestInitFailsWhenBinaryMissing(t *testing.T) {
	original := lookPath
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	t.Cleanup(func() { lookPath = original })

	f := New(WithBinary("ffmpeg-missing"))
	if err := f.Init(context.Background()); err == nil {
		t.Fatal("expected init failure for missing binary")
	}
}

func TestRunEmitsProgressWithFractions(t *testing.T) {
	f, captured := stubEngine(t, "progress")

	var updates []ProgressUpdate
	err := f.Run(context.Background(), []string{"-i", "in.mp4", "out.mp4"},
		WithProgress(func(u ProgressUpdate) { updates = append(updates, u) }),
		WithTotalDuration(10*time.Second),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("expected 3 progress events, got %d", len(updates))
	}
	if updates[0].Percent < 49 || updates[0].Percent > 51 {
		t.Fatalf("expected ~50%% first event, got %f", updates[0].Percent)
	}
	if updates[2].Percent != 100 {
		t.Fatalf("expected 100%% final event, got %f", updates[2].Percent)
	}
	if updates[1].Speed != "2.5x" {
		t.Fatalf("expected speed 2.5x, got %q", updates[1].Speed)
	}

	// Init version check plus the actual command.
	runArgs := (*captured)[len(*captured)-1]
	joined := strings.Join(runArgs, " ")
	for _, want := range []string{"-progress pipe:1", "-nostats", "-hide_banner", "-nostdin", "-y", "-i in.mp4 out.mp4"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected args to contain %q, got %q", want, joined)
		}
	}
}

func TestRunWithoutProgressOmitsProgressFlags(t *testing.T) {
	f, captured := stubEngine(t, "version")
	if err := f.Run(context.Background(), []string{"-i", "in.mp4", "out.mp4"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	runArgs := (*captured)[len(*captured)-1]
	if strings.Contains(strings.Join(runArgs, " "), "-progress") {
		t.Fatalf("unexpected progress flags in %v", runArgs)
	}
}

func TestRunUnknownTotalReportsIndeterminate(t *testing.T) {
	f, _ := stubEngine(t, "progress")
	var updates []ProgressUpdate
	err := f.Run(context.Background(), []string{"-i", "in.mp4", "out.mp4"},
		WithProgress(func(u ProgressUpdate) { updates = append(updates, u) }),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if updates[0].Percent != -1 {
		t.Fatalf("expected indeterminate percent, got %f", updates[0].Percent)
	}
	if updates[len(updates)-1].Percent != 100 {
		t.Fatalf("end event should still report 100, got %f", updates[len(updates)-1].Percent)
	}
}

func TestRunFailureRetainsStderrTail(t *testing.T) {
	f, _ := stubEngine(t, "failure")
	err := f.Run(context.Background(), []string{"-i", "in.mp4", "-map", "0:a:0", "out.nut"})
	if err == nil {
		t.Fatal("expected command failure")
	}
	if got := Output(err); !strings.Contains(got, "matches no streams") {
		t.Fatalf("expected retained stderr, got %q", got)
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %T", err)
	}
	if !strings.Contains(cmdErr.Error(), "matches no streams") {
		t.Fatalf("error message should carry last stderr line, got %q", cmdErr.Error())
	}
}

func TestOutputOnForeignError(t *testing.T) {
	if Output(errors.New("plain")) != "" {
		t.Fatal("expected empty output for non-command error")
	}
}

func TestTailBufferKeepsTail(t *testing.T) {
	b := newTailBuffer(8)
	if _, err := b.Write([]byte("0123456789abcdef")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if b.String() != "89abcdef" {
		t.Fatalf("unexpected tail %q", b.String())
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "version":
		fmt.Println("ffmpeg version 7.1 Copyright (c) 2000-2024 the FFmpeg developers")
		os.Exit(0)
	case "progress":
		fmt.Println("out_time_us=5000000")
		fmt.Println("speed=1.0x")
		fmt.Println("progress=continue")
		fmt.Println("out_time_us=9000000")
		fmt.Println("speed=2.5x")
		fmt.Println("progress=continue")
		fmt.Println("out_time_us=10000000")
		fmt.Println("progress=end")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "Stream map '0:a:0' matches no streams.")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
