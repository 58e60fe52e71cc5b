package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsValidateAfterNormalize(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stitch.toml")
	body := `
[paths]
workspace_dir = "` + filepath.Join(dir, "work") + `"
output_dir = "` + filepath.Join(dir, "out") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[audio]
sample_rate = 48000
channels = 1
bitrate = "96k"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be found, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Audio.SampleRate != 48000 || cfg.Audio.Channels != 1 {
		t.Fatalf("audio profile not loaded: %+v", cfg.Audio)
	}
	if cfg.Fetch.TimeoutSeconds != defaultFetchTimeoutSeconds {
		t.Fatalf("expected fetch defaults to survive partial config, got %d", cfg.Fetch.TimeoutSeconds)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to report exists=false")
	}
	if cfg.Audio.SampleRate != defaultAudioSampleRate {
		t.Fatalf("expected default sample rate, got %d", cfg.Audio.SampleRate)
	}
}

func TestValidateRejectsBadAudio(t *testing.T) {
	cfg := Default()
	cfg.Audio.SampleRate = 12345
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected rejection of unsupported sample rate")
	}

	cfg = Default()
	cfg.Audio.Channels = 6
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected rejection of channel count")
	}
}

func TestValidateRejectsSharedWorkspaceAndOutput(t *testing.T) {
	cfg := Default()
	cfg.Paths.WorkspaceDir = "/tmp/same"
	cfg.Paths.OutputDir = "/tmp/same"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected rejection when workspace and output collide")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandPath("~/media")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if !strings.HasPrefix(got, home) {
		t.Fatalf("expected %q under %q", got, home)
	}
}

func TestBinaryAccessorsFallBack(t *testing.T) {
	cfg := Default()
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("expected PATH fallbacks, got %q/%q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
	cfg.Engine.FFmpegBinary = "/opt/ffmpeg/bin/ffmpeg"
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected override, got %q", cfg.FFmpegBinary())
	}
}
