package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"stitch/internal/history"
	"stitch/internal/pipeline"
)

func TestRenderStatusLinePlain(t *testing.T) {
	line := renderStatusLine("Workspace", statusOK, "/tmp/ws (read/write ok)", false)
	if !strings.Contains(line, "Workspace:") {
		t.Fatalf("missing label: %q", line)
	}
	if !strings.Contains(line, "[OK] /tmp/ws (read/write ok)") {
		t.Fatalf("missing status text: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("unexpected ANSI codes without colorize: %q", line)
	}
}

func TestRenderStatusLineColorized(t *testing.T) {
	line := renderStatusLine("FFmpeg", statusError, "binary not found", true)
	if !strings.HasPrefix(line, statusStyles[statusError].color) || !strings.HasSuffix(line, ansiReset) {
		t.Fatalf("expected red wrapping: %q", line)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	if got := renderSectionHeader("Directories", false); got != "== Directories ==" {
		t.Fatalf("header = %q", got)
	}
	colored := renderSectionHeader("Directories", true)
	if !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("colorized header missing reset: %q", colored)
	}
}

func TestStatusPrinterMapsStates(t *testing.T) {
	var buf bytes.Buffer
	printer := newStatusPrinter(&buf)

	printer.Update(pipeline.StateNormalizing, "Normalizing clip 1/3")
	printer.Update(pipeline.StateFailed, "Failed: fetch: download: boom")

	out := buf.String()
	if !strings.Contains(out, "[INFO] Normalizing clip 1/3") {
		t.Fatalf("info line missing: %q", out)
	}
	if !strings.Contains(out, "[ERROR] Failed: fetch: download: boom") {
		t.Fatalf("error line missing: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("non-tty writer must not be colorized: %q", out)
	}
}

func TestRenderRunsTable(t *testing.T) {
	records := []*history.Record{
		{
			RunID:      "abc12345",
			ClipCount:  3,
			Outcome:    history.OutcomeSucceeded,
			OutputPath: "/out/stitched_abc12345.mp4",
			Duration:   95 * time.Second,
			CreatedAt:  time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC),
		},
		{
			RunID:        "def67890",
			ClipCount:    2,
			Outcome:      history.OutcomeFailed,
			ErrorMessage: "concat: join clips: boom",
			CreatedAt:    time.Date(2026, 8, 24, 11, 0, 0, 0, time.UTC),
		},
	}

	out := renderRunsTable(records)
	for _, want := range []string{"Run", "abc12345", "succeeded", "/out/stitched_abc12345.mp4", "def67890", "concat: join clips: boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("runs table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSettingsTable(t *testing.T) {
	out := renderSettingsTable([][2]string{
		{"workspace_dir", "/tmp/ws"},
		{"audio.bitrate", "128k"},
	})
	for _, want := range []string{"Setting", "workspace_dir", "/tmp/ws", "128k"} {
		if !strings.Contains(out, want) {
			t.Fatalf("settings table missing %q:\n%s", want, out)
		}
	}
}
