package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrExternalTool, "normalize", "remux", "ffmpeg exited", errors.New("exit status 1"))
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected error to match ErrExternalTool, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "fetch", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestDetailsStripsMarkerPrefix(t *testing.T) {
	err := Wrap(ErrValidation, "concatenate", "manifest", "no clips to join", nil)
	detail := Details(err)
	if detail.Message != "concatenate: manifest: no clips to join" {
		t.Fatalf("unexpected detail message: %q", detail.Message)
	}
}

func TestDetailsNilError(t *testing.T) {
	if got := Details(nil).Message; got != "" {
		t.Fatalf("expected empty message for nil error, got %q", got)
	}
}
