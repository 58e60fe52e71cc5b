package store

import (
	"io"
	"path/filepath"
	"testing"
)

func TestWriteReadDelete(t *testing.T) {
	s, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	if err := s.Write("a.bin", []byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	size, err := s.Size("a.bin")
	if err != nil || size != 7 {
		t.Fatalf("Size = %d, %v; want 7, nil", size, err)
	}
	r, err := s.Open("a.bin")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil || string(data) != "payload" {
		t.Fatalf("read %q, %v", data, err)
	}
	if err := s.Delete("a.bin"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Exists("a.bin") {
		t.Fatal("artifact still present after delete")
	}
}

func TestDeleteMissingIsError(t *testing.T) {
	s, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	if err := s.Delete("ghost.mp4"); err == nil {
		t.Fatal("expected error deleting missing artifact")
	}
}

func TestDeleteIgnoreMissing(t *testing.T) {
	s, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	if err := s.DeleteIgnoreMissing("ghost.mp4"); err != nil {
		t.Fatalf("expected missing delete to succeed, got %v", err)
	}
	if err := s.Write("real.mp4", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.DeleteIgnoreMissing("real.mp4"); err != nil {
		t.Fatalf("DeleteIgnoreMissing: %v", err)
	}
	if s.Exists("real.mp4") {
		t.Fatal("artifact survived DeleteIgnoreMissing")
	}
}

func TestRejectsPathTraversal(t *testing.T) {
	s, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	for _, name := range []string{"", "../escape.mp4", "sub/dir.mp4", `win\name.mp4`} {
		if err := s.Write(name, []byte("x")); err == nil {
			t.Fatalf("expected rejection for name %q", name)
		}
	}
}

func TestPathStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	s, err := NewDisk(root)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	if got, want := s.Path("x.mp4"), filepath.Join(root, "x.mp4"); got != want {
		t.Fatalf("Path = %q, want %q", got, want)
	}
}
