package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteSampleClip drops a small placeholder media file and returns its path.
func WriteSampleClip(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not-really-an-mp4-"+name), 0o644); err != nil {
		t.Fatalf("write sample clip %s: %v", name, err)
	}
	return path
}
