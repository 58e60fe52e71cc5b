package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store is a flat, name-keyed artifact store backed by a single directory.
// Every intermediate the pipeline produces lives here under a generated name;
// the directory is created per run so names never collide across runs.
type Store struct {
	root string
}

// NewDisk creates (if needed) and opens a store rooted at dir.
func NewDisk(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("store: empty root directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the store's backing directory.
func (s *Store) Root() string {
	return s.root
}

// Path resolves an artifact name to its on-disk location. Names must be
// bare filenames; anything containing a separator is rejected at write time.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, name)
}

// Write stores data under name, replacing any existing artifact.
func (s *Store) Write(name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	return nil
}

// Create opens a writer for streaming an artifact into the store.
func (s *Store) Create(name string) (io.WriteCloser, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(s.Path(name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: create %s: %w", name, err)
	}
	return f, nil
}

// Open returns a reader for the named artifact.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", name, err)
	}
	return f, nil
}

// Size reports the artifact size in bytes, or an error when it is absent.
func (s *Store) Size(name string) (int64, error) {
	info, err := os.Stat(s.Path(name))
	if err != nil {
		return 0, fmt.Errorf("store: stat %s: %w", name, err)
	}
	return info.Size(), nil
}

// Exists reports whether the named artifact is present and non-directory.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// Delete removes the named artifact. A missing artifact is an error here;
// callers that tolerate absence should use DeleteIgnoreMissing.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.Path(name)); err != nil {
		return fmt.Errorf("store: delete %s: %w", name, err)
	}
	return nil
}

// DeleteIgnoreMissing removes the named artifact, treating "already gone" as
// success. This is the cleanup policy: cleanup must never fail because an
// earlier stage or a previous drain already removed the file.
func (s *Store) DeleteIgnoreMissing(name string) error {
	err := os.Remove(s.Path(name))
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("store: delete %s: %w", name, err)
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("store: empty artifact name")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("store: artifact name %q must be a bare filename", name)
	}
	return nil
}
