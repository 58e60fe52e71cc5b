package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"stitch/internal/testsupport"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndFinishRun(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	record, err := store.Create(ctx, "abc12345", 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.Outcome != OutcomeRunning {
		t.Fatalf("new record outcome = %q", record.Outcome)
	}
	if record.ClipCount != 3 {
		t.Fatalf("clip count = %d", record.ClipCount)
	}

	if err := store.Finish(ctx, "abc12345", OutcomeSucceeded, "/out/stitched_abc12345.mp4", 95*time.Second, ""); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	record, err = store.GetByRunID(ctx, "abc12345")
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if record.Outcome != OutcomeSucceeded {
		t.Fatalf("outcome = %q", record.Outcome)
	}
	if record.OutputPath != "/out/stitched_abc12345.mp4" {
		t.Fatalf("output path = %q", record.OutputPath)
	}
	if record.Duration != 95*time.Second {
		t.Fatalf("duration = %v", record.Duration)
	}
}

func TestFinishRecordsFailure(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "failrun1", 2); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Finish(ctx, "failrun1", OutcomeFailed, "", 0, "join clips: mismatched parameters"); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	record, err := store.GetByRunID(ctx, "failrun1")
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if record.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %q", record.Outcome)
	}
	if record.ErrorMessage == "" {
		t.Fatal("expected error message recorded")
	}
	if record.OutputPath != "" {
		t.Fatalf("failed run should have no output path, got %q", record.OutputPath)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openStore(t)
	err := store.Finish(context.Background(), "missing0", OutcomeFailed, "", 0, "x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirstAndClear(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, runID := range []string{"run00001", "run00002", "run00003"} {
		if _, err := store.Create(ctx, runID, 1); err != nil {
			t.Fatalf("Create %s: %v", runID, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].RunID != "run00003" {
		t.Fatalf("expected newest first, got %q", records[0].RunID)
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	if records, err = store.List(ctx, 0); err != nil || len(records) != 0 {
		t.Fatalf("expected empty history, got %v (%v)", records, err)
	}
}
