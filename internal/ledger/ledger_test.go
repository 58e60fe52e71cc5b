package ledger

import (
	"errors"
	"testing"
)

type recordingDeleter struct {
	deleted []string
	fail    map[string]error
}

func (d *recordingDeleter) DeleteIgnoreMissing(name string) error {
	if err, ok := d.fail[name]; ok {
		return err
	}
	d.deleted = append(d.deleted, name)
	return nil
}

func TestDrainDeletesTrackedInOrder(t *testing.T) {
	l := New()
	l.Track("a.mp4")
	l.Track("b.mp4")
	l.Track("a.mp4") // duplicate collapses

	d := &recordingDeleter{}
	l.DrainAll(d, nil)

	if len(d.deleted) != 2 || d.deleted[0] != "a.mp4" || d.deleted[1] != "b.mp4" {
		t.Fatalf("unexpected drain order: %v", d.deleted)
	}
}

func TestDrainTwiceIsNoOp(t *testing.T) {
	l := New()
	l.Track("a.mp4")

	d := &recordingDeleter{}
	l.DrainAll(d, nil)
	l.DrainAll(d, nil)

	if len(d.deleted) != 1 {
		t.Fatalf("expected one deletion, got %v", d.deleted)
	}
}

func TestDrainSwallowsDeletionErrors(t *testing.T) {
	l := New()
	l.Track("broken.mp4")
	l.Track("ok.mp4")

	d := &recordingDeleter{fail: map[string]error{"broken.mp4": errors.New("device busy")}}
	l.DrainAll(d, nil)

	if len(d.deleted) != 1 || d.deleted[0] != "ok.mp4" {
		t.Fatalf("expected remaining artifact deleted despite failure, got %v", d.deleted)
	}
}

func TestDrainEmptyLedger(t *testing.T) {
	l := New()
	d := &recordingDeleter{}
	l.DrainAll(d, nil)
	if len(d.deleted) != 0 {
		t.Fatalf("expected no deletions, got %v", d.deleted)
	}
}

func TestTrackAfterDrainReArms(t *testing.T) {
	l := New()
	l.Track("first.mp4")
	d := &recordingDeleter{}
	l.DrainAll(d, nil)

	l.Track("second.mp4")
	l.DrainAll(d, nil)

	if len(d.deleted) != 2 || d.deleted[1] != "second.mp4" {
		t.Fatalf("expected re-armed drain, got %v", d.deleted)
	}
}
