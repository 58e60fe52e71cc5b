package logging

import "testing"

func TestSamplerEmitsOnBucketBoundaries(t *testing.T) {
	s := NewProgressSampler(5)
	if !s.ShouldEmit(0, "normalize") {
		t.Fatal("first event should emit")
	}
	if s.ShouldEmit(2, "normalize") {
		t.Fatal("within-bucket event should be suppressed")
	}
	if !s.ShouldEmit(5.1, "normalize") {
		t.Fatal("bucket crossing should emit")
	}
	if !s.ShouldEmit(100, "normalize") {
		t.Fatal("completion should emit")
	}
}

func TestSamplerEmitsOnStageChange(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldEmit(50, "normalize")
	if !s.ShouldEmit(1, "concatenate") {
		t.Fatal("stage change should emit even at low percent")
	}
}

func TestSamplerUnknownPercent(t *testing.T) {
	s := NewProgressSampler(5)
	if !s.ShouldEmit(-1, "fetch") {
		t.Fatal("stage change with unknown percent should emit")
	}
	if s.ShouldEmit(-1, "fetch") {
		t.Fatal("repeated unknown-percent event should be suppressed")
	}
}

func TestSamplerReset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldEmit(90, "normalize")
	s.Reset()
	if !s.ShouldEmit(0, "normalize") {
		t.Fatal("reset sampler should emit again")
	}
}

func TestNilSamplerAlwaysEmits(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldEmit(1, "x") {
		t.Fatal("nil sampler must not suppress")
	}
}
