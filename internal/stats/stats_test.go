package stats

import (
	"errors"
	"testing"
	"time"
)

func TestRecorder_SnapshotPercentiles(t *testing.T) {
	r := NewRecorder(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		r.Record("pdf", time.Duration(ms)*time.Millisecond, nil)
	}

	snap := r.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
	if snap.ByFormat["pdf"] != 5 {
		t.Fatalf("expected 5 pdf samples, got %d", snap.ByFormat["pdf"])
	}
}

func TestRecorder_CountsFailuresAndFormats(t *testing.T) {
	r := NewRecorder(time.Hour)
	r.Record("pdf", time.Millisecond, nil)
	r.Record("docx", time.Millisecond, errors.New("corrupt"))
	r.Record("docx", time.Millisecond, nil)

	snap := r.Snapshot()
	if snap.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", snap.Failures)
	}
	if snap.ByFormat["docx"] != 2 || snap.ByFormat["pdf"] != 1 {
		t.Errorf("unexpected per-format counts %v", snap.ByFormat)
	}
}

func TestRecorder_PrunesExpiredSamples(t *testing.T) {
	r := NewRecorder(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Record("pdf", 100*time.Millisecond, nil)
	now = now.Add(2 * time.Minute)

	if snap := r.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	r.Record("pdf", 200*time.Millisecond, nil)
	snap := r.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected one 200ms sample, got %+v", snap)
	}
}

func TestRecorder_ClampsNegativeDuration(t *testing.T) {
	r := NewRecorder(time.Hour)
	r.Record("text", -10*time.Millisecond, nil)
	snap := r.Snapshot()
	if snap.Count != 1 || snap.MinMs != 0 {
		t.Fatalf("expected clamped duration=0, got %+v", snap)
	}
}

func TestRecorder_EmptySnapshot(t *testing.T) {
	snap := NewRecorder(0).Snapshot()
	if snap.Count != 0 || snap.ByFormat == nil {
		t.Errorf("unexpected empty snapshot %+v", snap)
	}
	if snap.WindowS != time.Hour.Seconds() {
		t.Errorf("expected default window of one hour, got %f", snap.WindowS)
	}
}
