// Package stats keeps rolling-window latency figures for document conversions.
package stats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at       time.Time
	duration time.Duration
	format   string
	failed   bool
}

// Snapshot aggregates the samples currently inside the window.
type Snapshot struct {
	Count    int            `json:"count"`
	Failures int            `json:"failures"`
	MinMs    int64          `json:"min_ms"`
	MaxMs    int64          `json:"max_ms"`
	AvgMs    float64        `json:"avg_ms"`
	P50Ms    float64        `json:"p50_ms"`
	P95Ms    float64        `json:"p95_ms"`
	P99Ms    float64        `json:"p99_ms"`
	ByFormat map[string]int `json:"by_format"`
	WindowS  float64        `json:"window_seconds"`
}

// Recorder is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
	now     func() time.Time
}

func NewRecorder(window time.Duration) *Recorder {
	if window <= 0 {
		window = time.Hour
	}
	return &Recorder{
		samples: make([]sample, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

// Record adds one conversion outcome.
func (r *Recorder) Record(format string, d time.Duration, err error) {
	if d < 0 {
		d = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.pruneLocked(now)
	r.samples = append(r.samples, sample{at: now, duration: d, format: format, failed: err != nil})
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(r.now())
	snap := Snapshot{
		ByFormat: map[string]int{},
		WindowS:  r.window.Seconds(),
	}
	if len(r.samples) == 0 {
		return snap
	}

	ms := make([]int64, 0, len(r.samples))
	var sum int64
	for _, s := range r.samples {
		v := s.duration.Milliseconds()
		ms = append(ms, v)
		sum += v
		snap.ByFormat[s.format]++
		if s.failed {
			snap.Failures++
		}
	}
	slices.Sort(ms)

	snap.Count = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(sum) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

func (r *Recorder) pruneLocked(now time.Time) {
	cutoff := now.Add(-r.window)
	r.samples = slices.DeleteFunc(r.samples, func(s sample) bool {
		return s.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(rank-float64(lower))
}
