package pipeline

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at     time.Time
	format string
	took   time.Duration
	failed bool
}

// LatencySnapshot aggregates the render times of recent jobs.
type LatencySnapshot struct {
	Count  int     `json:"count"`
	Failed int     `json:"failed"`
	MinMs  float64 `json:"min_ms"`
	MaxMs  float64 `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// RenderStats keeps job durations for a rolling window. Failed jobs are
// counted but left out of the latency figures.
type RenderStats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
	now     func() time.Time
}

func NewRenderStats(window time.Duration) *RenderStats {
	if window <= 0 {
		window = time.Hour
	}
	return &RenderStats{
		samples: make([]sample, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

// Record adds one finished job.
func (s *RenderStats) Record(format string, took time.Duration, failed bool) {
	took = max(took, 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, format: format, took: took, failed: failed})
}

// Snapshot aggregates every format. ByFormat splits the same figures out
// per output format.
func (s *RenderStats) Snapshot() LatencySnapshot {
	return s.snapshot(func(sample) bool { return true })
}

func (s *RenderStats) ByFormat() map[string]LatencySnapshot {
	s.mu.Lock()
	var formats []string
	for _, sm := range s.samples {
		if !slices.Contains(formats, sm.format) {
			formats = append(formats, sm.format)
		}
	}
	s.mu.Unlock()

	out := make(map[string]LatencySnapshot, len(formats))
	for _, f := range formats {
		out[f] = s.snapshot(func(sm sample) bool { return sm.format == f })
	}
	return out
}

func (s *RenderStats) snapshot(keep func(sample) bool) LatencySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())

	var snap LatencySnapshot
	var ms []float64
	for _, sm := range s.samples {
		if !keep(sm) {
			continue
		}
		if sm.failed {
			snap.Failed++
			continue
		}
		ms = append(ms, float64(sm.took.Microseconds())/1000)
	}
	if len(ms) == 0 {
		return snap
	}
	slices.Sort(ms)

	var sum float64
	for _, v := range ms {
		sum += v
	}
	snap.Count = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = sum / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

func (s *RenderStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm sample) bool {
		return sm.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return sorted[0]
	case pct >= 100:
		return sorted[len(sorted)-1]
	}
	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower] + (sorted[lower+1]-sorted[lower])*weight
}
