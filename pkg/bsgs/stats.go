package bsgs

import (
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring"
)

// Stats is a snapshot of a running search.
type Stats struct {
	Iterations uint64        // ranges scanned
	Mismatches uint64        // candidates that failed verification
	LastRate   float64       // nominal keys/s of the last range
	AvgRate    float64       // nominal keys/s over all ranges
	Elapsed    time.Duration // wall time since Run started
	ScanTime   time.Duration // time spent inside the scanner
	Coverage   float64       // fraction of keyspace sectors touched by some range
	LastRange  string
}

type tracker struct {
	mu         sync.Mutex
	started    time.Time
	iterations uint64
	mismatches uint64
	scanTime   time.Duration
	lastRate   float64
	attempts   uint64
	lastRange  string
	sectors    *roaring.Bitmap
}

func newTracker(attempts uint64) *tracker {
	return &tracker{attempts: attempts, sectors: roaring.New()}
}

func (t *tracker) start(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started.IsZero() {
		t.started = now
	}
}

// rangeDone records one scanned range and returns its nominal rate.
func (t *tracker) rangeDone(ks *Keyspace, rng *Range, elapsed time.Duration) float64 {
	rate := nominalRate(t.attempts, elapsed)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.iterations++
	t.scanTime += elapsed
	t.lastRate = rate
	t.lastRange = rng.String()
	t.sectors.AddRange(uint64(ks.Sector(rng.K1)), uint64(ks.Sector(rng.K2))+1)
	return rate
}

func (t *tracker) mismatch() {
	t.mu.Lock()
	t.mismatches++
	t.mu.Unlock()
}

func (t *tracker) snapshot(now time.Time) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Stats{
		Iterations: t.iterations,
		Mismatches: t.mismatches,
		LastRate:   t.lastRate,
		ScanTime:   t.scanTime,
		Coverage:   float64(t.sectors.GetCardinality()) / CoverageSectors,
		LastRange:  t.lastRange,
	}
	if !t.started.IsZero() {
		s.Elapsed = now.Sub(t.started)
	}
	if t.scanTime > 0 {
		s.AvgRate = float64(t.attempts) * float64(t.iterations) / t.scanTime.Seconds()
	}
	return s
}

func nominalRate(attempts uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(attempts) / elapsed.Seconds()
}
