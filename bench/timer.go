package bench

import (
	"errors"
	"sort"
	"time"
)

// minWarmupFrames is the smallest number of frames dropped from the
// statistics, no matter how short the run was.
const minWarmupFrames = 5

// FrameTimer records the wall clock interval between successive frame
// submissions. This measures perceived frame pacing on the cpu side,
// not gpu execution time.
type FrameTimer struct {
	samples []time.Duration

	last     time.Time
	started  bool
	consumed bool
}

// Tick marks the submission of one frame. The first call only starts
// the clock, every later call records the interval since the previous
// one.
func (t *FrameTimer) Tick(now time.Time) {
	if t.started {
		t.samples = append(t.samples, now.Sub(t.last))
	}

	t.last = now
	t.started = true
}

// Frames returns the number of recorded frame intervals.
func (t *FrameTimer) Frames() int {
	return len(t.samples)
}

// RecentFPS is the frame rate averaged over the most recent window
// samples, used for progress logging during the run.
func (t *FrameTimer) RecentFPS(window int) float64 {
	n := min(window, len(t.samples))
	if n == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range t.samples[len(t.samples)-n:] {
		sum += d
	}

	return float64(n) / sum.Seconds()
}

// FrameStats are the aggregate statistics of one run.
type FrameStats struct {
	// Frames kept after warm-up exclusion.
	Frames int

	// Warmup frames dropped from the statistics.
	Warmup int

	MeanFPS float64

	P50 time.Duration
	P95 time.Duration
	P99 time.Duration
}

var errSamplesConsumed = errors.New("frame samples already consumed")

// Collect computes the statistics over all recorded samples and
// consumes them. Calling Collect a second time is an error.
//
// The first max(5, n/20) frames are dropped as warm-up to keep
// first-use allocation stalls out of the numbers; runs too short to
// afford that keep all their samples. Percentiles use the nearest-rank
// method on the sorted durations: the p-th percentile is the value at
// 1-based rank ceil(p/100 * n). No interpolation, the result is always
// an observed sample.
func (t *FrameTimer) Collect() (FrameStats, error) {
	if t.consumed {
		return FrameStats{}, errSamplesConsumed
	}

	t.consumed = true

	samples := t.samples
	t.samples = nil

	warmup := max(minWarmupFrames, len(samples)/20)
	if warmup < len(samples) {
		samples = samples[warmup:]
	} else {
		warmup = 0
	}

	if len(samples) == 0 {
		return FrameStats{}, errors.New("no frame samples recorded")
	}

	var sum time.Duration
	for _, d := range samples {
		sum += d
	}

	mean := sum / time.Duration(len(samples))

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return FrameStats{
		Frames:  len(samples),
		Warmup:  warmup,
		MeanFPS: 1 / mean.Seconds(),
		P50:     nearestRank(sorted, 50),
		P95:     nearestRank(sorted, 95),
		P99:     nearestRank(sorted, 99),
	}, nil
}

// nearestRank returns the value at 1-based rank ceil(p/100 * n) of the
// sorted samples.
func nearestRank(sorted []time.Duration, p int) time.Duration {
	n := len(sorted)

	rank := (p*n + 99) / 100
	if rank < 1 {
		rank = 1
	}

	return sorted[rank-1]
}
