package bench

import (
	"testing"
	"time"
)

// fill records the given durations, preceded by enough identical
// warm-up samples that the warm-up exclusion removes exactly those.
func fillTimer(t *FrameTimer, warmup int, durations []time.Duration) {
	now := time.Unix(0, 0)
	t.Tick(now)

	for i := 0; i < warmup; i++ {
		now = now.Add(time.Millisecond)
		t.Tick(now)
	}

	for _, d := range durations {
		now = now.Add(d)
		t.Tick(now)
	}
}

func TestNearestRankPercentiles(t *testing.T) {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }

	tests := []struct {
		name      string
		durations []time.Duration
		p50, p95  time.Duration
		p99       time.Duration
	}{
		{
			// nearest rank on n=10: rank(50) = 5, rank(95) = 10, rank(99) = 10
			name:      "ten samples",
			durations: []time.Duration{ms(1), ms(2), ms(3), ms(4), ms(5), ms(6), ms(7), ms(8), ms(9), ms(10)},
			p50:       ms(5),
			p95:       ms(10),
			p99:       ms(10),
		},
		{
			// n=20: rank(50) = 10, rank(95) = 19, rank(99) = 20
			name: "twenty samples",
			durations: []time.Duration{
				ms(1), ms(2), ms(3), ms(4), ms(5), ms(6), ms(7), ms(8), ms(9), ms(10),
				ms(11), ms(12), ms(13), ms(14), ms(15), ms(16), ms(17), ms(18), ms(19), ms(20),
			},
			p50: ms(10),
			p95: ms(19),
			p99: ms(20),
		},
		{
			// order of arrival must not matter
			name:      "unsorted input",
			durations: []time.Duration{ms(9), ms(1), ms(5), ms(3), ms(7), ms(2), ms(8), ms(4), ms(10), ms(6)},
			p50:       ms(5),
			p95:       ms(10),
			p99:       ms(10),
		},
		{
			name:      "single sample",
			durations: []time.Duration{ms(7)},
			p50:       ms(7),
			p95:       ms(7),
			p99:       ms(7),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var timer FrameTimer
			fillTimer(&timer, minWarmupFrames, tt.durations)

			stats, err := timer.Collect()
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}

			if stats.Warmup != minWarmupFrames {
				t.Errorf("Warmup = %d, want %d", stats.Warmup, minWarmupFrames)
			}

			if stats.Frames != len(tt.durations) {
				t.Errorf("Frames = %d, want %d", stats.Frames, len(tt.durations))
			}

			if stats.P50 != tt.p50 {
				t.Errorf("P50 = %v, want %v", stats.P50, tt.p50)
			}

			if stats.P95 != tt.p95 {
				t.Errorf("P95 = %v, want %v", stats.P95, tt.p95)
			}

			if stats.P99 != tt.p99 {
				t.Errorf("P99 = %v, want %v", stats.P99, tt.p99)
			}
		})
	}
}

func TestMeanFPS(t *testing.T) {
	var timer FrameTimer

	// constant 10ms frames after warm-up
	durations := make([]time.Duration, 20)
	for i := range durations {
		durations[i] = 10 * time.Millisecond
	}

	fillTimer(&timer, minWarmupFrames, durations)

	stats, err := timer.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if got, want := stats.MeanFPS, 100.0; got < want-0.01 || got > want+0.01 {
		t.Errorf("MeanFPS = %v, want %v", got, want)
	}
}

func TestCollectConsumesSamplesOnce(t *testing.T) {
	var timer FrameTimer
	fillTimer(&timer, minWarmupFrames, []time.Duration{time.Millisecond, time.Millisecond})

	if _, err := timer.Collect(); err != nil {
		t.Fatalf("first Collect() error = %v", err)
	}

	if _, err := timer.Collect(); err == nil {
		t.Error("second Collect() did not fail")
	}
}

func TestAdaptiveWarmup(t *testing.T) {
	// 200 samples: warm-up grows to n/20 = 10
	var timer FrameTimer

	durations := make([]time.Duration, 200)
	for i := range durations {
		durations[i] = time.Millisecond
	}

	fillTimer(&timer, 0, durations)

	stats, err := timer.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if stats.Warmup != 10 {
		t.Errorf("Warmup = %d, want 10 for 200 samples", stats.Warmup)
	}

	if stats.Frames != 190 {
		t.Errorf("Frames = %d, want 190", stats.Frames)
	}
}

func TestShortRunKeepsAllSamples(t *testing.T) {
	// fewer samples than the minimum warm-up, nothing is dropped
	var timer FrameTimer
	fillTimer(&timer, 0, []time.Duration{time.Millisecond, 2 * time.Millisecond})

	stats, err := timer.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if stats.Warmup != 0 {
		t.Errorf("Warmup = %d, want 0 for a short run", stats.Warmup)
	}

	if stats.Frames != 2 {
		t.Errorf("Frames = %d, want 2", stats.Frames)
	}
}

func TestCollectWithoutSamples(t *testing.T) {
	var timer FrameTimer

	if _, err := timer.Collect(); err == nil {
		t.Error("Collect() without samples did not fail")
	}
}

func TestRecentFPS(t *testing.T) {
	var timer FrameTimer

	// 10 frames at 20ms, then 10 frames at 10ms
	now := time.Unix(0, 0)
	timer.Tick(now)

	for i := 0; i < 10; i++ {
		now = now.Add(20 * time.Millisecond)
		timer.Tick(now)
	}

	for i := 0; i < 10; i++ {
		now = now.Add(10 * time.Millisecond)
		timer.Tick(now)
	}

	if got, want := timer.RecentFPS(10), 100.0; got < want-0.01 || got > want+0.01 {
		t.Errorf("RecentFPS(10) = %v, want %v", got, want)
	}
}
