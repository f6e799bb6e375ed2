// Package progress estimates how long the rest of a crawl will take.
package progress

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Window is how many per-item samples the moving average keeps.
const Window = 5

type Stats struct {
	Completed int
	Total     int
	// Percent is in [0, 100].
	Percent   float64
	Elapsed   time.Duration
	Remaining time.Duration
	// Throughput is items per second.
	Throughput float64
}

type Tracker struct {
	mu      sync.Mutex
	total   int
	start   time.Time
	now     func() time.Time
	samples []time.Duration
}

func NewTracker(total int) *Tracker {
	return newTracker(total, time.Now)
}

func newTracker(total int, now func() time.Time) *Tracker {
	return &Tracker{total: total, start: now(), now: now}
}

// Update records that completed items are done and returns the new estimate.
// Each call with completed > 0 adds one sample of elapsed/completed; the
// estimate averages the last Window samples.
func (t *Tracker) Update(completed int) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := t.now().Sub(t.start)
	s := Stats{Completed: completed, Total: t.total, Elapsed: elapsed}

	if t.total > 0 {
		s.Percent = math.Min(100, float64(completed)/float64(t.total)*100)
	}

	if completed > 0 {
		t.samples = append(t.samples, elapsed/time.Duration(completed))
		if len(t.samples) > Window {
			t.samples = t.samples[len(t.samples)-Window:]
		}
	}

	avg := t.average()
	if avg > 0 {
		s.Throughput = float64(time.Second) / float64(avg)
		if left := t.total - completed; left > 0 {
			s.Remaining = avg * time.Duration(left)
		}
	}

	return s
}

func (t *Tracker) average() time.Duration {
	if len(t.samples) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range t.samples {
		sum += d
	}

	return sum / time.Duration(len(t.samples))
}

// FormatDuration renders d as "42s", "3m 5s" or "1h 20m". Seconds are
// rounded up below a minute.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(math.Ceil(d.Seconds())))
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d/time.Minute), int(d%time.Minute/time.Second))
	default:
		return fmt.Sprintf("%dh %dm", int(d/time.Hour), int(d%time.Hour/time.Minute))
	}
}
