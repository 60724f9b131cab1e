// Package rates converts monotonic cumulative counters (bytes transferred,
// CPU ticks) into instantaneous rates across irregular polling intervals.
package rates

import (
	"sync"
	"time"
)

// Sample is the result of one observation: the cumulative value as seen
// and the per-second rate since the previous observation.
type Sample struct {
	Cumulative float64
	Rate       float64
}

// record is the stored baseline for one counter.
type record struct {
	cumulative float64
	at         time.Time
}

// Tracker derives rates from cumulative counters keyed by metric identity
// (e.g., "eth0:rx"). One Tracker belongs to one collector; keys are scoped
// to that collector's target, never shared globally.
type Tracker struct {
	mu   sync.Mutex
	prev map[string]record
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{prev: make(map[string]record)}
}

// Observe records a cumulative counter value at the given time and returns
// the rate per second since the previous observation for key.
//
// The first observation for a key yields rate 0. A non-positive elapsed
// interval (out-of-order or duplicate sample) yields rate 0 without
// touching the stored baseline. A decrease in the counter (reset/restart)
// yields rate 0, never negative, and the baseline still moves to the new
// value so the next delta is computed from the post-reset counter.
func (t *Tracker) Observe(key string, cumulative float64, at time.Time) Sample {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.prev[key]
	if !ok {
		t.prev[key] = record{cumulative: cumulative, at: at}
		return Sample{Cumulative: cumulative}
	}

	elapsed := at.Sub(prev.at).Seconds()
	if elapsed <= 0 {
		return Sample{Cumulative: cumulative}
	}

	delta := cumulative - prev.cumulative
	if delta < 0 {
		delta = 0
	}

	t.prev[key] = record{cumulative: cumulative, at: at}
	return Sample{Cumulative: cumulative, Rate: delta / elapsed}
}

// Forget drops the stored baseline for key. The next Observe for that key
// behaves like a first observation.
func (t *Tracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.prev, key)
}

// Len returns the number of tracked counters.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.prev)
}
