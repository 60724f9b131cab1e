package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remon-cli/remon/internal/logger"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestStore(t *testing.T, maxSize int64, cleanupInterval time.Duration) (*Store, *fakeClock) {
	t.Helper()
	s := New(maxSize, cleanupInterval, logger.Noop())
	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s.now = clk.Now
	s.lastCleanup = clk.t
	return s, clk
}

func TestSetGet(t *testing.T) {
	s, _ := newTestStore(t, 1024, time.Minute)

	s.Set("cpu", 42.5, 0, PriorityHigh)

	v, ok := s.Get("cpu")
	require.True(t, ok)
	assert.Equal(t, 42.5, v)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestGetReturnsMostRecentValue(t *testing.T) {
	s, _ := newTestStore(t, 4096, time.Minute)

	s.Set("k", "first", 0, PriorityMedium)
	s.Set("k", "second", 0, PriorityMedium)

	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestTTLExpiry(t *testing.T) {
	s, clk := newTestStore(t, 4096, time.Hour)

	s.Set("x", "v", time.Second, PriorityLow)
	statsBefore := s.GetStats()

	clk.Advance(2 * time.Second)

	v := s.GetOrDefault("x", "fallback")
	assert.Equal(t, "fallback", v)

	stats := s.GetStats()
	assert.Equal(t, statsBefore.MissCount+1, stats.MissCount)
	assert.Equal(t, 0, stats.ItemCount, "expired entry should be removed on read")
}

func TestDefaultTTLPerPriority(t *testing.T) {
	tests := []struct {
		priority Priority
		want     time.Duration
	}{
		{PriorityLow, time.Hour},
		{PriorityMedium, 10 * time.Minute},
		{PriorityHigh, 2 * time.Minute},
		{PriorityCritical, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.priority.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.priority.DefaultTTL())
		})
	}
}

func TestSizeAccountingOnReplace(t *testing.T) {
	s, _ := newTestStore(t, 1<<20, time.Hour)

	s.SetSized("k", "a", 0, PriorityMedium, 300)
	assert.Equal(t, int64(300), s.GetStats().CurrentSizeBytes)

	s.SetSized("k", "b", 0, PriorityMedium, 100)
	assert.Equal(t, int64(100), s.GetStats().CurrentSizeBytes)

	s.Delete("k")
	assert.Equal(t, int64(0), s.GetStats().CurrentSizeBytes)
}

func TestCapacityEvictionHysteresis(t *testing.T) {
	// Five 300-byte entries against a 1000-byte cap. Every Set must leave
	// usage within the cap, and the insert that crosses the cap must pull
	// usage all the way down to the 70% hysteresis target.
	s, _ := newTestStore(t, 1000, time.Hour)

	var sawEviction bool
	prev := int64(0)
	for i := 0; i < 5; i++ {
		s.SetSized(fmt.Sprintf("item-%d", i), "v", time.Hour, PriorityMedium, 300)

		size := s.GetStats().CurrentSizeBytes
		assert.LessOrEqual(t, size, int64(1000), "usage must never exceed the cap after Set")
		if size < prev+300 {
			// Cleanup fired on this insert; it must have reached the target.
			assert.LessOrEqual(t, size, int64(700), "eviction should reach the hysteresis target")
			sawEviction = true
		}
		prev = size
	}
	assert.True(t, sawEviction, "five 300-byte inserts against a 1000-byte cap must evict")
}

func TestEvictionOrderPriorityBeforeRecency(t *testing.T) {
	// A low-priority entry is evicted before a high-priority one even when
	// the high-priority entry was accessed less recently.
	s, clk := newTestStore(t, 1000, time.Hour)

	s.SetSized("b-high", "v", time.Hour, PriorityHigh, 300)
	clk.Advance(time.Minute)
	s.SetSized("a-low", "v", time.Hour, PriorityLow, 500)
	clk.Advance(time.Minute)

	// Push over the cap to force capacity eviction.
	s.SetSized("filler", "v", time.Hour, PriorityCritical, 300)

	_, lowOK := s.Get("a-low")
	_, highOK := s.Get("b-high")
	assert.False(t, lowOK, "low priority entry should be evicted first")
	assert.True(t, highOK, "high priority entry should survive")
}

func TestExpiredRemovalPrecedesCapacityEviction(t *testing.T) {
	s, clk := newTestStore(t, 1000, time.Hour)

	s.SetSized("expired", "v", time.Second, PriorityCritical, 600)
	clk.Advance(time.Minute)

	// This insert crosses the 75% trigger. The sweep must reclaim the
	// expired critical entry instead of evicting the live low one.
	s.SetSized("live", "v", time.Hour, PriorityLow, 300)

	_, ok := s.Get("live")
	assert.True(t, ok, "live entry must not be evicted while expired garbage remains")
	assert.LessOrEqual(t, s.GetStats().CurrentSizeBytes, int64(700))
}

func TestPeriodicCleanup(t *testing.T) {
	s, clk := newTestStore(t, 1<<20, time.Minute)

	s.Set("short", "v", time.Second, PriorityMedium)
	clk.Advance(2 * time.Minute)

	// Any Set after the interval elapses runs the sweep.
	s.Set("trigger", "v", time.Hour, PriorityMedium)

	s.mu.Lock()
	_, stillThere := s.entries["short"]
	s.mu.Unlock()
	assert.False(t, stillThere, "expired entry should be swept")
}

func TestGetWithFallback(t *testing.T) {
	t.Run("miss invokes producer and caches", func(t *testing.T) {
		s, _ := newTestStore(t, 4096, time.Hour)

		calls := 0
		producer := func() (interface{}, error) {
			calls++
			return "produced", nil
		}

		v := s.GetWithFallback("k", producer, time.Minute, PriorityMedium)
		assert.Equal(t, "produced", v)
		assert.Equal(t, 1, calls)

		// Second call is served from cache.
		v = s.GetWithFallback("k", producer, time.Minute, PriorityMedium)
		assert.Equal(t, "produced", v)
		assert.Equal(t, 1, calls)
	})

	t.Run("producer error is logged and swallowed", func(t *testing.T) {
		log := logger.NewBufferLogger()
		s := New(4096, time.Hour, log)

		v := s.GetWithFallback("k", func() (interface{}, error) {
			return nil, errors.New("docker probe failed")
		}, time.Minute, PriorityMedium)

		assert.Nil(t, v)
		assert.True(t, log.HasLevel("error"))

		_, ok := s.Get("k")
		assert.False(t, ok, "cache must be left unchanged on producer error")
	})

	t.Run("nil produced value is not cached", func(t *testing.T) {
		s, _ := newTestStore(t, 4096, time.Hour)

		v := s.GetWithFallback("k", func() (interface{}, error) {
			return nil, nil
		}, time.Minute, PriorityMedium)

		assert.Nil(t, v)
		assert.Equal(t, 0, s.GetStats().ItemCount)
	})
}

func TestInvalidateByPrefix(t *testing.T) {
	s, _ := newTestStore(t, 1<<20, time.Hour)

	s.Set("docker:web", 1, 0, PriorityMedium)
	s.Set("docker:db", 2, 0, PriorityMedium)
	s.Set("disk:sda", 3, 0, PriorityLow)

	removed := s.InvalidateByPrefix("docker:")
	assert.Equal(t, 2, removed)

	_, ok := s.Get("docker:web")
	assert.False(t, ok)
	_, ok = s.Get("disk:sda")
	assert.True(t, ok)

	assert.Equal(t, 0, s.InvalidateByPrefix("docker:"))
}

func TestClearPreservesCounters(t *testing.T) {
	s, _ := newTestStore(t, 4096, time.Hour)

	s.Set("k", "v", 0, PriorityMedium)
	s.Get("k")       // hit
	s.Get("missing") // miss

	s.Clear()

	stats := s.GetStats()
	assert.Equal(t, 0, stats.ItemCount)
	assert.Equal(t, int64(0), stats.CurrentSizeBytes)
	assert.Equal(t, int64(1), stats.HitCount)
	assert.Equal(t, int64(1), stats.MissCount)
}

func TestStatsHitRate(t *testing.T) {
	s, _ := newTestStore(t, 4096, time.Hour)

	// No requests yet: rate must be 0, not NaN.
	assert.Equal(t, float64(0), s.GetStats().HitRatePercent)

	s.Set("k", "v", 0, PriorityHigh)
	s.Get("k")
	s.Get("k")
	s.Get("nope")
	s.Get("nope")

	stats := s.GetStats()
	assert.Equal(t, int64(2), stats.HitCount)
	assert.Equal(t, int64(2), stats.MissCount)
	assert.InDelta(t, 50.0, stats.HitRatePercent, 0.001)
}

func TestStatsItemsByPriority(t *testing.T) {
	s, _ := newTestStore(t, 1<<20, time.Hour)

	s.Set("a", 1, 0, PriorityLow)
	s.Set("b", 2, 0, PriorityLow)
	s.Set("c", 3, 0, PriorityCritical)

	stats := s.GetStats()
	assert.Equal(t, 2, stats.ItemsByPriority["low"])
	assert.Equal(t, 0, stats.ItemsByPriority["medium"])
	assert.Equal(t, 0, stats.ItemsByPriority["high"])
	assert.Equal(t, 1, stats.ItemsByPriority["critical"])
}

func TestEstimateSize(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int64
	}{
		{"string", "hello", 5},
		{"bytes", []byte{1, 2, 3}, 3},
		{"int", 7, 8},
		{"float", 3.14, 8},
		{"bool", true, 8},
		{"nil", nil, 8},
		{"string slice", []string{"ab", "cd"}, 4},
		{"map", map[string]string{"k": "vv"}, 3},
		{"struct falls back to constant", struct{ A int }{1}, sizeOpaque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, estimateSize(tt.value))
		})
	}
}

func TestEstimateSizeNeverPanics(t *testing.T) {
	// Channels/functions are exotic for a cache; estimation must still
	// return something positive instead of panicking.
	assert.NotPanics(t, func() {
		ch := make(chan int)
		assert.Positive(t, estimateSize(ch))
		assert.Positive(t, estimateSize(func() {}))
	})
}

func TestConcurrentAccess(t *testing.T) {
	s := New(1<<20, time.Hour, logger.Noop())
	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func(n int) {
			key := fmt.Sprintf("k-%d", n)
			for j := 0; j < 100; j++ {
				s.Set(key, j, 0, PriorityMedium)
				s.Get(key)
				s.GetStats()
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(0, 0, nil)
	require.NotNil(t, s)

	stats := s.GetStats()
	assert.Equal(t, int64(DefaultMaxSizeBytes), stats.MaxSizeBytes)
}
