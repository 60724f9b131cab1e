// Package cache provides a bounded in-memory store with TTL and
// priority-aware eviction. It keeps remote-query results between polling
// cycles without letting memory grow unbounded: expired entries are
// dropped lazily on read and in periodic sweeps, and under capacity
// pressure the lowest-priority, least-recently-accessed entries go first.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/remon-cli/remon/internal/logger"
)

const (
	// DefaultMaxSizeBytes bounds the store at 50MB unless configured.
	DefaultMaxSizeBytes = 50 * 1024 * 1024
	// DefaultCleanupInterval is how often the periodic sweep runs.
	DefaultCleanupInterval = 5 * time.Minute

	// cleanupTriggerRatio starts a sweep when usage crosses 75% of max.
	cleanupTriggerRatio = 0.75
	// evictTargetRatio is the hysteresis target: capacity eviction stops
	// once usage drops to 70% of max, so the next insert doesn't
	// immediately re-trigger a sweep.
	evictTargetRatio = 0.70
)

// Store is a bounded key/value cache. All operations are safe for
// concurrent use; a single mutex guards the whole map since cleanup
// scans and mutates all of it.
type Store struct {
	mu              sync.Mutex
	entries         map[string]*Entry
	maxSize         int64
	cleanupInterval time.Duration
	currentSize     int64
	lastCleanup     time.Time
	hits            int64
	misses          int64
	log             logger.Logger

	// now is overridable in tests to exercise TTL behavior without sleeping.
	now func() time.Time
}

// New creates a Store. Zero maxSize or cleanupInterval fall back to the
// package defaults. A nil log discards messages.
func New(maxSize int64, cleanupInterval time.Duration, log logger.Logger) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxSizeBytes
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	if log == nil {
		log = logger.Noop()
	}
	s := &Store{
		entries:         make(map[string]*Entry),
		maxSize:         maxSize,
		cleanupInterval: cleanupInterval,
		log:             log,
		now:             time.Now,
	}
	s.lastCleanup = s.now()
	return s
}

// Set stores a value under key. A zero ttl uses the priority's default.
// Replacing an existing key keeps size accounting exact: the old entry's
// size is subtracted before the new one is added. May trigger a cleanup
// sweep before returning.
func (s *Store) Set(key string, value interface{}, ttl time.Duration, priority Priority) {
	s.SetSized(key, value, ttl, priority, 0)
}

// SetSized is Set with an explicit size in bytes. A non-positive size
// falls back to best-effort estimation.
func (s *Store) SetSized(key string, value interface{}, ttl time.Duration, priority Priority, size int64) {
	if ttl <= 0 {
		ttl = priority.DefaultTTL()
	}
	if size <= 0 {
		size = estimateSize(value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if old, ok := s.entries[key]; ok {
		s.currentSize -= old.EstimatedSize
	}
	s.entries[key] = &Entry{
		Key:           key,
		Value:         value,
		TTL:           ttl,
		Priority:      priority,
		CreatedAt:     now,
		LastAccessed:  now,
		EstimatedSize: size,
	}
	s.currentSize += size

	s.maybeCleanup(now)
}

// Get returns the value for key and whether it was present and live.
// An expired entry is removed and counts as a miss.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}

	now := s.now()
	if entry.expired(now) {
		s.removeLocked(key)
		s.misses++
		return nil, false
	}

	entry.touch(now)
	s.hits++
	return entry.Value, true
}

// GetOrDefault returns the cached value for key, or def on a miss.
func (s *Store) GetOrDefault(key string, def interface{}) interface{} {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// GetWithFallback returns the cached value for key, invoking producer on a
// miss. A producer error is logged and yields nil without touching the
// cache; a non-nil produced value is stored under ttl/priority first.
func (s *Store) GetWithFallback(key string, producer func() (interface{}, error), ttl time.Duration, priority Priority) interface{} {
	if v, ok := s.Get(key); ok {
		return v
	}

	value, err := producer()
	if err != nil {
		s.log.Error("fallback for cache key %s: %v", key, err)
		return nil
	}
	if value != nil {
		s.Set(key, value, ttl, priority)
	}
	return value
}

// Delete removes key from the store if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(key)
}

// InvalidateByPrefix removes every entry whose key starts with prefix and
// returns how many were removed.
func (s *Store) InvalidateByPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			s.removeLocked(key)
			removed++
		}
	}
	return removed
}

// Clear empties the store. Hit/miss counters are preserved.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry)
	s.currentSize = 0
	s.log.Debug("cache cleared")
}

// Stats is a point-in-time snapshot of cache health.
type Stats struct {
	ItemCount        int            `json:"item_count"`
	CurrentSizeBytes int64          `json:"current_size_bytes"`
	MaxSizeBytes     int64          `json:"max_size_bytes"`
	UsagePercent     float64        `json:"usage_percent"`
	HitCount         int64          `json:"hit_count"`
	MissCount        int64          `json:"miss_count"`
	HitRatePercent   float64        `json:"hit_rate_percent"`
	ItemsByPriority  map[string]int `json:"items_by_priority"`
}

// GetStats returns current cache statistics.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	byPriority := make(map[string]int, len(priorities))
	for _, p := range priorities {
		byPriority[p.String()] = 0
	}
	for _, entry := range s.entries {
		byPriority[entry.Priority.String()]++
	}

	var hitRate float64
	if total := s.hits + s.misses; total > 0 {
		hitRate = float64(s.hits) / float64(total) * 100
	}

	return Stats{
		ItemCount:        len(s.entries),
		CurrentSizeBytes: s.currentSize,
		MaxSizeBytes:     s.maxSize,
		UsagePercent:     float64(s.currentSize) / float64(s.maxSize) * 100,
		HitCount:         s.hits,
		MissCount:        s.misses,
		HitRatePercent:   hitRate,
		ItemsByPriority:  byPriority,
	}
}

// removeLocked deletes key and adjusts size accounting. Caller holds mu.
func (s *Store) removeLocked(key string) {
	if entry, ok := s.entries[key]; ok {
		s.currentSize -= entry.EstimatedSize
		delete(s.entries, key)
	}
}

// maybeCleanup runs a sweep when the cleanup interval has elapsed or
// usage crossed the trigger threshold. Caller holds mu.
func (s *Store) maybeCleanup(now time.Time) {
	overdue := now.Sub(s.lastCleanup) > s.cleanupInterval
	pressured := float64(s.currentSize) > float64(s.maxSize)*cleanupTriggerRatio
	if !overdue && !pressured {
		return
	}
	s.cleanup(now)
}

// cleanup removes expired entries, then, only if still over the hard
// cap, evicts live entries ordered by (priority asc, lastAccessed asc)
// until usage drops to the hysteresis target. Expired removal always runs
// first so a live entry is never evicted while expired garbage remains.
func (s *Store) cleanup(now time.Time) {
	initialCount := len(s.entries)
	initialSize := s.currentSize

	for key, entry := range s.entries {
		if entry.expired(now) {
			s.removeLocked(key)
		}
	}

	if s.currentSize > s.maxSize {
		candidates := make([]*Entry, 0, len(s.entries))
		for _, entry := range s.entries {
			candidates = append(candidates, entry)
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].Priority != candidates[j].Priority {
				return candidates[i].Priority < candidates[j].Priority
			}
			return candidates[i].LastAccessed.Before(candidates[j].LastAccessed)
		})

		target := int64(float64(s.maxSize) * evictTargetRatio)
		for _, entry := range candidates {
			if s.currentSize <= target {
				break
			}
			s.removeLocked(entry.Key)
		}
	}

	s.lastCleanup = now

	s.log.Debug("cache cleanup: removed %d items (%d bytes), %d items remain, %d/%d bytes used",
		initialCount-len(s.entries), initialSize-s.currentSize,
		len(s.entries), s.currentSize, s.maxSize)
}
