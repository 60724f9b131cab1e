package cache

import (
	"reflect"
	"time"
)

// Priority controls how aggressively an entry is evicted under capacity
// pressure. Lower priorities are evicted first.
type Priority int

const (
	// PriorityLow is for rarely changing data (e.g., disk inventory).
	PriorityLow Priority = iota
	// PriorityMedium is for semi-stable data (e.g., container listing).
	PriorityMedium
	// PriorityHigh is for frequently changing data (e.g., CPU usage).
	PriorityHigh
	// PriorityCritical is for data that must stay fresh (e.g., array status).
	PriorityCritical
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// DefaultTTL returns the time-to-live used when Set is called without an
// explicit TTL. Stable data lives longer.
func (p Priority) DefaultTTL() time.Duration {
	switch p {
	case PriorityLow:
		return time.Hour
	case PriorityHigh:
		return 2 * time.Minute
	case PriorityCritical:
		return 30 * time.Second
	default:
		return 10 * time.Minute
	}
}

// priorities lists all priority levels in eviction order.
var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Entry is a cached value with its bookkeeping metadata.
type Entry struct {
	Key           string
	Value         interface{}
	TTL           time.Duration
	Priority      Priority
	CreatedAt     time.Time
	LastAccessed  time.Time
	AccessCount   int64
	EstimatedSize int64
}

// expired reports whether the entry's TTL has elapsed at the given time.
func (e *Entry) expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) > e.TTL
}

// touch records an access at the given time.
func (e *Entry) touch(now time.Time) {
	e.LastAccessed = now
	e.AccessCount++
}

// Size estimation fallbacks for values that can't be measured cheaply.
const (
	sizeOpaque   = 512  // conservative guess for struct-like values
	sizeFallback = 1024 // used when estimation panics
)

// estimateSize returns a best-effort byte size for a value. It must never
// panic: reflection over exotic types recovers to a fixed constant.
func estimateSize(value interface{}) (size int64) {
	defer func() {
		if r := recover(); r != nil {
			size = sizeFallback
		}
	}()

	switch v := value.(type) {
	case nil:
		return 8
	case string:
		return int64(len(v))
	case []byte:
		return int64(len(v))
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return 8
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		var total int64
		for i := 0; i < rv.Len(); i++ {
			total += estimateSize(rv.Index(i).Interface())
		}
		return total
	case reflect.Map:
		var total int64
		iter := rv.MapRange()
		for iter.Next() {
			total += estimateSize(iter.Key().Interface())
			total += estimateSize(iter.Value().Interface())
		}
		return total
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return 8
		}
		return estimateSize(rv.Elem().Interface())
	default:
		return sizeOpaque
	}
}
