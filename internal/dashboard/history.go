package dashboard

import (
	"sync"

	"github.com/remon-cli/remon/internal/collector"
)

// DefaultHistorySize is the default number of data points retained per metric.
const DefaultHistorySize = 120

// History keeps ring buffers of recent metric values for sparkline rendering.
type History struct {
	mu  sync.Mutex
	cpu *ringBuffer
	mem *ringBuffer
	rx  *ringBuffer
	tx  *ringBuffer
}

// NewHistory creates a history tracker with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		cpu: newRingBuffer(size),
		mem: newRingBuffer(size),
		rx:  newRingBuffer(size),
		tx:  newRingBuffer(size),
	}
}

// Push records the metrics of one snapshot.
func (h *History) Push(snap *collector.Snapshot) {
	if snap == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.cpu.push(snap.CPU.UsagePercent)
	h.mem.push(snap.Memory.UsagePercent)

	var rx, tx float64
	for _, iface := range snap.Network {
		// Loopback traffic is noise here
		if iface.Name == "lo" || iface.Name == "lo0" {
			continue
		}
		rx += iface.RxBytesPerSec
		tx += iface.TxBytesPerSec
	}
	h.rx.push(rx)
	h.tx.push(tx)
}

// CPU returns the last count CPU usage values, oldest first.
func (h *History) CPU(count int) []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cpu.last(count)
}

// Memory returns the last count memory usage values, oldest first.
func (h *History) Memory(count int) []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mem.last(count)
}

// NetworkRates returns the last count combined receive and transmit
// rates in bytes per second, oldest first.
func (h *History) NetworkRates(count int) (rx, tx []float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rx.last(count), h.tx.last(count)
}

// Len returns the number of samples recorded so far.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cpu.count
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// last returns the last count values in chronological order (oldest first).
func (r *ringBuffer) last(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head points to the next write position, so the most recent value
	// is at head-1
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}

	return result
}
