package dashboard

import (
	"sync"
	"time"
)

// DefaultHistorySize is the number of cycles of latency kept per source.
const DefaultHistorySize = 60

// History records per-source fetch latency across cycles using ring buffers.
// Safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	size    int
	sources map[string]*sourceHistory
}

type sourceHistory struct {
	latency  *ringBuffer // milliseconds
	failures int
	total    int
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history keeping size samples per source.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:    size,
		sources: make(map[string]*sourceHistory),
	}
}

// Push records one settled fetch.
func (h *History) Push(sourceID string, latency time.Duration, failed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	hist, ok := h.sources[sourceID]
	if !ok {
		hist = &sourceHistory{latency: newRingBuffer(h.size)}
		h.sources[sourceID] = hist
	}
	hist.latency.push(float64(latency.Milliseconds()))
	hist.total++
	if failed {
		hist.failures++
	}
}

// Latency returns up to count recent latencies in milliseconds, oldest first.
func (h *History) Latency(sourceID string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if hist, ok := h.sources[sourceID]; ok {
		return hist.latency.getLast(count)
	}
	return nil
}

// FailureRate returns the share of recorded fetches for sourceID that failed.
func (h *History) FailureRate(sourceID string) float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.sources[sourceID]
	if !ok || hist.total == 0 {
		return 0
	}
	return float64(hist.failures) / float64(hist.total)
}

// Count returns how many samples are stored for sourceID.
func (h *History) Count(sourceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if hist, ok := h.sources[sourceID]; ok {
		return hist.latency.count
	}
	return 0
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

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)
	// head points to the next write position
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
