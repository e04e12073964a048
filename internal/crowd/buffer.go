package crowd

import (
	"sync"

	"github.com/technosupport/ts-sentinel/internal/data"
	"github.com/technosupport/ts-sentinel/internal/metrics"
)

// DefaultCapacity bounds retained crowd history. Samples are high-frequency
// and ephemeral; long-window crowd analytics cannot exceed this history.
const DefaultCapacity = 100

// Buffer is a fixed-capacity newest-first ring of crowd samples. Single
// writer (the generator), many readers (aggregator, query API). Intentionally
// volatile: no persistence, no failure modes.
type Buffer struct {
	mu      sync.RWMutex
	samples []data.CrowdSample
	head    int
	size    int
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{samples: make([]data.CrowdSample, capacity)}
}

// Append inserts at the front, evicting the oldest sample when full.
func (b *Buffer) Append(s data.CrowdSample) {
	b.mu.Lock()
	b.head = (b.head - 1 + len(b.samples)) % len(b.samples)
	b.samples[b.head] = s
	if b.size < len(b.samples) {
		b.size++
	}
	metrics.CrowdBufferSize.Set(float64(b.size))
	b.mu.Unlock()
}

// Recent returns up to n samples, newest first.
func (b *Buffer) Recent(n int) []data.CrowdSample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n > b.size {
		n = b.size
	}
	if n < 0 {
		n = 0
	}
	out := make([]data.CrowdSample, n)
	for i := 0; i < n; i++ {
		out[i] = b.samples[(b.head+i)%len(b.samples)]
	}
	return out
}

// Latest returns the newest sample, if any.
func (b *Buffer) Latest() (data.CrowdSample, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.size == 0 {
		return data.CrowdSample{}, false
	}
	return b.samples[b.head], true
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

func (b *Buffer) Cap() int { return len(b.samples) }
