package realtime

import "sync"

// MetricBuffer is a bounded in-memory window of the most recent values of
// one metric. When full, the oldest value falls off the front.
type MetricBuffer struct {
	mu       sync.Mutex
	values   []float64
	capacity int
}

// NewMetricBuffer creates a buffer holding at most capacity values.
func NewMetricBuffer(capacity int) *MetricBuffer {
	if capacity <= 0 {
		capacity = 500
	}
	return &MetricBuffer{
		values:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

func (b *MetricBuffer) Add(v float64) {
	b.mu.Lock()
	if len(b.values) == b.capacity {
		copy(b.values, b.values[1:])
		b.values = b.values[:len(b.values)-1]
	}
	b.values = append(b.values, v)
	b.mu.Unlock()
}

func (b *MetricBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.values)
}

// Snapshot copies the current window, oldest first.
func (b *MetricBuffer) Snapshot() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.values) == 0 {
		return nil
	}
	out := make([]float64, len(b.values))
	copy(out, b.values)
	return out
}
