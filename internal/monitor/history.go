package monitor

import (
	"github.com/guregu/null/v5"
	"github.com/rileyhilliard/pingnodes/internal/probe"
)

// DefaultHistorySize is how many recent outcomes the glyph window shows.
const DefaultHistorySize = 60

// History is the trailing window of outcomes for one endpoint. It backs the
// glyph string of the status line and the latency sparkline. History is not
// safe for concurrent use; Stats guards it.
type History struct {
	outcomes *ringBuffer[probe.Outcome]
}

// NewHistory creates a window of the given size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{outcomes: newRingBuffer[probe.Outcome](size)}
}

// Push adds the newest outcome, dropping the oldest once the window is full.
func (h *History) Push(o probe.Outcome) {
	h.outcomes.push(o)
}

// Len returns the number of outcomes held, at most the window size.
func (h *History) Len() int {
	return h.outcomes.count
}

// Size returns the window size.
func (h *History) Size() int {
	return h.outcomes.size
}

// Glyphs returns the window as "!" and "." characters, oldest first.
func (h *History) Glyphs() string {
	all := h.outcomes.getAll()
	b := make([]byte, len(all))
	for i, o := range all {
		b[i] = o.Glyph()
	}
	return string(b)
}

// Latencies returns the window's latencies, oldest first. Failures are
// invalid entries.
func (h *History) Latencies() []null.Float {
	all := h.outcomes.getAll()
	out := make([]null.Float, len(all))
	for i, o := range all {
		out[i] = o.Latency()
	}
	return out
}

// ringBuffer is a fixed-size circular buffer.
type ringBuffer[T any] struct {
	data  []T
	head  int
	count int
	size  int
}

// newRingBuffer creates a new ring buffer with the specified capacity.
func newRingBuffer[T any](size int) *ringBuffer[T] {
	return &ringBuffer[T]{
		data: make([]T, size),
		size: size,
	}
}

// push adds a value to the ring buffer.
func (r *ringBuffer[T]) push(value T) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer[T]) getLast(count int) []T {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]T, count)

	// head points to the next write position, so the most recent value is at head-1
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}

	return result
}

// getAll returns all stored values in chronological order.
func (r *ringBuffer[T]) getAll() []T {
	return r.getLast(r.count)
}
