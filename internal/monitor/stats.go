package monitor

import (
	"math"
	"sync"

	"github.com/guregu/null/v5"
	"github.com/rileyhilliard/pingnodes/internal/probe"
)

// Snapshot is a point-in-time copy of an endpoint's statistics. Latency
// fields are in milliseconds and invalid until the first success; Last is
// also invalid right after a failure.
type Snapshot struct {
	Success int
	Failure int
	Total   int

	Last null.Float
	Min  null.Float
	Avg  null.Float
	Max  null.Float

	// Glyphs is the trailing outcome window, oldest first.
	Glyphs string
	// Recent holds the latencies of the same window.
	Recent []null.Float
}

// SuccessRate returns the fraction of successful probes, 1 when nothing
// has been probed yet.
func (s Snapshot) SuccessRate() float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Success) / float64(s.Total)
}

// Stats accumulates outcomes for one endpoint over the whole run. Record is
// called only by the endpoint's monitor; readers go through Snapshot.
type Stats struct {
	mu sync.RWMutex

	success int
	failure int
	last    null.Float
	min     float64
	max     float64
	sum     float64

	history  *History
	outcomes []probe.Outcome
}

// NewStats creates empty statistics with a glyph window of the given size.
func NewStats(window int) *Stats {
	return &Stats{
		min:     math.Inf(1),
		history: NewHistory(window),
	}
}

// Record adds one outcome.
func (s *Stats) Record(o probe.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.OK() {
		ms := o.Latency().Float64
		s.success++
		s.last = null.FloatFrom(ms)
		s.sum += ms
		if ms < s.min {
			s.min = ms
		}
		if ms > s.max {
			s.max = ms
		}
	} else {
		s.failure++
		s.last = null.Float{}
	}

	s.history.Push(o)
	s.outcomes = append(s.outcomes, o)
}

// Snapshot returns a consistent copy of the current statistics.
func (s *Stats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Success: s.success,
		Failure: s.failure,
		Total:   s.success + s.failure,
		Last:    s.last,
		Glyphs:  s.history.Glyphs(),
		Recent:  s.history.Latencies(),
	}
	if s.success > 0 {
		snap.Min = null.FloatFrom(s.min)
		snap.Max = null.FloatFrom(s.max)
		// Rounding in sum can push the mean just outside [min, max].
		avg := math.Min(math.Max(s.sum/float64(s.success), s.min), s.max)
		snap.Avg = null.FloatFrom(avg)
	}
	return snap
}

// Outcomes returns every outcome recorded so far, in order.
func (s *Stats) Outcomes() []probe.Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]probe.Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}
