// Package instrument collects rolling frame timings and draws them as an
// on-screen overlay.
package instrument

import "fmt"

// Capacity is the number of samples a Series retains.
const Capacity = 100

// Phase tags what a timing sample measures.
type Phase int

const (
	PhaseDelta Phase = iota
	PhaseUpdate
	PhaseDraw
)

func (p Phase) String() string {
	switch p {
	case PhaseDelta:
		return "delta"
	case PhaseUpdate:
		return "update"
	case PhaseDraw:
		return "draw"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Series is a fixed-capacity FIFO of durations in seconds.
// Pushing past Capacity evicts the oldest sample.
type Series struct {
	buf   [Capacity]float64
	start int
	n     int
}

// Push appends v, evicting the oldest sample when full.
func (s *Series) Push(v float64) {
	if s.n < Capacity {
		s.buf[(s.start+s.n)%Capacity] = v
		s.n++
		return
	}
	s.buf[s.start] = v
	s.start = (s.start + 1) % Capacity
}

// Len returns the number of samples held.
func (s *Series) Len() int {
	return s.n
}

// Values returns a copy of the samples, oldest first.
func (s *Series) Values() []float64 {
	out := make([]float64, s.n)
	for i := range out {
		out[i] = s.buf[(s.start+i)%Capacity]
	}
	return out
}
