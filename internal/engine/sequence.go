package engine

import "sync/atomic"

// Sequencer hands out globally monotonic sequence numbers. Every order
// and every trade on the exchange is stamped from the same Sequencer, so
// replaying a recorded run of submissions and clearing calls reproduces
// identical results.
type Sequencer struct {
	n atomic.Uint64
}

// NewSequencer creates a Sequencer starting at 1.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Next returns the next sequence number. Safe for concurrent use.
func (s *Sequencer) Next() uint64 {
	return s.n.Add(1)
}

// Current returns the last sequence number handed out.
func (s *Sequencer) Current() uint64 {
	return s.n.Load()
}
