// Package sequence generates the strictly monotonic event sequence that
// orders WAL records and outbox keys. Sequences are never reused; after a
// WAL replay the sequencer resumes from the last replayed value.
package sequence

import "sync/atomic"

type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer that will issue start+1 first.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Reset moves the sequencer to v. Only valid during replay, before the
// sequencer is shared.
func (s *Sequencer) Reset(v uint64) {
	s.next.Store(v)
}
