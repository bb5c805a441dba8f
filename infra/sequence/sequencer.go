package sequence

import "sync/atomic"

// Sequencer hands out strictly increasing sequence numbers for
// mutation log records and outbox events.
type Sequencer struct {
	last atomic.Uint64
}

// New starts after start: 0 on a fresh data dir, the last replayed
// sequence after recovery.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start)
	return s
}

func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the last issued number.
func (s *Sequencer) Current() uint64 {
	return s.last.Load()
}

// Advance moves the sequencer forward to v. It never moves backwards,
// so a snapshot older than the log cannot rewind it.
func (s *Sequencer) Advance(v uint64) {
	for {
		cur := s.last.Load()
		if v <= cur || s.last.CompareAndSwap(cur, v) {
			return
		}
	}
}
