package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkedlist/snapshot"
)

// Snapshot writes every list to the snapshot store and truncates the
// mutation log up to the covered sequence. It returns that sequence.
func (s *ListService) Snapshot() (uint64, error) {
	if s.deps.Snapshots == nil {
		return 0, errors.New("snapshot: no store configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.deps.Seq.Current()
	snap := snapshot.Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Lists:   make([]snapshot.ListEntry, 0, len(s.lists)),
	}
	for name, l := range s.lists {
		snap.Lists = append(snap.Lists, snapshot.ListEntry{Name: name, Values: l.Values()})
	}

	if err := s.deps.Snapshots.Write(snap); err != nil {
		return 0, fmt.Errorf("snapshot: %w", err)
	}

	// Truncate the log after the snapshot is durable
	if s.deps.WAL != nil {
		if err := s.deps.WAL.TruncateBefore(seq); err != nil {
			return seq, fmt.Errorf("snapshot: truncate log: %w", err)
		}
	}

	s.log.WithField("seq", seq).Info("snapshot written")
	return seq, nil
}

// RunSnapshotJob snapshots on every tick until ctx is done. Ticks where
// the sequence has not moved since the last snapshot, or since Restore,
// are skipped.
func (s *ListService) RunSnapshotJob(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	last := s.deps.Seq.Current()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if s.deps.Seq.Current() == last {
				continue
			}
			seq, err := s.Snapshot()
			if err != nil {
				s.log.WithError(err).Error("snapshot failed")
				continue
			}
			last = seq
		}
	}
}
