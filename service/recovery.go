package service

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"linkedlist/domain/list"
	"linkedlist/infra/wal"
)

/*
Restore rebuilds the named lists from the latest snapshot and the
mutation log written after it.

IMPORTANT:
- This MUST run before accepting traffic
- Records refused by the allocator at write time are refused again
  and skipped, the same way the live call failed
*/
func (s *ListService) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lists) != 0 {
		return errors.New("restore: service already holds lists")
	}

	var after uint64
	if s.deps.Snapshots != nil {
		snap, err := s.deps.Snapshots.Read()
		if err != nil {
			return fmt.Errorf("restore: read snapshot: %w", err)
		}
		for _, e := range snap.Lists {
			if err := s.restoreList(e.Name, e.Values); err != nil {
				return fmt.Errorf("restore: snapshot list %s: %w", e.Name, err)
			}
		}
		after = snap.Seq
		s.deps.Seq.Advance(after)
	}

	if s.deps.WAL == nil {
		return nil
	}

	lastSeq, err := wal.Replay(s.deps.WAL.Dir(), after, s.replayRecord)
	if err != nil {
		return fmt.Errorf("restore: replay: %w", err)
	}

	// Resume sequencing AFTER replay
	s.deps.Seq.Advance(lastSeq)

	s.log.WithFields(log.Fields{
		"snapshot_seq": after,
		"last_seq":     lastSeq,
		"lists":        len(s.lists),
	}).Info("restore completed")
	return nil
}

func (s *ListService) restoreList(name string, values []int16) error {
	if len(values) == 0 {
		return list.ErrEmpty
	}
	if err := s.construct(name, values[0]); err != nil {
		return err
	}
	l := s.lists[name]
	for _, v := range values[1:] {
		if err := s.append(name, l, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *ListService) replayRecord(rec *wal.Record) error {
	name, v, err := rec.Mutation()
	if err != nil {
		return err
	}

	switch rec.Type {
	case wal.RecordConstruct:
		if _, ok := s.lists[name]; ok {
			return fmt.Errorf("seq %d: %w: %s", rec.Seq, ErrExists, name)
		}
		err = s.construct(name, v)
	case wal.RecordAppend:
		l, ok := s.lists[name]
		if !ok {
			// the construct itself was refused by the allocator
			s.log.WithFields(log.Fields{"seq": rec.Seq, "list": name}).Warn("append to unknown list skipped")
			return nil
		}
		err = s.append(name, l, v)
	default:
		return fmt.Errorf("seq %d: unknown record type %d", rec.Seq, rec.Type)
	}

	if errors.Is(err, list.ErrAllocationFailure) {
		return nil
	}
	return err
}
