package wal

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrBroken is returned by Append once a failed write could not be
// removed from the segment.
var ErrBroken = errors.New("wal: log broken")

type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
	// SyncEveryWrite fsyncs the segment after each Append.
	SyncEveryWrite bool
}

// WAL appends records to size- and age-bounded segments.
// It is not safe for concurrent use; the list service serializes writers.
type WAL struct {
	dir             string
	segmentSize     int64
	segmentDuration time.Duration
	syncEveryWrite  bool

	current      *segment
	lastRotation time.Time
	// broken is set when a failed write could not be rolled back.
	broken error
}

// Open creates the log directory if needed. Writing resumes in a new
// segment after the newest one, so a torn frame left by a crash never
// precedes fresh records. An empty newest segment is reused.
func Open(cfg Config) (*WAL, error) {
	if cfg.Dir == "" {
		cfg.Dir = "./data/wal"
	}
	if cfg.SegmentSize == 0 {
		cfg.SegmentSize = 2 * 1024 * 1024
	}
	if cfg.SegmentDuration == 0 {
		cfg.SegmentDuration = 5 * time.Minute
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create wal dir: %w", err)
	}

	files, err := listSegments(cfg.Dir)
	if err != nil {
		return nil, err
	}
	index := 0
	if len(files) > 0 {
		last := files[len(files)-1]
		index = segmentIndex(last)
		st, err := os.Stat(last)
		if err != nil {
			return nil, err
		}
		if st.Size() > 0 {
			index++
		}
	}

	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, fmt.Errorf("open segment %d: %w", index, err)
	}

	return &WAL{
		dir:             cfg.Dir,
		segmentSize:     cfg.SegmentSize,
		segmentDuration: cfg.SegmentDuration,
		syncEveryWrite:  cfg.SyncEveryWrite,
		current:         seg,
		lastRotation:    time.Now(),
	}, nil
}

// Dir returns the directory holding the segments.
func (w *WAL) Dir() string {
	return w.dir
}

// Append writes one record. Rotation happens before the write, so an
// error means the record is not in the log: a failed write or sync is
// truncated away. If that truncation fails the log refuses every later
// Append with ErrBroken.
func (w *WAL) Append(r *Record) error {
	if w.broken != nil {
		return w.broken
	}
	if w.shouldRotate() {
		if err := w.rotate(); err != nil {
			return fmt.Errorf("rotate: %w", err)
		}
	}

	off := w.current.offset
	if err := w.current.append(encodeRecord(r)); err != nil {
		return w.undo(off, err)
	}
	if w.syncEveryWrite {
		if err := w.current.sync(); err != nil {
			return w.undo(off, err)
		}
	}
	return nil
}

// undo cuts the current segment back to off after a failed write.
func (w *WAL) undo(off int64, cause error) error {
	if err := w.current.truncate(off); err != nil {
		w.broken = fmt.Errorf("%w: segment %d: %w", ErrBroken, w.current.index, err)
		return fmt.Errorf("%w (rollback: %w)", cause, w.broken)
	}
	return cause
}

func (w *WAL) Sync() error {
	return w.current.sync()
}

func (w *WAL) Close() error {
	if err := w.current.sync(); err != nil {
		_ = w.current.close()
		return err
	}
	return w.current.close()
}

func (w *WAL) shouldRotate() bool {
	if w.current.offset == 0 {
		return false
	}
	return w.current.offset >= w.segmentSize ||
		time.Since(w.lastRotation) >= w.segmentDuration
}

// rotate opens the next segment before letting go of the current one,
// so a failure leaves the log writing where it was.
func (w *WAL) rotate() error {
	seg, err := openSegment(w.dir, w.current.index+1)
	if err != nil {
		return err
	}
	if err := w.current.sync(); err != nil {
		_ = seg.close()
		return err
	}
	_ = w.current.close()

	w.current = seg
	w.lastRotation = time.Now()
	return nil
}

// TruncateBefore removes closed segments whose records are all at or
// below seq. The active segment is never removed.
func (w *WAL) TruncateBefore(seq uint64) error {
	files, err := listSegments(w.dir)
	if err != nil {
		return err
	}

	for _, path := range files {
		if segmentIndex(path) == w.current.index {
			continue
		}
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			if err := os.Remove(path); err != nil {
				return err
			}
		}
	}
	return nil
}
