package wal

import (
	"errors"
	"fmt"
	"io"
	"os"
)

type ReplayHandler func(*Record) error

// Replay feeds every record with a sequence above after to fn, oldest
// first, and returns the last sequence seen. A torn frame at the end
// of a segment ends that segment; a checksum failure or a sequence
// that does not increase is ErrCorrupt.
func Replay(dir string, after uint64, fn ReplayHandler) (lastSeq uint64, err error) {
	files, err := listSegments(dir)
	if err != nil {
		return 0, err
	}

	lastSeq = after
	var prev uint64
	for _, path := range files {
		prev, err = replaySegment(path, prev, after, fn)
		if prev > lastSeq {
			lastSeq = prev
		}
		if err != nil {
			return lastSeq, err
		}
	}
	return lastSeq, nil
}

func replaySegment(path string, prev, after uint64, fn ReplayHandler) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return prev, err
	}
	defer f.Close()

	for {
		rec, err := readRecord(f)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return prev, nil
			}
			return prev, fmt.Errorf("%s: %w", path, err)
		}

		if rec.Seq <= prev {
			return prev, fmt.Errorf("%w: non-monotonic seq %d after %d", ErrCorrupt, rec.Seq, prev)
		}
		prev = rec.Seq

		if rec.Seq <= after {
			continue
		}
		if err := fn(rec); err != nil {
			return prev, err
		}
	}
}
