package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
)

const (
	listPrefix = "list/"
	listEnd    = "list0" // '0' sorts right after '/'
	indexWidth = 10

	keySeq     = "meta/seq"
	keyCreated = "meta/created"
)

type Store struct {
	db *pebble.DB
}

func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Write replaces the stored snapshot atomically.
func (s *Store) Write(snap Snapshot) error {
	b := s.db.NewBatch()
	defer b.Close()

	if err := b.DeleteRange([]byte(listPrefix), []byte(listEnd), nil); err != nil {
		return err
	}
	for _, l := range snap.Lists {
		for i, v := range l.Values {
			if err := b.Set(valueKey(l.Name, i), encodeValue(v), nil); err != nil {
				return err
			}
		}
	}
	if err := b.Set([]byte(keySeq), encodeUint64(snap.Seq), nil); err != nil {
		return err
	}
	created := snap.Created
	if created.IsZero() {
		created = time.Now()
	}
	if err := b.Set([]byte(keyCreated), encodeUint64(uint64(created.UnixNano())), nil); err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

// Read returns the whole stored snapshot. An empty store yields a
// zero Snapshot.
func (s *Store) Read() (Snapshot, error) {
	var snap Snapshot

	seq, err := s.Seq()
	if err != nil {
		return snap, err
	}
	snap.Seq = seq

	created, err := s.getUint64(keyCreated)
	if err != nil {
		return snap, err
	}
	if created != 0 {
		snap.Created = time.Unix(0, int64(created))
	}

	err = s.scan(listPrefix, listEnd, func(name string, v int16) {
		n := len(snap.Lists)
		if n == 0 || snap.Lists[n-1].Name != name {
			snap.Lists = append(snap.Lists, ListEntry{Name: name})
			n++
		}
		snap.Lists[n-1].Values = append(snap.Lists[n-1].Values, v)
	})
	return snap, err
}

// Seq returns the log sequence covered by the snapshot, 0 if none.
func (s *Store) Seq() (uint64, error) {
	return s.getUint64(keySeq)
}

func (s *Store) scan(lower, upper string, fn func(name string, v int16)) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(lower),
		UpperBound: []byte(upper),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		name, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		v, err := decodeValue(iter.Value())
		if err != nil {
			return fmt.Errorf("list %s: %w", name, err)
		}
		fn(name, v)
	}
	return iter.Error()
}

func (s *Store) getUint64(key string) (uint64, error) {
	val, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer closer.Close()

	if len(val) != 8 {
		return 0, fmt.Errorf("%s: invalid length %d", key, len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}

// -------------------- Helpers --------------------

func valueKey(name string, index int) []byte {
	return []byte(fmt.Sprintf("%s%s/%0*d", listPrefix, name, indexWidth, index))
}

func parseKey(b []byte) (string, error) {
	k := string(b)
	if !strings.HasPrefix(k, listPrefix) || len(k) < len(listPrefix)+indexWidth+2 {
		return "", fmt.Errorf("invalid snapshot key %q", k)
	}
	return k[len(listPrefix) : len(k)-indexWidth-1], nil
}

func encodeValue(v int16) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(v))
	return buf
}

func decodeValue(b []byte) (int16, error) {
	if len(b) != 2 {
		return 0, fmt.Errorf("invalid value length %d", len(b))
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}
