package wal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RecordType defines the logged mutation.
type RecordType uint8

const (
	RecordConstruct RecordType = iota
	RecordAppend
)

func (t RecordType) String() string {
	switch t {
	case RecordConstruct:
		return "construct"
	case RecordAppend:
		return "append"
	default:
		return "unknown"
	}
}

// Record is an immutable log entry.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}

// NewMutation builds a record whose payload is "name|value".
func NewMutation(t RecordType, seq uint64, name string, value int16) *Record {
	return NewRecord(t, seq, []byte(name+"|"+strconv.Itoa(int(value))))
}

// Mutation decodes a "name|value" payload.
func (r *Record) Mutation() (name string, value int16, err error) {
	i := strings.LastIndexByte(string(r.Data), '|')
	if i < 0 {
		return "", 0, fmt.Errorf("seq %d: invalid payload %q", r.Seq, r.Data)
	}
	v, err := strconv.ParseInt(string(r.Data[i+1:]), 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("seq %d: %w", r.Seq, err)
	}
	return string(r.Data[:i]), int16(v), nil
}
