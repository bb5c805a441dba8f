package snapshot

import "time"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Lists   []ListEntry
}

type ListEntry struct {
	Name   string
	Values []int16
}
