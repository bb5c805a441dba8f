// Package wal is the append-only mutation log for named lists.
//
// Every Construct and Append is framed, checksummed and written to the
// current segment before it is applied in memory. On start the log is
// replayed on top of the latest snapshot, and segments fully covered by
// a snapshot are truncated.
package wal
